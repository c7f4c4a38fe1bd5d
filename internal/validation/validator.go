// Package validation normalises and checks form input for drivers and
// weekly entries. Input is first normalised (trimmed, coerced, digits
// stripped) and then checked against validator struct tags; every failure
// is reported per JSON field name.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/week"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so clients can map errors onto inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Compare decimals as floats so numeric tags (gte, lte) apply to money.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := week.ParseISO(fl.Field().String())
		return err == nil
	})
	return v
}

// messages holds the text shown for a failed (field, tag) pair.
var messages = map[string]string{
	"name.required":            "Enter full name",
	"name.min":                 "Enter full name",
	"name.max":                 "Name is too long",
	"phone.required":           "Phone is required",
	"phone.min":                "Enter a valid phone (10+ digits)",
	"licenseNumber.min":        "Licence number must be at least 3 characters (or leave it blank)",
	"licenseNumber.max":        "Licence number is too long",
	"joinDate.isodate":         "Select a valid date",
	"profileImageUrl.url":      "Enter a valid URL",
	"driverId.required":        "Driver is required",
	"driverId.uuid":            "Driver is required",
	"weekStart.required":       "Use YYYY-MM-DD",
	"weekStart.isodate":        "Use YYYY-MM-DD",
	"earnings.gte":             "Earnings cannot be negative",
	"earnings.lte":             "Amount is too large",
	"trips.gte":                "Trips cannot be negative",
	"trips.lte":                "Too many trips",
	"notes.max":                "Notes are too long",
}

// check runs the struct tags on v and merges failures into fields, skipping
// fields that already carry a message from normalisation.
func check(v any, fields apperrors.FieldErrors) {
	err := validate.Struct(v)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields.Add("_", err.Error())
		return
	}
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		msg, ok := messages[name+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		fields.Add(name, msg)
	}
}

func result(fields apperrors.FieldErrors) error {
	if len(fields) == 0 {
		return nil
	}
	return apperrors.Validation(fields)
}
