package validation

import (
	"strings"
	"time"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/models"
	"taxi_ledger/internal/week"
)

// DriverRequest is the JSON body accepted when creating or updating a
// driver. Both "licenseNumber" and "licenceNumber" are accepted.
type DriverRequest struct {
	Name            *string `json:"name"`
	LicenseNumber   *string `json:"licenseNumber"`
	LicenceNumber   *string `json:"licenceNumber"`
	Phone           *string `json:"phone"`
	JoinDate        *string `json:"joinDate"`
	ProfileImageURL *string `json:"profileImageUrl"`
	Hidden          *bool   `json:"hidden"`
	Removed         *bool   `json:"removed"`
}

func (r DriverRequest) license() *string {
	if r.LicenseNumber != nil {
		return r.LicenseNumber
	}
	return r.LicenceNumber
}

// driverFields is the normalised form the tags are checked against.
type driverFields struct {
	Name            string `json:"name" validate:"required,min=2,max=120"`
	Phone           string `json:"phone" validate:"required,min=10"`
	LicenseNumber   string `json:"licenseNumber" validate:"omitempty,min=3,max=32"`
	JoinDate        string `json:"joinDate" validate:"omitempty,isodate"`
	ProfileImageURL string `json:"profileImageUrl" validate:"omitempty,url"`
}

// NormalizePhone keeps only the digits of an Indian number and drops the
// +91 country code or a leading trunk 0: "+91 90000-00001" → "9000000001".
// Length is checked by the caller.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return digits[1:]
	}
	return digits
}

// NormalizeLicense trims and uppercases; blank means "no licence".
func NormalizeLicense(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ParseDriverCreate validates a registration form and builds the row to
// insert. The error, if any, is an *apperrors.AppError with field messages.
func ParseDriverCreate(req DriverRequest) (*models.Driver, error) {
	rawPhone := strings.TrimSpace(deref(req.Phone))
	in := driverFields{
		Name:            strings.TrimSpace(deref(req.Name)),
		Phone:           NormalizePhone(rawPhone),
		LicenseNumber:   NormalizeLicense(deref(req.license())),
		JoinDate:        strings.TrimSpace(deref(req.JoinDate)),
		ProfileImageURL: strings.TrimSpace(deref(req.ProfileImageURL)),
	}

	fields := apperrors.FieldErrors{}
	if rawPhone != "" && in.Phone == "" {
		fields.Add("phone", messages["phone.min"])
	}
	check(in, fields)
	if err := result(fields); err != nil {
		return nil, err
	}

	d := &models.Driver{
		Name:            in.Name,
		Phone:           in.Phone,
		LicenseNumber:   optional(in.LicenseNumber),
		ProfileImageURL: optional(in.ProfileImageURL),
	}
	if in.JoinDate != "" {
		jd, _ := week.ParseISO(in.JoinDate)
		d.JoinDate = &jd
	}
	if req.Hidden != nil {
		d.Hidden = *req.Hidden
	}
	return d, nil
}

// driverPatchFields mirrors driverFields but every rule is optional; only
// the keys present in the request are filled in.
type driverPatchFields struct {
	Name            *string `json:"name" validate:"omitnil,min=2,max=120"`
	Phone           *string `json:"phone" validate:"omitnil,min=10"`
	LicenseNumber   *string `json:"licenseNumber" validate:"omitnil,min=3,max=32"`
	JoinDate        *string `json:"joinDate" validate:"omitnil,isodate"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitnil,url"`
}

// ParseDriverPatch validates a partial update. Blank licence, join date or
// image URL clear the stored value.
func ParseDriverPatch(req DriverRequest) (models.DriverPatch, error) {
	var (
		in    driverPatchFields
		patch models.DriverPatch
	)
	fields := apperrors.FieldErrors{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		in.Name = &name
	}
	if req.Phone != nil {
		phone := NormalizePhone(*req.Phone)
		in.Phone = &phone
	}
	if lic := req.license(); lic != nil {
		if l := NormalizeLicense(*lic); l == "" {
			patch.ClearLicense = true
		} else {
			in.LicenseNumber = &l
		}
	}
	if req.JoinDate != nil {
		if jd := strings.TrimSpace(*req.JoinDate); jd == "" {
			patch.ClearJoinDate = true
		} else {
			in.JoinDate = &jd
		}
	}
	if req.ProfileImageURL != nil {
		if u := strings.TrimSpace(*req.ProfileImageURL); u == "" {
			patch.ClearImage = true
		} else {
			in.ProfileImageURL = &u
		}
	}

	check(in, fields)
	if err := result(fields); err != nil {
		return models.DriverPatch{}, err
	}

	patch.Name = in.Name
	patch.Phone = in.Phone
	patch.LicenseNumber = in.LicenseNumber
	patch.ProfileImageURL = in.ProfileImageURL
	if in.JoinDate != nil {
		jd, _ := week.ParseISO(*in.JoinDate)
		patch.JoinDate = &jd
	}
	patch.Hidden = req.Hidden
	patch.Removed = req.Removed

	if patch.Empty() {
		fields.Add("_", "Nothing to update")
		return models.DriverPatch{}, apperrors.Validation(fields)
	}
	return patch, nil
}

// JoinDateISO renders an optional join date for views.
func JoinDateISO(t *time.Time) string {
	if t == nil {
		return ""
	}
	return week.ISO(*t)
}
