package validation

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/models"
	"taxi_ledger/internal/week"
)

// WeeklyRequest is the JSON body for creating or patching a weekly entry.
// Earnings and trips may arrive as numbers or numeric strings.
type WeeklyRequest struct {
	DriverID  string  `json:"driverId"`
	WeekStart *string `json:"weekStart"`
	Earnings  any     `json:"earnings"`
	Trips     any     `json:"trips"`
	Notes     *string `json:"notes"`
}

// WeeklyInput is a validated weekly entry ready to be upserted.
type WeeklyInput struct {
	DriverID string
	Week     week.Range
	Earnings decimal.Decimal
	Trips    int
	Notes    *string
}

// Entry builds the row for the input.
func (in WeeklyInput) Entry() models.WeeklyEntry {
	return models.WeeklyEntry{
		DriverID:  in.DriverID,
		WeekStart: in.Week.Start,
		WeekEnd:   in.Week.End,
		Earnings:  in.Earnings,
		Trips:     in.Trips,
		Notes:     in.Notes,
	}
}

type weeklyFields struct {
	DriverID  string          `json:"driverId" validate:"required"`
	WeekStart string          `json:"weekStart" validate:"required,isodate"`
	Earnings  decimal.Decimal `json:"earnings" validate:"gte=0,lte=9999999999"`
	Trips     int             `json:"trips" validate:"gte=0,lte=100000"`
	Notes     string          `json:"notes" validate:"max=2000"`
}

const (
	msgAmount = "Enter a valid amount"
	msgWhole  = "Enter a whole number"
)

var errNotNumber = errors.New("not a number")

// toDecimal coerces a decoded JSON value into a decimal.
func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, errNotNumber
		}
		return decimal.NewFromFloat(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Decimal{}, errNotNumber
		}
		return decimal.NewFromString(s)
	case int:
		return decimal.NewFromInt(int64(n)), nil
	default:
		return decimal.Decimal{}, errNotNumber
	}
}

// toWhole coerces a decoded JSON value into an int, refusing fractions.
func toWhole(v any) (int, error) {
	d, err := toDecimal(v)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || d.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, errNotNumber
	}
	return int(d.IntPart()), nil
}

// ParseWeeklyCreate validates a weekly entry and normalises its week to the
// Monday–Sunday range containing weekStart.
func ParseWeeklyCreate(req WeeklyRequest) (WeeklyInput, error) {
	fields := apperrors.FieldErrors{}
	in := weeklyFields{
		DriverID:  strings.TrimSpace(req.DriverID),
		WeekStart: strings.TrimSpace(deref(req.WeekStart)),
		Notes:     strings.TrimSpace(deref(req.Notes)),
	}

	earnings, err := toDecimal(req.Earnings)
	if err != nil {
		fields.Add("earnings", msgAmount)
	}
	in.Earnings = earnings.Round(2)

	trips, err := toWhole(req.Trips)
	if err != nil {
		fields.Add("trips", msgWhole)
	}
	in.Trips = trips

	check(in, fields)
	if err := result(fields); err != nil {
		return WeeklyInput{}, err
	}

	r, _ := week.BoundsISO(in.WeekStart)
	return WeeklyInput{
		DriverID: in.DriverID,
		Week:     r,
		Earnings: in.Earnings,
		Trips:    in.Trips,
		Notes:    optional(in.Notes),
	}, nil
}

type weeklyPatchFields struct {
	WeekStart *string          `json:"weekStart" validate:"omitnil,isodate"`
	Earnings  *decimal.Decimal `json:"earnings" validate:"omitnil,gte=0,lte=9999999999"`
	Trips     *int             `json:"trips" validate:"omitnil,gte=0,lte=100000"`
	Notes     *string          `json:"notes" validate:"omitnil,max=2000"`
}

// ParseWeeklyPatch validates a partial weekly update. The driver of an
// entry cannot be changed; a blank notes value clears the notes.
func ParseWeeklyPatch(req WeeklyRequest) (models.WeeklyPatch, error) {
	var (
		in    weeklyPatchFields
		patch models.WeeklyPatch
	)
	fields := apperrors.FieldErrors{}

	if req.WeekStart != nil {
		ws := strings.TrimSpace(*req.WeekStart)
		in.WeekStart = &ws
	}
	if req.Earnings != nil {
		d, err := toDecimal(req.Earnings)
		if err != nil {
			fields.Add("earnings", msgAmount)
		} else {
			d = d.Round(2)
			in.Earnings = &d
		}
	}
	if req.Trips != nil {
		n, err := toWhole(req.Trips)
		if err != nil {
			fields.Add("trips", msgWhole)
		} else {
			in.Trips = &n
		}
	}
	if req.Notes != nil {
		if notes := strings.TrimSpace(*req.Notes); notes == "" {
			patch.ClearNotes = true
		} else {
			in.Notes = &notes
		}
	}

	check(in, fields)
	if err := result(fields); err != nil {
		return models.WeeklyPatch{}, err
	}

	if in.WeekStart != nil {
		r, _ := week.BoundsISO(*in.WeekStart)
		patch.WeekStart = &r.Start
	}
	patch.Earnings = in.Earnings
	patch.Trips = in.Trips
	patch.Notes = in.Notes

	if patch.Empty() {
		fields.Add("_", "Nothing to update")
		return models.WeeklyPatch{}, apperrors.Validation(fields)
	}
	return patch, nil
}
