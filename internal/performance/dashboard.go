// Package performance turns drivers and their weekly history into the
// figures shown on the performance dashboard and in exports.
package performance

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"taxi_ledger/internal/models"
	"taxi_ledger/internal/week"
)

const (
	LabelThisWeek   = "This Week"
	LabelRecentWeek = "Recent Week"

	// NoTopEarner is shown when nobody earned anything this week.
	NoTopEarner = "—"
)

// DisplayWeek is the week a driver card shows: the current week when the
// driver has a row for it, otherwise the driver's latest week.
type DisplayWeek struct {
	Label    string
	Range    week.Range
	Entry    *models.WeeklyEntry // nil when the driver has no rows at all
	Earnings decimal.Decimal
	Trips    int
}

type DriverCard struct {
	Driver        models.Driver
	Initials      string
	MaskedLicense string // last three licence digits, "" when none
	Week          DisplayWeek
	TotalEarnings decimal.Decimal
	TotalTrips    int
	BestWeek      decimal.Decimal
	History       []models.WeeklyEntry // latest week first
}

type Summary struct {
	Week            week.Range
	TotalEarnings   decimal.Decimal
	ActiveDrivers   int
	AverageEarnings decimal.Decimal // rounded to whole rupees
	TopEarner       string
	TopEarnerAmount decimal.Decimal
	Drivers         []DriverCard
}

// Build computes the dashboard for the given drivers. drivers must already
// exclude hidden and removed drivers; each driver's WeeklyEntries are
// expected latest week first.
func Build(drivers []models.Driver, current week.Range) Summary {
	s := Summary{
		Week:          current,
		ActiveDrivers: len(drivers),
		TopEarner:     NoTopEarner,
		Drivers:       make([]DriverCard, 0, len(drivers)),
	}

	for _, d := range drivers {
		cur := currentEntry(d.WeeklyEntries, current)
		if cur != nil {
			s.TotalEarnings = s.TotalEarnings.Add(cur.Earnings)
			if cur.Earnings.GreaterThan(s.TopEarnerAmount) {
				s.TopEarnerAmount = cur.Earnings
				s.TopEarner = d.Name
			}
		}
		s.Drivers = append(s.Drivers, Card(d, current))
	}

	if s.ActiveDrivers > 0 {
		s.AverageEarnings = s.TotalEarnings.Div(decimal.NewFromInt(int64(s.ActiveDrivers))).Round(0)
	}
	return s
}

// Card builds one driver's card.
func Card(d models.Driver, current week.Range) DriverCard {
	c := DriverCard{
		Initials:      Initials(d.Name),
		MaskedLicense: MaskLicense(d.LicenseNumber),
		Week:          PickDisplayWeek(d.WeeklyEntries, current),
		History:       d.WeeklyEntries,
	}
	for _, e := range d.WeeklyEntries {
		c.TotalEarnings = c.TotalEarnings.Add(e.Earnings)
		c.TotalTrips += e.Trips
		if e.Earnings.GreaterThan(c.BestWeek) {
			c.BestWeek = e.Earnings
		}
	}
	d.WeeklyEntries = nil
	c.Driver = d
	return c
}

func currentEntry(entries []models.WeeklyEntry, current week.Range) *models.WeeklyEntry {
	for i := range entries {
		if week.ISO(entries[i].WeekStart) == current.StartISO() && week.ISO(entries[i].WeekEnd) == current.EndISO() {
			return &entries[i]
		}
	}
	return nil
}

// PickDisplayWeek prefers the current week's row, then the row with the
// latest week end. With no rows it reports the current week at zero.
func PickDisplayWeek(entries []models.WeeklyEntry, current week.Range) DisplayWeek {
	if e := currentEntry(entries, current); e != nil {
		return DisplayWeek{Label: LabelThisWeek, Range: current, Entry: e, Earnings: e.Earnings, Trips: e.Trips}
	}

	var latest *models.WeeklyEntry
	for i := range entries {
		if latest == nil || entries[i].WeekEnd.After(latest.WeekEnd) {
			latest = &entries[i]
		}
	}
	if latest != nil {
		return DisplayWeek{
			Label:    LabelRecentWeek,
			Range:    week.Range{Start: latest.WeekStart, End: latest.WeekEnd},
			Entry:    latest,
			Earnings: latest.Earnings,
			Trips:    latest.Trips,
		}
	}
	return DisplayWeek{Label: LabelThisWeek, Range: current}
}

// MaskLicense keeps the last three digits of a licence number.
func MaskLicense(license *string) string {
	if license == nil {
		return ""
	}
	var digits []rune
	for _, r := range *license {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) > 3 {
		digits = digits[len(digits)-3:]
	}
	return string(digits)
}

// Initials is the avatar fallback: the first two letters of the name,
// uppercased.
func Initials(name string) string {
	r := []rune(strings.TrimSpace(name))
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}
