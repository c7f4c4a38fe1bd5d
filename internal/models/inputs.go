package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DriverPatch lists the driver fields a partial update may touch.
// A nil pointer leaves the column unchanged; ClearX removes the value.
type DriverPatch struct {
	Name            *string
	Phone           *string
	LicenseNumber   *string
	ClearLicense    bool
	JoinDate        *time.Time
	ClearJoinDate   bool
	ProfileImageURL *string
	ClearImage      bool
	Hidden          *bool
	Removed         *bool
}

// Empty reports whether the patch changes nothing.
func (p DriverPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.LicenseNumber == nil && !p.ClearLicense &&
		p.JoinDate == nil && !p.ClearJoinDate && p.ProfileImageURL == nil && !p.ClearImage &&
		p.Hidden == nil && p.Removed == nil
}

// WeeklyPatch lists the weekly entry fields a partial update may touch.
// WeekStart, when set, is already normalised to a Monday.
type WeeklyPatch struct {
	WeekStart  *time.Time
	Earnings   *decimal.Decimal
	Trips      *int
	Notes      *string
	ClearNotes bool
}

func (p WeeklyPatch) Empty() bool {
	return p.WeekStart == nil && p.Earnings == nil && p.Trips == nil && p.Notes == nil && !p.ClearNotes
}
