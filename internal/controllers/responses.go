package controllers

import (
	"time"

	"taxi_ledger/internal/models"
	"taxi_ledger/internal/performance"
	"taxi_ledger/internal/validation"
	"taxi_ledger/internal/week"
)

// JSON shapes. Dates are yyyy-mm-dd and amounts are plain numbers.

type driverResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	LicenseNumber   *string    `json:"licenseNumber"`
	Phone           string     `json:"phone"`
	JoinDate        *string    `json:"joinDate"`
	ProfileImageURL *string    `json:"profileImageUrl"`
	Hidden          bool       `json:"hidden"`
	RemovedAt       *time.Time `json:"removedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toDriver(d *models.Driver) driverResponse {
	r := driverResponse{
		ID:              d.ID,
		Name:            d.Name,
		LicenseNumber:   d.LicenseNumber,
		Phone:           d.Phone,
		ProfileImageURL: d.ProfileImageURL,
		Hidden:          d.Hidden,
		RemovedAt:       d.RemovedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.JoinDate != nil {
		jd := validation.JoinDateISO(d.JoinDate)
		r.JoinDate = &jd
	}
	return r
}

func toDrivers(ds []models.Driver) []driverResponse {
	out := make([]driverResponse, 0, len(ds))
	for i := range ds {
		out = append(out, toDriver(&ds[i]))
	}
	return out
}

type weeklyResponse struct {
	ID         uint      `json:"id"`
	DriverID   string    `json:"driverId"`
	DriverName string    `json:"driverName,omitempty"`
	WeekStart  string    `json:"weekStart"`
	WeekEnd    string    `json:"weekEnd"`
	Earnings   float64   `json:"earnings"`
	Trips      int       `json:"trips"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toWeekly(e models.WeeklyEntry) weeklyResponse {
	r := weeklyResponse{
		ID:        e.ID,
		DriverID:  e.DriverID,
		WeekStart: week.ISO(e.WeekStart),
		WeekEnd:   week.ISO(e.WeekEnd),
		Earnings:  e.Earnings.InexactFloat64(),
		Trips:     e.Trips,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Driver != nil {
		r.DriverName = e.Driver.Name
	}
	return r
}

func toWeeklies(es []models.WeeklyEntry) []weeklyResponse {
	out := make([]weeklyResponse, 0, len(es))
	for _, e := range es {
		out = append(out, toWeekly(e))
	}
	return out
}

type displayWeekResponse struct {
	Label     string  `json:"label"`
	WeekStart string  `json:"weekStart"`
	WeekEnd   string  `json:"weekEnd"`
	Range     string  `json:"range"`
	Earnings  float64 `json:"earnings"`
	Trips     int     `json:"trips"`
}

type driverCardResponse struct {
	Driver        driverResponse      `json:"driver"`
	Initials      string              `json:"initials"`
	MaskedLicense string              `json:"maskedLicense"`
	Week          displayWeekResponse `json:"week"`
	TotalEarnings float64             `json:"totalEarnings"`
	TotalTrips    int                 `json:"totalTrips"`
	BestWeek      float64             `json:"bestWeek"`
	History       []weeklyResponse    `json:"history"`
}

type performanceResponse struct {
	WeekStart       string               `json:"weekStart"`
	WeekEnd         string               `json:"weekEnd"`
	TotalEarnings   float64              `json:"totalEarnings"`
	ActiveDrivers   int                  `json:"activeDrivers"`
	AverageEarnings float64              `json:"averageEarnings"`
	TopEarner       string               `json:"topEarner"`
	TopEarnerAmount float64              `json:"topEarnerAmount"`
	Drivers         []driverCardResponse `json:"drivers"`
}

func toPerformance(s performance.Summary) performanceResponse {
	r := performanceResponse{
		WeekStart:       s.Week.StartISO(),
		WeekEnd:         s.Week.EndISO(),
		TotalEarnings:   s.TotalEarnings.InexactFloat64(),
		ActiveDrivers:   s.ActiveDrivers,
		AverageEarnings: s.AverageEarnings.InexactFloat64(),
		TopEarner:       s.TopEarner,
		TopEarnerAmount: s.TopEarnerAmount.InexactFloat64(),
		Drivers:         make([]driverCardResponse, 0, len(s.Drivers)),
	}
	for _, c := range s.Drivers {
		r.Drivers = append(r.Drivers, driverCardResponse{
			Driver:        toDriver(&c.Driver),
			Initials:      c.Initials,
			MaskedLicense: c.MaskedLicense,
			Week: displayWeekResponse{
				Label:     c.Week.Label,
				WeekStart: c.Week.Range.StartISO(),
				WeekEnd:   c.Week.Range.EndISO(),
				Range:     week.FormatRange(c.Week.Range),
				Earnings:  c.Week.Earnings.InexactFloat64(),
				Trips:     c.Week.Trips,
			},
			TotalEarnings: c.TotalEarnings.InexactFloat64(),
			TotalTrips:    c.TotalTrips,
			BestWeek:      c.BestWeek.InexactFloat64(),
			History:       toWeeklies(c.History),
		})
	}
	return r
}
