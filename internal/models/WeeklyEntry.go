// internal/models/weekly_entry.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeeklyEntry is one driver's earnings and trips for a Monday–Sunday week.
// (driver_id, week_start) is unique; week_end is always week_start + 6 days.
type WeeklyEntry struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	DriverID  string          `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_driver_week,priority:1" json:"driverId"`
	Driver    *Driver         `gorm:"foreignKey:DriverID" json:"-"`
	WeekStart time.Time       `gorm:"type:date;not null;uniqueIndex:idx_weekly_driver_week,priority:2" json:"-"`
	WeekEnd   time.Time       `gorm:"type:date;not null" json:"-"`
	Earnings  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"earnings"`
	Trips     int             `gorm:"not null" json:"trips"`
	Notes     *string         `json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TableName keeps the table name stable regardless of gorm's naming strategy.
func (WeeklyEntry) TableName() string {
	return "weekly_entries"
}
