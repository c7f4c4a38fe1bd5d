// internal/models/driver.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Driver is a person renting a taxi from the business.
// Hidden or removed drivers stay in storage but drop out of the active lists.
type Driver struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"not null" json:"name"`
	LicenseNumber   *string    `json:"licenseNumber"`               // uppercase, NULL when not given
	Phone           string     `gorm:"not null;uniqueIndex" json:"phone"` // digits only
	JoinDate        *time.Time `gorm:"type:date" json:"-"`
	ProfileImageURL *string    `gorm:"column:profile_image_url" json:"profileImageUrl"`
	Hidden          bool       `gorm:"not null;default:false" json:"hidden"`
	RemovedAt       *time.Time `gorm:"index" json:"removedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	WeeklyEntries []WeeklyEntry `gorm:"foreignKey:DriverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not pick one.
func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Active reports whether the driver shows up in registration and
// performance listings.
func (d *Driver) Active() bool {
	return !d.Hidden && d.RemovedAt == nil
}
