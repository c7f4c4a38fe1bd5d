package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/models"
)

const (
	msgDriverNotFound = "Driver not found"
	msgPhoneTaken     = "A driver with this phone number already exists."
	msgInactive       = "Driver is hidden, removed, or does not exist."
)

// DriverFilter narrows ListDrivers.
type DriverFilter struct {
	ActiveOnly  bool // hide hidden and removed drivers
	OrderByName bool // order by name instead of newest first
}

func activeScope(db *gorm.DB) *gorm.DB {
	return db.Where("drivers.hidden = ? AND drivers.removed_at IS NULL", false)
}

// ListDrivers returns drivers newest first (created_at, then id), or by
// name when f.OrderByName is set.
func (s *Store) ListDrivers(ctx context.Context, f DriverFilter) ([]models.Driver, error) {
	q := s.db.WithContext(ctx).Model(&models.Driver{})
	if f.ActiveOnly {
		q = q.Scopes(activeScope)
	}
	if f.OrderByName {
		q = q.Order("drivers.name ASC").Order("drivers.id ASC")
	} else {
		q = q.Order("drivers.created_at DESC").Order("drivers.id DESC")
	}

	drivers := []models.Driver{}
	if err := q.Find(&drivers).Error; err != nil {
		return nil, classify(err, msgDriverNotFound, msgPhoneTaken, "Failed to list drivers")
	}
	return drivers, nil
}

func (s *Store) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	if !validID(id) {
		return nil, apperrors.New(apperrors.CodeNotFound, msgDriverNotFound)
	}
	var d models.Driver
	if err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, classify(err, msgDriverNotFound, msgPhoneTaken, "Failed to load driver")
	}
	return &d, nil
}

// GetDriverWithEntries loads a driver and all of its weekly entries,
// latest week first.
func (s *Store) GetDriverWithEntries(ctx context.Context, id string) (*models.Driver, error) {
	if !validID(id) {
		return nil, apperrors.New(apperrors.CodeNotFound, msgDriverNotFound)
	}
	var d models.Driver
	err := s.db.WithContext(ctx).
		Preload("WeeklyEntries", latestFirst).
		First(&d, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, msgDriverNotFound, msgPhoneTaken, "Failed to load driver")
	}
	return &d, nil
}

// CreateDriver inserts d and fills in its id and timestamps.
func (s *Store) CreateDriver(ctx context.Context, d *models.Driver) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return classify(err, msgDriverNotFound, msgPhoneTaken, "Failed to create driver")
	}
	return nil
}

// UpdateDriver applies patch to the driver with the given id and returns the
// stored result.
func (s *Store) UpdateDriver(ctx context.Context, id string, patch models.DriverPatch) (*models.Driver, error) {
	if !validID(id) {
		return nil, apperrors.New(apperrors.CodeNotFound, msgDriverNotFound)
	}

	var d models.Driver
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&d, "id = ?", id).Error; err != nil {
			return err
		}
		updates := driverUpdates(patch, time.Now().UTC())
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&d).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&d, "id = ?", id).Error
	})
	if err != nil {
		return nil, classify(err, msgDriverNotFound, msgPhoneTaken, "Failed to update driver")
	}
	return &d, nil
}

func driverUpdates(p models.DriverPatch, now time.Time) map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.Phone != nil {
		u["phone"] = *p.Phone
	}
	switch {
	case p.ClearLicense:
		u["license_number"] = nil
	case p.LicenseNumber != nil:
		u["license_number"] = *p.LicenseNumber
	}
	switch {
	case p.ClearJoinDate:
		u["join_date"] = nil
	case p.JoinDate != nil:
		u["join_date"] = *p.JoinDate
	}
	switch {
	case p.ClearImage:
		u["profile_image_url"] = nil
	case p.ProfileImageURL != nil:
		u["profile_image_url"] = *p.ProfileImageURL
	}
	if p.Hidden != nil {
		u["hidden"] = *p.Hidden
	}
	if p.Removed != nil {
		if *p.Removed {
			u["removed_at"] = now
		} else {
			u["removed_at"] = nil
		}
	}
	return u
}

// SetHidden sets the hidden flag and returns the updated driver. Hiding
// keeps every weekly entry.
func (s *Store) SetHidden(ctx context.Context, id string, hidden bool) (*models.Driver, error) {
	return s.UpdateDriver(ctx, id, models.DriverPatch{Hidden: &hidden})
}

// SetRemoved marks the driver removed (or restores it) while keeping its
// row and history.
func (s *Store) SetRemoved(ctx context.Context, id string, removed bool) (*models.Driver, error) {
	return s.UpdateDriver(ctx, id, models.DriverPatch{Removed: &removed})
}

// DeleteDriver deletes the driver; its weekly entries go with it through
// the ON DELETE CASCADE foreign key.
func (s *Store) DeleteDriver(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.New(apperrors.CodeNotFound, msgDriverNotFound)
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Driver{})
	if res.Error != nil {
		return classify(res.Error, msgDriverNotFound, msgPhoneTaken, "Failed to delete driver")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, msgDriverNotFound)
	}
	return nil
}

// DriverHistories returns every active driver with its weekly entries
// preloaded latest week first. Drivers come newest first.
func (s *Store) DriverHistories(ctx context.Context) ([]models.Driver, error) {
	drivers := []models.Driver{}
	err := s.db.WithContext(ctx).
		Scopes(activeScope).
		Preload("WeeklyEntries", latestFirst).
		Order("drivers.created_at DESC").Order("drivers.id DESC").
		Find(&drivers).Error
	if err != nil {
		return nil, classify(err, msgDriverNotFound, msgPhoneTaken, "Failed to load driver histories")
	}
	return drivers, nil
}

func latestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("week_end DESC").Order("id DESC")
}

// requireActive fails with CodeReference unless the driver exists and is
// neither hidden nor removed.
func requireActive(tx *gorm.DB, id string) error {
	if !validID(id) {
		return apperrors.New(apperrors.CodeReference, msgInactive)
	}
	var n int64
	err := tx.Model(&models.Driver{}).
		Scopes(activeScope).
		Where("drivers.id = ?", id).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.New(apperrors.CodeReference, msgInactive)
	}
	return nil
}
