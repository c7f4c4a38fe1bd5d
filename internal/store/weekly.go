package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/models"
	"taxi_ledger/internal/week"
)

const (
	msgEntryNotFound = "Weekly entry not found"
	msgWeekTaken     = "This driver already has an entry for that week."
)

// WeeklyFilter narrows ListWeeklyEntries. WeekStart and WeekEnd are
// normalised to the Monday and Sunday of the week they fall in.
type WeeklyFilter struct {
	DriverID          string
	WeekStart         *time.Time
	WeekEnd           *time.Time
	ActiveDriversOnly bool
	WithDriver        bool
}

// upsertWeeklySQL inserts or overwrites the row for (driver_id, week_start).
// xmax is zero only for a freshly inserted tuple, so inserted is exact even
// when two first submissions race.
const upsertWeeklySQL = `
INSERT INTO weekly_entries (driver_id, week_start, week_end, earnings, trips, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (driver_id, week_start) DO UPDATE SET
	week_end = EXCLUDED.week_end,
	earnings = EXCLUDED.earnings,
	trips = EXCLUDED.trips,
	notes = EXCLUDED.notes,
	updated_at = EXCLUDED.updated_at
RETURNING id, (xmax = 0) AS inserted`

type upsertResult struct {
	ID       uint
	Inserted bool
}

// UpsertWeeklyEntry writes the entry for (driver, week). An existing row for
// the same week is overwritten; created reports whether a new row was made.
// The driver must be active.
func (s *Store) UpsertWeeklyEntry(ctx context.Context, e models.WeeklyEntry) (entry models.WeeklyEntry, created bool, err error) {
	r := week.Bounds(e.WeekStart)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireActive(tx, e.DriverID); err != nil {
			return err
		}

		now := tx.NowFunc()
		var res upsertResult
		err := tx.Raw(upsertWeeklySQL,
			e.DriverID, r.Start, r.End, e.Earnings, e.Trips, e.Notes, now, now,
		).Scan(&res).Error
		if err != nil {
			return err
		}
		created = res.Inserted
		return tx.First(&entry, res.ID).Error
	})
	if err != nil {
		return models.WeeklyEntry{}, false, classify(err, msgEntryNotFound, msgWeekTaken, "Failed to save weekly entry")
	}
	return entry, created, nil
}

// UpdateWeeklyEntry applies patch to one entry. Moving an entry onto a week
// the driver already has fails with CodeConflict.
func (s *Store) UpdateWeeklyEntry(ctx context.Context, id uint, patch models.WeeklyPatch) (models.WeeklyEntry, error) {
	var e models.WeeklyEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, id).Error; err != nil {
			return err
		}
		updates := map[string]any{}
		if patch.WeekStart != nil {
			r := week.Bounds(*patch.WeekStart)
			updates["week_start"] = r.Start
			updates["week_end"] = r.End
		}
		if patch.Earnings != nil {
			updates["earnings"] = *patch.Earnings
		}
		if patch.Trips != nil {
			updates["trips"] = *patch.Trips
		}
		switch {
		case patch.ClearNotes:
			updates["notes"] = nil
		case patch.Notes != nil:
			updates["notes"] = *patch.Notes
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&e).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&e, id).Error
	})
	if err != nil {
		return models.WeeklyEntry{}, classify(err, msgEntryNotFound, msgWeekTaken, "Failed to update weekly entry")
	}
	return e, nil
}

// DeleteWeeklyEntry deletes one entry by id.
func (s *Store) DeleteWeeklyEntry(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.WeeklyEntry{}, id)
	if res.Error != nil {
		return classify(res.Error, msgEntryNotFound, msgWeekTaken, "Failed to delete weekly entry")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, msgEntryNotFound)
	}
	return nil
}

// DeleteWeeklyEntries deletes every entry whose id is in ids and returns
// how many rows went. Unknown ids are ignored.
func (s *Store) DeleteWeeklyEntries(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.WeeklyEntry{})
	if res.Error != nil {
		return 0, classify(res.Error, msgEntryNotFound, msgWeekTaken, "Failed to delete weekly entries")
	}
	return res.RowsAffected, nil
}

// ListWeeklyEntries returns entries latest week first, ties broken by id.
func (s *Store) ListWeeklyEntries(ctx context.Context, f WeeklyFilter) ([]models.WeeklyEntry, error) {
	entries := []models.WeeklyEntry{}
	q := s.db.WithContext(ctx).Model(&models.WeeklyEntry{})

	if f.DriverID != "" {
		if !validID(f.DriverID) {
			return entries, nil
		}
		q = q.Where("weekly_entries.driver_id = ?", f.DriverID)
	}
	if f.WeekStart != nil {
		q = q.Where("weekly_entries.week_start = ?", week.Bounds(*f.WeekStart).Start)
	}
	if f.WeekEnd != nil {
		q = q.Where("weekly_entries.week_end = ?", week.Bounds(*f.WeekEnd).End)
	}
	if f.ActiveDriversOnly {
		q = q.Joins("JOIN drivers ON drivers.id = weekly_entries.driver_id AND drivers.hidden = ? AND drivers.removed_at IS NULL", false)
	}
	if f.WithDriver {
		q = q.Preload("Driver")
	}

	err := q.Order("weekly_entries.week_start DESC").Order("weekly_entries.id DESC").Find(&entries).Error
	if err != nil {
		return nil, classify(err, msgEntryNotFound, msgWeekTaken, "Failed to list weekly entries")
	}
	return entries, nil
}
