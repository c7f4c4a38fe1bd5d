// Command seed loads two demo drivers with one week of entries each.
// Drivers that already exist (by phone) and weeks already recorded are left
// untouched, so it is safe to rerun.
package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	logrus "github.com/sirupsen/logrus"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/config"
	"taxi_ledger/internal/logger"
	"taxi_ledger/internal/models"
	"taxi_ledger/internal/store"
	"taxi_ledger/internal/week"
)

type seedDriver struct {
	name, phone, license string
	earnings             int64
	trips                int
}

const seedWeek = "2025-10-27"

var seedDrivers = []seedDriver{
	{name: "Michael Rodriguez", phone: "9000000001", license: "DL-AAA-0001", earnings: 1850, trips: 64},
	{name: "Sarah Johnson", phone: "9000000002", license: "DL-AAA-0002", earnings: 2100, trips: 66},
}

func main() {
	cfg := config.MustLoad()
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat, ""); err != nil {
		logrus.WithError(err).Fatal("Failed to set up logging")
	}
	if err := config.Migrate(cfg.DSN()); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := config.OpenDB(ctx, cfg.DSN(), 2)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer config.CloseDB(db)

	if err := run(ctx, store.New(db)); err != nil {
		logrus.WithError(err).Fatal("Seeding failed")
	}
	logrus.Info("Seed complete")
}

func run(ctx context.Context, s *store.Store) error {
	r, err := week.BoundsISO(seedWeek)
	if err != nil {
		return err
	}
	for _, sd := range seedDrivers {
		d, err := ensureDriver(ctx, s, sd)
		if err != nil {
			return err
		}

		existing, err := s.ListWeeklyEntries(ctx, store.WeeklyFilter{DriverID: d.ID, WeekStart: &r.Start, WeekEnd: &r.End})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			logrus.WithField("driver", d.Name).Info("Week already recorded, skipping")
			continue
		}
		if _, _, err := s.UpsertWeeklyEntry(ctx, models.WeeklyEntry{
			DriverID:  d.ID,
			WeekStart: r.Start,
			WeekEnd:   r.End,
			Earnings:  decimal.NewFromInt(sd.earnings),
			Trips:     sd.trips,
		}); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"driver": d.Name, "week_start": seedWeek}).Info("Seeded weekly entry")
	}
	return nil
}

func ensureDriver(ctx context.Context, s *store.Store, sd seedDriver) (*models.Driver, error) {
	license := sd.license
	d := &models.Driver{Name: sd.name, Phone: sd.phone, LicenseNumber: &license}
	err := s.CreateDriver(ctx, d)
	if err == nil {
		logrus.WithField("driver", d.Name).Info("Seeded driver")
		return d, nil
	}
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		return nil, err
	}

	all, err := s.ListDrivers(ctx, store.DriverFilter{})
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Phone == sd.phone {
			return &all[i], nil
		}
	}
	return nil, apperrors.New(apperrors.CodeNotFound, "Driver with phone "+sd.phone+" vanished")
}
