package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"taxi_ledger/internal/config"
	"taxi_ledger/internal/controllers"
	"taxi_ledger/internal/logger"
	"taxi_ledger/internal/middleware"
	"taxi_ledger/internal/realtime"
	"taxi_ledger/internal/routes"
	"taxi_ledger/internal/store"
)

func main() {
	cfg := config.MustLoad()

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile); err != nil {
		logrus.WithError(err).Fatal("Failed to set up logging")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DBAutoMigrate {
		if err := config.Migrate(cfg.DSN()); err != nil {
			logrus.WithError(err).Fatal("Failed to run migrations")
		}
		logrus.Info("Database schema is up to date")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDB(ctx, cfg.DSN(), cfg.DBMaxOpen)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		if err := config.CloseDB(db); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}()

	hub := realtime.NewHub(64, cfg.Origins())
	auth := middleware.NewAuth(cfg.JWTSecret, cfg.AuthEnabled())
	h := controllers.New(controllers.Options{
		Store:        store.New(db),
		Notifier:     hub,
		Auth:         auth,
		PasswordHash: cfg.AdminPasswordHash,
		Location:     cfg.Location(),
	})

	r, err := routes.SetupRouter(routes.Deps{
		Handler:   h,
		Auth:      auth,
		Hub:       hub,
		Origins:   cfg.Origins(),
		LogWriter: logger.Writer(),
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build router")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{
			"addr":     cfg.HTTPAddr,
			"env":      cfg.AppEnv,
			"auth":     cfg.AuthEnabled(),
			"timezone": cfg.BusinessTimeZone,
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Error("Server stopped with error")
		os.Exit(1)
	}
	logrus.Info("Server stopped gracefully")
}
