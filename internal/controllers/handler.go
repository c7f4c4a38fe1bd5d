package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/middleware"
	"taxi_ledger/internal/models"
	"taxi_ledger/internal/realtime"
	"taxi_ledger/internal/store"
	"taxi_ledger/internal/week"
)

// Store is the persistence the handlers need. *store.Store satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	ListDrivers(ctx context.Context, f store.DriverFilter) ([]models.Driver, error)
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	GetDriverWithEntries(ctx context.Context, id string) (*models.Driver, error)
	CreateDriver(ctx context.Context, d *models.Driver) error
	UpdateDriver(ctx context.Context, id string, patch models.DriverPatch) (*models.Driver, error)
	SetHidden(ctx context.Context, id string, hidden bool) (*models.Driver, error)
	SetRemoved(ctx context.Context, id string, removed bool) (*models.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
	DriverHistories(ctx context.Context) ([]models.Driver, error)

	UpsertWeeklyEntry(ctx context.Context, e models.WeeklyEntry) (models.WeeklyEntry, bool, error)
	UpdateWeeklyEntry(ctx context.Context, id uint, patch models.WeeklyPatch) (models.WeeklyEntry, error)
	DeleteWeeklyEntry(ctx context.Context, id uint) error
	DeleteWeeklyEntries(ctx context.Context, ids []uint) (int64, error)
	ListWeeklyEntries(ctx context.Context, f store.WeeklyFilter) ([]models.WeeklyEntry, error)
}

// Notifier receives change events after successful writes.
type Notifier interface {
	Publish(ev realtime.Event)
}

// Handler carries what every controller needs. Build it with New.
type Handler struct {
	store        Store
	notify       Notifier
	auth         *middleware.Auth
	passwordHash []byte
	loc          *time.Location
	now          func() time.Time
}

type Options struct {
	Store    Store
	Notifier Notifier
	Auth     *middleware.Auth
	// PasswordHash is the bcrypt hash operators log in with.
	PasswordHash string
	// Location decides which calendar day "now" falls on.
	Location *time.Location
	Now      func() time.Time
}

func New(o Options) *Handler {
	h := &Handler{
		store:        o.Store,
		notify:       o.Notifier,
		auth:         o.Auth,
		passwordHash: []byte(o.PasswordHash),
		loc:          o.Location,
		now:          o.Now,
	}
	if h.notify == nil {
		h.notify = nopNotifier{}
	}
	if h.auth == nil {
		h.auth = middleware.NewAuth("", false)
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

type nopNotifier struct{}

func (nopNotifier) Publish(realtime.Event) {}

// currentWeek is the Monday–Sunday week containing today in the business
// time zone.
func (h *Handler) currentWeek() week.Range {
	return week.Current(h.now(), h.loc)
}

// respondError writes err as JSON with the status of its code. Server-side
// failures are logged.
func respondError(c *gin.Context, err error) {
	ae := apperrors.From(err)
	status := ae.Status()
	body := gin.H{"error": ae.Message}

	switch ae.Code {
	case apperrors.CodeInvalid:
		fields := ae.Fields
		if fields == nil {
			fields = apperrors.FieldErrors{}
		}
		body["issues"] = gin.H{"fieldErrors": fields}
	case apperrors.CodeSchema:
		body["needsMigration"] = true
		if ae.Err != nil {
			body["details"] = ae.Err.Error()
		}
	case apperrors.CodeInternal:
		if ae.Err != nil && ae.Err.Error() != ae.Message {
			body["details"] = ae.Err.Error()
		}
	}

	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed.")
	} else {
		entry.Debug("Request rejected.")
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body, reporting malformed JSON as a bad
// request.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.CodeBadRequest, "Invalid JSON body"))
		return false
	}
	return true
}
