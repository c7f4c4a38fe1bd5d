package controllers

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	logrus "github.com/sirupsen/logrus"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/performance"
	"taxi_ledger/internal/store"
	"taxi_ledger/internal/week"
)

// TemplateFuncs are the helpers the page templates use.
var TemplateFuncs = template.FuncMap{
	"rupees":     performance.Rupees,
	"inr":        performance.FormatINR,
	"weekRange":  week.FormatRange,
	"iso":        week.ISO,
	"shortRange": func(start, end time.Time) string { return week.FormatRange(week.Range{Start: start, End: end}) },
	"opt": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"decimal": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

type page struct {
	Title       string
	Active      string
	AuthEnabled bool
	Data        any
}

func (h *Handler) render(c *gin.Context, name, title, active string, data any) {
	c.HTML(http.StatusOK, name, page{
		Title:       title,
		Active:      active,
		AuthEnabled: h.auth.Enabled(),
		Data:        data,
	})
}

const msgPageFailed = "Something went wrong. Please try again."

// renderError shows the error page with the status and message of err's
// code. Unclassified failures get a generic message; the detail only goes
// to the log.
func (h *Handler) renderError(c *gin.Context, err error) {
	ae := apperrors.From(err)
	status := ae.Status()
	msg := ae.Message
	if ae.Code == apperrors.CodeInternal && ae.Err != nil && ae.Message == ae.Err.Error() {
		msg = msgPageFailed
	}
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Page failed.")
	}
	c.HTML(status, "error_page", page{
		Title:       "Something went wrong",
		AuthEnabled: h.auth.Enabled(),
		Data:        msg,
	})
}

// Home sends visitors to the dashboard.
func (h *Handler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/performance")
}

// DriversPage lists every driver, newest first, with the registration form.
func (h *Handler) DriversPage(c *gin.Context) {
	drivers, err := h.store.ListDrivers(c.Request.Context(), store.DriverFilter{})
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "drivers_page", "Drivers", "drivers", toDrivers(drivers))
}

type weeklyAddData struct {
	Drivers []driverResponse
	Week    week.Range
}

// WeeklyAddPage shows the entry form for active drivers, ordered by name.
func (h *Handler) WeeklyAddPage(c *gin.Context) {
	drivers, err := h.store.ListDrivers(c.Request.Context(), store.DriverFilter{ActiveOnly: true, OrderByName: true})
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "weekly_add_page", "Add Weekly Entry", "weekly_add", weeklyAddData{
		Drivers: toDrivers(drivers),
		Week:    h.currentWeek(),
	})
}

// WeeklyManagePage lists entries of active drivers, newest week first.
func (h *Handler) WeeklyManagePage(c *gin.Context) {
	entries, err := h.store.ListWeeklyEntries(c.Request.Context(), store.WeeklyFilter{
		ActiveDriversOnly: true,
		WithDriver:        true,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "weekly_manage_page", "Manage Weekly Entries", "weekly_manage", entries)
}

// PerformancePage renders the dashboard.
func (h *Handler) PerformancePage(c *gin.Context) {
	drivers, err := h.store.DriverHistories(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "performance_page", "Performance", "performance", performance.Build(drivers, h.currentWeek()))
}

type loginData struct {
	Next string
}

func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, "login_page", "Sign in", "", loginData{Next: localPath(c.Query("next"))})
}

// localPath keeps next only when it is a path on this site; anything that
// could send the browser to another host falls back to the dashboard.
func localPath(next string) string {
	const fallback = "/performance"
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
