package controllers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/performance"
	"taxi_ledger/internal/realtime"
	"taxi_ledger/internal/store"
	"taxi_ledger/internal/validation"
)

// toggleDriverPayload is the body of PATCH /api/drivers/:id/toggle.
type toggleDriverPayload struct {
	Hidden *bool `json:"hidden"`
}

// ListDrivers returns every driver newest first. ?active=true drops hidden
// and removed drivers.
func (h *Handler) ListDrivers(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	drivers, err := h.store.ListDrivers(c.Request.Context(), store.DriverFilter{ActiveOnly: activeOnly})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDrivers(drivers))
}

func (h *Handler) GetDriver(c *gin.Context) {
	d, err := h.store.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriver(d))
}

// CreateDriver registers a driver: 201 on success, 422 with field messages
// on invalid input, 409 when the phone is taken.
func (h *Handler) CreateDriver(c *gin.Context) {
	var req validation.DriverRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := validation.ParseDriverCreate(req)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.CreateDriver(c.Request.Context(), d); err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"driver_id": d.ID, "name": d.Name}).Info("Driver registered.")
	h.notify.Publish(realtime.Event{Type: realtime.DriverCreated, DriverID: d.ID})
	c.JSON(http.StatusCreated, toDriver(d))
}

// UpdateDriver applies a partial update.
func (h *Handler) UpdateDriver(c *gin.Context) {
	var req validation.DriverRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := validation.ParseDriverPatch(req)
	if err != nil {
		respondError(c, err)
		return
	}
	d, err := h.store.UpdateDriver(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notify.Publish(realtime.Event{Type: realtime.DriverUpdated, DriverID: d.ID})
	c.JSON(http.StatusOK, toDriver(d))
}

// ToggleDriver hides or unhides a driver. History is kept either way.
func (h *Handler) ToggleDriver(c *gin.Context) {
	var payload toggleDriverPayload
	if !bindJSON(c, &payload) {
		return
	}
	if payload.Hidden == nil {
		fields := apperrors.FieldErrors{}
		fields.Add("hidden", "Hidden must be true or false")
		respondError(c, apperrors.Validation(fields))
		return
	}

	d, err := h.store.SetHidden(c.Request.Context(), c.Param("id"), *payload.Hidden)
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"driver_id": d.ID, "hidden": d.Hidden}).Info("Driver visibility changed.")
	h.notify.Publish(realtime.Event{Type: realtime.DriverUpdated, DriverID: d.ID})
	c.JSON(http.StatusOK, toDriver(d))
}

// DeleteDriver removes a driver and, through the cascade, all of their
// weekly entries. ?soft=true only marks the driver removed.
func (h *Handler) DeleteDriver(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if soft, _ := strconv.ParseBool(c.Query("soft")); soft {
		d, err := h.store.SetRemoved(ctx, id, true)
		if err != nil {
			respondError(c, err)
			return
		}
		h.notify.Publish(realtime.Event{Type: realtime.DriverUpdated, DriverID: d.ID})
		c.JSON(http.StatusOK, gin.H{"ok": true, "removedAt": d.RemovedAt})
		return
	}

	if err := h.store.DeleteDriver(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	logrus.WithField("driver_id", id).Info("Driver deleted with weekly history.")
	h.notify.Publish(realtime.Event{Type: realtime.DriverDeleted, DriverID: id})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ExportWeeklyCSV downloads a driver's weekly history as CSV.
func (h *Handler) ExportWeeklyCSV(c *gin.Context) {
	d, err := h.store.GetDriverWithEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := performance.WriteCSV(&buf, d.WeeklyEntries); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to build CSV"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+performance.FileName(d.Name, "csv")+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportWeeklyXLSX downloads the same history as an Excel workbook.
func (h *Handler) ExportWeeklyXLSX(c *gin.Context) {
	d, err := h.store.GetDriverWithEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := performance.WriteXLSX(&buf, d.Name, d.WeeklyEntries); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to build spreadsheet"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+performance.FileName(d.Name, "xlsx")+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
