package controllers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/realtime"
	"taxi_ledger/internal/store"
	"taxi_ledger/internal/validation"
	"taxi_ledger/internal/week"
)

const msgNoIDs = "Provide an id (?id=...) or ids (?ids=a,b,c or JSON {ids:[]})."

// ListWeeklyEntries returns entries latest week first, optionally filtered
// by driverId, weekStart and weekEnd (yyyy-mm-dd). ?active=true keeps only
// entries of active drivers.
func (h *Handler) ListWeeklyEntries(c *gin.Context) {
	f := store.WeeklyFilter{
		DriverID:   strings.TrimSpace(c.Query("driverId")),
		WithDriver: true,
	}
	f.ActiveDriversOnly, _ = strconv.ParseBool(c.Query("active"))

	fields := apperrors.FieldErrors{}
	if raw := strings.TrimSpace(c.Query("weekStart")); raw != "" {
		if t, err := week.ParseISO(raw); err != nil {
			fields.Add("weekStart", "Use YYYY-MM-DD")
		} else {
			f.WeekStart = &t
		}
	}
	if raw := strings.TrimSpace(c.Query("weekEnd")); raw != "" {
		if t, err := week.ParseISO(raw); err != nil {
			fields.Add("weekEnd", "Use YYYY-MM-DD")
		} else {
			f.WeekEnd = &t
		}
	}
	if len(fields) > 0 {
		respondError(c, apperrors.Validation(fields))
		return
	}

	entries, err := h.store.ListWeeklyEntries(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWeeklies(entries))
}

// CreateWeeklyEntry upserts the entry for (driver, week): 201 when a row
// was created, 200 when an existing week was overwritten.
func (h *Handler) CreateWeeklyEntry(c *gin.Context) {
	var req validation.WeeklyRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := validation.ParseWeeklyCreate(req)
	if err != nil {
		respondError(c, err)
		return
	}

	entry, created, err := h.store.UpsertWeeklyEntry(c.Request.Context(), in.Entry())
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"driver_id":  entry.DriverID,
		"week_start": week.ISO(entry.WeekStart),
		"created":    created,
	}).Info("Weekly entry saved.")
	h.notify.Publish(realtime.Event{Type: realtime.WeeklySaved, DriverID: entry.DriverID, EntryIDs: []uint{entry.ID}})

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toWeekly(entry))
}

// UpdateWeeklyEntry applies a partial update to one entry.
func (h *Handler) UpdateWeeklyEntry(c *gin.Context) {
	id, err := parseEntryID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	var req validation.WeeklyRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := validation.ParseWeeklyPatch(req)
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.store.UpdateWeeklyEntry(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notify.Publish(realtime.Event{Type: realtime.WeeklyUpdated, DriverID: entry.DriverID, EntryIDs: []uint{entry.ID}})
	c.JSON(http.StatusOK, toWeekly(entry))
}

// DeleteWeeklyEntry deletes the entry named in the path.
func (h *Handler) DeleteWeeklyEntry(c *gin.Context) {
	id, err := parseEntryID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.deleteOne(c, id)
}

// DeleteWeeklyEntries deletes by ?id=, by ?ids=a,b,c (or repeated ids), or
// by a JSON body {"ids": [...]}. A single id answers {count, id}; several
// answer {count} with the number of rows actually removed.
func (h *Handler) DeleteWeeklyEntries(c *gin.Context) {
	if raw := c.Query("id"); raw != "" {
		id, err := parseEntryID(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		h.deleteOne(c, id)
		return
	}

	var raws []any
	for _, v := range c.QueryArray("ids") {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				raws = append(raws, p)
			}
		}
	}
	if len(raws) == 0 {
		var body struct {
			IDs []any `json:"ids"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			raws = body.IDs
		}
	}
	if len(raws) == 0 {
		respondError(c, apperrors.New(apperrors.CodeBadRequest, msgNoIDs))
		return
	}

	ids := make([]uint, 0, len(raws))
	for _, raw := range raws {
		id, err := toEntryID(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 1 {
		h.deleteOne(c, ids[0])
		return
	}

	count, err := h.store.DeleteWeeklyEntries(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"requested": len(ids), "deleted": count}).Info("Weekly entries deleted.")
	if count > 0 {
		h.notify.Publish(realtime.Event{Type: realtime.WeeklyDeleted, EntryIDs: ids})
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) deleteOne(c *gin.Context, id uint) {
	if err := h.store.DeleteWeeklyEntry(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.notify.Publish(realtime.Event{Type: realtime.WeeklyDeleted, EntryIDs: []uint{id}})
	c.JSON(http.StatusOK, gin.H{"count": 1, "id": id})
}

func parseEntryID(raw string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return 0, apperrors.New(apperrors.CodeBadRequest, "Bad id: "+raw)
	}
	return uint(n), nil
}

// toEntryID accepts ids decoded from a query string or a JSON array.
func toEntryID(raw any) (uint, error) {
	switch v := raw.(type) {
	case string:
		return parseEntryID(v)
	case float64:
		if v < 1 || v != math.Trunc(v) || v > math.MaxUint32 {
			return 0, apperrors.New(apperrors.CodeBadRequest, "Bad id: "+strconv.FormatFloat(v, 'f', -1, 64))
		}
		return uint(v), nil
	default:
		return 0, apperrors.New(apperrors.CodeBadRequest, "Bad id")
	}
}
