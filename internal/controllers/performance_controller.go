package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxi_ledger/internal/performance"
)

// Performance returns the dashboard figures for the current week.
func (h *Handler) Performance(c *gin.Context) {
	drivers, err := h.store.DriverHistories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPerformance(performance.Build(drivers, h.currentWeek())))
}

// Healthz reports that the process is up.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports whether the database answers.
func (h *Handler) Readyz(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
