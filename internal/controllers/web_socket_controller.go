package controllers

import (
	"github.com/gin-gonic/gin"

	"taxi_ledger/internal/realtime"
)

// HandleChangesWebSocket streams change events to dashboards.
// @Router /ws/changes [get]
func HandleChangesWebSocket(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	}
}
