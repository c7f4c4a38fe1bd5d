package routes

import (
	"github.com/gin-gonic/gin"

	"taxi_ledger/internal/controllers"
	"taxi_ledger/internal/middleware"
	"taxi_ledger/internal/realtime"
)

func WebSocketRoutes(r *gin.Engine, hub *realtime.Hub, auth *middleware.Auth) {
	wsRoutes := r.Group("/ws")
	wsRoutes.Use(auth.RequireAuth())
	{
		wsRoutes.GET("/changes", controllers.HandleChangesWebSocket(hub))
	}
}
