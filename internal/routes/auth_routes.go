package routes

import (
	"github.com/gin-gonic/gin"

	"taxi_ledger/internal/controllers"
)

func AuthRoutes(r *gin.Engine, h *controllers.Handler) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", h.LoginUser)
		auth.POST("/logout", h.LogoutUser)
	}
}

func HealthRoutes(r *gin.Engine, h *controllers.Handler) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
}
