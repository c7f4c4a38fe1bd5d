package routes

import (
	"github.com/gin-gonic/gin"

	"taxi_ledger/internal/controllers"
)

func WeeklyRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	weekly := api.Group("/weekly")
	{
		weekly.GET("", h.ListWeeklyEntries)
		weekly.POST("", h.CreateWeeklyEntry)
		weekly.DELETE("", h.DeleteWeeklyEntries)
		weekly.PATCH("/:id", h.UpdateWeeklyEntry)
		weekly.DELETE("/:id", h.DeleteWeeklyEntry)
	}
}

func PerformanceRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	api.GET("/performance", h.Performance)
}
