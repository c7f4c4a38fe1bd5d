package routes

import (
	"github.com/gin-gonic/gin"

	"taxi_ledger/internal/controllers"
)

func DriverRoutes(api *gin.RouterGroup, h *controllers.Handler) {
	drivers := api.Group("/drivers")
	{
		drivers.GET("", h.ListDrivers)
		drivers.POST("", h.CreateDriver)
		drivers.GET("/:id", h.GetDriver)
		drivers.PATCH("/:id", h.UpdateDriver)
		drivers.DELETE("/:id", h.DeleteDriver)
		drivers.PATCH("/:id/toggle", h.ToggleDriver)
		drivers.GET("/:id/weekly.csv", h.ExportWeeklyCSV)
		drivers.GET("/:id/weekly.xlsx", h.ExportWeeklyXLSX)
	}
}
