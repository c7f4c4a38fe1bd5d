package routes

import (
	"github.com/gin-gonic/gin"

	"taxi_ledger/internal/controllers"
	"taxi_ledger/internal/middleware"
)

func PageRoutes(r *gin.Engine, h *controllers.Handler, auth *middleware.Auth) {
	r.GET("/login", h.LoginPage)

	pages := r.Group("/", auth.RequirePageAuth())
	{
		pages.GET("/", h.Home)
		pages.GET("/drivers", h.DriversPage)
		pages.GET("/weekly/add", h.WeeklyAddPage)
		pages.GET("/weekly/manage", h.WeeklyManagePage)
		pages.GET("/performance", h.PerformancePage)
	}
}
