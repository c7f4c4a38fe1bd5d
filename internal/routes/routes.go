package routes

import (
	"html/template"
	"io"
	"io/fs"
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"taxi_ledger/internal/controllers"
	"taxi_ledger/internal/middleware"
	"taxi_ledger/internal/realtime"
	"taxi_ledger/web"
)

// Deps is what the router is built from.
type Deps struct {
	Handler *controllers.Handler
	Auth    *middleware.Auth
	Hub     *realtime.Hub
	Origins []string
	// LogWriter receives access logs; nil disables them.
	LogWriter io.Writer
}

func SetupRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	if d.LogWriter != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(d.LogWriter),
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/healthz", "/readyz"}),
		))
	}
	r.Use(gin.Recovery(), middleware.CORS(d.Origins))

	tmpl, err := template.New("").Funcs(controllers.TemplateFuncs).ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	r.StaticFS("/static", http.FS(static))

	HealthRoutes(r, d.Handler)
	AuthRoutes(r, d.Handler)
	api := r.Group("/api", d.Auth.RequireAuth())
	DriverRoutes(api, d.Handler)
	WeeklyRoutes(api, d.Handler)
	PerformanceRoutes(api, d.Handler)
	PageRoutes(r, d.Handler, d.Auth)
	if d.Hub != nil {
		WebSocketRoutes(r, d.Hub, d.Auth)
	}
	return r, nil
}
