// Package server exposes the analysis service over HTTP.
package server

import (
	_ "embed"

	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/klytics/sheetlens/internal/analysis"
)

//go:embed static/index.html
var indexHTML []byte

// Options configures New.
type Options struct {
	Service *analysis.Service
	Log     *zap.SugaredLogger
	// MaxUpload is an echo body limit such as "32M". Empty disables the limit.
	MaxUpload string
	Debug     bool
}

// New builds the echo instance with every route registered.
func New(opts Options) *echo.Echo {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = opts.Debug

	e.GET("/ping", func(c echo.Context) error {
		return c.String(200, "")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	base := e.Group("")
	base.Use(emw.CORS())
	base.Use(NewRecoverMiddleware(log))
	base.Use(NewTrackMiddleware(log))
	if opts.MaxUpload != "" {
		base.Use(emw.BodyLimit(opts.MaxUpload))
	}

	h := &handlers{svc: opts.Service}
	base.GET("/", index)
	base.POST("/analyze", h.analyze)
	base.POST("/ask", h.ask)

	return e
}
