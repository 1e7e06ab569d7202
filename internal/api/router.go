package api

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"example.com/exercisetracker/internal/config"
)

//go:embed static/index.html
var indexPage []byte

// NewRouter builds the echo instance serving the API, the index page,
// health checks and metrics.
func NewRouter(handler *Handler, cfg *config.Config, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowedOrigins,
	}))
	e.Use(requestLogger(logger))

	e.GET("/", index)
	e.GET("/healthz", healthz)
	e.GET(cfg.Observability.MetricsPath, echo.WrapHandler(promhttp.Handler()))

	handler.RegisterRoutes(e)
	return e
}

func index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexPage)
}

// healthz reports a simple OK status for container health checks.
func healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
