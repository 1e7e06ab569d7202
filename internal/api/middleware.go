package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"example.com/exercisetracker/internal/observability"
)

// requestLogger logs one line per request and records its latency.
func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogLatency:   true,
		LogMethod:    true,
		LogRoutePath: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			status := v.Status
			var echoErr *echo.HTTPError
			if v.Error != nil && errors.As(v.Error, &echoErr) {
				status = echoErr.Code
			}

			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			observability.ObserveRequest(v.Method, route, strconv.Itoa(status), v.Latency)

			var e *zerolog.Event
			switch {
			case status >= 500:
				e = logger.Error().Err(v.Error)
			case status >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.Str("request_id", v.RequestID).
				Dur("latency", v.Latency).
				Int("status", status).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("ip", c.RealIP()).
				Msg("API")
			return nil
		},
	})
}

// errorHandler renders router-level failures (unknown route, wrong method,
// panics) with the same {"error": ...} body as handler failures.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			status = echoErr.Code
			if msg, ok := echoErr.Message.(string); ok {
				message = msg
			}
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Error: message})
	}
}
