package loggingmw

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopdb/pkg/logging"
)

// RequestLogger stores a request-scoped logger in the request context and
// writes one line per request once the handler returns. Requests whose route
// is listed in quiet still get the scoped logger but no access line.
func RequestLogger(base *slog.Logger, quiet ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = req.Header.Get(echo.HeaderXRequestID)
			}

			attrs := []any{"method", req.Method, "path", c.Path(), "url", req.URL.Path, "remote_ip", c.RealIP()}
			if rid != "" {
				attrs = append(attrs, "request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			l := base.With(attrs...)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			if slices.Contains(quiet, c.Path()) {
				return nil
			}

			status := c.Response().Status
			fields := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			if err != nil {
				fields = append(fields, "error", err.Error())
			} else {
				fields = append(fields, "bytes", c.Response().Size)
			}
			if status >= http.StatusInternalServerError {
				fields = append(fields, "user_agent", req.UserAgent())
			}
			l.Log(req.Context(), levelFor(status), "request completed", fields...)
			return nil
		}
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
