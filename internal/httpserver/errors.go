package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopdb/internal/service"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Path       string `json:"path"`
	Timestamp  string `json:"timestamp"`
}

// ErrorHandler renders every error as {statusCode, message, path, timestamp}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else if status, m, ok := serviceStatus(err); ok {
		code, msg = status, m
	}

	body := errorBody{
		StatusCode: code,
		Message:    msg,
		Path:       c.Request().URL.Path,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response_failed", "error", werr)
	}
}

func serviceStatus(err error) (int, string, bool) {
	var se *service.Error
	msg := err.Error()
	if errors.As(err, &se) {
		msg = se.Msg
	}
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, msg, true
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, msg, true
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, msg, true
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, msg, true
	}
	return 0, "", false
}

// fail logs a failed service call with the handler's logger and converts it to
// an echo.HTTPError carrying the mapped status.
func fail(c echo.Context, handler, event string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", handler)

	status, msg, ok := serviceStatus(err)
	if !ok {
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	l.Warn(event, "status", status, "reason", msg, "error", err)
	return echo.NewHTTPError(status, msg).SetInternal(err)
}

// badRequest logs and returns a 400 for request-shape problems caught in the handler.
func badRequest(c echo.Context, handler, event string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", handler)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		l.Warn(event, "status", he.Code, "reason", he.Message, "error", err)
		return he
	}
	l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid request", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
