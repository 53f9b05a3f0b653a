package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopdb/internal/service"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/pkg/logging"
	authmw "github.com/Skotchmaster/shopdb/pkg/middleware/auth"
	"github.com/Skotchmaster/shopdb/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
	// SecureCookie is off for plain-HTTP development so browsers send the cookie back.
	SecureCookie bool
}

func (h *AuthHTTP) Login(c echo.Context) error {
	const handler = "auth.login"
	ctx := c.Request().Context()

	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "login_failed", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(c, handler, "login_failed", err)
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.ExpiresAt, h.SecureCookie))
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Register(c echo.Context) error {
	const handler = "auth.register"

	var req transport.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "register_failed", err)
	}

	res, err := h.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return fail(c, handler, "register_failed", err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	const handler = "auth.change_password"

	id, err := paramUUID(c, "userId")
	if err != nil {
		return badRequest(c, handler, "change_password_failed", err)
	}
	var req transport.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "change_password_failed", err)
	}

	res, err := h.Svc.ChangePassword(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, handler, "change_password_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	const handler = "auth.profile"

	id, err := paramUUID(c, "userId")
	if err != nil {
		return badRequest(c, handler, "get_profile_failed", err)
	}
	res, err := h.Svc.Profile(c.Request().Context(), id)
	if err != nil {
		return fail(c, handler, "get_profile_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

// Me returns the profile of the caller identified by the access token.
func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	id, err := uuid.Parse(authmw.UserID(c))
	if err != nil {
		l.Warn("get_me_failed", "status", 401, "reason", "token subject is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
	}

	res, err := h.Svc.Profile(ctx, id)
	if err != nil {
		return fail(c, "auth.me", "get_me_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}
