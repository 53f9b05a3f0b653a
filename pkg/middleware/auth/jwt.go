package authmw

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopdb/pkg/logging"
	"github.com/Skotchmaster/shopdb/pkg/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type JWTMiddleware struct {
	Secret []byte
	// SecureCookie marks the cleared access cookie as Secure.
	SecureCookie bool
}

func New(secret []byte) *JWTMiddleware {
	return &JWTMiddleware{Secret: secret}
}

type validatorFunc func(claims *tokens.AccessClaims) error

func (m *JWTMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, nil)
}

func (m *JWTMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *JWTMiddleware) require(next echo.HandlerFunc, validate validatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		raw := bearerToken(c)
		if raw == "" {
			l.Warn("auth_failed", "status", 401, "reason", "missing access token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.Secret)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "invalid access token", "error", err)
			c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", m.SecureCookie))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if validate != nil {
			if err := validate(claims); err != nil {
				l.Warn("auth_failed", "status", 403, "reason", "role check failed", "role", claims.Role)
				return err
			}
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxRole, claims.Role)
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

// UserID returns the subject stored by RequireAuth.
func UserID(c echo.Context) string {
	v, _ := c.Get(ctxUserID).(string)
	return v
}

func Role(c echo.Context) string {
	v, _ := c.Get(ctxRole).(string)
	return v
}
