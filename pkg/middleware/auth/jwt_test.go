package authmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopdb/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

func newEcho(m *JWTMiddleware) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error { return c.String(http.StatusOK, UserID(c)) }, m.RequireAuth)
	e.GET("/admin", func(c echo.Context) error { return c.String(http.StatusOK, Role(c)) }, m.RequireAdmin)
	return e
}

func do(e *echo.Echo, path string, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	e := newEcho(New(secret))

	rec := do(e, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/me", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer garbage") })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := tokens.CreateAccessToken(secret, "user-1", "user", time.Now().Add(time.Minute))
	require.NoError(t, err)

	rec = do(e, "/me", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) })
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())

	rec = do(e, "/me", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: tok}) })
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := newEcho(New(secret))

	userTok, err := tokens.CreateAccessToken(secret, "u", "user", time.Now().Add(time.Minute))
	require.NoError(t, err)
	rec := do(e, "/admin", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+userTok) })
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminTok, err := tokens.CreateAccessToken(secret, "a", "admin", time.Now().Add(time.Minute))
	require.NoError(t, err)
	rec = do(e, "/admin", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+adminTok) })
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}
