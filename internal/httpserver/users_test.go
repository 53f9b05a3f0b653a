package httpserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/transport"
)

func createUser(t *testing.T, s *testServer, name string, balance int) models.User {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/users", map[string]any{
		"username": name,
		"email":    name + "@Example.com",
		"password": "Secret1",
		"balance":  balance,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.User](t, rec)
}

func TestUsers_CRUD(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	u := createUser(t, s, "alice", 10)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.UserActive, u.Status)
	assert.Equal(t, models.RoleUser, u.Role)

	rec := s.do(t, http.MethodPost, "/users", map[string]any{
		"username": "alice", "email": "other@example.com", "password": "Secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/"+u.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodPatch, "/users/"+u.ID.String(), map[string]any{"firstName": "Alice", "lastName": "Liddell"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice Liddell", decode[models.User](t, rec).FullName)

	rec = s.do(t, http.MethodGet, "/users/email/ALICE@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID, decode[models.User](t, rec).ID)

	rec = s.do(t, http.MethodGet, "/users/email/not-an-email", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/username/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.UserSummary](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/users/"+u.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/users/"+u.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_Lookups(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	createUser(t, s, "bob", 0)
	createUser(t, s, "carol", 0)

	rec := s.do(t, http.MethodGet, "/users/search/query?q=car", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]models.User](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, "carol", found[0].Username)

	rec = s.do(t, http.MethodGet, "/users/role/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/users/role/overlord", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/page/list?page=2&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.UserPage](t, rec)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.EqualValues(t, 2, page.TotalPages)
	assert.Len(t, page.Users, 1)

	rec = s.do(t, http.MethodGet, "/users/stats/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[transport.UserStats](t, rec)
	assert.EqualValues(t, 2, st.Total)
	assert.EqualValues(t, 2, st.Active)
	assert.EqualValues(t, 0, st.Admins)
}

func TestUsers_TransferBalance(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	from := createUser(t, s, "payer", 100)
	to := createUser(t, s, "payee", 5)

	rec := s.do(t, http.MethodPost, "/users/transfer-balance", map[string]any{
		"fromUserId": from.ID, "toUserId": to.ID, "amount": 40.5,
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	ctx := context.Background()
	got, err := s.svc.Repo.GetUser(ctx, from.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("59.5").Equal(got.Balance), got.Balance.String())
	got, err = s.svc.Repo.GetUser(ctx, to.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("45.5").Equal(got.Balance), got.Balance.String())

	tests := []struct {
		name string
		body map[string]any
		code int
		msg  string
	}{
		{"insufficient", map[string]any{"fromUserId": from.ID, "toUserId": to.ID, "amount": 1000}, http.StatusBadRequest, "Insufficient balance"},
		{"self", map[string]any{"fromUserId": from.ID, "toUserId": from.ID, "amount": 1}, http.StatusBadRequest, "same user"},
		{"unknown receiver", map[string]any{"fromUserId": from.ID, "toUserId": uuid.New(), "amount": 1}, http.StatusNotFound, "not found"},
		{"too small", map[string]any{"fromUserId": from.ID, "toUserId": to.ID, "amount": 0.001}, http.StatusBadRequest, "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/users/transfer-balance", tt.body)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Contains(t, decode[errorBody](t, rec).Message, tt.msg)
		})
	}

	assert.Equal(t, []string{"user_created", "user_created", "balance_transferred"}, s.events.Types("user_events"))
}

func TestUsers_BatchAndSoftDelete(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	a := createUser(t, s, "anna", 0)
	b := createUser(t, s, "ben", 0)

	rec := s.do(t, http.MethodPatch, "/users/batch/status", map[string]any{
		"userIds": []uuid.UUID{a.ID, b.ID}, "status": "inactive",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/users/status/inactive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 2)

	rec = s.do(t, http.MethodPatch, "/users/batch/status", map[string]any{"userIds": []uuid.UUID{}, "status": "inactive"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/users/soft/"+a.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/users/"+a.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/users/restore/"+a.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, a.ID, decode[models.User](t, rec).ID)

	rec = s.do(t, http.MethodPost, "/users/restore/"+b.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/users/batch/delete", map[string]any{"userIds": []uuid.UUID{a.ID, b.ID}})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/users", nil)
	assert.Empty(t, decode[[]models.UserSummary](t, rec))
}

func TestUsers_AdminGuard(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, withAdminGuard)

	u := createUser(t, s, "guarded", 0)
	body := map[string]any{"userIds": []uuid.UUID{u.ID}, "status": "banned"}

	rec := s.do(t, http.MethodPatch, "/users/batch/status", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPatch, "/users/batch/status", body, bearer(adminToken(t)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/"+u.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.UserBanned, decode[models.User](t, rec).Status)
}
