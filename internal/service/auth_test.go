package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/pkg/hash"
	"github.com/Skotchmaster/shopdb/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

func newTestAuthService(t *testing.T) (*AuthService, *Deps) {
	t.Helper()
	d, _ := newTestDeps(t)
	fixed := time.Now().UTC().Truncate(time.Second)
	d.Now = func() time.Time { return fixed }
	return NewAuthService(d, testSecret, 15*time.Minute), d
}

func register(t *testing.T, svc *AuthService, username string) *models.User {
	t.Helper()
	res, err := svc.Register(context.Background(), transport.RegisterRequest{
		Username: username,
		Email:    username + "@Example.com",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	return res.User
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	u := register(t, svc, "neo")
	assert.Equal(t, "neo@example.com", u.Email)
	assert.True(t, hash.CheckPassword(u.Password, "Str0ng!pass"))

	tests := []struct {
		name string
		req  transport.RegisterRequest
		want error
	}{
		{name: "username taken", req: transport.RegisterRequest{Username: "neo", Email: "other@example.com", Password: "Str0ng!pass"}, want: ErrConflict},
		{name: "email taken", req: transport.RegisterRequest{Username: "trinity", Email: "NEO@example.com", Password: "Str0ng!pass"}, want: ErrConflict},
		{name: "no special char", req: transport.RegisterRequest{Username: "trinity", Email: "t@example.com", Password: "Str0ngpass"}, want: ErrValidation},
		{name: "too short", req: transport.RegisterRequest{Username: "trinity", Email: "t@example.com", Password: "S0!a"}, want: ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_LoginIssuesToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	u := register(t, svc, "morpheus")

	for _, login := range []string{"morpheus", "MORPHEUS@example.com"} {
		res, err := svc.Login(ctx, transport.LoginRequest{Username: login, Password: "Str0ng!pass"})
		require.NoError(t, err, login)

		assert.Equal(t, u.ID, res.User.ID)
		require.NotNil(t, res.User.LastLoginAt)
		assert.Equal(t, svc.now(), res.LoginTime)
		assert.Equal(t, res.LoginTime.Add(15*time.Minute), res.ExpiresAt)

		claims, err := tokens.AccessClaimsFromToken(res.AccessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, u.ID.String(), claims.Subject)
		assert.Equal(t, string(models.RoleUser), claims.Role)
	}

	stored, err := svc.Repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, d := newTestAuthService(t)
	ctx := context.Background()
	u := register(t, svc, "smith")

	_, err := svc.Login(ctx, transport.LoginRequest{Username: "smith", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, transport.LoginRequest{Username: "nobody", Password: "Str0ng!pass"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = d.Repo.UpdateUsersStatus(ctx, []uuid.UUID{u.ID}, models.UserInactive)
	require.NoError(t, err)
	_, err = svc.Login(ctx, transport.LoginRequest{Username: "smith", Password: "Str0ng!pass"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	u := register(t, svc, "oracle")

	_, err := svc.ChangePassword(ctx, u.ID, transport.ChangePasswordRequest{CurrentPassword: "bad", NewPassword: "N3w!secret"})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ChangePassword(ctx, u.ID, transport.ChangePasswordRequest{CurrentPassword: "Str0ng!pass", NewPassword: "weak"})
	require.ErrorIs(t, err, ErrValidation)

	res, err := svc.ChangePassword(ctx, u.ID, transport.ChangePasswordRequest{CurrentPassword: "Str0ng!pass", NewPassword: "N3w!secret"})
	require.NoError(t, err)
	assert.Equal(t, "Password changed successfully", res.Message)

	_, err = svc.Login(ctx, transport.LoginRequest{Username: "oracle", Password: "N3w!secret"})
	assert.NoError(t, err)

	_, err = svc.ChangePassword(ctx, uuid.New(), transport.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "y"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_Profile(t *testing.T) {
	svc, _ := newTestAuthService(t)
	u := register(t, svc, "tank")

	res, err := svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "tank", res.User.Username)

	_, err = svc.Profile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
