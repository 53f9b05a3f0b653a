package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/pkg/events"
	"github.com/Skotchmaster/shopdb/pkg/hash"
	"github.com/Skotchmaster/shopdb/pkg/logging"
	"github.com/Skotchmaster/shopdb/pkg/tokens"
)

const strongPasswordMsg = "password must be at least 8 characters and contain upper-case, lower-case letters, a digit and a special character"

type AuthService struct {
	*Deps
	JWTSecret []byte
	AccessTTL time.Duration
}

func NewAuthService(d *Deps, secret []byte, accessTTL time.Duration) *AuthService {
	return &AuthService{Deps: d, JWTSecret: secret, AccessTTL: accessTTL}
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.LoginResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", req.Username)

	u, err := s.Repo.FindUserByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown user")
			return nil, unauthorized("Invalid credentials")
		}
		return nil, err
	}
	if !hash.CheckPassword(u.Password, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, unauthorized("Invalid credentials")
	}
	if u.Status != models.UserActive {
		l.Warn("login_failed", "status", 400, "reason", "account not active", "user_status", u.Status)
		return nil, validationf("Account is not active")
	}

	now := s.now()
	if err := s.Repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLoginAt = &now

	exp := now.Add(s.AccessTTL)
	token, err := tokens.CreateAccessToken(s.JWTSecret, u.ID.String(), string(u.Role), exp)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	l.Info("login_success", "user_id", u.ID)
	return &transport.LoginResponse{
		Message:     "Login successful",
		User:        u,
		LoginTime:   now,
		AccessToken: token,
		ExpiresAt:   exp,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.RegisterResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := strings.ToLower(req.Email)
	if taken, err := s.Repo.UserFieldTaken(ctx, "username", req.Username, uuid.Nil); err != nil {
		return nil, err
	} else if taken {
		l.Warn("register_failed", "status", 409, "reason", "username taken")
		return nil, conflictf("Username already exists")
	}
	if taken, err := s.Repo.UserFieldTaken(ctx, "email", email, uuid.Nil); err != nil {
		return nil, err
	} else if taken {
		l.Warn("register_failed", "status", 409, "reason", "email taken")
		return nil, conflictf("Email already exists")
	}
	if !hash.StrongPolicy.Satisfied(req.Password) {
		return nil, validationf(strongPasswordMsg)
	}

	pw, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u := &models.User{
		Username:  req.Username,
		Email:     email,
		Password:  pw,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
	if req.Balance != nil {
		u.Balance = *req.Balance
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, duplicate(err, "User already exists")
	}

	s.invalidate(ctx, userStatsKey)
	s.publish(ctx, events.TopicUsers, "user_registered", u.ID.String(), u)
	l.Info("register_success", "user_id", u.ID)

	return &transport.RegisterResponse{
		Message:      "Registration successful",
		User:         u,
		RegisterTime: s.now(),
	}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req transport.ChangePasswordRequest) (*transport.ChangePasswordResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, lookup(err, "User", userID)
	}
	if !hash.CheckPassword(u.Password, req.CurrentPassword) {
		l.Warn("change_password_failed", "status", 401, "reason", "current password mismatch")
		return nil, unauthorized("Current password is incorrect")
	}
	if !hash.StrongPolicy.Satisfied(req.NewPassword) {
		return nil, validationf(strongPasswordMsg)
	}

	pw, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetUserPassword(ctx, u.ID, pw); err != nil {
		return nil, err
	}

	l.Info("change_password_success")
	return &transport.ChangePasswordResponse{
		Message:    "Password changed successfully",
		ChangeTime: s.now(),
	}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*transport.ProfileResponse, error) {
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, lookup(err, "User", userID)
	}
	return &transport.ProfileResponse{Message: "Profile retrieved successfully", User: u}, nil
}
