package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/repo"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/internal/util"
	"github.com/Skotchmaster/shopdb/pkg/cache"
	"github.com/Skotchmaster/shopdb/pkg/events"
	"github.com/Skotchmaster/shopdb/pkg/hash"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

const dateLayout = "2006-01-02"

type UserService struct {
	*Deps
}

func NewUserService(d *Deps) *UserService {
	return &UserService{Deps: d}
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, validationf("birthDate must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

func (s *UserService) ensureUnique(ctx context.Context, username, email string, except uuid.UUID) error {
	if username != "" {
		taken, err := s.Repo.UserFieldTaken(ctx, "username", username, except)
		if err != nil {
			return err
		}
		if taken {
			return conflictf("Username already exists")
		}
	}
	if email != "" {
		taken, err := s.Repo.UserFieldTaken(ctx, "email", email, except)
		if err != nil {
			return err
		}
		if taken {
			return conflictf("Email already exists")
		}
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.create")

	email := strings.ToLower(req.Email)
	if err := s.ensureUnique(ctx, req.Username, email, uuid.Nil); err != nil {
		return nil, err
	}
	if !hash.BasicPolicy.Satisfied(req.Password) {
		return nil, validationf("password must be at least 6 characters and contain upper-case, lower-case letters and a digit")
	}
	birth, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, err
	}
	pw, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("hash_password_failed", "error", err)
		return nil, err
	}

	u := &models.User{
		Username:    req.Username,
		Email:       email,
		Password:    pw,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Bio:         req.Bio,
		BirthDate:   birth,
		Preferences: req.Preferences,
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
	s.publish(ctx, events.TopicUsers, "user_created", u.ID.String(), u)
	l.Info("user_created", "user_id", u.ID)
	return u, nil
}

func (s *UserService) FindAll(ctx context.Context) ([]models.UserSummary, error) {
	return s.Repo.ListUserSummaries(ctx)
}

func (s *UserService) FindOne(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, lookup(err, "User", id)
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req transport.UpdateUserRequest) (*models.User, error) {
	u, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	var newUsername, newEmail string
	if req.Username != nil && *req.Username != u.Username {
		newUsername = *req.Username
	}
	if req.Email != nil {
		if e := strings.ToLower(*req.Email); e != u.Email {
			newEmail = e
		}
	}
	if err := s.ensureUnique(ctx, newUsername, newEmail, id); err != nil {
		return nil, err
	}
	if newUsername != "" {
		u.Username = newUsername
	}
	if newEmail != "" {
		u.Email = newEmail
	}

	if req.Password != nil {
		if !hash.BasicPolicy.Satisfied(*req.Password) {
			return nil, validationf("password must be at least 6 characters and contain upper-case, lower-case letters and a digit")
		}
		pw, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.Password = pw
	}
	if req.BirthDate != nil {
		birth, err := parseDate(req.BirthDate)
		if err != nil {
			return nil, err
		}
		u.BirthDate = birth
	}
	if req.FirstName != nil {
		u.FirstName = req.FirstName
	}
	if req.LastName != nil {
		u.LastName = req.LastName
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
	if req.Bio != nil {
		u.Bio = req.Bio
	}
	if req.Balance != nil {
		u.Balance = *req.Balance
	}
	if req.Preferences != nil {
		u.Preferences = req.Preferences
	}
	if req.IsEmailVerified != nil {
		u.IsEmailVerified = *req.IsEmailVerified
	}

	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, duplicate(err, "Username or email already exists")
	}

	s.invalidate(ctx, userStatsKey)
	s.publish(ctx, events.TopicUsers, "user_updated", u.ID.String(), u)
	return u, nil
}

func (s *UserService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return conflictf("User has existing orders")
		}
		return lookup(err, "User", id)
	}
	s.invalidate(ctx, userStatsKey)
	s.publish(ctx, events.TopicUsers, "user_deleted", id.String(), nil)
	return nil
}

func (s *UserService) Search(ctx context.Context, q string) ([]models.User, error) {
	return s.Repo.SearchUsers(ctx, q)
}

func (s *UserService) FindByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if !role.Valid() {
		return nil, validationf("unknown role %q", role)
	}
	return s.Repo.UsersWhere(ctx, "role", role)
}

func (s *UserService) FindByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	if !status.Valid() {
		return nil, validationf("unknown status %q", status)
	}
	return s.Repo.UsersWhere(ctx, "status", status)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, validationf("invalid email address")
	}
	email = strings.ToLower(email)
	u, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, lookup(err, "User", email)
	}
	return u, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, lookup(err, "User", username)
	}
	return u, nil
}

func (s *UserService) Page(ctx context.Context, page, limit int) (*transport.UserPage, error) {
	page, from, limit := util.Calculate(page, limit)
	total, users, err := s.Repo.PageUsers(ctx, from, limit)
	if err != nil {
		return nil, err
	}
	return &transport.UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: util.TotalPages(total, limit),
	}, nil
}

func (s *UserService) Stats(ctx context.Context) (transport.UserStats, error) {
	return cache.Remember(ctx, s.cache(), userStatsKey, s.CacheTTL, s.loadStats)
}

func (s *UserService) loadStats(ctx context.Context) (transport.UserStats, error) {
	var st transport.UserStats
	var err error
	if st.Total, err = s.Repo.CountUsers(ctx, ""); err != nil {
		return st, err
	}
	if st.Active, err = s.Repo.CountUsers(ctx, "status = ?", models.UserActive); err != nil {
		return st, err
	}
	if st.Admins, err = s.Repo.CountUsers(ctx, "role = ?", models.RoleAdmin); err != nil {
		return st, err
	}

	roles, err := s.Repo.UserGroupCount(ctx, "role")
	if err != nil {
		return st, err
	}
	st.RoleStats = make([]transport.RoleCount, 0, len(roles))
	for _, r := range roles {
		st.RoleStats = append(st.RoleStats, transport.RoleCount{Role: models.UserRole(r.Key), Count: r.Count})
	}

	statuses, err := s.Repo.UserGroupCount(ctx, "status")
	if err != nil {
		return st, err
	}
	st.StatusStats = statusCounts(statuses)
	return st, nil
}

func statusCounts(rows []repo.GroupCount) []transport.StatusCount {
	out := make([]transport.StatusCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, transport.StatusCount{Status: r.Key, Count: r.Count})
	}
	return out
}

func (s *UserService) ActiveWithOrders(ctx context.Context) ([]models.User, error) {
	return s.Repo.ActiveUsersWithOrders(ctx)
}

func (s *UserService) WithOrderCount(ctx context.Context) ([]models.UserOrderStats, error) {
	return s.Repo.UsersWithOrderCount(ctx)
}

func (s *UserService) UpdateMultipleStatus(ctx context.Context, ids []uuid.UUID, status models.UserStatus) error {
	if len(ids) == 0 {
		return validationf("userIds must not be empty")
	}
	if !status.Valid() {
		return validationf("unknown status %q", status)
	}
	n, err := s.Repo.UpdateUsersStatus(ctx, ids, status)
	if err != nil {
		return err
	}
	s.invalidate(ctx, userStatsKey)
	logging.FromContext(ctx).Info("users_status_updated", "requested", len(ids), "updated", n, "status", status)
	return nil
}

func (s *UserService) DeleteMultiple(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return validationf("userIds must not be empty")
	}
	n, err := s.Repo.DeleteUsers(ctx, ids)
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return conflictf("One or more users have existing orders")
		}
		return err
	}
	s.invalidate(ctx, userStatsKey)
	logging.FromContext(ctx).Info("users_deleted", "requested", len(ids), "deleted", n)
	return nil
}

// TransferBalance moves amount from one user to another in a single
// transaction. Both rows are locked in id order so concurrent transfers
// between the same pair cannot deadlock.
func (s *UserService) TransferBalance(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal) error {
	l := logging.FromContext(ctx).With("svc", "users.transfer_balance")

	if from == to {
		return validationf("cannot transfer balance to the same user")
	}
	if !amount.IsPositive() {
		return validationf("amount must be positive")
	}

	first, second := from, to
	if strings.Compare(to.String(), from.String()) < 0 {
		first, second = to, from
	}

	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		locked := make(map[uuid.UUID]*models.User, 2)
		for _, id := range []uuid.UUID{first, second} {
			u, err := tx.LockUser(ctx, id)
			if err != nil {
				return lookup(err, "User", id)
			}
			locked[id] = u
		}

		sender, receiver := locked[from], locked[to]
		if sender.Balance.LessThan(amount) {
			return validationf("Insufficient balance")
		}
		if err := tx.SetUserBalance(ctx, sender.ID, sender.Balance.Sub(amount)); err != nil {
			return err
		}
		return tx.SetUserBalance(ctx, receiver.ID, receiver.Balance.Add(amount))
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.TopicUsers, "balance_transferred", from.String(), map[string]any{
		"fromUserId": from,
		"toUserId":   to,
		"amount":     amount,
	})
	l.Info("transfer_balance_success", "from", from, "to", to, "amount", amount.String())
	return nil
}

func (s *UserService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.SoftDeleteUser(ctx, id); err != nil {
		return lookup(err, "User", id)
	}
	s.invalidate(ctx, userStatsKey)
	s.publish(ctx, events.TopicUsers, "user_soft_deleted", id.String(), nil)
	return nil
}

func (s *UserService) Restore(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := s.Repo.RestoreUser(ctx, id); err != nil {
		return nil, lookup(err, "Deleted user", id)
	}
	s.invalidate(ctx, userStatsKey)
	s.publish(ctx, events.TopicUsers, "user_restored", id.String(), nil)
	return s.FindOne(ctx, id)
}
