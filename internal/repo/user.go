package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shopdb/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

func (r *GormRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) ListUserSummaries(ctx context.Context) ([]models.UserSummary, error) {
	var out []models.UserSummary
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "username", "email", "first_name", "last_name", "role", "status", "created_at").
		Order("created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByLogin matches either the username or the email.
func (r *GormRepo) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserFieldTaken reports whether another live user already uses value in column.
func (r *GormRepo) UserFieldTaken(ctx context.Context, column, value string, except uuid.UUID) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(u).Error
}

// DeleteUser removes the row for good, soft-deleted or not.
func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	p := likePattern(q)
	var out []models.User
	err := r.DB.WithContext(ctx).
		Where("username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", p, p, p, p).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) UsersWhere(ctx context.Context, column string, value any) ([]models.User, error) {
	var out []models.User
	err := r.DB.WithContext(ctx).
		Where(column+" = ?", value).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) PageUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.User
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CountUsers(ctx context.Context, query string, args ...any) (int64, error) {
	return r.count(ctx, &models.User{}, query, args...)
}

func (r *GormRepo) UserGroupCount(ctx context.Context, column string) ([]GroupCount, error) {
	return r.groupCount(ctx, &models.User{}, column)
}

func (r *GormRepo) ActiveUsersWithOrders(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.DB.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Where("status = ?", models.UserActive).
		Where("EXISTS (SELECT 1 FROM orders o WHERE o.user_id = users.id)").
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

const usersWithOrderCountSQL = `
SELECT u.id, u.username, u.email,
       COUNT(o.id) AS order_count,
       COALESCE(SUM(o.total_amount), 0) AS total_spent
FROM users u
LEFT JOIN orders o ON o.user_id = u.id
WHERE u.status = ? AND u.deleted_at IS NULL
GROUP BY u.id, u.username, u.email
ORDER BY SUM(o.total_amount) DESC NULLS LAST, u.username ASC`

func (r *GormRepo) UsersWithOrderCount(ctx context.Context) ([]models.UserOrderStats, error) {
	var out []models.UserOrderStats
	if err := r.DB.WithContext(ctx).Raw(usersWithOrderCountSQL, models.UserActive).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) UpdateUsersStatus(ctx context.Context, ids []uuid.UUID, status models.UserStatus) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", ids).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteUsers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&models.User{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) SoftDeleteUser(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RestoreUser clears deleted_at; a user that is not soft-deleted is reported as not found.
func (r *GormRepo) RestoreUser(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Unscoped().
		Model(&models.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LockUser reads a user and holds its row lock until the surrounding
// transaction ends.
func (r *GormRepo) LockUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.forUpdate(r.DB.WithContext(ctx)).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) SetUserBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("balance", balance).Error
}

func (r *GormRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *GormRepo) SetUserPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

func (r *GormRepo) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.count(ctx, &models.User{}, "id = ?", id)
	return n > 0, err
}
