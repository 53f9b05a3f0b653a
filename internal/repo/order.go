package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shopdb/internal/models"
)

func withOrderRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("OrderItems").
		Preload("OrderItems.Product")
}

// CreateOrder inserts the order together with its items.
func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("User").Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := withOrderRelations(r.DB.WithContext(ctx)).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := withOrderRelations(r.DB.WithContext(ctx)).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *GormRepo) OrdersWhere(ctx context.Context, column string, value any) ([]models.Order, error) {
	var out []models.Order
	err := withOrderRelations(r.DB.WithContext(ctx)).
		Where(column+" = ?", value).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) OrderNumberTaken(ctx context.Context, number string, except uuid.UUID) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", number)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) SaveOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

// DeleteOrder removes an order and its items in one transaction.
func (r *GormRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		if err := tx.DB.WithContext(ctx).Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) CountOrders(ctx context.Context, query string, args ...any) (int64, error) {
	return r.count(ctx, &models.Order{}, query, args...)
}

func (r *GormRepo) OrderGroupCount(ctx context.Context, column string) ([]GroupCount, error) {
	return r.groupCount(ctx, &models.Order{}, column)
}
