package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shopdb/internal/models"
)

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.DB.WithContext(ctx).
		Preload("Products").
		Order("sort_order ASC, name ASC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Preload("Products").Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) CategoryNameTaken(ctx context.Context, name string, except uuid.UUID) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.Category{}).Where("name = ?", name)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

// DeleteCategory detaches the category's products before removing it so the
// result does not depend on the engine enforcing ON DELETE SET NULL.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		if err := tx.DB.WithContext(ctx).
			Model(&models.Product{}).
			Where("category_id = ?", id).
			UpdateColumn("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
