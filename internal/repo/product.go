package repo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shopdb/internal/models"
)

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).
		Preload("Category").
		Preload("OrderItems").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LockProduct reads a bare product row under a row lock.
func (r *GormRepo) LockProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.forUpdate(r.DB.WithContext(ctx)).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SKUTaken(ctx context.Context, sku string, except uuid.UUID) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("sku = ?", sku)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.count(ctx, &models.Category{}, "id = ?", id)
	return n > 0, err
}

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.DB.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&out).Error
	return out, err
}

// ProductFilter narrows FindProducts. Zero values mean "no constraint".
type ProductFilter struct {
	Where   string
	Args    []any
	Order   string
	Limit   int
	Preload bool
}

func (r *GormRepo) FindProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Preload {
		q = q.Preload("Category")
	}
	if f.Where != "" {
		q = q.Where(f.Where, f.Args...)
	}
	if f.Order != "" {
		q = q.Order(f.Order)
	} else {
		q = q.Order("created_at DESC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	p := likePattern(q)
	return r.FindProducts(ctx, ProductFilter{
		Where:   "name LIKE ? OR description LIKE ? OR sku LIKE ?",
		Args:    []any{p, p, p},
		Preload: true,
	})
}

// SearchProductsPage is the database fallback for full-text search.
func (r *GormRepo) SearchProductsPage(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	p := likePattern(q)
	where := "status = ? AND (name LIKE ? OR description LIKE ?)"
	args := []any{models.ProductActive, p, p}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where(where, args...).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var items []models.Product
	err := r.DB.WithContext(ctx).
		Where(where, args...).
		Order("sold_count DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) PageProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	err := r.DB.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CountProducts(ctx context.Context, query string, args ...any) (int64, error) {
	return r.count(ctx, &models.Product{}, query, args...)
}

func (r *GormRepo) ProductGroupCount(ctx context.Context, column string) ([]GroupCount, error) {
	return r.groupCount(ctx, &models.Product{}, column)
}

// CategoryCountRow is one row of products-per-category.
type CategoryCountRow struct {
	CategoryID   *uuid.UUID
	CategoryName *string
	Total        int64
}

func (r *GormRepo) ProductCountByCategory(ctx context.Context) ([]CategoryCountRow, error) {
	var rows []CategoryCountRow
	err := r.DB.WithContext(ctx).
		Table("products p").
		Select("p.category_id AS category_id, c.name AS category_name, COUNT(p.id) AS total").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Group("p.category_id, c.name").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

const productSalesSQL = `
SELECT p.id, p.name, p.sku, p.price, p.stock_quantity, p.rating, p.review_count, p.sold_count,
       c.name AS category_name,
       COALESCE(SUM(oi.quantity), 0) AS total_ordered,
       COALESCE(SUM(oi.quantity * oi.unit_price), 0) AS total_revenue
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN order_items oi ON oi.product_id = p.id
WHERE p.status = ?
GROUP BY p.id, p.name, p.sku, p.price, p.stock_quantity, p.rating, p.review_count, p.sold_count, c.name
ORDER BY SUM(oi.quantity * oi.unit_price) DESC NULLS LAST, p.name ASC`

func (r *GormRepo) ProductSales(ctx context.Context) ([]models.ProductSales, error) {
	var out []models.ProductSales
	if err := r.DB.WithContext(ctx).Raw(productSalesSQL, models.ProductActive).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveProductsWithTags returns active products whose tags include every tag given.
func (r *GormRepo) ActiveProductsWithTags(ctx context.Context, tags []string) ([]models.Product, error) {
	if r.isPostgres() {
		b, err := json.Marshal(tags)
		if err != nil {
			return nil, err
		}
		return r.FindProducts(ctx, ProductFilter{
			Where: "status = ? AND tags @> ?::jsonb",
			Args:  []any{models.ProductActive, string(b)},
		})
	}

	all, err := r.FindProducts(ctx, ProductFilter{Where: "status = ?", Args: []any{models.ProductActive}})
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if p.Tags.Contains(tags) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ActiveProductsWithAttributes returns active products whose attributes contain attrs.
func (r *GormRepo) ActiveProductsWithAttributes(ctx context.Context, attrs map[string]any) ([]models.Product, error) {
	b, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	if r.isPostgres() {
		return r.FindProducts(ctx, ProductFilter{
			Where: "status = ? AND attributes @> ?::jsonb",
			Args:  []any{models.ProductActive, string(b)},
		})
	}

	var want any
	if err := json.Unmarshal(b, &want); err != nil {
		return nil, err
	}
	all, err := r.FindProducts(ctx, ProductFilter{Where: "status = ?", Args: []any{models.ProductActive}})
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if p.Attributes == nil {
			continue
		}
		if jsonContains(map[string]any(p.Attributes), want) {
			out = append(out, p)
		}
	}
	return out, nil
}

// IncrementProductCounter adds delta to a counter column and returns false
// when no product matched.
func (r *GormRepo) IncrementProductCounter(ctx context.Context, id uuid.UUID, column string, delta int) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	return res.RowsAffected > 0, res.Error
}

// LowStockProducts lists active products at or below their minimum level but not empty.
func (r *GormRepo) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	return r.FindProducts(ctx, ProductFilter{
		Where: "status = ? AND stock_quantity > 0 AND stock_quantity <= min_stock_level",
		Args:  []any{models.ProductActive},
		Order: "stock_quantity ASC",
	})
}
