package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/repo"
	"github.com/Skotchmaster/shopdb/internal/search"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/internal/util"
	"github.com/Skotchmaster/shopdb/pkg/cache"
	"github.com/Skotchmaster/shopdb/pkg/events"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

const (
	lowStockThreshold = 10
	maxListLimit      = 100
	maxTagLength      = 50
)

type ProductService struct {
	*Deps
	Index search.ProductIndex
}

func NewProductService(d *Deps, index search.ProductIndex) *ProductService {
	if index == nil {
		index = search.Noop{}
	}
	return &ProductService{Deps: d, Index: index}
}

// changed runs after every committed product write.
func (s *ProductService) changed(ctx context.Context, eventType string, p *models.Product) {
	s.invalidate(ctx, productStatsKey)
	s.publish(ctx, events.TopicProducts, eventType, p.ID.String(), p)
	if err := s.Index.Index(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func (s *ProductService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	ok, err := s.Repo.CategoryExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Category", *id)
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	taken, err := s.Repo.SKUTaken(ctx, req.SKU, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflictf("SKU already exists")
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		WeightUnit:    req.WeightUnit,
		Dimensions:    req.Dimensions,
		Images:        req.Images,
		Attributes:    req.Attributes,
		Tags:          req.Tags,
		SEO:           req.SEO,
		Metadata:      req.Metadata,
		CategoryID:    req.CategoryID,
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Type != nil {
		p.Type = *req.Type
	}
	if req.Weight != nil {
		p.Weight = *req.Weight
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, duplicate(err, "SKU already exists")
	}
	s.changed(ctx, "product_created", p)
	return p, nil
}

func (s *ProductService) FindAll(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *ProductService) FindOne(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, lookup(err, "Product", id)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req transport.UpdateProductRequest) (*models.Product, error) {
	p, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil && *req.SKU != p.SKU {
		taken, err := s.Repo.SKUTaken(ctx, *req.SKU, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, conflictf("SKU already exists")
		}
		p.SKU = *req.SKU
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = req.CategoryID
		p.Category = nil
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		p.OriginalPrice = req.OriginalPrice
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Type != nil {
		p.Type = *req.Type
	}
	if req.Weight != nil {
		p.Weight = *req.Weight
	}
	if req.WeightUnit != nil {
		p.WeightUnit = req.WeightUnit
	}
	if req.Dimensions != nil {
		p.Dimensions = req.Dimensions
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.Attributes != nil {
		p.Attributes = req.Attributes
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	if req.SEO != nil {
		p.SEO = req.SEO
	}
	if req.Metadata != nil {
		p.Metadata = req.Metadata
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, duplicate(err, "SKU already exists")
	}
	s.changed(ctx, "product_updated", p)
	return p, nil
}

func (s *ProductService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return conflictf("Product is referenced by existing orders")
		}
		return lookup(err, "Product", id)
	}

	s.invalidate(ctx, productStatsKey)
	s.publish(ctx, events.TopicProducts, "product_deleted", id.String(), nil)
	if err := s.Index.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_delete_failed", "product_id", id, "error", err)
	}
	return nil
}

func (s *ProductService) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	return s.Repo.FindProducts(ctx, repo.ProductFilter{
		Where:   "category_id = ?",
		Args:    []any{categoryID},
		Preload: true,
	})
}

func (s *ProductService) FindByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error) {
	if !status.Valid() {
		return nil, validationf("unknown status %q", status)
	}
	return s.Repo.FindProducts(ctx, repo.ProductFilter{Where: "status = ?", Args: []any{status}, Preload: true})
}

func (s *ProductService) FindByType(ctx context.Context, typ models.ProductType) ([]models.Product, error) {
	if !typ.Valid() {
		return nil, validationf("unknown type %q", typ)
	}
	return s.Repo.FindProducts(ctx, repo.ProductFilter{Where: "type = ?", Args: []any{typ}, Preload: true})
}

func (s *ProductService) Search(ctx context.Context, q string) ([]models.Product, error) {
	return s.Repo.SearchProducts(ctx, q)
}

// FullTextSearch queries the search index and falls back to a LIKE search on
// the database when the index is disabled or failing.
func (s *ProductService) FullTextSearch(ctx context.Context, q string, page, size int) (*transport.SearchResult, error) {
	if q == "" {
		return nil, validationf("q must not be empty")
	}
	page, from, size := util.Calculate(page, size)

	total, ids, err := s.Index.Search(ctx, q, from, size)
	if err == nil {
		products, err := s.byIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		return &transport.SearchResult{Data: products, Total: total, Page: page, Size: size, Via: "elasticsearch"}, nil
	}
	if !errors.Is(err, search.ErrDisabled) {
		logging.FromContext(ctx).Warn("search_query_failed", "query", q, "error", err)
	}

	total, products, err := s.Repo.SearchProductsPage(ctx, q, from, size)
	if err != nil {
		return nil, err
	}
	return &transport.SearchResult{Data: products, Total: total, Page: page, Size: size, Via: "database"}, nil
}

// byIDs loads products keeping the order of ids; ids without a row are dropped.
func (s *ProductService) byIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	rows, err := s.Repo.FindProducts(ctx, repo.ProductFilter{Where: "id IN ?", Args: []any{ids}, Preload: true})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProductService) PriceRange(ctx context.Context, lo, hi decimal.Decimal) ([]models.Product, error) {
	if lo.IsNegative() || hi.IsNegative() {
		return nil, validationf("price bounds must not be negative")
	}
	if lo.GreaterThan(hi) {
		return nil, validationf("minPrice must not exceed maxPrice")
	}
	return s.Repo.FindProducts(ctx, repo.ProductFilter{
		Where:   "status = ? AND price BETWEEN ? AND ?",
		Args:    []any{models.ProductActive, lo, hi},
		Order:   "price ASC",
		Preload: true,
	})
}

func (s *ProductService) InStock(ctx context.Context) ([]models.Product, error) {
	return s.Repo.FindProducts(ctx, repo.ProductFilter{
		Where: "stock_quantity > 0 AND status = ?", Args: []any{models.ProductActive}, Preload: true,
	})
}

func (s *ProductService) LowStock(ctx context.Context) ([]models.Product, error) {
	return s.Repo.FindProducts(ctx, repo.ProductFilter{
		Where:   "stock_quantity < ? AND status = ?",
		Args:    []any{lowStockThreshold, models.ProductActive},
		Order:   "stock_quantity ASC",
		Preload: true,
	})
}

func (s *ProductService) OutOfStock(ctx context.Context) ([]models.Product, error) {
	return s.Repo.FindProducts(ctx, repo.ProductFilter{
		Where: "stock_quantity = 0 AND status = ?", Args: []any{models.ProductActive}, Preload: true,
	})
}

func (s *ProductService) Discounted(ctx context.Context) ([]models.Product, error) {
	return s.Repo.FindProducts(ctx, repo.ProductFilter{
		Where:   "original_price IS NOT NULL AND status = ?",
		Args:    []any{models.ProductActive},
		Order:   "price ASC",
		Preload: true,
	})
}

func listLimit(limit int) int {
	if limit <= 0 {
		return util.DefaultPageSize
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *ProductService) Popular(ctx context.Context, limit int) ([]models.Product, error) {
	return s.Repo.FindProducts(ctx, repo.ProductFilter{
		Where:   "status = ?",
		Args:    []any{models.ProductActive},
		Order:   "sold_count DESC",
		Limit:   listLimit(limit),
		Preload: true,
	})
}

func (s *ProductService) Latest(ctx context.Context, limit int) ([]models.Product, error) {
	return s.Repo.FindProducts(ctx, repo.ProductFilter{
		Where:   "status = ?",
		Args:    []any{models.ProductActive},
		Order:   "created_at DESC",
		Limit:   listLimit(limit),
		Preload: true,
	})
}

func (s *ProductService) Page(ctx context.Context, page, limit int) (*transport.ProductPage, error) {
	page, from, limit := util.Calculate(page, limit)
	total, products, err := s.Repo.PageProducts(ctx, from, limit)
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{
		Products:   products,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: util.TotalPages(total, limit),
	}, nil
}

func (s *ProductService) Stats(ctx context.Context) (transport.ProductStats, error) {
	return cache.Remember(ctx, s.cache(), productStatsKey, s.CacheTTL, s.loadStats)
}

func (s *ProductService) loadStats(ctx context.Context) (transport.ProductStats, error) {
	var st transport.ProductStats
	var err error
	if st.Total, err = s.Repo.CountProducts(ctx, ""); err != nil {
		return st, err
	}
	if st.Active, err = s.Repo.CountProducts(ctx, "status = ?", models.ProductActive); err != nil {
		return st, err
	}
	if st.OutOfStock, err = s.Repo.CountProducts(ctx, "stock_quantity = ?", 0); err != nil {
		return st, err
	}
	if st.Discounted, err = s.Repo.CountProducts(ctx, "original_price IS NOT NULL"); err != nil {
		return st, err
	}

	statuses, err := s.Repo.ProductGroupCount(ctx, "status")
	if err != nil {
		return st, err
	}
	st.StatusStats = statusCounts(statuses)

	types, err := s.Repo.ProductGroupCount(ctx, "type")
	if err != nil {
		return st, err
	}
	st.TypeStats = make([]transport.TypeCount, 0, len(types))
	for _, t := range types {
		st.TypeStats = append(st.TypeStats, transport.TypeCount{Type: models.ProductType(t.Key), Count: t.Count})
	}

	cats, err := s.Repo.ProductCountByCategory(ctx)
	if err != nil {
		return st, err
	}
	st.CategoryStats = make([]transport.CategoryCount, 0, len(cats))
	for _, c := range cats {
		st.CategoryStats = append(st.CategoryStats, transport.CategoryCount{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Count:        c.Total,
		})
	}
	return st, nil
}

func (s *ProductService) SalesData(ctx context.Context) ([]models.ProductSales, error) {
	return s.Repo.ProductSales(ctx)
}

func (s *ProductService) ByTags(ctx context.Context, tags []string) ([]models.Product, error) {
	if len(tags) == 0 {
		return nil, validationf("at least one tag is required")
	}
	for _, t := range tags {
		if t == "" || len(t) > maxTagLength {
			return nil, validationf("tags must be non-empty and at most %d characters", maxTagLength)
		}
	}
	return s.Repo.ActiveProductsWithTags(ctx, tags)
}

func (s *ProductService) ByAttributes(ctx context.Context, attrs map[string]any) ([]models.Product, error) {
	if attrs == nil {
		return nil, validationf("attributes object is required")
	}
	return s.Repo.ActiveProductsWithAttributes(ctx, attrs)
}

// UpdateStock applies a signed delta to the stock of one product.
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error) {
	var p *models.Product
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		p, err = tx.LockProduct(ctx, id)
		if err != nil {
			return lookup(err, "Product", id)
		}
		if !p.ApplyStockDelta(delta) {
			return validationf("Insufficient stock: %d available, change of %d requested", p.StockQuantity, delta)
		}
		return tx.SaveProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, "stock_updated", p)
	return p, nil
}

// BatchUpdateStock applies every delta inside one transaction. Unknown
// products and deltas that would drive stock below zero are skipped.
func (s *ProductService) BatchUpdateStock(ctx context.Context, updates []transport.StockUpdate) (*transport.BatchUpdateStockResult, error) {
	l := logging.FromContext(ctx).With("svc", "products.batch_update_stock")

	res := &transport.BatchUpdateStockResult{Updated: []uuid.UUID{}, Skipped: []uuid.UUID{}}
	var saved []*models.Product
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		for _, u := range updates {
			p, err := tx.LockProduct(ctx, u.ProductID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Skipped = append(res.Skipped, u.ProductID)
				continue
			}
			if err != nil {
				return err
			}
			if !p.ApplyStockDelta(u.Quantity) {
				res.Skipped = append(res.Skipped, u.ProductID)
				continue
			}
			if err := tx.SaveProduct(ctx, p); err != nil {
				return err
			}
			res.Updated = append(res.Updated, p.ID)
			saved = append(saved, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range saved {
		s.changed(ctx, "stock_updated", p)
	}
	l.Info("batch_update_stock_done", "updated", len(res.Updated), "skipped", len(res.Skipped))
	return res, nil
}

func (s *ProductService) IncrementSold(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	ok, err := s.Repo.IncrementProductCounter(ctx, id, "sold_count", quantity)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Product", id)
	}
	s.invalidate(ctx, productStatsKey)
	return nil
}

func (s *ProductService) IncrementView(ctx context.Context, id uuid.UUID) error {
	ok, err := s.Repo.IncrementProductCounter(ctx, id, "view_count", 1)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Product", id)
	}
	return nil
}

// UpdateRating folds a new review score into the running average.
func (s *ProductService) UpdateRating(ctx context.Context, id uuid.UUID, rating decimal.Decimal) (*models.Product, error) {
	if rating.LessThan(decimal.NewFromInt(1)) || rating.GreaterThan(decimal.NewFromInt(5)) {
		return nil, validationf("rating must be between 1 and 5")
	}

	var p *models.Product
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		p, err = tx.LockProduct(ctx, id)
		if err != nil {
			return lookup(err, "Product", id)
		}
		count := decimal.NewFromInt(int64(p.ReviewCount))
		p.Rating = p.Rating.Mul(count).Add(rating).Div(count.Add(decimal.NewFromInt(1))).Round(2)
		p.ReviewCount++
		return tx.SaveProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, "product_rated", p)
	return p, nil
}
