package jobs

import (
	"context"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/repo"
	"github.com/Skotchmaster/shopdb/pkg/events"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

// LowStock reports active products whose stock fell to or below their
// minimum level without running out.
type LowStock struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (LowStock) Name() string { return "low_stock_scan" }

func (j LowStock) Run(ctx context.Context) error {
	l := logging.FromContext(ctx)

	products, err := j.Repo.LowStockProducts(ctx)
	if err != nil {
		return err
	}
	for i := range products {
		p := &products[i]
		l.Warn("product_low_stock", "product_id", p.ID, "sku", p.SKU, "stock", p.StockQuantity, "min_stock", p.MinStockLevel)
		if err := j.Events.PublishEvent(ctx, events.TopicProducts, p.ID.String(), events.New("product_low_stock", p.ID.String(), lowStockPayload(p))); err != nil {
			l.Warn("publish_event_failed", "product_id", p.ID, "error", err)
		}
	}
	l.Info("low_stock_scan_done", "found", len(products))
	return nil
}

func lowStockPayload(p *models.Product) map[string]any {
	return map[string]any{
		"sku":           p.SKU,
		"name":          p.Name,
		"stockQuantity": p.StockQuantity,
		"minStockLevel": p.MinStockLevel,
	}
}
