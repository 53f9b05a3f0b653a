package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/repo"
	"github.com/Skotchmaster/shopdb/internal/search"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/pkg/cache"
	"github.com/Skotchmaster/shopdb/pkg/events"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

type OrderService struct {
	*Deps
	// Index receives products whose stock changed while placing an order.
	Index search.ProductIndex
}

func NewOrderService(d *Deps, index search.ProductIndex) *OrderService {
	if index == nil {
		index = search.Noop{}
	}
	return &OrderService{Deps: d, Index: index}
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// orderNumber returns ORD followed by the unix time in milliseconds and three random digits.
func (s *OrderService) orderNumber() string {
	return fmt.Sprintf("ORD%d%03d", s.now().UnixMilli(), rand.IntN(1000))
}

func (s *OrderService) changed(ctx context.Context, eventType string, o *models.Order) {
	s.invalidate(ctx, orderStatsKey, userStatsKey)
	s.publish(ctx, events.TopicOrders, eventType, o.ID.String(), o)
}

func (s *OrderService) checkUser(ctx context.Context, tx *repo.GormRepo, id uuid.UUID) error {
	ok, err := tx.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("User", id)
	}
	return nil
}

// Create stores an order exactly as described by the client, totals included.
func (s *OrderService) Create(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	taken, err := s.Repo.OrderNumberTaken(ctx, req.OrderNumber, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflictf("Order number already exists")
	}
	if err := s.checkUser(ctx, s.Repo, req.UserID); err != nil {
		return nil, err
	}

	o := &models.Order{
		OrderNumber:           req.OrderNumber,
		Status:                req.Status,
		PaymentStatus:         req.PaymentStatus,
		PaymentMethod:         req.PaymentMethod,
		Subtotal:              req.Subtotal,
		Tax:                   orZero(req.Tax),
		Shipping:              orZero(req.Shipping),
		Discount:              orZero(req.Discount),
		TotalAmount:           req.TotalAmount,
		Notes:                 req.Notes,
		ShippingAddress:       req.ShippingAddress,
		BillingAddress:        req.BillingAddress,
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
		Metadata:              req.Metadata,
		UserID:                req.UserID,
	}
	for _, in := range req.Items {
		total := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		if in.TotalPrice != nil {
			total = *in.TotalPrice
		}
		o.OrderItems = append(o.OrderItems, models.OrderItem{
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: total,
			Discount:   orZero(in.Discount),
			Notes:      in.Notes,
		})
	}

	if err := s.Repo.CreateOrder(ctx, o); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, validationf("order items reference an unknown product")
		}
		return nil, duplicate(err, "Order number already exists")
	}
	o.FillComputed()
	s.changed(ctx, "order_created", o)
	return o, nil
}

// CreateWithItems prices the items from the catalogue, reserves stock and
// stores the order in one transaction. Any failing item aborts the whole order.
func (s *OrderService) CreateWithItems(ctx context.Context, req transport.CreateOrderWithItemsRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "orders.create_with_items", "user_id", req.UserID)

	if len(req.Items) == 0 {
		return nil, validationf("items required")
	}

	var order *models.Order
	var touched []*models.Product
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		if err := s.checkUser(ctx, tx, req.UserID); err != nil {
			return err
		}

		o := &models.Order{
			OrderNumber:     s.orderNumber(),
			Status:          models.OrderPending,
			PaymentStatus:   models.PaymentPending,
			PaymentMethod:   req.PaymentMethod,
			Tax:             orZero(req.Tax),
			Shipping:        orZero(req.Shipping),
			Discount:        orZero(req.Discount),
			Notes:           req.Notes,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			Metadata:        req.Metadata,
			UserID:          req.UserID,
		}

		subtotal := decimal.Zero
		for _, in := range req.Items {
			if in.Quantity <= 0 {
				return validationf("quantity must be > 0")
			}
			p, err := tx.LockProduct(ctx, in.ProductID)
			if err != nil {
				return lookup(err, "Product", in.ProductID)
			}
			if p.StockQuantity < in.Quantity {
				return validationf("Insufficient stock for product %s: %d available, %d requested", p.Name, p.StockQuantity, in.Quantity)
			}

			line := p.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
			subtotal = subtotal.Add(line)
			o.OrderItems = append(o.OrderItems, models.OrderItem{
				ProductID:  p.ID,
				Quantity:   in.Quantity,
				UnitPrice:  p.Price,
				TotalPrice: line,
				Discount:   orZero(in.Discount),
				Notes:      in.Notes,
				ProductSnapshot: &models.ProductSnapshot{
					ID:     p.ID.String(),
					Name:   p.Name,
					SKU:    p.SKU,
					Price:  p.Price,
					Images: p.Images,
				},
			})

			p.ApplyStockDelta(-in.Quantity)
			p.SoldCount += in.Quantity
			if err := tx.SaveProduct(ctx, p); err != nil {
				return err
			}
			touched = append(touched, p)
		}

		o.Subtotal = subtotal
		o.TotalAmount = subtotal.Add(o.Tax).Add(o.Shipping).Sub(o.Discount)
		if err := tx.CreateOrder(ctx, o); err != nil {
			return duplicate(err, "Order number already exists")
		}
		order = o
		return nil
	})
	if err != nil {
		l.Warn("create_order_failed", "error", err)
		return nil, err
	}

	order.FillComputed()
	s.invalidate(ctx, productStatsKey)
	for _, p := range touched {
		s.publish(ctx, events.TopicProducts, "stock_updated", p.ID.String(), p)
		if err := s.Index.Index(ctx, p); err != nil {
			l.Warn("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
	s.changed(ctx, "order_created", order)
	l.Info("create_order_success", "order_id", order.ID, "order_number", order.OrderNumber, "total", order.TotalAmount.String())
	return order, nil
}

func (s *OrderService) FindAll(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx)
}

func (s *OrderService) FindOne(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, lookup(err, "Order", id)
	}
	return o, nil
}

func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req transport.UpdateOrderRequest) (*models.Order, error) {
	o, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.OrderNumber != nil && *req.OrderNumber != o.OrderNumber {
		taken, err := s.Repo.OrderNumberTaken(ctx, *req.OrderNumber, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, conflictf("Order number already exists")
		}
		o.OrderNumber = *req.OrderNumber
	}
	if req.UserID != nil && *req.UserID != o.UserID {
		if err := s.checkUser(ctx, s.Repo, *req.UserID); err != nil {
			return nil, err
		}
		o.UserID = *req.UserID
		o.User = nil
	}
	if req.Status != nil {
		o.ApplyStatus(*req.Status, s.now())
	}
	if req.PaymentStatus != nil {
		o.PaymentStatus = *req.PaymentStatus
	}
	if req.PaymentMethod != nil {
		o.PaymentMethod = req.PaymentMethod
	}
	if req.Subtotal != nil {
		o.Subtotal = *req.Subtotal
	}
	if req.TotalAmount != nil {
		o.TotalAmount = *req.TotalAmount
	}
	if req.Tax != nil {
		o.Tax = *req.Tax
	}
	if req.Shipping != nil {
		o.Shipping = *req.Shipping
	}
	if req.Discount != nil {
		o.Discount = *req.Discount
	}
	if req.ShippingAddress != nil {
		o.ShippingAddress = req.ShippingAddress
	}
	if req.BillingAddress != nil {
		o.BillingAddress = req.BillingAddress
	}
	if req.EstimatedDeliveryDate != nil {
		o.EstimatedDeliveryDate = req.EstimatedDeliveryDate
	}
	if req.CancellationReason != nil {
		o.CancellationReason = req.CancellationReason
	}
	if req.Notes != nil {
		o.Notes = req.Notes
	}
	if req.Metadata != nil {
		o.Metadata = req.Metadata
	}

	if err := s.Repo.SaveOrder(ctx, o); err != nil {
		return nil, duplicate(err, "Order number already exists")
	}
	s.changed(ctx, "order_updated", o)
	return o, nil
}

func (s *OrderService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteOrder(ctx, id); err != nil {
		return lookup(err, "Order", id)
	}
	s.invalidate(ctx, orderStatsKey, userStatsKey)
	s.publish(ctx, events.TopicOrders, "order_deleted", id.String(), nil)
	return nil
}

func (s *OrderService) FindByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.OrdersWhere(ctx, "user_id", userID)
}

func (s *OrderService) FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if !status.Valid() {
		return nil, validationf("unknown status %q", status)
	}
	return s.Repo.OrdersWhere(ctx, "status", status)
}

func (s *OrderService) FindByPaymentStatus(ctx context.Context, status models.PaymentStatus) ([]models.Order, error) {
	if !status.Valid() {
		return nil, validationf("unknown payment status %q", status)
	}
	return s.Repo.OrdersWhere(ctx, "payment_status", status)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, validationf("unknown status %q", status)
	}
	o, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := o.Status
	o.ApplyStatus(status, s.now())
	if err := s.Repo.SaveOrder(ctx, o); err != nil {
		return nil, err
	}

	s.invalidate(ctx, orderStatsKey)
	s.publish(ctx, events.TopicOrders, "order_status_changed", o.ID.String(), map[string]any{
		"from": prev,
		"to":   status,
	})
	return o, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, validationf("unknown payment status %q", status)
	}
	o, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = status
	if err := s.Repo.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	s.changed(ctx, "order_payment_status_changed", o)
	return o, nil
}

func (s *OrderService) Stats(ctx context.Context) (transport.OrderStats, error) {
	return cache.Remember(ctx, s.cache(), orderStatsKey, s.CacheTTL, s.loadStats)
}

func (s *OrderService) loadStats(ctx context.Context) (transport.OrderStats, error) {
	var st transport.OrderStats
	var err error
	if st.Total, err = s.Repo.CountOrders(ctx, ""); err != nil {
		return st, err
	}
	if st.Pending, err = s.Repo.CountOrders(ctx, "status = ?", models.OrderPending); err != nil {
		return st, err
	}
	if st.Completed, err = s.Repo.CountOrders(ctx, "status = ?", models.OrderDelivered); err != nil {
		return st, err
	}
	if st.Cancelled, err = s.Repo.CountOrders(ctx, "status = ?", models.OrderCancelled); err != nil {
		return st, err
	}

	statuses, err := s.Repo.OrderGroupCount(ctx, "status")
	if err != nil {
		return st, err
	}
	st.StatusStats = statusCounts(statuses)

	payments, err := s.Repo.OrderGroupCount(ctx, "payment_status")
	if err != nil {
		return st, err
	}
	st.PaymentStats = statusCounts(payments)
	return st, nil
}
