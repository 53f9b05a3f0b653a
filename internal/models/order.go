package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentPaypal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Order struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderNumber           string          `gorm:"size:50;uniqueIndex;not null"  json:"orderNumber"`
	Status                OrderStatus     `gorm:"size:20;not null;index"        json:"status"`
	PaymentStatus         PaymentStatus   `gorm:"size:20;not null;index"        json:"paymentStatus"`
	PaymentMethod         *PaymentMethod  `gorm:"size:30"                       json:"paymentMethod"`
	Subtotal              decimal.Decimal `gorm:"type:decimal(10,2);not null"   json:"subtotal"`
	Tax                   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"tax"`
	Shipping              decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping"`
	Discount              decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	TotalAmount           decimal.Decimal `gorm:"type:decimal(10,2);not null"   json:"totalAmount"`
	Notes                 *string         `gorm:"type:text"                     json:"notes"`
	ShippingAddress       *Address        `gorm:"type:jsonb"                    json:"shippingAddress"`
	BillingAddress        *Address        `gorm:"type:jsonb"                    json:"billingAddress"`
	EstimatedDeliveryDate *time.Time      `                                     json:"estimatedDeliveryDate"`
	ShippedAt             *time.Time      `                                     json:"shippedAt"`
	DeliveredAt           *time.Time      `                                     json:"deliveredAt"`
	CancelledAt           *time.Time      `                                     json:"cancelledAt"`
	CancellationReason    *string         `gorm:"type:text"                     json:"cancellationReason"`
	Metadata              JSONMap         `gorm:"type:jsonb"                    json:"metadata"`
	UserID                uuid.UUID       `gorm:"type:uuid;not null;index"      json:"userId"`
	CreatedAt             time.Time       `gorm:"index"                         json:"createdAt"`
	UpdatedAt             time.Time       `                                     json:"updatedAt"`

	User       *User       `gorm:"foreignKey:UserID"                          json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems,omitempty"`

	ItemCount      int  `gorm:"-" json:"itemCount"`
	IsPaid         bool `gorm:"-" json:"isPaid"`
	IsDelivered    bool `gorm:"-" json:"isDelivered"`
	IsCancelled    bool `gorm:"-" json:"isCancelled"`
	CanBeCancelled bool `gorm:"-" json:"canBeCancelled"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentPending
	}
	return nil
}

func (o *Order) AfterFind(tx *gorm.DB) error {
	o.FillComputed()
	return nil
}

func (o *Order) AfterSave(tx *gorm.DB) error {
	o.FillComputed()
	return nil
}

func (o *Order) FillComputed() {
	o.ItemCount = 0
	for _, it := range o.OrderItems {
		o.ItemCount += it.Quantity
	}
	o.IsPaid = o.PaymentStatus == PaymentPaid
	o.IsDelivered = o.Status == OrderDelivered
	o.IsCancelled = o.Status == OrderCancelled
	o.CanBeCancelled = !o.IsCancelled && !o.IsDelivered
}

// ApplyStatus sets the status and stamps the matching lifecycle timestamp.
func (o *Order) ApplyStatus(status OrderStatus, now time.Time) {
	o.Status = status
	switch status {
	case OrderShipped:
		o.ShippedAt = &now
	case OrderDelivered:
		o.DeliveredAt = &now
	case OrderCancelled:
		o.CancelledAt = &now
	}
	o.FillComputed()
}

type OrderItem struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"         json:"id"`
	Quantity        int              `gorm:"not null"                     json:"quantity"`
	UnitPrice       decimal.Decimal  `gorm:"type:decimal(10,2);not null"  json:"unitPrice"`
	TotalPrice      decimal.Decimal  `gorm:"type:decimal(10,2);not null"  json:"totalPrice"`
	Discount        decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Notes           *string          `gorm:"type:text"                    json:"notes"`
	ProductSnapshot *ProductSnapshot `gorm:"type:jsonb"                   json:"productSnapshot"`
	OrderID         uuid.UUID        `gorm:"type:uuid;not null;index"     json:"orderId"`
	ProductID       uuid.UUID        `gorm:"type:uuid;not null;index"     json:"productId"`
	CreatedAt       time.Time        `                                    json:"createdAt"`
	UpdatedAt       time.Time        `                                    json:"updatedAt"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	FinalPrice decimal.Decimal `gorm:"-" json:"finalPrice"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) AfterFind(tx *gorm.DB) error {
	i.FinalPrice = i.TotalPrice.Sub(i.Discount)
	return nil
}

func (i *OrderItem) AfterSave(tx *gorm.DB) error {
	i.FinalPrice = i.TotalPrice.Sub(i.Discount)
	return nil
}

// AllModels lists every table in dependency order for auto-migration.
func AllModels() []any {
	return []any{&User{}, &Category{}, &Product{}, &Order{}, &OrderItem{}}
}
