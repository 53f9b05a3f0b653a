package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopdb/internal/models"
)

// users

type CreateUserRequest struct {
	Username    string             `json:"username"    validate:"required,max=100,username"`
	Email       string             `json:"email"       validate:"required,email,max=255"`
	Password    string             `json:"password"    validate:"required,password_basic"`
	FirstName   *string            `json:"firstName"   validate:"omitempty,max=100"`
	LastName    *string            `json:"lastName"    validate:"omitempty,max=100"`
	Role        *models.UserRole   `json:"role"        validate:"omitempty,oneof=admin user moderator"`
	Status      *models.UserStatus `json:"status"      validate:"omitempty,oneof=active inactive banned"`
	Bio         *string            `json:"bio"`
	BirthDate   *string            `json:"birthDate"   validate:"omitempty,datetime=2006-01-02"`
	Balance     *decimal.Decimal   `json:"balance"     validate:"omitempty,gte=0"`
	Preferences models.JSONMap     `json:"preferences"`
}

type UpdateUserRequest struct {
	Username        *string            `json:"username"        validate:"omitempty,max=100,username"`
	Email           *string            `json:"email"           validate:"omitempty,email,max=255"`
	Password        *string            `json:"password"        validate:"omitempty,password_basic"`
	FirstName       *string            `json:"firstName"       validate:"omitempty,max=100"`
	LastName        *string            `json:"lastName"        validate:"omitempty,max=100"`
	Role            *models.UserRole   `json:"role"            validate:"omitempty,oneof=admin user moderator"`
	Status          *models.UserStatus `json:"status"          validate:"omitempty,oneof=active inactive banned"`
	Bio             *string            `json:"bio"`
	BirthDate       *string            `json:"birthDate"       validate:"omitempty,datetime=2006-01-02"`
	Balance         *decimal.Decimal   `json:"balance"         validate:"omitempty,gte=0"`
	Preferences     models.JSONMap     `json:"preferences"`
	IsEmailVerified *bool              `json:"isEmailVerified"`
}

type UpdateMultipleStatusRequest struct {
	UserIDs []uuid.UUID       `json:"userIds" validate:"required,min=1"`
	Status  models.UserStatus `json:"status"  validate:"required,oneof=active inactive banned"`
}

type DeleteMultipleRequest struct {
	UserIDs []uuid.UUID `json:"userIds" validate:"required,min=1"`
}

type TransferBalanceRequest struct {
	FromUserID uuid.UUID       `json:"fromUserId" validate:"required"`
	ToUserID   uuid.UUID       `json:"toUserId"   validate:"required"`
	Amount     decimal.Decimal `json:"amount"     validate:"required,gte=0.01"`
}

type UserPage struct {
	Users      []models.User `json:"users"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int64         `json:"totalPages"`
}

type RoleCount struct {
	Role  models.UserRole `json:"role"`
	Count int64           `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type UserStats struct {
	Total       int64         `json:"total"`
	Active      int64         `json:"active"`
	Admins      int64         `json:"admins"`
	RoleStats   []RoleCount   `json:"roleStats"`
	StatusStats []StatusCount `json:"statusStats"`
}

// auth

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username  string             `json:"username"  validate:"required,max=100,username"`
	Email     string             `json:"email"     validate:"required,email,max=255"`
	Password  string             `json:"password"  validate:"required"`
	FirstName *string            `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string            `json:"lastName"  validate:"omitempty,max=100"`
	Role      *models.UserRole   `json:"role"      validate:"omitempty,oneof=admin user moderator"`
	Status    *models.UserStatus `json:"status"    validate:"omitempty,oneof=active inactive banned"`
	Bio       *string            `json:"bio"`
	Balance   *decimal.Decimal   `json:"balance"   validate:"omitempty,gte=0"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required"`
}

type LoginResponse struct {
	Message     string       `json:"message"`
	User        *models.User `json:"user"`
	LoginTime   time.Time    `json:"loginTime"`
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

type RegisterResponse struct {
	Message      string       `json:"message"`
	User         *models.User `json:"user"`
	RegisterTime time.Time    `json:"registerTime"`
}

type ChangePasswordResponse struct {
	Message    string    `json:"message"`
	ChangeTime time.Time `json:"changeTime"`
}

type ProfileResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// categories

type CreateCategoryRequest struct {
	Name        string         `json:"name"        validate:"required,max=100"`
	Description *string        `json:"description" validate:"omitempty,max=500"`
	Slug        *string        `json:"slug"        validate:"omitempty,max=100"`
	SortOrder   *int           `json:"sortOrder"   validate:"omitempty,gte=0"`
	IsActive    *bool          `json:"isActive"`
	Metadata    models.JSONMap `json:"metadata"`
}

type UpdateCategoryRequest struct {
	Name        *string        `json:"name"        validate:"omitempty,max=100"`
	Description *string        `json:"description" validate:"omitempty,max=500"`
	Slug        *string        `json:"slug"        validate:"omitempty,max=100"`
	SortOrder   *int           `json:"sortOrder"   validate:"omitempty,gte=0"`
	IsActive    *bool          `json:"isActive"`
	Metadata    models.JSONMap `json:"metadata"`
}

// products

type CreateProductRequest struct {
	Name          string                `json:"name"          validate:"required,max=200"`
	Description   *string               `json:"description"`
	SKU           string                `json:"sku"           validate:"required,max=100"`
	Price         decimal.Decimal       `json:"price"         validate:"gte=0"`
	OriginalPrice *decimal.Decimal      `json:"originalPrice" validate:"omitempty,gte=0"`
	StockQuantity *int                  `json:"stockQuantity" validate:"omitempty,gte=0"`
	MinStockLevel *int                  `json:"minStockLevel" validate:"omitempty,gte=0"`
	Status        *models.ProductStatus `json:"status"        validate:"omitempty,oneof=active inactive out_of_stock discontinued"`
	Type          *models.ProductType   `json:"type"          validate:"omitempty,oneof=physical digital service"`
	Weight        *decimal.Decimal      `json:"weight"        validate:"omitempty,gte=0"`
	WeightUnit    *string               `json:"weightUnit"    validate:"omitempty,max=50"`
	Dimensions    *models.Dimensions    `json:"dimensions"`
	Images        []string              `json:"images"        validate:"omitempty,dive,url"`
	Attributes    models.JSONMap        `json:"attributes"`
	Tags          []string              `json:"tags"          validate:"omitempty,dive,max=50"`
	CategoryID    *uuid.UUID            `json:"categoryId"`
	SEO           *models.SEO           `json:"seo"`
	Metadata      models.JSONMap        `json:"metadata"`
}

type UpdateProductRequest struct {
	Name          *string               `json:"name"          validate:"omitempty,max=200"`
	Description   *string               `json:"description"`
	SKU           *string               `json:"sku"           validate:"omitempty,max=100"`
	Price         *decimal.Decimal      `json:"price"         validate:"omitempty,gte=0"`
	OriginalPrice *decimal.Decimal      `json:"originalPrice" validate:"omitempty,gte=0"`
	StockQuantity *int                  `json:"stockQuantity" validate:"omitempty,gte=0"`
	MinStockLevel *int                  `json:"minStockLevel" validate:"omitempty,gte=0"`
	Status        *models.ProductStatus `json:"status"        validate:"omitempty,oneof=active inactive out_of_stock discontinued"`
	Type          *models.ProductType   `json:"type"          validate:"omitempty,oneof=physical digital service"`
	Weight        *decimal.Decimal      `json:"weight"        validate:"omitempty,gte=0"`
	WeightUnit    *string               `json:"weightUnit"    validate:"omitempty,max=50"`
	Dimensions    *models.Dimensions    `json:"dimensions"`
	Images        []string              `json:"images"        validate:"omitempty,dive,url"`
	Attributes    models.JSONMap        `json:"attributes"`
	Tags          []string              `json:"tags"          validate:"omitempty,dive,max=50"`
	CategoryID    *uuid.UUID            `json:"categoryId"`
	SEO           *models.SEO           `json:"seo"`
	Metadata      models.JSONMap        `json:"metadata"`
}

type UpdateStockRequest struct {
	Quantity int `json:"quantity"`
}

type StockUpdate struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"`
}

type BatchUpdateStockRequest struct {
	Updates []StockUpdate `json:"updates" validate:"required,min=1,dive"`
}

type BatchUpdateStockResult struct {
	Updated []uuid.UUID `json:"updated"`
	Skipped []uuid.UUID `json:"skipped"`
}

type IncrementSoldRequest struct {
	Quantity *int `json:"quantity" validate:"omitempty,gte=1"`
}

type UpdateRatingRequest struct {
	Rating decimal.Decimal `json:"rating" validate:"gte=1,lte=5"`
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int64            `json:"totalPages"`
}

type CategoryCount struct {
	CategoryID   *uuid.UUID `json:"categoryId"`
	CategoryName *string    `json:"categoryName"`
	Count        int64      `json:"count"`
}

type ProductStats struct {
	Total         int64           `json:"total"`
	Active        int64           `json:"active"`
	OutOfStock    int64           `json:"outOfStock"`
	Discounted    int64           `json:"discounted"`
	StatusStats   []StatusCount   `json:"statusStats"`
	TypeStats     []TypeCount     `json:"typeStats"`
	CategoryStats []CategoryCount `json:"categoryStats"`
}

type TypeCount struct {
	Type  models.ProductType `json:"type"`
	Count int64              `json:"count"`
}

type SearchResult struct {
	Data  []models.Product `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
	Via   string           `json:"via"`
}

// orders

type OrderItemInput struct {
	ProductID  uuid.UUID        `json:"productId"  validate:"required"`
	Quantity   int              `json:"quantity"   validate:"gte=1"`
	UnitPrice  decimal.Decimal  `json:"unitPrice"  validate:"gte=0"`
	TotalPrice *decimal.Decimal `json:"totalPrice" validate:"omitempty,gte=0"`
	Discount   *decimal.Decimal `json:"discount"   validate:"omitempty,gte=0"`
	Notes      *string          `json:"notes"`
}

type CreateOrderRequest struct {
	UserID                uuid.UUID             `json:"userId"          validate:"required"`
	OrderNumber           string                `json:"orderNumber"     validate:"required,max=50"`
	TotalAmount           decimal.Decimal       `json:"totalAmount"     validate:"gte=0"`
	Subtotal              decimal.Decimal       `json:"subtotal"        validate:"gte=0"`
	Tax                   *decimal.Decimal      `json:"tax"             validate:"omitempty,gte=0"`
	Shipping              *decimal.Decimal      `json:"shipping"        validate:"omitempty,gte=0"`
	Discount              *decimal.Decimal      `json:"discount"        validate:"omitempty,gte=0"`
	Status                models.OrderStatus    `json:"status"          validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	PaymentStatus         models.PaymentStatus  `json:"paymentStatus"   validate:"omitempty,oneof=pending paid failed refunded"`
	PaymentMethod         *models.PaymentMethod `json:"paymentMethod"   validate:"omitempty,oneof=credit_card debit_card bank_transfer paypal cash_on_delivery"`
	ShippingAddress       *models.Address       `json:"shippingAddress"`
	BillingAddress        *models.Address       `json:"billingAddress"`
	EstimatedDeliveryDate *time.Time            `json:"estimatedDeliveryDate"`
	Notes                 *string               `json:"notes"`
	Metadata              models.JSONMap        `json:"metadata"`
	Items                 []OrderItemInput      `json:"items"           validate:"omitempty,dive"`
}

type CreateOrderWithItemsRequest struct {
	UserID          uuid.UUID             `json:"userId"          validate:"required"`
	Tax             *decimal.Decimal      `json:"tax"             validate:"omitempty,gte=0"`
	Shipping        *decimal.Decimal      `json:"shipping"        validate:"omitempty,gte=0"`
	Discount        *decimal.Decimal      `json:"discount"        validate:"omitempty,gte=0"`
	PaymentMethod   *models.PaymentMethod `json:"paymentMethod"   validate:"omitempty,oneof=credit_card debit_card bank_transfer paypal cash_on_delivery"`
	ShippingAddress *models.Address       `json:"shippingAddress"`
	BillingAddress  *models.Address       `json:"billingAddress"`
	Notes           *string               `json:"notes"`
	Metadata        models.JSONMap        `json:"metadata"`
	Items           []OrderItemInput      `json:"items"           validate:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	UserID                *uuid.UUID            `json:"userId"`
	OrderNumber           *string               `json:"orderNumber"   validate:"omitempty,max=50"`
	TotalAmount           *decimal.Decimal      `json:"totalAmount"   validate:"omitempty,gte=0"`
	Subtotal              *decimal.Decimal      `json:"subtotal"      validate:"omitempty,gte=0"`
	Tax                   *decimal.Decimal      `json:"tax"           validate:"omitempty,gte=0"`
	Shipping              *decimal.Decimal      `json:"shipping"      validate:"omitempty,gte=0"`
	Discount              *decimal.Decimal      `json:"discount"      validate:"omitempty,gte=0"`
	Status                *models.OrderStatus   `json:"status"        validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	PaymentStatus         *models.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=pending paid failed refunded"`
	PaymentMethod         *models.PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=credit_card debit_card bank_transfer paypal cash_on_delivery"`
	ShippingAddress       *models.Address       `json:"shippingAddress"`
	BillingAddress        *models.Address       `json:"billingAddress"`
	EstimatedDeliveryDate *time.Time            `json:"estimatedDeliveryDate"`
	CancellationReason    *string               `json:"cancellationReason"`
	Notes                 *string               `json:"notes"`
	Metadata              models.JSONMap        `json:"metadata"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled refunded"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" validate:"required,oneof=pending paid failed refunded"`
}

type OrderStats struct {
	Total        int64         `json:"total"`
	Pending      int64         `json:"pending"`
	Completed    int64         `json:"completed"`
	Cancelled    int64         `json:"cancelled"`
	StatusStats  []StatusCount `json:"statusStats"`
	PaymentStats []StatusCount `json:"paymentStats"`
}
