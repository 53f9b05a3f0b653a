package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductActive       ProductStatus = "active"
	ProductInactive     ProductStatus = "inactive"
	ProductOutOfStock   ProductStatus = "out_of_stock"
	ProductDiscontinued ProductStatus = "discontinued"
)

type ProductType string

const (
	ProductPhysical ProductType = "physical"
	ProductDigital  ProductType = "digital"
	ProductService  ProductType = "service"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductInactive, ProductOutOfStock, ProductDiscontinued:
		return true
	}
	return false
}

func (t ProductType) Valid() bool {
	switch t {
	case ProductPhysical, ProductDigital, ProductService:
		return true
	}
	return false
}

type Product struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"           json:"id"`
	Name          string           `gorm:"size:200;not null"              json:"name"`
	Description   *string          `gorm:"type:text"                      json:"description"`
	SKU           string           `gorm:"column:sku;size:100;uniqueIndex;not null" json:"sku"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null"    json:"price"`
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(10,2)"             json:"originalPrice"`
	StockQuantity int              `gorm:"not null;default:0"             json:"stockQuantity"`
	MinStockLevel int              `gorm:"not null;default:0"             json:"minStockLevel"`
	Status        ProductStatus    `gorm:"size:20;not null;index"         json:"status"`
	Type          ProductType      `gorm:"size:20;not null"               json:"type"`
	Weight        decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0" json:"weight"`
	WeightUnit    *string          `gorm:"size:50"                        json:"weightUnit"`
	Dimensions    *Dimensions      `gorm:"type:jsonb"                     json:"dimensions"`
	Images        StringList       `gorm:"type:jsonb"                     json:"images"`
	Attributes    JSONMap          `gorm:"type:jsonb"                     json:"attributes"`
	Tags          StringList       `gorm:"type:jsonb"                     json:"tags"`
	Rating        decimal.Decimal  `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`
	ReviewCount   int              `gorm:"not null;default:0"             json:"reviewCount"`
	ViewCount     int              `gorm:"not null;default:0"             json:"viewCount"`
	SoldCount     int              `gorm:"not null;default:0"             json:"soldCount"`
	SEO           *SEO             `gorm:"column:seo;type:jsonb"          json:"seo"`
	Metadata      JSONMap          `gorm:"type:jsonb"                     json:"metadata"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index"                json:"categoryId"`
	CreatedAt     time.Time        `gorm:"index"                          json:"createdAt"`
	UpdatedAt     time.Time        `                                      json:"updatedAt"`

	Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID"  json:"orderItems,omitempty"`

	IsInStock          bool `gorm:"-" json:"isInStock"`
	HasDiscount        bool `gorm:"-" json:"hasDiscount"`
	DiscountPercentage int  `gorm:"-" json:"discountPercentage"`
	IsLowStock         bool `gorm:"-" json:"isLowStock"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProductActive
	}
	if p.Type == "" {
		p.Type = ProductPhysical
	}
	return nil
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.FillComputed()
	return nil
}

func (p *Product) AfterSave(tx *gorm.DB) error {
	p.FillComputed()
	return nil
}

// FillComputed derives the stock and discount flags from the stored columns.
func (p *Product) FillComputed() {
	p.IsInStock = p.StockQuantity > 0 && p.Status == ProductActive
	p.HasDiscount = p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
	p.DiscountPercentage = 0
	if p.HasDiscount {
		orig := *p.OriginalPrice
		p.DiscountPercentage = int(orig.Sub(p.Price).Div(orig).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	}
	p.IsLowStock = p.StockQuantity > 0 && p.StockQuantity <= p.MinStockLevel
}

// ApplyStockDelta moves stock by delta and keeps status in line with the new level.
// It returns false when the result would be negative.
func (p *Product) ApplyStockDelta(delta int) bool {
	next := p.StockQuantity + delta
	if next < 0 {
		return false
	}
	p.StockQuantity = next
	if next == 0 {
		p.Status = ProductOutOfStock
	} else if p.Status == ProductOutOfStock {
		p.Status = ProductActive
	}
	p.FillComputed()
	return true
}

// ProductSales is a row of the sales report.
type ProductSales struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stockQuantity" gorm:"column:stock_quantity"`
	Rating       decimal.Decimal `json:"rating"`
	ReviewCount  int             `json:"reviewCount"`
	SoldCount    int             `json:"soldCount"`
	CategoryName *string         `json:"categoryName"`
	TotalOrdered int64           `json:"totalOrdered"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}
