package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"size:500"                      json:"description"`
	Slug        *string   `gorm:"size:100"                      json:"slug"`
	SortOrder   int       `gorm:"not null;default:0"            json:"sortOrder"`
	IsActive    bool      `gorm:"not null"                      json:"isActive"`
	Metadata    JSONMap   `gorm:"type:jsonb"                    json:"metadata"`
	CreatedAt   time.Time `                                     json:"createdAt"`
	UpdatedAt   time.Time `                                     json:"updatedAt"`

	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"products,omitempty"`

	DisplayID string `gorm:"-" json:"displayId"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Category) AfterFind(tx *gorm.DB) error {
	c.fillComputed()
	return nil
}

func (c *Category) AfterSave(tx *gorm.DB) error {
	c.fillComputed()
	return nil
}

func (c *Category) fillComputed() {
	c.DisplayID = "CAT-" + strings.ToUpper(c.ID.String()[:8])
}
