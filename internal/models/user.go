package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
)

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserBanned   UserStatus = "banned"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleModerator:
		return true
	}
	return false
}

func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserBanned:
		return true
	}
	return false
}

type User struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"                 json:"id"`
	Username        string          `gorm:"size:100;uniqueIndex;not null"        json:"username"`
	Email           string          `gorm:"size:255;uniqueIndex;not null"        json:"email"`
	Password        string          `gorm:"size:255;not null"                    json:"-"`
	FirstName       *string         `gorm:"size:100"                             json:"firstName"`
	LastName        *string         `gorm:"size:100"                             json:"lastName"`
	Role            UserRole        `gorm:"size:20;not null;index"               json:"role"`
	Status          UserStatus      `gorm:"size:20;not null;index"               json:"status"`
	Bio             *string         `gorm:"type:text"                            json:"bio"`
	BirthDate       *time.Time      `gorm:"type:date"                            json:"birthDate"`
	Balance         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"balance"`
	Preferences     JSONMap         `gorm:"type:jsonb"                           json:"preferences"`
	IsEmailVerified bool            `gorm:"not null;default:false"               json:"isEmailVerified"`
	LastLoginAt     *time.Time      `                                            json:"lastLoginAt"`
	CreatedAt       time.Time       `gorm:"index"                                json:"createdAt"`
	UpdatedAt       time.Time       `                                            json:"updatedAt"`
	DeletedAt       gorm.DeletedAt  `gorm:"index"                                json:"deletedAt,omitempty"`

	Orders []Order `gorm:"foreignKey:UserID" json:"orders,omitempty"`

	FullName string `gorm:"-" json:"fullName"`
	IsAdmin  bool   `gorm:"-" json:"isAdmin"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Status == "" {
		u.Status = UserActive
	}
	return nil
}

func (u *User) AfterFind(tx *gorm.DB) error {
	u.fillComputed()
	return nil
}

func (u *User) AfterSave(tx *gorm.DB) error {
	u.fillComputed()
	return nil
}

func (u *User) fillComputed() {
	var first, last string
	if u.FirstName != nil {
		first = *u.FirstName
	}
	if u.LastName != nil {
		last = *u.LastName
	}
	u.FullName = strings.TrimSpace(first + " " + last)
	u.IsAdmin = u.Role == RoleAdmin
}

// UserSummary is the trimmed projection returned by list endpoints.
type UserSummary struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName *string    `json:"firstName"`
	LastName  *string    `json:"lastName"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UserOrderStats is a row of the per-user spending report.
type UserOrderStats struct {
	ID         uuid.UUID       `json:"id"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	OrderCount int64           `json:"orderCount"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}
