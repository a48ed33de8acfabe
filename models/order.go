package models

import (
	"time"

	"gorm.io/gorm"
)

// Order status values.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
)

// StudyKit is a purchasable physical or digital kit offered alongside courses.
type StudyKit struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	PriceCents  int64          `gorm:"not null" json:"price_cents"`
	Active      bool           `gorm:"default:true;index" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// KitOrder is a study-kit purchase. OrderNo is an external-facing identifier;
// CheckoutURL points the buyer at the Stripe checkout session when configured.
type KitOrder struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderNo     string    `gorm:"size:64;uniqueIndex;not null" json:"order_no"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	KitID       uint      `gorm:"index;not null" json:"kit_id"`
	Quantity    int       `gorm:"default:1" json:"quantity"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Status      string    `gorm:"size:16;default:pending;index" json:"status"`
	CheckoutURL string    `gorm:"size:1024" json:"checkout_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Kit         StudyKit  `json:"kit,omitempty"`
}
