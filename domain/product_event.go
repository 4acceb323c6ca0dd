package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Event types written by the tracking service and read back by the
// aggregate recompute and the session-based previously-viewed path.
const (
	EventProductView      = "product_view"
	EventPurchase         = "purchase"
	EventAddToCart        = "add_to_cart"
	EventAddToWishlist    = "add_to_wishlist"
	EventRemoveFromCart   = "remove_from_cart"
	EventShare            = "share"
	EventClick            = "click"
)

// ProductEvent is an append-only behavioral log record. Rows are never
// mutated after insert; every aggregate table is derived from them.
type ProductEvent struct {
	ID           uint64            `gorm:"primaryKey" json:"id"`
	EventType    string            `gorm:"column:event_type;not null;index:idx_product_events_type_product" json:"event_type"`
	ProductID    uint64            `gorm:"column:product_id;not null;index:idx_product_events_type_product" json:"product_id"`
	UserID       uint64            `gorm:"column:user_id" json:"user_id"`
	SessionID    string            `gorm:"column:session_id;index" json:"session_id"`
	CartID       uint64            `gorm:"column:cart_id" json:"cart_id"`
	CategoryID   uint64            `gorm:"column:category_id" json:"category_id"`
	BrandID      uint64            `gorm:"column:brand_id" json:"brand_id"`
	ProductPrice float64           `gorm:"column:product_price;type:numeric" json:"product_price"`
	IPAddress    string            `gorm:"column:ip_address" json:"ip_address"`
	UserAgent    string            `gorm:"column:user_agent;type:text" json:"user_agent"`
	Referrer     string            `gorm:"column:referrer;type:text" json:"referrer"`
	DeviceType   string            `gorm:"column:device_type" json:"device_type"`
	OccurredAt   time.Time         `gorm:"column:occurred_at;index" json:"occurred_at"`
	Meta         datatypes.JSONMap `gorm:"column:meta;type:jsonb" json:"meta"`
}

func (ProductEvent) TableName() string {
	return "product_events"
}
