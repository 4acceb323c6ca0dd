package domain

import (
	"time"

	"gorm.io/datatypes"
)

// UserViewedProduct is the per-user view aggregate behind the logged-in
// previously-viewed path. One row per (user, product), bumped on every view.
type UserViewedProduct struct {
	ID              uint64            `gorm:"primaryKey" json:"id"`
	UserID          uint64            `gorm:"column:user_id;not null;uniqueIndex:idx_user_product;index:idx_user_last_viewed" json:"user_id"`
	ProductID       uint64            `gorm:"column:product_id;not null;uniqueIndex:idx_user_product" json:"product_id"`
	CategoryID      uint64            `gorm:"column:category_id" json:"category_id"`
	BrandID         uint64            `gorm:"column:brand_id" json:"brand_id"`
	FirstViewedAt   time.Time         `gorm:"column:first_viewed_at" json:"first_viewed_at"`
	LastViewedAt    time.Time         `gorm:"column:last_viewed_at;index:idx_user_last_viewed" json:"last_viewed_at"`
	ViewCount       int               `gorm:"column:view_count;default:1" json:"view_count"`
	ViewDuration    int               `gorm:"column:total_view_duration;default:0" json:"total_view_duration"`
	MaxScrollDepth  int               `gorm:"column:max_scroll_depth;default:0" json:"max_scroll_depth"`
	AddedToCart     bool              `gorm:"column:added_to_cart;default:false" json:"added_to_cart"`
	AddedToWishlist bool              `gorm:"column:added_to_wishlist;default:false" json:"added_to_wishlist"`
	Purchased       bool              `gorm:"column:purchased;default:false" json:"purchased"`
	PurchasedAt     *time.Time        `gorm:"column:purchased_at" json:"purchased_at"`
	Metadata        datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (UserViewedProduct) TableName() string {
	return "user_viewed_products"
}
