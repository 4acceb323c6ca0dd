package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id                 BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     category_id        BIGINT NOT NULL,
//     subcategory_id     BIGINT,
//     child_category_id  BIGINT,
//     brand_id           BIGINT,
//     product_name       TEXT,
//     unit_price         NUMERIC,
//     final_price        NUMERIC,
//     qty                NUMERIC,
//     stock              TEXT,
//     status             INT DEFAULT 1,
//     featured           BOOLEAN DEFAULT FALSE,
//     hot_deals          BOOLEAN DEFAULT FALSE,
//     special_offer      BOOLEAN DEFAULT FALSE,
//     special_deals      BOOLEAN DEFAULT FALSE,
//     call_for_price     BOOLEAN DEFAULT FALSE,
//     created_at         TIMESTAMPTZ DEFAULT NOW()
// );

const ProductStatusActive = 1

type Product struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID      uint64    `gorm:"column:category_id;index" json:"category_id"`
	SubcategoryID   uint64    `gorm:"column:subcategory_id" json:"subcategory_id"`
	ChildCategoryID uint64    `gorm:"column:child_category_id" json:"child_category_id"`
	BrandID         uint64    `gorm:"column:brand_id" json:"brand_id"`
	ProductName     string    `gorm:"column:product_name;type:text" json:"product_name"`
	UnitPrice       float64   `gorm:"column:unit_price;type:numeric" json:"unit_price"`
	FinalPrice      float64   `gorm:"column:final_price;type:numeric" json:"final_price"`
	Qty             float64   `gorm:"column:qty;type:numeric" json:"qty"`
	Stock           string    `gorm:"column:stock;type:text" json:"stock"`
	Status          int       `gorm:"column:status;default:1" json:"status"`
	Featured        bool      `gorm:"column:featured;default:false" json:"featured"`
	HotDeals        bool      `gorm:"column:hot_deals;default:false" json:"hot_deals"`
	SpecialOffer    bool      `gorm:"column:special_offer;default:false" json:"special_offer"`
	SpecialDeals    bool      `gorm:"column:special_deals;default:false" json:"special_deals"`
	CallForPrice    bool      `gorm:"column:call_for_price;default:false" json:"call_for_price"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the price used for recommendation scoring: the
// promotional final_price when set, otherwise the list unit_price.
// Returns 0 when the product carries no usable price.
func (p Product) EffectivePrice() float64 {
	if p.FinalPrice > 0 {
		return p.FinalPrice
	}
	if p.UnitPrice > 0 {
		return p.UnitPrice
	}
	return 0
}

// InStock mirrors the storefront's mixed stock representation: a numeric
// qty column plus a free-text stock label.
func (p Product) InStock() bool {
	if p.Qty > 0 {
		return true
	}
	switch p.Stock {
	case "in_stock", "available", "In Stock", "Available":
		return true
	}
	return false
}
