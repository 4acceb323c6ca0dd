package domain

import (
	"time"
)

// ProductPopularity is one aggregate row per product, upserted by the
// recompute job. Read-only everywhere else.
//
// view_score = view_count; purchase_score = 2*purchase_count + 0.5*view_count.
type ProductPopularity struct {
	ProductID     uint64    `gorm:"column:product_id;primaryKey" json:"product_id"`
	CategoryID    uint64    `gorm:"column:category_id;index" json:"category_id"`
	ViewCount     uint64    `gorm:"column:view_count;default:0" json:"view_count"`
	PurchaseCount uint64    `gorm:"column:purchase_count;default:0" json:"purchase_count"`
	ViewScore     float64   `gorm:"column:view_score;default:0" json:"view_score"`
	PurchaseScore float64   `gorm:"column:purchase_score;default:0" json:"purchase_score"`
	ComputedAt    time.Time `gorm:"column:computed_at" json:"computed_at"`
}

func (ProductPopularity) TableName() string {
	return "product_popularity"
}

// ProductCopurchase is a directed pairwise statistic. The recompute job
// writes every unordered pair {a,b} as both (a,b) and (b,a) with identical
// count and score, and never writes self-pairs.
type ProductCopurchase struct {
	ID                   uint64  `gorm:"primaryKey" json:"id"`
	ProductID            uint64  `gorm:"column:product_id;uniqueIndex:idx_copurchase_pair;index:idx_copurchase_product_score" json:"product_id"`
	CopurchasedProductID uint64  `gorm:"column:copurchased_product_id;uniqueIndex:idx_copurchase_pair" json:"copurchased_product_id"`
	Count                uint64  `gorm:"column:count;default:0" json:"count"`
	Score                float64 `gorm:"column:score;default:0;index:idx_copurchase_product_score" json:"score"`
}

func (ProductCopurchase) TableName() string {
	return "product_copurchase"
}
