package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Request contexts a recommendation can originate from. Each context has a
// configurable default algorithm.
const (
	ContextHome        = "home"
	ContextProductPage = "product_page"
	ContextCart        = "cart"
	ContextEmail       = "email"
	ContextCheckout    = "checkout"
)

// RecommendationParams is the already-validated parameter bag handed to the
// core. Zero values mean "not provided".
type RecommendationParams struct {
	UserID     uint64   `json:"user_id"`
	SessionID  string   `json:"session_id"`
	ProductID  uint64   `json:"product_id"`
	ProductIDs []uint64 `json:"product_ids"`
	CategoryID uint64   `json:"category_id"`
	Context    string   `json:"context"`
	Algorithm  string   `json:"algorithm"`
	Variant    string   `json:"variant"`
	Limit      int      `json:"limit"`
}

// Recommendation is one ranked item. Treated as a value: never mutated
// after an algorithm produces it, so cached copies stay byte-stable.
type Recommendation struct {
	ProductID uint64         `json:"product_id"`
	Score     float64        `json:"score"`
	Reason    string         `json:"reason"`
	Algorithm string         `json:"algorithm"`
	Metadata  map[string]any `json:"metadata"`
}

// RecommendationImpression records that a recommendation set was shown.
// Written asynchronously by the telemetry writer, read only offline.
type RecommendationImpression struct {
	ID               uint64         `gorm:"primaryKey" json:"id"`
	RecommendationID string         `gorm:"column:recommendation_id;not null" json:"recommendation_id"`
	Algorithm        string         `gorm:"column:algorithm;not null;index:idx_impressions_algo_shown" json:"algorithm"`
	Variant          string         `gorm:"column:variant" json:"variant"`
	UserID           uint64         `gorm:"column:user_id" json:"user_id"`
	SessionID        string         `gorm:"column:session_id" json:"session_id"`
	Items            datatypes.JSON `gorm:"column:items;type:jsonb" json:"items"`
	ShownAt          time.Time      `gorm:"column:shown_at;index:idx_impressions_algo_shown" json:"shown_at"`
}

func (RecommendationImpression) TableName() string {
	return "recommendation_impressions"
}
