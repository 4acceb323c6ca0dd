package recommendation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"marketRecs/domain"
)

const KeyUpsell = "upsell_v1"

// Scoring weights for different criteria. They sum to 1.0 and every
// sub-score lies in [0,1], so the total does too.
const (
	weightPriceProximity = 0.35 // closer price = higher score
	weightCategoryMatch  = 0.25 // same category hierarchy
	weightBrandMatch     = 0.20 // same brand
	weightPremiumFlags   = 0.15 // featured, deals, offers
	weightPriceRange     = 0.05 // reasonable price increase bonus
)

// Candidate price band relative to the base product.
const (
	minPriceIncreasePct = 10  // at least 10% higher
	maxPriceIncreasePct = 200 // at most 200% higher (3x)
)

// Upsell recommends pricier alternatives to a product, scored across five
// weighted criteria: price proximity, category hierarchy match, brand
// match, premium merchandising flags and a price-increase sweet spot.
type Upsell struct {
	productRepo UpsellProductRepository
}

func NewUpsell(productRepo UpsellProductRepository) *Upsell {
	return &Upsell{productRepo: productRepo}
}

func (a *Upsell) Key() string {
	return KeyUpsell
}

func (a *Upsell) Recommend(ctx context.Context, params domain.RecommendationParams, limit int) ([]domain.Recommendation, error) {
	if params.ProductID == 0 {
		return []domain.Recommendation{}, nil
	}

	base, found, err := a.productRepo.FindByID(ctx, params.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load base product: %w", err)
	}
	if !found {
		return []domain.Recommendation{}, nil
	}

	basePrice := base.EffectivePrice()
	if basePrice <= 0 {
		// No usable price means no band to score against.
		return []domain.Recommendation{}, nil
	}

	minPrice := basePrice * (1 + minPriceIncreasePct/100.0)
	maxPrice := basePrice * (1 + maxPriceIncreasePct/100.0)

	candidates, err := a.productRepo.UpsellCandidates(ctx, base, minPrice, maxPrice, limit*5)
	if err != nil {
		return nil, fmt.Errorf("failed to load upsell candidates: %w", err)
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		recs = append(recs, a.scoreCandidate(base, basePrice, candidate))
	}

	// Stable sort keeps the repository's fetch order for equal scores,
	// which makes result order deterministic for a given data set.
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}

	return recs, nil
}

func (a *Upsell) scoreCandidate(base domain.Product, basePrice float64, candidate domain.Product) domain.Recommendation {
	scores := map[string]any{
		"price_proximity": priceProximityScore(candidate, basePrice),
		"category_match":  categoryMatchScore(candidate, base),
		"brand_match":     brandMatchScore(candidate, base),
		"premium_flags":   premiumFlagsScore(candidate),
		"price_range":     priceRangeScore(candidate, basePrice),
	}

	total := scores["price_proximity"].(float64)*weightPriceProximity +
		scores["category_match"].(float64)*weightCategoryMatch +
		scores["brand_match"].(float64)*weightBrandMatch +
		scores["premium_flags"].(float64)*weightPremiumFlags +
		scores["price_range"].(float64)*weightPriceRange
	total = math.Min(1.0, total) // float addition can nudge a perfect score past 1

	candidatePrice := candidate.EffectivePrice()
	priceIncrease := candidatePrice - basePrice
	priceIncreasePct := priceIncrease / basePrice * 100

	return domain.Recommendation{
		ProductID: candidate.ID,
		Score:     total,
		Reason:    "Upsell — " + strings.Join(upsellReasons(base, candidate, priceIncreasePct), ", "),
		Algorithm: a.Key(),
		Metadata: map[string]any{
			"price_increase":         round2(priceIncrease),
			"price_increase_percent": round2(priceIncreasePct),
			"base_price":             round2(basePrice),
			"product_price":          round2(candidatePrice),
			"criteria_scores":        scores,
		},
	}
}

// upsellReasons names the match criteria that fired plus the exact price
// increase, in display order.
func upsellReasons(base, candidate domain.Product, priceIncreasePct float64) []string {
	var reasons []string

	if candidate.BrandID != 0 && candidate.BrandID == base.BrandID {
		reasons = append(reasons, "same brand")
	}

	if candidate.CategoryID == base.CategoryID {
		reasons = append(reasons, "same category")
	} else if candidate.SubcategoryID != 0 && candidate.SubcategoryID == base.SubcategoryID {
		reasons = append(reasons, "same subcategory")
	} else if candidate.ChildCategoryID != 0 && candidate.ChildCategoryID == base.ChildCategoryID {
		reasons = append(reasons, "same child category")
	}

	if candidate.Featured {
		reasons = append(reasons, "featured")
	}
	if candidate.HotDeals {
		reasons = append(reasons, "hot deal")
	}
	if candidate.SpecialOffer {
		reasons = append(reasons, "special offer")
	}

	return append(reasons, fmt.Sprintf("%.1f%% higher", priceIncreasePct))
}

// priceProximityScore favors candidates close above the base price.
func priceProximityScore(candidate domain.Product, basePrice float64) float64 {
	candidatePrice := candidate.EffectivePrice()
	if candidatePrice <= basePrice {
		return 0.0
	}

	pctDiff := (candidatePrice - basePrice) / basePrice * 100
	switch {
	case pctDiff <= 30:
		return 1.0
	case pctDiff <= 50:
		return 0.8
	case pctDiff <= 100:
		return 0.6
	default:
		return 0.4
	}
}

// categoryMatchScore rewards the deepest shared hierarchy level.
func categoryMatchScore(candidate, base domain.Product) float64 {
	if base.ChildCategoryID != 0 && candidate.ChildCategoryID == base.ChildCategoryID {
		return 1.0
	}
	if base.SubcategoryID != 0 && candidate.SubcategoryID == base.SubcategoryID {
		return 0.8
	}
	if candidate.CategoryID == base.CategoryID {
		return 0.6
	}
	return 0.2
}

func brandMatchScore(candidate, base domain.Product) float64 {
	if base.BrandID == 0 || candidate.BrandID == 0 {
		return 0.5 // neutral when either side has no brand info
	}
	if candidate.BrandID == base.BrandID {
		return 1.0
	}
	return 0.3
}

func premiumFlagsScore(candidate domain.Product) float64 {
	score := 0.5
	if candidate.Featured {
		score += 0.2
	}
	if candidate.HotDeals {
		score += 0.15
	}
	if candidate.SpecialOffer {
		score += 0.1
	}
	if candidate.SpecialDeals {
		score += 0.05
	}
	return math.Min(1.0, score)
}

// priceRangeScore gives a small bonus for increases in the 15-40% sweet spot.
func priceRangeScore(candidate domain.Product, basePrice float64) float64 {
	pctIncrease := (candidate.EffectivePrice() - basePrice) / basePrice * 100
	switch {
	case pctIncrease >= 15 && pctIncrease <= 40:
		return 1.0
	case pctIncrease >= 10 && pctIncrease <= 60:
		return 0.8
	case pctIncrease >= 5 && pctIncrease <= 100:
		return 0.6
	default:
		return 0.4
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
