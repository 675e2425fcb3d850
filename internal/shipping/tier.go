package shipping

import (
	"context"
	"strings"
)

// Tier is one flat shipping charge applied when an order contains any item
// in one of its categories. The highest matching tier wins; tiers do not
// stack across items.
type Tier struct {
	Name       string
	Categories []string
	CostCents  int64
}

// TierCalculator charges the single most expensive tier matched by the
// order's items, plus a base charge when nothing matches.
type TierCalculator struct {
	tiers     []Tier
	baseCents int64
}

// DefaultTiers are the standing shipping tiers for printed products.
var DefaultTiers = []Tier{
	{Name: "large-format", Categories: []string{"banners", "signs", "posters"}, CostCents: 2500},
	{Name: "apparel", Categories: []string{"apparel", "t-shirts", "hoodies"}, CostCents: 1200},
	{Name: "standard", Categories: []string{"business-cards", "flyers", "postcards", "stickers"}, CostCents: 900},
}

// NewTierCalculator creates a calculator from tiers and a fallback base
// charge for items matching no tier.
func NewTierCalculator(tiers []Tier, baseCents int64) *TierCalculator {
	if tiers == nil {
		tiers = DefaultTiers
	}
	return &TierCalculator{tiers: tiers, baseCents: baseCents}
}

// CalculateShipping returns the highest matching tier cost for the items.
// An empty item list ships free. Category matching is case-insensitive.
func (c *TierCalculator) CalculateShipping(ctx context.Context, items []Item) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	var best int64 = -1
	for _, item := range items {
		for _, tier := range c.tiers {
			for _, cat := range tier.Categories {
				if strings.EqualFold(cat, item.Category) && tier.CostCents > best {
					best = tier.CostCents
				}
			}
		}
	}
	if best < 0 {
		return c.baseCents, nil
	}
	return best, nil
}
