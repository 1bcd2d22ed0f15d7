package catalog

import "slices"

// BillingCycle is how often a price is charged.
type BillingCycle string

const (
	BillingCycleNone    BillingCycle = "none" // free prices
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Valid reports whether c is a known billing cycle.
func (c BillingCycle) Valid() bool {
	switch c {
	case BillingCycleNone, BillingCycleMonthly, BillingCycleYearly:
		return true
	}
	return false
}

// Price is a purchasable price of a plan. ID must match the payment provider's price ID.
type Price struct {
	ID           string       `yaml:"id"`
	Amount       int64        `yaml:"amount"` // smallest currency unit
	Currency     string       `yaml:"currency"`
	BillingCycle BillingCycle `yaml:"billing_cycle"`
}

// Plan is an immutable catalog entry.
type Plan struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
	Prices      []Price  `yaml:"prices"`
}

// HasFeature reports whether the plan grants the named feature.
func (p Plan) HasFeature(feature string) bool {
	return slices.Contains(p.Features, feature)
}

// FirstPrice returns the first configured price of the plan.
func (p Plan) FirstPrice() (Price, bool) {
	if len(p.Prices) == 0 {
		return Price{}, false
	}
	return p.Prices[0], true
}

func (p Plan) clone() Plan {
	p.Features = slices.Clone(p.Features)
	p.Prices = slices.Clone(p.Prices)
	return p
}
