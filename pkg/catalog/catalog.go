package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Source defines how plans are loaded into the catalog.
type Source interface {
	Load(ctx context.Context) ([]Plan, error)
}

// Catalog is a read-only plan/price lookup built once at startup.
type Catalog struct {
	plans       []Plan
	byID        map[string]int
	planByPrice map[string]int
	prices      map[string]Price
}

// New loads plans from src and validates them.
// Panics if src is nil to fail fast on misconfigured wiring.
func New(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("catalog: Source is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	return build(plans)
}

// MustNew works like New but panics on error.
func MustNew(ctx context.Context, src Source) *Catalog {
	c, err := New(ctx, src)
	if err != nil {
		panic(err)
	}
	return c
}

func build(plans []Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, errors.Join(ErrInvalidPlanConfiguration, errors.New("catalog has no plans"))
	}

	c := &Catalog{
		plans:       make([]Plan, 0, len(plans)),
		byID:        make(map[string]int, len(plans)),
		planByPrice: make(map[string]int),
		prices:      make(map[string]Price),
	}

	for _, plan := range plans {
		if err := validatePlan(plan); err != nil {
			return nil, err
		}
		if _, exists := c.byID[plan.ID]; exists {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("duplicate plan ID %s", plan.ID))
		}

		idx := len(c.plans)
		c.plans = append(c.plans, plan.clone())
		c.byID[plan.ID] = idx

		for _, price := range plan.Prices {
			if _, exists := c.prices[price.ID]; exists {
				return nil, errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("price %s is used by more than one plan", price.ID))
			}
			c.prices[price.ID] = price
			c.planByPrice[price.ID] = idx
		}
	}

	return c, nil
}

func validatePlan(plan Plan) error {
	if plan.ID == "" {
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("plan ID is required"))
	}
	if len(plan.Prices) == 0 {
		return errors.Join(ErrInvalidPlanConfiguration,
			fmt.Errorf("plan %s has no prices", plan.ID))
	}
	for _, price := range plan.Prices {
		if price.ID == "" {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has a price without ID", plan.ID))
		}
		if price.Amount < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("price %s has negative amount: %d", price.ID, price.Amount))
		}
		if !price.BillingCycle.Valid() {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("price %s has unknown billing cycle %q", price.ID, price.BillingCycle))
		}
	}
	return nil
}

// Plans returns all plans in catalog order. The result is a copy.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	for i, p := range c.plans {
		out[i] = p.clone()
	}
	return out
}

// Plan returns the plan with the given ID.
func (c *Catalog) Plan(planID string) (Plan, error) {
	idx, ok := c.byID[planID]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return c.plans[idx].clone(), nil
}

// IsPriceValid reports whether priceID belongs to any plan.
func (c *Catalog) IsPriceValid(priceID string) bool {
	_, ok := c.prices[priceID]
	return ok
}

// PlanForPrice resolves the plan and price for a provider price ID.
func (c *Catalog) PlanForPrice(priceID string) (Plan, Price, bool) {
	idx, ok := c.planByPrice[priceID]
	if !ok {
		return Plan{}, Price{}, false
	}
	return c.plans[idx].clone(), c.prices[priceID], true
}

// PlanFromPriceID returns the plan that owns priceID.
func (c *Catalog) PlanFromPriceID(priceID string) (Plan, error) {
	plan, _, ok := c.PlanForPrice(priceID)
	if !ok {
		return Plan{}, ErrPriceNotFound
	}
	return plan, nil
}
