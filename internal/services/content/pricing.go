package content

import (
	"context"
	"fmt"
	"math"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

// PlanOffer is a plan priced for one billing cycle.
type PlanOffer struct {
	entity.Plan
	Price          int `json:"price"`
	SavingsPercent int `json:"savings_percent"`
}

// PricingPage is everything the pricing page shows.
type PricingPage struct {
	Cycle  entity.BillingCycle `json:"cycle"`
	Plans  []PlanOffer         `json:"plans"`
	AddOns []entity.AddOn      `json:"add_ons"`
	FAQs   []entity.FAQ        `json:"faqs"`
}

// Pricing returns the plans priced for cycle, with add-ons and FAQs.
func (s *Service) Pricing(ctx context.Context, cycle entity.BillingCycle) (*PricingPage, error) {
	plans, err := s.catalog.Plans(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading plans: %w", err)
	}
	addOns, err := s.catalog.AddOns(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading add-ons: %w", err)
	}
	faqs, err := s.catalog.FAQs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading faqs: %w", err)
	}

	offers := make([]PlanOffer, 0, len(plans))
	for _, p := range plans {
		offers = append(offers, PlanOffer{
			Plan:           p,
			Price:          PriceFor(p, cycle),
			SavingsPercent: YearlySavingsPercent(p),
		})
	}
	return &PricingPage{Cycle: cycle, Plans: offers, AddOns: addOns, FAQs: faqs}, nil
}

// PriceFor returns the plan price for the billing cycle.
func PriceFor(p entity.Plan, cycle entity.BillingCycle) int {
	if cycle == entity.BillingYearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}

// YearlySavingsPercent is the rounded saving of yearly over twelve monthly
// payments. Free plans save nothing.
func YearlySavingsPercent(p entity.Plan) int {
	if p.MonthlyPrice == 0 {
		return 0
	}
	monthlyTotal := float64(p.MonthlyPrice * 12)
	return int(math.Round((monthlyTotal - float64(p.YearlyPrice)) / monthlyTotal * 100))
}
