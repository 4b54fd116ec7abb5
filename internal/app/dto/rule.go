package dto

import (
	"time"

	"stayengine/internal/domain/pricing"
)

type PricingRule struct {
	ID              string     `json:"id"`
	PropertyID      string     `json:"property_id"`
	Name            string     `json:"name"`
	PriceMultiplier string     `json:"price_multiplier"`
	IsActive        bool       `json:"is_active"`
	Priority        int        `json:"priority"`
	DayOfWeek       *int       `json:"day_of_week,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func MapRule(rule *pricing.Rule) PricingRule {
	return PricingRule{
		ID:              string(rule.ID),
		PropertyID:      string(rule.PropertyID),
		Name:            rule.Name,
		PriceMultiplier: rule.PriceMultiplier.String(),
		IsActive:        rule.IsActive,
		Priority:        rule.Priority,
		DayOfWeek:       rule.DayOfWeek,
		StartDate:       rule.StartDate,
		EndDate:         rule.EndDate,
		CreatedAt:       rule.CreatedAt,
	}
}

func MapRules(rules []*pricing.Rule) []PricingRule {
	out := make([]PricingRule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, MapRule(rule))
	}
	return out
}
