package dto

import (
	"time"

	"stayengine/internal/domain/pricing"
)

// CostBreakdownLine is one night of a stay-cost quote. Prices travel as
// strings: base price and multiplier unrounded, final price fixed to 2dp.
type CostBreakdownLine struct {
	Date        string `json:"date"`
	BasePrice   string `json:"base_price"`
	Multiplier  string `json:"multiplier"`
	FinalPrice  string `json:"final_price"`
	AppliedRule string `json:"applied_rule,omitempty"`
}

type StayCost struct {
	PropertyID        string              `json:"property_id"`
	CheckIn           time.Time           `json:"check_in"`
	CheckOut          time.Time           `json:"check_out"`
	Nights            int                 `json:"nights"`
	BasePricePerNight string              `json:"base_price_per_night"`
	Breakdown         []CostBreakdownLine `json:"breakdown"`
	Subtotal          string              `json:"subtotal"`
	Total             string              `json:"total"`
	Currency          string              `json:"currency"`
}

func MapStayCost(propertyID string, quote pricing.Quote) StayCost {
	lines := make([]CostBreakdownLine, 0, len(quote.Breakdown))
	for _, line := range quote.Breakdown {
		lines = append(lines, CostBreakdownLine{
			Date:        line.Date.Format("2006-01-02"),
			BasePrice:   line.BasePrice.String(),
			Multiplier:  line.Multiplier.String(),
			FinalPrice:  line.FinalPrice.StringFixed(2),
			AppliedRule: line.AppliedRule,
		})
	}
	return StayCost{
		PropertyID:        propertyID,
		CheckIn:           quote.CheckIn,
		CheckOut:          quote.CheckOut,
		Nights:            quote.Nights,
		BasePricePerNight: quote.BasePricePerNight.String(),
		Breakdown:         lines,
		Subtotal:          quote.Subtotal.StringFixed(2),
		Total:             quote.Total.StringFixed(2),
		Currency:          quote.Currency,
	}
}
