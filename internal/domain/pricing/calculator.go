package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"stayengine/internal/domain/availability"
	"stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/daterange"
)

// BreakdownLine is the computed per-night result of applying a slot-based
// base price and a rule-based multiplier. Not persisted.
type BreakdownLine struct {
	Date        time.Time
	BasePrice   decimal.Decimal
	Multiplier  decimal.Decimal
	FinalPrice  decimal.Decimal
	AppliedRule string
}

// Quote is the full theoretical cost of a stay in the property's currency.
type Quote struct {
	CheckIn           time.Time
	CheckOut          time.Time
	Nights            int
	BasePricePerNight decimal.Decimal
	Breakdown         []BreakdownLine
	Subtotal          decimal.Decimal
	Total             decimal.Decimal
	Currency          string
}

var one = decimal.NewFromInt(1)

// Calculate resolves the nightly cost for every night of the range.
//
// Base price: the first available slot containing the night (slot end treated
// exclusive here, unlike the inclusive overlap check on the write side)
// supplies its override, falling back to the property base price. Multiplier:
// when dynamic pricing is enabled, the first rule in the pre-sorted list whose
// condition matches wins and the scan stops; rules must arrive ordered by
// priority descending then creation ascending and already filtered to active.
// Per-night prices are rounded to 2dp for display only; the subtotal
// accumulates unrounded values and is rounded once at the end.
func Calculate(prop *property.Property, rules []*Rule, slots []*availability.Slot, dr daterange.DateRange) Quote {
	nights := dr.Nights()
	quote := Quote{
		CheckIn:           dr.Start,
		CheckOut:          dr.End,
		Nights:            nights,
		BasePricePerNight: prop.BasePrice,
		Breakdown:         make([]BreakdownLine, 0, nights),
		Currency:          prop.Currency,
	}

	subtotal := decimal.Zero
	for i := 0; i < nights; i++ {
		date := dr.Start.AddDate(0, 0, i)

		base := prop.BasePrice
		for _, slot := range slots {
			if slot.Range.ContainsDate(date) {
				if slot.PricePerNight != nil {
					base = *slot.PricePerNight
				}
				break
			}
		}

		multiplier := one
		appliedRule := ""
		if prop.DynamicPricingEnabled {
			for _, rule := range rules {
				if rule.Matches(date) {
					multiplier = rule.PriceMultiplier
					appliedRule = rule.Name
					break
				}
			}
		}

		final := base.Mul(multiplier)
		subtotal = subtotal.Add(final)
		quote.Breakdown = append(quote.Breakdown, BreakdownLine{
			Date:        date,
			BasePrice:   base,
			Multiplier:  multiplier,
			FinalPrice:  final.Round(2),
			AppliedRule: appliedRule,
		})
	}

	quote.Subtotal = subtotal.Round(2)
	// No fee layer yet; total mirrors the subtotal.
	quote.Total = quote.Subtotal
	return quote
}
