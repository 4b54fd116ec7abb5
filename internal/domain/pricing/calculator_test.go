package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayengine/internal/domain/availability"
	"stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/daterange"
)

func testProperty(enabled bool) *property.Property {
	return &property.Property{
		ID:                    "p1",
		OwnerID:               "owner",
		Status:                property.StatusActive,
		BasePrice:             decimal.RequireFromString("100"),
		Currency:              "EUR",
		DynamicPricingEnabled: enabled,
	}
}

func stay(t *testing.T, start, end time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(start, end)
	require.NoError(t, err)
	return dr
}

func dayRule(t *testing.T, id string, name string, multiplier string, dow int, priority int, createdAt time.Time) *Rule {
	t.Helper()
	active := true
	rule, err := NewRule(CreateRuleParams{
		ID:         RuleID(id),
		PropertyID: "p1",
		Name:       name,
		Multiplier: decimal.RequireFromString(multiplier),
		IsActive:   &active,
		Priority:   &priority,
		DayOfWeek:  &dow,
		Now:        createdAt,
	})
	require.NoError(t, err)
	return rule
}

func TestCalculatePlainStay(t *testing.T) {
	// Two nights at the flat base price.
	dr := stay(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	quote := Calculate(testProperty(true), nil, nil, dr)

	assert.Equal(t, 2, quote.Nights)
	require.Len(t, quote.Breakdown, 2)
	assert.Equal(t, "200.00", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "200.00", quote.Total.StringFixed(2))
	for _, line := range quote.Breakdown {
		assert.Equal(t, "100", line.BasePrice.String())
		assert.Equal(t, "1", line.Multiplier.String())
		assert.Equal(t, "100.00", line.FinalPrice.StringFixed(2))
		assert.Empty(t, line.AppliedRule)
	}
}

func TestCalculateAppliesSaturdayRule(t *testing.T) {
	// Friday 2026-08-28 through Sunday: one regular night, one Saturday night.
	dr := stay(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	rules := []*Rule{dayRule(t, "r1", "weekend uplift", "1.5", 6, 0, time.Now())}

	quote := Calculate(testProperty(true), rules, nil, dr)

	require.Len(t, quote.Breakdown, 2)
	friday, saturday := quote.Breakdown[0], quote.Breakdown[1]
	assert.Equal(t, "1", friday.Multiplier.String())
	assert.Empty(t, friday.AppliedRule)
	assert.Equal(t, "1.5", saturday.Multiplier.String())
	assert.Equal(t, "150.00", saturday.FinalPrice.StringFixed(2))
	assert.Equal(t, "weekend uplift", saturday.AppliedRule)
	assert.Equal(t, "250.00", quote.Subtotal.StringFixed(2))
}

func TestCalculateIgnoresRulesWhenDynamicPricingDisabled(t *testing.T) {
	dr := stay(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	rules := []*Rule{dayRule(t, "r1", "weekend uplift", "1.5", 6, 0, time.Now())}

	quote := Calculate(testProperty(false), rules, nil, dr)

	for _, line := range quote.Breakdown {
		assert.Equal(t, "1", line.Multiplier.String())
		assert.Empty(t, line.AppliedRule)
	}
	assert.Equal(t, "200.00", quote.Subtotal.StringFixed(2))
}

func TestCalculateUsesSlotPriceOverride(t *testing.T) {
	dr := stay(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	override := decimal.RequireFromString("120")
	slot, err := availability.NewSlot(availability.CreateSlotParams{
		ID:            "s1",
		PropertyID:    "p1",
		StartDate:     time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		PricePerNight: &override,
		Now:           time.Now(),
	})
	require.NoError(t, err)

	quote := Calculate(testProperty(false), nil, []*availability.Slot{slot}, dr)

	require.Len(t, quote.Breakdown, 2)
	assert.Equal(t, "120", quote.Breakdown[0].BasePrice.String(), "night inside the slot uses its override")
	assert.Equal(t, "100", quote.Breakdown[1].BasePrice.String(), "slot end date is exclusive for nightly pricing")
	assert.Equal(t, "220.00", quote.Subtotal.StringFixed(2))
}

func TestCalculateSlotWithoutPriceFallsBack(t *testing.T) {
	dr := stay(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	slot, err := availability.NewSlot(availability.CreateSlotParams{
		ID:         "s1",
		PropertyID: "p1",
		StartDate:  time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Now:        time.Now(),
	})
	require.NoError(t, err)

	quote := Calculate(testProperty(false), nil, []*availability.Slot{slot}, dr)
	assert.Equal(t, "100", quote.Breakdown[0].BasePrice.String())
}

func TestCalculateFirstMatchingRuleWins(t *testing.T) {
	// Saturday night; both rules match, the list arrives pre-sorted by
	// priority descending so the scan stops at the first hit.
	dr := stay(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	rules := []*Rule{
		dayRule(t, "r1", "high priority", "2", 6, 10, time.Now()),
		dayRule(t, "r2", "low priority", "1.5", 6, 1, time.Now()),
	}

	quote := Calculate(testProperty(true), rules, nil, dr)

	require.Len(t, quote.Breakdown, 1)
	assert.Equal(t, "high priority", quote.Breakdown[0].AppliedRule)
	assert.Equal(t, "200.00", quote.Breakdown[0].FinalPrice.StringFixed(2))
}

func TestCalculateRoundsSubtotalOnce(t *testing.T) {
	// 100 * 1.333 = 133.3 per night; three nights accumulate unrounded
	// before the single final rounding.
	dr := stay(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC))
	dow0, dow1, dow2 := 1, 2, 3
	prio := 0
	active := true
	var rules []*Rule
	for i, dow := range []int{dow0, dow1, dow2} {
		d := dow
		rule, err := NewRule(CreateRuleParams{
			ID:         RuleID(string(rune('a' + i))),
			PropertyID: "p1",
			Name:       "uplift",
			Multiplier: decimal.RequireFromString("1.333"),
			IsActive:   &active,
			Priority:   &prio,
			DayOfWeek:  &d,
			Now:        time.Now(),
		})
		require.NoError(t, err)
		rules = append(rules, rule)
	}

	quote := Calculate(testProperty(true), rules, nil, dr)
	assert.Equal(t, "399.90", quote.Subtotal.StringFixed(2))
}
