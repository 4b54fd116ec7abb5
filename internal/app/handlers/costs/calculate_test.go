package costs

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayengine/internal/app/dto"
	"stayengine/internal/app/middleware"
	"stayengine/internal/app/queries"
	domainavailability "stayengine/internal/domain/availability"
	domainpricing "stayengine/internal/domain/pricing"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/infra/storage/memory"
)

type fixture struct {
	props *memory.PropertyRepository
	slots *memory.SlotRepository
	rules *memory.RuleRepository
	qbus  queries.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	props := memory.NewPropertyRepository()
	slotsRepo := memory.NewSlotRepository()
	rulesRepo := memory.NewRuleRepository()
	factory := memory.Factory{PropertiesRepo: props, SlotsRepo: slotsRepo, RulesRepo: rulesRepo}

	qbus := queries.NewInMemoryBus()
	queries.RegisterHandler(qbus, CalculateCostQuery{}.Key(), &CalculateCostHandler{UoWFactory: factory})

	return &fixture{
		props: props,
		slots: slotsRepo,
		rules: rulesRepo,
		qbus:  middleware.ChainQueries(qbus, middleware.QueryValidation()),
	}
}

func (f *fixture) seedProperty(id string, status domainproperty.Status, enabled bool) {
	f.props.Seed(&domainproperty.Property{
		ID:                    domainproperty.PropertyID(id),
		OwnerID:               "owner-1",
		Status:                status,
		BasePrice:             decimal.RequireFromString("100"),
		Currency:              "EUR",
		DynamicPricingEnabled: enabled,
	})
}

func (f *fixture) seedSaturdayRule(t *testing.T, propertyID string, active bool) {
	t.Helper()
	dow := 6
	rule, err := domainpricing.NewRule(domainpricing.CreateRuleParams{
		ID:         "r1",
		PropertyID: domainproperty.PropertyID(propertyID),
		Name:       "weekend uplift",
		Multiplier: decimal.RequireFromString("1.5"),
		IsActive:   &active,
		DayOfWeek:  &dow,
		Now:        time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, f.rules.Save(context.Background(), rule))
}

func (f *fixture) quote(t *testing.T, propertyID string, checkIn, checkOut time.Time) (*dto.StayCost, error) {
	t.Helper()
	return queries.Ask[CalculateCostQuery, *dto.StayCost](context.Background(), f.qbus, CalculateCostQuery{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	})
}

func TestCalculateCostQuote(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", domainproperty.StatusActive, true)
	f.seedSaturdayRule(t, "p1", true)

	// Friday 2026-08-28 to Sunday: regular Friday, uplifted Saturday.
	result, err := f.quote(t, "p1",
		time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Nights)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, "100", result.BasePricePerNight)
	require.Len(t, result.Breakdown, 2)

	friday, saturday := result.Breakdown[0], result.Breakdown[1]
	assert.Equal(t, "2026-08-28", friday.Date)
	assert.Equal(t, "1", friday.Multiplier)
	assert.Empty(t, friday.AppliedRule)
	assert.Equal(t, "1.5", saturday.Multiplier)
	assert.Equal(t, "150.00", saturday.FinalPrice)
	assert.Equal(t, "weekend uplift", saturday.AppliedRule)
	assert.Equal(t, "250.00", result.Subtotal)
	assert.Equal(t, "250.00", result.Total)
}

func TestCalculateCostSlotOverride(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", domainproperty.StatusActive, false)

	override := decimal.RequireFromString("120")
	slot, err := domainavailability.NewSlot(domainavailability.CreateSlotParams{
		ID:            "s1",
		PropertyID:    "p1",
		StartDate:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		PricePerNight: &override,
		Now:           time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, f.slots.Save(context.Background(), slot))

	result, err := f.quote(t, "p1",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "120", result.Breakdown[0].BasePrice)
	assert.Equal(t, "100", result.Breakdown[1].BasePrice)
	assert.Equal(t, "220.00", result.Subtotal)
}

func TestCalculateCostInactiveRulesIgnored(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", domainproperty.StatusActive, true)
	f.seedSaturdayRule(t, "p1", false)

	result, err := f.quote(t, "p1",
		time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "1", result.Breakdown[0].Multiplier)
	assert.Empty(t, result.Breakdown[0].AppliedRule)
}

func TestCalculateCostDisabledFlagIgnoresRules(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", domainproperty.StatusActive, false)
	f.seedSaturdayRule(t, "p1", true)

	result, err := f.quote(t, "p1",
		time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "1", result.Breakdown[0].Multiplier)
	assert.Equal(t, "100.00", result.Subtotal)
}

func TestCalculateCostErrors(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", domainproperty.StatusActive, false)
	f.seedProperty("gone", domainproperty.StatusDeleted, false)

	_, err := f.quote(t, "missing",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	assert.True(t, apperr.IsNotFound(err))

	// Deleted properties are indistinguishable from missing ones.
	_, err = f.quote(t, "gone",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.quote(t, "p1",
		time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, apperr.IsBadRequest(err))

	_, err = f.quote(t, "p1",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, apperr.IsBadRequest(err), "zero-night stay is rejected")
}
