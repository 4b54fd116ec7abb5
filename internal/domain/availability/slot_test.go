package availability

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayengine/internal/domain/shared/apperr"
)

func TestNewSlotDefaultsAndValidation(t *testing.T) {
	slot, err := NewSlot(CreateSlotParams{
		ID:         "s1",
		PropertyID: "p1",
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Now:        time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, slot.IsAvailable, "availability defaults to true")
	assert.Nil(t, slot.PricePerNight)
	require.Len(t, slot.PendingEvents(), 1)
	assert.Equal(t, "stay.slot.created", slot.PendingEvents()[0].EventName())

	_, err = NewSlot(CreateSlotParams{
		ID:         "s2",
		PropertyID: "p1",
		StartDate:  time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Now:        time.Now(),
	})
	assert.True(t, apperr.IsBadRequest(err))

	_, err = NewSlot(CreateSlotParams{
		ID:         "s3",
		PropertyID: "p1",
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Now:        time.Now(),
	})
	assert.True(t, apperr.IsBadRequest(err), "zero-length slot is rejected")
}

func TestSlotApplyPatch(t *testing.T) {
	price := decimal.RequireFromString("80")
	slot, err := NewSlot(CreateSlotParams{
		ID:            "s1",
		PropertyID:    "p1",
		StartDate:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		PricePerNight: &price,
		Notes:         "summer",
		Now:           time.Now(),
	})
	require.NoError(t, err)
	slot.ClearEvents()

	unavailable := false
	newPrice := decimal.RequireFromString("95")
	notes := "maintenance"
	newEnd := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	slot.Apply(SlotPatch{
		EndDate:       &newEnd,
		IsAvailable:   &unavailable,
		PricePerNight: &newPrice,
		Notes:         &notes,
	}, time.Now())

	assert.Equal(t, newEnd, slot.Range.End)
	assert.False(t, slot.IsAvailable)
	assert.Equal(t, "95", slot.PricePerNight.String())
	assert.Equal(t, "maintenance", slot.Notes)
	require.Len(t, slot.PendingEvents(), 1)
	assert.Equal(t, "stay.slot.updated", slot.PendingEvents()[0].EventName())
}

func TestSlotApplyClearPrice(t *testing.T) {
	price := decimal.RequireFromString("80")
	slot, err := NewSlot(CreateSlotParams{
		ID:            "s1",
		PropertyID:    "p1",
		StartDate:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		PricePerNight: &price,
		Now:           time.Now(),
	})
	require.NoError(t, err)

	slot.Apply(SlotPatch{ClearPrice: true}, time.Now())
	assert.Nil(t, slot.PricePerNight, "cleared slot falls back to the property base price")
}
