package availability

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/domain/shared/daterange"
	"stayengine/internal/domain/shared/events"
)

type SlotID string

// Slot is a date interval attached to a property, optionally carrying its own
// nightly price and an availability flag.
type Slot struct {
	ID            SlotID
	PropertyID    property.PropertyID
	Range         daterange.DateRange
	IsAvailable   bool
	PricePerNight *decimal.Decimal
	Notes         string
	CreatedAt     time.Time
	events.EventRecorder
}

type CreateSlotParams struct {
	ID            SlotID
	PropertyID    property.PropertyID
	StartDate     time.Time
	EndDate       time.Time
	IsAvailable   *bool
	PricePerNight *decimal.Decimal
	Notes         string
	Now           time.Time
}

// NewSlot validates interval ordering and applies defaults. Overlap against
// sibling slots is a store-level concern checked by the create handler.
func NewSlot(params CreateSlotParams) (*Slot, error) {
	dr, err := daterange.New(params.StartDate, params.EndDate)
	if err != nil {
		return nil, apperr.BadRequest("end date must be after start date")
	}
	available := true
	if params.IsAvailable != nil {
		available = *params.IsAvailable
	}
	slot := &Slot{
		ID:            params.ID,
		PropertyID:    params.PropertyID,
		Range:         dr,
		IsAvailable:   available,
		PricePerNight: params.PricePerNight,
		Notes:         params.Notes,
		CreatedAt:     params.Now.UTC(),
	}
	slot.Record(SlotCreated{PropertyID: slot.PropertyID, SlotID: slot.ID, Range: slot.Range, At: slot.CreatedAt})
	return slot, nil
}

// SlotPatch carries a partial update; nil fields are left untouched.
// Moving dates through a patch is not re-validated against sibling slots.
type SlotPatch struct {
	StartDate     *time.Time
	EndDate       *time.Time
	IsAvailable   *bool
	PricePerNight *decimal.Decimal
	ClearPrice    bool
	Notes         *string
}

func (s *Slot) Apply(patch SlotPatch, now time.Time) {
	if patch.StartDate != nil {
		s.Range.Start = daterange.Day(*patch.StartDate)
	}
	if patch.EndDate != nil {
		s.Range.End = daterange.Day(*patch.EndDate)
	}
	if patch.IsAvailable != nil {
		s.IsAvailable = *patch.IsAvailable
	}
	if patch.ClearPrice {
		s.PricePerNight = nil
	} else if patch.PricePerNight != nil {
		s.PricePerNight = patch.PricePerNight
	}
	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}
	s.Record(SlotUpdated{PropertyID: s.PropertyID, SlotID: s.ID, At: now.UTC()})
}

// Repository is the persistence port for availability slots.
type Repository interface {
	ByID(ctx context.Context, propertyID property.PropertyID, id SlotID) (*Slot, error)
	// Overlapping returns sibling slots satisfying the inclusive-bounds
	// overlap predicate: existing.Start <= r.End AND existing.End >= r.Start.
	Overlapping(ctx context.Context, propertyID property.PropertyID, r daterange.DateRange) ([]*Slot, error)
	// Intersecting returns slots touching the optional window, ordered by
	// start date ascending. Zero window bounds leave that side open.
	Intersecting(ctx context.Context, propertyID property.PropertyID, windowStart, windowEnd time.Time) ([]*Slot, error)
	// Available returns the property's available slots for cost resolution.
	Available(ctx context.Context, propertyID property.PropertyID) ([]*Slot, error)
	Save(ctx context.Context, slot *Slot) error
	Delete(ctx context.Context, propertyID property.PropertyID, id SlotID) error
}
