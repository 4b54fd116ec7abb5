package dto

import (
	"time"

	"stayengine/internal/domain/availability"
)

type Slot struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"property_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	IsAvailable   bool      `json:"is_available"`
	PricePerNight *string   `json:"price_per_night,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func MapSlot(slot *availability.Slot) Slot {
	out := Slot{
		ID:          string(slot.ID),
		PropertyID:  string(slot.PropertyID),
		StartDate:   slot.Range.Start,
		EndDate:     slot.Range.End,
		IsAvailable: slot.IsAvailable,
		Notes:       slot.Notes,
		CreatedAt:   slot.CreatedAt,
	}
	if slot.PricePerNight != nil {
		price := slot.PricePerNight.String()
		out.PricePerNight = &price
	}
	return out
}

func MapSlots(slots []*availability.Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, MapSlot(slot))
	}
	return out
}
