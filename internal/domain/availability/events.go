package availability

import (
	"time"

	"stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/daterange"
)

type SlotCreated struct {
	PropertyID property.PropertyID
	SlotID     SlotID
	Range      daterange.DateRange
	At         time.Time
}

func (e SlotCreated) EventName() string     { return "stay.slot.created" }
func (e SlotCreated) AggregateID() string   { return string(e.PropertyID) }
func (e SlotCreated) OccurredAt() time.Time { return e.At }

type SlotUpdated struct {
	PropertyID property.PropertyID
	SlotID     SlotID
	At         time.Time
}

func (e SlotUpdated) EventName() string     { return "stay.slot.updated" }
func (e SlotUpdated) AggregateID() string   { return string(e.PropertyID) }
func (e SlotUpdated) OccurredAt() time.Time { return e.At }

type SlotDeleted struct {
	PropertyID property.PropertyID
	SlotID     SlotID
	At         time.Time
}

func (e SlotDeleted) EventName() string     { return "stay.slot.deleted" }
func (e SlotDeleted) AggregateID() string   { return string(e.PropertyID) }
func (e SlotDeleted) OccurredAt() time.Time { return e.At }
