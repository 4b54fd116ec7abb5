package pricing

import (
	"time"

	"stayengine/internal/domain/property"
)

type RuleCreated struct {
	PropertyID property.PropertyID
	RuleID     RuleID
	At         time.Time
}

func (e RuleCreated) EventName() string     { return "stay.rule.created" }
func (e RuleCreated) AggregateID() string   { return string(e.PropertyID) }
func (e RuleCreated) OccurredAt() time.Time { return e.At }

type RuleUpdated struct {
	PropertyID property.PropertyID
	RuleID     RuleID
	At         time.Time
}

func (e RuleUpdated) EventName() string     { return "stay.rule.updated" }
func (e RuleUpdated) AggregateID() string   { return string(e.PropertyID) }
func (e RuleUpdated) OccurredAt() time.Time { return e.At }

type RuleDeleted struct {
	PropertyID property.PropertyID
	RuleID     RuleID
	At         time.Time
}

func (e RuleDeleted) EventName() string     { return "stay.rule.deleted" }
func (e RuleDeleted) AggregateID() string   { return string(e.PropertyID) }
func (e RuleDeleted) OccurredAt() time.Time { return e.At }

type RuleToggled struct {
	PropertyID property.PropertyID
	RuleID     RuleID
	IsActive   bool
	At         time.Time
}

func (e RuleToggled) EventName() string     { return "stay.rule.toggled" }
func (e RuleToggled) AggregateID() string   { return string(e.PropertyID) }
func (e RuleToggled) OccurredAt() time.Time { return e.At }

type DynamicPricingChanged struct {
	PropertyID property.PropertyID
	Enabled    bool
	At         time.Time
}

func (e DynamicPricingChanged) EventName() string {
	if e.Enabled {
		return "stay.pricing.enabled"
	}
	return "stay.pricing.disabled"
}
func (e DynamicPricingChanged) AggregateID() string   { return string(e.PropertyID) }
func (e DynamicPricingChanged) OccurredAt() time.Time { return e.At }
