package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainavailability "stayengine/internal/domain/availability"
	domainpricing "stayengine/internal/domain/pricing"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/domain/shared/daterange"
	"stayengine/internal/domain/shared/events"
)

// PropertyRepository is an in-memory stand-in for the external property
// collaborator, used in dev and tests.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.PropertyID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prop, ok := r.items[id]
	if !ok {
		return nil, apperr.NotFound("property not found")
	}
	clone := *prop
	return &clone, nil
}

func (r *PropertyRepository) SetDynamicPricing(ctx context.Context, id domainproperty.PropertyID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prop, ok := r.items[id]
	if !ok {
		return apperr.NotFound("property not found")
	}
	prop.DynamicPricingEnabled = enabled
	return nil
}

// Seed stores a property, overwriting any previous entry.
func (r *PropertyRepository) Seed(prop *domainproperty.Property) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *prop
	r.items[prop.ID] = &clone
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)

// SlotRepository keeps availability slots in memory. The overlap query runs
// against the live map without any locking across a caller's read-then-write,
// reproducing the backing store's non-atomic check-then-insert semantics.
type SlotRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]map[domainavailability.SlotID]*domainavailability.Slot
}

func NewSlotRepository() *SlotRepository {
	return &SlotRepository{items: make(map[domainproperty.PropertyID]map[domainavailability.SlotID]*domainavailability.Slot)}
}

func (r *SlotRepository) ByID(ctx context.Context, propertyID domainproperty.PropertyID, id domainavailability.SlotID) (*domainavailability.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.items[propertyID][id]
	if !ok {
		return nil, apperr.NotFound("availability slot not found")
	}
	return cloneSlot(slot), nil
}

func (r *SlotRepository) Overlapping(ctx context.Context, propertyID domainproperty.PropertyID, dr daterange.DateRange) ([]*domainavailability.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainavailability.Slot
	for _, slot := range r.items[propertyID] {
		if slot.Range.OverlapsInclusive(dr) {
			out = append(out, cloneSlot(slot))
		}
	}
	return out, nil
}

func (r *SlotRepository) Intersecting(ctx context.Context, propertyID domainproperty.PropertyID, windowStart, windowEnd time.Time) ([]*domainavailability.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainavailability.Slot, 0)
	for _, slot := range r.items[propertyID] {
		if slot.Range.Intersects(windowStart, windowEnd) {
			out = append(out, cloneSlot(slot))
		}
	}
	sortSlots(out)
	return out, nil
}

func (r *SlotRepository) Available(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainavailability.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainavailability.Slot, 0)
	for _, slot := range r.items[propertyID] {
		if slot.IsAvailable {
			out = append(out, cloneSlot(slot))
		}
	}
	sortSlots(out)
	return out, nil
}

func (r *SlotRepository) Save(ctx context.Context, slot *domainavailability.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.items[slot.PropertyID]
	if !ok {
		byID = make(map[domainavailability.SlotID]*domainavailability.Slot)
		r.items[slot.PropertyID] = byID
	}
	byID[slot.ID] = cloneSlot(slot)
	return nil
}

func (r *SlotRepository) Delete(ctx context.Context, propertyID domainproperty.PropertyID, id domainavailability.SlotID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.items[propertyID]
	if !ok {
		return apperr.NotFound("availability slot not found")
	}
	if _, ok := byID[id]; !ok {
		return apperr.NotFound("availability slot not found")
	}
	delete(byID, id)
	return nil
}

func cloneSlot(slot *domainavailability.Slot) *domainavailability.Slot {
	clone := *slot
	clone.EventRecorder = events.EventRecorder{}
	if slot.PricePerNight != nil {
		price := *slot.PricePerNight
		clone.PricePerNight = &price
	}
	return &clone
}

func sortSlots(slots []*domainavailability.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Range.Start.Before(slots[j].Range.Start)
	})
}

var _ domainavailability.Repository = (*SlotRepository)(nil)

// RuleRepository keeps pricing rules in memory, listing them in resolution
// order: priority descending, then creation time ascending.
type RuleRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]map[domainpricing.RuleID]*domainpricing.Rule
}

func NewRuleRepository() *RuleRepository {
	return &RuleRepository{items: make(map[domainproperty.PropertyID]map[domainpricing.RuleID]*domainpricing.Rule)}
}

func (r *RuleRepository) ByID(ctx context.Context, propertyID domainproperty.PropertyID, id domainpricing.RuleID) (*domainpricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.items[propertyID][id]
	if !ok {
		return nil, apperr.NotFound("pricing rule not found")
	}
	return cloneRule(rule), nil
}

func (r *RuleRepository) ForProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainpricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainpricing.Rule, 0)
	for _, rule := range r.items[propertyID] {
		out = append(out, cloneRule(rule))
	}
	sortRules(out)
	return out, nil
}

func (r *RuleRepository) ActiveForProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainpricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainpricing.Rule, 0)
	for _, rule := range r.items[propertyID] {
		if rule.IsActive {
			out = append(out, cloneRule(rule))
		}
	}
	sortRules(out)
	return out, nil
}

func (r *RuleRepository) CountForProperty(ctx context.Context, propertyID domainproperty.PropertyID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items[propertyID]), nil
}

func (r *RuleRepository) Save(ctx context.Context, rule *domainpricing.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.items[rule.PropertyID]
	if !ok {
		byID = make(map[domainpricing.RuleID]*domainpricing.Rule)
		r.items[rule.PropertyID] = byID
	}
	byID[rule.ID] = cloneRule(rule)
	return nil
}

func (r *RuleRepository) Delete(ctx context.Context, propertyID domainproperty.PropertyID, id domainpricing.RuleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.items[propertyID]
	if !ok {
		return apperr.NotFound("pricing rule not found")
	}
	if _, ok := byID[id]; !ok {
		return apperr.NotFound("pricing rule not found")
	}
	delete(byID, id)
	return nil
}

func cloneRule(rule *domainpricing.Rule) *domainpricing.Rule {
	clone := *rule
	clone.EventRecorder = events.EventRecorder{}
	if rule.DayOfWeek != nil {
		day := *rule.DayOfWeek
		clone.DayOfWeek = &day
	}
	if rule.StartDate != nil {
		start := *rule.StartDate
		clone.StartDate = &start
	}
	if rule.EndDate != nil {
		end := *rule.EndDate
		clone.EndDate = &end
	}
	return &clone
}

func sortRules(rules []*domainpricing.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
}

var _ domainpricing.Repository = (*RuleRepository)(nil)
