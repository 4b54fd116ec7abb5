package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/domain/shared/daterange"
	"stayengine/internal/domain/shared/events"
)

type RuleID string

// Rule is a conditional nightly-price multiplier. A rule carries exactly one
// condition shape at creation time: a day of week (Sunday=0) or a date range.
// Partial updates can leave both populated in storage; resolution then tests
// the date range first.
type Rule struct {
	ID              RuleID
	PropertyID      property.PropertyID
	Name            string
	PriceMultiplier decimal.Decimal
	IsActive        bool
	Priority        int
	DayOfWeek       *int
	StartDate       *time.Time
	EndDate         *time.Time
	CreatedAt       time.Time
	events.EventRecorder
}

// ParseMultiplier validates the multiplier as a positive finite number.
func ParseMultiplier(raw string) (decimal.Decimal, error) {
	m, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, apperr.BadRequest("priceMultiplier must be a number")
	}
	if m.Sign() <= 0 {
		return decimal.Decimal{}, apperr.BadRequest("priceMultiplier must be greater than zero")
	}
	return m, nil
}

type CreateRuleParams struct {
	ID         RuleID
	PropertyID property.PropertyID
	Name       string
	Multiplier decimal.Decimal
	IsActive   *bool
	Priority   *int
	DayOfWeek  *int
	StartDate  *time.Time
	EndDate    *time.Time
	Now        time.Time
}

// NewRule enforces the condition-shape invariant: either a day of week or a
// complete date range, never a mix and never neither.
func NewRule(params CreateRuleParams) (*Rule, error) {
	hasDay := params.DayOfWeek != nil
	hasStart := params.StartDate != nil
	hasEnd := params.EndDate != nil

	switch {
	case hasDay && (hasStart || hasEnd):
		return nil, apperr.BadRequest("rule cannot combine dayOfWeek with a date range")
	case !hasDay && !hasStart && !hasEnd:
		return nil, apperr.BadRequest("rule requires either dayOfWeek or a date range")
	case !hasDay && hasStart != hasEnd:
		return nil, apperr.BadRequest("date-range rule requires both startDate and endDate")
	}

	rule := &Rule{
		ID:              params.ID,
		PropertyID:      params.PropertyID,
		Name:            params.Name,
		PriceMultiplier: params.Multiplier,
		IsActive:        true,
		CreatedAt:       params.Now.UTC(),
	}
	if params.IsActive != nil {
		rule.IsActive = *params.IsActive
	}
	if params.Priority != nil {
		rule.Priority = *params.Priority
	}
	if hasDay {
		if *params.DayOfWeek < 0 || *params.DayOfWeek > 6 {
			return nil, apperr.BadRequest("dayOfWeek must be between 0 (Sunday) and 6")
		}
		day := *params.DayOfWeek
		rule.DayOfWeek = &day
	} else {
		start := daterange.Day(*params.StartDate)
		end := daterange.Day(*params.EndDate)
		if !end.After(start) {
			return nil, apperr.BadRequest("endDate must be after startDate")
		}
		rule.StartDate = &start
		rule.EndDate = &end
	}
	rule.Record(RuleCreated{PropertyID: rule.PropertyID, RuleID: rule.ID, At: rule.CreatedAt})
	return rule, nil
}

// RulePatch is a partial field update; nil fields are untouched.
type RulePatch struct {
	Name       *string
	Multiplier *decimal.Decimal
	IsActive   *bool
	Priority   *int
	DayOfWeek  *int
	StartDate  *time.Time
	EndDate    *time.Time
}

// Apply patches the rule in place. The whole patch is validated before any
// field is assigned, so a rejected patch leaves the rule untouched. Date
// bounds supplied together are re-validated for ordering; a lone bound is
// applied as-is, which is how a rule can end up with both condition shapes
// populated.
func (r *Rule) Apply(patch RulePatch, now time.Time) error {
	var newStart, newEnd *time.Time
	if patch.StartDate != nil {
		start := daterange.Day(*patch.StartDate)
		newStart = &start
	}
	if patch.EndDate != nil {
		end := daterange.Day(*patch.EndDate)
		newEnd = &end
	}
	effStart, effEnd := r.StartDate, r.EndDate
	if newStart != nil {
		effStart = newStart
	}
	if newEnd != nil {
		effEnd = newEnd
	}
	if (newStart != nil || newEnd != nil) && effStart != nil && effEnd != nil && !effEnd.After(*effStart) {
		return apperr.BadRequest("endDate must be after startDate")
	}
	if patch.DayOfWeek != nil && (*patch.DayOfWeek < 0 || *patch.DayOfWeek > 6) {
		return apperr.BadRequest("dayOfWeek must be between 0 (Sunday) and 6")
	}
	if patch.Multiplier != nil && patch.Multiplier.Sign() <= 0 {
		return apperr.BadRequest("priceMultiplier must be greater than zero")
	}

	if newStart != nil {
		r.StartDate = newStart
	}
	if newEnd != nil {
		r.EndDate = newEnd
	}
	if patch.DayOfWeek != nil {
		day := *patch.DayOfWeek
		r.DayOfWeek = &day
	}
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.Multiplier != nil {
		r.PriceMultiplier = *patch.Multiplier
	}
	if patch.IsActive != nil {
		r.IsActive = *patch.IsActive
	}
	if patch.Priority != nil {
		r.Priority = *patch.Priority
	}
	r.Record(RuleUpdated{PropertyID: r.PropertyID, RuleID: r.ID, At: now.UTC()})
	return nil
}

func (r *Rule) Toggle(now time.Time) {
	r.IsActive = !r.IsActive
	r.Record(RuleToggled{PropertyID: r.PropertyID, RuleID: r.ID, IsActive: r.IsActive, At: now.UTC()})
}

// Matches reports whether the rule applies to the given date. The date-range
// condition is tested first (both bounds inclusive); only if it does not
// match is the day-of-week condition consulted.
func (r *Rule) Matches(date time.Time) bool {
	date = daterange.Day(date)
	if r.StartDate != nil && r.EndDate != nil {
		dr := daterange.DateRange{Start: *r.StartDate, End: *r.EndDate}
		if dr.ContainsDateInclusive(date) {
			return true
		}
	}
	if r.DayOfWeek != nil && *r.DayOfWeek == int(date.Weekday()) {
		return true
	}
	return false
}

// Repository is the persistence port for pricing rules. Listing methods
// return rules ordered by priority descending, then creation time ascending,
// so a single forward scan resolves ties the way the store sorts them.
type Repository interface {
	ByID(ctx context.Context, propertyID property.PropertyID, id RuleID) (*Rule, error)
	ForProperty(ctx context.Context, propertyID property.PropertyID) ([]*Rule, error)
	ActiveForProperty(ctx context.Context, propertyID property.PropertyID) ([]*Rule, error)
	CountForProperty(ctx context.Context, propertyID property.PropertyID) (int, error)
	Save(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, propertyID property.PropertyID, id RuleID) error
}
