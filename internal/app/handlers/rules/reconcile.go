package rules

import (
	"context"
	"time"

	"stayengine/internal/app/uow"
	domainpricing "stayengine/internal/domain/pricing"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/domain/shared/events"
)

// ReconcileDynamicPricing recomputes the property's derived
// dynamicPricingEnabled flag from the current rule count. Invoked after every
// rule-count-changing mutation so the invariant lives in one auditable place:
// the flag is on exactly when the property has at least one rule.
func ReconcileDynamicPricing(ctx context.Context, unit uow.UnitOfWork, prop *domainproperty.Property, now time.Time) ([]events.DomainEvent, error) {
	count, err := unit.Rules().CountForProperty(ctx, prop.ID)
	if err != nil {
		return nil, err
	}
	enabled := count > 0
	if enabled == prop.DynamicPricingEnabled {
		return nil, nil
	}
	if err := unit.Properties().SetDynamicPricing(ctx, prop.ID, enabled); err != nil {
		return nil, err
	}
	prop.DynamicPricingEnabled = enabled
	return []events.DomainEvent{
		domainpricing.DynamicPricingChanged{PropertyID: prop.ID, Enabled: enabled, At: now.UTC()},
	}, nil
}

func loadProperty(ctx context.Context, unit uow.UnitOfWork, id string) (*domainproperty.Property, error) {
	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(id))
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, apperr.NotFound("property not found")
	}
	return prop, nil
}

func loadRule(ctx context.Context, unit uow.UnitOfWork, propertyID domainproperty.PropertyID, id string) (*domainpricing.Rule, error) {
	rule, err := unit.Rules().ByID(ctx, propertyID, domainpricing.RuleID(id))
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, apperr.NotFound("pricing rule not found")
	}
	return rule, nil
}
