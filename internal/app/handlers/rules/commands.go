package rules

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayengine/internal/app/commands"
	"stayengine/internal/app/dto"
	"stayengine/internal/app/outbox"
	"stayengine/internal/app/uow"
	domainpricing "stayengine/internal/domain/pricing"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/domain/shared/events"
)

const (
	createRuleKey = "stay.rules.create"
	updateRuleKey = "stay.rules.update"
	deleteRuleKey = "stay.rules.delete"
	toggleRuleKey = "stay.rules.toggle"
)

// RulePayload carries the rule fields accepted at creation. The multiplier
// arrives raw so the engine owns its numeric validation.
type RulePayload struct {
	Name            string
	PriceMultiplier string
	IsActive        *bool
	Priority        *int
	DayOfWeek       *int
	StartDate       *time.Time
	EndDate         *time.Time
}

type CreateRuleCommand struct {
	PropertyID string
	Requester  domainproperty.Requester
	Payload    RulePayload
	IdemKey    string
}

func (c CreateRuleCommand) Key() string { return createRuleKey }

func (c CreateRuleCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	if strings.TrimSpace(c.Payload.Name) == "" {
		return apperr.BadRequest("rule name is required")
	}
	return nil
}

func (c CreateRuleCommand) IdempotencyKey() string { return c.IdemKey }
func (c CreateRuleCommand) ResultPrototype() any   { return &dto.PricingRule{} }

type CreateRuleHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *CreateRuleHandler) Handle(ctx context.Context, cmd CreateRuleCommand) (*dto.PricingRule, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	prop, err := loadProperty(ctx, unit, cmd.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := domainproperty.Authorize(prop, cmd.Requester); err != nil {
		return nil, err
	}

	multiplier, err := domainpricing.ParseMultiplier(cmd.Payload.PriceMultiplier)
	if err != nil {
		return nil, err
	}
	rule, err := domainpricing.NewRule(domainpricing.CreateRuleParams{
		ID:         domainpricing.RuleID(uuid.NewString()),
		PropertyID: prop.ID,
		Name:       cmd.Payload.Name,
		Multiplier: multiplier,
		IsActive:   cmd.Payload.IsActive,
		Priority:   cmd.Payload.Priority,
		DayOfWeek:  cmd.Payload.DayOfWeek,
		StartDate:  cmd.Payload.StartDate,
		EndDate:    cmd.Payload.EndDate,
		Now:        time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Rules().Save(ctx, rule); err != nil {
		return nil, err
	}

	flagEvents, err := ReconcileDynamicPricing(ctx, unit, prop, time.Now())
	if err != nil {
		return nil, err
	}
	evs := append(rule.PendingEvents(), flagEvents...)
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}
	rule.ClearEvents()

	if h.Logger != nil {
		h.Logger.Info("pricing rule created", "property_id", cmd.PropertyID, "rule_id", rule.ID, "priority", rule.Priority)
	}
	result := dto.MapRule(rule)
	return &result, nil
}

type RulePatchPayload struct {
	Name            *string
	PriceMultiplier *string
	IsActive        *bool
	Priority        *int
	DayOfWeek       *int
	StartDate       *time.Time
	EndDate         *time.Time
}

type UpdateRuleCommand struct {
	PropertyID string
	RuleID     string
	Requester  domainproperty.Requester
	Patch      RulePatchPayload
}

func (c UpdateRuleCommand) Key() string { return updateRuleKey }

func (c UpdateRuleCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	if strings.TrimSpace(c.RuleID) == "" {
		return apperr.BadRequest("rule id is required")
	}
	return nil
}

type UpdateRuleHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *UpdateRuleHandler) Handle(ctx context.Context, cmd UpdateRuleCommand) (*dto.PricingRule, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	prop, err := loadProperty(ctx, unit, cmd.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := domainproperty.Authorize(prop, cmd.Requester); err != nil {
		return nil, err
	}
	rule, err := loadRule(ctx, unit, prop.ID, cmd.RuleID)
	if err != nil {
		return nil, err
	}

	patch := domainpricing.RulePatch{
		Name:      cmd.Patch.Name,
		IsActive:  cmd.Patch.IsActive,
		Priority:  cmd.Patch.Priority,
		DayOfWeek: cmd.Patch.DayOfWeek,
		StartDate: cmd.Patch.StartDate,
		EndDate:   cmd.Patch.EndDate,
	}
	if cmd.Patch.PriceMultiplier != nil {
		multiplier, err := domainpricing.ParseMultiplier(*cmd.Patch.PriceMultiplier)
		if err != nil {
			return nil, err
		}
		patch.Multiplier = &multiplier
	}
	if err := rule.Apply(patch, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Rules().Save(ctx, rule); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, rule.PendingEvents()); err != nil {
		return nil, err
	}
	rule.ClearEvents()

	if h.Logger != nil {
		h.Logger.Info("pricing rule updated", "property_id", cmd.PropertyID, "rule_id", cmd.RuleID)
	}
	result := dto.MapRule(rule)
	return &result, nil
}

type DeleteRuleCommand struct {
	PropertyID string
	RuleID     string
	Requester  domainproperty.Requester
}

func (c DeleteRuleCommand) Key() string { return deleteRuleKey }

func (c DeleteRuleCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	if strings.TrimSpace(c.RuleID) == "" {
		return apperr.BadRequest("rule id is required")
	}
	return nil
}

type DeleteRuleHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *DeleteRuleHandler) Handle(ctx context.Context, cmd DeleteRuleCommand) (struct{}, error) {
	var zero struct{}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return zero, uow.ErrUnitOfWorkMissing
	}
	prop, err := loadProperty(ctx, unit, cmd.PropertyID)
	if err != nil {
		return zero, err
	}
	if err := domainproperty.Authorize(prop, cmd.Requester); err != nil {
		return zero, err
	}
	rule, err := loadRule(ctx, unit, prop.ID, cmd.RuleID)
	if err != nil {
		return zero, err
	}
	if err := unit.Rules().Delete(ctx, prop.ID, rule.ID); err != nil {
		return zero, err
	}

	now := time.Now()
	flagEvents, err := ReconcileDynamicPricing(ctx, unit, prop, now)
	if err != nil {
		return zero, err
	}
	deleted := domainpricing.RuleDeleted{PropertyID: prop.ID, RuleID: rule.ID, At: now.UTC()}
	evs := append([]events.DomainEvent{deleted}, flagEvents...)
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return zero, err
	}

	if h.Logger != nil {
		h.Logger.Info("pricing rule deleted", "property_id", cmd.PropertyID, "rule_id", cmd.RuleID)
	}
	return zero, nil
}

type ToggleRuleCommand struct {
	PropertyID string
	RuleID     string
	Requester  domainproperty.Requester
}

func (c ToggleRuleCommand) Key() string { return toggleRuleKey }

func (c ToggleRuleCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	if strings.TrimSpace(c.RuleID) == "" {
		return apperr.BadRequest("rule id is required")
	}
	return nil
}

type ToggleRuleHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

// Handle flips the rule's active flag. Toggling does not touch the property's
// dynamic-pricing flag: only the rule count does, per the reconciliation step.
func (h *ToggleRuleHandler) Handle(ctx context.Context, cmd ToggleRuleCommand) (*dto.PricingRule, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	prop, err := loadProperty(ctx, unit, cmd.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := domainproperty.Authorize(prop, cmd.Requester); err != nil {
		return nil, err
	}
	rule, err := loadRule(ctx, unit, prop.ID, cmd.RuleID)
	if err != nil {
		return nil, err
	}

	rule.Toggle(time.Now())
	if err := unit.Rules().Save(ctx, rule); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, rule.PendingEvents()); err != nil {
		return nil, err
	}
	rule.ClearEvents()

	if h.Logger != nil {
		h.Logger.Info("pricing rule toggled", "property_id", cmd.PropertyID, "rule_id", cmd.RuleID, "is_active", rule.IsActive)
	}
	result := dto.MapRule(rule)
	return &result, nil
}

var (
	_ commands.Handler[CreateRuleCommand, *dto.PricingRule] = (*CreateRuleHandler)(nil)
	_ commands.Handler[UpdateRuleCommand, *dto.PricingRule] = (*UpdateRuleHandler)(nil)
	_ commands.Handler[DeleteRuleCommand, struct{}]         = (*DeleteRuleHandler)(nil)
	_ commands.Handler[ToggleRuleCommand, *dto.PricingRule] = (*ToggleRuleHandler)(nil)
)
