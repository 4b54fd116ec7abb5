package rules

import (
	"context"
	"log/slog"
	"strings"

	"stayengine/internal/app/dto"
	handlersupport "stayengine/internal/app/handlers/support"
	"stayengine/internal/app/queries"
	"stayengine/internal/app/uow"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
)

const (
	listRulesKey = "stay.rules.list"
	getRuleKey   = "stay.rules.get"
)

type ListRulesQuery struct {
	PropertyID string
	Requester  domainproperty.Requester
}

func (q ListRulesQuery) Key() string { return listRulesKey }

func (q ListRulesQuery) Validate() error {
	if strings.TrimSpace(q.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	return nil
}

type ListRulesHandler struct {
	Logger     *slog.Logger
	UoWFactory uow.UoWFactory
}

// Handle returns the property's rules ordered by priority descending then
// creation time ascending, the same order the calculator scans them in.
func (h *ListRulesHandler) Handle(ctx context.Context, q ListRulesQuery) ([]dto.PricingRule, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := loadProperty(execCtx, unit, q.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(prop, q.Requester); err != nil {
		return nil, err
	}

	rules, err := unit.Rules().ForProperty(execCtx, prop.ID)
	if err != nil {
		return nil, err
	}
	return dto.MapRules(rules), nil
}

type GetRuleQuery struct {
	PropertyID string
	RuleID     string
	Requester  domainproperty.Requester
}

func (q GetRuleQuery) Key() string { return getRuleKey }

func (q GetRuleQuery) Validate() error {
	if strings.TrimSpace(q.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	if strings.TrimSpace(q.RuleID) == "" {
		return apperr.BadRequest("rule id is required")
	}
	return nil
}

type GetRuleHandler struct {
	Logger     *slog.Logger
	UoWFactory uow.UoWFactory
}

func (h *GetRuleHandler) Handle(ctx context.Context, q GetRuleQuery) (*dto.PricingRule, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := loadProperty(execCtx, unit, q.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(prop, q.Requester); err != nil {
		return nil, err
	}

	rule, err := loadRule(execCtx, unit, prop.ID, q.RuleID)
	if err != nil {
		return nil, err
	}
	result := dto.MapRule(rule)
	return &result, nil
}

// authorizeRead gates rule reads to the owner or an admin. Unlike mutations,
// reads are allowed against soft-deleted properties.
func authorizeRead(prop *domainproperty.Property, req domainproperty.Requester) error {
	if req.Role != domainproperty.RoleAdmin && req.ID != prop.OwnerID {
		return apperr.Forbidden("you do not have permission to view pricing rules for this property")
	}
	return nil
}

var (
	_ queries.Handler[ListRulesQuery, []dto.PricingRule] = (*ListRulesHandler)(nil)
	_ queries.Handler[GetRuleQuery, *dto.PricingRule]    = (*GetRuleHandler)(nil)
)
