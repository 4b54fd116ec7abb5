package costs

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"stayengine/internal/app/dto"
	handlersupport "stayengine/internal/app/handlers/support"
	"stayengine/internal/app/queries"
	"stayengine/internal/app/uow"
	domainpricing "stayengine/internal/domain/pricing"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/domain/shared/daterange"
)

const calculateCostKey = "stay.costs.calculate"

type CalculateCostQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

func (q CalculateCostQuery) Key() string { return calculateCostKey }

func (q CalculateCostQuery) Validate() error {
	if strings.TrimSpace(q.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	return nil
}

type CalculateCostHandler struct {
	Logger     *slog.Logger
	UoWFactory uow.UoWFactory
}

// Handle computes the theoretical nightly cost breakdown for a stay. Pricing
// queries are public: no requester check, listing pages call this anonymously.
func (h *CalculateCostHandler) Handle(ctx context.Context, q CalculateCostQuery) (*dto.StayCost, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.PropertyID(q.PropertyID))
	if err != nil {
		return nil, err
	}
	if prop == nil || prop.Deleted() {
		return nil, apperr.NotFound("property not found")
	}

	dr, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, apperr.BadRequest("check-out must be after check-in")
	}

	rules, err := unit.Rules().ActiveForProperty(execCtx, prop.ID)
	if err != nil {
		return nil, err
	}
	slots, err := unit.Slots().Available(execCtx, prop.ID)
	if err != nil {
		return nil, err
	}

	quote := domainpricing.Calculate(prop, rules, slots, dr)
	if h.Logger != nil {
		h.Logger.Debug("stay cost calculated", "property_id", q.PropertyID, "nights", quote.Nights, "subtotal", quote.Subtotal)
	}
	result := dto.MapStayCost(q.PropertyID, quote)
	return &result, nil
}

var _ queries.Handler[CalculateCostQuery, *dto.StayCost] = (*CalculateCostHandler)(nil)
