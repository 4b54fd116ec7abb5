package slots

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"stayengine/internal/app/dto"
	handlersupport "stayengine/internal/app/handlers/support"
	"stayengine/internal/app/queries"
	"stayengine/internal/app/uow"
	"stayengine/internal/domain/shared/apperr"
)

const listSlotsKey = "stay.slots.list"

type ListSlotsQuery struct {
	PropertyID string
	StartDate  time.Time
	EndDate    time.Time
}

func (q ListSlotsQuery) Key() string { return listSlotsKey }

func (q ListSlotsQuery) Validate() error {
	if strings.TrimSpace(q.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	return nil
}

type ListSlotsHandler struct {
	Logger     *slog.Logger
	UoWFactory uow.UoWFactory
}

// Handle returns the property's slots intersecting the optional query window,
// ordered by start date ascending.
func (h *ListSlotsHandler) Handle(ctx context.Context, q ListSlotsQuery) ([]dto.Slot, error) {
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
	if prop.Deleted() {
		return nil, apperr.BadRequest("property has been deleted")
	}

	slots, err := unit.Slots().Intersecting(execCtx, prop.ID, q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	return dto.MapSlots(slots), nil
}

var _ queries.Handler[ListSlotsQuery, []dto.Slot] = (*ListSlotsHandler)(nil)
