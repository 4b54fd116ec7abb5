package slots

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stayengine/internal/app/dto"
	"stayengine/internal/app/outbox"
	"stayengine/internal/app/uow"
	domainavailability "stayengine/internal/domain/availability"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/domain/shared/events"
)

const (
	createSlotKey      = "stay.slots.create"
	createBulkSlotsKey = "stay.slots.create_bulk"
	updateSlotKey      = "stay.slots.update"
	deleteSlotKey      = "stay.slots.delete"
)

// SlotPayload carries the slot fields accepted at creation.
type SlotPayload struct {
	StartDate     time.Time
	EndDate       time.Time
	IsAvailable   *bool
	PricePerNight *decimal.Decimal
	Notes         string
}

type CreateSlotCommand struct {
	PropertyID string
	Requester  domainproperty.Requester
	Payload    SlotPayload
	IdemKey    string
}

func (c CreateSlotCommand) Key() string { return createSlotKey }

func (c CreateSlotCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	return nil
}

func (c CreateSlotCommand) IdempotencyKey() string { return c.IdemKey }
func (c CreateSlotCommand) ResultPrototype() any   { return &dto.Slot{} }

type CreateSlotHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *CreateSlotHandler) Handle(ctx context.Context, cmd CreateSlotCommand) (*dto.Slot, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	slot, err := createSlotInUnit(ctx, unit, cmd.PropertyID, cmd.Payload, cmd.Requester)
	if err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, slot.PendingEvents()); err != nil {
		return nil, err
	}
	slot.ClearEvents()
	if h.Logger != nil {
		h.Logger.Info("availability slot created", "property_id", cmd.PropertyID, "slot_id", slot.ID)
	}
	result := dto.MapSlot(slot)
	return &result, nil
}

// createSlotInUnit runs the full create path inside the provided unit:
// authorization, interval ordering, inclusive-bounds overlap rejection,
// persistence. Shared by the single and bulk create handlers.
func createSlotInUnit(ctx context.Context, unit uow.UnitOfWork, propertyID string, payload SlotPayload, requester domainproperty.Requester) (*domainavailability.Slot, error) {
	prop, err := loadProperty(ctx, unit, propertyID)
	if err != nil {
		return nil, err
	}
	if err := domainproperty.Authorize(prop, requester); err != nil {
		return nil, err
	}

	slot, err := domainavailability.NewSlot(domainavailability.CreateSlotParams{
		ID:            domainavailability.SlotID(uuid.NewString()),
		PropertyID:    prop.ID,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		IsAvailable:   payload.IsAvailable,
		PricePerNight: payload.PricePerNight,
		Notes:         payload.Notes,
		Now:           time.Now(),
	})
	if err != nil {
		return nil, err
	}

	// Check-then-insert: not atomic against the backing store. Two concurrent
	// creates can both pass this read before either write lands.
	existing, err := unit.Slots().Overlapping(ctx, prop.ID, slot.Range)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperr.BadRequest("slot overlaps with an existing slot")
	}

	if err := unit.Slots().Save(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

type CreateBulkSlotsCommand struct {
	PropertyID string
	Requester  domainproperty.Requester
	Slots      []SlotPayload
}

func (c CreateBulkSlotsCommand) Key() string { return createBulkSlotsKey }

// SelfManagedTransaction: each slot commits in its own unit so a mid-batch
// failure leaves earlier slots persisted.
func (c CreateBulkSlotsCommand) SelfManagedTransaction() {}

func (c CreateBulkSlotsCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	if len(c.Slots) == 0 {
		return apperr.BadRequest("at least one slot is required")
	}
	return nil
}

type CreateBulkSlotsHandler struct {
	Logger     *slog.Logger
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateBulkSlotsHandler) Handle(ctx context.Context, cmd CreateBulkSlotsCommand) ([]dto.Slot, error) {
	created := make([]dto.Slot, 0, len(cmd.Slots))
	for _, payload := range cmd.Slots {
		slot, err := h.createOne(ctx, cmd.PropertyID, payload, cmd.Requester)
		if err != nil {
			// Slots created before the failure stay persisted.
			return nil, err
		}
		created = append(created, dto.MapSlot(slot))
	}
	if h.Logger != nil {
		h.Logger.Info("availability slots bulk created", "property_id", cmd.PropertyID, "count", len(created))
	}
	return created, nil
}

func (h *CreateBulkSlotsHandler) createOne(ctx context.Context, propertyID string, payload SlotPayload, requester domainproperty.Requester) (*domainavailability.Slot, error) {
	if h.UoWFactory == nil {
		return nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)

	slot, err := createSlotInUnit(execCtx, unit, propertyID, payload, requester)
	if err != nil {
		_ = unit.Rollback(execCtx)
		return nil, err
	}
	if err := drainEvents(execCtx, h.Outbox, h.Encoder, slot.PendingEvents()); err != nil {
		_ = unit.Rollback(execCtx)
		return nil, err
	}
	slot.ClearEvents()
	if err := unit.Commit(execCtx); err != nil {
		return nil, err
	}
	return slot, nil
}

type SlotPatchPayload struct {
	StartDate     *time.Time
	EndDate       *time.Time
	IsAvailable   *bool
	PricePerNight *decimal.Decimal
	ClearPrice    bool
	Notes         *string
}

type UpdateSlotCommand struct {
	PropertyID string
	SlotID     string
	Requester  domainproperty.Requester
	Patch      SlotPatchPayload
}

func (c UpdateSlotCommand) Key() string { return updateSlotKey }

func (c UpdateSlotCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	if strings.TrimSpace(c.SlotID) == "" {
		return apperr.BadRequest("slot id is required")
	}
	return nil
}

type UpdateSlotHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

// Handle applies a partial patch. Interval overlap against sibling slots is
// not re-checked here; an update can silently move a slot into overlap.
func (h *UpdateSlotHandler) Handle(ctx context.Context, cmd UpdateSlotCommand) (*dto.Slot, error) {
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
	slot, err := loadSlot(ctx, unit, prop.ID, cmd.SlotID)
	if err != nil {
		return nil, err
	}

	slot.Apply(domainavailability.SlotPatch{
		StartDate:     cmd.Patch.StartDate,
		EndDate:       cmd.Patch.EndDate,
		IsAvailable:   cmd.Patch.IsAvailable,
		PricePerNight: cmd.Patch.PricePerNight,
		ClearPrice:    cmd.Patch.ClearPrice,
		Notes:         cmd.Patch.Notes,
	}, time.Now())

	if err := unit.Slots().Save(ctx, slot); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, slot.PendingEvents()); err != nil {
		return nil, err
	}
	slot.ClearEvents()
	if h.Logger != nil {
		h.Logger.Info("availability slot updated", "property_id", cmd.PropertyID, "slot_id", cmd.SlotID)
	}
	result := dto.MapSlot(slot)
	return &result, nil
}

type DeleteSlotCommand struct {
	PropertyID string
	SlotID     string
	Requester  domainproperty.Requester
}

func (c DeleteSlotCommand) Key() string { return deleteSlotKey }

func (c DeleteSlotCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return apperr.BadRequest("property id is required")
	}
	if strings.TrimSpace(c.SlotID) == "" {
		return apperr.BadRequest("slot id is required")
	}
	return nil
}

type DeleteSlotHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *DeleteSlotHandler) Handle(ctx context.Context, cmd DeleteSlotCommand) (struct{}, error) {
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
	slot, err := loadSlot(ctx, unit, prop.ID, cmd.SlotID)
	if err != nil {
		return zero, err
	}
	if err := unit.Slots().Delete(ctx, prop.ID, slot.ID); err != nil {
		return zero, err
	}
	deleted := domainavailability.SlotDeleted{PropertyID: prop.ID, SlotID: slot.ID, At: time.Now().UTC()}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{deleted}); err != nil {
		return zero, err
	}
	if h.Logger != nil {
		h.Logger.Info("availability slot deleted", "property_id", cmd.PropertyID, "slot_id", cmd.SlotID)
	}
	return zero, nil
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

func loadSlot(ctx context.Context, unit uow.UnitOfWork, propertyID domainproperty.PropertyID, id string) (*domainavailability.Slot, error) {
	slot, err := unit.Slots().ByID(ctx, propertyID, domainavailability.SlotID(id))
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, apperr.NotFound("availability slot not found")
	}
	return slot, nil
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, evs []events.DomainEvent) error {
	return outbox.RecordDomainEvents(ctx, box, encoder, evs)
}
