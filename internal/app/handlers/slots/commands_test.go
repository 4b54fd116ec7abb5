package slots

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayengine/internal/app/commands"
	"stayengine/internal/app/dto"
	"stayengine/internal/app/middleware"
	appoutbox "stayengine/internal/app/outbox"
	"stayengine/internal/app/queries"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/infra/storage/memory"
)

type fixture struct {
	props  *memory.PropertyRepository
	outbox *memory.Outbox
	bus    commands.Bus
	qbus   queries.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	props := memory.NewPropertyRepository()
	slotsRepo := memory.NewSlotRepository()
	rulesRepo := memory.NewRuleRepository()
	outboxStore := memory.NewOutbox()
	factory := memory.Factory{PropertiesRepo: props, SlotsRepo: slotsRepo, RulesRepo: rulesRepo}
	encoder := appoutbox.JSONEventEncoder{}

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, CreateSlotCommand{}.Key(), &CreateSlotHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(bus, CreateBulkSlotsCommand{}.Key(), &CreateBulkSlotsHandler{UoWFactory: factory, Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(bus, UpdateSlotCommand{}.Key(), &UpdateSlotHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(bus, DeleteSlotCommand{}.Key(), &DeleteSlotHandler{Outbox: outboxStore, Encoder: encoder})

	qbus := queries.NewInMemoryBus()
	queries.RegisterHandler(qbus, ListSlotsQuery{}.Key(), &ListSlotsHandler{UoWFactory: factory})

	// OutboxFlush is left out so buffered events stay inspectable.
	chained := middleware.ChainCommands(
		bus,
		middleware.Validation(),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
	)
	return &fixture{
		props:  props,
		outbox: outboxStore,
		bus:    chained,
		qbus:   middleware.ChainQueries(qbus, middleware.QueryValidation()),
	}
}

func (f *fixture) seedProperty(id, owner string, status domainproperty.Status) {
	f.props.Seed(&domainproperty.Property{
		ID:        domainproperty.PropertyID(id),
		OwnerID:   owner,
		Status:    status,
		BasePrice: decimal.RequireFromString("100"),
		Currency:  "EUR",
	})
}

func (f *fixture) listSlots(t *testing.T, propertyID string) []dto.Slot {
	t.Helper()
	result, err := queries.Ask[ListSlotsQuery, []dto.Slot](context.Background(), f.qbus, ListSlotsQuery{PropertyID: propertyID})
	require.NoError(t, err)
	return result
}

func owner() domainproperty.Requester {
	return domainproperty.Requester{ID: "owner-1", Role: domainproperty.RoleUser}
}

func payload(startDay, endDay int) SlotPayload {
	return SlotPayload{
		StartDate: time.Date(2026, 9, startDay, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, endDay, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateSlot(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)

	result, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p1",
		Requester:  owner(),
		Payload:    payload(1, 10),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.True(t, result.IsAvailable)

	events := f.outbox.Pending()
	require.Len(t, events, 1)
	assert.Equal(t, "stay.slot.created", events[0].Name)
}

func TestCreateSlotAuthorization(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)
	f.seedProperty("p2", "owner-1", domainproperty.StatusDeleted)

	_, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p1",
		Requester:  domainproperty.Requester{ID: "stranger", Role: domainproperty.RoleUser},
		Payload:    payload(1, 10),
	})
	assert.True(t, apperr.IsForbidden(err))

	// Admins bypass ownership but not the soft-delete check.
	_, err = commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p2",
		Requester:  domainproperty.Requester{ID: "admin", Role: domainproperty.RoleAdmin},
		Payload:    payload(1, 10),
	})
	assert.True(t, apperr.IsBadRequest(err))

	_, err = commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "missing",
		Requester:  owner(),
		Payload:    payload(1, 10),
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateSlotRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)

	_, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p1", Requester: owner(), Payload: payload(10, 15),
	})
	require.NoError(t, err)

	cases := map[string]SlotPayload{
		"contained":           payload(11, 14),
		"spanning":            payload(5, 20),
		"touching at end":     payload(15, 20),
		"touching at start":   payload(5, 10),
		"identical":           payload(10, 15),
		"one day inside edge": payload(14, 18),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
				PropertyID: "p1", Requester: owner(), Payload: p,
			})
			assert.True(t, apperr.IsBadRequest(err))
		})
	}

	// Strictly disjoint interval is accepted.
	_, err = commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p1", Requester: owner(), Payload: payload(16, 20),
	})
	require.NoError(t, err)
}

func TestCreateSlotIdempotencyReplay(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)

	cmd := CreateSlotCommand{PropertyID: "p1", Requester: owner(), Payload: payload(1, 5), IdemKey: "key-1"}
	first, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, cmd)
	require.NoError(t, err)

	replay, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)
	assert.Len(t, f.listSlots(t, "p1"), 1, "replay must not create a second slot")
}

func TestCreateSlotIdempotencyReplaysRejection(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)

	_, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p1", Requester: owner(), Payload: payload(1, 5),
	})
	require.NoError(t, err)

	overlapping := CreateSlotCommand{PropertyID: "p1", Requester: owner(), Payload: payload(2, 4), IdemKey: "key-2"}
	_, err = commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, overlapping)
	require.True(t, apperr.IsBadRequest(err))

	_, err = commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, overlapping)
	assert.True(t, apperr.IsBadRequest(err), "replayed rejection keeps its kind")
}

func TestCreateBulkSlotsKeepsEarlierOnFailure(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)

	_, err := commands.Dispatch[CreateBulkSlotsCommand, []dto.Slot](context.Background(), f.bus, CreateBulkSlotsCommand{
		PropertyID: "p1",
		Requester:  owner(),
		Slots: []SlotPayload{
			payload(1, 5),
			payload(3, 8), // overlaps the first
			payload(20, 25),
		},
	})
	require.True(t, apperr.IsBadRequest(err))

	persisted := f.listSlots(t, "p1")
	require.Len(t, persisted, 1, "slots created before the failure stay persisted, later ones never run")
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), persisted[0].StartDate)
}

func TestCreateBulkSlotsAll(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)

	result, err := commands.Dispatch[CreateBulkSlotsCommand, []dto.Slot](context.Background(), f.bus, CreateBulkSlotsCommand{
		PropertyID: "p1",
		Requester:  owner(),
		Slots:      []SlotPayload{payload(1, 5), payload(6, 10), payload(11, 15)},
	})
	require.NoError(t, err)
	assert.Len(t, result, 3)
	assert.Len(t, f.listSlots(t, "p1"), 3)
}

func TestUpdateSlotDoesNotRecheckOverlap(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)

	first, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p1", Requester: owner(), Payload: payload(1, 5),
	})
	require.NoError(t, err)
	_, err = commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p1", Requester: owner(), Payload: payload(10, 15),
	})
	require.NoError(t, err)

	newEnd := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	updated, err := commands.Dispatch[UpdateSlotCommand, *dto.Slot](context.Background(), f.bus, UpdateSlotCommand{
		PropertyID: "p1",
		SlotID:     first.ID,
		Requester:  owner(),
		Patch:      SlotPatchPayload{EndDate: &newEnd},
	})
	require.NoError(t, err, "moving a slot into overlap is currently allowed")
	assert.Equal(t, newEnd, updated.EndDate)
}

func TestUpdateSlotPatchFields(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)

	price := decimal.RequireFromString("120")
	created, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p1", Requester: owner(),
		Payload: SlotPayload{
			StartDate:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:       time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			PricePerNight: &price,
			Notes:         "summer",
		},
	})
	require.NoError(t, err)

	unavailable := false
	updated, err := commands.Dispatch[UpdateSlotCommand, *dto.Slot](context.Background(), f.bus, UpdateSlotCommand{
		PropertyID: "p1",
		SlotID:     created.ID,
		Requester:  owner(),
		Patch:      SlotPatchPayload{IsAvailable: &unavailable, ClearPrice: true},
	})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)
	assert.Nil(t, updated.PricePerNight)
	assert.Equal(t, "summer", updated.Notes, "unpatched fields survive")
}

func TestDeleteSlot(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)

	created, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
		PropertyID: "p1", Requester: owner(), Payload: payload(1, 5),
	})
	require.NoError(t, err)

	_, err = commands.Dispatch[DeleteSlotCommand, struct{}](context.Background(), f.bus, DeleteSlotCommand{
		PropertyID: "p1", SlotID: created.ID, Requester: owner(),
	})
	require.NoError(t, err)
	assert.Empty(t, f.listSlots(t, "p1"))

	_, err = commands.Dispatch[DeleteSlotCommand, struct{}](context.Background(), f.bus, DeleteSlotCommand{
		PropertyID: "p1", SlotID: created.ID, Requester: owner(),
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestListSlotsWindow(t *testing.T) {
	f := newFixture(t)
	f.seedProperty("p1", "owner-1", domainproperty.StatusActive)
	f.seedProperty("p2", "owner-1", domainproperty.StatusDeleted)

	for _, p := range []SlotPayload{payload(10, 15), payload(1, 5), payload(20, 25)} {
		_, err := commands.Dispatch[CreateSlotCommand, *dto.Slot](context.Background(), f.bus, CreateSlotCommand{
			PropertyID: "p1", Requester: owner(), Payload: p,
		})
		require.NoError(t, err)
	}

	all := f.listSlots(t, "p1")
	require.Len(t, all, 3)
	assert.True(t, all[0].StartDate.Before(all[1].StartDate), "ordered by start date ascending")
	assert.True(t, all[1].StartDate.Before(all[2].StartDate))

	windowed, err := queries.Ask[ListSlotsQuery, []dto.Slot](context.Background(), f.qbus, ListSlotsQuery{
		PropertyID: "p1",
		StartDate:  time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 22, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, windowed, 2)

	_, err = queries.Ask[ListSlotsQuery, []dto.Slot](context.Background(), f.qbus, ListSlotsQuery{PropertyID: "p2"})
	assert.True(t, apperr.IsBadRequest(err), "listing on a deleted property is refused")
}
