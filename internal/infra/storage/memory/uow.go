package memory

import (
	"context"
	"errors"

	"stayengine/internal/app/uow"
	domainavailability "stayengine/internal/domain/availability"
	domainpricing "stayengine/internal/domain/pricing"
	domainproperty "stayengine/internal/domain/property"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertiesRepo domainproperty.Repository
	SlotsRepo      domainavailability.Repository
	RulesRepo      domainpricing.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.SlotsRepo == nil || f.RulesRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		properties: f.PropertiesRepo,
		slots:      f.SlotsRepo,
		rules:      f.RulesRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores. Commit and
// Rollback are no-ops: writes land immediately, which is what gives the bulk
// slot operation its documented keep-what-succeeded behavior in this backend.
type Unit struct {
	properties domainproperty.Repository
	slots      domainavailability.Repository
	rules      domainpricing.Repository
}

func (u *Unit) Properties() domainproperty.Repository { return u.properties }
func (u *Unit) Slots() domainavailability.Repository  { return u.slots }
func (u *Unit) Rules() domainpricing.Repository       { return u.rules }
func (u *Unit) Commit(ctx context.Context) error      { return nil }
func (u *Unit) Rollback(ctx context.Context) error    { return nil }
