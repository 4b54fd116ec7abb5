package uow

import (
	"context"

	domainavailability "stayengine/internal/domain/availability"
	domainpricing "stayengine/internal/domain/pricing"
	domainproperty "stayengine/internal/domain/property"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Properties() domainproperty.Repository
	Slots() domainavailability.Repository
	Rules() domainpricing.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
