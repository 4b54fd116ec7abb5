package property

import (
	"context"

	"github.com/shopspring/decimal"

	"stayengine/internal/domain/shared/apperr"
)

type PropertyID string

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusPaused  Status = "PAUSED"
	StatusDraft   Status = "DRAFT"
	StatusDeleted Status = "DELETED"
)

// Property is the read model of the marketplace's property aggregate. It is
// owned and mutated elsewhere; this engine only reads it and toggles
// DynamicPricingEnabled through the repository port.
type Property struct {
	ID                    PropertyID
	OwnerID               string
	Status                Status
	BasePrice             decimal.Decimal
	Currency              string
	DynamicPricingEnabled bool
}

func (p *Property) Deleted() bool {
	return p.Status == StatusDeleted
}

// Repository is the port to the external property collaborator.
type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	SetDynamicPricing(ctx context.Context, id PropertyID, enabled bool) error
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Requester is the already-authenticated identity supplied by the calling layer.
type Requester struct {
	ID   string
	Role Role
}

// Authorize checks that the requester may manage the property and that the
// property is still live. Order matters: ownership first, then soft-delete.
func Authorize(p *Property, req Requester) error {
	if req.Role != RoleAdmin && req.ID != p.OwnerID {
		return apperr.Forbidden("you do not have permission to manage this property")
	}
	if p.Deleted() {
		return apperr.BadRequest("property has been deleted")
	}
	return nil
}
