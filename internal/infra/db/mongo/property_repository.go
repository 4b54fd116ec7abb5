package mongo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("properties")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("property not found")
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *PropertyRepository) SetDynamicPricing(ctx context.Context, id domainproperty.PropertyID, enabled bool) error {
	res, err := r.col.UpdateByID(ctx, string(id), bson.M{"$set": bson.M{"dynamic_pricing_enabled": enabled}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("property not found")
	}
	return nil
}

// Save exists for seeding and administrative tooling. Command handlers only
// ever mutate the dynamic pricing flag.
func (r *PropertyRepository) Save(ctx context.Context, prop *domainproperty.Property) error {
	doc := newPropertyDocument(prop)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type propertyDocument struct {
	ID                    string `bson:"_id"`
	OwnerID               string `bson:"owner_id"`
	Status                string `bson:"status"`
	BasePrice             string `bson:"base_price"`
	Currency              string `bson:"currency"`
	DynamicPricingEnabled bool   `bson:"dynamic_pricing_enabled"`
}

func newPropertyDocument(prop *domainproperty.Property) propertyDocument {
	return propertyDocument{
		ID:                    string(prop.ID),
		OwnerID:               prop.OwnerID,
		Status:                string(prop.Status),
		BasePrice:             prop.BasePrice.String(),
		Currency:              prop.Currency,
		DynamicPricingEnabled: prop.DynamicPricingEnabled,
	}
}

func (d propertyDocument) toDomain() (*domainproperty.Property, error) {
	price, err := decimal.NewFromString(d.BasePrice)
	if err != nil {
		return nil, err
	}
	return &domainproperty.Property{
		ID:                    domainproperty.PropertyID(d.ID),
		OwnerID:               d.OwnerID,
		Status:                domainproperty.Status(d.Status),
		BasePrice:             price,
		Currency:              d.Currency,
		DynamicPricingEnabled: d.DynamicPricingEnabled,
	}, nil
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)
