package mongo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "stayengine/internal/domain/pricing"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
)

type RuleRepository struct {
	col *mongo.Collection
}

func NewRuleRepository(db *mongo.Database) *RuleRepository {
	col := db.Collection("pricing_rules")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "priority", Value: -1}, {Key: "created_at", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &RuleRepository{col: col}
}

func (r *RuleRepository) ByID(ctx context.Context, propertyID domainproperty.PropertyID, id domainpricing.RuleID) (*domainpricing.Rule, error) {
	var doc ruleDocument
	filter := bson.M{"_id": string(id), "property_id": string(propertyID)}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("pricing rule not found")
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *RuleRepository) ForProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainpricing.Rule, error) {
	return r.find(ctx, bson.M{"property_id": string(propertyID)})
}

func (r *RuleRepository) ActiveForProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainpricing.Rule, error) {
	return r.find(ctx, bson.M{"property_id": string(propertyID), "is_active": true})
}

func (r *RuleRepository) CountForProperty(ctx context.Context, propertyID domainproperty.PropertyID) (int, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"property_id": string(propertyID)})
	return int(count), err
}

func (r *RuleRepository) find(ctx context.Context, filter bson.M) ([]*domainpricing.Rule, error) {
	// Resolution order: priority descending, ties broken by earliest creation.
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainpricing.Rule
	for cursor.Next(ctx) {
		var doc ruleDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		rule, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, cursor.Err()
}

func (r *RuleRepository) Save(ctx context.Context, rule *domainpricing.Rule) error {
	doc := newRuleDocument(rule)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *RuleRepository) Delete(ctx context.Context, propertyID domainproperty.PropertyID, id domainpricing.RuleID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id), "property_id": string(propertyID)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("pricing rule not found")
	}
	return nil
}

type ruleDocument struct {
	ID              string `bson:"_id"`
	PropertyID      string `bson:"property_id"`
	Name            string `bson:"name"`
	PriceMultiplier string `bson:"price_multiplier"`
	IsActive        bool   `bson:"is_active"`
	Priority        int    `bson:"priority"`
	DayOfWeek       *int   `bson:"day_of_week,omitempty"`
	StartDate       *int64 `bson:"start_date,omitempty"`
	EndDate         *int64 `bson:"end_date,omitempty"`
	CreatedAt       int64  `bson:"created_at"`
}

func newRuleDocument(rule *domainpricing.Rule) ruleDocument {
	doc := ruleDocument{
		ID:              string(rule.ID),
		PropertyID:      string(rule.PropertyID),
		Name:            rule.Name,
		PriceMultiplier: rule.PriceMultiplier.String(),
		IsActive:        rule.IsActive,
		Priority:        rule.Priority,
		DayOfWeek:       rule.DayOfWeek,
		CreatedAt:       rule.CreatedAt.UnixMilli(),
	}
	if rule.StartDate != nil {
		start := rule.StartDate.UnixMilli()
		doc.StartDate = &start
	}
	if rule.EndDate != nil {
		end := rule.EndDate.UnixMilli()
		doc.EndDate = &end
	}
	return doc
}

func (d ruleDocument) toDomain() (*domainpricing.Rule, error) {
	multiplier, err := decimal.NewFromString(d.PriceMultiplier)
	if err != nil {
		return nil, err
	}
	rule := &domainpricing.Rule{
		ID:              domainpricing.RuleID(d.ID),
		PropertyID:      domainproperty.PropertyID(d.PropertyID),
		Name:            d.Name,
		PriceMultiplier: multiplier,
		IsActive:        d.IsActive,
		Priority:        d.Priority,
		DayOfWeek:       d.DayOfWeek,
		CreatedAt:       timestampToTime(d.CreatedAt),
	}
	if d.StartDate != nil {
		start := timestampToTime(*d.StartDate)
		rule.StartDate = &start
	}
	if d.EndDate != nil {
		end := timestampToTime(*d.EndDate)
		rule.EndDate = &end
	}
	return rule, nil
}

var _ domainpricing.Repository = (*RuleRepository)(nil)
