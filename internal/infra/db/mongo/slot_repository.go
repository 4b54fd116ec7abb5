package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "stayengine/internal/domain/availability"
	domainproperty "stayengine/internal/domain/property"
	"stayengine/internal/domain/shared/apperr"
	"stayengine/internal/domain/shared/daterange"
)

type SlotRepository struct {
	col *mongo.Collection
}

func NewSlotRepository(db *mongo.Database) *SlotRepository {
	col := db.Collection("availability_slots")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "start_date", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &SlotRepository{col: col}
}

func (r *SlotRepository) ByID(ctx context.Context, propertyID domainproperty.PropertyID, id domainavailability.SlotID) (*domainavailability.Slot, error) {
	var doc slotDocument
	filter := bson.M{"_id": string(id), "property_id": string(propertyID)}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("availability slot not found")
		}
		return nil, err
	}
	return doc.toDomain()
}

// Overlapping runs the write-side inclusive-bounds predicate:
// start_date <= r.End AND end_date >= r.Start.
func (r *SlotRepository) Overlapping(ctx context.Context, propertyID domainproperty.PropertyID, dr daterange.DateRange) ([]*domainavailability.Slot, error) {
	filter := bson.M{
		"property_id": string(propertyID),
		"start_date":  bson.M{"$lte": dr.End.UnixMilli()},
		"end_date":    bson.M{"$gte": dr.Start.UnixMilli()},
	}
	return r.find(ctx, filter)
}

func (r *SlotRepository) Intersecting(ctx context.Context, propertyID domainproperty.PropertyID, windowStart, windowEnd time.Time) ([]*domainavailability.Slot, error) {
	filter := bson.M{"property_id": string(propertyID)}
	if !windowStart.IsZero() {
		filter["end_date"] = bson.M{"$gte": daterange.Day(windowStart).UnixMilli()}
	}
	if !windowEnd.IsZero() {
		filter["start_date"] = bson.M{"$lte": daterange.Day(windowEnd).UnixMilli()}
	}
	return r.find(ctx, filter)
}

func (r *SlotRepository) Available(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainavailability.Slot, error) {
	filter := bson.M{"property_id": string(propertyID), "is_available": true}
	return r.find(ctx, filter)
}

func (r *SlotRepository) find(ctx context.Context, filter bson.M) ([]*domainavailability.Slot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainavailability.Slot
	for cursor.Next(ctx) {
		var doc slotDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		slot, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, cursor.Err()
}

func (r *SlotRepository) Save(ctx context.Context, slot *domainavailability.Slot) error {
	doc, err := newSlotDocument(slot)
	if err != nil {
		return err
	}
	opts := options.Update().SetUpsert(true)
	_, err = r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *SlotRepository) Delete(ctx context.Context, propertyID domainproperty.PropertyID, id domainavailability.SlotID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id), "property_id": string(propertyID)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("availability slot not found")
	}
	return nil
}

type slotDocument struct {
	ID            string `bson:"_id"`
	PropertyID    string `bson:"property_id"`
	StartDate     int64  `bson:"start_date"`
	EndDate       int64  `bson:"end_date"`
	IsAvailable   bool   `bson:"is_available"`
	PricePerNight string `bson:"price_per_night,omitempty"`
	Notes         string `bson:"notes,omitempty"`
	CreatedAt     int64  `bson:"created_at"`
}

func newSlotDocument(slot *domainavailability.Slot) (slotDocument, error) {
	doc := slotDocument{
		ID:          string(slot.ID),
		PropertyID:  string(slot.PropertyID),
		StartDate:   slot.Range.Start.UnixMilli(),
		EndDate:     slot.Range.End.UnixMilli(),
		IsAvailable: slot.IsAvailable,
		Notes:       slot.Notes,
		CreatedAt:   slot.CreatedAt.UnixMilli(),
	}
	if slot.PricePerNight != nil {
		doc.PricePerNight = slot.PricePerNight.String()
	}
	return doc, nil
}

func (d slotDocument) toDomain() (*domainavailability.Slot, error) {
	slot := &domainavailability.Slot{
		ID:          domainavailability.SlotID(d.ID),
		PropertyID:  domainproperty.PropertyID(d.PropertyID),
		Range:       daterange.DateRange{Start: timestampToTime(d.StartDate), End: timestampToTime(d.EndDate)},
		IsAvailable: d.IsAvailable,
		Notes:       d.Notes,
		CreatedAt:   timestampToTime(d.CreatedAt),
	}
	if d.PricePerNight != "" {
		price, err := decimal.NewFromString(d.PricePerNight)
		if err != nil {
			return nil, err
		}
		slot.PricePerNight = &price
	}
	return slot, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainavailability.Repository = (*SlotRepository)(nil)
