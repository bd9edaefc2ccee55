package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// hotelDoc is the persisted shape; ids are ObjectIDs in Mongo and hex strings
// everywhere else.
type hotelDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"userId"`
	Name          string             `bson:"name"`
	City          string             `bson:"city"`
	Country       string             `bson:"country"`
	Description   string             `bson:"description"`
	Type          string             `bson:"type"`
	AdultCount    int                `bson:"adultCount"`
	ChildCount    int                `bson:"childCount"`
	Facilities    []string           `bson:"facilities"`
	PricePerNight float64            `bson:"pricePerNight"`
	StarRating    int                `bson:"starRating"`
	ImageURLs     []string           `bson:"imageUrls"`
	LastUpdated   time.Time          `bson:"lastUpdated"`
}

func toDoc(h *hotel.Hotel) hotelDoc {
	c := h.Clone()
	return hotelDoc{
		UserID:        c.UserID,
		Name:          c.Name,
		City:          c.City,
		Country:       c.Country,
		Description:   c.Description,
		Type:          c.Type,
		AdultCount:    c.AdultCount,
		ChildCount:    c.ChildCount,
		Facilities:    c.Facilities,
		PricePerNight: c.PricePerNight,
		StarRating:    c.StarRating,
		ImageURLs:     c.ImageURLs,
		LastUpdated:   c.LastUpdated,
	}
}

func (d hotelDoc) toHotel() *hotel.Hotel {
	h := &hotel.Hotel{
		ID:            d.ID.Hex(),
		UserID:        d.UserID,
		Name:          d.Name,
		City:          d.City,
		Country:       d.Country,
		Description:   d.Description,
		Type:          d.Type,
		AdultCount:    d.AdultCount,
		ChildCount:    d.ChildCount,
		Facilities:    d.Facilities,
		PricePerNight: d.PricePerNight,
		StarRating:    d.StarRating,
		ImageURLs:     d.ImageURLs,
		LastUpdated:   d.LastUpdated,
	}
	return h.Clone()
}

// MongoRepo implements Repository on a MongoDB collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// owner listing is the hot path
	idx := mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "lastUpdated", Value: -1}}}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		logger.Warnf("hotels: could not ensure userId index: %v", err)
	}
	return &MongoRepo{col: col}
}

// ownedFilter returns false when id is not a valid ObjectID; such ids can never
// match and are reported as not found.
func ownedFilter(id, userID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "userId": userID}, true
}

func (m *MongoRepo) Insert(ctx context.Context, h *hotel.Hotel) (*hotel.Hotel, error) {
	doc := toDoc(h)
	doc.ID = primitive.NewObjectID()
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert hotel: %w", err)
	}
	return doc.toHotel(), nil
}

func (m *MongoRepo) FindByOwner(ctx context.Context, userID string) ([]*hotel.Hotel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastUpdated", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find hotels: %w", err)
	}
	defer cur.Close(ctx)
	out := []*hotel.Hotel{}
	for cur.Next(ctx) {
		var d hotelDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode hotel: %w", err)
		}
		out = append(out, d.toHotel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate hotels: %w", err)
	}
	return out, nil
}

func (m *MongoRepo) FindOne(ctx context.Context, id, userID string) (*hotel.Hotel, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, ErrNotFound
	}
	var d hotelDoc
	if err := m.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find hotel: %w", err)
	}
	return d.toHotel(), nil
}

func (m *MongoRepo) UpdateOne(ctx context.Context, id, userID string, u hotel.Update) (*hotel.Hotel, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d hotelDoc
	err := m.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": setDoc(u)}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update hotel: %w", err)
	}
	return d.toHotel(), nil
}

func (m *MongoRepo) DeleteOne(ctx context.Context, id, userID string) (*hotel.Hotel, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, ErrNotFound
	}
	var d hotelDoc
	if err := m.col.FindOneAndDelete(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete hotel: %w", err)
	}
	return d.toHotel(), nil
}

// setDoc builds the $set document. userId and _id are never part of it.
func setDoc(u hotel.Update) bson.M {
	imgs := u.ImageURLs
	if imgs == nil {
		imgs = []string{}
	}
	set := bson.M{"imageUrls": imgs, "lastUpdated": u.LastUpdated}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.City != nil {
		set["city"] = *u.City
	}
	if u.Country != nil {
		set["country"] = *u.Country
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.PricePerNight != nil {
		set["pricePerNight"] = *u.PricePerNight
	}
	if u.StarRating != nil {
		set["starRating"] = *u.StarRating
	}
	if u.AdultCount != nil {
		set["adultCount"] = *u.AdultCount
	}
	if u.ChildCount != nil {
		set["childCount"] = *u.ChildCount
	}
	if u.Facilities != nil {
		set["facilities"] = u.Facilities
	}
	return set
}
