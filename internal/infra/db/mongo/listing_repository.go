package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayhub/internal/domain/calendar"
	domainlistings "stayhub/internal/domain/listings"
)

const listingsCollection = "listings"

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(listingsCollection)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find listing %s: %w", id, err)
	}
	return doc.toAggregate(), nil
}

// Save writes the listing only if the stored version still matches; a new
// listing (version 0) is inserted.
func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainlistings.ErrVersionConflict
		}
		return fmt.Errorf("mongo: save listing %s: %w", l.ID, err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainlistings.ErrVersionConflict
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := searchFilter(opts)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, fmt.Errorf("mongo: count listings: %w", err)
	}
	find := options.Find().
		SetSort(searchSort(opts.Order)).
		SetSkip(int64(opts.Page.Offset())).
		SetLimit(int64(opts.Page.Limit))
	cur, err := r.col.Find(ctx, filter, find)
	if err != nil {
		return domainlistings.SearchResult{}, fmt.Errorf("mongo: find listings: %w", err)
	}
	var docs []listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return domainlistings.SearchResult{}, fmt.Errorf("mongo: decode listings: %w", err)
	}
	items := make([]*domainlistings.Listing, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toAggregate())
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

func searchFilter(p domainlistings.SearchParams) bson.M {
	filter := bson.M{}
	if p.Host != "" {
		filter["host_id"] = string(p.Host)
	}
	for field, value := range map[string]string{
		"country": p.Location.Country,
		"admin":   p.Location.Admin,
		"city":    p.Location.City,
	} {
		if value != "" {
			filter[field] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
		}
	}
	return filter
}

func searchSort(order domainlistings.SortOrder) bson.D {
	switch order {
	case domainlistings.PriceLowToHigh:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case domainlistings.PriceHighToLow:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "_id", Value: 1}}
	}
}

type listingDocument struct {
	ID          string    `bson:"_id"`
	HostID      string    `bson:"host_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Image       string    `bson:"image"`
	Type        string    `bson:"type"`
	Address     string    `bson:"address"`
	Country     string    `bson:"country"`
	Admin       string    `bson:"admin"`
	City        string    `bson:"city"`
	Price       int64     `bson:"price"`
	NumOfGuests int       `bson:"num_of_guests"`
	Bookings    []string  `bson:"bookings"`
	BookedDays  []int64   `bson:"booked_days"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
	Version     int64     `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	days := l.Calendar.Days()
	booked := make([]int64, 0, len(days))
	for _, d := range days {
		booked = append(booked, int64(d))
	}
	return listingDocument{
		ID:          string(l.ID),
		HostID:      string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Type:        string(l.Type),
		Address:     l.Address,
		Country:     l.Location.Country,
		Admin:       l.Location.Admin,
		City:        l.Location.City,
		Price:       l.Price,
		NumOfGuests: l.NumOfGuests,
		Bookings:    append([]string{}, l.Bookings...),
		BookedDays:  booked,
		CreatedAt:   l.CreatedAt.UTC(),
		UpdatedAt:   l.UpdatedAt.UTC(),
		Version:     l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	days := make([]calendar.Day, 0, len(d.BookedDays))
	for _, v := range d.BookedDays {
		days = append(days, calendar.Day(v))
	}
	return &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Host:        domainlistings.HostID(d.HostID),
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		Type:        domainlistings.Type(d.Type),
		Address:     d.Address,
		Location:    domainlistings.Location{Country: d.Country, Admin: d.Admin, City: d.City},
		Price:       d.Price,
		NumOfGuests: d.NumOfGuests,
		Bookings:    append([]string{}, d.Bookings...),
		Calendar:    calendar.Of(days...),
		Version:     d.Version,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}
