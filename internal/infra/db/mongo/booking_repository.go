package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainbooking "stayhub/internal/domain/booking"
	"stayhub/internal/domain/calendar"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

const bookingsCollection = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find booking %s: %w", id, err)
	}
	return doc.toAggregate(), nil
}

// ByIDs returns the bookings in the order of ids; a missing id is ErrNotFound.
func (r *BookingRepository) ByIDs(ctx context.Context, ids []domainbooking.BookingID) ([]*domainbooking.Booking, error) {
	if len(ids) == 0 {
		return []*domainbooking.Booking{}, nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": raw}})
	if err != nil {
		return nil, fmt.Errorf("mongo: find bookings: %w", err)
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode bookings: %w", err)
	}
	byID := make(map[string]bookingDocument, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]*domainbooking.Booking, 0, len(ids))
	for _, id := range raw {
		d, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domainbooking.ErrNotFound, id)
		}
		out = append(out, d.toAggregate())
	}
	return out, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domainbooking.Booking) error {
	if _, err := r.col.InsertOne(ctx, newBookingDocument(b)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrAlreadyExists
		}
		return fmt.Errorf("mongo: insert booking %s: %w", b.ID, err)
	}
	return nil
}

type bookingDocument struct {
	ID        string    `bson:"_id"`
	ListingID string    `bson:"listing_id"`
	TenantID  string    `bson:"tenant_id"`
	CheckIn   int64     `bson:"check_in_day"`
	CheckOut  int64     `bson:"check_out_day"`
	Total     int64     `bson:"total"`
	Currency  string    `bson:"currency"`
	ReceiptID string    `bson:"receipt_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		TenantID:  b.TenantID,
		CheckIn:   int64(b.Range.CheckIn),
		CheckOut:  int64(b.Range.CheckOut),
		Total:     b.Total.Amount,
		Currency:  b.Total.Currency,
		ReceiptID: b.ReceiptID,
		CreatedAt: b.CreatedAt.UTC(),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		TenantID:  d.TenantID,
		Range:     daterange.DateRange{CheckIn: calendar.Day(d.CheckIn), CheckOut: calendar.Day(d.CheckOut)},
		Total:     money.Money{Amount: d.Total, Currency: d.Currency},
		ReceiptID: d.ReceiptID,
		CreatedAt: d.CreatedAt.UTC(),
	}
}
