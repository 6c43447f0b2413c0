package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domainbooking "stayhub/internal/domain/booking"
	"stayhub/internal/domain/calendar"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

func TestListingDocumentKeepsCalendar(t *testing.T) {
	cal, err := calendar.Index{}.With(calendar.DayFromDate(2021, time.June, 1), calendar.DayFromDate(2021, time.June, 3))
	require.NoError(t, err)
	l := &domainlistings.Listing{
		ID:       "listing-1",
		Host:     "host-1",
		Type:     domainlistings.TypeHouse,
		Location: domainlistings.Location{Country: "Canada", Admin: "Ontario", City: "Toronto"},
		Price:    100,
		Bookings: []string{"b-1"},
		Calendar: cal,
		Version:  3,
	}

	raw, err := bson.Marshal(newListingDocument(l))
	require.NoError(t, err)
	var doc listingDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	back := doc.toAggregate()

	assert.True(t, cal.Equal(back.Calendar))
	assert.Equal(t, l.Location, back.Location)
	assert.Equal(t, l.Bookings, back.Bookings)
	assert.Equal(t, int64(3), back.Version)
}

func TestUserDocumentClearsWallet(t *testing.T) {
	raw, err := bson.Marshal(newUserDocument(&domainuser.User{ID: "u-1"}))
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	value, present := m["wallet_id"]
	assert.True(t, present)
	assert.Equal(t, "", value)
}

func TestBookingDocumentRoundTrip(t *testing.T) {
	b := &domainbooking.Booking{
		ID:        "b-1",
		ListingID: "listing-1",
		TenantID:  "tenant-1",
		Range:     daterange.DateRange{CheckIn: calendar.DayFromDate(2021, time.June, 1), CheckOut: calendar.DayFromDate(2021, time.June, 3)},
		Total:     money.Must(300, "USD"),
		ReceiptID: "chrg_1",
		CreatedAt: time.Date(2021, time.May, 1, 0, 0, 0, 0, time.UTC),
	}
	back := newBookingDocument(b).toAggregate()
	assert.Equal(t, b.Range, back.Range)
	assert.Equal(t, b.Total, back.Total)
	assert.Equal(t, b.CreatedAt, back.CreatedAt)
}

func TestSearchFilterIsCaseInsensitiveAndEscaped(t *testing.T) {
	filter := searchFilter(domainlistings.SearchParams{
		Host:     "host-1",
		Location: domainlistings.Location{Country: "Canada", City: "St. John's"},
	})
	assert.Equal(t, "host-1", filter["host_id"])
	assert.Equal(t, primitive.Regex{Pattern: `^Canada$`, Options: "i"}, filter["country"])
	assert.Equal(t, primitive.Regex{Pattern: `^St\. John's$`, Options: "i"}, filter["city"])
	_, hasAdmin := filter["admin"]
	assert.False(t, hasAdmin)

	assert.Equal(t, bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}, searchSort(domainlistings.PriceHighToLow))
}
