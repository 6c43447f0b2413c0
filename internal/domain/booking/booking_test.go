package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/calendar"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

func params() CreateParams {
	return CreateParams{
		ID:        "b1",
		ListingID: "l1",
		HostID:    "host",
		TenantID:  "tenant",
		Range:     daterange.DateRange{CheckIn: calendar.DayFromDate(2021, 6, 1), CheckOut: calendar.DayFromDate(2021, 6, 3)},
		Total:     money.Must(300, "USD"),
		ReceiptID: "chrg_1",
		CreatedAt: time.Date(2021, time.May, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewBookingRecordsCreatedEvent(t *testing.T) {
	b, err := NewBooking(params())
	require.NoError(t, err)
	evs := b.PendingEvents()
	require.Len(t, evs, 1)
	created, ok := evs[0].(BookingCreated)
	require.True(t, ok)
	assert.Equal(t, "booking.created", created.EventName())
	assert.Equal(t, "2021-06-01", created.CheckIn)
	assert.Equal(t, "2021-06-03", created.CheckOut)
	assert.Equal(t, int64(300), created.Total.Amount)
}

func TestNewBookingValidation(t *testing.T) {
	p := params()
	p.ReceiptID = ""
	_, err := NewBooking(p)
	assert.ErrorIs(t, err, ErrReceiptRequired)

	p = params()
	p.TenantID = ""
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, ErrTenantRequired)

	p = params()
	p.Range.CheckIn, p.Range.CheckOut = p.Range.CheckOut, p.Range.CheckIn
	_, err = NewBooking(p)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}
