package ginserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	availabilityapp "stayhub/internal/app/handlers/availability"
	bookingapp "stayhub/internal/app/handlers/booking"
	listingapp "stayhub/internal/app/handlers/listings"
	userapp "stayhub/internal/app/handlers/users"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/services/auth"
	"stayhub/internal/domain/availability"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/geocode"
	"stayhub/internal/infra/obs"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
	"stayhub/internal/infra/validation"
)

const (
	hostToken   = "host-token"
	tenantToken = "tenant-token"
	listingID   = "listing-1"
)

type testServer struct {
	router   *gin.Engine
	store    *memory.Store
	payments *memory.PaymentGateway
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	store := memory.NewStore()
	hasher := security.BcryptHasher{Cost: 4}
	seedUser := func(id, name, token, wallet string) {
		hash, err := hasher.Hash(token)
		require.NoError(t, err)
		u, err := domainuser.NewUser(domainuser.CreateParams{ID: domainuser.ID(id), Name: name, TokenHash: hash, WalletID: wallet})
		require.NoError(t, err)
		store.SeedUser(u)
	}
	seedUser("host-1", "Hannah", hostToken, "recp_host")
	seedUser("tenant-1", "Tom", tenantToken, "")

	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          listingID,
		Host:        "host-1",
		Title:       "Loft",
		Description: "Bright loft",
		Type:        domainlistings.TypeApartment,
		Address:     "Toronto, Ontario, Canada",
		Location:    domainlistings.Location{Country: "Canada", Admin: "Ontario", City: "Toronto"},
		Price:       100,
		NumOfGuests: 2,
		Now:         time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	store.SeedListing(listing)

	payments := memory.NewPaymentGateway()
	clock := func() time.Time { return time.Date(2021, time.May, 1, 12, 0, 0, 0, time.UTC) }
	encoder := outbox.JSONEventEncoder{}
	geocoder := geocode.Static{}

	cmdBus := commands.NewInMemoryBus()
	qBus := queries.NewInMemoryBus()
	bookingapp.Register(cmdBus, &bookingapp.CreateBookingHandler{
		UoW:      store,
		Payments: payments,
		Locker:   memory.NewLocker(),
		Encoder:  encoder,
		Window:   availability.DefaultWindow(),
		Clock:    clock,
	})
	availabilityapp.Register(qBus, &availabilityapp.CheckAvailabilityHandler{UoW: store})
	listingapp.Register(cmdBus, qBus, listingapp.Handlers{
		Get:      &listingapp.GetListingHandler{UoW: store},
		Bookings: &listingapp.ListingBookingsHandler{UoW: store},
		Search:   &listingapp.SearchListingsHandler{UoW: store, Geocoder: geocoder},
		Host:     &listingapp.HostListingHandler{Geocoder: geocoder, Images: memory.NewImageHost(), Encoder: encoder, Clock: clock},
	})
	userapp.Register(cmdBus, qBus, store, &userapp.WalletHandler{Clock: clock})

	validator := validation.New()
	cmds := middleware.ChainCommands(cmdBus,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Authorization(auth.RequireViewer{}),
		middleware.Validation(validator),
		middleware.Transaction(store, nil),
	)
	qs := middleware.ChainQueries(qBus, middleware.QueryValidation(validator))

	authService := &auth.Service{UoW: store, Tokens: hasher}
	router := NewRouter(Options{Env: "test"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Booking:       BookingHandler{Commands: cmds},
		Listing:       ListingHandler{Commands: cmds, Queries: qs},
		User:          UserHandler{Commands: cmds, Queries: qs},
		ViewerResolve: ViewerMiddleware{Resolver: authService}.Handle,
	})
	return testServer{router: router, store: store, payments: payments}
}

type caller struct {
	id    string
	token string
}

var (
	anonymous = caller{}
	tenant    = caller{id: "tenant-1", token: tenantToken}
	host      = caller{id: "host-1", token: hostToken}
)

func (s testServer) do(t *testing.T, who caller, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if who.id != "" {
		req.AddCookie(&http.Cookie{Name: ViewerCookie, Value: who.id})
		req.Header.Set(CSRFHeader, who.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

func bookingBody(checkIn, checkOut string) map[string]string {
	return map[string]string{"listing_id": listingID, "source": "tok_visa", "check_in": checkIn, "check_out": checkOut}
}

func TestCreateBookingThenOverlapIsConflict(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.Booking](t, rec)
	assert.Equal(t, int64(300), created.Total.Amount)
	assert.Equal(t, "2021-06-01", created.CheckIn)
	assert.NotEmpty(t, created.ReceiptID)

	rec = srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-03", "2021-06-05"), nil)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	body := decode[errorBody](t, rec)
	assert.Equal(t, "CONFLICT", body.Kind)
	assert.True(t, body.Retryable)
	assert.Len(t, srv.payments.Charges(), 1)
}

func TestCreateBookingRequiresViewer(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, anonymous, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	wrongToken := caller{id: "tenant-1", token: "guess"}
	rec = srv.do(t, wrongToken, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, srv.payments.Charges())
}

func TestCreateBookingRejectsBadDates(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("June 1st", "2021-06-03"), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[errorBody](t, rec).Kind)

	rec = srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-05", "2021-06-03"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingDeclinedCardIsPaymentRequired(t *testing.T) {
	srv := newTestServer(t)
	body := bookingBody("2021-06-01", "2021-06-03")
	body["source"] = "tok_fail_insufficient"

	rec := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", body, nil)
	require.Equal(t, http.StatusPaymentRequired, rec.Code, rec.Body.String())
	assert.Equal(t, "PAYMENT_FAILED", decode[errorBody](t, rec).Kind)

	rec = srv.do(t, anonymous, http.MethodGet, "/api/v1/listings/"+listingID+"/availability?check_in=2021-06-01&check_out=2021-06-03", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.Availability](t, rec).Available)
}

func TestSelfBookingIsUnauthorized(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, host, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "viewer can't book own listing", decode[errorBody](t, rec).Error)
}

func TestIdempotencyKeyReplaysBooking(t *testing.T) {
	srv := newTestServer(t)
	headers := map[string]string{"Idempotency-Key": "abc-123"}

	first := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), headers)
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	assert.Equal(t, decode[dto.Booking](t, first).ID, decode[dto.Booking](t, second).ID)
	assert.Len(t, srv.payments.Charges(), 1)
}

func TestIdempotencyKeyRetriesAfterRefundedCommitFailure(t *testing.T) {
	srv := newTestServer(t)
	headers := map[string]string{"Idempotency-Key": "abc-456"}
	srv.store.FailNextCommit(errors.New("write conflict"))

	first := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), headers)
	require.Equal(t, http.StatusInternalServerError, first.Code, first.Body.String())
	assert.False(t, decode[errorBody](t, first).Retryable)

	second := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), headers)
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	charges := srv.payments.Charges()
	require.Len(t, charges, 2)
	assert.True(t, charges[0].Refunded)
	assert.False(t, charges[1].Refunded)
}

func TestAvailabilityReportsConflictDay(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, anonymous, http.MethodGet, "/api/v1/listings/"+listingID+"/availability?check_in=2021-06-03T10:00:00Z&check_out=2021-06-05", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[dto.Availability](t, rec)
	assert.False(t, got.Available)
	assert.Equal(t, "2021-06-03", got.ConflictDay)
	assert.Equal(t, int64(300), got.Total)

	rec = srv.do(t, anonymous, http.MethodGet, "/api/v1/listings/missing/availability?check_in=2021-06-01&check_out=2021-06-02", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, anonymous, http.MethodGet, "/api/v1/listings/"+listingID+"/availability?check_in=0001-01-01&check_out=9999-12-31", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestListingBookingsVisibleToHostOnly(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, host, http.MethodGet, "/api/v1/listings/"+listingID+"/bookings?limit=10&page=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[*dto.Page[dto.Booking]](t, rec)
	require.NotNil(t, page)
	assert.Equal(t, 1, page.Total)
	assert.Empty(t, page.Result[0].ReceiptID)

	rec = srv.do(t, host, http.MethodGet, "/api/v1/listings/"+listingID+"/bookings?limit=10&page=9223372036854775807", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	far := decode[*dto.Page[dto.Booking]](t, rec)
	require.NotNil(t, far)
	assert.Equal(t, 1, far.Total)
	assert.Empty(t, far.Result)

	rec = srv.do(t, anonymous, http.MethodGet, "/api/v1/listings/"+listingID+"/bookings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String())

	rec = srv.do(t, host, http.MethodGet, "/api/v1/listings/"+listingID+"/bookings?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetListingShowsCalendar(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-02"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, anonymous, http.MethodGet, "/api/v1/listings/"+listingID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, `{"2021":{"5":{"1":true,"2":true}}}`, string(raw["bookings_index"]))
	assert.JSONEq(t, `false`, string(raw["authorized"]))
}

func TestUserIncomeVisibleToSelf(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, tenant, http.MethodPost, "/api/v1/bookings", bookingBody("2021-06-01", "2021-06-03"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, host, http.MethodGet, "/api/v1/users/host-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	self := decode[dto.User](t, rec)
	require.NotNil(t, self.Income)
	assert.Equal(t, int64(300), *self.Income)

	rec = srv.do(t, tenant, http.MethodGet, "/api/v1/users/host-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[dto.User](t, rec).Income)

	rec = srv.do(t, tenant, http.MethodGet, "/api/v1/users/tenant-1/bookings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[*dto.Page[dto.Booking]](t, rec).Total)
}

func TestWalletConnectAndDisconnect(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, anonymous, http.MethodPost, "/api/v1/me/wallet", map[string]string{"wallet_id": "recp_new"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, tenant, http.MethodPost, "/api/v1/me/wallet", map[string]string{"wallet_id": "recp_new"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[dto.Wallet](t, rec).HasWallet)

	rec = srv.do(t, tenant, http.MethodDelete, "/api/v1/me/wallet", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[dto.Wallet](t, rec).HasWallet)
}

func TestHostListingAndSearch(t *testing.T) {
	srv := newTestServer(t)
	body := map[string]any{
		"title":         "Cottage",
		"description":   "Quiet cottage by the lake",
		"image":         "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==",
		"type":          "HOUSE",
		"address":       "Toronto, Ontario, Canada",
		"price":         250,
		"num_of_guests": 4,
	}
	rec := srv.do(t, host, http.MethodPost, "/api/v1/listings", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.Listing](t, rec)
	assert.Equal(t, "Toronto", created.City)

	body["type"] = "CASTLE"
	rec = srv.do(t, host, http.MethodPost, "/api/v1/listings", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, anonymous, http.MethodGet, "/api/v1/listings?location=Toronto,%20Ontario,%20Canada&filter=PRICE_HIGH_TO_LOW&limit=10&page=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	found := decode[dto.ListingsSearch](t, rec)
	require.Equal(t, 2, found.Total)
	assert.Equal(t, created.ID, found.Result[0].ID)

	rec = srv.do(t, anonymous, http.MethodGet, "/api/v1/users/host-1/listings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[dto.Page[dto.Listing]](t, rec).Total)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusOK, srv.do(t, anonymous, http.MethodGet, "/livez", nil, nil).Code)
	assert.Equal(t, http.StatusOK, srv.do(t, anonymous, http.MethodGet, "/readyz", nil, nil).Code)
}
