package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	AvailabilityApp "stayhub/internal/app/handlers/availability"
	ListingsApp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/app/queries"
)

type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type hostListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Type        string `json:"type"`
	Address     string `json:"address"`
	Price       int64  `json:"price"`
	NumOfGuests int    `json:"num_of_guests"`
}

func (h ListingHandler) Search(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	pageNum, ok := queryInt(c, "page")
	if !ok {
		return
	}
	q := ListingsApp.SearchListingsQuery{
		Location: c.Query("location"),
		Filter:   c.Query("filter"),
		Limit:    limit,
		Page:     pageNum,
	}
	result, err := queries.Ask[ListingsApp.SearchListingsQuery, dto.ListingsSearch](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	q := ListingsApp.GetListingQuery{ListingID: c.Param("id"), ViewerID: viewerOf(c)}
	result, err := queries.Ask[ListingsApp.GetListingQuery, dto.Listing](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Availability(c *gin.Context) {
	checkIn, err := parseDate(c.Query("check_in"))
	if err != nil {
		badRequest(c, "check_in: "+err.Error())
		return
	}
	checkOut, err := parseDate(c.Query("check_out"))
	if err != nil {
		badRequest(c, "check_out: "+err.Error())
		return
	}
	q := AvailabilityApp.CheckAvailabilityQuery{ListingID: c.Param("id"), CheckIn: checkIn, CheckOut: checkOut}
	result, err := queries.Ask[AvailabilityApp.CheckAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Bookings answers null for anyone but the host.
func (h ListingHandler) Bookings(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	pageNum, ok := queryInt(c, "page")
	if !ok {
		return
	}
	q := ListingsApp.ListingBookingsQuery{ListingID: c.Param("id"), ViewerID: viewerOf(c), Limit: limit, Page: pageNum}
	result, err := queries.Ask[ListingsApp.ListingBookingsQuery, *dto.Page[dto.Booking]](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Host(c *gin.Context) {
	var req hostListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed listing request")
		return
	}
	cmd := ListingsApp.HostListingCommand{
		ViewerID:    viewerOf(c),
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Type:        req.Type,
		Address:     req.Address,
		Price:       req.Price,
		NumOfGuests: req.NumOfGuests,
	}
	result, err := commands.Dispatch[ListingsApp.HostListingCommand, dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ListingHTTP = ListingHandler{}
