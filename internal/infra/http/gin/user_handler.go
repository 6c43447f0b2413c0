package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	UsersApp "stayhub/internal/app/handlers/users"
	"stayhub/internal/app/queries"
)

type UserHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type connectWalletRequest struct {
	WalletID string `json:"wallet_id"`
}

func (h UserHandler) Get(c *gin.Context) {
	q := UsersApp.GetUserQuery{UserID: c.Param("id"), ViewerID: viewerOf(c)}
	result, err := queries.Ask[UsersApp.GetUserQuery, dto.User](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UserHandler) Bookings(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	pageNum, ok := queryInt(c, "page")
	if !ok {
		return
	}
	q := UsersApp.UserBookingsQuery{UserID: c.Param("id"), ViewerID: viewerOf(c), Limit: limit, Page: pageNum}
	result, err := queries.Ask[UsersApp.UserBookingsQuery, *dto.Page[dto.Booking]](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UserHandler) Listings(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	pageNum, ok := queryInt(c, "page")
	if !ok {
		return
	}
	q := UsersApp.UserListingsQuery{UserID: c.Param("id"), Limit: limit, Page: pageNum}
	result, err := queries.Ask[UsersApp.UserListingsQuery, dto.Page[dto.Listing]](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UserHandler) ConnectWallet(c *gin.Context) {
	var req connectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed wallet request")
		return
	}
	cmd := UsersApp.ConnectWalletCommand{ViewerID: viewerOf(c), WalletID: req.WalletID}
	result, err := commands.Dispatch[UsersApp.ConnectWalletCommand, dto.Wallet](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UserHandler) DisconnectWallet(c *gin.Context) {
	cmd := UsersApp.DisconnectWalletCommand{ViewerID: viewerOf(c)}
	result, err := commands.Dispatch[UsersApp.DisconnectWalletCommand, dto.Wallet](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ UserHTTP = UserHandler{}
