package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayhub/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
}

type ListingHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
	Availability(c *gin.Context)
	Bookings(c *gin.Context)
	Host(c *gin.Context)
}

type UserHTTP interface {
	Get(c *gin.Context)
	Bookings(c *gin.Context)
	Listings(c *gin.Context)
	ConnectWallet(c *gin.Context)
	DisconnectWallet(c *gin.Context)
}

type Handlers struct {
	Booking       BookingHTTP
	Listing       ListingHTTP
	User          UserHTTP
	ViewerResolve gin.HandlerFunc
}

type Options struct {
	Env          string
	Addr         string
	AllowOrigins []string
}

func NewServer(opts Options, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           NewRouter(opts, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(opts Options, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(opts.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", CSRFHeader, "Idempotency-Key", obs.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", obs.RequestIDHeader},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.ViewerResolve != nil {
		api.Use(h.ViewerResolve)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Search)
		api.POST("/listings", h.Listing.Host)
		api.GET("/listings/:id", h.Listing.Get)
		api.GET("/listings/:id/availability", h.Listing.Availability)
		api.GET("/listings/:id/bookings", h.Listing.Bookings)
	}
	if h.User != nil {
		api.GET("/users/:id", h.User.Get)
		api.GET("/users/:id/bookings", h.User.Bookings)
		api.GET("/users/:id/listings", h.User.Listings)
		api.POST("/me/wallet", h.User.ConnectWallet)
		api.DELETE("/me/wallet", h.User.DisconnectWallet)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
