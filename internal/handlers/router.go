package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/config"
	"github.com/voyagehub/travel-backend/internal/metrics"
	"github.com/voyagehub/travel-backend/internal/middleware"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/pkg/jwt"
)

// RouterDeps carries everything the HTTP surface is built from
type RouterDeps struct {
	Config  *config.Config
	Logger  *logrus.Logger
	JWT     *jwt.Service
	Metrics *metrics.Metrics
	DB      Pinger
	Version string

	Auth         *AuthHandler
	Users        *UserHandler
	Destinations *DestinationHandler
	Hotels       *HotelHandler
	Flights      *FlightHandler
	Tours        *TourHandler
	Bookings     *BookingHandler
	Payments     *PaymentHandler
	Reports      *ReportHandler
}

// NewRouter builds the gin engine with middleware and every route. Reads of
// the catalog are public, writes need staff and deletes need an admin.
func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if d.Config.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(d.Logger))
	}
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORS.AllowedOrigins,
		AllowMethods:     d.Config.CORS.AllowedMethods,
		AllowHeaders:     d.Config.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = int64(d.Config.Upload.MaxSizeMB) << 20

	router.GET("/health", HealthCheck(d.DB, d.Version))
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	if d.Config.Upload.Dir != "" {
		router.Static(d.Config.Upload.PublicPath, d.Config.Upload.Dir)
	}

	authed := middleware.AuthMiddleware(d.JWT, d.Logger)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleAgent)
	admin := middleware.RequireRole(models.RoleAdmin)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)
		auth.POST("/refresh", d.Auth.Refresh)
		auth.POST("/logout", authed, d.Auth.Logout)
		auth.GET("/me", authed, d.Auth.Me)
	}

	users := v1.Group("/users", authed, admin)
	{
		users.GET("", d.Users.List)
		users.POST("", d.Users.Create)
		users.DELETE("", d.Users.DeleteAll)
		users.GET("/:id", d.Users.Get)
		users.PUT("/:id", d.Users.Update)
		users.DELETE("/:id", d.Users.Delete)
	}

	destinations := v1.Group("/destinations")
	{
		destinations.GET("", d.Destinations.List)
		destinations.GET("/:id", d.Destinations.Get)
		destinations.POST("", authed, staff, d.Destinations.Create)
		destinations.PUT("/:id", authed, staff, d.Destinations.Update)
		destinations.DELETE("/:id", authed, admin, d.Destinations.Delete)
		destinations.DELETE("", authed, admin, d.Destinations.DeleteAll)
	}

	hotels := v1.Group("/hotels")
	{
		hotels.GET("", d.Hotels.List)
		hotels.GET("/:id", d.Hotels.Get)
		hotels.POST("", authed, staff, d.Hotels.Create)
		hotels.PUT("/:id", authed, staff, d.Hotels.Update)
		hotels.DELETE("/:id", authed, admin, d.Hotels.Delete)
		hotels.DELETE("", authed, admin, d.Hotels.DeleteAll)
	}

	rooms := v1.Group("/rooms")
	{
		rooms.GET("", d.Hotels.ListRooms)
		rooms.GET("/:id", d.Hotels.GetRoom)
		rooms.POST("", authed, staff, d.Hotels.CreateRoom)
		rooms.PUT("/:id", authed, staff, d.Hotels.UpdateRoom)
		rooms.DELETE("/:id", authed, admin, d.Hotels.DeleteRoom)
		rooms.DELETE("", authed, admin, d.Hotels.DeleteAllRooms)
	}

	flights := v1.Group("/flights")
	{
		flights.GET("", d.Flights.List)
		flights.GET("/:id", d.Flights.Get)
		flights.POST("", authed, staff, d.Flights.Create)
		flights.PUT("/:id", authed, staff, d.Flights.Update)
		flights.DELETE("/:id", authed, admin, d.Flights.Delete)
		flights.DELETE("", authed, admin, d.Flights.DeleteAll)
	}

	tours := v1.Group("/tours")
	{
		tours.GET("", d.Tours.List)
		tours.GET("/search", d.Tours.Search)
		tours.GET("/:id", d.Tours.Get)
		tours.POST("", authed, staff, d.Tours.Create)
		tours.POST("/reindex", authed, admin, d.Tours.Reindex)
		tours.PUT("/:id", authed, staff, d.Tours.Update)
		tours.DELETE("/:id", authed, admin, d.Tours.Delete)
		tours.DELETE("", authed, admin, d.Tours.DeleteAll)
	}

	bookings := v1.Group("/bookings", authed)
	{
		bookings.GET("", d.Bookings.List)
		bookings.GET("/me", d.Bookings.ListMine)
		bookings.POST("", d.Bookings.Create)
		bookings.GET("/:id", d.Bookings.Get)
		bookings.PUT("/:id", d.Bookings.UpdateStatus)
		bookings.PATCH("/:id", d.Bookings.UpdateStatus)
		bookings.DELETE("/:id", admin, d.Bookings.Delete)
		bookings.DELETE("", admin, d.Bookings.DeleteAll)
	}

	payments := v1.Group("/payments")
	{
		// The gateway calls these two without a user session
		payments.GET("/callback", d.Payments.Callback)
		payments.POST("/webhook", d.Payments.Webhook)

		payments.POST("", authed, d.Payments.Create)
		payments.GET("", authed, d.Payments.List)
		payments.GET("/reference/:reference", authed, d.Payments.GetByReference)
		payments.GET("/:id", authed, d.Payments.Get)
		payments.PATCH("/:id", authed, admin, d.Payments.UpdateStatus)
		payments.PATCH("/:id/refund", authed, admin, d.Payments.Refund)
		payments.DELETE("/:id", authed, admin, d.Payments.Delete)
		payments.DELETE("", authed, admin, d.Payments.DeleteAll)
	}

	reports := v1.Group("/reports", authed, staff)
	{
		reports.GET("/bookings/monthly-summary", d.Reports.MonthlyBookingSummary)
		reports.GET("/payments/summary", d.Reports.PaymentSummary)
		reports.GET("/tours/top-by-bookings", d.Reports.TopTours)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Route not found",
			Code:    "ROUTE_NOT_FOUND",
		})
	})

	return router
}
