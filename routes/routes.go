package routes

import (
	"net/http"
	"time"

	"resolvo/handlers"
	"resolvo/middleware"
	"resolvo/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAccountRoutes registers registration and sign-in endpoints.
func RegisterAccountRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/accounts")
	{
		api.POST("/register", hb.Account.RegisterHandler)
		api.POST("/login", hb.Account.SignInHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware(hb.AccountRepo))
		api.GET("/me", hb.Account.GetMeHandler)
		api.PUT("/fcm-token", hb.Account.UpdateFCMTokenHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.AccountRepo))
		api.POST("", hb.Booking.CreateBookingHandler)
		api.GET("", hb.Booking.ListBookingsHandler)
		api.GET("/:id", hb.Booking.GetBookingHandler)
		api.PATCH("/:id", hb.Booking.UpdateBookingHandler)

		// Change request protocol.
		api.POST("/:id/change-requests", hb.Booking.SubmitChangeRequestHandler)
		api.GET("/:id/change-requests", hb.Booking.ListChangeRequestsHandler)

		// Contracts attached to a booking.
		api.GET("/:id/contracts", hb.Contract.ListContractsByBookingHandler)
	}

	cr := r.Group("/api/change-requests")
	{
		cr.Use(middleware.JWTAuthMiddleware(hb.AccountRepo))
		cr.PATCH("/:id", hb.Booking.ResolveChangeRequestHandler)
		cr.DELETE("/:id", hb.Booking.WithdrawChangeRequestHandler)
	}
}

// RegisterContractRoutes registers contract issuance and response endpoints.
func RegisterContractRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/contracts")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.AccountRepo))
		api.POST("", hb.Contract.CreateContractHandler)
		api.GET("/:id", hb.Contract.GetContractHandler)
		api.PATCH("/:id/respond", hb.Contract.RespondContractHandler)
		api.POST("/signature", hb.Contract.UploadSignatureHandler)
		api.GET("/signature", hb.Contract.GetSignatureURLHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin moderation.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.AccountRepo))
		api.Use(middleware.AdminOnlyMiddleware())
		api.GET("/bookings", hb.Admin.ListAllBookingsHandler)
		api.POST("/bookings/:id/cancel", hb.Admin.ForceCancelBookingHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAccountRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterContractRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
