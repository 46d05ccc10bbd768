// File: resolvo/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resolvo/config"
	"resolvo/cron"
	"resolvo/database"
	accountRepoPkg "resolvo/database/repository/account"
	bookingRepoPkg "resolvo/database/repository/booking"
	contractRepoPkg "resolvo/database/repository/contract"
	"resolvo/handlers"
	"resolvo/middleware"
	"resolvo/routes"
	"resolvo/services/account"
	"resolvo/services/booking"
	"resolvo/services/contract"
	"resolvo/services/notification"
	"resolvo/services/payment"
	"resolvo/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	contractRepo := contractRepoPkg.NewMongoContractRepo()
	accountRepo := accountRepoPkg.NewMongoAccountRepo()

	// services.
	dispatcher := cron.NewAsynqDispatcher()

	accountService := &account.DefaultAccountService{
		Repo: accountRepo,
	}

	bookingService := &booking.DefaultLifecycleService{
		Repo:     bookingRepo,
		Payments: payment.NewStripePaymentService(logger),
		Notifier: dispatcher,
	}

	contractService := &contract.DefaultContractService{
		Repo:     contractRepo,
		Notifier: dispatcher,
	}

	// Background worker that drains the notification queue into FCM.
	notificationService := &notification.FCMNotificationService{
		Accounts: accountRepo,
	}
	cron.InitDispatchWorker(notificationService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		AccountRepo: accountRepo,
		Account:     handlers.NewAccountHandler(accountService, logger),
		Booking:     handlers.NewBookingHandler(bookingService, logger),
		Contract:    handlers.NewContractHandler(contractService, cloudinaryStorageService, logger),
		Admin:       handlers.NewAdminHandler(bookingService, logger),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
