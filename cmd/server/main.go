package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voyagehub/travel-backend/internal/cache"
	"github.com/voyagehub/travel-backend/internal/config"
	"github.com/voyagehub/travel-backend/internal/database"
	"github.com/voyagehub/travel-backend/internal/handlers"
	"github.com/voyagehub/travel-backend/internal/messaging"
	"github.com/voyagehub/travel-backend/internal/metrics"
	"github.com/voyagehub/travel-backend/internal/search"
	"github.com/voyagehub/travel-backend/internal/services"
	"github.com/voyagehub/travel-backend/internal/storage"
	"github.com/voyagehub/travel-backend/internal/validation"
	"github.com/voyagehub/travel-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting VoyageHub travel backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(startupCtx, db, logger); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Optional infrastructure. Each piece falls back to an in-process
	// implementation when it is not configured.
	var locker cache.Locker = cache.NewMemoryLocker()
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(startupCtx, cfg.Redis)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		locker = cache.NewRedisLocker(rdb, "travel:lock:")
		logger.WithField("addr", cfg.Redis.Addr).Info("Using redis for payment locks")
	} else {
		logger.Warn("REDIS_ADDR not set, payment locks are process local")
	}

	var events messaging.Publisher = messaging.NewLogPublisher(logger)
	if cfg.NATS.URL != "" {
		stan, err := messaging.NewStanPublisher(cfg.NATS, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to NATS streaming: %v", err)
		}
		events = stan
		logger.WithField("subject", cfg.NATS.Subject).Info("Publishing domain events to NATS streaming")
	}
	defer events.Close()

	var tourIndex search.TourIndex
	if len(cfg.Elasticsearch.Addresses) > 0 {
		index, err := search.NewElasticsearchTourIndex(startupCtx, cfg.Elasticsearch, logger)
		if err != nil {
			logger.WithError(err).Warn("Elasticsearch unavailable, tour search falls back to the database")
		} else {
			tourIndex = index
		}
	}

	photos, err := storage.NewLocalPhotoStore(cfg.Upload)
	if err != nil {
		logger.Fatalf("Failed to prepare upload directory: %v", err)
	}

	m := metrics.New()
	v := validation.New()

	var gateway services.PaymentGateway
	if cfg.Payment.SecretKey != "" {
		gateway = services.NewPaystackGateway(cfg.Payment, logger, m)
		logger.WithField("environment", cfg.Payment.Environment).Info("Payment gateway: Paystack")
	} else {
		gateway = services.NewSandboxGateway(cfg.Payment, logger)
		logger.Warn("PAYMENT_SECRET_KEY not set, using the sandbox payment gateway")
	}

	// Repositories
	userRepository := database.NewUserRepository(db)
	refreshTokenRepository := database.NewRefreshTokenRepository(db)
	loginAttemptRepository := database.NewLoginAttemptRepository(db)
	auditLogRepository := database.NewAuditLogRepository(db)
	destinationRepository := database.NewDestinationRepository(db)
	hotelRepository := database.NewHotelRepository(db)
	roomRepository := database.NewRoomRepository(db)
	flightRepository := database.NewFlightRepository(db)
	tourRepository := database.NewTourRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	paymentRepository := database.NewPaymentRepository(db)
	paymentAuditRepository := database.NewPaymentAuditRepository(db, logger)
	reportRepository := database.NewReportRepository(db)
	txManager := database.NewTxManager(db)

	// Services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(auditLogRepository, logger, cfg.Security.EnableAuditLog)
	rateLimitService := services.NewRateLimitService(loginAttemptRepository, cfg.RateLimit)
	userService := services.NewUserService(userRepository, refreshTokenRepository, photos, v, cfg.Security.BcryptCost, logger)
	authService := services.NewAuthService(userRepository, refreshTokenRepository, userService, jwtService, rateLimitService, auditService, logger)
	destinationService := services.NewDestinationService(destinationRepository, photos, v, logger)
	hotelService := services.NewHotelService(hotelRepository, roomRepository, destinationRepository, photos, v, logger)
	flightService := services.NewFlightService(flightRepository, destinationRepository, v)
	tourService := services.NewTourService(tourRepository, tourIndex, v, logger)
	bookingService := services.NewBookingService(txManager, bookingRepository, v, events, m, logger)
	paymentService := services.NewPaymentService(services.PaymentServiceDeps{
		Tx:        txManager,
		Payments:  paymentRepository,
		Bookings:  bookingRepository,
		Users:     userRepository,
		Audits:    paymentAuditRepository,
		Gateway:   gateway,
		Locker:    locker,
		Lifecycle: bookingService,
		Validator: v,
		Events:    events,
		Metrics:   m,
		Config:    cfg.Payment,
		Logger:    logger,
	})
	reportService := services.NewReportService(reportRepository, cfg.Reports)

	if cfg.Cron.Enabled {
		cronService := services.NewCronService(paymentService, refreshTokenRepository, rateLimitService, auditService, cfg.Cron, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
		defer cronService.Stop()
	}
	logger.Info("Services initialized")

	// Handlers
	adminAudit := handlers.NewAdminAudit(auditService)
	router := handlers.NewRouter(handlers.RouterDeps{
		Config:  cfg,
		Logger:  logger,
		JWT:     jwtService,
		Metrics: m,
		DB:      db,
		Version: version,

		Auth:         handlers.NewAuthHandler(authService),
		Users:        handlers.NewUserHandler(userService, adminAudit),
		Destinations: handlers.NewDestinationHandler(destinationService, adminAudit),
		Hotels:       handlers.NewHotelHandler(hotelService, adminAudit),
		Flights:      handlers.NewFlightHandler(flightService, adminAudit),
		Tours:        handlers.NewTourHandler(tourService, adminAudit),
		Bookings:     handlers.NewBookingHandler(bookingService, adminAudit),
		Payments:     handlers.NewPaymentHandler(paymentService, adminAudit),
		Reports:      handlers.NewReportHandler(reportService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
