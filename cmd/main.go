package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-storefront-backend/configs"
	"golang-storefront-backend/internal/cart"
	"golang-storefront-backend/internal/handlers"
	"golang-storefront-backend/internal/middleware"
	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/repositories"
	"golang-storefront-backend/internal/services"
	"golang-storefront-backend/pkg/auth"
	"golang-storefront-backend/pkg/cache"
	"golang-storefront-backend/pkg/database"
	"golang-storefront-backend/pkg/logger"
	"golang-storefront-backend/pkg/messaging"
	"golang-storefront-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	config := configs.LoadConfig()

	log, err := logger.New(config.Server.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Set Gin mode
	gin.SetMode(config.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := database.NewDatabase(log, config.Database.PostgresURL, config.Database.MongoURL, config.Database.MongoDBName)
	if err != nil {
		log.Fatal("Failed to connect to databases", "error", err)
	}
	defer db.Close()

	if err := autoMigratePostgres(db); err != nil {
		log.Fatal("Failed to migrate database", "error", err)
	}
	if err := repositories.EnsureOfferIndexes(ctx, db.MongoDB); err != nil {
		log.Warn("Failed to create offer indexes", "error", err)
	}

	// Initialize Redis cache
	redisCache, err := cache.NewRedisCache(ctx, config.Redis.URL, config.Redis.Password, config.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisCache.Close()

	// Initialize Kafka
	kafkaProducer := messaging.NewKafkaProducer(config.Kafka.Brokers)
	defer kafkaProducer.Close()
	kafkaConsumer := messaging.NewKafkaConsumer(log, config.Kafka.Brokers, config.Kafka.GroupID)
	defer kafkaConsumer.Close()

	// Image storage
	images, err := storage.NewBucketStorage(ctx, storage.Config{
		Bucket:          config.Storage.Bucket,
		PublicBaseURL:   config.Storage.PublicBaseURL,
		EmulatorHost:    config.Storage.EmulatorHost,
		CredentialsFile: config.Storage.CredentialsFile,
	})
	if err != nil {
		log.Fatal("Failed to initialize image storage", "error", err)
	}
	defer images.Close()

	expressFee, err := decimal.NewFromString(config.Checkout.ExpressFee)
	if err != nil {
		log.Fatal("Invalid CHECKOUT_EXPRESS_FEE", "value", config.Checkout.ExpressFee, "error", err)
	}

	jwtManager := auth.NewJWTManager(config.JWT.SecretKey, config.JWT.ExpiryHours, config.JWT.RefreshExpiryDays)

	// Initialize repositories
	profileRepo := repositories.NewProfileRepository(db.Postgres)
	storeRepo := repositories.NewStoreRepository(db.Postgres)
	orderRepo := repositories.NewOrderRepository(db.Postgres)
	addressRepo := repositories.NewAddressRepository(db.Postgres)

	// MongoDB repositories
	offerRepo := repositories.NewOfferRepository(db.MongoDB)

	// Initialize services
	carts := cart.NewStore()
	addressService := services.NewAddressService(addressRepo)
	cartService := services.NewCartService(
		carts,
		offerRepo,
		storeRepo,
		orderRepo,
		addressService,
		kafkaProducer,
		services.DeliveryOptions(expressFee),
		log.With("component", "cart"),
	)
	profileService := services.NewProfileService(profileRepo, redisCache, images, kafkaProducer, log.With("component", "profile"))
	authService := services.NewAuthService(profileRepo, jwtManager, redisCache, cartService, log.With("component", "auth"))
	storeService := services.NewStoreService(storeRepo, profileService, images, log.With("component", "store"))
	catalogService := services.NewCatalogService(offerRepo, storeRepo, redisCache, log.With("component", "catalog"))
	orderService := services.NewOrderService(orderRepo)

	// Carts of sessions whose refresh token expired can never be reached again
	go cartService.SweepSessions(ctx, time.Hour, jwtManager.RefreshExpiry())

	// Keep every instance's view of profiles fresh
	go kafkaConsumer.Consume(ctx, messaging.TopicProfileEvents, profileService.HandleProfileEvent)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	storeHandler := handlers.NewStoreHandler(storeService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	addressHandler := handlers.NewAddressHandler(addressService)
	orderHandler := handlers.NewOrderHandler(orderService)

	// Initialize Gin router
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	// Global middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware(config.Server.AllowOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "healthy",
			"service":       "golang-storefront-backend",
			"open_sessions": carts.Sessions(),
		})
	})

	// API routes
	api := router.Group("/api/v1")

	authHandler.RegisterRoutes(api, authMiddleware)
	profileHandler.RegisterRoutes(api, authMiddleware)
	storeHandler.RegisterRoutes(api, authMiddleware)
	catalogHandler.RegisterRoutes(api, authMiddleware)
	cartHandler.RegisterRoutes(api, authMiddleware)
	addressHandler.RegisterRoutes(api, authMiddleware)
	orderHandler.RegisterRoutes(api, authMiddleware)

	server := &http.Server{
		Addr:              ":" + config.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}

func autoMigratePostgres(db *database.Database) error {
	return db.Postgres.AutoMigrate(
		&models.Profile{},
		&models.StoreCategory{},
		&models.Store{},
		&models.Address{},
		&models.Order{},
		&models.OrderDetail{},
		&models.Payment{},
	)
}
