package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"basketstore/internal/storefront/adapters"
	"basketstore/internal/storefront/application"
	"basketstore/internal/storefront/infrastructure"
	"basketstore/pkg/config"
	"basketstore/pkg/db"
	"basketstore/pkg/events"
	"basketstore/pkg/logger"
	"basketstore/pkg/middleware"
	"basketstore/pkg/rabbitmq"
)

func main() {
	// Load configuration
	cfg := config.LoadForService("STOREFRONT")
	cfg.HTTPPort = getEnvOrDefault("STOREFRONT_HTTP_PORT", "8081")
	cfg.DBName = getEnvOrDefault("STOREFRONT_DB_NAME", "storefront_db")

	// Initialize logger
	log := logger.New("storefront-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting storefront service")

	// Connect to database
	dbConn, err := db.NewConnection(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database: " + err.Error())
	}
	log.Info("connected to database")

	// Initialize repositories and run migrations
	customerRepo := adapters.NewPostgresCustomerRepository(dbConn)
	productRepo := adapters.NewPostgresProductRepository(dbConn)
	cartRepo := adapters.NewPostgresCartRepository(dbConn)
	orderRepo := adapters.NewPostgresOrderRepository(dbConn)
	for _, migrate := range []func() error{
		customerRepo.Migrate, productRepo.Migrate, cartRepo.Migrate, orderRepo.Migrate,
	} {
		if err := migrate(); err != nil {
			log.Fatal("failed to migrate database: " + err.Error())
		}
	}

	// Connect to RabbitMQ
	var pub *rabbitmq.Publisher
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be disabled: " + err.Error())
	} else {
		defer rabbitConn.Close()

		pub, err = rabbitmq.NewPublisher(rabbitConn, events.ExchangeStorefront, log)
		if err != nil {
			log.Warn("failed to create publisher: " + err.Error())
		}
	}
	publisher := adapters.NewRabbitMQPublisher(pub, log)

	// Initialize use cases
	ledger := adapters.NewStockLedger(log)
	customerUC := application.NewCustomerUseCase(customerRepo, publisher, log)
	productUC := application.NewProductUseCase(productRepo, log)
	cartUC := application.NewCartUseCase(cartRepo, productRepo, customerRepo, ledger, log)
	checkoutUC := application.NewCheckoutUseCase(cartRepo, orderRepo, productRepo, customerRepo, ledger, publisher, log)
	orderUC := application.NewOrderUseCase(orderRepo, ledger, log)

	// Start HTTP server
	httpHandler := infrastructure.NewHTTPHandler(customerUC, productUC, cartUC, checkoutUC, orderUC)
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	api := router.Group("/api/v1")
	httpHandler.RegisterRoutes(api)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		log.Info("HTTP server listening on :" + cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error: " + err.Error())
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error: " + err.Error())
	}

	log.Info("server stopped")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
