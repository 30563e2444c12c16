package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"basketstore/internal/warehouse/adapters"
	"basketstore/internal/warehouse/application"
	"basketstore/internal/warehouse/infrastructure"
	"basketstore/pkg/config"
	"basketstore/pkg/db"
	"basketstore/pkg/events"
	"basketstore/pkg/logger"
	"basketstore/pkg/middleware"
	"basketstore/pkg/rabbitmq"
)

func main() {
	// Load configuration
	cfg := config.LoadForService("WAREHOUSE")
	cfg.HTTPPort = getEnvOrDefault("WAREHOUSE_HTTP_PORT", "8082")
	cfg.DBName = getEnvOrDefault("WAREHOUSE_DB_NAME", "warehouse_db")

	// Initialize logger
	log := logger.New("warehouse-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting warehouse service")

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

	// Initialize repository and run migrations
	repo := adapters.NewPostgresBasketRepository(dbConn)
	if err := repo.Migrate(); err != nil {
		log.Fatal("failed to migrate database: " + err.Error())
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to RabbitMQ
	var pub *rabbitmq.Publisher
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be disabled: " + err.Error())
	} else {
		defer rabbitConn.Close()

		pub, err = rabbitmq.NewPublisher(rabbitConn, events.ExchangeWarehouse, log)
		if err != nil {
			log.Warn("failed to create publisher: " + err.Error())
		}

		// Consumer for BasketsSold events
		retry := rabbitmq.RetryPolicy{
			MaxAttempts:     cfg.RetryMaxAttempts,
			InitialInterval: cfg.RetryInitialInterval,
			Multiplier:      cfg.RetryMultiplier,
		}
		consumer, err := adapters.NewBasketsSoldConsumer(rabbitConn, retry, log)
		if err != nil {
			log.Warn("failed to create BasketsSold consumer: " + err.Error())
		} else if err := consumer.Start(ctx); err != nil {
			log.Warn("failed to start consumer: " + err.Error())
		}
	}
	publisher := adapters.NewRabbitMQPublisher(pub, log)

	// Initialize use case
	useCase := application.NewWarehouseUseCase(repo, publisher, log)

	// Start HTTP server
	httpHandler := infrastructure.NewHTTPHandler(useCase)
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

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
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
