package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/config"
	deliveryHttp "github.com/Abhishek-Anvekar/healthcare/internal/delivery/http"
	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/http/handler"
	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/http/middleware"
	"github.com/Abhishek-Anvekar/healthcare/internal/gateway"
	"github.com/Abhishek-Anvekar/healthcare/internal/infrastructure/cache"
	"github.com/Abhishek-Anvekar/healthcare/internal/infrastructure/database"
	infraMessaging "github.com/Abhishek-Anvekar/healthcare/internal/infrastructure/messaging"
	"github.com/Abhishek-Anvekar/healthcare/internal/messaging"
	"github.com/Abhishek-Anvekar/healthcare/internal/repository"
	"github.com/Abhishek-Anvekar/healthcare/internal/usecase"
	"github.com/Abhishek-Anvekar/healthcare/pkg/validator"

	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// How long processed message ids are remembered for consumer idempotency.
const dedupTTL = 24 * time.Hour

// App holds all dependencies for the application
type App struct {
	Config           *config.Config
	DB               *gorm.DB
	RedisClient      *redis.Client
	RabbitConn       *amqp091.Connection
	Server           *http.Server
	OutboxDispatcher *messaging.OutboxDispatcher
	Consumer         *messaging.BookRequestConsumer

	consumerCancel context.CancelFunc
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize RabbitMQ
	rabbitConn, err := infraMessaging.NewRabbitMQConnection(cfg.RabbitMQ)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	app.RabbitConn = rabbitConn

	if err := app.initialize(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initialize wires repositories, gateways, usecases, messaging, and the HTTP
// server together.
func (app *App) initialize() error {
	cfg := app.Config
	log := logrus.StandardLogger()

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository(app.DB)
	outboxRepo := repository.NewOutboxRepository(app.DB)
	unlockFailureRepo := repository.NewUnlockFailureRepository(app.DB)
	parkedMessageRepo := repository.NewParkedMessageRepository(app.DB)

	// Initialize outbound gateways
	profileGateway := gateway.NewHTTPProfileGateway(cfg.Services, log)
	slotGateway := gateway.NewHTTPSlotGateway(cfg.Services, log)

	// Initialize usecases
	appointmentUsecase := usecase.NewAppointmentUsecase(log, appointmentRepo, unlockFailureRepo, profileGateway, slotGateway, cfg.Topics)

	// Initialize messaging
	publisher, err := messaging.NewRabbitPublisher(app.RabbitConn, cfg.RabbitMQ.Exchange)
	if err != nil {
		return fmt.Errorf("failed to initialize publisher: %w", err)
	}
	app.OutboxDispatcher = messaging.NewOutboxDispatcher(log, outboxRepo, publisher,
		cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, cfg.Outbox.MaxAttempts)

	dedup := messaging.NewRedisDeduper(app.RedisClient, dedupTTL, log)
	consumer, err := messaging.NewBookRequestConsumer(log, app.RabbitConn, appointmentUsecase,
		parkedMessageRepo, dedup, cfg.RabbitMQ.Exchange, cfg.Topics.BookRequest)
	if err != nil {
		return fmt.Errorf("failed to initialize consumer: %w", err)
	}
	app.Consumer = consumer

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)

	// Initialize middleware
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(appointmentHandler, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
	return nil
}

// Run starts the consumer, outbox dispatcher, and HTTP server, then blocks
// until shutdown.
func (app *App) Run() {
	consumerCtx, cancel := context.WithCancel(context.Background())
	app.consumerCancel = cancel

	if err := app.Consumer.Start(consumerCtx); err != nil {
		logrus.Fatalf("Failed to start book request consumer: %v", err)
	}
	app.OutboxDispatcher.Start()

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Stop background workers before closing connections
	if app.consumerCancel != nil {
		app.consumerCancel()
	}
	if app.Consumer != nil {
		app.Consumer.Stop()
	}
	if app.OutboxDispatcher != nil {
		app.OutboxDispatcher.Stop()
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, rabbitmq)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	if app.RabbitConn != nil {
		app.RabbitConn.Close()
	}
}
