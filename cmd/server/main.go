package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tax-calculator/internal/config"
	"tax-calculator/internal/handlers"
	"tax-calculator/internal/kafka"
	"tax-calculator/internal/logger"
	"tax-calculator/internal/models"
	"tax-calculator/internal/redis"
	"tax-calculator/internal/services"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	mux      *http.ServeMux
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting tax calculator server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	app.shutdown(ctx)
	app.log.Info("Server exited")
}

// shutdown останавливает компоненты в обратном порядке
func (a *application) shutdown(ctx context.Context) {
	if a.consumer != nil {
		if err := a.consumer.Stop(); err != nil {
			a.log.WithError(err).Error("Failed to stop Kafka consumer")
		}
	}
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.log.WithError(err).Error("Server forced to shutdown")
		}
	}
	_ = a.producer.Close()
	_ = a.redis.Close()
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	app := &application{cfg: cfg, log: log, redis: redisClient}

	// интерфейсы остаются nil, если Kafka выключена
	var (
		publisher   services.QuotePublisher
		requests    handlers.QuoteRequestPublisher
		kafkaHealth handlers.KafkaHealthFunc
	)

	if cfg.Kafka.Enabled {
		producer, err := newKafkaProducer(&cfg.Kafka, log)
		if err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.producer = producer
		publisher = producer
		requests = producer
		kafkaHealth = kafkaHealthCheck
	}

	quoteService, err := services.NewQuoteService(log, publisher, redisClient, &cfg.Calculator, cfg.Server.MaxBatchSize)
	if err != nil {
		app.shutdown(context.Background())
		return nil, fmt.Errorf("quote service: %w", err)
	}
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	if cfg.Kafka.Enabled {
		consumer, err := newKafkaConsumer(&cfg.Kafka, log)
		if err != nil {
			app.shutdown(context.Background())
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		app.consumer = consumer

		registerEventHandlers(consumer, quoteService, log)
		if err := consumer.Start(); err != nil {
			app.shutdown(context.Background())
			return nil, fmt.Errorf("kafka consumer start: %w", err)
		}
	}

	quoteHandler := handlers.NewQuoteHandler(quoteService, requests, rateLimiter, log)
	healthHandler := handlers.NewHealthHandler(redisClient, cfg.Kafka.Brokers, kafkaHealth)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit)

	app.mux = setupRoutes(quoteHandler, healthHandler, rateLimitHandler, rateLimiter, log)
	app.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return app, nil
}

// setupRoutes настраивает маршруты HTTP сервера
func setupRoutes(quoteHandler *handlers.QuoteHandler, healthHandler *handlers.HealthHandler, rateLimitHandler *handlers.RateLimitHandler, rateLimiter *services.RateLimiter, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	applyAPI := func(h http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.RateLimitMiddleware(rateLimiter, log, h))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(healthHandler.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(healthHandler.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(healthHandler.Liveness))

	// Quote endpoints
	mux.HandleFunc("/api/quotes", applyAPI(quoteHandler.CreateQuote))
	mux.HandleFunc("/api/quotes/async", applyAPI(quoteHandler.EnqueueQuote))
	// пакет списывает лимит сам, по числу позиций
	mux.HandleFunc("/api/quotes/batch", corsMiddleware(quoteHandler.CreateBatch))

	// Rate limit status
	mux.HandleFunc("/api/rate-limit/status", corsMiddleware(rateLimitHandler.Status))

	mux.HandleFunc("/", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "Route not found")
	}))

	return mux
}

// registerEventHandlers регистрирует обработчики событий Kafka
func registerEventHandlers(consumer *kafka.Consumer, quoteService *services.QuoteService, log *logger.Logger) {
	consumer.RegisterHandler(models.EventTypeQuoteRequested, quoteService.HandleQuoteRequested)

	log.WithField("handlers", consumer.HandlerCount()).Info("Kafka event handlers registered")
}

// corsMiddleware и другие helper функции
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	type errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
