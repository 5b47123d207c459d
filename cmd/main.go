package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/YelzhanWeb/powerpulse/internal/adapter/logger"
	"github.com/YelzhanWeb/powerpulse/internal/adapter/postgres"
	"github.com/YelzhanWeb/powerpulse/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/powerpulse/internal/adapter/sqlite"
	"github.com/YelzhanWeb/powerpulse/internal/adapter/storage"
	"github.com/YelzhanWeb/powerpulse/internal/app/configurator"
	"github.com/YelzhanWeb/powerpulse/internal/app/suggestion"
	"github.com/YelzhanWeb/powerpulse/internal/config"
	"github.com/YelzhanWeb/powerpulse/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/powerpulse/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/powerpulse/internal/adapter/http"
)

func main() {
	// Parse command-line flags
	mode := flag.String("mode", "configurator", "Service mode: configurator, notification-subscriber")
	port := flag.Int("port", 3000, "HTTP port")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config")
	page := flag.String("page", "powerpulse", "Configured page to serve")
	prefetch := flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	flag.Parse()

	// .env is optional, real environment wins
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to read .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lgr := logger.New(*mode)

	switch *mode {
	case "configurator":
		runConfigurator(ctx, cfg, lgr, *page, *port)

	case "notification-subscriber":
		runNotificationSubscriber(ctx, cfg, lgr, *prefetch)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runConfigurator(ctx context.Context, cfg *config.Config, lgr logger.Logger, page string, port int) {
	catalog, err := cfg.Catalog(page)
	if err != nil {
		log.Fatalf("Failed to build price table: %v", err)
	}

	store, closeStore, err := openStorage(ctx, cfg, lgr)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	var publisher interfaces.ChangePublisher
	if cfg.RabbitMQ.Enabled() {
		mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer mqConn.Close()

		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
		})
		publisher = rabbitmq.NewPublisher(mqConn)
	}

	suggestions := buildSuggestions(cfg.Pages[page].Suggestions, catalog.Flavors)

	service := configurator.NewService(store, catalog, publisher, suggestions, lgr)
	configuratorHandler := httpAdapter.NewConfiguratorHandler(service, lgr)

	// Setup HTTP server
	mux := http.NewServeMux()
	configuratorHandler.Register(mux)

	// Apply middleware
	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Configurator for page %s started on port %d", page, port), "startup", map[string]interface{}{
		"port":    port,
		"page":    page,
		"storage": cfg.Storage.Driver,
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		lgr.Info("shutdown_initiated", "Shutting down Configurator", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func openStorage(ctx context.Context, cfg *config.Config, lgr logger.Logger) (interfaces.Storage, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		lgr.Info("storage_opened", "Opened SQLite storage", "startup", map[string]interface{}{
			"path": cfg.Storage.Path,
		})
		return store, func() { store.Close() }, nil

	case config.StoragePostgres:
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})
		return postgres.NewStorageRepository(db), db.Close, nil

	default:
		lgr.Info("storage_opened", "Using in-memory storage, orders are lost on restart", "startup", nil)
		return storage.NewInMemoryStorage(), func() {}, nil
	}
}

func buildSuggestions(cfg config.SuggestionConfig, flavors []string) suggestion.Provider {
	switch cfg.Mode {
	case config.SuggestionsFixed:
		return suggestion.Fixed{Combos: cfg.Combos}
	case config.SuggestionsRandom:
		return suggestion.NewRandom(flavors, cfg.Count, cfg.Size, uint64(time.Now().UnixNano()))
	default:
		return suggestion.None{}
	}
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger, prefetch int) {
	if !cfg.RabbitMQ.Enabled() {
		log.Fatal("rabbitmq.host is required for notification-subscriber mode")
	}

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, prefetch, lgr)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr)

	lgr.Info("service_started", "Notification Subscriber started", "startup", map[string]interface{}{
		"host":     cfg.RabbitMQ.Host,
		"prefetch": prefetch,
	})

	if err := consumer.ConsumeOrderChanges(ctx, notificationHandler.HandleNotification); err != nil && !errors.Is(err, context.Canceled) {
		lgr.Error("consumer_error", "Error consuming order changes", "runtime", nil, err)
	}

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
}
