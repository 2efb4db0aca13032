package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"table-order-system/internal/config"
	"table-order-system/internal/database"
	"table-order-system/internal/logger"
	"table-order-system/internal/messaging"
	"table-order-system/internal/services/catalog"
	"table-order-system/internal/services/order"
	"table-order-system/internal/services/pos"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		port       = flag.Int("port", 0, "HTTP port (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New("table-order-system")
	requestID := logger.GenerateRequestID()

	log.Info("service_started", "Starting table order system", requestID, map[string]interface{}{
		"port":        cfg.Server.Port,
		"pos_enabled": cfg.Pos.Enabled,
		"messaging":   cfg.RabbitMQ.Enabled,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	if err := run(ctx, cfg, log, requestID); err != nil {
		log.Error("service_failed", "Service failed", requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, requestID string) error {
	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// The status notifier is optional: without RabbitMQ configured, status
	// changes are only recorded in the database.
	var notifier order.StatusNotifier
	if cfg.RabbitMQ.Enabled {
		conn, err := messaging.New(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()

		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)
		notifier = messaging.NewPublisher(conn, log)
	}

	catalogService := catalog.NewService(catalog.NewPostgresStore(db), log)
	catalogHandler := catalog.NewHandler(catalogService, log)

	orderService := order.NewService(order.NewPostgresStore(db), notifier, log)
	orderHandler := order.NewHandler(orderService, db, log)

	posService := pos.NewService(pos.NewPostgresStore(db), cfg.Pos.Enabled, log)
	posHandler := pos.NewHandler(posService, log)

	mux := http.NewServeMux()
	catalogHandler.Register(mux)
	orderHandler.Register(mux)
	posHandler.Register(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		log.Info("server_listening", fmt.Sprintf("HTTP server listening on port %d", cfg.Server.Port), requestID, map[string]interface{}{
			"port": cfg.Server.Port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}
