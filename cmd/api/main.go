package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"stripe-checkout-backend/internal/client"
	"stripe-checkout-backend/internal/config"
	"stripe-checkout-backend/internal/repository"
	"stripe-checkout-backend/internal/server"
	"stripe-checkout-backend/internal/service"
	"stripe-checkout-backend/internal/telemetry"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	telemetry.InitLogger(cfg.Log.Level, cfg.Log.Format)

	// no working store means no traffic: orders confirmed by stripe
	// would be lost
	db, err := client.InitSqliteClient(cfg.DatabasePath)
	if err != nil {
		slog.Error("Storage unavailable, refusing to start", "error", err)
		os.Exit(1)
	}

	gateway := client.NewStripeGateway(&cfg.Stripe)

	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	checkoutService := service.NewCheckoutService(gateway, orderRepo, webhookEventRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cfg, checkoutService)

	slog.Info("Starting HTTP server", "addr", serverAddr, "environment", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	slog.Info("Signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
}
