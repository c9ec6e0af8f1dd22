package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redmonkez12/shop-api/internal/config"
	httpServer "github.com/redmonkez12/shop-api/internal/http"
	"github.com/redmonkez12/shop-api/internal/logging"
	"github.com/redmonkez12/shop-api/internal/storefront"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())

	handler := storefront.NewHandler(cfg.Storefront.Root, cfg.Storefront.Locales, cfg.Storefront.DefaultLocale)
	router := storefront.NewRouter(handler, logger, cfg.Server.TrustProxy)

	server := httpServer.NewServer(
		"storefront",
		":"+cfg.Storefront.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	for _, locale := range cfg.Storefront.Locales {
		logger.Info("locale available", "url", fmt.Sprintf("http://localhost:%s/%s", cfg.Storefront.Port, locale))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg.Server.ShutdownTimeout)
}
