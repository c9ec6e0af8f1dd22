package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/shop-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/shop-api/internal/cart"
	"github.com/redmonkez12/shop-api/internal/config"
	"github.com/redmonkez12/shop-api/internal/email"
	"github.com/redmonkez12/shop-api/internal/filestore"
	httpServer "github.com/redmonkez12/shop-api/internal/http"
	"github.com/redmonkez12/shop-api/internal/logging"
	"github.com/redmonkez12/shop-api/internal/metrics"
	"github.com/redmonkez12/shop-api/internal/order"
	"github.com/redmonkez12/shop-api/internal/product"
	"github.com/redmonkez12/shop-api/internal/ratelimit"
	"github.com/redmonkez12/shop-api/internal/user"
	"github.com/redmonkez12/shop-api/internal/verification"
)

// @title           Shop API
// @version         1.0
// @description     Catalog, cart, orders, accounts and email verification codes over flat JSON files.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"data_dir", cfg.Data.Dir,
	)

	// Initialize file store
	store, err := filestore.New(cfg.Data.Dir, filestore.Collections...)
	if err != nil {
		return fmt.Errorf("failed to initialize data dir: %w", err)
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Initialize verification code store
	codeStore, closeStore, err := initCodeStore(cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize verification store: %w", err)
	}
	defer closeStore()

	// Initialize email sender
	sender, err := email.NewSender(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}
	logger.Info("email provider selected", "provider", cfg.Email.Provider)

	// Initialize rate limiters
	emailLimiter := ratelimit.New(ratelimit.Config{Name: "send_email", PerMinute: cfg.RateLimit.EmailPerMinute}, collector)
	defer emailLimiter.Stop()
	loginLimiter := ratelimit.New(ratelimit.Config{Name: "login", PerMinute: cfg.RateLimit.LoginPerMinute}, collector)
	defer loginLimiter.Stop()

	// Initialize services
	orderService := order.NewService(store, collector)
	userService := user.NewService(user.NewRepository(store))
	verificationService := verification.NewService(codeStore, sender, cfg.Verification.CodeTTL, collector)

	// Initialize router
	router := httpServer.NewRouter(httpServer.RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  collector,
		Gatherer: registry,
		Handlers: []httpServer.RouteRegistrar{
			product.NewHandler(product.NewRepository(store)),
			cart.NewHandler(cart.NewRepository(store)),
			order.NewHandler(orderService),
			user.NewHandler(userService, loginLimiter.Middleware),
			verification.NewHandler(verificationService, emailLimiter.Middleware),
		},
	})

	// Initialize HTTP server
	server := httpServer.NewServer(
		"api",
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Serve until interrupted, then shut down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg.Server.ShutdownTimeout)
}

// initCodeStore keeps codes in Redis when REDIS_HOST is set and in memory otherwise
func initCodeStore(cfg config.RedisConfig, logger *logging.Logger) (verification.Store, func(), error) {
	if !cfg.Enabled() {
		logger.Info("verification codes kept in memory")
		return verification.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("verification codes kept in Redis", "addr", cfg.Address())
	return verification.NewRedisStore(client), func() { client.Close() }, nil
}
