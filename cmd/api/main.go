package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/assets"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/gateway"
	"storefront/internal/handler"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// purgeInterval is how often expired Postgres sessions are deleted.
const purgeInterval = 15 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Str("backend", cfg.Backend.APIURL).
		Str("session_backend", cfg.Session.Backend).
		Msg("starting storefront server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := gateway.NewClient(cfg.Backend.APIURL, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize backend client: %w", err)
	}

	resolver, err := assets.NewResolver(
		ctx,
		cfg.Backend.ImageURL,
		cfg.S3.Region,
		time.Duration(cfg.S3.PresignTTLSeconds)*time.Second,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize image resolver: %w", err)
	}

	var rdb *redis.Client
	if cfg.Cache.Enabled || cfg.Session.Backend == config.SessionBackendRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	var configCache cache.Cache = cache.Nop{}
	if cfg.Cache.Enabled {
		configCache = cache.NewRedisCache(rdb, cfg.Cache.TTL())
		logger.Info().Dur("ttl", cfg.Cache.TTL()).Msg("store configuration cache enabled")
	}

	sessions, closeSessions, err := newSessionManager(ctx, cfg, rdb, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	// Initialize services
	authService := service.NewAuthService(client, logger)
	addressService := service.NewAddressService(client, logger)
	cartService := service.NewCartService(client, resolver, logger)
	couponService := service.NewCouponService(client, logger)
	orderService := service.NewOrderService(client, logger)
	productService := service.NewProductService(client, resolver, logger)
	wishlistService := service.NewWishlistService(client, resolver, logger)
	configService := service.NewConfigService(client, configCache, logger)
	checkoutService := service.NewCheckoutService(
		cartService,
		addressService,
		couponService,
		orderService,
		configService,
		logger,
	)

	// Initialize router
	mux := router.New(router.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		Address:  handler.NewAddressHandler(addressService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Product:  handler.NewProductHandler(productService, logger),
		Wishlist: handler.NewWishlistHandler(wishlistService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, couponService, configService, logger),
	}, sessions, router.Options{
		AllowOrigins:     cfg.Server.CORSAllowOrigins,
		DefaultLocale:    cfg.Backend.DefaultLocale,
		SupportedLocales: cfg.Backend.SupportedLocales,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newSessionManager builds the session manager for the configured backend.
// The returned func releases whatever the backend holds open.
func newSessionManager(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) (session.Manager, func(), error) {
	opts := session.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		TTL:    cfg.Session.TTL(),
	}

	switch cfg.Session.Backend {
	case config.SessionBackendPostgres:
		if err := database.RunMigrations(cfg.Database.ConnectionString(), logger); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		repo := repository.NewPostgresSessionRepository(pool, logger)
		go purgeExpiredSessions(ctx, repo, logger)

		return session.NewServerManager(repo, opts, logger), pool.Close, nil

	case config.SessionBackendRedis:
		repo := repository.NewRedisSessionRepository(rdb, logger)
		return session.NewServerManager(repo, opts, logger), func() {}, nil

	default:
		manager, err := session.NewCookieManager(cfg.Session.Secret, opts, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize session cookies: %w", err)
		}
		return manager, func() {}, nil
	}
}

// purgeExpiredSessions deletes expired sessions until ctx is done.
func purgeExpiredSessions(ctx context.Context, purger repository.ExpiredSessionPurger, logger zerolog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := purger.PurgeExpired(ctx, now)
			if err != nil {
				logger.Error().Err(err).Msg("failed to purge expired sessions")
				continue
			}
			if n > 0 {
				logger.Info().Int64("purged", n).Msg("expired sessions purged")
			}
		}
	}
}
