package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shindakun/storefront/internal/auth"
	"github.com/shindakun/storefront/internal/authapi"
	"github.com/shindakun/storefront/internal/config"
	"github.com/shindakun/storefront/internal/metrics"
	"github.com/shindakun/storefront/internal/storage"
	"github.com/shindakun/storefront/internal/version"
	"github.com/shindakun/storefront/internal/web"
	"github.com/shindakun/storefront/internal/web/handlers"
)

func main() {
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lshortfile)
	logger.Printf("Starting Storefront %s...", version.GetFullVersion())

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Println("Configuration loaded successfully")

	logger.Printf("Initializing database at: %s", cfg.Database.Path)
	db, err := storage.InitDB(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	sessionManager := auth.InitSessions(
		cfg.Session.Secret,
		cfg.Session.MaxAge,
		cfg.CookieSecure(),
		cfg.CookieSameSite(),
		db,
	)
	if n, err := sessionManager.PurgeExpired(context.Background()); err != nil {
		logger.Printf("Failed to purge expired sessions: %v", err)
	} else if n > 0 {
		logger.Printf("Purged %d expired session(s)", n)
	}

	authClient := authapi.NewClient(
		cfg.Auth.Endpoint,
		authapi.WithTimeout(cfg.AuthTimeout()),
		authapi.WithUserAgent(userAgent(cfg)),
	)
	logger.Printf("Auth endpoint: %s", authClient.Endpoint())

	m := metrics.New()

	h, err := handlers.New(db, sessionManager, authClient, m, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize handlers: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      web.NewRouter(cfg, h, sessionManager, m, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeLoop(ctx, sessionManager, logger)

	go func() {
		logger.Printf("Server starting on %s", cfg.GetBaseURL())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server exited successfully")
}

func userAgent(cfg *config.Config) string {
	if cfg.Auth.UserAgent != "" {
		return cfg.Auth.UserAgent
	}
	return "storefront/" + version.GetVersion()
}

// purgeLoop drops expired sessions hourly until ctx is cancelled
func purgeLoop(ctx context.Context, sm *auth.SessionManager, logger *log.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := sm.PurgeExpired(ctx); err != nil {
				logger.Printf("Failed to purge expired sessions: %v", err)
			} else if n > 0 {
				logger.Printf("Purged %d expired session(s)", n)
			}
		}
	}
}
