package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/refriproject/refri-backend/api/controllers"
	"github.com/refriproject/refri-backend/api/routes"
	"github.com/refriproject/refri-backend/internal/auth"
	"github.com/refriproject/refri-backend/internal/inventory"
	"github.com/refriproject/refri-backend/internal/suggest"
	"github.com/refriproject/refri-backend/internal/users"
	"github.com/refriproject/refri-backend/pkg/auth/session"
	"github.com/refriproject/refri-backend/pkg/config"
	"github.com/refriproject/refri-backend/pkg/db"
	"github.com/refriproject/refri-backend/pkg/logger"
	"github.com/refriproject/refri-backend/pkg/migrate"
	"github.com/refriproject/refri-backend/pkg/openrouter"
	"github.com/refriproject/refri-backend/pkg/redis"
)

// inventoryListener warms the in-memory snapshot when a session opens and
// drops it when the session ends.
type inventoryListener struct {
	svc  inventory.Service
	logg *logger.Logger
}

func (l *inventoryListener) SessionStarted(ctx context.Context) {
	if err := l.svc.Refresh(ctx); err != nil {
		l.logg.Error(ctx, "failed to warm inventory snapshot", err)
	}
}

func (l *inventoryListener) SessionEnded() {
	l.svc.Clear()
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:        inventory.NewRepository(dbClient.DB()),
		Store:       inventory.NewStore(),
		HorizonDays: cfg.Inventory.HorizonDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Listener:       &inventoryListener{svc: inventoryService, logg: logg},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	openrouterClient, err := openrouter.NewClient(
		cfg.OpenRouter.APIKey,
		openrouter.WithBaseURL(cfg.OpenRouter.BaseURL),
		openrouter.WithModel(cfg.OpenRouter.Model),
		openrouter.WithTimeout(cfg.OpenRouter.RequestTimeout),
		openrouter.WithAttribution(cfg.OpenRouter.Referer, "Refri"),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create openrouter client", err)
		os.Exit(1)
	}

	suggestService, err := suggest.NewService(suggest.ServiceParams{
		Inventory: inventoryService,
		Completer: openrouterClient,
		Cache:     redisClient,
		CacheTTL:  cfg.OpenRouter.CacheTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create suggestion service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		Handler: routes.NewRouter(
			cfg,
			logg,
			map[string]controllers.Pinger{"db": dbClient, "redis": redisClient},
			sessionManager,
			authService,
			inventoryService,
			suggestService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
