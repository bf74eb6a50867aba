package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/kioskeats-backend/api/routes"
	"github.com/angelmondragon/kioskeats-backend/internal/admin"
	"github.com/angelmondragon/kioskeats-backend/internal/catalog"
	"github.com/angelmondragon/kioskeats-backend/internal/kiosk"
	"github.com/angelmondragon/kioskeats-backend/internal/menuimport"
	"github.com/angelmondragon/kioskeats-backend/internal/menus"
	"github.com/angelmondragon/kioskeats-backend/pkg/config"
	"github.com/angelmondragon/kioskeats-backend/pkg/db"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
	"github.com/angelmondragon/kioskeats-backend/pkg/metrics"
	"github.com/angelmondragon/kioskeats-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "kioskeats"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "kioskeats",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if cfg.FeatureFlags.AutoMigrate {
		if err := dbClient.AutoMigrate(context.Background()); err != nil {
			logg.Error(context.Background(), "failed to migrate library schema", err)
			os.Exit(1)
		}
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	kioskMetrics := metrics.NewKioskMetrics(registry)

	catalogStore := catalog.NewStore()

	menuRepo, err := menus.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create menu repository", err)
		os.Exit(1)
	}
	menuService, err := menus.NewService(menuRepo, catalogStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create menu service", err)
		os.Exit(1)
	}

	publishLatestMenu(context.Background(), menuService, logg)

	importService, err := menuimport.NewService(
		menuRepo,
		menuimport.NewClient(cfg.GloriaFood),
		logg,
		kioskMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(cfg.Pin, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	kioskManager, err := kiosk.NewManager(
		redisClient,
		catalogStore,
		cfg.Session,
		cfg.FeatureFlags.EnforceMinSelection,
		logg,
		kioskMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create kiosk manager", err)
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
	logg.Info(ctx, "starting kiosk api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Catalog:       catalogStore,
			KioskManager:  kioskManager,
			MenuService:   menuService,
			ImportService: importService,
			AdminService:  adminService,
			Metrics:       kioskMetrics,
			Registry:      registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "kiosk api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// publishLatestMenu restores the most recently updated library entry as
// the live menu after a restart, so the kiosk comes back up serving.
func publishLatestMenu(ctx context.Context, svc *menus.Service, logg *logger.Logger) {
	summaries, err := svc.List(ctx)
	if err != nil {
		logg.Warn(ctx, "could not list menu library at startup")
		return
	}
	if len(summaries) == 0 {
		logg.Info(ctx, "menu library is empty, waiting for an import")
		return
	}
	if _, err := svc.Publish(ctx, summaries[0].ID); err != nil {
		logg.Error(ctx, "failed to publish startup menu", err)
	}
}
