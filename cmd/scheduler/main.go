package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/application"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/config"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/eventbus"
	httptransport "github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/http"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence/memory"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence/sqlite"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/testfixtures"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("scheduler exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	stores, cleanup, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	bus := eventbus.New()
	hub := ws.NewHub(logger, time.Now)
	defer hub.Close()

	resources := application.NewResourceService(stores.resources, bus, uuid.NewString, time.Now, logger)
	schedules := application.NewScheduleService(stores.schedules, stores.resources, bus, uuid.NewString, time.Now, logger)
	availability := application.NewAvailabilityService(stores.resources, stores.windows, stores.schedules, cfg.AvailabilityCacheTTL, time.Now, logger)

	bus.Subscribe(hub.Broadcast)
	bus.Subscribe(func(application.Event) { availability.InvalidateCache() })

	if cfg.Seed {
		seeder := struct {
			application.ResourceStore
			application.AvailabilityStore
		}{stores.resources, stores.windows}
		if err := testfixtures.Seed(ctx, seeder); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("demo dataset seeded")
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Resources:    httptransport.NewResourceHandler(resources, logger),
		Schedules:    httptransport.NewScheduleHandler(schedules, cfg.SuggestHorizon, logger),
		Availability: httptransport.NewAvailabilityHandler(availability, logger),
		EventStream:  hub,
		Health: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			fmt.Fprintln(w, `{"status":"ok"}`)
		},
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.HTTPPort)),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("scheduler listening", "port", cfg.HTTPPort, "storage", string(cfg.Storage))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// storeSet groups the persistence interfaces the services consume, so memory
// and sqlite backends wire identically.
type storeSet struct {
	resources application.ResourceStore
	schedules application.ScheduleStore
	windows   application.AvailabilityStore
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (storeSet, func(), error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		pool, err := sqlite.Open(ctx, cfg.SQLiteDSN)
		if err != nil {
			return storeSet{}, nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return storeSet{}, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		logger.Info("sqlite storage ready", "dsn", cfg.SQLiteDSN)
		return storeSet{
			resources: sqlite.NewResourceRepository(pool),
			schedules: sqlite.NewScheduleRepository(pool),
			windows:   sqlite.NewAvailabilityRepository(pool),
		}, func() { pool.Close() }, nil
	default:
		store := memory.Open()
		return storeSet{resources: store, schedules: store, windows: store}, func() {}, nil
	}
}
