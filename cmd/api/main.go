// Package main is the entry point for the CaravanShare API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/caravan-share/internal/auth"
	"github.com/pkordes/caravan-share/internal/cache"
	"github.com/pkordes/caravan-share/internal/config"
	"github.com/pkordes/caravan-share/internal/domain"
	"github.com/pkordes/caravan-share/internal/handler"
	"github.com/pkordes/caravan-share/internal/jobs"
	"github.com/pkordes/caravan-share/internal/ledger"
	"github.com/pkordes/caravan-share/internal/notify"
	"github.com/pkordes/caravan-share/internal/pricing"
	"github.com/pkordes/caravan-share/internal/realtime"
	"github.com/pkordes/caravan-share/internal/repo"
	"github.com/pkordes/caravan-share/internal/seed"
	"github.com/pkordes/caravan-share/internal/service"
	"github.com/pkordes/caravan-share/internal/store"
	"github.com/pkordes/caravan-share/internal/validation"
	"github.com/pkordes/caravan-share/migrations"
)

const ledgerQueueSize = 256

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores -----------------------------------------------------------
	users := store.NewUserStore()
	caravans := store.New[domain.Caravan]()
	reservations := store.NewReservationStore()
	reviews := store.New[domain.Review]()

	if cfg.SeedFile != "" {
		fx, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		nUsers, nCaravans, err := fx.Apply(users, caravans)
		if err != nil {
			return err
		}
		slog.Info("seed loaded", "file", cfg.SeedFile, "users", nUsers, "caravans", nCaravans)
	}

	strategy, err := pricing.Parse(cfg.DiscountStrategy)
	if err != nil {
		return err
	}

	// --- Notifications ----------------------------------------------------
	// Redis holds the offline queue and idempotency keys when configured;
	// otherwise both live in memory and die with the process.
	var (
		queue notify.Queue        = notify.NewMemoryQueue()
		idem  handler.Idempotency = cache.NewMemoryIdempotency(cache.IdempotencyTTL, time.Now)
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		queue = cache.NewRedisQueue(rdb)
		idem = cache.NewRedisIdempotency(rdb, cache.IdempotencyTTL)
		slog.Info("redis connection established", "addr", cfg.RedisAddr)
	}

	hub := realtime.NewHub(cfg.CORSOrigins, logger)
	dispatcher := notify.NewDispatcher(hub, hub, queue, time.Now, logger)
	hub.OnConnect(func(ctx context.Context, userID int64) {
		if _, err := dispatcher.Flush(ctx, userID); err != nil {
			slog.WarnContext(ctx, "flush on connect failed", "user_id", userID, "error", err)
		}
	})

	fanout := notify.NewFanOut(logger)
	fanout.Attach("user", notify.NewUserNotifier(dispatcher))
	fanout.Attach("host", notify.NewHostNotifier(dispatcher))
	fanout.Attach("stock", notify.NewStockObserver(logger))

	// --- Database ---------------------------------------------------------
	// The Postgres ledger is optional: without DATABASE_URL bookings are
	// kept in memory only and the history route is not mounted.
	var history handler.HistoryReader
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("create database pool: %w", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		if err := migrate(ctx, pool); err != nil {
			return err
		}
		slog.Info("database connection established")

		ledgerRepo := repo.NewLedgerRepo(pool)
		recorder := ledger.NewRecorder(ledgerRepo, cfg.LedgerWorkers, ledgerQueueSize, logger)
		defer recorder.Close()
		fanout.Attach("ledger", recorder)
		history = service.NewHistoryService(ledgerRepo)
	}

	// --- Services ---------------------------------------------------------
	bookings := service.NewReservationService(service.ReservationDeps{
		Users:        users,
		Caravans:     caravans,
		Reservations: reservations,
		Validator:    validation.Default(users, caravans, reservations, time.Now),
		Rates:        pricing.FlatRate{Rate: cfg.DailyRate},
		Strategy:     strategy,
		Publisher:    fanout,
		Log:          logger,
	})

	// --- Jobs -------------------------------------------------------------
	scheduler := jobs.NewScheduler(logger)
	redelivery := jobs.NewRedelivery(hub, dispatcher, logger)
	if err := scheduler.Add("redelivery", cfg.RedeliverySchedule, func(ctx context.Context) { redelivery.Run(ctx) }); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	go hub.Run(ctx)

	// --- Router -----------------------------------------------------------
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, time.Now)
	srv := handler.NewServer(handler.Deps{
		Reservations:    bookings,
		Caravans:        service.NewCaravanService(caravans),
		Users:           service.NewUserService(users),
		Reviews:         service.NewReviewService(reviews, caravans, reservations, time.Now, logger),
		Recommendations: service.NewRecommendationService(caravans),
		Tokens:          issuer,
		Idempotency:     idem,
		Sockets:         hub,
		History:         history,
		Log:             logger,
	})
	router := handler.Router(srv, handler.RouterConfig{
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Verifier:     issuer,
		Log:          logger,
	})

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// Websocket connections manage their own deadlines after the upgrade.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "discount", cfg.DiscountStrategy)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	// Give in-flight requests up to 15 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// migrate applies the embedded migrations through a database/sql handle
// borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "versions", applied)
	return nil
}
