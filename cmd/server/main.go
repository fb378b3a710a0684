package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/database"
	"github.com/stemsi/attendance-backend/internal/handler"
	"github.com/stemsi/attendance-backend/internal/logger"
	"github.com/stemsi/attendance-backend/internal/queue"
	"github.com/stemsi/attendance-backend/internal/repository"
	"github.com/stemsi/attendance-backend/internal/repository/memstore"
	"github.com/stemsi/attendance-backend/internal/router"
	"github.com/stemsi/attendance-backend/internal/service"
	"github.com/stemsi/attendance-backend/internal/validator"
	"github.com/stemsi/attendance-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Msg("Starting attendance backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Stores ────────────────────────────────────────────────────────
	var (
		stores service.Stores
		tx     service.Transactor
		sink   worker.EventSink
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := memstore.New()
		stores, tx = mem.Stores(), mem
		log.Warn().Msg("Using in-memory store, data is lost on exit")
	case config.StoreDriverPostgres:
		iso, err := database.ParseIsoLevel(cfg.TxIsolation)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid TX_ISOLATION")
		}
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		stores = service.NewPgStores(pool)
		tx = service.NewPgTransactor(pool, iso, log)
		sink = repository.NewEventRepository(pool)
	default:
		log.Fatal().Str("store", cfg.StoreDriver).Msg("Unknown STORE_DRIVER")
	}

	// ─── Event Queue ───────────────────────────────────────────────────
	var events service.EventPublisher = service.NopPublisher{}
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	close(workerDone)

	if cfg.EventsEnabled() {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		events = queue.NewRedisPublisher(rdb, cfg.EventQueue)

		if sink != nil {
			eventWorker := worker.NewEventWorker(rdb, sink, cfg.EventQueue, log)
			workerDone = make(chan struct{})
			go func() {
				defer close(workerDone)
				eventWorker.Start(workerCtx)
			}()
		} else {
			log.Warn().Msg("No audit sink for this store, events stay queued")
		}
	}

	// ─── Services and Handlers ─────────────────────────────────────────
	studentService := service.NewStudentService(stores, tx, events, log)
	attendanceService := service.NewAttendanceService(stores, tx, events, log)

	handlers := &router.Handlers{
		Student:    handler.NewStudentHandler(studentService, cfg.MaxUploadBytes),
		Attendance: handler.NewAttendanceHandler(attendanceService),
	}

	r := router.SetupRouter(handlers, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop the worker after HTTP so late events still get drained.
	workerCancel()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Event worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

