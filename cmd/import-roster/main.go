package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/database"
	"github.com/stemsi/attendance-backend/internal/logger"
	"github.com/stemsi/attendance-backend/internal/service"
)

func main() {
	var path string
	flag.StringVar(&path, "file", "", "Path to the .xlsx roster (header row, then name, class, absences)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "import_roster")

	if path == "" {
		flag.Usage()
		os.Exit(2)
	}

	iso, err := database.ParseIsoLevel(cfg.TxIsolation)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid TX_ISOLATION")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	file, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open roster")
	}
	defer file.Close()

	svc := service.NewStudentService(
		service.NewPgStores(pool),
		service.NewPgTransactor(pool, iso, log),
		service.NopPublisher{},
		log,
	)

	result, err := svc.ImportRoster(ctx, file)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	for _, row := range result.Skipped {
		log.Warn().Int("row", row).Msg("Skipped row")
	}
	log.Info().
		Int("created", len(result.Created)).
		Int("skipped", len(result.Skipped)).
		Msg("Roster imported")
}
