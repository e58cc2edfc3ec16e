// Command migrate applies the embedded database migrations and optionally
// seeds a user's vocabulary from a JSON file.
//
// Flags:
//
//	-seed  path to a JSON array of vocabulary items to insert
//	-user  owner UUID for -seed
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/vocabexport/internal/adapter/postgres"
	"github.com/heartmarshall/vocabexport/internal/adapter/postgres/vocabulary"
	"github.com/heartmarshall/vocabexport/internal/app"
	"github.com/heartmarshall/vocabexport/internal/config"
	"github.com/heartmarshall/vocabexport/internal/domain"
)

func main() {
	seedFlag := flag.String("seed", "", "JSON vocabulary file to insert after migrating")
	userFlag := flag.String("user", "", "owner of the seeded vocabulary")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	if !cfg.Database.Enabled() {
		logger.Error("DATABASE_DSN is not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, logger); err != nil {
		logger.Error("migrate", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *seedFlag == "" {
		return
	}

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		logger.Error("seed requires a valid -user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	data, err := os.ReadFile(*seedFlag)
	if err != nil {
		logger.Error("read seed file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var items []domain.VocabularyItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Error("decode seed file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	inserted, err := vocabulary.New(pool).Insert(ctx, userID, items)
	if err != nil {
		logger.Error("seed vocabulary", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seed completed",
		slog.Int("inserted", len(inserted)),
		slog.String("user_id", userID.String()),
	)
}
