// Command export builds a single export file from a vocabulary snapshot.
// The snapshot is read either from a JSON file or from a user's stored
// vocabulary in the database.
//
// Flags:
//
//	-in      path to a JSON array of vocabulary items
//	-user    UUID of the user whose stored vocabulary is exported
//	-format  apkg, json or csv (default: apkg)
//	-deck    deck name (default: configured default deck)
//	-audio   embed pronunciation audio (APKG only)
//	-lang    only export items in this language (-user mode)
//	-out     output directory (default: configured output dir)
//
// Exactly one of -in and -user must be set.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/vocabexport/internal/adapter/postgres"
	"github.com/heartmarshall/vocabexport/internal/adapter/postgres/vocabulary"
	"github.com/heartmarshall/vocabexport/internal/app"
	"github.com/heartmarshall/vocabexport/internal/config"
	"github.com/heartmarshall/vocabexport/internal/domain"
)

func main() {
	inFlag := flag.String("in", "", "path to a JSON vocabulary file")
	userFlag := flag.String("user", "", "export the stored vocabulary of this user")
	formatFlag := flag.String("format", string(domain.FormatAPKG), "export format: apkg, json or csv")
	deckFlag := flag.String("deck", "", "deck name")
	audioFlag := flag.Bool("audio", false, "embed pronunciation audio")
	langFlag := flag.String("lang", "", "language filter for -user")
	outFlag := flag.String("out", "", "output directory")
	flag.Parse()

	if (*inFlag == "") == (*userFlag == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -in and -user is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	format, err := domain.ParseFormatID(*formatFlag)
	if err != nil {
		logger.Error("parse format", slog.String("error", err.Error()))
		os.Exit(1)
	}

	outDir := cfg.Export.OutputDir
	if *outFlag != "" {
		outDir = *outFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	opts := domain.ExportOptions{Format: format, DeckName: *deckFlag, IncludeAudio: *audioFlag}

	manager := app.NewExportManager(cfg.Export, logger, nil)

	var res domain.ExportResult
	if *inFlag != "" {
		items, err := readVocabulary(*inFlag)
		if err != nil {
			logger.Error("read vocabulary", slog.String("error", err.Error()), slog.String("path", *inFlag))
			os.Exit(1)
		}
		res = manager.ExportVocabulary(ctx, items, opts)
	} else {
		res, err = exportForUser(ctx, cfg, logger, *userFlag, *langFlag, opts)
		if err != nil {
			logger.Error("export stored vocabulary", slog.String("error", err.Error()), slog.String("user_id", *userFlag))
			os.Exit(1)
		}
	}

	path, err := manager.SaveResult(outDir, res)
	if err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("export written",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("bytes", len(res.Blob)),
	)
}

func readVocabulary(path string) ([]domain.VocabularyItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []domain.VocabularyItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return items, nil
}

func exportForUser(ctx context.Context, cfg *config.Config, logger *slog.Logger, rawUser, lang string, opts domain.ExportOptions) (domain.ExportResult, error) {
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return domain.ExportResult{}, fmt.Errorf("parse -user: %w", err)
	}
	if !cfg.Database.Enabled() {
		return domain.ExportResult{}, errors.New("-user requires DATABASE_DSN")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return domain.ExportResult{}, fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	var filter domain.VocabularyFilter
	if lang = strings.TrimSpace(lang); lang != "" {
		filter.Language = &lang
	}

	return app.NewExportManager(cfg.Export, logger, vocabulary.New(pool)).ExportForUser(ctx, userID, opts, filter)
}
