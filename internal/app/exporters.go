package app

import (
	"log/slog"
	"time"

	"github.com/heartmarshall/vocabexport/internal/adapter/media"
	"github.com/heartmarshall/vocabexport/internal/adapter/postgres/vocabulary"
	"github.com/heartmarshall/vocabexport/internal/config"
	"github.com/heartmarshall/vocabexport/internal/exporter"
	"github.com/heartmarshall/vocabexport/internal/exporter/apkg"
	"github.com/heartmarshall/vocabexport/internal/service/export"
)

const mediaRetryDelay = 500 * time.Millisecond

// NewExportManager wires the three format exporters into an export.Manager.
// repo may be nil when the database is disabled.
func NewExportManager(cfg config.ExportConfig, logger *slog.Logger, repo *vocabulary.Repo) *export.Manager {
	fetcher := media.NewFetcher(logger, media.Config{
		Timeout:    cfg.MediaTimeout,
		MaxBytes:   cfg.MediaMaxBytes,
		RetryDelay: mediaRetryDelay,
	})

	apkgExporter := apkg.New(logger, fetcher, apkg.NewIDSequence(time.Now), time.Now, apkg.Config{
		MediaConcurrency: cfg.MediaConcurrency,
		TempDir:          cfg.TempDir,
	})
	jsonExporter := exporter.NewJSONExporter(time.Now)
	csvExporter := exporter.NewCSVExporter(time.Now)

	// A nil *vocabulary.Repo must not reach the manager as a non-nil interface.
	if repo == nil {
		return export.NewManager(logger, nil, cfg, apkgExporter, jsonExporter, csvExporter)
	}
	return export.NewManager(logger, repo, cfg, apkgExporter, jsonExporter, csvExporter)
}
