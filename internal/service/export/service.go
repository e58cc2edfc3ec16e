// Package export dispatches vocabulary export requests to the registered
// format exporters and delivers the produced files.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/vocabexport/internal/config"
	"github.com/heartmarshall/vocabexport/internal/domain"
	"github.com/heartmarshall/vocabexport/pkg/ctxutil"
)

// ErrStorageDisabled is returned by ExportForUser when no vocabulary
// repository is configured.
var ErrStorageDisabled = errors.New("vocabulary storage is not configured")

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type formatExporter interface {
	Format() domain.ExportFormat
	Export(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) domain.ExportResult
}

type vocabularyRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID, filter domain.VocabularyFilter) ([]domain.StoredVocabulary, error)
}

// ---------------------------------------------------------------------------
// Manager
// ---------------------------------------------------------------------------

// Manager is the single entry point of the export subsystem.
type Manager struct {
	log       *slog.Logger
	exporters map[domain.FormatID]formatExporter
	vocab     vocabularyRepo
	cfg       config.ExportConfig
}

// NewManager creates a Manager. vocab may be nil when persistence is disabled.
// Exporters whose format is not part of the registry are ignored.
func NewManager(logger *slog.Logger, vocab vocabularyRepo, cfg config.ExportConfig, exporters ...formatExporter) *Manager {
	m := &Manager{
		log:       logger.With("service", "export"),
		exporters: make(map[domain.FormatID]formatExporter, len(exporters)),
		vocab:     vocab,
		cfg:       cfg,
	}

	for _, e := range exporters {
		id := e.Format().ID
		if _, ok := domain.LookupFormat(id); !ok {
			m.log.Warn("exporter for unknown format ignored", slog.String("format", string(id)))
			continue
		}
		m.exporters[id] = e
	}

	return m
}

// AvailableFormats returns the descriptors of every registered format in
// registry order.
func (m *Manager) AvailableFormats() []domain.ExportFormat {
	all := domain.Formats()
	out := make([]domain.ExportFormat, 0, len(all))
	for _, f := range all {
		if _, ok := m.exporters[f.ID]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ExportVocabulary builds a file for vocabulary in the requested format.
// Unknown formats yield a failure result without invoking any exporter.
func (m *Manager) ExportVocabulary(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) domain.ExportResult {
	exp, ok := m.exporters[opts.Format]
	if !ok {
		m.log.WarnContext(ctx, "unsupported export format", slog.String("format", string(opts.Format)))
		return domain.ExportResult{
			Blob:  []byte{},
			Error: "Unsupported export format: " + string(opts.Format),
		}
	}

	if err := domain.ValidateVocabulary(vocabulary, m.cfg.MaxItems); err != nil {
		return domain.ExportResult{Blob: []byte{}, Error: err.Error()}
	}

	if strings.TrimSpace(opts.DeckName) == "" {
		opts.DeckName = m.cfg.DefaultDeckName
	}

	start := time.Now()
	res := exp.Export(ctx, vocabulary, opts)

	if !res.Success {
		m.log.LogAttrs(ctx, slog.LevelWarn, "export failed", append(ctxutil.LogAttrs(ctx),
			slog.String("format", string(opts.Format)),
			slog.Int("items", len(vocabulary)),
			slog.String("error", res.Error),
		)...)
		return res
	}

	m.log.LogAttrs(ctx, slog.LevelInfo, "export completed", append(ctxutil.LogAttrs(ctx),
		slog.String("format", string(opts.Format)),
		slog.String("deck", opts.DeckName),
		slog.Int("items", len(vocabulary)),
		slog.Int("bytes", len(res.Blob)),
		slog.Bool("audio", opts.IncludeAudio),
		slog.Duration("duration", time.Since(start)),
	)...)
	return res
}

// ExportForUser loads the user's stored vocabulary and exports it.
// Repository failures are returned as errors, not as failure results.
func (m *Manager) ExportForUser(ctx context.Context, userID uuid.UUID, opts domain.ExportOptions, filter domain.VocabularyFilter) (domain.ExportResult, error) {
	if m.vocab == nil {
		return domain.ExportResult{}, ErrStorageDisabled
	}

	if filter.Limit <= 0 || filter.Limit > m.cfg.MaxItems {
		filter.Limit = m.cfg.MaxItems
	}

	rows, err := m.vocab.ListByUser(ctx, userID, filter)
	if err != nil {
		return domain.ExportResult{}, fmt.Errorf("list vocabulary: %w", err)
	}

	items := make([]domain.VocabularyItem, len(rows))
	for i, r := range rows {
		items[i] = r.Item
	}

	return m.ExportVocabulary(ctx, items, opts), nil
}

// ---------------------------------------------------------------------------
// Delivery
// ---------------------------------------------------------------------------

// WriteResult writes exactly the result's bytes to w.
// A failed result is reported as an error wrapping domain.ErrExportFailed.
func (m *Manager) WriteResult(w io.Writer, res domain.ExportResult) error {
	if err := res.Err(); err != nil {
		return err
	}

	n, err := w.Write(res.Blob)
	if err != nil {
		return fmt.Errorf("write %s: %w", res.Filename, err)
	}
	if n != len(res.Blob) {
		return fmt.Errorf("write %s: %w", res.Filename, io.ErrShortWrite)
	}
	return nil
}

// SaveResult writes the result into dir under its own filename and returns
// the file path.
func (m *Manager) SaveResult(dir string, res domain.ExportResult) (string, error) {
	if err := res.Err(); err != nil {
		return "", err
	}
	if res.Filename != filepath.Base(res.Filename) || res.Filename == "." || res.Filename == ".." {
		return "", fmt.Errorf("%w: invalid filename %q", domain.ErrExportFailed, res.Filename)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, res.Filename)
	if err := os.WriteFile(path, res.Blob, 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", res.Filename, err)
	}

	m.log.Info("export saved", slog.String("path", path), slog.Int("bytes", len(res.Blob)))
	return path, nil
}
