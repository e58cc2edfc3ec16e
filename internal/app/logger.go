package app

import (
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/heartmarshall/vocabexport/internal/config"
)

// NewLogger builds the process logger on os.Stderr and installs it as the
// slog default. Format "json" is for production; "text" adds source
// locations for local runs. Unknown levels fall back to info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	text := strings.EqualFold(cfg.Format, "text")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: text,
	}

	if text {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogStartup records the effective settings of the export pipeline.
// Secrets and the DSN are never logged.
func LogStartup(logger *slog.Logger, cfg *config.Config) {
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("addr", net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))),
		slog.Bool("database", cfg.Database.Enabled()),
		slog.Group("export",
			slog.String("default_deck", cfg.Export.DefaultDeckName),
			slog.Int("max_items", cfg.Export.MaxItems),
			slog.Int("rate_limit_per_minute", cfg.Export.RateLimitPerMinute),
			slog.String("output_dir", cfg.Export.OutputDir),
		),
		slog.Group("media",
			slog.Duration("timeout", cfg.Export.MediaTimeout),
			slog.Int64("max_bytes", cfg.Export.MediaMaxBytes),
			slog.Int("concurrency", cfg.Export.MediaConcurrency),
		),
	)
}
