package app

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/vocabexport/internal/auth"
	"github.com/heartmarshall/vocabexport/internal/config"
	"github.com/heartmarshall/vocabexport/internal/service/export"
	"github.com/heartmarshall/vocabexport/internal/transport/middleware"
	"github.com/heartmarshall/vocabexport/internal/transport/rest"
)

// NewHTTPHandler builds the routed, middleware-wrapped HTTP handler.
// The per-user export route is only mounted when pool is non-nil.
func NewHTTPHandler(cfg *config.Config, logger *slog.Logger, manager *export.Manager, pool *pgxpool.Pool, limiter *middleware.RateLimiter) http.Handler {
	var health *rest.HealthHandler
	if pool == nil {
		health = rest.NewHealthHandler(nil, manager, BuildVersion())
	} else {
		health = rest.NewHealthHandler(pool, manager, BuildVersion())
	}

	exports := rest.NewExportHandler(manager, rest.ExportLimits{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		MaxItems:     cfg.Export.MaxItems,
	}, logger)

	limit := limiter.Limit(cfg.Export.RateLimitPerMinute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	mux.HandleFunc("GET /api/export/formats", exports.Formats)
	mux.Handle("POST /api/export", middleware.Chain(limit)(http.HandlerFunc(exports.Export)))

	if pool != nil {
		tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, 0)
		mux.Handle("GET /api/vocabulary/export", middleware.Chain(
			middleware.Auth(tokens),
			limit,
		)(http.HandlerFunc(exports.ExportMine)))
	}

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(mux)
}
