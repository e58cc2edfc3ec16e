package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/vocabexport/internal/domain"
	"github.com/heartmarshall/vocabexport/pkg/ctxutil"
)

// exportService defines the minimal interface needed by ExportHandler.
type exportService interface {
	ExportVocabulary(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) domain.ExportResult
	ExportForUser(ctx context.Context, userID uuid.UUID, opts domain.ExportOptions, filter domain.VocabularyFilter) (domain.ExportResult, error)
	AvailableFormats() []domain.ExportFormat
	WriteResult(w io.Writer, res domain.ExportResult) error
}

// ExportLimits bounds what a single request may ask for.
type ExportLimits struct {
	MaxBodyBytes int64
	MaxItems     int
}

// ExportHandler serves the export REST endpoints.
type ExportHandler struct {
	svc    exportService
	limits ExportLimits
	log    *slog.Logger
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(svc exportService, limits ExportLimits, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, limits: limits, log: logger.With("handler", "export")}
}

type exportRequest struct {
	Vocabulary []domain.VocabularyItem `json:"vocabulary"`
	Options    exportOptionsRequest    `json:"options"`
}

type exportOptionsRequest struct {
	Format       string `json:"format"`
	DeckName     string `json:"deckName"`
	IncludeAudio bool   `json:"includeAudio"`
}

// Formats handles GET /api/export/formats.
func (h *ExportHandler) Formats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.AvailableFormats())
}

// Export handles POST /api/export with an inline vocabulary snapshot.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.limits.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxBodyBytes)
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	format, err := domain.ParseFormatID(req.Options.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported export format: "+req.Options.Format)
		return
	}

	if err := domain.ValidateVocabulary(req.Vocabulary, h.limits.MaxItems); err != nil {
		writeValidationError(w, err)
		return
	}

	res := h.svc.ExportVocabulary(r.Context(), req.Vocabulary, domain.ExportOptions{
		Format:       format,
		DeckName:     req.Options.DeckName,
		IncludeAudio: req.Options.IncludeAudio,
	})
	h.deliver(w, r, res)
}

// ExportMine handles GET /api/vocabulary/export for the authenticated user.
// Query: format (required), deck, audio, language, limit.
func (h *ExportHandler) ExportMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()

	format, err := domain.ParseFormatID(q.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported export format: "+q.Get("format"))
		return
	}

	opts := domain.ExportOptions{Format: format, DeckName: q.Get("deck")}
	if raw := q.Get("audio"); raw != "" {
		opts.IncludeAudio, err = strconv.ParseBool(raw)
		if err != nil {
			writeValidationError(w, domain.NewValidationError("audio", "must be a boolean"))
			return
		}
	}

	var filter domain.VocabularyFilter
	if lang := strings.TrimSpace(q.Get("language")); lang != "" {
		filter.Language = &lang
	}
	if raw := q.Get("limit"); raw != "" {
		filter.Limit, err = strconv.Atoi(raw)
		if err != nil || filter.Limit < 1 {
			writeValidationError(w, domain.NewValidationError("limit", "must be a positive integer"))
			return
		}
	}

	res, err := h.svc.ExportForUser(r.Context(), userID, opts, filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.deliver(w, r, res)
}

// deliver streams a successful result as an attachment or reports the
// build failure with 422.
func (h *ExportHandler) deliver(w http.ResponseWriter, r *http.Request, res domain.ExportResult) {
	if !res.Success {
		writeError(w, http.StatusUnprocessableEntity, res.Error)
		return
	}

	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Blob)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if err := h.svc.WriteResult(w, res); err != nil {
		h.log.WarnContext(r.Context(), "write export response", slog.String("error", err.Error()))
	}
}

func (h *ExportHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeValidationError(w, err)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, context.Canceled):
		h.log.InfoContext(r.Context(), "export cancelled by client")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
