// Package exporter turns vocabulary snapshots into downloadable files.
// Every exporter returns a domain.ExportResult and never panics or returns
// an error past Export: build failures become failure results.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/heartmarshall/vocabexport/internal/domain"
)

var errEmptyOutput = errors.New("empty output")

// Exporter encodes a vocabulary list into one format.
type Exporter interface {
	Format() domain.ExportFormat
	Export(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) domain.ExportResult
}

// Clock returns the current time. Exporters take it as a dependency so
// filenames and timestamps are reproducible in tests.
type Clock func() time.Time

// SanitizeText strips carriage returns, newlines and tabs, then trims.
func SanitizeText(text string) string {
	text = strings.NewReplacer("\r", "", "\n", "", "\t", "").Replace(text)
	return strings.TrimSpace(text)
}

// fallbackFileStem names files of decks with a blank name.
const fallbackFileStem = "deck"

// GenerateFilename builds "<deck>_<yyyy-MM-dd><ext>", replacing every
// character outside [A-Za-z0-9-_] in the deck name with '_'. A blank deck
// name yields the stem "deck".
func GenerateFilename(deckName, extension string, now time.Time) string {
	if strings.TrimSpace(deckName) == "" {
		deckName = fallbackFileStem
	}

	var b strings.Builder
	b.Grow(len(deckName) + len(extension) + 11)
	for _, r := range deckName {
		if isFilenameSafe(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteByte('_')
	b.WriteString(now.UTC().Format(time.DateOnly))
	b.WriteString(extension)
	return b.String()
}

func isFilenameSafe(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r == '-' || r == '_'
}

// Success builds a successful result. An empty blob cannot satisfy the
// result invariants and is reported as a failure instead.
func Success(blob []byte, filename, mimeType string) domain.ExportResult {
	if len(blob) == 0 || filename == "" {
		return Failure(errEmptyOutput)
	}
	return domain.ExportResult{
		Success:  true,
		Blob:     blob,
		Filename: filename,
		MimeType: mimeType,
	}
}

// Failure builds a failed result carrying err's message.
func Failure(err error) domain.ExportResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return domain.ExportResult{
		Success: false,
		Blob:    []byte{},
		Error:   msg,
	}
}

// Guard runs fn and converts a panic into a failure result prefixed with
// the format name.
func Guard(format domain.FormatID, fn func() domain.ExportResult) (res domain.ExportResult) {
	defer func() {
		if r := recover(); r != nil {
			res = Failure(fmt.Errorf("%s export failed: panic: %v", format, r))
		}
	}()
	return fn()
}
