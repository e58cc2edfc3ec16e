// Package apkg builds Anki packages: a zip holding a collection.anki2
// SQLite database, numbered media files and a media index.
package apkg

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/vocabexport/internal/domain"
	"github.com/heartmarshall/vocabexport/internal/exporter"
)

// fieldSeparator joins note fields inside notes.flds.
const fieldSeparator = "\x1f"

// Config holds APKG exporter settings.
type Config struct {
	// MediaConcurrency bounds parallel audio fetches; 1 fetches sequentially.
	MediaConcurrency int
	// TempDir is where the collection database is built. Empty means os.TempDir.
	TempDir string
}

// Exporter writes .apkg archives.
type Exporter struct {
	fetcher          MediaFetcher
	ids              *IDSequence
	now              exporter.Clock
	newGUID          func() string
	mediaConcurrency int
	tempDir          string
	log              *slog.Logger
}

// New creates an APKG exporter. ids may be shared between exporters; a nil
// clock defaults to time.Now.
func New(logger *slog.Logger, fetcher MediaFetcher, ids *IDSequence, now exporter.Clock, cfg Config) *Exporter {
	if now == nil {
		now = time.Now
	}
	if ids == nil {
		ids = NewIDSequence(now)
	}
	if cfg.MediaConcurrency <= 0 {
		cfg.MediaConcurrency = 1
	}
	return &Exporter{
		fetcher:          fetcher,
		ids:              ids,
		now:              now,
		newGUID:          uuid.NewString,
		mediaConcurrency: cfg.MediaConcurrency,
		tempDir:          cfg.TempDir,
		log:              logger.With("exporter", "apkg"),
	}
}

// Format returns the APKG registry entry.
func (e *Exporter) Format() domain.ExportFormat {
	f, _ := domain.LookupFormat(domain.FormatAPKG)
	return f
}

// note is one notes row plus its card.
type note struct {
	id     int64
	cardID int64
	guid   string
	tags   string
	flds   string
	sfld   string
	csum   uint32
	due    int
}

// Export builds the package. Any schema, insert or serialization error
// discards the whole attempt; failed audio fetches only drop that audio.
func (e *Exporter) Export(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) domain.ExportResult {
	return exporter.Guard(domain.FormatAPKG, func() domain.ExportResult {
		blob, err := e.build(ctx, vocabulary, opts)
		if err != nil {
			e.log.ErrorContext(ctx, "apkg build failed", slog.String("error", err.Error()))
			return exporter.Failure(fmt.Errorf("APKG export failed: %w", err))
		}
		f := e.Format()
		return exporter.Success(blob, exporter.GenerateFilename(opts.DeckName, f.FileExtension, e.now()), f.MimeType)
	})
}

func (e *Exporter) build(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) ([]byte, error) {
	now := e.now()

	var media map[int][]byte
	if opts.IncludeAudio && e.fetcher != nil {
		media = e.collectMedia(ctx, vocabulary)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	col, err := newCollection(exporter.SanitizeText(opts.DeckName), len(vocabulary), now)
	if err != nil {
		return nil, err
	}

	notes := e.buildNotes(vocabulary, media)

	db, err := e.writeCollection(ctx, col, notes, now)
	if err != nil {
		return nil, err
	}

	blob, err := packArchive(db, media)
	if err != nil {
		return nil, err
	}

	e.log.DebugContext(ctx, "apkg built",
		slog.Int("notes", len(notes)),
		slog.Int("media", len(media)),
		slog.Int("bytes", len(blob)),
	)
	return blob, nil
}

// buildNotes maps items to note rows in input order. The sound tag is only
// written when the item's audio was actually staged, so the package never
// references a missing media file.
func (e *Exporter) buildNotes(vocabulary []domain.VocabularyItem, media map[int][]byte) []note {
	notes := make([]note, 0, len(vocabulary))
	for i, item := range vocabulary {
		front := noteField(item.Word)

		var back strings.Builder
		back.WriteString(noteField(item.Definition))
		if ex := noteField(item.ExampleSentence); ex != "" {
			back.WriteString("<br><br><i>")
			back.WriteString(ex)
			back.WriteString("</i>")
		}
		if _, ok := media[i]; ok {
			back.WriteString("<br>[sound:")
			back.WriteString(mediaFilename(i))
			back.WriteString("]")
		}

		notes = append(notes, note{
			id:     e.ids.Next(),
			cardID: e.ids.Next(),
			guid:   e.newGUID(),
			tags:   noteField(item.Language),
			flds:   front + fieldSeparator + back.String(),
			sfld:   front,
			csum:   fieldChecksum(front),
			due:    i + 1,
		})
	}
	return notes
}

// noteField sanitizes text written into notes. The field separator cannot
// appear inside a field, so it is replaced with a space.
func noteField(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(exporter.SanitizeText(text), fieldSeparator, " "))
}
