package exporter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/heartmarshall/vocabexport/internal/domain"
)

var csvHeader = []string{"Front", "Back", "Example", "Language", "Tags", "Audio URL"}

// CSVExporter writes one spreadsheet row per vocabulary item.
// Audio is referenced by URL only.
type CSVExporter struct {
	now Clock
}

// NewCSVExporter creates a CSVExporter. A nil clock defaults to time.Now.
func NewCSVExporter(now Clock) *CSVExporter {
	if now == nil {
		now = time.Now
	}
	return &CSVExporter{now: now}
}

// Format returns the CSV registry entry.
func (e *CSVExporter) Format() domain.ExportFormat {
	f, _ := domain.LookupFormat(domain.FormatCSV)
	return f
}

// Export renders the header row followed by one row per item.
func (e *CSVExporter) Export(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) domain.ExportResult {
	return Guard(domain.FormatCSV, func() domain.ExportResult {
		if err := ctx.Err(); err != nil {
			return Failure(fmt.Errorf("CSV export failed: %w", err))
		}

		var b strings.Builder
		writeCSVRow(&b, csvHeader)

		for _, item := range vocabulary {
			word := SanitizeText(item.Word)
			lang := SanitizeText(item.Language)

			audio := ""
			if item.AudioURL != nil {
				audio = *item.AudioURL
			}

			writeCSVRow(&b, []string{
				word,
				SanitizeText(item.Definition),
				SanitizeText(item.ExampleSentence),
				lang,
				csvTags(lang, word),
				audio,
			})
		}

		f := e.Format()
		return Success([]byte(b.String()), GenerateFilename(opts.DeckName, f.FileExtension, e.now()), f.MimeType)
	})
}

// csvTags joins the language with every whitespace-separated token of the word.
func csvTags(lang, word string) string {
	tags := make([]string, 0, 4)
	if lang != "" {
		tags = append(tags, lang)
	}
	tags = append(tags, strings.Fields(word)...)
	return strings.Join(tags, " ")
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeCSVField(f))
	}
	b.WriteByte('\n')
}

// EscapeCSVField quotes a field containing a comma, quote, CR or LF and
// doubles the quotes inside it.
func EscapeCSVField(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
