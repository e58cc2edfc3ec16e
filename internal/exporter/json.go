package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/heartmarshall/vocabexport/internal/domain"
)

const maxTagFragments = 3

// jsonDeck is the document written by JSONExporter. It targets the Flanki
// companion app and is not importable by Anki.
type jsonDeck struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	Cards       []jsonCard   `json:"cards"`
	Settings    jsonSettings `json:"settings"`
}

type jsonCard struct {
	ID        string    `json:"id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Tags      []string  `json:"tags"`
	AudioURL  *string   `json:"audioUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// jsonSettings is descriptive metadata; nothing here enforces it.
type jsonSettings struct {
	ReviewIntervals  []int `json:"reviewIntervals"`
	MaxReviewsPerDay int   `json:"maxReviewsPerDay"`
	ShowAnswer       bool  `json:"showAnswer"`
}

func defaultJSONSettings() jsonSettings {
	return jsonSettings{
		ReviewIntervals:  []int{1, 3, 7, 14, 30},
		MaxReviewsPerDay: 50,
		ShowAnswer:       true,
	}
}

// JSONExporter writes a single deck document.
type JSONExporter struct {
	now Clock
}

// NewJSONExporter creates a JSONExporter. A nil clock defaults to time.Now.
func NewJSONExporter(now Clock) *JSONExporter {
	if now == nil {
		now = time.Now
	}
	return &JSONExporter{now: now}
}

// Format returns the JSON registry entry.
func (e *JSONExporter) Format() domain.ExportFormat {
	f, _ := domain.LookupFormat(domain.FormatJSON)
	return f
}

// Export renders the deck. Card timestamps are spaced one second apart so
// earlier cards are older.
func (e *JSONExporter) Export(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) domain.ExportResult {
	return Guard(domain.FormatJSON, func() domain.ExportResult {
		if err := ctx.Err(); err != nil {
			return Failure(fmt.Errorf("JSON export failed: %w", err))
		}

		now := e.now().UTC().Truncate(time.Second)
		n := len(vocabulary)

		deck := jsonDeck{
			Name:        SanitizeText(opts.DeckName),
			Description: fmt.Sprintf("Vocabulary deck with %d cards", n),
			CreatedAt:   now,
			Cards:       make([]jsonCard, 0, n),
			Settings:    defaultJSONSettings(),
		}

		for i, item := range vocabulary {
			card := jsonCard{
				ID:        fmt.Sprintf("card_%d", i+1),
				Front:     SanitizeText(item.Word),
				Back:      jsonBack(item),
				Tags:      jsonTags(item),
				CreatedAt: now.Add(-time.Duration(n-i) * time.Second),
			}
			if item.AudioURL != nil {
				u := *item.AudioURL
				card.AudioURL = &u
			}
			deck.Cards = append(deck.Cards, card)
		}

		data, err := json.MarshalIndent(deck, "", "  ")
		if err != nil {
			return Failure(fmt.Errorf("JSON export failed: %w", err))
		}

		f := e.Format()
		return Success(data, GenerateFilename(opts.DeckName, f.FileExtension, e.now()), f.MimeType)
	})
}

func jsonBack(item domain.VocabularyItem) string {
	var b strings.Builder
	b.WriteString(`<div class="definition">`)
	b.WriteString(SanitizeText(item.Definition))
	b.WriteString(`</div>`)

	if ex := SanitizeText(item.ExampleSentence); ex != "" {
		b.WriteString(`<div class="example"><em>`)
		b.WriteString(ex)
		b.WriteString(`</em></div>`)
	}
	return b.String()
}

// jsonTags returns the language followed by up to three lowercased word
// fragments of at least three letters.
func jsonTags(item domain.VocabularyItem) []string {
	lang := SanitizeText(item.Language)
	tags := make([]string, 0, maxTagFragments+1)
	if lang != "" {
		tags = append(tags, lang)
	}

	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	lower := cases.Lower(tag)

	seen := make(map[string]bool, maxTagFragments)
	for _, tok := range strings.Fields(SanitizeText(item.Word)) {
		if len(seen) == maxTagFragments {
			break
		}
		frag := lower.String(strings.Trim(tok, `.,;:!?"'()`))
		if utf8.RuneCountInString(frag) < 3 || seen[frag] {
			continue
		}
		seen[frag] = true
		tags = append(tags, frag)
	}
	return tags
}
