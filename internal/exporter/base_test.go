package exporter

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/vocabexport/internal/domain"
)

var fixedNow = time.Date(2025, time.March, 7, 15, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func strPtr(s string) *string { return &s }

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"newlines", "line one\nline two", "line oneline two"},
		{"crlf", "a\r\nb", "ab"},
		{"tabs", "\tindented\t", "indented"},
		{"surrounding spaces", "  padded  ", "padded"},
		{"inner spaces kept", "a  b", "a  b"},
		{"empty", "", ""},
		{"only control", "\r\n\t", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}

func TestGenerateFilename_Safe(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`^[A-Za-z0-9\-_]+_\d{4}-\d{2}-\d{2}\.(apkg|json|csv)$`)

	decks := []string{
		"Spanish Verbs",
		"français: leçon 1!",
		"日本語",
		"a/b\\c:d*e?f\"g<h>i|j",
		"emoji 🎉 deck",
		"already_safe-name",
		" ",
		"",
		"\t\n",
	}
	exts := []string{".apkg", ".json", ".csv"}

	for _, d := range decks {
		for _, ext := range exts {
			got := GenerateFilename(d, ext, fixedNow)
			assert.Regexp(t, re, got, "deck %q", d)
		}
	}
}

func TestGenerateFilename_Exact(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "My_Deck__1__2025-03-07.apkg", GenerateFilename("My Deck (1)", ".apkg", fixedNow))
	assert.Equal(t, "caf__2025-03-07.csv", GenerateFilename("café", ".csv", fixedNow))
}

func TestGenerateFilename_BlankDeckUsesStem(t *testing.T) {
	t.Parallel()

	for _, d := range []string{"", "   ", "\t"} {
		assert.Equal(t, "deck_2025-03-07.apkg", GenerateFilename(d, ".apkg", fixedNow), "deck %q", d)
	}
}

func TestSuccessAndFailure_Invariants(t *testing.T) {
	t.Parallel()

	ok := Success([]byte("data"), "deck_2025-03-07.csv", "text/csv")
	assert.True(t, ok.Success)
	assert.NotEmpty(t, ok.Blob)
	assert.NotEmpty(t, ok.Filename)
	assert.Empty(t, ok.Error)

	empty := Success(nil, "deck.csv", "text/csv")
	assert.False(t, empty.Success)
	assert.Empty(t, empty.Blob)
	assert.Empty(t, empty.Filename)
	assert.NotEmpty(t, empty.Error)

	fail := Failure(nil)
	assert.False(t, fail.Success)
	assert.NotNil(t, fail.Blob)
	assert.Empty(t, fail.Blob)
	assert.Equal(t, "unknown error", fail.Error)
}

func TestGuard_RecoversPanic(t *testing.T) {
	t.Parallel()

	res := Guard(domain.FormatCSV, func() domain.ExportResult {
		panic("kaboom")
	})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "kaboom")
	assert.Contains(t, res.Error, "csv export failed")
	assert.Empty(t, res.Blob)
}
