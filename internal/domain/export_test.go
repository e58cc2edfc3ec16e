package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormats_OnePerID(t *testing.T) {
	t.Parallel()

	seen := make(map[FormatID]bool)
	for _, f := range Formats() {
		assert.False(t, seen[f.ID], "duplicate format id %s", f.ID)
		seen[f.ID] = true
		assert.NotEmpty(t, f.Name)
		assert.NotEmpty(t, f.MimeType)
		assert.Equal(t, byte('.'), f.FileExtension[0])
	}
	assert.Len(t, seen, 3)
}

func TestFormats_ReturnsCopy(t *testing.T) {
	t.Parallel()

	got := Formats()
	got[0].Name = "mutated"

	f, ok := LookupFormat(got[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", f.Name)
}

func TestLookupFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id      FormatID
		wantOK  bool
		wantExt string
	}{
		{FormatAPKG, true, ".apkg"},
		{FormatJSON, true, ".json"},
		{FormatCSV, true, ".csv"},
		{"xyz", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			t.Parallel()
			f, ok := LookupFormat(tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantExt, f.FileExtension)
		})
	}
}

func TestParseFormatID(t *testing.T) {
	t.Parallel()

	id, err := ParseFormatID("  APKG ")
	require.NoError(t, err)
	assert.Equal(t, FormatAPKG, id)

	_, err = ParseFormatID("docx")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestExportResult_Err(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ExportResult{Success: true, Blob: []byte("x"), Filename: "a.csv"}.Err())

	err := ExportResult{Error: "boom"}.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExportFailed))
	assert.Contains(t, err.Error(), "boom")

	assert.Equal(t, ErrExportFailed, ExportResult{}.Err())
}

func TestValidateVocabulary(t *testing.T) {
	t.Parallel()

	items := []VocabularyItem{{Word: "hola"}, {Word: "   "}, {Word: ""}}

	err := ValidateVocabulary(items, 0)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Errors, 2)
	assert.Equal(t, "vocabulary[1].word", ve.Errors[0].Field)
	assert.Equal(t, "vocabulary[2].word", ve.Errors[1].Field)

	err = ValidateVocabulary([]VocabularyItem{{Word: "a"}, {Word: "b"}}, 1)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "vocabulary", ve.Errors[0].Field)

	assert.NoError(t, ValidateVocabulary(nil, 10))
}

func TestVocabularyItem_HasAudio(t *testing.T) {
	t.Parallel()

	url := "https://cdn.example.com/a.mp3"
	blank := "  "
	assert.True(t, VocabularyItem{AudioURL: &url}.HasAudio())
	assert.False(t, VocabularyItem{AudioURL: &blank}.HasAudio())
	assert.False(t, VocabularyItem{}.HasAudio())
}
