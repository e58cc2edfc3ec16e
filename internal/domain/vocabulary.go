package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VocabularyItem is a read-only snapshot of one collected term.
type VocabularyItem struct {
	Word            string  `json:"word"`
	Definition      string  `json:"definition"`
	ExampleSentence string  `json:"exampleSentence"`
	Language        string  `json:"language"`
	AudioURL        *string `json:"audioUrl,omitempty"`
}

// HasAudio reports whether the item references a pronunciation recording.
func (v VocabularyItem) HasAudio() bool {
	return v.AudioURL != nil && strings.TrimSpace(*v.AudioURL) != ""
}

// StoredVocabulary is a vocabulary row owned by a user.
type StoredVocabulary struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Item      VocabularyItem
	CreatedAt time.Time
}

// VocabularyFilter narrows a user's vocabulary snapshot.
type VocabularyFilter struct {
	Language *string
	Limit    int
}

// ValidateVocabulary checks the input invariants of an export request.
// maxItems <= 0 disables the size check.
func ValidateVocabulary(items []VocabularyItem, maxItems int) error {
	var errs []FieldError

	if maxItems > 0 && len(items) > maxItems {
		errs = append(errs, FieldError{Field: "vocabulary", Message: "too many items"})
	}
	for i, it := range items {
		if strings.TrimSpace(it.Word) == "" {
			errs = append(errs, FieldError{
				Field:   "vocabulary[" + strconv.Itoa(i) + "].word",
				Message: "required",
			})
		}
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
