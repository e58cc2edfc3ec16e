package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/vocabexport/internal/domain"
)

// SeedVocabulary inserts items for a fresh user, one second apart in input
// order, and returns the user id.
func SeedVocabulary(t *testing.T, pool *pgxpool.Pool, items []domain.VocabularyItem) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i, it := range items {
		_, err := pool.Exec(ctx,
			`INSERT INTO vocabulary (id, user_id, word, definition, example_sentence, language, audio_url, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), userID, it.Word, it.Definition, it.ExampleSentence, it.Language, it.AudioURL,
			base.Add(time.Duration(i)*time.Second),
		)
		if err != nil {
			t.Fatalf("testhelper: SeedVocabulary insert %q: %v", it.Word, err)
		}
	}

	return userID
}
