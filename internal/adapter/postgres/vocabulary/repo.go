// Package vocabulary implements read access to users' collected vocabulary
// backed by PostgreSQL.
package vocabulary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/vocabexport/internal/adapter/postgres"
	"github.com/heartmarshall/vocabexport/internal/domain"
)

const table = "vocabulary"

var columns = []string{
	"id", "user_id", "word", "definition", "example_sentence", "language", "audio_url", "created_at",
}

// Repo provides vocabulary persistence.
type Repo struct {
	q  postgres.Querier
	sb squirrel.StatementBuilderType
}

// New creates a new vocabulary repository.
func New(q postgres.Querier) *Repo {
	return &Repo{
		q:  q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByUser returns the user's vocabulary in insertion order.
// An empty result is not an error.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.VocabularyFilter) ([]domain.StoredVocabulary, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "required")
	}

	query := r.sb.Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC", "id ASC")

	if filter.Language != nil && strings.TrimSpace(*filter.Language) != "" {
		query = query.Where(squirrel.Eq{"language": strings.TrimSpace(*filter.Language)})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	return r.query(ctx, userID, sql, args)
}

// Insert stores items for the user in a single statement and returns the
// created rows in input order.
func (r *Repo) Insert(ctx context.Context, userID uuid.UUID, items []domain.VocabularyItem) ([]domain.StoredVocabulary, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "required")
	}
	if len(items) == 0 {
		return nil, nil
	}
	if err := domain.ValidateVocabulary(items, 0); err != nil {
		return nil, err
	}

	// created_at is spread by a microsecond per item so ListByUser keeps input order.
	base := time.Now().UTC().Truncate(time.Microsecond)

	insert := r.sb.Insert(table).Columns(columns...)
	for i, it := range items {
		insert = insert.Values(
			uuid.New(), userID, it.Word, it.Definition, it.ExampleSentence, it.Language, it.AudioURL,
			base.Add(time.Duration(i)*time.Microsecond),
		)
	}
	insert = insert.Suffix("RETURNING " + strings.Join(columns, ", "))

	sql, args, err := insert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	return r.query(ctx, userID, sql, args)
}

func (r *Repo) query(ctx context.Context, userID uuid.UUID, sql string, args []any) ([]domain.StoredVocabulary, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "vocabulary of user", userID)
	}
	defer rows.Close()

	var out []domain.StoredVocabulary
	for rows.Next() {
		var v domain.StoredVocabulary
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.Item.Word, &v.Item.Definition,
			&v.Item.ExampleSentence, &v.Item.Language, &v.Item.AudioURL, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan vocabulary row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "vocabulary of user", userID)
	}

	return out, nil
}
