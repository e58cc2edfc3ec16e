package rest

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/heartmarshall/vocabexport/internal/domain"
)

// exportServiceMock is a func-field implementation of exportService.
type exportServiceMock struct {
	ExportVocabularyFunc func(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) domain.ExportResult
	ExportForUserFunc    func(ctx context.Context, userID uuid.UUID, opts domain.ExportOptions, filter domain.VocabularyFilter) (domain.ExportResult, error)

	vocabularyCalls int
	forUserCalls    int
}

func (m *exportServiceMock) ExportVocabulary(ctx context.Context, vocabulary []domain.VocabularyItem, opts domain.ExportOptions) domain.ExportResult {
	m.vocabularyCalls++
	if m.ExportVocabularyFunc == nil {
		panic("exportServiceMock.ExportVocabularyFunc: method is nil but ExportVocabulary was just called")
	}
	return m.ExportVocabularyFunc(ctx, vocabulary, opts)
}

func (m *exportServiceMock) ExportForUser(ctx context.Context, userID uuid.UUID, opts domain.ExportOptions, filter domain.VocabularyFilter) (domain.ExportResult, error) {
	m.forUserCalls++
	if m.ExportForUserFunc == nil {
		panic("exportServiceMock.ExportForUserFunc: method is nil but ExportForUser was just called")
	}
	return m.ExportForUserFunc(ctx, userID, opts, filter)
}

func (m *exportServiceMock) AvailableFormats() []domain.ExportFormat {
	return domain.Formats()
}

func (m *exportServiceMock) WriteResult(w io.Writer, res domain.ExportResult) error {
	if err := res.Err(); err != nil {
		return err
	}
	_, err := w.Write(res.Blob)
	return err
}
