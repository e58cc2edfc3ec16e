package apkg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/vocabexport/internal/domain"
)

// MediaFetcher downloads the audio referenced by a vocabulary item.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// mediaFilename is the archive entry name of item i's audio.
func mediaFilename(i int) string {
	return strconv.Itoa(i) + ".mp3"
}

// errEmptyAudio reports a fetch that succeeded with no bytes.
var errEmptyAudio = errors.New("empty audio")

// collectMedia fetches audio for every item that references it, running at
// most mediaConcurrency fetches at once. Failed items are left out of the
// returned map, keyed by input position, and reported in one WARN.
func (e *Exporter) collectMedia(ctx context.Context, vocabulary []domain.VocabularyItem) map[int][]byte {
	staged := make([][]byte, len(vocabulary))
	failed := make([]error, len(vocabulary))

	var g errgroup.Group
	g.SetLimit(e.mediaConcurrency)

	for i, item := range vocabulary {
		if !item.HasAudio() {
			continue
		}
		url := *item.AudioURL
		g.Go(func() error {
			data, err := e.fetcher.Fetch(ctx, url)
			if err == nil && len(data) == 0 {
				err = errEmptyAudio
			}
			if err != nil {
				failed[i] = fmt.Errorf("item %d (%s): %w", i, url, err)
				return failed[i]
			}
			staged[i] = data
			return nil
		})
	}

	// Group without a context never cancels siblings: failed holds every error.
	if err := g.Wait(); err != nil {
		n := 0
		for _, f := range failed {
			if f != nil {
				n++
			}
		}
		e.log.WarnContext(ctx, "audio omitted from package",
			slog.Int("failed", n),
			slog.String("error", errors.Join(failed...).Error()),
		)
	}

	media := make(map[int][]byte)
	for i, data := range staged {
		if data != nil {
			media[i] = data
		}
	}
	return media
}
