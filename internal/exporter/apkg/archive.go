package apkg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/klauspost/compress/zip"
)

// packArchive zips the collection, every staged media file and the media
// index mapping archive names to the filenames referenced by sound tags.
func packArchive(collectionDB []byte, media map[int][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeEntry(zw, collectionFile, collectionDB); err != nil {
		return nil, err
	}

	indexes := make([]int, 0, len(media))
	for i := range media {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	index := make(map[string]string, len(media))
	for _, i := range indexes {
		name := mediaFilename(i)
		if err := writeEntry(zw, name, media[i]); err != nil {
			return nil, err
		}
		index[name] = name
	}

	indexJSON, err := json.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("encode media index: %w", err)
	}
	if err := writeEntry(zw, "media", indexJSON); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
