package domain

import (
	"fmt"
	"strings"
)

// FormatID identifies an export format. IDs are stable dispatch keys.
type FormatID string

const (
	FormatAPKG FormatID = "apkg"
	FormatJSON FormatID = "json"
	FormatCSV  FormatID = "csv"
)

func (f FormatID) String() string { return string(f) }

// ExportFormat is a static registry entry describing one output format.
type ExportFormat struct {
	ID            FormatID `json:"id"`
	Name          string   `json:"name"`
	FileExtension string   `json:"fileExtension"`
	MimeType      string   `json:"mimeType"`
}

// exportFormats is the registry, in advertised order.
var exportFormats = []ExportFormat{
	{ID: FormatAPKG, Name: "Anki Package", FileExtension: ".apkg", MimeType: "application/apkg"},
	{ID: FormatJSON, Name: "Flanki JSON", FileExtension: ".json", MimeType: "application/json"},
	{ID: FormatCSV, Name: "CSV (Spreadsheet)", FileExtension: ".csv", MimeType: "text/csv"},
}

// Formats returns a copy of every registered export format.
func Formats() []ExportFormat {
	out := make([]ExportFormat, len(exportFormats))
	copy(out, exportFormats)
	return out
}

// LookupFormat returns the descriptor for id, or false if id is not registered.
func LookupFormat(id FormatID) (ExportFormat, bool) {
	for _, f := range exportFormats {
		if f.ID == id {
			return f, true
		}
	}
	return ExportFormat{}, false
}

// ParseFormatID normalizes raw and checks it against the registry.
func ParseFormatID(raw string) (FormatID, error) {
	id := FormatID(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := LookupFormat(id); !ok {
		return id, fmt.Errorf("%w: %s", ErrUnsupportedFormat, raw)
	}
	return id, nil
}

// ExportOptions controls a single export run.
type ExportOptions struct {
	Format       FormatID `json:"format"`
	DeckName     string   `json:"deckName"`
	IncludeAudio bool     `json:"includeAudio"`
}

// ExportResult is the envelope every exporter returns.
// Success implies a non-empty Blob and Filename; failure implies an empty
// Blob, an empty Filename and a populated Error.
type ExportResult struct {
	Success  bool
	Blob     []byte
	Filename string
	MimeType string
	Error    string
}

// Err returns the failure as an error wrapping ErrExportFailed, or nil on success.
func (r ExportResult) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == "" {
		return ErrExportFailed
	}
	return fmt.Errorf("%w: %s", ErrExportFailed, r.Error)
}
