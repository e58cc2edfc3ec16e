package apkg

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const collectionFile = "collection.anki2"

// writeCollection creates collection.anki2 in a scratch directory, fills it
// inside one transaction and returns the database file bytes.
func (e *Exporter) writeCollection(ctx context.Context, col *collection, notes []note, now time.Time) ([]byte, error) {
	dir, err := os.MkdirTemp(e.tempDir, "apkg-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, collectionFile)
	if err := populate(ctx, path, col, notes, now); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	return data, nil
}

func populate(ctx context.Context, path string, col *collection, notes []note, now time.Time) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, insertColSQL,
		col.crt, col.mod, col.mod, schemaVersion,
		col.conf, col.models, col.decks, col.dconf,
	); err != nil {
		return fmt.Errorf("insert col: %w", err)
	}

	noteStmt, err := tx.PrepareContext(ctx, insertNoteSQL)
	if err != nil {
		return fmt.Errorf("prepare note insert: %w", err)
	}
	defer noteStmt.Close()

	cardStmt, err := tx.PrepareContext(ctx, insertCardSQL)
	if err != nil {
		return fmt.Errorf("prepare card insert: %w", err)
	}
	defer cardStmt.Close()

	modSec := now.Unix()
	for _, n := range notes {
		if _, err := noteStmt.ExecContext(ctx,
			n.id, n.guid, col.modelID, modSec, n.tags, n.flds, n.sfld, int64(n.csum),
		); err != nil {
			return fmt.Errorf("insert note %d: %w", n.due, err)
		}
		if _, err := cardStmt.ExecContext(ctx,
			n.cardID, n.id, deckID, modSec, n.due,
		); err != nil {
			return fmt.Errorf("insert card %d: %w", n.due, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit collection: %w", err)
	}
	return nil
}
