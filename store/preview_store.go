// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: store/preview_store.go
// Summary: SQLite-backed persistence for rendered minimap bitmaps.
//
// Previews are keyed by document path and content hash so a restart can
// show the last good bitmap immediately instead of waiting for the
// first render. A hash mismatch is a miss: the stored preview belongs
// to an older revision of the document.

package store

import (
	"bytes"
	"database/sql"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/framegrace/texelmap/minimap"
)

// Current schema version - increment when schema changes require a reset
const previewSchemaVersion = 1

const previewSchema = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

-- One preview per document path; replaced wholesale on save
CREATE TABLE IF NOT EXISTS previews (
    path TEXT PRIMARY KEY,
    hash TEXT NOT NULL,               -- content hash of the source text
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    visual_lines INTEGER NOT NULL,
    png BLOB NOT NULL,
    updated_at INTEGER NOT NULL       -- UnixNano
);
`

// PreviewStore persists minimap bitmaps in a SQLite database.
type PreviewStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the preview database at dbPath.
func Open(dbPath string) (*PreviewStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(previewSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	return &PreviewStore{db: db}, nil
}

// migrateSchema drops stored previews when the schema version moved.
// Previews are a pure cache, so "migration" is just a reset.
func migrateSchema(db *sql.DB) error {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", previewSchemaVersion)
		return err
	case err != nil:
		return err
	case version != previewSchemaVersion:
		if _, err := db.Exec("DELETE FROM previews"); err != nil {
			return err
		}
		_, err = db.Exec("UPDATE schema_version SET version = ?", previewSchemaVersion)
		return err
	}
	return nil
}

// Save stores the bitmap for the given document path and content hash,
// replacing any previous preview for that path.
func (s *PreviewStore) Save(path, hash string, mm *minimap.Minimap) error {
	if mm == nil || mm.Pix == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, mm.Pix); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	_, err := s.db.Exec(`
		INSERT INTO previews (path, hash, width, height, visual_lines, png, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			width = excluded.width,
			height = excluded.height,
			visual_lines = excluded.visual_lines,
			png = excluded.png,
			updated_at = excluded.updated_at`,
		path, hash, mm.Width, mm.Height, mm.VisualLines, buf.Bytes(), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("save preview for %s: %w", path, err)
	}
	return nil
}

// Load returns the stored bitmap for path if its hash matches, or
// (nil, nil) when there is no usable preview.
func (s *PreviewStore) Load(path, hash string) (*minimap.Minimap, error) {
	var (
		storedHash  string
		width       int
		height      int
		visualLines int
		blob        []byte
	)
	err := s.db.QueryRow(
		"SELECT hash, width, height, visual_lines, png FROM previews WHERE path = ?",
		path).Scan(&storedHash, &width, &height, &visualLines, &blob)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load preview for %s: %w", path, err)
	}
	if storedHash != hash {
		return nil, nil
	}

	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("decode preview for %s: %w", path, err)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				rgba.Set(x, y, img.At(x, y))
			}
		}
	}
	return &minimap.Minimap{
		Pix:         rgba,
		Width:       width,
		Height:      height,
		VisualLines: visualLines,
	}, nil
}

// Prune removes previews not updated since the cutoff.
func (s *PreviewStore) Prune(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).UnixNano()
	if _, err := s.db.Exec("DELETE FROM previews WHERE updated_at < ?", cutoff); err != nil {
		return fmt.Errorf("prune previews: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *PreviewStore) Close() error {
	return s.db.Close()
}
