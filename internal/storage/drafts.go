/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage keeps page drafts in a per-workspace embedded SQLite
// database at .gpb/drafts.sqlite. Drafts are append-only per slug; loading
// returns the most recent one and pruning caps the history. The database also
// receives emergency snapshots written by the crash handler.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"gopagebuilder/internal/domain"
	applog "gopagebuilder/internal/log"
	"gopagebuilder/internal/schema"
	"gopagebuilder/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// WorkspaceDirName stores all per-workspace local data under the
	// workspace root.
	WorkspaceDirName = ".gpb"
	DraftsFileName   = "drafts.sqlite"

	// schemaVersion tracks the local SQLite schema for the drafts database.
	// Bump this on breaking schema changes and add a migration step.
	schemaVersion = 1

	// DefaultKeepDrafts is how many drafts per slug pruning retains.
	DefaultKeepDrafts = 20
)

// DraftsPath returns the full path to the workspace drafts database file.
func DraftsPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, WorkspaceDirName, DraftsFileName)
}

// Draft is one stored revision of a page document.
type Draft struct {
	ID        int64
	Slug      string
	SavedAt   time.Time
	Emergency bool
	Doc       []byte
}

// InitOrOpenDrafts ensures the drafts database exists at .gpb/drafts.sqlite,
// opens it, enables WAL mode, and brings the schema up to date. The returned
// *sql.DB is ready for use; callers close it when no longer needed.
func InitOrOpenDrafts(workspaceRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "drafts_init").With(
		slog.String("root", workspaceRoot),
	)
	if strings.TrimSpace(workspaceRoot) == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := os.MkdirAll(filepath.Join(workspaceRoot, WorkspaceDirName), 0o755); err != nil {
		l.Error("create .gpb dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .gpb dir: %w", err)
	}

	path := DraftsPath(workspaceRoot)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureDraftsSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure drafts schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("drafts database ready", slog.String("path", path))
	return db, nil
}

func ensureDraftsSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS drafts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			slug      TEXT NOT NULL,
			saved_at  TEXT NOT NULL,
			emergency INTEGER NOT NULL DEFAULT 0,
			doc_json  BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_slug_saved ON drafts(slug, saved_at DESC);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// language=SQL
// dialect=SQLite
const insertDraftSQL = `INSERT INTO drafts(slug, saved_at, emergency, doc_json) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestDraftSQL = `SELECT id, saved_at, emergency, doc_json FROM drafts WHERE slug = ? ORDER BY saved_at DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listDraftsSQL = `SELECT id, slug, saved_at, emergency FROM drafts WHERE slug = ? ORDER BY saved_at DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneDraftsSQL = `DELETE FROM drafts WHERE slug = ? AND id NOT IN (
	SELECT id FROM drafts WHERE slug = ? ORDER BY saved_at DESC, id DESC LIMIT ?
)`

// SaveDraft validates and persists one draft revision of the document. The
// slug comes from the document settings; an empty slug stores under "untitled".
func SaveDraft(ctx context.Context, db *sql.DB, doc *domain.PageDocument) error {
	return saveDraft(ctx, db, doc, false)
}

// SaveEmergencyDraft persists a draft flagged as written by the crash
// handler. Validation is skipped; an emergency write must not fail on a
// half-mutated document.
func SaveEmergencyDraft(ctx context.Context, db *sql.DB, doc *domain.PageDocument) error {
	return saveDraft(ctx, db, doc, true)
}

func saveDraft(ctx context.Context, db *sql.DB, doc *domain.PageDocument, emergency bool) error {
	if doc == nil {
		return errors.New("nil document")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if !emergency {
		if err := schema.ValidatePage(raw); err != nil {
			return err
		}
	}
	slug := draftSlug(doc)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	flag := 0
	if emergency {
		flag = 1
	}
	if _, err := db.ExecContext(ctx, insertDraftSQL, slug, now, flag, raw); err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

// LoadLatestDraft returns the most recent draft for the slug, or nil when the
// slug has none.
func LoadLatestDraft(ctx context.Context, db *sql.DB, slug string) (*domain.PageDocument, *Draft, error) {
	if slug == "" {
		slug = "untitled"
	}
	var (
		d     Draft
		tsStr string
		flag  int
	)
	err := db.QueryRowContext(ctx, selectLatestDraftSQL, slug).Scan(&d.ID, &tsStr, &flag, &d.Doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load draft: %w", err)
	}
	d.Slug = slug
	d.Emergency = flag != 0
	d.SavedAt, _ = time.Parse(time.RFC3339Nano, tsStr)
	var doc domain.PageDocument
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return nil, &d, fmt.Errorf("decode draft %d: %w", d.ID, err)
	}
	return &doc, &d, nil
}

// ListDrafts returns up to limit most recent draft records for the slug,
// without their document bodies.
func ListDrafts(ctx context.Context, db *sql.DB, slug string, limit int) ([]Draft, error) {
	if slug == "" {
		slug = "untitled"
	}
	if limit <= 0 {
		limit = DefaultKeepDrafts
	}
	rows, err := db.QueryContext(ctx, listDraftsSQL, slug, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Draft
	for rows.Next() {
		var (
			d     Draft
			tsStr string
			flag  int
		)
		if err := rows.Scan(&d.ID, &d.Slug, &tsStr, &flag); err != nil {
			return nil, err
		}
		d.Emergency = flag != 0
		d.SavedAt, _ = time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, d)
	}
	return out, rows.Err()
}

// PruneDrafts keeps at most keepLast drafts for the slug and deletes older
// ones. keepLast <= 0 uses DefaultKeepDrafts.
func PruneDrafts(ctx context.Context, db *sql.DB, slug string, keepLast int) error {
	if slug == "" {
		slug = "untitled"
	}
	if keepLast <= 0 {
		keepLast = DefaultKeepDrafts
	}
	_, err := db.ExecContext(ctx, pruneDraftsSQL, slug, slug, keepLast)
	return err
}

// DraftSaveFunc adapts the draft store to the session's save collaborator:
// every save appends a draft revision and prunes the slug's history.
func DraftSaveFunc(db *sql.DB) func(ctx context.Context, doc *domain.PageDocument) error {
	return func(ctx context.Context, doc *domain.PageDocument) error {
		if err := SaveDraft(ctx, db, doc); err != nil {
			return err
		}
		return PruneDrafts(ctx, db, draftSlug(doc), DefaultKeepDrafts)
	}
}

func draftSlug(doc *domain.PageDocument) string {
	if s := strings.TrimSpace(doc.Settings.Slug); s != "" {
		return s
	}
	return "untitled"
}
