/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend publishes finished pages to the shared Postgres store the
// site renderer reads from. The drafts workflow stays local; only explicit
// publish operations touch the backend.
package backend

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"gopagebuilder/internal/domain"
	applog "gopagebuilder/internal/log"
	"gopagebuilder/internal/schema"
	"gopagebuilder/internal/version"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Publisher wraps the Postgres connection used for publish operations.
type Publisher struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects to Postgres, verifies the connection and applies pending
// migrations.
func Open(ctx context.Context, dsn string) (*Publisher, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	p := &Publisher{db: db, log: applog.WithComponent("backend")}
	if err := p.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return p, nil
}

// Close releases the connection pool.
func (p *Publisher) Close() error { return p.db.Close() }

// Health pings the backend with a short timeout.
func (p *Publisher) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.db.PingContext(ctx)
}

// Publish validates the document and upserts it under its slug. The slug must
// be non-empty; publishing is deliberate, unlike draft autosaves.
func (p *Publisher) Publish(ctx context.Context, doc *domain.PageDocument) error {
	if doc == nil {
		return errors.New("nil document")
	}
	slug := strings.TrimSpace(doc.Settings.Slug)
	if slug == "" {
		return errors.New("document has no slug")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := schema.ValidatePage(raw); err != nil {
		return err
	}
	const q = `INSERT INTO pages (slug, title, doc, published_at, app_version)
		VALUES ($1, $2, $3, now(), $4)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			doc = EXCLUDED.doc,
			published_at = EXCLUDED.published_at,
			app_version = EXCLUDED.app_version`
	if _, err := p.db.ExecContext(ctx, q, slug, doc.Settings.Title, raw, version.String()); err != nil {
		return fmt.Errorf("upsert page %q: %w", slug, err)
	}
	p.log.Info("page published", slog.String("slug", slug))
	return nil
}

// Unpublish removes the page for slug. Removing an unknown slug is a no-op.
func (p *Publisher) Unpublish(ctx context.Context, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return errors.New("slug is required")
	}
	if _, err := p.db.ExecContext(ctx, `DELETE FROM pages WHERE slug = $1`, slug); err != nil {
		return fmt.Errorf("delete page %q: %w", slug, err)
	}
	return nil
}

// Published loads the published document for slug, or nil when the slug has
// never been published.
func (p *Publisher) Published(ctx context.Context, slug string) (*domain.PageDocument, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT doc FROM pages WHERE slug = $1`, slug).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load page %q: %w", slug, err)
	}
	var doc domain.PageDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode page %q: %w", slug, err)
	}
	return &doc, nil
}

// applyMigrations applies embedded SQL migrations in filename order, tracking
// applied versions in schema_migrations.
func (p *Publisher) applyMigrations(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := p.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := p.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, fname := range files {
		ver, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[ver] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		sqlText := string(b)
		if strings.TrimSpace(sqlText) == "" {
			continue
		}
		p.log.Info("applying migration", slog.String("file", fname))
		if _, err := p.db.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := p.db.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, ver, fname); err != nil {
			return fmt.Errorf("record %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	parts := strings.SplitN(path.Base(name), "_", 2)
	if len(parts) < 2 {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid migration version in %s: %w", name, err)
	}
	return v, nil
}
