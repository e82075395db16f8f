/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"gopagebuilder/internal/domain"
)

func testDoc(slug, text string) *domain.PageDocument {
	return &domain.PageDocument{
		Elements: []*domain.Element{
			{ID: "a", Type: domain.TypeText, X: 10, Y: 10, Width: 120, Height: 40,
				Props: map[string]any{"text": text}},
		},
		Settings: domain.PageSettings{Title: "Test", Slug: slug},
		Canvas:   domain.Size{Width: 1200, Height: 800},
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitOrOpenDrafts(t.TempDir())
	if err != nil {
		t.Fatalf("InitOrOpenDrafts: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInitCreatesDatabaseFile(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenDrafts(root)
	if err != nil {
		t.Fatalf("InitOrOpenDrafts: %v", err)
	}
	defer func() { _ = db.Close() }()
	if _, err := os.Stat(DraftsPath(root)); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read version row: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
}

func TestInitRejectsEmptyRoot(t *testing.T) {
	if _, err := InitOrOpenDrafts("  "); err == nil {
		t.Fatal("expected error for empty workspace root")
	}
}

func TestSaveAndLoadLatestDraft(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := SaveDraft(ctx, db, testDoc("home", "first")); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := SaveDraft(ctx, db, testDoc("home", "second")); err != nil {
		t.Fatalf("save second: %v", err)
	}

	doc, d, err := LoadLatestDraft(ctx, db, "home")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc == nil || d == nil {
		t.Fatal("draft missing")
	}
	if got := doc.Elements[0].Props["text"]; got != "second" {
		t.Fatalf("latest draft text = %v", got)
	}
	if d.Emergency {
		t.Fatal("normal save flagged as emergency")
	}
}

func TestLoadLatestDraftMissingSlug(t *testing.T) {
	db := openTestDB(t)
	doc, d, err := LoadLatestDraft(context.Background(), db, "nope")
	if err != nil || doc != nil || d != nil {
		t.Fatalf("missing slug: doc=%v d=%v err=%v", doc, d, err)
	}
}

func TestSaveDraftValidates(t *testing.T) {
	db := openTestDB(t)
	bad := testDoc("home", "x")
	bad.Elements[0].ID = ""
	if err := SaveDraft(context.Background(), db, bad); err == nil {
		t.Fatal("draft with empty element id should be rejected")
	}
}

func TestEmergencyDraftSkipsValidation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	bad := testDoc("home", "x")
	bad.Elements[0].ID = ""
	if err := SaveEmergencyDraft(ctx, db, bad); err != nil {
		t.Fatalf("emergency save: %v", err)
	}
	_, d, _ := LoadLatestDraft(ctx, db, "home")
	if d == nil || !d.Emergency {
		t.Fatal("emergency flag not stored")
	}
}

func TestListAndPruneDrafts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		if err := SaveDraft(ctx, db, testDoc("home", "rev")); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	list, err := ListDrafts(ctx, db, "home", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 6 {
		t.Fatalf("len = %d", len(list))
	}
	if err := PruneDrafts(ctx, db, "home", 3); err != nil {
		t.Fatalf("prune: %v", err)
	}
	list, err = ListDrafts(ctx, db, "home", 10)
	if err != nil {
		t.Fatalf("list after prune: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len after prune = %d", len(list))
	}
}

func TestDraftSaveFuncAppendsAndPrunes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	save := DraftSaveFunc(db)
	for i := 0; i < DefaultKeepDrafts+5; i++ {
		if err := save(ctx, testDoc("home", "rev")); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	list, err := ListDrafts(ctx, db, "home", DefaultKeepDrafts*2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != DefaultKeepDrafts {
		t.Fatalf("len = %d, want %d", len(list), DefaultKeepDrafts)
	}
}

func TestEmptySlugStoresUnderUntitled(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := SaveDraft(ctx, db, testDoc("", "x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, _, err := LoadLatestDraft(ctx, db, "")
	if err != nil || doc == nil {
		t.Fatalf("load untitled: doc=%v err=%v", doc, err)
	}
}
