/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopagebuilder/internal/domain"
	"gopagebuilder/internal/storage"
)

func TestRecoverWritesReportAndEmergencyDraft(t *testing.T) {
	// capture stderr to keep the test log clean
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	doc := &domain.PageDocument{
		Elements: []*domain.Element{{ID: "a", Type: domain.TypeText, Width: 100, Height: 40}},
		Settings: domain.PageSettings{Slug: "home"},
	}

	func() {
		defer Recover(root, func() *domain.PageDocument { return doc })
		panic("boom")
	}()

	if called != 2 {
		t.Fatalf("exit code = %d", called)
	}

	// crash report lands in the workspace data dir
	dir := filepath.Join(root, storage.WorkspaceDirName)
	files, _ := os.ReadDir(dir)
	var report string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			report = filepath.Join(dir, f.Name())
			break
		}
	}
	if report == "" {
		t.Fatal("crash report not written")
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report missing panic value:\n%s", b)
	}

	// the document survived as an emergency draft
	db, err := storage.InitOrOpenDrafts(root)
	if err != nil {
		t.Fatalf("open drafts: %v", err)
	}
	defer func() { _ = db.Close() }()
	got, d, err := storage.LoadLatestDraft(context.Background(), db, "home")
	if err != nil {
		t.Fatalf("load draft: %v", err)
	}
	if got == nil || d == nil || !d.Emergency {
		t.Fatalf("emergency draft missing: doc=%v d=%+v", got, d)
	}
}

func TestRecoverNoPanicIsNoOp(t *testing.T) {
	oldExit := exitFn
	called := false
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover("", nil)
	}()
	if called {
		t.Fatal("Recover exited without a panic")
	}
}
