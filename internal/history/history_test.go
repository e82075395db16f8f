/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package history

import (
	"fmt"
	"testing"

	"gopagebuilder/internal/domain"
	"gopagebuilder/internal/tree"
)

func forestWith(ids ...string) tree.Forest {
	f := make(tree.Forest, 0, len(ids))
	for _, id := range ids {
		f = append(f, &domain.Element{ID: id, Type: domain.TypeText})
	}
	return f
}

func TestUndoRedoRoundTrip(t *testing.T) {
	f1 := forestWith("a")
	f2 := forestWith("a", "b")
	m := NewManager(f1)
	m.Record(f2, "b")

	e, ok := m.Undo()
	if !ok || !tree.SameForest(e.Elements, f1) || e.SelectedID != "" {
		t.Fatalf("undo returned %+v ok=%v", e, ok)
	}
	e, ok = m.Redo()
	if !ok || !tree.SameForest(e.Elements, f2) || e.SelectedID != "b" {
		t.Fatalf("redo returned %+v ok=%v", e, ok)
	}
}

func TestUndoAtOldestIsNoOp(t *testing.T) {
	m := NewManager(forestWith("a"))
	if _, ok := m.Undo(); ok {
		t.Fatal("undo at index 0 must report false")
	}
	if _, ok := m.Redo(); ok {
		t.Fatal("redo at newest must report false")
	}
}

func TestRecordSkipsIdenticalForest(t *testing.T) {
	f := forestWith("a")
	m := NewManager(f)
	m.Record(f, "a")
	if m.Len() != 1 {
		t.Fatalf("identical forest produced a new entry: len=%d", m.Len())
	}
}

func TestRecordTruncatesRedoBranch(t *testing.T) {
	m := NewManager(forestWith("a"))
	m.Record(forestWith("a", "b"), "b")
	m.Record(forestWith("a", "b", "c"), "c")
	if _, ok := m.Undo(); !ok {
		t.Fatal("undo failed")
	}
	if !m.CanRedo() {
		t.Fatal("expected a redo branch")
	}
	m.Record(forestWith("a", "b", "d"), "d")
	if m.CanRedo() {
		t.Fatal("recording after undo must discard the redo branch")
	}
	if m.Len() != 3 {
		t.Fatalf("len = %d, want 3", m.Len())
	}
}

func TestHistoryCappedAtLimit(t *testing.T) {
	m := NewManager(forestWith("seed"))
	for i := 0; i < 100; i++ {
		m.Record(forestWith(fmt.Sprintf("el-%d", i)), "")
	}
	if m.Len() != Limit {
		t.Fatalf("len = %d, want %d", m.Len(), Limit)
	}
	if m.Index() != Limit-1 {
		t.Fatalf("index = %d, want %d", m.Index(), Limit-1)
	}
	// oldest surviving entry is the 51st record
	e, ok := m.Undo()
	for ok {
		e, ok = m.Undo()
	}
	_ = e
	if m.Index() != 0 {
		t.Fatalf("walked back to index %d", m.Index())
	}
}

func TestSelectionRevalidatedOnRestore(t *testing.T) {
	f1 := forestWith("a")
	m := NewManager(f1)
	// selection recorded against a forest that no longer contains it
	m.Record(forestWith("x"), "ghost")
	e, ok := m.Undo()
	if !ok {
		t.Fatal("undo failed")
	}
	if e.SelectedID != "" {
		t.Fatalf("selection %q should have been cleared", e.SelectedID)
	}
	e, ok = m.Redo()
	if !ok || e.SelectedID != "" {
		t.Fatalf("stale selection survived redo: %+v", e)
	}
}
