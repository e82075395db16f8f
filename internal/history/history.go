/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history provides the bounded linear undo/redo log over canvas
// forest snapshots. One Manager belongs to exactly one canvas document
// session; it is safe for concurrent use.
package history

import (
	"sync"

	"gopagebuilder/internal/tree"
)

// Limit is the fixed history depth. Entries beyond it are evicted from the
// oldest end. It is intentionally not configurable at runtime.
const Limit = 50

// Entry pairs a forest snapshot with the selection at the time it was taken.
type Entry struct {
	Elements   tree.Forest
	SelectedID string
}

// Manager keeps an ordered sequence of entries plus a current index
// (0 <= index < len(entries), always valid). A new edit truncates everything
// after the current index before appending.
type Manager struct {
	mu      sync.Mutex
	entries []Entry
	index   int
}

// NewManager starts the history with one entry for the initial forest and no
// selection.
func NewManager(initial tree.Forest) *Manager {
	return &Manager{entries: []Entry{{Elements: initial}}}
}

// Record appends a new entry for the given forest and selection snapshot.
// If next is reference-identical to the current entry's forest the call is a
// no-op, which guards against redundant entries from non-mutating dispatches.
func (m *Manager) Record(next tree.Forest, selectedID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tree.SameForest(next, m.entries[m.index].Elements) {
		return
	}
	m.entries = append(m.entries[:m.index+1], Entry{Elements: next, SelectedID: selectedID})
	if len(m.entries) > Limit {
		drop := len(m.entries) - Limit
		m.entries = append([]Entry{}, m.entries[drop:]...)
	}
	m.index = len(m.entries) - 1
}

// Undo steps back one entry. It reports ok=false at the oldest entry. The
// returned selection is re-validated against the restored forest; a selected
// id that no longer resolves comes back empty.
func (m *Manager) Undo() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == 0 {
		return Entry{}, false
	}
	m.index--
	return m.validated(m.entries[m.index]), true
}

// Redo steps forward one entry, the exact inverse of Undo.
func (m *Manager) Redo() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == len(m.entries)-1 {
		return Entry{}, false
	}
	m.index++
	return m.validated(m.entries[m.index]), true
}

// CanUndo reports whether an Undo would restore an older entry.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index > 0
}

// CanRedo reports whether a Redo would restore a newer entry.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index < len(m.entries)-1
}

// Len returns the number of retained entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Index returns the current position in the log.
func (m *Manager) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

func (m *Manager) validated(e Entry) Entry {
	if e.SelectedID != "" && tree.FindByID(e.Elements, e.SelectedID) == nil {
		e.SelectedID = ""
	}
	return e
}
