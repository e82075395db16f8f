/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor holds the rendezvous point between the formatting panel and
// whichever inline text editor currently owns focus: the Bridge registers the
// active editor and dispatches formatting commands to it, and the Activator
// runs the asynchronous bring-into-edit-mode handshake when a command targets
// an element that is not active yet.
package editor

import (
	"fmt"
	"log/slog"
	"sync"

	applog "gopagebuilder/internal/log"
	"gopagebuilder/internal/richtext"
)

// Editor is the command surface the bridge drives. richtext.TextEditor is the
// concrete implementation; tests substitute doubles.
type Editor interface {
	Selection() *richtext.Range
	SetSelection(richtext.Range) error
	SelectAll() bool
	ClearSelection()
	Focus()
	Collapsed() bool
	ApplyMark(format string, value any) error
	RemoveMark(format string) error
	SetAlign(align string) error
	ToggleList(kind richtext.ListKind) error
	IndentList(delta int) error
	InsertText(s string) error
	InsertLink(url, text string) error
	InsertImage(src, alt string) error
	IsMarkActive(format string) bool
	ReadMark(format string) richtext.MarkReading
}

// Bridge is the single per-session registration of the active text editor.
// Construct one per editing session; it is never a package global. Exactly one
// editor may be active at a time, last writer wins, and ClearActiveEditor
// ignores callers that no longer hold the registration. Safe for concurrent
// use; the activator's timer callbacks touch it off the UI goroutine.
type Bridge struct {
	mu        sync.Mutex
	active    Editor
	elementID string
	stored    *richtext.Range
	revision  uint64
	log       *slog.Logger
}

// NewBridge returns an empty bridge with no active editor.
func NewBridge() *Bridge {
	return &Bridge{log: applog.WithComponent("editor.bridge")}
}

// SetActiveEditor registers ed as the active editor owned by elementID and
// captures its live selection as the stored selection. A nil editor clears
// the element id as well.
func (b *Bridge) SetActiveEditor(ed Editor, elementID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = ed
	if ed == nil {
		b.elementID = ""
		b.stored = nil
	} else {
		b.elementID = elementID
		b.stored = ed.Selection()
	}
	b.revision++
	b.log.Debug("active editor changed", "element", b.elementID)
}

// ClearActiveEditor drops the registration. When ed is non-nil and is not the
// currently registered editor this is a no-op, so a just-blurred editor
// cannot clobber a newly focused one.
func (b *Bridge) ClearActiveEditor(ed Editor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ed != nil && ed != b.active {
		return
	}
	b.active = nil
	b.elementID = ""
	b.stored = nil
	b.revision++
}

// ActiveEditor returns the registered editor, or nil.
func (b *Bridge) ActiveEditor() Editor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// ActiveElementID returns the id of the element owning the active editor, or
// "" when none is registered.
func (b *Bridge) ActiveElementID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.elementID
}

// StoredSelection returns the last stored selection snapshot, or nil.
func (b *Bridge) StoredSelection() *richtext.Range {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stored
}

// Revision returns the monotonic selection revision counter. It bumps on
// every registration change and every successful selection store.
func (b *Bridge) Revision() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revision
}

// StoreSelection snapshots the active editor's live selection. No active
// editor or no live selection is a no-op.
func (b *Bridge) StoreSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.storeLocked()
}

func (b *Bridge) storeLocked() {
	if b.active == nil {
		return
	}
	sel := b.active.Selection()
	if sel == nil {
		return
	}
	b.stored = sel
	b.revision++
}

// RestoreSelection pushes the stored selection back into the active editor.
// A stored selection whose positions no longer resolve is discarded and the
// whole document is selected instead; the editor is focused either way. When
// requireTextSelection is set, a restore that ends collapsed reports failure.
// On success the resulting selection is re-stored.
func (b *Bridge) RestoreSelection(requireTextSelection bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.restoreLocked(requireTextSelection)
}

func (b *Bridge) restoreLocked(requireTextSelection bool) bool {
	if b.active == nil {
		return false
	}
	restored := false
	if b.stored != nil {
		if err := b.active.SetSelection(*b.stored); err != nil {
			// stale snapshot, the document has moved on
			b.stored = nil
		} else {
			restored = true
		}
	}
	if !restored {
		restored = b.active.SelectAll()
	}
	b.active.Focus()
	if !restored {
		return false
	}
	if requireTextSelection && b.active.Collapsed() {
		return false
	}
	b.stored = b.active.Selection()
	b.revision++
	return true
}

// IsMarkActive reports whether format is active over the active editor's
// selection. No active editor reads false.
func (b *Bridge) IsMarkActive(format string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return false
	}
	return b.active.IsMarkActive(format)
}

// ReadMark reads format over the active editor's selection with three-state
// semantics for the style pickers.
func (b *Bridge) ReadMark(format string) richtext.MarkReading {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return richtext.MarkReading{State: richtext.MarkAbsent}
	}
	return b.active.ReadMark(format)
}

// command runs one formatting mutation under the shared template: require an
// active editor, restore the selection, mutate, re-store. Text-model errors
// and panics are logged and swallowed so a formatting action can never take
// the host down; on failure the bridge state is left as it was.
func (b *Bridge) command(name string, fn func(Editor) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		b.log.Debug("command dropped, no active editor", "command", name)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("command panicked", "command", name, "panic", fmt.Sprint(r))
		}
	}()
	if !b.restoreLocked(false) {
		b.log.Debug("command aborted, selection not restorable", "command", name)
		return
	}
	if err := fn(b.active); err != nil {
		b.log.Warn("command failed", "command", name, "err", err)
		return
	}
	b.storeLocked()
}

// ApplyMark sets format=value over the active selection.
func (b *Bridge) ApplyMark(format string, value any) {
	b.command("applyMark", func(e Editor) error { return e.ApplyMark(format, value) })
}

// ToggleMark flips a boolean format: removes it when active everywhere,
// applies it otherwise.
func (b *Bridge) ToggleMark(format string) {
	b.command("toggleMark", func(e Editor) error {
		if e.IsMarkActive(format) {
			return e.RemoveMark(format)
		}
		return e.ApplyMark(format, true)
	})
}

// RemoveMark clears format over the active selection.
func (b *Bridge) RemoveMark(format string) {
	b.command("removeMark", func(e Editor) error { return e.RemoveMark(format) })
}

// SetAlign aligns the blocks under the active selection.
func (b *Bridge) SetAlign(align string) {
	b.command("setAlign", func(e Editor) error { return e.SetAlign(align) })
}

// ToggleList wraps or unwraps the active selection in a list of the given
// kind.
func (b *Bridge) ToggleList(kind richtext.ListKind) {
	b.command("toggleList", func(e Editor) error { return e.ToggleList(kind) })
}

// IndentList indents the selected list items one step.
func (b *Bridge) IndentList() {
	b.command("indentList", func(e Editor) error { return e.IndentList(1) })
}

// OutdentList outdents the selected list items one step, clamping at zero.
func (b *Bridge) OutdentList() {
	b.command("outdentList", func(e Editor) error { return e.IndentList(-1) })
}

// InsertText replaces the active selection with s.
func (b *Bridge) InsertText(s string) {
	b.command("insertText", func(e Editor) error { return e.InsertText(s) })
}

// InsertLink links the active selection, or inserts linked text at a caret.
func (b *Bridge) InsertLink(url, text string) {
	b.command("insertLink", func(e Editor) error { return e.InsertLink(url, text) })
}

// InsertImage places an image block after the active selection.
func (b *Bridge) InsertImage(src, alt string) {
	b.command("insertImage", func(e Editor) error { return e.InsertImage(src, alt) })
}
