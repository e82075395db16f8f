/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package richtext

import "fmt"

// TextEditor is one inline editing surface: a document plus a live
// selection, pending caret marks and a focus flag. It is the concrete
// implementation behind the formatting bridge's editor handle.
type TextEditor struct {
	doc     *Document
	sel     *Range
	pending map[string]any
	focused bool
}

// NewTextEditor wraps the document in an editor with no selection.
func NewTextEditor(doc *Document) *TextEditor {
	if doc == nil {
		doc = NewDocument()
	}
	return &TextEditor{doc: doc}
}

// Document exposes the underlying document.
func (e *TextEditor) Document() *Document { return e.doc }

// Selection returns a copy of the live selection, or nil when there is none.
func (e *TextEditor) Selection() *Range {
	if e.sel == nil {
		return nil
	}
	c := *e.sel
	c.Anchor.Path = e.sel.Anchor.Path.clone()
	c.Focus.Path = e.sel.Focus.Path.clone()
	return &c
}

// SetSelection replaces the live selection. Both points must resolve.
func (e *TextEditor) SetSelection(r Range) error {
	if !e.doc.ValidRange(r) {
		return fmt.Errorf("range does not resolve in document")
	}
	e.sel = &r
	e.pending = nil
	return nil
}

// SelectAll selects the whole document. It reports false when the document
// has no text block to select.
func (e *TextEditor) SelectAll() bool {
	r, ok := e.doc.FullRange()
	if !ok {
		return false
	}
	e.sel = &r
	e.pending = nil
	return true
}

// ClearSelection drops the live selection, as a blur would.
func (e *TextEditor) ClearSelection() { e.sel = nil }

// Focus marks the editor as focused.
func (e *TextEditor) Focus() { e.focused = true }

// Blur unfocuses the editor.
func (e *TextEditor) Blur() { e.focused = false }

// Focused reports the focus flag.
func (e *TextEditor) Focused() bool { return e.focused }

// Collapsed reports whether the selection spans no text. No selection reads
// as collapsed.
func (e *TextEditor) Collapsed() bool { return e.sel == nil || e.sel.Collapsed() }

// PendingMarks returns the marks the next typed character would carry at a
// collapsed caret.
func (e *TextEditor) PendingMarks() map[string]any {
	if e.sel == nil {
		return map[string]any{}
	}
	merged := map[string]any{}
	for k, v := range MarksAt(e.doc, e.sel.Anchor) {
		merged[k] = v
	}
	for k, v := range e.pending {
		if v == nil {
			delete(merged, k)
		} else {
			merged[k] = v
		}
	}
	return merged
}

func (e *TextEditor) requireSelection() (Range, error) {
	if e.sel == nil {
		return Range{}, fmt.Errorf("editor has no selection")
	}
	return *e.sel, nil
}

// ApplyMark sets format=value over the selection. A collapsed caret records
// it as a pending mark for the next insertion instead.
func (e *TextEditor) ApplyMark(format string, value any) error {
	r, err := e.requireSelection()
	if err != nil {
		return err
	}
	if r.Collapsed() {
		if e.pending == nil {
			e.pending = map[string]any{}
		}
		e.pending[format] = value
		return nil
	}
	return ApplyMark(e.doc, r, format, value)
}

// RemoveMark clears format over the selection; at a collapsed caret it
// records a pending removal.
func (e *TextEditor) RemoveMark(format string) error {
	r, err := e.requireSelection()
	if err != nil {
		return err
	}
	if r.Collapsed() {
		if e.pending == nil {
			e.pending = map[string]any{}
		}
		e.pending[format] = nil
		return nil
	}
	return RemoveMark(e.doc, r, format)
}

// SetAlign aligns every block touched by the selection.
func (e *TextEditor) SetAlign(align string) error {
	r, err := e.requireSelection()
	if err != nil {
		return err
	}
	return SetAlign(e.doc, r, align)
}

// ToggleList wraps or unwraps the selection in a list of the given kind and
// moves the selection to span the affected content.
func (e *TextEditor) ToggleList(kind ListKind) error {
	r, err := e.requireSelection()
	if err != nil {
		return err
	}
	nr, err := ToggleList(e.doc, r, kind)
	if err != nil {
		return err
	}
	e.sel = &nr
	return nil
}

// IndentList indents every selected list item by one step.
func (e *TextEditor) IndentList(delta int) error {
	r, err := e.requireSelection()
	if err != nil {
		return err
	}
	return IndentList(e.doc, r, delta)
}

// InsertText replaces the selection with s and collapses the caret after it.
func (e *TextEditor) InsertText(s string) error {
	r, err := e.requireSelection()
	if err != nil {
		return err
	}
	caret, err := DeleteRange(e.doc, r)
	if err != nil {
		return err
	}
	var pending map[string]any
	if len(e.pending) > 0 {
		pending = e.PendingMarks()
	}
	after, err := InsertText(e.doc, caret, s, pending)
	if err != nil {
		return err
	}
	e.sel = &Range{Anchor: after, Focus: after}
	e.pending = nil
	return nil
}

// InsertLink links the selection (or inserts linked text at a caret) and
// selects the linked span.
func (e *TextEditor) InsertLink(url, text string) error {
	r, err := e.requireSelection()
	if err != nil {
		return err
	}
	nr, err := InsertLink(e.doc, r, url, text)
	if err != nil {
		return err
	}
	e.sel = &nr
	return nil
}

// InsertImage places an image block after the block owning the selection
// focus.
func (e *TextEditor) InsertImage(src, alt string) error {
	r, err := e.requireSelection()
	if err != nil {
		return err
	}
	return InsertImage(e.doc, r, src, alt)
}

// IsMarkActive reports whether format is active over the selection. A
// collapsed caret consults the pending mark set.
func (e *TextEditor) IsMarkActive(format string) bool {
	if e.sel == nil {
		return false
	}
	if e.sel.Collapsed() {
		return truthy(e.PendingMarks()[format])
	}
	return IsMarkActive(e.doc, *e.sel, format)
}

// ReadMark reads format over the selection with three-state semantics.
func (e *TextEditor) ReadMark(format string) MarkReading {
	if e.sel == nil {
		return MarkReading{State: MarkAbsent}
	}
	if e.sel.Collapsed() {
		if v, ok := e.PendingMarks()[format]; ok && v != nil {
			return MarkReading{State: MarkValue, Value: v}
		}
		return MarkReading{State: MarkAbsent}
	}
	return ReadMark(e.doc, *e.sel, format)
}
