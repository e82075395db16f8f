/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package session owns one open page document: the element forest, its edit
// history, the selection, the clipboard, and the collaborators the editing
// surface talks to (save target, media picker, font provider). Every tracked
// change snapshots into history and arms the debounced autosave.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"gopagebuilder/internal/domain"
	"gopagebuilder/internal/history"
	applog "gopagebuilder/internal/log"
	"gopagebuilder/internal/place"
	"gopagebuilder/internal/schema"
	"gopagebuilder/internal/tree"
)

// AutosaveDelay is the quiet period after the last tracked change before the
// autosave fires.
const AutosaveDelay = 2 * time.Second

// SaveFunc persists the document. It is invoked on explicit save, on publish
// toggle, and by the debounced autosave.
type SaveFunc func(ctx context.Context, doc *domain.PageDocument) error

// MediaRequest asks the media collaborator for a URL, naming the element
// property being filled and the picker mode.
type MediaRequest struct {
	Field string
	Mode  string
}

// MediaPicker resolves a media request to a URL or id string.
type MediaPicker func(ctx context.Context, req MediaRequest) (string, error)

// FontProvider lists the font families the text style panel offers.
type FontProvider interface {
	Fonts() []string
}

// Options configures a session. Save may be nil for a session that never
// persists (tests, inspection tooling).
type Options struct {
	Save          SaveFunc
	Media         MediaPicker
	Fonts         FontProvider
	AutosaveDelay time.Duration
	// NewID overrides element id generation, for deterministic tests.
	NewID func() string
}

// DropPayload is the JSON contract of a drag started from the element
// library.
type DropPayload struct {
	Type           string  `json:"type"`
	TargetParentID string  `json:"targetParentId,omitempty"`
	X              float64 `json:"x,omitempty"`
	Y              float64 `json:"y,omitempty"`
}

// Session is one open document being edited. Safe for concurrent use; the
// autosave timer fires off the caller's goroutine.
type Session struct {
	mu       sync.Mutex
	elements tree.Forest
	settings domain.PageSettings
	canvas   domain.Size

	hist       *history.Manager
	resolver   *place.Resolver
	selectedID string
	clipboard  *domain.Element

	save          SaveFunc
	media         MediaPicker
	fonts         FontProvider
	autosaveDelay time.Duration
	timer         *time.Timer
	dirty         bool
	closed        bool

	log *slog.Logger
}

// New opens a session over the document. A nil document starts an empty page.
func New(doc *domain.PageDocument, opts Options) *Session {
	if doc == nil {
		doc = &domain.PageDocument{}
	}
	resolver := place.NewResolver()
	if opts.NewID != nil {
		resolver = place.NewResolverWithIDs(opts.NewID)
	}
	delay := opts.AutosaveDelay
	if delay <= 0 {
		delay = AutosaveDelay
	}
	return &Session{
		elements:      doc.Elements,
		settings:      doc.Settings,
		canvas:        doc.Canvas,
		hist:          history.NewManager(doc.Elements),
		resolver:      resolver,
		save:          opts.Save,
		media:         opts.Media,
		fonts:         opts.Fonts,
		autosaveDelay: delay,
		log:           applog.WithComponent("session"),
	}
}

// Document snapshots the current state as a page document.
func (s *Session) Document() *domain.PageDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentLocked()
}

func (s *Session) documentLocked() *domain.PageDocument {
	return &domain.PageDocument{Elements: s.elements, Settings: s.settings, Canvas: s.canvas}
}

// Elements returns the current forest. Treat it as immutable; all mutation
// goes through session operations.
func (s *Session) Elements() tree.Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elements
}

// SelectedID returns the id of the selected element, or "" for none.
func (s *Session) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// Select moves the selection. Selecting an id that does not resolve clears
// the selection. Selection changes are not history entries of their own; the
// current selection rides along with the next recorded snapshot.
func (s *Session) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && tree.FindByID(s.elements, id) == nil {
		id = ""
	}
	s.selectedID = id
}

// Dirty reports whether there are unsaved tracked changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// commitLocked adopts the mutated forest: history snapshot with the current
// selection, dirty flag, autosave arm.
func (s *Session) commitLocked(next tree.Forest) {
	s.elements = next
	s.hist.Record(next, s.selectedID)
	s.markDirtyLocked()
}

func (s *Session) markDirtyLocked() {
	s.dirty = true
	if s.save == nil || s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.autosaveDelay, s.autosave)
}

// HandleDrop consumes a raw library drag payload. Malformed payloads are
// logged and ignored; the returned error carries the reason for callers that
// surface it.
func (s *Session) HandleDrop(payload []byte) error {
	if err := schema.ValidateDragPayload(payload); err != nil {
		s.log.Warn("drag payload rejected", slog.Any("err", err))
		return err
	}
	var p DropPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.log.Warn("drag payload rejected", slog.Any("err", err))
		return fmt.Errorf("decode drag payload: %w", err)
	}
	s.Drop(p.Type, p.TargetParentID, p.X, p.Y)
	return nil
}

// Drop places a new element from a raw library type token and selects it.
func (s *Session) Drop(rawType, parentID string, x, y float64) *domain.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	pl := s.resolver.Drop(s.elements, rawType, parentID, x, y)
	s.selectedID = pl.Placed.ID
	s.commitLocked(pl.Elements)
	return pl.Placed
}

// Remove deletes the element and its subtree. The selection moves to the
// removed element's parent, or clears for a root element. Removing an unknown
// id is a no-op.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := tree.RemoveByID(s.elements, id)
	if !res.Removed {
		return false
	}
	s.selectedID = res.ParentID
	s.commitLocked(res.Elements)
	return true
}

// UpdateElement applies a property/geometry edit to one element through the
// structural-sharing path rebuild. Unknown ids are a no-op.
func (s *Session) UpdateElement(id string, updater func(domain.Element) *domain.Element) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := tree.UpdateByID(s.elements, id, updater)
	if !ok {
		return false
	}
	s.commitLocked(next)
	return true
}

// Copy puts a deep clone of the selected element on the clipboard.
func (s *Session) Copy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	el := tree.FindByID(s.elements, s.selectedID)
	if el == nil {
		return false
	}
	s.clipboard = el.Clone()
	return true
}

// Cut is Copy followed by Remove.
func (s *Session) Cut() bool {
	if !s.Copy() {
		return false
	}
	return s.Remove(s.SelectedID())
}

// Paste places a re-identified clone of the clipboard content, offset from
// the source position, and selects it. parentID may name a container to paste
// into; anything else falls back to the forest root.
func (s *Session) Paste(parentID string) *domain.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clipboard == nil {
		return nil
	}
	pl := s.resolver.Paste(s.elements, s.clipboard, parentID)
	s.selectedID = pl.Placed.ID
	s.commitLocked(pl.Elements)
	return pl.Placed
}

// Duplicate clones the selected element in place, offset +20/+20, and selects
// the copy. A duplicate is a paste of the live element into its own parent.
func (s *Session) Duplicate() *domain.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := tree.FindByID(s.elements, s.selectedID)
	if src == nil {
		return nil
	}
	parentID := tree.ParentID(s.elements, src.ID)
	pl := s.resolver.Paste(s.elements, src, parentID)
	s.selectedID = pl.Placed.ID
	s.commitLocked(pl.Elements)
	return pl.Placed
}

// Undo restores the previous history entry, including its selection.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.hist.Undo()
	if !ok {
		return false
	}
	s.elements = e.Elements
	s.selectedID = e.SelectedID
	s.markDirtyLocked()
	return true
}

// Redo restores the next history entry, the inverse of Undo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.hist.Redo()
	if !ok {
		return false
	}
	s.elements = e.Elements
	s.selectedID = e.SelectedID
	s.markDirtyLocked()
	return true
}

// CanUndo reports whether Undo would restore an older entry.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether Redo would restore a newer entry.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// Save persists the document through the save collaborator. Failures surface
// to the caller and leave the dirty flag set.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.save == nil {
		s.mu.Unlock()
		return errors.New("session has no save target")
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	doc := s.documentLocked()
	save := s.save
	s.dirty = false
	s.mu.Unlock()

	if err := save(ctx, doc); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

// TogglePublish flips the published flag and saves. A failed save rolls the
// flag back.
func (s *Session) TogglePublish(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.settings.Published = !s.settings.Published
	now := s.settings.Published
	s.mu.Unlock()

	if err := s.Save(ctx); err != nil {
		s.mu.Lock()
		s.settings.Published = !now
		s.mu.Unlock()
		return !now, err
	}
	return now, nil
}

// autosave is the debounce timer callback. Failures are logged, not surfaced,
// and leave the session dirty for the next explicit save.
func (s *Session) autosave() {
	s.mu.Lock()
	if s.closed || s.save == nil || !s.dirty {
		s.mu.Unlock()
		return
	}
	doc := s.documentLocked()
	save := s.save
	s.dirty = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := save(ctx, doc); err != nil {
		s.log.Warn("autosave failed", slog.Any("err", err))
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	}
}

// PickMedia asks the media collaborator for a URL.
func (s *Session) PickMedia(ctx context.Context, field, mode string) (string, error) {
	s.mu.Lock()
	media := s.media
	s.mu.Unlock()
	if media == nil {
		return "", errors.New("session has no media picker")
	}
	return media(ctx, MediaRequest{Field: field, Mode: mode})
}

// Fonts lists the available font families, or nil without a provider.
func (s *Session) Fonts() []string {
	s.mu.Lock()
	fonts := s.fonts
	s.mu.Unlock()
	if fonts == nil {
		return nil
	}
	return fonts.Fonts()
}

// Settings returns the current page settings.
func (s *Session) Settings() domain.PageSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces the page settings and arms the autosave.
func (s *Session) SetSettings(ps domain.PageSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = ps
	s.markDirtyLocked()
}

// Close cancels the pending autosave and detaches the session. Further timer
// fires are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
