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

import "testing"

func TestApplyMarkSplitsLeaves(t *testing.T) {
	d := &Document{Blocks: []*Node{para(leaf("hello world", nil))}}
	r := Range{
		Anchor: Point{Path: Path{0}, Offset: 6},
		Focus:  Point{Path: Path{0}, Offset: 11},
	}
	if err := ApplyMark(d, r, "bold", true); err != nil {
		t.Fatalf("ApplyMark: %v", err)
	}
	b := d.Blocks[0]
	if got := b.PlainText(); got != "hello world" {
		t.Fatalf("text changed: %q", got)
	}
	if len(b.Children) != 2 {
		t.Fatalf("expected 2 leaves after split, got %d", len(b.Children))
	}
	if b.Children[0].Marks != nil && truthy(b.Children[0].Marks["bold"]) {
		t.Fatal("mark leaked outside selection")
	}
	if !truthy(b.Children[1].Marks["bold"]) {
		t.Fatal("mark missing inside selection")
	}
	// the point model survives the split: same path, same offsets
	if !d.ValidRange(r) {
		t.Fatal("selection invalidated by leaf split")
	}
}

func TestApplyThenRemoveMarkMergesBack(t *testing.T) {
	d := &Document{Blocks: []*Node{para(leaf("abcdef", nil))}}
	r := Range{
		Anchor: Point{Path: Path{0}, Offset: 2},
		Focus:  Point{Path: Path{0}, Offset: 4},
	}
	if err := ApplyMark(d, r, "italic", true); err != nil {
		t.Fatalf("ApplyMark: %v", err)
	}
	if len(d.Blocks[0].Children) != 3 {
		t.Fatalf("expected 3 leaves, got %d", len(d.Blocks[0].Children))
	}
	if err := RemoveMark(d, r, "italic"); err != nil {
		t.Fatalf("RemoveMark: %v", err)
	}
	if len(d.Blocks[0].Children) != 1 {
		t.Fatalf("leaves not merged back, got %d", len(d.Blocks[0].Children))
	}
	if got := d.Blocks[0].PlainText(); got != "abcdef" {
		t.Fatalf("text = %q", got)
	}
}

func TestReadMarkThreeStates(t *testing.T) {
	d := &Document{Blocks: []*Node{para(
		leaf("red", map[string]any{"color": "#f00"}),
		leaf("blue", map[string]any{"color": "#00f"}),
		leaf("plain", nil),
	)}}
	whole := Range{
		Anchor: Point{Path: Path{0}, Offset: 0},
		Focus:  Point{Path: Path{0}, Offset: 12},
	}
	if got := ReadMark(d, whole, "color"); got.State != MarkMixed {
		t.Fatalf("whole = %+v, want mixed", got)
	}
	redOnly := Range{
		Anchor: Point{Path: Path{0}, Offset: 0},
		Focus:  Point{Path: Path{0}, Offset: 3},
	}
	if got := ReadMark(d, redOnly, "color"); got.State != MarkValue || got.Value != "#f00" {
		t.Fatalf("redOnly = %+v, want #f00", got)
	}
	plainOnly := Range{
		Anchor: Point{Path: Path{0}, Offset: 7},
		Focus:  Point{Path: Path{0}, Offset: 12},
	}
	if got := ReadMark(d, plainOnly, "color"); got.State != MarkAbsent {
		t.Fatalf("plainOnly = %+v, want absent", got)
	}
}

func TestIsMarkActiveRequiresEveryLeaf(t *testing.T) {
	d := &Document{Blocks: []*Node{para(
		leaf("bold", map[string]any{"bold": true}),
		leaf("plain", nil),
	)}}
	boldOnly := Range{
		Anchor: Point{Path: Path{0}, Offset: 0},
		Focus:  Point{Path: Path{0}, Offset: 4},
	}
	if !IsMarkActive(d, boldOnly, "bold") {
		t.Fatal("fully bold span should read active")
	}
	whole := Range{
		Anchor: Point{Path: Path{0}, Offset: 0},
		Focus:  Point{Path: Path{0}, Offset: 9},
	}
	if IsMarkActive(d, whole, "bold") {
		t.Fatal("partially bold span must not read active")
	}
	// unresolvable selection reads false, never panics
	bad := Range{
		Anchor: Point{Path: Path{7}, Offset: 0},
		Focus:  Point{Path: Path{7}, Offset: 2},
	}
	if IsMarkActive(d, bad, "bold") {
		t.Fatal("stale selection must read inactive")
	}
}

func TestMarksAtInheritsFromLeafBefore(t *testing.T) {
	d := &Document{Blocks: []*Node{para(
		leaf("ab", map[string]any{"bold": true}),
		leaf("cd", nil),
	)}}
	if m := MarksAt(d, Point{Path: Path{0}, Offset: 2}); !truthy(m["bold"]) {
		t.Fatal("caret at end of bold leaf should inherit bold")
	}
	if m := MarksAt(d, Point{Path: Path{0}, Offset: 3}); truthy(m["bold"]) {
		t.Fatal("caret inside plain leaf must not inherit bold")
	}
	if m := MarksAt(d, Point{Path: Path{0}, Offset: 0}); !truthy(m["bold"]) {
		t.Fatal("caret at block start inherits the first leaf's marks")
	}
}

func TestApplyMarkAcrossBlocks(t *testing.T) {
	d := twoParagraphs()
	r := Range{
		Anchor: Point{Path: Path{0}, Offset: 6},
		Focus:  Point{Path: Path{1}, Offset: 6},
	}
	if err := ApplyMark(d, r, "underline", true); err != nil {
		t.Fatalf("ApplyMark: %v", err)
	}
	if !IsMarkActive(d, r, "underline") {
		t.Fatal("mark should be active over the whole marked span")
	}
	head := Range{
		Anchor: Point{Path: Path{0}, Offset: 0},
		Focus:  Point{Path: Path{0}, Offset: 6},
	}
	if IsMarkActive(d, head, "underline") {
		t.Fatal("mark leaked before the selection start")
	}
}
