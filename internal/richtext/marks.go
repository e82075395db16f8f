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

import "reflect"

// MarkState is the three-way result of reading one format over a selection:
// absent everywhere, a single concrete value, or mixed. The style pickers
// (font family, size, color) rely on all three states.
type MarkState int

const (
	MarkAbsent MarkState = iota
	MarkMixed
	MarkValue
)

// MarkReading pairs the state with the concrete value when State==MarkValue.
type MarkReading struct {
	State MarkState
	Value any
}

// ApplyMark sets format=value on every leaf segment covered by r, splitting
// leaves at the range edges so text outside the selection is untouched.
func ApplyMark(d *Document, r Range, format string, value any) error {
	spans, err := d.spansIn(r)
	if err != nil {
		return err
	}
	for _, sp := range spans {
		mutateLeafSpan(sp.block, sp.from, sp.to, func(leaf *Node) {
			if leaf.Marks == nil {
				leaf.Marks = map[string]any{}
			}
			leaf.Marks[format] = value
		})
	}
	return nil
}

// RemoveMark deletes format from every leaf segment covered by r.
func RemoveMark(d *Document, r Range, format string) error {
	spans, err := d.spansIn(r)
	if err != nil {
		return err
	}
	for _, sp := range spans {
		mutateLeafSpan(sp.block, sp.from, sp.to, func(leaf *Node) {
			delete(leaf.Marks, format)
		})
	}
	return nil
}

// ReadMark inspects format over every leaf intersecting r. A collapsed range
// reads the caret marks instead.
func ReadMark(d *Document, r Range, format string) MarkReading {
	if r.Collapsed() {
		marks := MarksAt(d, r.Anchor)
		if v, ok := marks[format]; ok && v != nil {
			return MarkReading{State: MarkValue, Value: v}
		}
		return MarkReading{State: MarkAbsent}
	}
	spans, err := d.spansIn(r)
	if err != nil || len(spans) == 0 {
		return MarkReading{State: MarkAbsent}
	}
	var (
		first   = true
		current any
		mixed   bool
		anySet  bool
	)
	for _, sp := range spans {
		for _, leaf := range leavesIn(sp.block, sp.from, sp.to) {
			var v any
			if leaf.Marks != nil {
				v = leaf.Marks[format]
			}
			if v != nil {
				anySet = true
			}
			if first {
				current = v
				first = false
			} else if !reflect.DeepEqual(v, current) {
				mixed = true
			}
		}
	}
	switch {
	case !anySet:
		return MarkReading{State: MarkAbsent}
	case mixed:
		return MarkReading{State: MarkMixed}
	default:
		return MarkReading{State: MarkValue, Value: current}
	}
}

// IsMarkActive reports whether every leaf intersecting r carries a truthy
// value for format. For a collapsed selection it consults the caret marks.
// It never panics on an empty or unresolvable selection; that reads false.
func IsMarkActive(d *Document, r Range, format string) bool {
	if r.Collapsed() {
		return truthy(MarksAt(d, r.Anchor)[format])
	}
	spans, err := d.spansIn(r)
	if err != nil || len(spans) == 0 {
		return false
	}
	for _, sp := range spans {
		for _, leaf := range leavesIn(sp.block, sp.from, sp.to) {
			if leaf.Marks == nil || !truthy(leaf.Marks[format]) {
				return false
			}
		}
	}
	return true
}

// MarksAt returns the mark set a character typed at p would inherit: the
// marks of the leaf ending at the caret, or of the first leaf when the caret
// sits at the block start. Returns an empty map for unresolvable points.
func MarksAt(d *Document, p Point) map[string]any {
	b := d.NodeAt(p.Path)
	if b == nil || !b.textBlock() {
		return map[string]any{}
	}
	leaf := leafBefore(b, p.Offset)
	if leaf == nil || leaf.Marks == nil {
		return map[string]any{}
	}
	return leaf.Marks
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

// leafBefore finds the leaf owning the character just before offset, or the
// first leaf when offset is 0.
func leafBefore(b *Node, offset int) *Node {
	pos := 0
	var prev *Node
	for _, leaf := range b.Children {
		if !leaf.IsLeaf() {
			continue
		}
		l := len([]rune(leaf.Text))
		if offset <= pos+l && (offset > pos || prev == nil) {
			return leaf
		}
		pos += l
		prev = leaf
	}
	return prev
}

// leavesIn returns the leaves of b that overlap the rune span [from, to).
func leavesIn(b *Node, from, to int) []*Node {
	var out []*Node
	pos := 0
	for _, leaf := range b.Children {
		if !leaf.IsLeaf() {
			continue
		}
		l := len([]rune(leaf.Text))
		if pos < to && pos+l > from {
			out = append(out, leaf)
		}
		pos += l
	}
	return out
}

// mutateLeafSpan applies fn to the leaves covering [from, to) in block b,
// splitting leaves that straddle an edge so the mutation stays inside the
// span. Only the path-local block is rebuilt.
func mutateLeafSpan(b *Node, from, to int, fn func(leaf *Node)) {
	var out []*Node
	pos := 0
	for _, leaf := range b.Children {
		if !leaf.IsLeaf() {
			out = append(out, leaf)
			continue
		}
		runes := []rune(leaf.Text)
		start, end := pos, pos+len(runes)
		pos = end
		if end <= from || start >= to {
			out = append(out, leaf)
			continue
		}
		// relative overlap within this leaf
		oFrom := max(from-start, 0)
		oTo := min(to-start, len(runes))
		if oFrom > 0 {
			out = append(out, leafSlice(leaf, runes[:oFrom]))
		}
		mid := leafSlice(leaf, runes[oFrom:oTo])
		fn(mid)
		out = append(out, mid)
		if oTo < len(runes) {
			out = append(out, leafSlice(leaf, runes[oTo:]))
		}
	}
	b.Children = mergeAdjacentLeaves(out)
}

// leafSlice copies a leaf with new text, duplicating the marks map so edits
// to one slice never leak into another.
func leafSlice(src *Node, text []rune) *Node {
	c := &Node{Text: string(text)}
	if src.Marks != nil {
		c.Marks = make(map[string]any, len(src.Marks))
		for k, v := range src.Marks {
			c.Marks[k] = v
		}
	}
	return c
}

// mergeAdjacentLeaves joins neighbouring leaves with identical mark sets and
// drops empty leaves, keeping at least one leaf per block.
func mergeAdjacentLeaves(leaves []*Node) []*Node {
	var out []*Node
	for _, leaf := range leaves {
		if leaf.IsLeaf() && leaf.Text == "" && len(leaves) > 1 {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.IsLeaf() && leaf.IsLeaf() && sameMarks(last.Marks, leaf.Marks) {
				last.Text += leaf.Text
				continue
			}
		}
		out = append(out, leaf)
	}
	if len(out) == 0 {
		out = []*Node{{Text: ""}}
	}
	return out
}

func sameMarks(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || !reflect.DeepEqual(bv, v) {
			return false
		}
	}
	return true
}
