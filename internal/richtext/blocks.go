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

// SetAlign sets the alignment of every text block touched by r.
func SetAlign(d *Document, r Range, align string) error {
	paths := d.blockPathsIn(r)
	if len(paths) == 0 {
		return fmt.Errorf("selection touches no text block")
	}
	for _, p := range paths {
		d.NodeAt(p).Align = align
	}
	return nil
}

// ToggleList wraps or unwraps the blocks touched by r in a list of the given
// kind. If the selection already sits in a list of that kind, the items are
// unwrapped back to their original block types (paragraph by default, the
// recorded heading level when there is one). If it touches a list of the
// other kind, the touched lists are unwrapped and the whole touched span is
// wrapped again in the requested kind. Otherwise the touched paragraph and
// heading blocks are normalized to list items and wrapped in one new list.
// It returns a range spanning the affected content.
func ToggleList(d *Document, r Range, kind ListKind) (Range, error) {
	paths := d.blockPathsIn(r)
	if len(paths) == 0 {
		return Range{}, fmt.Errorf("selection touches no text block")
	}

	// Top-level block indices touched by the selection, in order.
	tops := topIndices(paths)

	current := wrappingList(d, tops)
	switch {
	case current == kind:
		first, count := unwrapLists(d, tops)
		return d.spanOf(first, first+count-1)
	case current != "":
		// unwrap the touched lists first, then wrap the whole touched span,
		// so paragraphs and headings alongside the old list join the new one
		first, count := unwrapLists(d, tops)
		span := make([]int, count)
		for i := range span {
			span[i] = first + i
		}
		first, count = wrapInList(d, span, kind)
		return d.spanOf(first, first+count-1)
	default:
		first, count := wrapInList(d, tops, kind)
		return d.spanOf(first, first+count-1)
	}
}

// IndentList adds delta to the indent of every list item touched by r,
// clamping each item independently at zero.
func IndentList(d *Document, r Range, delta int) error {
	paths := d.blockPathsIn(r)
	touched := 0
	for _, p := range paths {
		n := d.NodeAt(p)
		if n.Kind != KindListItem {
			continue
		}
		n.Indent += delta
		if n.Indent < 0 {
			n.Indent = 0
		}
		touched++
	}
	if touched == 0 {
		return fmt.Errorf("selection touches no list item")
	}
	return nil
}

// topIndices reduces block paths to their unique top-level indices.
func topIndices(paths []Path) []int {
	var out []int
	for _, p := range paths {
		if len(out) == 0 || out[len(out)-1] != p[0] {
			out = append(out, p[0])
		}
	}
	return out
}

// wrappingList returns the list kind shared by the touched top-level list
// blocks, or "" when the selection touches no list.
func wrappingList(d *Document, tops []int) ListKind {
	for _, i := range tops {
		if d.Blocks[i].Kind == KindList {
			return d.Blocks[i].List
		}
	}
	return ""
}

// unwrapLists splices every touched list back into its items' original block
// types. Non-list touched blocks are left in place. It returns the top-level
// index of the first affected block and how many blocks the affected span
// now covers.
func unwrapLists(d *Document, tops []int) (first, count int) {
	first = tops[0]
	touched := map[int]bool{}
	for _, i := range tops {
		touched[i] = true
	}
	// the affected span grows by each unwrapped list's extra items
	count = tops[len(tops)-1] - tops[0] + 1
	for _, i := range tops {
		if d.Blocks[i].Kind == KindList {
			count += len(d.Blocks[i].Children) - 1
		}
	}
	var out []*Node
	for i, b := range d.Blocks {
		if touched[i] && b.Kind == KindList {
			for _, li := range b.Children {
				out = append(out, itemToBlock(li))
			}
			continue
		}
		out = append(out, b)
	}
	d.Blocks = out
	return first, count
}

// wrapInList converts the touched paragraph/heading blocks to list items and
// wraps them in a single new list inserted at the first touched position.
// Blocks of other kinds inside the span (for example images) stay where they
// are, after the list.
func wrapInList(d *Document, tops []int, kind ListKind) (first, count int) {
	first = tops[0]
	touched := map[int]bool{}
	for _, i := range tops {
		touched[i] = true
	}
	list := &Node{Kind: KindList, List: kind}
	var out []*Node
	var skipped []*Node
	for i, b := range d.Blocks {
		if touched[i] && (b.Kind == KindParagraph || b.Kind == KindHeading) {
			list.Children = append(list.Children, blockToItem(b))
			if len(list.Children) == 1 {
				out = append(out, list)
			}
			continue
		}
		if touched[i] {
			skipped = append(skipped, b)
			continue
		}
		out = append(out, b)
	}
	if len(list.Children) == 0 {
		// nothing wrappable; restore untouched order
		return first, 1
	}
	// re-insert non-wrappable touched blocks after the list
	if len(skipped) > 0 {
		idx := indexOf(out, list)
		rest := append([]*Node{}, out[idx+1:]...)
		out = append(out[:idx+1], skipped...)
		out = append(out, rest...)
	}
	d.Blocks = out
	return indexOf(d.Blocks, list), 1
}

func indexOf(blocks []*Node, n *Node) int {
	for i, b := range blocks {
		if b == n {
			return i
		}
	}
	return -1
}

// itemToBlock restores a list item to its pre-wrap block type.
func itemToBlock(li *Node) *Node {
	b := &Node{Align: li.Align, Children: li.Children}
	if li.Level > 0 {
		b.Kind = KindHeading
		b.Level = li.Level
	} else {
		b.Kind = KindParagraph
	}
	return b
}

// blockToItem normalizes a paragraph or heading block to a list-item role,
// recording the heading level so unwrap can restore it.
func blockToItem(b *Node) *Node {
	li := &Node{Kind: KindListItem, Align: b.Align, Children: b.Children}
	if b.Kind == KindHeading {
		li.Level = b.Level
	}
	return li
}

// spanOf builds a range covering top-level blocks [from, to], descending
// into lists at the edges.
func (d *Document) spanOf(from, to int) (Range, error) {
	if from < 0 || to >= len(d.Blocks) || from > to {
		return Range{}, fmt.Errorf("block span [%d,%d] out of bounds", from, to)
	}
	startPath := Path{from}
	if b := d.Blocks[from]; b.Kind == KindList && len(b.Children) > 0 {
		startPath = Path{from, 0}
	}
	endPath := Path{to}
	if b := d.Blocks[to]; b.Kind == KindList && len(b.Children) > 0 {
		endPath = Path{to, len(b.Children) - 1}
	}
	endBlock := d.NodeAt(endPath)
	return Range{
		Anchor: Point{Path: startPath, Offset: 0},
		Focus:  Point{Path: endPath, Offset: endBlock.runeLen()},
	}, nil
}
