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

// DeleteRange removes the text covered by r and merges the edge blocks when
// the range spans more than one. It returns the collapsed caret point.
func DeleteRange(d *Document, r Range) (Point, error) {
	if !d.ValidRange(r) {
		return Point{}, fmt.Errorf("selection range does not resolve in document")
	}
	start, end := r.ordered()
	if r.Collapsed() {
		return start, nil
	}

	if start.Path.Equal(end.Path) {
		b := d.NodeAt(start.Path)
		deleteSpan(b, start.Offset, end.Offset)
		return start, nil
	}

	startBlock := d.NodeAt(start.Path)
	endBlock := d.NodeAt(end.Path)
	deleteSpan(startBlock, start.Offset, startBlock.runeLen())
	deleteSpan(endBlock, 0, end.Offset)

	// merge the remainder of the end block into the start block
	startBlock.Children = mergeAdjacentLeaves(append(startBlock.Children, endBlock.Children...))

	// drop every text block after start up to and including end
	drop := map[*Node]bool{endBlock: true}
	for _, p := range d.textBlockPaths() {
		if start.Path.Before(p) && p.Before(end.Path) {
			drop[d.NodeAt(p)] = true
		}
	}
	d.removeBlocks(drop)
	return start, nil
}

// InsertText inserts s at the caret point, inheriting the marks a character
// typed there would get (or the supplied pending marks when non-nil). It
// returns the caret after the inserted text.
func InsertText(d *Document, p Point, s string, pending map[string]any) (Point, error) {
	if !d.ValidPoint(p) {
		return Point{}, fmt.Errorf("caret does not resolve in document")
	}
	marks := pending
	if marks == nil {
		marks = MarksAt(d, p)
	}
	b := d.NodeAt(p.Path)
	ins := &Node{Text: s}
	if len(marks) > 0 {
		ins.Marks = make(map[string]any, len(marks))
		for k, v := range marks {
			ins.Marks[k] = v
		}
	}
	b.Children = spliceLeaf(b, p.Offset, ins)
	return Point{Path: p.Path, Offset: p.Offset + len([]rune(s))}, nil
}

// InsertLink applies a link mark carrying the url. A collapsed selection
// first inserts the given text (the url itself when text is empty) and links
// the inserted span; a non-collapsed selection links the selected text.
// It returns the range covering the linked text.
func InsertLink(d *Document, r Range, url, text string) (Range, error) {
	if r.Collapsed() {
		if text == "" {
			text = url
		}
		start, _ := r.ordered()
		after, err := InsertText(d, start, text, nil)
		if err != nil {
			return Range{}, err
		}
		r = Range{Anchor: start, Focus: after}
	}
	if err := ApplyMark(d, r, "link", url); err != nil {
		return Range{}, err
	}
	return r, nil
}

// InsertImage places an image block after the top-level block containing the
// selection focus.
func InsertImage(d *Document, r Range, src, alt string) error {
	if !d.ValidRange(r) {
		return fmt.Errorf("selection range does not resolve in document")
	}
	_, end := r.ordered()
	at := end.Path[0] + 1
	img := &Node{Kind: KindImage, Attrs: map[string]string{"src": src}}
	if alt != "" {
		img.Attrs["alt"] = alt
	}
	blocks := make([]*Node, 0, len(d.Blocks)+1)
	blocks = append(blocks, d.Blocks[:at]...)
	blocks = append(blocks, img)
	blocks = append(blocks, d.Blocks[at:]...)
	d.Blocks = blocks
	return nil
}

// deleteSpan removes the rune span [from, to) from block b.
func deleteSpan(b *Node, from, to int) {
	if from >= to {
		return
	}
	mutateLeafSpan(b, from, to, func(leaf *Node) { leaf.Text = "" })
}

// spliceLeaf inserts the leaf at the given rune offset, splitting the
// existing leaf at the caret when needed.
func spliceLeaf(b *Node, offset int, ins *Node) []*Node {
	var out []*Node
	pos := 0
	inserted := false
	for _, leaf := range b.Children {
		if !leaf.IsLeaf() {
			out = append(out, leaf)
			continue
		}
		runes := []rune(leaf.Text)
		end := pos + len(runes)
		if !inserted && offset >= pos && offset <= end {
			rel := offset - pos
			if rel > 0 {
				out = append(out, leafSlice(leaf, runes[:rel]))
			}
			out = append(out, ins)
			if rel < len(runes) {
				out = append(out, leafSlice(leaf, runes[rel:]))
			}
			inserted = true
		} else {
			out = append(out, leaf)
		}
		pos = end
	}
	if !inserted {
		out = append(out, ins)
	}
	return mergeAdjacentLeaves(out)
}

// removeBlocks deletes the given text blocks wherever they sit, pruning list
// containers that end up empty.
func (d *Document) removeBlocks(victims map[*Node]bool) {
	var out []*Node
	for _, b := range d.Blocks {
		if victims[b] {
			continue
		}
		if b.Kind == KindList {
			var items []*Node
			for _, li := range b.Children {
				if !victims[li] {
					items = append(items, li)
				}
			}
			if len(items) == 0 {
				continue
			}
			b.Children = items
		}
		out = append(out, b)
	}
	d.Blocks = out
}
