/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package richtext implements the block/leaf text document that backs every
// inline text editor on the canvas: paragraphs, headings h1-h6, bulleted and
// numbered lists, image blocks, and marked text leaves. Selection is a pair
// of (block path, rune offset) points. The formatting bridge drives this
// model exclusively through the transform functions in this package.
package richtext

import "fmt"

// Kind discriminates block nodes. Leaves have an empty Kind.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindHeading   Kind = "heading"
	KindList      Kind = "list"
	KindListItem  Kind = "list-item"
	KindImage     Kind = "image"
)

// ListKind selects between bulleted and numbered lists.
type ListKind string

const (
	ListBulleted ListKind = "ul"
	ListNumbered ListKind = "ol"
)

// Node is either a block (Kind set) or a text leaf (Kind empty, Text/Marks
// set). List blocks contain only list-item children; list items and the
// other text blocks contain only leaves. On a list item, Level preserves the
// heading level the block had before it was wrapped, so unwrapping restores
// it.
type Node struct {
	Kind     Kind              `json:"kind,omitempty"`
	Level    int               `json:"level,omitempty"`
	List     ListKind          `json:"list,omitempty"`
	Align    string            `json:"align,omitempty"`
	Indent   int               `json:"indent,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Marks    map[string]any    `json:"marks,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// IsLeaf reports whether n is a text leaf.
func (n *Node) IsLeaf() bool { return n.Kind == "" }

// textBlock reports whether n directly carries leaves a selection point can
// address.
func (n *Node) textBlock() bool {
	switch n.Kind {
	case KindParagraph, KindHeading, KindListItem:
		return true
	}
	return false
}

// PlainText concatenates the text of all leaves under the block.
func (n *Node) PlainText() string {
	if n.IsLeaf() {
		return n.Text
	}
	s := ""
	for _, c := range n.Children {
		s += c.PlainText()
	}
	return s
}

// runeLen returns the selection length of the block in runes.
func (n *Node) runeLen() int { return len([]rune(n.PlainText())) }

// Document is an ordered sequence of top-level blocks.
type Document struct {
	Blocks []*Node `json:"blocks"`
}

// NewDocument returns a document with a single empty paragraph, the minimal
// editable state.
func NewDocument() *Document {
	return &Document{Blocks: []*Node{{Kind: KindParagraph, Children: []*Node{{Text: ""}}}}}
}

// Path addresses a block: one index for a top-level block, two for a list
// item inside a top-level list.
type Path []int

// Equal reports path equality.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Before reports whether p sorts before q in document order.
func (p Path) Before(q Path) bool {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			return p[i] < q[i]
		}
	}
	return len(p) < len(q)
}

func (p Path) clone() Path { return append(Path(nil), p...) }

// Point is one end of a selection: a text block path plus a rune offset into
// the block's concatenated leaf text.
type Point struct {
	Path   Path `json:"path"`
	Offset int  `json:"offset"`
}

// Range is a selection span between two points. Anchor and Focus may be in
// either document order; Collapsed selections have Anchor == Focus.
type Range struct {
	Anchor Point `json:"anchor"`
	Focus  Point `json:"focus"`
}

// Collapsed reports whether the range spans no text.
func (r Range) Collapsed() bool {
	return r.Anchor.Path.Equal(r.Focus.Path) && r.Anchor.Offset == r.Focus.Offset
}

// ordered returns the range's start and end in document order.
func (r Range) ordered() (Point, Point) {
	if r.Focus.Path.Before(r.Anchor.Path) ||
		(r.Focus.Path.Equal(r.Anchor.Path) && r.Focus.Offset < r.Anchor.Offset) {
		return r.Focus, r.Anchor
	}
	return r.Anchor, r.Focus
}

// NodeAt resolves a path to its node, or nil when the path points outside
// the document.
func (d *Document) NodeAt(p Path) *Node {
	nodes := d.Blocks
	var n *Node
	for _, idx := range p {
		if idx < 0 || idx >= len(nodes) {
			return nil
		}
		n = nodes[idx]
		nodes = n.Children
	}
	return n
}

// ValidPoint reports whether p addresses an existing text block at an offset
// within its current length.
func (d *Document) ValidPoint(p Point) bool {
	n := d.NodeAt(p.Path)
	if n == nil || !n.textBlock() {
		return false
	}
	return p.Offset >= 0 && p.Offset <= n.runeLen()
}

// ValidRange reports whether both ends of r still resolve in the document.
func (d *Document) ValidRange(r Range) bool {
	return d.ValidPoint(r.Anchor) && d.ValidPoint(r.Focus)
}

// textBlockPaths lists the paths of every text block in document order.
func (d *Document) textBlockPaths() []Path {
	var out []Path
	for i, b := range d.Blocks {
		switch {
		case b.textBlock():
			out = append(out, Path{i})
		case b.Kind == KindList:
			for j, li := range b.Children {
				if li.textBlock() {
					out = append(out, Path{i, j})
				}
			}
		}
	}
	return out
}

// FullRange returns a range spanning the whole document, from the start of
// the first text block to the end of the last. ok is false when the document
// has no text blocks at all.
func (d *Document) FullRange() (Range, bool) {
	paths := d.textBlockPaths()
	if len(paths) == 0 {
		return Range{}, false
	}
	first, last := paths[0], paths[len(paths)-1]
	end := d.NodeAt(last).runeLen()
	return Range{
		Anchor: Point{Path: first, Offset: 0},
		Focus:  Point{Path: last, Offset: end},
	}, true
}

// span is the part of one text block covered by a range.
type span struct {
	path  Path
	block *Node
	from  int // rune offset, inclusive
	to    int // rune offset, exclusive
}

// spansIn returns the per-block spans covered by r, in document order.
// Zero-width edge spans are dropped.
func (d *Document) spansIn(r Range) ([]span, error) {
	if !d.ValidRange(r) {
		return nil, fmt.Errorf("selection range does not resolve in document")
	}
	start, end := r.ordered()
	var out []span
	for _, p := range d.textBlockPaths() {
		if p.Before(start.Path) || end.Path.Before(p) {
			continue
		}
		b := d.NodeAt(p)
		from, to := 0, b.runeLen()
		if p.Equal(start.Path) {
			from = start.Offset
		}
		if p.Equal(end.Path) {
			to = end.Offset
		}
		if from >= to {
			continue
		}
		out = append(out, span{path: p.clone(), block: b, from: from, to: to})
	}
	return out, nil
}

// blockPathsIn returns the text block paths touched by r regardless of span
// width, so collapsed selections still name their block.
func (d *Document) blockPathsIn(r Range) []Path {
	start, end := r.ordered()
	var out []Path
	for _, p := range d.textBlockPaths() {
		if p.Before(start.Path) || end.Path.Before(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{Blocks: make([]*Node, len(d.Blocks))}
	for i, b := range d.Blocks {
		out.Blocks[i] = b.cloneNode()
	}
	return out
}

func (n *Node) cloneNode() *Node {
	c := *n
	if n.Marks != nil {
		c.Marks = make(map[string]any, len(n.Marks))
		for k, v := range n.Marks {
			c.Marks[k] = v
		}
	}
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.cloneNode()
		}
	}
	return &c
}
