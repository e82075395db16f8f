/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package tree implements pure mutation operations over the canvas element
// forest. Every operation returns a new forest and never touches the input;
// only the path from the root to the mutated node is rebuilt, so untouched
// siblings keep reference identity. Operating on an absent id is always a
// silent no-op, never a panic.
package tree

import "gopagebuilder/internal/domain"

// Forest is an ordered sequence of top-level canvas elements.
type Forest = []*domain.Element

// FindByID returns the first element with the given id in depth-first order,
// or nil when the id is absent.
func FindByID(forest Forest, id string) *domain.Element {
	for _, el := range forest {
		if el.ID == id {
			return el
		}
		if found := FindByID(el.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// ParentID returns the id of the element whose children contain id, or ""
// when id sits at the top level or is absent.
func ParentID(forest Forest, id string) string {
	for _, el := range forest {
		if directChild(el, id) {
			return el.ID
		}
		if p := ParentID(el.Children, id); p != "" {
			return p
		}
	}
	return ""
}

func directChild(el *domain.Element, id string) bool {
	for _, ch := range el.Children {
		if ch.ID == id {
			return true
		}
	}
	return false
}

// UpdateByID replaces the element with the given id by updater's result and
// rebuilds the ancestor path. The updater receives a shallow copy of the node
// and must return the replacement; it must not mutate shared maps or the
// children slice in place. Returns the input forest unchanged (same
// reference) and updated=false when the id is absent.
func UpdateByID(forest Forest, id string, updater func(domain.Element) *domain.Element) (Forest, bool) {
	for i, el := range forest {
		if el.ID == id {
			out := make(Forest, len(forest))
			copy(out, forest)
			out[i] = updater(*el)
			return out, true
		}
		if newChildren, ok := UpdateByID(el.Children, id, updater); ok {
			out := make(Forest, len(forest))
			copy(out, forest)
			repl := *el
			repl.Children = newChildren
			out[i] = &repl
			return out, true
		}
	}
	return forest, false
}

// InsertAsChild appends child to the children of the element with parentID,
// creating the children slice if absent. It does not check container
// capability; that is the Placement Resolver's job. Returns updated=false
// when parentID is not found.
func InsertAsChild(forest Forest, parentID string, child *domain.Element) (Forest, bool) {
	return UpdateByID(forest, parentID, func(parent domain.Element) *domain.Element {
		children := make(Forest, len(parent.Children), len(parent.Children)+1)
		copy(children, parent.Children)
		parent.Children = append(children, child)
		return &parent
	})
}

// RemoveResult reports the outcome of RemoveByID. The three states callers
// must be able to distinguish:
//   - Removed=false: the id was not found anywhere (Elements is the input).
//   - Removed=true, ParentID=="": the node was removed from the top level.
//   - Removed=true, ParentID!="": the node was removed from that parent.
type RemoveResult struct {
	Elements Forest
	Removed  bool
	ParentID string
}

// RemoveByID removes the element with the given id wherever it occurs,
// cascading to its entire subtree.
func RemoveByID(forest Forest, id string) RemoveResult {
	return removeFrom(forest, id, "")
}

func removeFrom(forest Forest, id, parentID string) RemoveResult {
	for i, el := range forest {
		if el.ID == id {
			out := make(Forest, 0, len(forest)-1)
			out = append(out, forest[:i]...)
			out = append(out, forest[i+1:]...)
			return RemoveResult{Elements: out, Removed: true, ParentID: parentID}
		}
		if res := removeFrom(el.Children, id, el.ID); res.Removed {
			out := make(Forest, len(forest))
			copy(out, forest)
			repl := *el
			repl.Children = res.Elements
			out[i] = &repl
			return RemoveResult{Elements: out, Removed: true, ParentID: res.ParentID}
		}
	}
	return RemoveResult{Elements: forest}
}

// MaxZIndex returns the maximum zIndex over every node in the forest,
// or 0 for an empty forest.
func MaxZIndex(forest Forest) int {
	maxZ := 0
	for _, el := range forest {
		if el.ZIndex > maxZ {
			maxZ = el.ZIndex
		}
		if z := MaxZIndex(el.Children); z > maxZ {
			maxZ = z
		}
	}
	return maxZ
}

// CountNodes returns the total number of elements in the forest.
func CountNodes(forest Forest) int {
	n := 0
	for _, el := range forest {
		n += 1 + CountNodes(el.Children)
	}
	return n
}

// Depth returns the maximum nesting depth of the forest (0 when empty).
func Depth(forest Forest) int {
	d := 0
	for _, el := range forest {
		if cd := 1 + Depth(el.Children); cd > d {
			d = cd
		}
	}
	return d
}

// DuplicateIDs returns every id that occurs more than once, in first-seen
// order. A healthy forest returns nil.
func DuplicateIDs(forest Forest) []string {
	seen := map[string]int{}
	var dups []string
	var walk func(Forest)
	walk = func(f Forest) {
		for _, el := range f {
			seen[el.ID]++
			if seen[el.ID] == 2 {
				dups = append(dups, el.ID)
			}
			walk(el.Children)
		}
	}
	walk(forest)
	return dups
}

// SameForest reports whether two forests are the same value: equal length and
// the same backing storage. The History Manager uses this to skip recording
// snapshots for non-mutating dispatches.
func SameForest(a, b Forest) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
