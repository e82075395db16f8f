/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the canvas document model: the element tree placed on
// a page, the closed set of canonical element types, and the page document
// envelope handed to the save collaborator. The model serializes to JSON.
package domain

// Element is a node in the canvas tree. IDs are unique across the entire
// forest, including nested subtrees. Children is present only on
// container-capable types; for all other types it must stay nil.
type Element struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	ZIndex   int            `json:"zIndex"`
	Rotation float64        `json:"rotation,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Styles   map[string]any `json:"styles,omitempty"`
	// Animation is opaque to the core; it is carried through untouched.
	Animation map[string]any `json:"animation,omitempty"`
	Children  []*Element     `json:"children,omitempty"`
}

// Size is the canvas extent in layout units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageSettings carries page-level metadata owned by the surrounding CMS.
type PageSettings struct {
	Title     string `json:"title,omitempty"`
	Slug      string `json:"slug,omitempty"`
	Published bool   `json:"published"`
}

// PageDocument is the unit handed to the save collaborator: the element
// forest plus page settings and canvas size.
type PageDocument struct {
	Elements []*Element   `json:"elements"`
	Settings PageSettings `json:"settings"`
	Canvas   Size         `json:"canvasSize"`
}

// Clone returns a deep copy of the element and its subtree. IDs are copied
// verbatim; callers that need fresh ids re-identify the copy afterwards.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	c.Props = cloneMap(e.Props)
	c.Styles = cloneMap(e.Styles)
	c.Animation = cloneMap(e.Animation)
	if e.Children != nil {
		c.Children = make([]*Element, len(e.Children))
		for i, ch := range e.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
