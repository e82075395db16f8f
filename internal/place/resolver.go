/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package place decides where a dropped, pasted or duplicated element lands:
// appended at the forest root or nested inside a container-capable drop
// target. Positions snap to a 10-unit grid; new elements always get a fresh
// id and the highest zIndex in the forest.
package place

import (
	"math"

	"github.com/google/uuid"

	"gopagebuilder/internal/domain"
	"gopagebuilder/internal/tree"
)

const (
	// GridSize is the snap grid pitch in layout units.
	GridSize = 10
	// CloneOffset is the positional offset applied to duplicated and pasted
	// elements relative to their source.
	CloneOffset = 20
)

// defaultSizes gives freshly dropped elements a workable initial extent.
var defaultSizes = map[domain.Type]domain.Size{
	domain.TypeText:      {Width: 200, Height: 40},
	domain.TypeHeading:   {Width: 300, Height: 60},
	domain.TypeParagraph: {Width: 400, Height: 120},
	domain.TypeImage:     {Width: 200, Height: 150},
	domain.TypeButton:    {Width: 140, Height: 44},
	domain.TypeContainer: {Width: 400, Height: 300},
	domain.TypeSection:   {Width: 800, Height: 300},
	domain.TypeHeader:    {Width: 800, Height: 100},
	domain.TypeFooter:    {Width: 800, Height: 100},
	domain.TypeNav:       {Width: 800, Height: 60},
	domain.TypeDivider:   {Width: 400, Height: 10},
	domain.TypeForm:      {Width: 400, Height: 320},
	domain.TypeColumns:   {Width: 800, Height: 240},
	domain.TypeBox:       {Width: 300, Height: 200},
	domain.TypeSpacer:    {Width: 100, Height: 50},
}

const (
	fallbackWidth  = 200
	fallbackHeight = 100
)

// Resolver creates and places elements. The id generator is injectable so
// tests can produce stable ids; the zero value is not usable, construct with
// NewResolver.
type Resolver struct {
	newID func() string
}

// NewResolver returns a Resolver generating uuid ids.
func NewResolver() *Resolver {
	return &Resolver{newID: uuid.NewString}
}

// NewResolverWithIDs returns a Resolver with a custom id generator.
func NewResolverWithIDs(newID func() string) *Resolver {
	return &Resolver{newID: newID}
}

// Placement is the outcome of a resolve operation: the new forest, the
// placed element and whether it was nested inside the requested parent.
type Placement struct {
	Elements tree.Forest
	Placed   *domain.Element
	Nested   bool
}

// Drop places a brand-new element created from a raw library type token.
// parentID may be empty for a root drop; x,y are absolute coordinates for a
// root drop and host-relative coordinates for a nested drop.
func (r *Resolver) Drop(forest tree.Forest, rawType string, parentID string, x, y float64) Placement {
	t := domain.Normalize(rawType)
	size := defaultSizes[t]
	if size.Width == 0 {
		size = domain.Size{Width: fallbackWidth, Height: fallbackHeight}
	}
	el := &domain.Element{
		ID:     r.newID(),
		Type:   t,
		Width:  size.Width,
		Height: size.Height,
	}
	return r.place(forest, el, parentID, x, y)
}

// Paste places a deep clone of source. The clone is re-identified throughout
// its subtree and offset from the source position.
func (r *Resolver) Paste(forest tree.Forest, source *domain.Element, parentID string) Placement {
	clone := r.reidentify(source.Clone())
	return r.place(forest, clone, parentID, source.X+CloneOffset, source.Y+CloneOffset)
}

// place runs the root-vs-nested decision from the drop request. Nested
// placement requires the parent to exist and its normalized type to be
// container-capable; everything else falls back to a root append.
func (r *Resolver) place(forest tree.Forest, el *domain.Element, parentID string, x, y float64) Placement {
	el.ZIndex = tree.MaxZIndex(forest) + 1
	el.X = Snap(x)
	el.Y = Snap(y)

	if parentID != "" {
		parent := tree.FindByID(forest, parentID)
		if parent != nil && domain.ContainerCapable(domain.Normalize(string(parent.Type))) {
			if out, ok := tree.InsertAsChild(forest, parentID, el); ok {
				return Placement{Elements: out, Placed: el, Nested: true}
			}
		}
	}

	out := make(tree.Forest, len(forest), len(forest)+1)
	copy(out, forest)
	out = append(out, el)
	return Placement{Elements: out, Placed: el}
}

// reidentify assigns fresh ids to every node of the subtree.
func (r *Resolver) reidentify(el *domain.Element) *domain.Element {
	el.ID = r.newID()
	for _, ch := range el.Children {
		r.reidentify(ch)
	}
	return el
}

// Snap floors v to the grid pitch.
func Snap(v float64) float64 {
	return math.Floor(v/GridSize) * GridSize
}
