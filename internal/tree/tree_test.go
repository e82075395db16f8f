/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package tree

import (
	"testing"

	"gopagebuilder/internal/domain"
)

// fixture:
//
//	a (section)
//	  b (box)
//	    c (text)
//	d (image)
func fixture() Forest {
	return Forest{
		{ID: "a", Type: domain.TypeSection, ZIndex: 1, Children: Forest{
			{ID: "b", Type: domain.TypeBox, ZIndex: 2, Children: Forest{
				{ID: "c", Type: domain.TypeText, ZIndex: 5},
			}},
		}},
		{ID: "d", Type: domain.TypeImage, ZIndex: 3},
	}
}

func TestFindByID(t *testing.T) {
	f := fixture()
	for _, id := range []string{"a", "b", "c", "d"} {
		got := FindByID(f, id)
		if got == nil || got.ID != id {
			t.Fatalf("FindByID(%q) = %+v", id, got)
		}
	}
	if FindByID(f, "nope") != nil {
		t.Fatal("FindByID of absent id must return nil")
	}
	if FindByID(nil, "a") != nil {
		t.Fatal("FindByID over empty forest must return nil")
	}
}

func TestParentID(t *testing.T) {
	f := fixture()
	cases := map[string]string{"a": "", "d": "", "b": "a", "c": "b", "nope": ""}
	for id, want := range cases {
		if got := ParentID(f, id); got != want {
			t.Fatalf("ParentID(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestUpdateByIDNested(t *testing.T) {
	f := fixture()
	out, ok := UpdateByID(f, "c", func(el domain.Element) *domain.Element {
		el.X = 42
		return &el
	})
	if !ok {
		t.Fatal("expected update to succeed")
	}
	if FindByID(out, "c").X != 42 {
		t.Fatal("update not applied")
	}
	// input untouched
	if FindByID(f, "c").X != 0 {
		t.Fatal("input forest was mutated")
	}
	// untouched root sibling keeps reference identity
	if out[1] != f[1] {
		t.Fatal("untouched sibling was rebuilt")
	}
	// ancestor path is rebuilt
	if out[0] == f[0] {
		t.Fatal("ancestor of mutated node should be a new node")
	}
}

func TestUpdateByIDAbsent(t *testing.T) {
	f := fixture()
	out, ok := UpdateByID(f, "zzz", func(el domain.Element) *domain.Element { return &el })
	if ok {
		t.Fatal("update of absent id must report false")
	}
	if !SameForest(out, f) {
		t.Fatal("absent update must return the same forest reference")
	}
}

func TestInsertAsChild(t *testing.T) {
	f := fixture()
	child := &domain.Element{ID: "e", Type: domain.TypeButton}
	out, ok := InsertAsChild(f, "b", child)
	if !ok {
		t.Fatal("insert into existing parent failed")
	}
	b := FindByID(out, "b")
	if len(b.Children) != 2 || b.Children[1].ID != "e" {
		t.Fatalf("child not appended: %+v", b.Children)
	}
	if FindByID(out, "e") == nil {
		t.Fatal("inserted child not findable")
	}
	// creating the children slice when absent
	out2, ok := InsertAsChild(out, "d", &domain.Element{ID: "f", Type: domain.TypeText})
	if !ok || len(FindByID(out2, "d").Children) != 1 {
		t.Fatal("insert did not create children slice")
	}
	// absent parent is a silent no-op
	out3, ok := InsertAsChild(f, "nope", child)
	if ok || !SameForest(out3, f) {
		t.Fatal("insert into absent parent must be a no-op")
	}
	if FindByID(f, "e") != nil {
		t.Fatal("input forest was mutated by insert")
	}
}

func TestRemoveByIDThreeOutcomes(t *testing.T) {
	f := fixture()

	// nested: parent reported
	res := RemoveByID(f, "c")
	if !res.Removed || res.ParentID != "b" {
		t.Fatalf("nested removal outcome: %+v", res)
	}
	if FindByID(res.Elements, "c") != nil {
		t.Fatal("removed element still findable")
	}

	// top-level: empty parent id
	res = RemoveByID(f, "d")
	if !res.Removed || res.ParentID != "" {
		t.Fatalf("top-level removal outcome: %+v", res)
	}
	if len(res.Elements) != 1 {
		t.Fatalf("top-level removal left %d roots", len(res.Elements))
	}

	// absent: not removed, forest unchanged
	res = RemoveByID(f, "zzz")
	if res.Removed || !SameForest(res.Elements, f) {
		t.Fatalf("absent removal outcome: %+v", res)
	}
}

func TestRemoveCascadesSubtree(t *testing.T) {
	f := fixture()
	res := RemoveByID(f, "b")
	if !res.Removed || res.ParentID != "a" {
		t.Fatalf("unexpected outcome: %+v", res)
	}
	if FindByID(res.Elements, "c") != nil {
		t.Fatal("descendant survived subtree removal")
	}
	// input untouched
	if FindByID(f, "b") == nil || FindByID(f, "c") == nil {
		t.Fatal("input forest was mutated by removal")
	}
}

func TestMaxZIndex(t *testing.T) {
	if got := MaxZIndex(fixture()); got != 5 {
		t.Fatalf("MaxZIndex = %d, want 5", got)
	}
	if got := MaxZIndex(nil); got != 0 {
		t.Fatalf("MaxZIndex(empty) = %d, want 0", got)
	}
}

func TestCountAndDepth(t *testing.T) {
	f := fixture()
	if got := CountNodes(f); got != 4 {
		t.Fatalf("CountNodes = %d, want 4", got)
	}
	if got := Depth(f); got != 3 {
		t.Fatalf("Depth = %d, want 3", got)
	}
}

func TestDuplicateIDs(t *testing.T) {
	f := fixture()
	if dups := DuplicateIDs(f); dups != nil {
		t.Fatalf("healthy forest reported duplicates: %v", dups)
	}
	f = append(f, &domain.Element{ID: "a", Type: domain.TypeText})
	dups := DuplicateIDs(f)
	if len(dups) != 1 || dups[0] != "a" {
		t.Fatalf("DuplicateIDs = %v, want [a]", dups)
	}
}

func TestFindAfterRemoveProperty(t *testing.T) {
	f := fixture()
	for _, id := range []string{"a", "b", "c", "d"} {
		res := RemoveByID(f, id)
		if !res.Removed {
			t.Fatalf("remove %q failed", id)
		}
		if FindByID(res.Elements, id) != nil {
			t.Fatalf("element %q findable after removal", id)
		}
	}
}
