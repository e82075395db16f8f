/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import "strings"

// Type is one canonical element type tag from a closed enumeration.
type Type string

const (
	TypeText      Type = "text"
	TypeHeading   Type = "heading"
	TypeParagraph Type = "paragraph"
	TypeImage     Type = "image"
	TypeButton    Type = "button"
	TypeContainer Type = "container"
	TypeSection   Type = "section"
	TypeHeader    Type = "header"
	TypeFooter    Type = "footer"
	TypeNav       Type = "nav"
	TypeDivider   Type = "divider"
	TypeVideo     Type = "video"
	TypeIcon      Type = "icon"
	TypeForm      Type = "form"
	TypeInput     Type = "input"
	TypeTextarea  Type = "textarea"
	TypeSelect    Type = "select"
	TypeCheckbox  Type = "checkbox"
	TypeRadio     Type = "radio"
	TypeSpacer    Type = "spacer"
	TypeColumns   Type = "columns"
	TypeMap       Type = "map"
	TypeBox       Type = "box"
	TypeEmbed     Type = "embed"
	TypeList      Type = "list"
	TypeLink      Type = "link"
	TypeQuote     Type = "quote"
	TypeComment   Type = "comment"
)

// canonical is the closed set of valid element type tags.
var canonical = map[Type]bool{
	TypeText: true, TypeHeading: true, TypeParagraph: true, TypeImage: true,
	TypeButton: true, TypeContainer: true, TypeSection: true, TypeHeader: true,
	TypeFooter: true, TypeNav: true, TypeDivider: true, TypeVideo: true,
	TypeIcon: true, TypeForm: true, TypeInput: true, TypeTextarea: true,
	TypeSelect: true, TypeCheckbox: true, TypeRadio: true, TypeSpacer: true,
	TypeColumns: true, TypeMap: true, TypeBox: true, TypeEmbed: true,
	TypeList: true, TypeLink: true, TypeQuote: true, TypeComment: true,
}

// containerCapable is the closed set of types allowed to own children.
var containerCapable = map[Type]bool{
	TypeForm: true, TypeBox: true, TypeContainer: true, TypeSection: true,
	TypeHeader: true, TypeFooter: true, TypeNav: true, TypeColumns: true,
}

// synonyms maps folded legacy tokens to canonical types. Keys are already
// lower-cased with non-alphanumerics stripped.
var synonyms = map[string]Type{
	"textinputfield":   TypeInput,
	"inputfield":       TypeInput,
	"textinput":        TypeInput,
	"textfield":        TypeInput,
	"multilinetext":    TypeTextarea,
	"textbox":          TypeTextarea,
	"dropdownselector": TypeSelect,
	"dropdown":         TypeSelect,
	"radiobuttons":     TypeRadio,
	"radiobutton":      TypeRadio,
	"checkboxinputs":   TypeCheckbox,
	"checkboxinput":    TypeCheckbox,
	"img":              TypeImage,
	"picture":          TypeImage,
	"btn":              TypeButton,
	"hyperlink":        TypeLink,
	"hr":               TypeDivider,
	"separator":        TypeDivider,
	"title":            TypeHeading,
	"cols":             TypeColumns,
	"group":            TypeBox,
}

// Normalize maps a free-form or legacy type token to a canonical type tag.
// Matching folds the token to lower case and strips every non-alphanumeric
// rune first. Unknown tokens fall back to "text". Normalize is pure, total
// and idempotent.
func Normalize(raw string) Type {
	tok := fold(raw)
	if t, ok := synonyms[tok]; ok {
		return t
	}
	switch {
	case strings.Contains(tok, "dropdown"), strings.Contains(tok, "select"):
		return TypeSelect
	case strings.Contains(tok, "textinput"), strings.Contains(tok, "textfield"):
		return TypeInput
	case strings.Contains(tok, "checkbox"):
		return TypeCheckbox
	}
	if canonical[Type(tok)] {
		return Type(tok)
	}
	return TypeText
}

// IsCanonical reports whether t is a member of the closed type set.
func IsCanonical(t Type) bool { return canonical[t] }

// ContainerCapable reports whether elements of type t may own children.
// Raw strings must go through Normalize before this predicate is meaningful.
func ContainerCapable(t Type) bool { return containerCapable[t] }

// fold lower-cases s and drops all non-alphanumeric runes.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
