/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package schema validates the JSON surfaces the builder exchanges with the
// outside: drag payloads arriving from the palette and full page documents
// loaded from drafts or handed to the publisher.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed dragpayload.schema.json
var dragPayloadSchema []byte

//go:embed page.schema.json
var pageSchema []byte

var (
	dragPayload = mustCompile("dragpayload", dragPayloadSchema)
	page        = mustCompile("page", pageSchema)
)

func mustCompile(name string, raw []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("schema %s does not compile: %v", name, err))
	}
	return s
}

// ValidateDragPayload checks a palette drag payload. At minimum it must be an
// object with a non-empty "type" string.
func ValidateDragPayload(doc []byte) error {
	return validate(dragPayload, "drag payload", doc)
}

// ValidatePage checks a serialized page document.
func ValidatePage(doc []byte) error {
	return validate(page, "page document", doc)
}

func validate(s *gojsonschema.Schema, what string, doc []byte) error {
	res, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate %s: %w", what, err)
	}
	if res.Valid() {
		return nil
	}
	var b strings.Builder
	for i, e := range res.Errors() {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.String())
	}
	return fmt.Errorf("%s invalid: %s", what, b.String())
}
