/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"strings"

	"log/slog"
)

// Key is one keyboard gesture as the host reports it. Code uses the common
// key-event names ("Delete", "Backspace", single letters lowercased).
type Key struct {
	Code  string
	Ctrl  bool
	Meta  bool
	Shift bool
}

func (k Key) mod() bool { return k.Ctrl || k.Meta }

// HandleKey dispatches a canvas keyboard shortcut. inTextField reports
// whether a native text region currently owns focus; every shortcut is
// suppressed then so typing is never hijacked. The return value tells the
// host whether the event was consumed.
func (s *Session) HandleKey(k Key, inTextField bool) bool {
	if inTextField {
		return false
	}
	code := strings.ToLower(k.Code)

	switch {
	case code == "delete" || code == "backspace":
		return s.Remove(s.SelectedID())
	case k.mod() && code == "s":
		if err := s.Save(context.Background()); err != nil {
			s.log.Warn("save shortcut failed", slog.Any("err", err))
		}
		return true
	case k.mod() && code == "z" && k.Shift:
		return s.Redo()
	case k.mod() && code == "z":
		return s.Undo()
	case k.mod() && code == "c":
		return s.Copy()
	case k.mod() && code == "x":
		return s.Cut()
	case k.mod() && code == "v":
		return s.Paste("") != nil
	case k.mod() && code == "d":
		return s.Duplicate() != nil
	}
	return false
}
