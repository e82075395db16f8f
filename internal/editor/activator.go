/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"
	"sync"
	"time"

	applog "gopagebuilder/internal/log"
)

const (
	// PollInterval is how long the activator waits between checks of the
	// bridge while the canvas brings the target into edit mode.
	PollInterval = 100 * time.Millisecond
	// PollAttempts bounds the handshake; after this many checks the request
	// resolves one way or the other.
	PollAttempts = 10
)

// SignalFunc delivers the activation signal to the canvas, naming the element
// whose embedded editor should be brought into edit mode and focused. The
// canvas answers, eventually or never, by registering that editor on the
// bridge.
type SignalFunc func(elementID string)

// Activator runs the asynchronous activation handshake for formatting
// commands that target a specific element. It polls the bridge on a deferred
// timer chain; a new request supersedes and silently cancels the pending one.
type Activator struct {
	mu       sync.Mutex
	bridge   *Bridge
	signal   SignalFunc
	interval time.Duration
	attempts int
	gen      uint64
	timer    *time.Timer
	log      *slog.Logger
}

// NewActivator wires an activator to the bridge and the canvas signal.
func NewActivator(b *Bridge, signal SignalFunc) *Activator {
	return &Activator{
		bridge:   b,
		signal:   signal,
		interval: PollInterval,
		attempts: PollAttempts,
		log:      applog.WithComponent("editor.activator"),
	}
}

// Request dispatches cmd against the bridge once the editor owned by targetID
// is active. If it already is, cmd runs immediately. Otherwise the activation
// signal is emitted and the bridge is polled; on a match cmd runs. When the
// attempts run out, cmd runs against whatever editor is active only if
// required is false; a required target that never activated aborts silently.
// An empty targetID skips the handshake entirely.
func (a *Activator) Request(targetID string, required bool, cmd func(*Bridge)) {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if targetID == "" || a.bridge.ActiveElementID() == targetID {
		a.mu.Unlock()
		cmd(a.bridge)
		return
	}
	if a.signal != nil {
		a.signal(targetID)
	}
	a.timer = time.AfterFunc(a.interval, func() { a.poll(gen, targetID, required, cmd, 1) })
	a.mu.Unlock()
}

// Cancel invalidates any pending poll, for session teardown.
func (a *Activator) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Activator) poll(gen uint64, targetID string, required bool, cmd func(*Bridge), attempt int) {
	a.mu.Lock()
	if gen != a.gen {
		// superseded or cancelled
		a.mu.Unlock()
		return
	}
	if a.bridge.ActiveElementID() == targetID {
		a.timer = nil
		a.mu.Unlock()
		cmd(a.bridge)
		return
	}
	if attempt >= a.attempts {
		a.timer = nil
		a.mu.Unlock()
		if required {
			a.log.Debug("activation timed out, command dropped", "element", targetID)
			return
		}
		a.log.Debug("activation timed out, running against current editor", "element", targetID)
		cmd(a.bridge)
		return
	}
	a.timer = time.AfterFunc(a.interval, func() { a.poll(gen, targetID, required, cmd, attempt+1) })
	a.mu.Unlock()
}
