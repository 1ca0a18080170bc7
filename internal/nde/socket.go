/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package nde implements non-destructive editing: filter graphs of typed
// nodes that derive compiled output events from a subtitle line without
// touching the line itself.
package nde

import "gosubstudio/internal/ass"

// SocketType describes what a node socket carries. The editor uses it to
// decide which endpoints may connect; at run time values are checked again
// by each node.
type SocketType uint8

const (
	TypeNone SocketType = iota
	TypeEvent
	TypeMonotonicEvents
	TypeGenericEvents
	TypePosition
	TypeFrameRate
	TypeCompiledEvents

	// Leaf input types are never connected; the compiler substitutes
	// their values directly.
	TypeLeafSline
	TypeLeafFrameRate
)

// SocketValue is one value flowing along a graph edge during a single
// compilation pass. Values are ephemeral and never outlive the pass.
type SocketValue interface{ isSocketValue() }

// SocketNone is the absent value fed to inputs whose producer is missing,
// inactive or errored.
type SocketNone struct{}

// SocketEvent carries a single derived event.
type SocketEvent struct {
	Event ass.Event
}

// SocketMonotonicEvents carries events ordered by start time with no
// overlap, e.g. a frame-by-frame split.
type SocketMonotonicEvents struct {
	Events []ass.Event
}

// SocketGenericEvents carries events with no ordering guarantee.
type SocketGenericEvents struct {
	Events []ass.Event
}

// SocketSline references the subtitle line being compiled. The reference is
// read-only for the duration of the pass.
type SocketSline struct {
	Sline *ass.Sline
}

// SocketPosition carries a point in script coordinates.
type SocketPosition struct {
	Position ass.Position
}

// SocketFrameRate carries the project frame rate.
type SocketFrameRate struct {
	FrameRate ass.FrameRate
}

// SocketCompiledEvents carries the final events the output node produced.
type SocketCompiledEvents struct {
	Events []ass.Event
}

func (SocketNone) isSocketValue()            {}
func (SocketEvent) isSocketValue()           {}
func (SocketMonotonicEvents) isSocketValue() {}
func (SocketGenericEvents) isSocketValue()   {}
func (SocketSline) isSocketValue()           {}
func (SocketPosition) isSocketValue()        {}
func (SocketFrameRate) isSocketValue()       {}
func (SocketCompiledEvents) isSocketValue()  {}

// eventsOf normalizes any event-carrying socket value to a flat slice.
func eventsOf(v SocketValue) ([]ass.Event, bool) {
	switch ev := v.(type) {
	case SocketEvent:
		return []ass.Event{ev.Event}, true
	case SocketMonotonicEvents:
		return ev.Events, true
	case SocketGenericEvents:
		return ev.Events, true
	default:
		return nil, false
	}
}
