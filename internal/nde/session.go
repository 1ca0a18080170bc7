/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package nde

import (
	"encoding/json"
	"fmt"
	"time"

	"gosubstudio/internal/undo"
)

// EditSession owns one filter graph being edited and its undo history. Each
// structural edit is recorded as a serialized before/after pair so that undo
// and redo restore exact graph states, including transiently cyclic wirings.
type EditSession struct {
	name  string
	graph *Graph
	hist  *undo.Manager
}

// editRecord is the snapshot blob stored in the undo manager.
type editRecord struct {
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
}

// NewEditSession starts a session for the named filter. The graph is owned
// by the session from here on; hist may be shared across sessions.
func NewEditSession(name string, graph *Graph, hist *undo.Manager) *EditSession {
	if graph == nil {
		graph = NewGraph()
	}
	return &EditSession{name: name, graph: graph, hist: hist}
}

// Name returns the filter name the session edits.
func (s *EditSession) Name() string { return s.name }

// Graph returns the current graph. Mutate it only through Apply, otherwise
// the edit is not undoable.
func (s *EditSession) Graph() *Graph { return s.graph }

// Apply runs one structural edit against the graph and records it in the
// undo history. If the edit or either serialization fails, the graph is
// rolled back to its prior state and nothing is recorded.
func (s *EditSession) Apply(edit func(*Graph) error) error {
	before, err := MarshalGraph(s.graph)
	if err != nil {
		return fmt.Errorf("snapshot before edit: %w", err)
	}
	if err := edit(s.graph); err != nil {
		if restored, rerr := UnmarshalGraph(before); rerr == nil {
			s.graph = restored
		}
		return err
	}
	after, err := MarshalGraph(s.graph)
	if err != nil {
		if restored, rerr := UnmarshalGraph(before); rerr == nil {
			s.graph = restored
		}
		return fmt.Errorf("snapshot after edit: %w", err)
	}
	blob, err := json.Marshal(editRecord{Before: before, After: after})
	if err != nil {
		return fmt.Errorf("encode edit record: %w", err)
	}
	s.hist.PushSnapshot(undo.Snapshot{Filter: s.name, Blob: blob, TS: time.Now()})
	return nil
}

// Undo restores the graph to the state before the most recent edit. It
// returns false when the history for this filter is empty.
func (s *EditSession) Undo() (bool, error) {
	snap, ok := s.hist.Undo(s.name)
	if !ok {
		return false, nil
	}
	return true, s.restore(snap.Blob, false)
}

// Redo re-applies the most recently undone edit.
func (s *EditSession) Redo() (bool, error) {
	snap, ok := s.hist.Redo(s.name)
	if !ok {
		return false, nil
	}
	return true, s.restore(snap.Blob, true)
}

func (s *EditSession) restore(blob []byte, after bool) error {
	var rec editRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return fmt.Errorf("decode edit record: %w", err)
	}
	state := rec.Before
	if after {
		state = rec.After
	}
	g, err := UnmarshalGraph(state)
	if err != nil {
		return fmt.Errorf("restore graph: %w", err)
	}
	s.graph = g
	return nil
}
