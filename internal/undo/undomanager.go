/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo provides an in-memory undo/redo stack per filter graph.
// Blobs are opaque to the manager; the node editor stores a serialized graph
// before every structural edit so that connection drags (including
// transiently cyclic ones) can be rolled back.
package undo

import (
	"sync"
	"time"
)

// Snapshot represents a reversible state blob for one filter.
// Blob content is opaque to the manager; size is estimated as len(Blob).
// TS is when the snapshot was captured.
type Snapshot struct {
	Filter string
	Blob   []byte
	TS     time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerFilter limits number of snapshots per filter kept in memory (0 means unlimited).
	MaxPerFilter int
	// MinInterval coalesces snapshots captured within the interval for the same filter,
	// replacing the previous one instead of pushing a new entry.
	MinInterval time.Duration
}

// Manager provides per-filter undo/redo stacks with performance safeguards.
// It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-filter stacks
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	// Set conservative defaults if not provided
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// PushSnapshot records a snapshot for a filter. If within MinInterval from the
// last snapshot on the same filter, it replaces the last one. Clears the redo
// stack for that filter.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.Filter]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: adjust accounting and replace
			m.totalBytes -= len(last.Blob)
			m.totalBytes += len(s.Blob)
			stack[n-1] = s
			m.undo[s.Filter] = stack
			m.redo[s.Filter] = nil
			m.enforceCapsLocked(s.Filter)
			return
		}
	}
	stack = append(stack, s)
	m.undo[s.Filter] = stack
	m.totalBytes += len(s.Blob)
	// Any new change invalidates redo for the filter
	m.redo[s.Filter] = nil
	m.enforceCapsLocked(s.Filter)
}

// Undo pops from the filter's undo stack and pushes to its redo stack,
// returning the snapshot.
func (m *Manager) Undo(filter string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[filter]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[filter] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[filter] = append(m.redo[filter], s)
	return s, true
}

// Redo pops from redo and pushes back to undo.
func (m *Manager) Redo(filter string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[filter]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[filter] = r[:len(r)-1]
	m.undo[filter] = append(m.undo[filter], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(filter)
	return s, true
}

// ClearFilter clears undo/redo stacks for a filter to free memory.
func (m *Manager) ClearFilter(filter string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[filter] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, filter)
	delete(m.redo, filter)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, filters int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	filters = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, filters, totalSnapshots
}

func (m *Manager) enforceCapsLocked(filter string) {
	// Per-filter depth cap
	if m.cfg.MaxPerFilter > 0 {
		stack := m.undo[filter]
		if len(stack) > m.cfg.MaxPerFilter {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxPerFilter
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[filter] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all filters
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestFilter := ""
		oldestIdx := -1
		var oldestTS time.Time
		for f, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestFilter = f
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestFilter]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestFilter] = stack[1:]
		if len(m.undo[oldestFilter]) == 0 {
			delete(m.undo, oldestFilter)
		}
	}
}
