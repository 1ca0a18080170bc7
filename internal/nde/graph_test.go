/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package nde

import (
	"errors"
	"testing"

	"gosubstudio/internal/ass"
)

func requireTopoOrder(t *testing.T, g *Graph, queue []int) {
	t.Helper()
	pos := map[int]int{}
	for i, n := range queue {
		pos[n] = i
	}
	for to, from := range g.Connections {
		pi, pok := pos[from.Node]
		ci, cok := pos[to.Node]
		if !pok || !cok {
			continue
		}
		if pi >= ci {
			t.Fatalf("producer %d scheduled at %d, after consumer %d at %d", from.Node, pi, to.Node, ci)
		}
	}
}

func TestDfsSingleIntermediate(t *testing.T) {
	g := FromSingleIntermediate(Italicise{})
	queue, err := g.Dfs()
	if err != nil {
		t.Fatalf("dfs: %v", err)
	}
	want := []int{2, 1, 0}
	if len(queue) != 3 {
		t.Fatalf("queue length: %v", queue)
	}
	for i := range want {
		if queue[i] != want[i] {
			t.Fatalf("queue order: %v, want %v", queue, want)
		}
	}
}

func TestDfsDetectsBackEdgeCycle(t *testing.T) {
	g := FromSingleIntermediate(Italicise{})
	// Wire the output's result back into the leaf: output -> italicise ->
	// leaf -> output is now a loop.
	g.Connect(PreviousEndpoint{Node: 0, Socket: 0}, NextEndpoint{Node: 2, Socket: 0})
	if _, err := g.Dfs(); !errors.Is(err, ErrCycleInGraph) {
		t.Fatalf("expected cycle, got %v", err)
	}
}

func TestDfsDetectsLongerCycle(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Italicise{}, 0, 0)
	b := g.AddNode(Italicise{}, 0, 0)
	c := g.AddNode(Italicise{}, 0, 0)
	g.Connect(PreviousEndpoint{Node: a}, NextEndpoint{Node: 0})
	g.Connect(PreviousEndpoint{Node: b}, NextEndpoint{Node: a})
	g.Connect(PreviousEndpoint{Node: c}, NextEndpoint{Node: b})
	g.Connect(PreviousEndpoint{Node: a}, NextEndpoint{Node: c})
	if _, err := g.Dfs(); !errors.Is(err, ErrCycleInGraph) {
		t.Fatalf("expected cycle, got %v", err)
	}
}

// mergeEvents is a test node with two event inputs, for fan-in shapes the
// built-in nodes cannot express.
type mergeEvents struct{}

func (mergeEvents) Kind() string { return "merge-events" }
func (mergeEvents) Inputs() []SocketType {
	return []SocketType{TypeGenericEvents, TypeGenericEvents}
}
func (mergeEvents) Outputs() []SocketType { return []SocketType{TypeGenericEvents} }

func (mergeEvents) Run(inputs []SocketValue) ([]SocketValue, error) {
	a, ok := eventsOf(inputs[0])
	if !ok {
		return nil, ErrMismatchedTypes
	}
	b, ok := eventsOf(inputs[1])
	if !ok {
		return nil, ErrMismatchedTypes
	}
	return []SocketValue{SocketGenericEvents{Events: append(append([]ass.Event{}, a...), b...)}}, nil
}

func TestDfsDiamondIsNotACycle(t *testing.T) {
	// One producer fanning out to two branches that rejoin is acyclic.
	g := NewGraph()
	merge := g.AddNode(mergeEvents{}, 0, 0)
	left := g.AddNode(Italicise{}, 0, 0)
	right := g.AddNode(Italicise{}, 0, 0)
	leaf := g.AddNode(InputSline{}, 0, 0)
	g.Connect(PreviousEndpoint{Node: merge}, NextEndpoint{Node: 0})
	g.Connect(PreviousEndpoint{Node: left}, NextEndpoint{Node: merge, Socket: 0})
	g.Connect(PreviousEndpoint{Node: right}, NextEndpoint{Node: merge, Socket: 1})
	g.Connect(PreviousEndpoint{Node: leaf}, NextEndpoint{Node: left})
	g.Connect(PreviousEndpoint{Node: leaf}, NextEndpoint{Node: right})
	queue, err := g.Dfs()
	if err != nil {
		t.Fatalf("dfs: %v", err)
	}
	if len(queue) != 5 {
		t.Fatalf("queue: %v", queue)
	}
	requireTopoOrder(t, g, queue)
}

func TestDfsMultipleInputKinds(t *testing.T) {
	g := NewGraph()
	set := g.AddNode(SetPosition{}, 0, 0)
	ital := g.AddNode(Italicise{}, 0, 0)
	posn := g.AddNode(&Position{}, 0, 0)
	leaf := g.AddNode(InputSline{}, 0, 0)
	g.Connect(PreviousEndpoint{Node: set}, NextEndpoint{Node: 0})
	g.Connect(PreviousEndpoint{Node: ital}, NextEndpoint{Node: set, Socket: 0})
	g.Connect(PreviousEndpoint{Node: posn}, NextEndpoint{Node: set, Socket: 1})
	g.Connect(PreviousEndpoint{Node: leaf}, NextEndpoint{Node: ital})
	queue, err := g.Dfs()
	if err != nil {
		t.Fatalf("dfs: %v", err)
	}
	if len(queue) != 5 {
		t.Fatalf("queue: %v", queue)
	}
	requireTopoOrder(t, g, queue)
}

func TestDfsIgnoresUnreachableNodes(t *testing.T) {
	g := FromSingleIntermediate(Italicise{})
	g.AddNode(Italicise{}, 0, 0) // dangling
	queue, err := g.Dfs()
	if err != nil {
		t.Fatalf("dfs: %v", err)
	}
	if len(queue) != 3 {
		t.Fatalf("unreachable node must not be scheduled: %v", queue)
	}
	requireTopoOrder(t, g, queue)
}

func TestDfsPanicsWithoutOutputNode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for missing output node")
		}
	}()
	g := &Graph{Nodes: []VisualNode{{Node: Italicise{}}}}
	g.Dfs() //nolint:errcheck
}

func TestCycleDetectorTransitivity(t *testing.T) {
	d := newCycleDetector(4)
	if !d.setParent(0, 1) || !d.setParent(1, 2) || !d.setParent(2, 3) {
		t.Fatalf("chain must be acyclic")
	}
	if !d.isAncestor(0, 3) {
		t.Fatalf("ancestry must close transitively")
	}
	if d.setParent(3, 0) {
		t.Fatalf("closing the loop must be detected")
	}
	if d.setParent(1, 1) {
		t.Fatalf("self edge must be detected")
	}
}
