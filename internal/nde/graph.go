/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package nde

import "errors"

// ErrCycleInGraph is returned when evaluation order cannot be established
// because the connections contain a cycle. Callers surface it as a warning
// and treat the line as uncompiled.
var ErrCycleInGraph = errors.New("nde: cycle in graph")

// VisualNode pairs a filter node with its layout position in the editor.
type VisualNode struct {
	Node Node
	X, Y float64
}

// NextEndpoint is a consuming socket: (node index, input socket index).
type NextEndpoint struct {
	Node   int
	Socket int
}

// PreviousEndpoint is a producing socket: (node index, output socket index).
type PreviousEndpoint struct {
	Node   int
	Socket int
}

// Graph is an editable filter graph. Node index zero is always the output
// node. Connections map each consuming socket to the socket feeding it; a
// user may transiently author a cycle while rewiring, so acyclicity is
// checked at evaluation time, not here.
type Graph struct {
	Nodes       []VisualNode
	Connections map[NextEndpoint]PreviousEndpoint
}

// NewGraph returns a graph holding only an output node.
func NewGraph() *Graph {
	return &Graph{
		Nodes:       []VisualNode{{Node: Output{}}},
		Connections: map[NextEndpoint]PreviousEndpoint{},
	}
}

// FromSingleIntermediate builds the common three-node chain: a subtitle
// line input feeding one intermediate node feeding the output.
func FromSingleIntermediate(node Node) *Graph {
	return &Graph{
		Nodes: []VisualNode{
			{Node: Output{}},
			{Node: node, X: -200},
			{Node: InputSline{}, X: -400},
		},
		Connections: map[NextEndpoint]PreviousEndpoint{
			{Node: 0, Socket: 0}: {Node: 1, Socket: 0},
			{Node: 1, Socket: 0}: {Node: 2, Socket: 0},
		},
	}
}

// AddNode appends a node and returns its index.
func (g *Graph) AddNode(node Node, x, y float64) int {
	g.Nodes = append(g.Nodes, VisualNode{Node: node, X: x, Y: y})
	return len(g.Nodes) - 1
}

// Connect wires a producer socket into a consumer socket, replacing any
// previous connection of that consumer.
func (g *Graph) Connect(from PreviousEndpoint, to NextEndpoint) {
	if g.Connections == nil {
		g.Connections = map[NextEndpoint]PreviousEndpoint{}
	}
	g.Connections[to] = from
}

// Disconnect removes the connection feeding a consumer socket.
func (g *Graph) Disconnect(to NextEndpoint) {
	delete(g.Connections, to)
}

// assertOutputNode panics when the output-node contract is violated. That
// is a programming error, never a user-data condition.
func (g *Graph) assertOutputNode() {
	if len(g.Nodes) == 0 {
		panic("nde: graph has no nodes")
	}
	if _, ok := g.Nodes[0].Node.(Output); !ok {
		panic("nde: node 0 is not the output node")
	}
}

// Dfs walks the graph from the output node along incoming connections and
// returns the node indices in post-order: every producer appears before all
// of its consumers. A cycle anywhere on the walked paths yields
// ErrCycleInGraph.
func (g *Graph) Dfs() ([]int, error) {
	g.assertOutputNode()
	det := newCycleDetector(len(g.Nodes))
	seen := make([]bool, len(g.Nodes))
	var queue []int

	var visit func(n int) error
	visit = func(n int) error {
		seen[n] = true
		for socket := range g.Nodes[n].Node.Inputs() {
			prev, ok := g.Connections[NextEndpoint{Node: n, Socket: socket}]
			if !ok || prev.Node < 0 || prev.Node >= len(g.Nodes) {
				continue
			}
			if !det.setParent(n, prev.Node) {
				return ErrCycleInGraph
			}
			if !seen[prev.Node] {
				if err := visit(prev.Node); err != nil {
					return err
				}
			}
		}
		queue = append(queue, n)
		return nil
	}
	if err := visit(0); err != nil {
		return nil, err
	}
	return queue, nil
}

// cycleDetector keeps a full ancestor matrix over node indices. Quadratic
// in node count, which is fine for the tens of nodes a filter realistically
// has.
type cycleDetector struct {
	n   int
	anc []bool // anc[a*n+c]: a is an ancestor of c
}

func newCycleDetector(n int) *cycleDetector {
	return &cycleDetector{n: n, anc: make([]bool, n*n)}
}

func (d *cycleDetector) isAncestor(a, c int) bool { return d.anc[a*d.n+c] }

// setParent records parent as an ancestor of child, closing the relation
// transitively. It reports false when doing so would make a node its own
// ancestor.
func (d *cycleDetector) setParent(parent, child int) bool {
	if parent == child {
		return false
	}
	parents := []int{parent}
	for a := 0; a < d.n; a++ {
		if d.isAncestor(a, parent) {
			parents = append(parents, a)
		}
	}
	children := []int{child}
	for c := 0; c < d.n; c++ {
		if d.isAncestor(child, c) {
			children = append(children, c)
		}
	}
	for _, a := range parents {
		for _, c := range children {
			if a == c {
				return false
			}
			d.anc[a*d.n+c] = true
		}
	}
	return true
}
