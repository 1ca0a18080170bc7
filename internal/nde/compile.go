/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package nde

import (
	"gosubstudio/internal/ass"
	"gosubstudio/internal/log"
)

// nodeStateKind tracks how far one node got during a pass.
type nodeStateKind uint8

const (
	// NodeInactive means the node was never reached or never ran.
	NodeInactive nodeStateKind = iota
	// NodeActive means the node ran and produced outputs.
	NodeActive
	// NodeError means the node ran and failed; its consumers see none
	// values.
	NodeError
)

// NodeState is the per-node outcome of one compilation pass. The editor
// shows these as intermediate results on each node.
type NodeState struct {
	Kind    nodeStateKind
	Outputs []SocketValue
	Err     error
}

// CompileResult is the outcome of evaluating a graph over one line.
type CompileResult struct {
	// Events is nil when the output node never became active; the caller
	// treats that as "filter produced nothing", not as a failure.
	Events []ass.Event
	// Intermediates holds one state per node index.
	Intermediates []NodeState
}

// Compile evaluates the graph for one subtitle line. Node errors stay local:
// an errored producer feeds none values to its consumers and evaluation
// continues. Only a cycle aborts the pass.
func Compile(sline *ass.Sline, graph *Graph, frameRate ass.FrameRate, counter *ass.ReadOrderCounter) (CompileResult, error) {
	queue, err := graph.Dfs()
	if err != nil {
		return CompileResult{}, err
	}

	states := make([]NodeState, len(graph.Nodes))
	for _, n := range queue {
		node := graph.Nodes[n].Node
		inputTypes := node.Inputs()
		inputs := make([]SocketValue, len(inputTypes))
		for socket, st := range inputTypes {
			switch st {
			case TypeLeafSline:
				inputs[socket] = SocketSline{Sline: sline}
			case TypeLeafFrameRate:
				inputs[socket] = SocketFrameRate{FrameRate: frameRate}
			default:
				inputs[socket] = SocketNone{}
				prev, ok := graph.Connections[NextEndpoint{Node: n, Socket: socket}]
				if !ok {
					continue
				}
				src := states[prev.Node]
				if src.Kind != NodeActive || prev.Socket >= len(src.Outputs) {
					continue
				}
				inputs[socket] = src.Outputs[prev.Socket]
			}
		}

		outputs, err := node.Run(inputs)
		if err != nil {
			log.WithComponent("nde").Debug("node failed", "node", node.Kind(), "index", n, "err", err)
			states[n] = NodeState{Kind: NodeError, Err: err}
			continue
		}
		states[n] = NodeState{Kind: NodeActive, Outputs: outputs}
	}

	result := CompileResult{Intermediates: states}
	out := states[0]
	if out.Kind != NodeActive {
		return result, nil
	}
	compiled, ok := out.Outputs[0].(SocketCompiledEvents)
	if !ok {
		panic("nde: output node produced no compiled events socket")
	}
	events := make([]ass.Event, len(compiled.Events))
	copy(events, compiled.Events)
	for i := range events {
		events[i].ReadOrder = counter.Next()
	}
	result.Events = events
	return result, nil
}
