/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package nde

import "errors"

// ErrMismatchedTypes is returned by a node when an input socket carries a
// value it cannot work with. The error stays local to the node: downstream
// nodes see a none value and usually fail the same way, while the rest of
// the graph keeps evaluating.
var ErrMismatchedTypes = errors.New("nde: mismatched socket types")

// Node is one filter in a graph. Implementations are pure: Run reads its
// inputs and returns fresh outputs, one per declared output socket.
type Node interface {
	// Kind is the stable identifier used when graphs are serialized.
	Kind() string
	// Inputs lists the expected input socket types. Leaf input types are
	// filled in by the compiler rather than by connections.
	Inputs() []SocketType
	// Outputs lists the produced socket types.
	Outputs() []SocketType
	// Run evaluates the node. inputs has exactly len(Inputs()) entries;
	// missing values are SocketNone.
	Run(inputs []SocketValue) ([]SocketValue, error)
}
