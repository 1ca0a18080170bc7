/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package nde

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gosubstudio/internal/ass"
)

// GraphSchema is the JSON schema for serialized graphs. The copy under
// docs/ is the published version of the same document.
//
//go:embed filtergraph.schema.json
var GraphSchema []byte

// graphFormatVersion is bumped whenever the persisted shape changes in a way
// older readers cannot handle.
const graphFormatVersion = 1

// graphDocument is the persisted form of a Graph.
type graphDocument struct {
	Version     int                `json:"version"`
	Nodes       []nodeDocument     `json:"nodes"`
	Connections []connectionRecord `json:"connections"`
}

type nodeDocument struct {
	Kind     string          `json:"kind"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type connectionRecord struct {
	From endpointRecord `json:"from"`
	To   endpointRecord `json:"to"`
}

type endpointRecord struct {
	Node   int `json:"node"`
	Socket int `json:"socket"`
}

type positionSettings struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalGraph renders the graph as indented JSON suitable for storage.
func MarshalGraph(g *Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("nil graph")
	}
	doc := graphDocument{
		Version:     graphFormatVersion,
		Nodes:       make([]nodeDocument, 0, len(g.Nodes)),
		Connections: make([]connectionRecord, 0, len(g.Connections)),
	}
	for i, vn := range g.Nodes {
		nd := nodeDocument{Kind: vn.Node.Kind(), X: vn.X, Y: vn.Y}
		settings, err := settingsOf(vn.Node)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, nd.Kind, err)
		}
		nd.Settings = settings
		doc.Nodes = append(doc.Nodes, nd)
	}
	for to, from := range g.Connections {
		doc.Connections = append(doc.Connections, connectionRecord{
			From: endpointRecord{Node: from.Node, Socket: from.Socket},
			To:   endpointRecord{Node: to.Node, Socket: to.Socket},
		})
	}
	sortConnections(doc.Connections)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalGraph reconstructs a Graph from MarshalGraph output. The
// document must carry an output node at index zero; endpoints referring to
// nodes outside the document are rejected.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var doc graphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}
	if doc.Version != graphFormatVersion {
		return nil, fmt.Errorf("unsupported graph format version %d", doc.Version)
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}
	g := &Graph{
		Nodes:       make([]VisualNode, 0, len(doc.Nodes)),
		Connections: make(map[NextEndpoint]PreviousEndpoint, len(doc.Connections)),
	}
	for i, nd := range doc.Nodes {
		node, err := nodeFromDocument(nd)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		g.Nodes = append(g.Nodes, VisualNode{Node: node, X: nd.X, Y: nd.Y})
	}
	if _, ok := g.Nodes[0].Node.(Output); !ok {
		return nil, fmt.Errorf("node 0 must be the output node, got %q", g.Nodes[0].Node.Kind())
	}
	for _, c := range doc.Connections {
		if err := checkEndpoint(c.From, len(g.Nodes)); err != nil {
			return nil, err
		}
		if err := checkEndpoint(c.To, len(g.Nodes)); err != nil {
			return nil, err
		}
		g.Connections[NextEndpoint{Node: c.To.Node, Socket: c.To.Socket}] =
			PreviousEndpoint{Node: c.From.Node, Socket: c.From.Socket}
	}
	return g, nil
}

// ValidateGraphDocument checks a serialized graph against the embedded JSON
// schema. It catches shape problems with field-level messages before
// UnmarshalGraph interprets the document.
func ValidateGraphDocument(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(GraphSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate graph document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("graph document invalid: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func checkEndpoint(e endpointRecord, nodes int) error {
	if e.Node < 0 || e.Node >= nodes {
		return fmt.Errorf("connection endpoint node %d out of range", e.Node)
	}
	if e.Socket < 0 {
		return fmt.Errorf("connection endpoint socket %d out of range", e.Socket)
	}
	return nil
}

// settingsOf extracts the per-node settings payload. Most nodes are pure
// and carry none.
func settingsOf(node Node) (json.RawMessage, error) {
	switch n := node.(type) {
	case *Position:
		return json.Marshal(positionSettings{X: n.Value.X, Y: n.Value.Y})
	case InputSline, InputFrameRate, Output, Italicise, SetPosition, SplitFrameByFrame:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", node.Kind())
	}
}

// nodeFromDocument is the factory for persisted node kinds.
func nodeFromDocument(nd nodeDocument) (Node, error) {
	switch nd.Kind {
	case "input-sline":
		return InputSline{}, nil
	case "input-frame-rate":
		return InputFrameRate{}, nil
	case "output":
		return Output{}, nil
	case "italicise":
		return Italicise{}, nil
	case "set-position":
		return SetPosition{}, nil
	case "position":
		var s positionSettings
		if len(nd.Settings) > 0 {
			if err := json.Unmarshal(nd.Settings, &s); err != nil {
				return nil, fmt.Errorf("position settings: %w", err)
			}
		}
		return &Position{Value: ass.Position{X: s.X, Y: s.Y}}, nil
	case "split-frame-by-frame":
		return SplitFrameByFrame{}, nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", nd.Kind)
	}
}

// sortConnections gives MarshalGraph deterministic output; map iteration
// order would otherwise leak into the persisted bytes.
func sortConnections(cs []connectionRecord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].To.Node != cs[j].To.Node {
			return cs[i].To.Node < cs[j].To.Node
		}
		return cs[i].To.Socket < cs[j].To.Socket
	})
}
