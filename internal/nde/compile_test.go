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
	"strings"
	"testing"

	"gosubstudio/internal/ass"
)

var ntsc = ass.FrameRate{Numerator: 24000, Denominator: 1001}

func testSline(text string) *ass.Sline {
	return &ass.Sline{Start: 0, Duration: 1000, Text: text}
}

func TestCompileItalicise(t *testing.T) {
	g := FromSingleIntermediate(Italicise{})
	var counter ass.ReadOrderCounter
	res, err := Compile(testSline("hello world"), g, ntsc, &counter)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(res.Events))
	}
	ev := res.Events[0]
	if ev.Text != `{\i1}hello world` {
		t.Fatalf("italicised text: %q", ev.Text)
	}
	if ev.Start != 0 || ev.Duration != 1000 {
		t.Fatalf("timing not carried over: %+v", ev)
	}
	if ev.ReadOrder != 0 {
		t.Fatalf("read order: %d", ev.ReadOrder)
	}
}

func TestCompileReadOrderIsShared(t *testing.T) {
	g := FromSingleIntermediate(Italicise{})
	var counter ass.ReadOrderCounter
	for want := int32(0); want < 3; want++ {
		res, err := Compile(testSline("x"), g, ntsc, &counter)
		if err != nil {
			t.Fatalf("compile: %v", err)
		}
		if res.Events[0].ReadOrder != want {
			t.Fatalf("read order %d, want %d", res.Events[0].ReadOrder, want)
		}
	}
}

func TestCompileCyclePropagates(t *testing.T) {
	g := FromSingleIntermediate(Italicise{})
	g.Connect(PreviousEndpoint{Node: 0}, NextEndpoint{Node: 2})
	var counter ass.ReadOrderCounter
	if _, err := Compile(testSline("x"), g, ntsc, &counter); !errors.Is(err, ErrCycleInGraph) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestCompileDisconnectedOutputYieldsNoEvents(t *testing.T) {
	// The output node's input is unconnected, so it errors node-locally
	// and the compile succeeds with nil events.
	g := NewGraph()
	var counter ass.ReadOrderCounter
	res, err := Compile(testSline("x"), g, ntsc, &counter)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Events != nil {
		t.Fatalf("expected nil events, got %#v", res.Events)
	}
	if res.Intermediates[0].Kind != NodeError {
		t.Fatalf("output state: %+v", res.Intermediates[0])
	}
	if !errors.Is(res.Intermediates[0].Err, ErrMismatchedTypes) {
		t.Fatalf("output error: %v", res.Intermediates[0].Err)
	}
}

func TestCompileErrorStaysNodeLocal(t *testing.T) {
	// position -> set-position chain where the events input is missing:
	// the position node still evaluates successfully.
	g := NewGraph()
	set := g.AddNode(SetPosition{}, 0, 0)
	posn := g.AddNode(&Position{Value: ass.Position{X: 1, Y: 2}}, 0, 0)
	g.Connect(PreviousEndpoint{Node: set}, NextEndpoint{Node: 0})
	g.Connect(PreviousEndpoint{Node: posn}, NextEndpoint{Node: set, Socket: 1})

	var counter ass.ReadOrderCounter
	res, err := Compile(testSline("x"), g, ntsc, &counter)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Events != nil {
		t.Fatalf("expected nil events")
	}
	if res.Intermediates[posn].Kind != NodeActive {
		t.Fatalf("position node must stay active: %+v", res.Intermediates[posn])
	}
	if res.Intermediates[set].Kind != NodeError {
		t.Fatalf("set-position must error: %+v", res.Intermediates[set])
	}
}

func TestCompileSetPosition(t *testing.T) {
	g := NewGraph()
	set := g.AddNode(SetPosition{}, 0, 0)
	posn := g.AddNode(&Position{Value: ass.Position{X: 320, Y: 240}}, 0, 0)
	leaf := g.AddNode(InputSline{}, 0, 0)
	g.Connect(PreviousEndpoint{Node: set}, NextEndpoint{Node: 0})
	g.Connect(PreviousEndpoint{Node: leaf}, NextEndpoint{Node: set, Socket: 0})
	g.Connect(PreviousEndpoint{Node: posn}, NextEndpoint{Node: set, Socket: 1})

	var counter ass.ReadOrderCounter
	res, err := Compile(testSline("hi"), g, ntsc, &counter)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].Text != `{\pos(320,240)}hi` {
		t.Fatalf("positioned text: %#v", res.Events)
	}
}

func TestCompileSetPositionReplacesExisting(t *testing.T) {
	g := NewGraph()
	set := g.AddNode(SetPosition{}, 0, 0)
	posn := g.AddNode(&Position{Value: ass.Position{X: 1, Y: 2}}, 0, 0)
	leaf := g.AddNode(InputSline{}, 0, 0)
	g.Connect(PreviousEndpoint{Node: set}, NextEndpoint{Node: 0})
	g.Connect(PreviousEndpoint{Node: leaf}, NextEndpoint{Node: set, Socket: 0})
	g.Connect(PreviousEndpoint{Node: posn}, NextEndpoint{Node: set, Socket: 1})

	var counter ass.ReadOrderCounter
	res, err := Compile(testSline(`{\pos(9,9)}hi`), g, ntsc, &counter)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := res.Events[0].Text; got != `{\pos(1,2)}hi` {
		t.Fatalf("position not replaced: %q", got)
	}
}

func TestCompileSplitFrameByFrame(t *testing.T) {
	g := FromSingleIntermediate(SplitFrameByFrame{})
	var counter ass.ReadOrderCounter
	res, err := Compile(testSline("x"), g, ntsc, &counter)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	// 1000ms at 24000/1001 covers frames 0..23.
	if len(res.Events) != 24 {
		t.Fatalf("frame count: %d", len(res.Events))
	}
	var total ass.Milliseconds
	prevEnd := ass.Milliseconds(0)
	for i, ev := range res.Events {
		if ev.Start != prevEnd {
			t.Fatalf("frame %d starts at %d, previous ended at %d", i, ev.Start, prevEnd)
		}
		if ev.Duration <= 0 {
			t.Fatalf("frame %d has duration %d", i, ev.Duration)
		}
		if ev.ReadOrder != int32(i) {
			t.Fatalf("frame %d read order %d", i, ev.ReadOrder)
		}
		prevEnd = ev.End()
		total += ev.Duration
	}
	if total != 1000 {
		t.Fatalf("durations must cover the line exactly, got %d", total)
	}
}

func TestItalicisePreservesExistingTags(t *testing.T) {
	out, err := Italicise{}.Run([]SocketValue{
		SocketEvent{Event: ass.Event{Text: `a{\b1}b`}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	events := out[0].(SocketGenericEvents).Events
	got := events[0].Text
	if !strings.Contains(got, `\b1`) || !strings.HasPrefix(got, `{\i1}a`) {
		t.Fatalf("italicise output: %q", got)
	}
}

func TestNodeRunTypeMismatch(t *testing.T) {
	if _, err := (Italicise{}).Run([]SocketValue{SocketNone{}}); !errors.Is(err, ErrMismatchedTypes) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if _, err := (Output{}).Run([]SocketValue{SocketPosition{}}); !errors.Is(err, ErrMismatchedTypes) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}
