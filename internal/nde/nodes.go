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
	"gosubstudio/internal/ass/tags"
)

// InputSline is the leaf node feeding the subtitle line into the graph as a
// single event.
type InputSline struct{}

func (InputSline) Kind() string          { return "input-sline" }
func (InputSline) Inputs() []SocketType  { return []SocketType{TypeLeafSline} }
func (InputSline) Outputs() []SocketType { return []SocketType{TypeEvent} }

func (InputSline) Run(inputs []SocketValue) ([]SocketValue, error) {
	in, ok := inputs[0].(SocketSline)
	if !ok {
		return nil, ErrMismatchedTypes
	}
	return []SocketValue{SocketEvent{Event: ass.EventFromSline(in.Sline)}}, nil
}

// InputFrameRate is the leaf node feeding the project frame rate into the
// graph.
type InputFrameRate struct{}

func (InputFrameRate) Kind() string          { return "input-frame-rate" }
func (InputFrameRate) Inputs() []SocketType  { return []SocketType{TypeLeafFrameRate} }
func (InputFrameRate) Outputs() []SocketType { return []SocketType{TypeFrameRate} }

func (InputFrameRate) Run(inputs []SocketValue) ([]SocketValue, error) {
	in, ok := inputs[0].(SocketFrameRate)
	if !ok {
		return nil, ErrMismatchedTypes
	}
	return []SocketValue{in}, nil
}

// Output collects the final events. It is always node index zero of a
// graph.
type Output struct{}

func (Output) Kind() string          { return "output" }
func (Output) Inputs() []SocketType  { return []SocketType{TypeGenericEvents} }
func (Output) Outputs() []SocketType { return []SocketType{TypeCompiledEvents} }

func (Output) Run(inputs []SocketValue) ([]SocketValue, error) {
	events, ok := eventsOf(inputs[0])
	if !ok {
		return nil, ErrMismatchedTypes
	}
	return []SocketValue{SocketCompiledEvents{Events: events}}, nil
}

// Italicise turns italics on for the whole text of every incoming event.
type Italicise struct{}

func (Italicise) Kind() string          { return "italicise" }
func (Italicise) Inputs() []SocketType  { return []SocketType{TypeGenericEvents} }
func (Italicise) Outputs() []SocketType { return []SocketType{TypeGenericEvents} }

func (Italicise) Run(inputs []SocketValue) ([]SocketValue, error) {
	events, ok := eventsOf(inputs[0])
	if !ok {
		return nil, ErrMismatchedTypes
	}
	out := make([]ass.Event, len(events))
	for i, ev := range events {
		global, spans := tags.Parse(ev.Text)
		for j, s := range spans {
			switch sp := s.(type) {
			case tags.SpanTags:
				sp.Tags.Italic = tags.Override(true)
				spans[j] = sp
			case tags.SpanDrawing:
				sp.Tags.Italic = tags.Override(true)
				spans[j] = sp
			}
		}
		ev.Text = tags.Emit(&global, spans)
		out[i] = ev
	}
	return []SocketValue{SocketGenericEvents{Events: out}}, nil
}

// SetPosition pins every incoming event at the given point, replacing any
// position or move the event already carries.
type SetPosition struct{}

func (SetPosition) Kind() string { return "set-position" }
func (SetPosition) Inputs() []SocketType {
	return []SocketType{TypeGenericEvents, TypePosition}
}
func (SetPosition) Outputs() []SocketType { return []SocketType{TypeGenericEvents} }

func (SetPosition) Run(inputs []SocketValue) ([]SocketValue, error) {
	events, ok := eventsOf(inputs[0])
	if !ok {
		return nil, ErrMismatchedTypes
	}
	pos, ok := inputs[1].(SocketPosition)
	if !ok {
		return nil, ErrMismatchedTypes
	}
	out := make([]ass.Event, len(events))
	for i, ev := range events {
		global, spans := tags.Parse(ev.Text)
		global.Position = tags.Some[tags.PositionOrMove](tags.StaticPosition{Point: pos.Position})
		ev.Text = tags.Emit(&global, spans)
		out[i] = ev
	}
	return []SocketValue{SocketGenericEvents{Events: out}}, nil
}

// Position supplies a constant point configured on the node itself.
type Position struct {
	Value ass.Position
}

func (*Position) Kind() string          { return "position" }
func (*Position) Inputs() []SocketType  { return nil }
func (*Position) Outputs() []SocketType { return []SocketType{TypePosition} }

func (p *Position) Run([]SocketValue) ([]SocketValue, error) {
	return []SocketValue{SocketPosition{Position: p.Value}}, nil
}

// SplitFrameByFrame slices one event into consecutive per-frame events, so
// later nodes can vary tags frame by frame.
type SplitFrameByFrame struct{}

func (SplitFrameByFrame) Kind() string { return "split-frame-by-frame" }
func (SplitFrameByFrame) Inputs() []SocketType {
	return []SocketType{TypeEvent, TypeLeafFrameRate}
}
func (SplitFrameByFrame) Outputs() []SocketType { return []SocketType{TypeMonotonicEvents} }

func (SplitFrameByFrame) Run(inputs []SocketValue) ([]SocketValue, error) {
	in, ok := inputs[0].(SocketEvent)
	if !ok {
		return nil, ErrMismatchedTypes
	}
	fr, ok := inputs[1].(SocketFrameRate)
	if !ok {
		return nil, ErrMismatchedTypes
	}
	ev := in.Event
	if ev.Duration <= 0 || fr.FrameRate.Numerator == 0 || fr.FrameRate.Denominator == 0 {
		return []SocketValue{SocketMonotonicEvents{Events: []ass.Event{ev}}}, nil
	}

	first := fr.FrameRate.FrameAtTime(ev.Start)
	last := fr.FrameRate.FrameAtTime(ev.End() - 1)
	out := make([]ass.Event, 0, int(last-first+1))
	for f := first; f <= last; f++ {
		frame := ev
		frame.Start = fr.FrameRate.TimeAtFrame(f)
		frame.Duration = fr.FrameRate.TimeAtFrame(f+1) - frame.Start
		if f == first {
			frame.Start = ev.Start
			frame.Duration = fr.FrameRate.TimeAtFrame(f+1) - ev.Start
		}
		if f == last {
			frame.Duration = ev.End() - frame.Start
		}
		out = append(out, frame)
	}
	return []SocketValue{SocketMonotonicEvents{Events: out}}, nil
}
