/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ass

import "sync"

// This file defines the leaf value types shared by the override-tag engine
// and the non-destructive-editing pipeline. Values map one-to-one onto the
// numeric codes used by the ASS wire format, but the codes never leak out as
// raw casts: conversions go through the *WireCode functions below so that
// out-of-range codes surface explicitly.

// Milliseconds is a point in time or a duration, in milliseconds.
type Milliseconds int64

// Centiseconds is a karaoke duration, in centiseconds (the unit used by the
// \k family of tags).
type Centiseconds int32

// Colour is an RGB colour as carried by the \c and \1c..\4c tags.
// The wire format stores it byte-swapped (&HBBGGRR&).
type Colour struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Transparency is a single alpha byte as carried by the \1a..\4a tags
// (&HXX&). 0 is opaque, 255 fully transparent.
type Transparency uint8

// Position is a point in script coordinates.
type Position struct {
	X float64
	Y float64
}

// Alignment is the 9-value numpad alignment carried by \an.
type Alignment int32

const (
	AlignmentBottomLeft   Alignment = 1
	AlignmentBottomCentre Alignment = 2
	AlignmentBottomRight  Alignment = 3
	AlignmentMiddleLeft   Alignment = 4
	AlignmentMiddleCentre Alignment = 5
	AlignmentMiddleRight  Alignment = 6
	AlignmentTopLeft      Alignment = 7
	AlignmentTopCentre    Alignment = 8
	AlignmentTopRight     Alignment = 9
)

// WireCode returns the numpad code used in tag and style syntax.
func (a Alignment) WireCode() int32 { return int32(a) }

// AlignmentFromWireCode maps a \an numpad code to an Alignment.
// The second return value is false for out-of-range codes.
func AlignmentFromWireCode(code int32) (Alignment, bool) {
	if code < 1 || code > 9 {
		return 0, false
	}
	return Alignment(code), true
}

// AlignmentFromLegacyWireCode maps a legacy \a (SSA) code to an Alignment.
// Legacy codes 1-3 are subtitles, 5-7 toptitles, 9-11 midtitles. The illegal
// codes 4 and 8 are accepted and treated like 5, reproducing the historical
// behavior of a widely deployed renderer; authored scripts depend on it.
func AlignmentFromLegacyWireCode(code int32) (Alignment, bool) {
	switch code {
	case 1:
		return AlignmentBottomLeft, true
	case 2:
		return AlignmentBottomCentre, true
	case 3:
		return AlignmentBottomRight, true
	case 4, 5, 8:
		return AlignmentTopLeft, true
	case 6:
		return AlignmentTopCentre, true
	case 7:
		return AlignmentTopRight, true
	case 9:
		return AlignmentMiddleLeft, true
	case 10:
		return AlignmentMiddleCentre, true
	case 11:
		return AlignmentMiddleRight, true
	default:
		return 0, false
	}
}

// WrapStyle is the line-wrapping mode carried by \q.
type WrapStyle int32

const (
	WrapStyleSmartEven  WrapStyle = 0
	WrapStyleEndOfLine  WrapStyle = 1
	WrapStyleNone       WrapStyle = 2
	WrapStyleSmartLower WrapStyle = 3
)

// WireCode returns the numeric code used in tag syntax.
func (w WrapStyle) WireCode() int32 { return int32(w) }

// WrapStyleFromWireCode maps a \q code to a WrapStyle.
func WrapStyleFromWireCode(code int32) (WrapStyle, bool) {
	if code < 0 || code > 3 {
		return 0, false
	}
	return WrapStyle(code), true
}

// FrameRate is an exact rational frame rate (e.g. 24000/1001).
type FrameRate struct {
	Numerator   uint32
	Denominator uint32
}

// FrameAtTime returns the index of the frame being displayed at time t.
func (f FrameRate) FrameAtTime(t Milliseconds) int64 {
	if f.Numerator == 0 || f.Denominator == 0 {
		return 0
	}
	return int64(t) * int64(f.Numerator) / (int64(f.Denominator) * 1000)
}

// TimeAtFrame returns the start time of the given frame, rounded down to
// whole milliseconds.
func (f FrameRate) TimeAtFrame(frame int64) Milliseconds {
	if f.Numerator == 0 {
		return 0
	}
	return Milliseconds(frame * int64(f.Denominator) * 1000 / int64(f.Numerator))
}

// Margins are the per-event margin overrides of a dialogue line.
type Margins struct {
	Left     int32
	Right    int32
	Vertical int32
}

// Sline is one subtitle line as authored: the leaf input fed into a filter
// graph. Text is the raw event text, override-tag blocks included.
type Sline struct {
	Start      Milliseconds
	Duration   Milliseconds
	LayerIndex int32
	StyleIndex int32
	Margins    Margins
	Actor      string
	Effect     string
	Text       string
}

// End returns the end time of the line.
func (s *Sline) End() Milliseconds { return s.Start + s.Duration }

// Event is a compiled, rasterizer-ready event. Text is final tag-flattened
// ASS text; ReadOrder is a monotonically increasing sequence number stamped
// when compilation finishes.
type Event struct {
	Start      Milliseconds
	Duration   Milliseconds
	LayerIndex int32
	StyleIndex int32
	Margins    Margins
	Actor      string
	Effect     string
	Text       string
	ReadOrder  int32
}

// End returns the end time of the event.
func (e *Event) End() Milliseconds { return e.Start + e.Duration }

// EventFromSline copies the authored fields of a line into an uncompiled
// event. The text still carries override-tag blocks; filter nodes transform
// it before the output node collects it.
func EventFromSline(s *Sline) Event {
	return Event{
		Start:      s.Start,
		Duration:   s.Duration,
		LayerIndex: s.LayerIndex,
		StyleIndex: s.StyleIndex,
		Margins:    s.Margins,
		Actor:      s.Actor,
		Effect:     s.Effect,
		Text:       s.Text,
	}
}

// ReadOrderCounter hands out read-order numbers for compiled events. One
// counter is shared across all compilations of an export or render pass so
// that event ordering stays globally monotonic.
type ReadOrderCounter struct {
	mu   sync.Mutex
	next int32
}

// Next returns the next read-order value, starting at 0.
func (c *ReadOrderCounter) Next() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.next
	c.next++
	return n
}
