/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ass

import "testing"

func TestAlignmentFromWireCode(t *testing.T) {
	for code := int32(1); code <= 9; code++ {
		a, ok := AlignmentFromWireCode(code)
		if !ok {
			t.Fatalf("code %d should be valid", code)
		}
		if a.WireCode() != code {
			t.Fatalf("round trip mismatch for %d: got %d", code, a.WireCode())
		}
	}
	for _, code := range []int32{0, 10, -1, 42} {
		if _, ok := AlignmentFromWireCode(code); ok {
			t.Fatalf("code %d should be invalid", code)
		}
	}
}

func TestAlignmentFromLegacyWireCode(t *testing.T) {
	cases := map[int32]Alignment{
		1:  AlignmentBottomLeft,
		2:  AlignmentBottomCentre,
		3:  AlignmentBottomRight,
		5:  AlignmentTopLeft,
		6:  AlignmentTopCentre,
		7:  AlignmentTopRight,
		9:  AlignmentMiddleLeft,
		10: AlignmentMiddleCentre,
		11: AlignmentMiddleRight,
		// Illegal legacy codes 4 and 8 behave like 5 for renderer
		// bug-compatibility.
		4: AlignmentTopLeft,
		8: AlignmentTopLeft,
	}
	for code, want := range cases {
		got, ok := AlignmentFromLegacyWireCode(code)
		if !ok || got != want {
			t.Fatalf("legacy code %d: got %v/%v, want %v", code, got, ok, want)
		}
	}
	for _, code := range []int32{0, 12, -3} {
		if _, ok := AlignmentFromLegacyWireCode(code); ok {
			t.Fatalf("legacy code %d should be invalid", code)
		}
	}
}

func TestWrapStyleFromWireCode(t *testing.T) {
	if w, ok := WrapStyleFromWireCode(2); !ok || w != WrapStyleNone {
		t.Fatalf("wrap style 2 should map to none, got %v/%v", w, ok)
	}
	if _, ok := WrapStyleFromWireCode(4); ok {
		t.Fatalf("wrap style 4 should be invalid")
	}
}

func TestFrameRateConversions(t *testing.T) {
	ntsc := FrameRate{Numerator: 24000, Denominator: 1001}
	if f := ntsc.FrameAtTime(0); f != 0 {
		t.Fatalf("frame at t=0: %d", f)
	}
	// One NTSC-film frame lasts 1001/24 ms ~= 41.708 ms.
	if f := ntsc.FrameAtTime(41); f != 0 {
		t.Fatalf("t=41ms should still be frame 0, got %d", f)
	}
	if f := ntsc.FrameAtTime(42); f != 1 {
		t.Fatalf("t=42ms should be frame 1, got %d", f)
	}
	if ms := ntsc.TimeAtFrame(24); ms != 1001 {
		t.Fatalf("24 frames should start at 1001ms, got %d", ms)
	}

	zero := FrameRate{}
	if zero.FrameAtTime(1000) != 0 || zero.TimeAtFrame(5) != 0 {
		t.Fatalf("zero frame rate must not divide by zero")
	}
}

func TestEventFromSline(t *testing.T) {
	s := &Sline{Start: 10, Duration: 1000, LayerIndex: 2, StyleIndex: 3, Actor: "A", Effect: "fx", Text: "hi"}
	e := EventFromSline(s)
	if e.Start != 10 || e.Duration != 1000 || e.LayerIndex != 2 || e.StyleIndex != 3 || e.Text != "hi" {
		t.Fatalf("event fields not copied: %+v", e)
	}
	if e.End() != 1010 || s.End() != 1010 {
		t.Fatalf("end time mismatch: %d vs %d", e.End(), s.End())
	}
}

func TestReadOrderCounter(t *testing.T) {
	var c ReadOrderCounter
	for want := int32(0); want < 5; want++ {
		if got := c.Next(); got != want {
			t.Fatalf("counter out of order: got %d want %d", got, want)
		}
	}
}

func TestInlineStringDecode(t *testing.T) {
	if got := DecodeInlineString("abc#2Cd"); got != "abc,d" {
		t.Fatalf("decode mismatch: %q", got)
	}
	// Malformed escapes stay literal.
	if got := DecodeInlineString("a#2"); got != "a#2" {
		t.Fatalf("truncated escape should stay literal: %q", got)
	}
	if got := DecodeInlineString("a#zz"); got != "a#zz" {
		t.Fatalf("non-hex escape should stay literal: %q", got)
	}
}

func TestInlineStringEncodeRoundTrip(t *testing.T) {
	raw := "graph,with|separators#and\\controls\nnewline"
	enc := EncodeInlineString(raw)
	for i := 0; i < len(enc); i++ {
		if inlineNeedsEscape(enc[i]) && enc[i] != '#' {
			t.Fatalf("encoded string still contains raw separator %q", enc[i])
		}
	}
	if got := DecodeInlineString(enc); got != raw {
		t.Fatalf("round trip mismatch: %q -> %q -> %q", raw, enc, got)
	}
}
