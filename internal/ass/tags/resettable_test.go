/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tags

import "testing"

func TestResettableStates(t *testing.T) {
	var zero Resettable[int]
	if !zero.IsKeep() || zero.IsSet() || zero.IsReset() {
		t.Fatalf("zero value must be keep")
	}
	r := Reset[int]()
	if !r.IsSet() || !r.IsReset() || r.IsKeep() {
		t.Fatalf("reset state wrong")
	}
	o := Override(42)
	if !o.IsSet() || o.IsReset() || o.IsKeep() {
		t.Fatalf("override state wrong")
	}
	if v, ok := o.Value(); !ok || v != 42 {
		t.Fatalf("override value lost: %v/%v", v, ok)
	}
	if _, ok := r.Value(); ok {
		t.Fatalf("reset must not carry a value")
	}
}

func TestResettableOverrideFromLaws(t *testing.T) {
	// keep.override_from(keep) stays keep
	k := Keep[int]()
	k.OverrideFrom(Keep[int]())
	if !k.IsKeep() {
		t.Fatalf("keep from keep changed state")
	}

	// x.override_from(override(v)) == override(v) for every starting x
	for _, start := range []Resettable[int]{Keep[int](), Reset[int](), Override(1)} {
		x := start
		x.OverrideFrom(Override(9))
		if x != Override(9) {
			t.Fatalf("override_from(Override) did not win over %v", start)
		}
	}

	// x.override_from(keep) leaves x alone
	for _, start := range []Resettable[int]{Keep[int](), Reset[int](), Override(1)} {
		x := start
		x.OverrideFrom(Keep[int]())
		if x != start {
			t.Fatalf("override_from(Keep) changed %v", start)
		}
	}
}

func TestResettableClearFromLaws(t *testing.T) {
	for _, start := range []Resettable[int]{Keep[int](), Reset[int](), Override(1)} {
		x := start
		x.ClearFrom(Keep[int]())
		if x != start {
			t.Fatalf("clear_from(Keep) changed %v", start)
		}
		x.ClearFrom(Override(7))
		if !x.IsKeep() {
			t.Fatalf("clear_from(set) did not clear %v", start)
		}
		y := start
		y.ClearFrom(Reset[int]())
		if !y.IsKeep() {
			t.Fatalf("clear_from(Reset) did not clear %v", start)
		}
	}
}

func TestOptionSemantics(t *testing.T) {
	var o Option[string]
	if o.IsSet() {
		t.Fatalf("zero option must be empty")
	}
	o.OverrideFrom(Some("a"))
	if v, ok := o.Value(); !ok || v != "a" {
		t.Fatalf("override_from(Some) failed: %v/%v", v, ok)
	}
	o.OverrideFrom(None[string]())
	if !o.IsSet() {
		t.Fatalf("override_from(None) must not clear")
	}
	o.ClearFrom(Some("b"))
	if o.IsSet() {
		t.Fatalf("clear_from(Some) must clear")
	}
}

func TestKaraokeAccumulation(t *testing.T) {
	var k Karaoke
	if !k.IsEmpty() {
		t.Fatalf("zero karaoke must be empty")
	}

	k.AddRelative(KaraokeInstant, 20)
	if _, ok := k.RelativeOnset(); ok {
		t.Fatalf("first effect must not introduce a delay")
	}
	k.AddRelative(KaraokeSweep, 30)
	if onset, ok := k.RelativeOnset(); !ok || onset != 20 {
		t.Fatalf("prior duration not folded into onset: %v/%v", onset, ok)
	}
	k.AddRelative(KaraokeInstantOutline, 10)
	if onset, _ := k.RelativeOnset(); onset != 50 {
		t.Fatalf("accumulated onset wrong: %d", onset)
	}
	if effect, duration, ok := k.Effect(); !ok || effect != KaraokeInstantOutline || duration != 10 {
		t.Fatalf("latest effect lost: %v %v %v", effect, duration, ok)
	}

	k.SetAbsolute(500)
	if _, _, ok := k.Effect(); ok {
		t.Fatalf("absolute onset must clear the effect")
	}
	if onset, ok := k.AbsoluteOnset(); !ok || onset != 500 {
		t.Fatalf("absolute onset wrong: %v/%v", onset, ok)
	}

	k.AddRelative(KaraokeInstant, 25)
	k.AddRelative(KaraokeInstant, 5)
	if onset, ok := k.AbsoluteOnset(); !ok || onset != 525 {
		t.Fatalf("relative effect after absolute onset: %v/%v", onset, ok)
	}
}
