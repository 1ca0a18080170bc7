/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tags

import "gosubstudio/internal/ass"

// Maybe2D is a pair of independently resettable axis values, used by tags
// that come in an x/y pair with a combined shorthand (border, shadow, font
// scale, shear).
type Maybe2D struct {
	X Resettable[float64]
	Y Resettable[float64]
}

func (m *Maybe2D) OverrideFrom(other Maybe2D) {
	m.X.OverrideFrom(other.X)
	m.Y.OverrideFrom(other.Y)
}

func (m *Maybe2D) ClearFrom(other Maybe2D) {
	m.X.ClearFrom(other.X)
	m.Y.ClearFrom(other.Y)
}

func (m Maybe2D) IsEmpty() bool { return m.X.IsKeep() && m.Y.IsKeep() }

// Maybe3D holds the three rotation axes.
type Maybe3D struct {
	X Resettable[float64]
	Y Resettable[float64]
	Z Resettable[float64]
}

func (m *Maybe3D) OverrideFrom(other Maybe3D) {
	m.X.OverrideFrom(other.X)
	m.Y.OverrideFrom(other.Y)
	m.Z.OverrideFrom(other.Z)
}

func (m *Maybe3D) ClearFrom(other Maybe3D) {
	m.X.ClearFrom(other.X)
	m.Y.ClearFrom(other.Y)
	m.Z.ClearFrom(other.Z)
}

func (m Maybe3D) IsEmpty() bool { return m.X.IsKeep() && m.Y.IsKeep() && m.Z.IsKeep() }

// FontSize is the argument of the font size tag. Delta selects relative
// mode, entered by a leading sign character in the source text.
type FontSize struct {
	Delta bool
	Value float64
}

// FontWeight is the argument of the bold tag: an on/off toggle or an
// explicit numeric weight.
type FontWeight struct {
	Numeric bool
	Bold    bool
	Weight  int32
}

func BoldToggle(on bool) FontWeight  { return FontWeight{Bold: on} }
func WeightValue(w int32) FontWeight { return FontWeight{Numeric: true, Weight: w} }

func (w FontWeight) wireValue() int32 {
	if w.Numeric {
		return w.Weight
	}
	if w.Bold {
		return 1
	}
	return 0
}

// Drawing is a vector drawing: a coordinate scale exponent and the raw
// drawing command string.
type Drawing struct {
	Scale    int32
	Commands string
}

func (d Drawing) IsEmpty() bool { return d.Commands == "" }

// Clip is a per-line clip region, either rectangular or an arbitrary vector
// shape, each in a normal and an inverse flavour.
type Clip interface{ isClip() }

// ClipRectangle clips rendering to (or, inverted, away from) an axis-aligned
// rectangle in script coordinates.
type ClipRectangle struct {
	Inverse        bool
	X1, Y1, X2, Y2 int32
}

// ClipVector clips rendering to a vector shape.
type ClipVector struct {
	Inverse bool
	Drawing Drawing
}

func (ClipRectangle) isClip() {}
func (ClipVector) isClip()    {}

var (
	_ Clip = ClipRectangle{}
	_ Clip = ClipVector{}
)

// Fade is a per-line fade, either the simple in/out form or the full
// seven-argument form.
type Fade interface{ isFade() }

// FadeSimple fades in over FadeIn milliseconds and out over FadeOut.
type FadeSimple struct {
	FadeIn  ass.Milliseconds
	FadeOut ass.Milliseconds
}

// FadeComplex interpolates between three transparency levels across four
// timestamps.
type FadeComplex struct {
	A1, A2, A3     ass.Transparency
	T1, T2, T3, T4 ass.Milliseconds
}

func (FadeSimple) isFade()  {}
func (FadeComplex) isFade() {}

// PositionOrMove fixes a line at a point or moves it between two points.
type PositionOrMove interface{ isPositionOrMove() }

// StaticPosition pins the line at a point.
type StaticPosition struct {
	Point ass.Position
}

// MoveTiming is the optional start/end window of a Move.
type MoveTiming struct {
	Start ass.Milliseconds
	End   ass.Milliseconds
}

// Move slides the line from one point to another, optionally within a
// timing window relative to line start.
type Move struct {
	From   ass.Position
	To     ass.Position
	Timing Option[MoveTiming]
}

func (StaticPosition) isPositionOrMove() {}
func (Move) isPositionOrMove()           {}

// AnimationInterval is the millisecond window of an animation, relative to
// line start.
type AnimationInterval struct {
	Start ass.Milliseconds
	End   ass.Milliseconds
}

// Animation applies the modifier tags gradually, either over the whole line
// duration or over an explicit interval, with an acceleration exponent.
type Animation[A comparable] struct {
	Modifiers    A
	Acceleration float64
	Interval     Option[AnimationInterval]
}

// KaraokeEffect selects how a karaoke syllable is highlighted.
type KaraokeEffect uint8

const (
	KaraokeInstant        KaraokeEffect = iota // \k
	KaraokeSweep                               // \kf
	KaraokeInstantOutline                      // \ko
)

type karaokeOnsetKind uint8

const (
	onsetNoDelay karaokeOnsetKind = iota
	onsetRelative
	onsetAbsolute
)

// Karaoke is the per-span karaoke state: an optional syllable effect with a
// duration, plus an onset describing when the syllable starts. A relative
// onset only ever arises together with an effect; the fields are private so
// the constructor methods can maintain that.
type Karaoke struct {
	hasEffect bool
	effect    KaraokeEffect
	duration  ass.Centiseconds
	onsetKind karaokeOnsetKind
	onset     ass.Centiseconds
}

// AddRelative replaces the pending effect with a new one, folding the
// previous effect's duration into the onset delay. This is how consecutive
// karaoke tags within one block accumulate.
func (k *Karaoke) AddRelative(effect KaraokeEffect, duration ass.Centiseconds) {
	if k.hasEffect {
		switch k.onsetKind {
		case onsetNoDelay:
			k.onsetKind = onsetRelative
			k.onset = k.duration
		default:
			k.onset += k.duration
		}
	}
	k.hasEffect = true
	k.effect = effect
	k.duration = duration
}

// SetAbsolute discards any pending effect and places the onset at an
// absolute centisecond offset from line start.
func (k *Karaoke) SetAbsolute(onset ass.Centiseconds) {
	*k = Karaoke{onsetKind: onsetAbsolute, onset: onset}
}

// Effect returns the pending syllable effect, if any.
func (k Karaoke) Effect() (KaraokeEffect, ass.Centiseconds, bool) {
	return k.effect, k.duration, k.hasEffect
}

// RelativeOnset returns the accumulated relative delay, if the onset is
// relative.
func (k Karaoke) RelativeOnset() (ass.Centiseconds, bool) {
	return k.onset, k.onsetKind == onsetRelative
}

// AbsoluteOnset returns the absolute onset, if one was set.
func (k Karaoke) AbsoluteOnset() (ass.Centiseconds, bool) {
	return k.onset, k.onsetKind == onsetAbsolute
}

func (k Karaoke) IsEmpty() bool { return k == Karaoke{} }

// OverrideFrom replaces k wholesale when other carries any karaoke state.
func (k *Karaoke) OverrideFrom(other Karaoke) {
	if !other.IsEmpty() {
		*k = other
	}
}

func (k *Karaoke) ClearFrom(other Karaoke) {
	if !other.IsEmpty() {
		*k = Karaoke{}
	}
}

// Local is the formatting state attached to one span. Every field follows
// keep/reset/override semantics except the karaoke state, the drawing
// baseline offset, and the animation list.
type Local struct {
	Italic     Resettable[bool]
	FontWeight Resettable[FontWeight]
	Underline  Resettable[bool]
	StrikeOut  Resettable[bool]

	Border Maybe2D
	Shadow Maybe2D

	Blur   Resettable[float64]
	Soften Resettable[float64]

	FontName      Resettable[string]
	FontSize      Resettable[FontSize]
	FontScale     Maybe2D
	LetterSpacing Resettable[float64]

	Rotation Maybe3D
	Shear    Maybe2D

	FontEncoding Resettable[int32]

	PrimaryColour   Resettable[ass.Colour]
	SecondaryColour Resettable[ass.Colour]
	BorderColour    Resettable[ass.Colour]
	ShadowColour    Resettable[ass.Colour]

	PrimaryTransparency   Resettable[ass.Transparency]
	SecondaryTransparency Resettable[ass.Transparency]
	BorderTransparency    Resettable[ass.Transparency]
	ShadowTransparency    Resettable[ass.Transparency]

	Karaoke Karaoke

	DrawingBaselineOffset Option[float64]

	Animations []Animation[LocalAnimatable]
}

// OverrideFrom layers other on top of l: every slot other sets replaces
// l's, and other's animations are appended.
func (l *Local) OverrideFrom(other *Local) {
	l.Italic.OverrideFrom(other.Italic)
	l.FontWeight.OverrideFrom(other.FontWeight)
	l.Underline.OverrideFrom(other.Underline)
	l.StrikeOut.OverrideFrom(other.StrikeOut)
	l.Border.OverrideFrom(other.Border)
	l.Shadow.OverrideFrom(other.Shadow)
	l.Blur.OverrideFrom(other.Blur)
	l.Soften.OverrideFrom(other.Soften)
	l.FontName.OverrideFrom(other.FontName)
	l.FontSize.OverrideFrom(other.FontSize)
	l.FontScale.OverrideFrom(other.FontScale)
	l.LetterSpacing.OverrideFrom(other.LetterSpacing)
	l.Rotation.OverrideFrom(other.Rotation)
	l.Shear.OverrideFrom(other.Shear)
	l.FontEncoding.OverrideFrom(other.FontEncoding)
	l.PrimaryColour.OverrideFrom(other.PrimaryColour)
	l.SecondaryColour.OverrideFrom(other.SecondaryColour)
	l.BorderColour.OverrideFrom(other.BorderColour)
	l.ShadowColour.OverrideFrom(other.ShadowColour)
	l.PrimaryTransparency.OverrideFrom(other.PrimaryTransparency)
	l.SecondaryTransparency.OverrideFrom(other.SecondaryTransparency)
	l.BorderTransparency.OverrideFrom(other.BorderTransparency)
	l.ShadowTransparency.OverrideFrom(other.ShadowTransparency)
	l.Karaoke.OverrideFrom(other.Karaoke)
	l.DrawingBaselineOffset.OverrideFrom(other.DrawingBaselineOffset)
	l.Animations = append(l.Animations, other.Animations...)
}

// ClearFrom empties every slot of l that other sets.
func (l *Local) ClearFrom(other *Local) {
	l.Italic.ClearFrom(other.Italic)
	l.FontWeight.ClearFrom(other.FontWeight)
	l.Underline.ClearFrom(other.Underline)
	l.StrikeOut.ClearFrom(other.StrikeOut)
	l.Border.ClearFrom(other.Border)
	l.Shadow.ClearFrom(other.Shadow)
	l.Blur.ClearFrom(other.Blur)
	l.Soften.ClearFrom(other.Soften)
	l.FontName.ClearFrom(other.FontName)
	l.FontSize.ClearFrom(other.FontSize)
	l.FontScale.ClearFrom(other.FontScale)
	l.LetterSpacing.ClearFrom(other.LetterSpacing)
	l.Rotation.ClearFrom(other.Rotation)
	l.Shear.ClearFrom(other.Shear)
	l.FontEncoding.ClearFrom(other.FontEncoding)
	l.PrimaryColour.ClearFrom(other.PrimaryColour)
	l.SecondaryColour.ClearFrom(other.SecondaryColour)
	l.BorderColour.ClearFrom(other.BorderColour)
	l.ShadowColour.ClearFrom(other.ShadowColour)
	l.PrimaryTransparency.ClearFrom(other.PrimaryTransparency)
	l.SecondaryTransparency.ClearFrom(other.SecondaryTransparency)
	l.BorderTransparency.ClearFrom(other.BorderTransparency)
	l.ShadowTransparency.ClearFrom(other.ShadowTransparency)
	l.Karaoke.ClearFrom(other.Karaoke)
	l.DrawingBaselineOffset.ClearFrom(other.DrawingBaselineOffset)
	if len(other.Animations) > 0 {
		l.Animations = nil
	}
}

// Equal compares two Locals including their animation lists.
func (l *Local) Equal(other *Local) bool {
	if len(l.Animations) != len(other.Animations) {
		return false
	}
	for i := range l.Animations {
		if l.Animations[i] != other.Animations[i] {
			return false
		}
	}
	a, b := *l, *other
	a.Animations, b.Animations = nil, nil
	return localEqual(&a, &b)
}

// localEqual compares every field except the animation list. Kept separate
// so Equal and IsEmpty stay in sync when fields are added.
func localEqual(a, b *Local) bool {
	return a.Italic == b.Italic &&
		a.FontWeight == b.FontWeight &&
		a.Underline == b.Underline &&
		a.StrikeOut == b.StrikeOut &&
		a.Border == b.Border &&
		a.Shadow == b.Shadow &&
		a.Blur == b.Blur &&
		a.Soften == b.Soften &&
		a.FontName == b.FontName &&
		a.FontSize == b.FontSize &&
		a.FontScale == b.FontScale &&
		a.LetterSpacing == b.LetterSpacing &&
		a.Rotation == b.Rotation &&
		a.Shear == b.Shear &&
		a.FontEncoding == b.FontEncoding &&
		a.PrimaryColour == b.PrimaryColour &&
		a.SecondaryColour == b.SecondaryColour &&
		a.BorderColour == b.BorderColour &&
		a.ShadowColour == b.ShadowColour &&
		a.PrimaryTransparency == b.PrimaryTransparency &&
		a.SecondaryTransparency == b.SecondaryTransparency &&
		a.BorderTransparency == b.BorderTransparency &&
		a.ShadowTransparency == b.ShadowTransparency &&
		a.Karaoke == b.Karaoke &&
		a.DrawingBaselineOffset == b.DrawingBaselineOffset
}

// IsEmpty reports whether no slot is set and no animation is attached.
func (l *Local) IsEmpty() bool {
	return l.Equal(&Local{})
}

// animatable projects the subset of l that may appear inside an animation.
func (l *Local) animatable() LocalAnimatable {
	return LocalAnimatable{
		Border:                l.Border,
		Shadow:                l.Shadow,
		Blur:                  l.Blur,
		Soften:                l.Soften,
		FontSize:              l.FontSize,
		FontScale:             l.FontScale,
		LetterSpacing:         l.LetterSpacing,
		Rotation:              l.Rotation,
		Shear:                 l.Shear,
		PrimaryColour:         l.PrimaryColour,
		SecondaryColour:       l.SecondaryColour,
		BorderColour:          l.BorderColour,
		ShadowColour:          l.ShadowColour,
		PrimaryTransparency:   l.PrimaryTransparency,
		SecondaryTransparency: l.SecondaryTransparency,
		BorderTransparency:    l.BorderTransparency,
		ShadowTransparency:    l.ShadowTransparency,
	}
}

// LocalAnimatable is the subset of span-local tags that an animation may
// interpolate. Toggle tags, fonts, karaoke and drawing state are excluded.
type LocalAnimatable struct {
	Border Maybe2D
	Shadow Maybe2D

	Blur   Resettable[float64]
	Soften Resettable[float64]

	FontSize      Resettable[FontSize]
	FontScale     Maybe2D
	LetterSpacing Resettable[float64]

	Rotation Maybe3D
	Shear    Maybe2D

	PrimaryColour   Resettable[ass.Colour]
	SecondaryColour Resettable[ass.Colour]
	BorderColour    Resettable[ass.Colour]
	ShadowColour    Resettable[ass.Colour]

	PrimaryTransparency   Resettable[ass.Transparency]
	SecondaryTransparency Resettable[ass.Transparency]
	BorderTransparency    Resettable[ass.Transparency]
	ShadowTransparency    Resettable[ass.Transparency]
}

func (a LocalAnimatable) IsEmpty() bool { return a == LocalAnimatable{} }

// Global is the once-per-line tag state: position, origin, clip, fade, wrap
// style, alignment, plus animations over the animatable global subset.
type Global struct {
	Position  Option[PositionOrMove]
	Origin    Option[ass.Position]
	Clip      Option[Clip]
	Fade      Option[Fade]
	WrapStyle Resettable[ass.WrapStyle]
	Alignment Resettable[ass.Alignment]

	Animations []Animation[GlobalAnimatable]
}

// Equal compares two Globals including their animation lists.
func (g *Global) Equal(other *Global) bool {
	if len(g.Animations) != len(other.Animations) {
		return false
	}
	for i := range g.Animations {
		if g.Animations[i] != other.Animations[i] {
			return false
		}
	}
	return g.Position == other.Position &&
		g.Origin == other.Origin &&
		g.Clip == other.Clip &&
		g.Fade == other.Fade &&
		g.WrapStyle == other.WrapStyle &&
		g.Alignment == other.Alignment
}

// IsEmpty reports whether no global tag was seen at all.
func (g *Global) IsEmpty() bool {
	return g.Equal(&Global{})
}

// animatable projects the subset of g that may appear inside an animation.
func (g *Global) animatable() GlobalAnimatable {
	return GlobalAnimatable{Clip: g.Clip}
}

// GlobalAnimatable is the subset of global tags an animation may
// interpolate. Only rectangular clips qualify.
type GlobalAnimatable struct {
	Clip Option[Clip]
}

func (a GlobalAnimatable) IsEmpty() bool { return a == GlobalAnimatable{} }

// Span is one segment of an event line: a run of tagged text, a style
// reset, or a vector drawing.
type Span interface{ isSpan() }

// SpanTags is a run of plain text with the local tags active from its start.
type SpanTags struct {
	Tags Local
	Text string
}

// SpanReset restores the line's own style from this point on.
type SpanReset struct{}

// SpanResetToStyle switches to a named style from this point on.
type SpanResetToStyle struct {
	Style string
}

// SpanDrawing renders a vector drawing in place of text.
type SpanDrawing struct {
	Tags    Local
	Drawing Drawing
}

func (SpanTags) isSpan()         {}
func (SpanReset) isSpan()        {}
func (SpanResetToStyle) isSpan() {}
func (SpanDrawing) isSpan()      {}

// SpanEqual compares two spans structurally.
func SpanEqual(a, b Span) bool {
	switch sa := a.(type) {
	case SpanTags:
		sb, ok := b.(SpanTags)
		return ok && sa.Text == sb.Text && sa.Tags.Equal(&sb.Tags)
	case SpanReset:
		_, ok := b.(SpanReset)
		return ok
	case SpanResetToStyle:
		sb, ok := b.(SpanResetToStyle)
		return ok && sa.Style == sb.Style
	case SpanDrawing:
		sb, ok := b.(SpanDrawing)
		return ok && sa.Drawing == sb.Drawing && sa.Tags.Equal(&sb.Tags)
	default:
		return false
	}
}

// SpansEqual compares two span sequences structurally.
func SpansEqual(a, b []Span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SpanEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
