/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tags

import (
	"fmt"
	"strconv"
	"strings"

	"gosubstudio/internal/ass"
)

// Emit serializes tag state and spans back to override-tag text in a fixed
// canonical order. It inverts Parse for every recognized field except
// animations: the reference renderer this mirrors has never serialized
// animation tags, and the gap is preserved here rather than papered over
// in one direction only.
func Emit(global *Global, spans []Span) string {
	var out strings.Builder

	var gb strings.Builder
	emitGlobal(&gb, global)
	if gb.Len() > 0 {
		out.WriteString("{")
		out.WriteString(gb.String())
		out.WriteString("}")
	}

	for _, s := range spans {
		switch sp := s.(type) {
		case SpanTags:
			var tb strings.Builder
			emitLocal(&tb, &sp.Tags)
			if tb.Len() > 0 {
				out.WriteString("{")
				out.WriteString(tb.String())
				out.WriteString("}")
			}
			out.WriteString(EscapeText(sp.Text))
		case SpanReset:
			out.WriteString("{\\r}")
		case SpanResetToStyle:
			out.WriteString("{\\r")
			out.WriteString(sp.Style)
			out.WriteString("}")
		case SpanDrawing:
			var tb strings.Builder
			emitLocal(&tb, &sp.Tags)
			out.WriteString("{")
			out.WriteString(tb.String())
			out.WriteString("\\p")
			out.WriteString(formatI32(sp.Drawing.Scale))
			out.WriteString("}")
			out.WriteString(EscapeText(sp.Drawing.Commands))
			out.WriteString("{\\p0}")
		}
	}
	return out.String()
}

// EscapeText escapes plain text so that Parse reads it back verbatim.
func EscapeText(text string) string {
	if !strings.ContainsAny(text, "{\\") {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text) + 2)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			sb.WriteString("\\{")
		case '\\':
			sb.WriteString("\\\\")
		default:
			sb.WriteByte(text[i])
		}
	}
	return sb.String()
}

func emitGlobal(sb *strings.Builder, g *Global) {
	if pm, ok := g.Position.Value(); ok {
		switch p := pm.(type) {
		case StaticPosition:
			fmt.Fprintf(sb, "\\pos(%s,%s)", formatFloat(p.Point.X), formatFloat(p.Point.Y))
		case Move:
			fmt.Fprintf(sb, "\\move(%s,%s,%s,%s",
				formatFloat(p.From.X), formatFloat(p.From.Y),
				formatFloat(p.To.X), formatFloat(p.To.Y))
			if t, ok := p.Timing.Value(); ok {
				fmt.Fprintf(sb, ",%d,%d", t.Start, t.End)
			}
			sb.WriteString(")")
		}
	}
	if org, ok := g.Origin.Value(); ok {
		fmt.Fprintf(sb, "\\org(%s,%s)", formatFloat(org.X), formatFloat(org.Y))
	}
	if clip, ok := g.Clip.Value(); ok {
		emitClip(sb, clip)
	}
	if fade, ok := g.Fade.Value(); ok {
		switch f := fade.(type) {
		case FadeSimple:
			fmt.Fprintf(sb, "\\fad(%d,%d)", f.FadeIn, f.FadeOut)
		case FadeComplex:
			fmt.Fprintf(sb, "\\fade(%d,%d,%d,%d,%d,%d,%d)",
				f.A1, f.A2, f.A3, f.T1, f.T2, f.T3, f.T4)
		}
	}
	emitResettable(sb, "q", g.WrapStyle, func(w ass.WrapStyle) string {
		return formatI32(w.WireCode())
	})
	emitResettable(sb, "an", g.Alignment, func(a ass.Alignment) string {
		return formatI32(a.WireCode())
	})
}

func emitClip(sb *strings.Builder, clip Clip) {
	switch c := clip.(type) {
	case ClipRectangle:
		name := "clip"
		if c.Inverse {
			name = "iclip"
		}
		fmt.Fprintf(sb, "\\%s(%d,%d,%d,%d)", name, c.X1, c.Y1, c.X2, c.Y2)
	case ClipVector:
		name := "clip"
		if c.Inverse {
			name = "iclip"
		}
		if c.Drawing.Scale != 1 {
			fmt.Fprintf(sb, "\\%s(%d,%s)", name, c.Drawing.Scale, c.Drawing.Commands)
		} else {
			fmt.Fprintf(sb, "\\%s(%s)", name, c.Drawing.Commands)
		}
	}
}

func emitLocal(sb *strings.Builder, l *Local) {
	emitResettable(sb, "i", l.Italic, formatBool)
	emitResettable(sb, "b", l.FontWeight, func(w FontWeight) string {
		return formatI32(w.wireValue())
	})
	emitResettable(sb, "u", l.Underline, formatBool)
	emitResettable(sb, "s", l.StrikeOut, formatBool)
	emitResettable(sb, "xbord", l.Border.X, formatFloat)
	emitResettable(sb, "ybord", l.Border.Y, formatFloat)
	emitResettable(sb, "xshad", l.Shadow.X, formatFloat)
	emitResettable(sb, "yshad", l.Shadow.Y, formatFloat)
	emitResettable(sb, "blur", l.Blur, formatFloat)
	emitResettable(sb, "be", l.Soften, formatFloat)
	emitResettable(sb, "fn", l.FontName, func(s string) string { return s })
	emitResettable(sb, "fs", l.FontSize, formatFontSize)
	emitResettable(sb, "fscx", l.FontScale.X, formatFloat)
	emitResettable(sb, "fscy", l.FontScale.Y, formatFloat)
	emitResettable(sb, "fsp", l.LetterSpacing, formatFloat)
	emitResettable(sb, "frx", l.Rotation.X, formatFloat)
	emitResettable(sb, "fry", l.Rotation.Y, formatFloat)
	emitResettable(sb, "frz", l.Rotation.Z, formatFloat)
	emitResettable(sb, "fax", l.Shear.X, formatFloat)
	emitResettable(sb, "fay", l.Shear.Y, formatFloat)
	emitResettable(sb, "fe", l.FontEncoding, formatI32)
	emitResettable(sb, "1c", l.PrimaryColour, formatColour)
	emitResettable(sb, "2c", l.SecondaryColour, formatColour)
	emitResettable(sb, "3c", l.BorderColour, formatColour)
	emitResettable(sb, "4c", l.ShadowColour, formatColour)
	emitResettable(sb, "1a", l.PrimaryTransparency, formatTransparency)
	emitResettable(sb, "2a", l.SecondaryTransparency, formatTransparency)
	emitResettable(sb, "3a", l.BorderTransparency, formatTransparency)
	emitResettable(sb, "4a", l.ShadowTransparency, formatTransparency)
	emitKaraoke(sb, l.Karaoke)
	if v, ok := l.DrawingBaselineOffset.Value(); ok {
		sb.WriteString("\\pbo")
		sb.WriteString(formatFloat(v))
	}
}

// emitKaraoke writes the onset delay, if any, ahead of the pending effect,
// which is the shape the parser accumulated them from.
func emitKaraoke(sb *strings.Builder, k Karaoke) {
	if onset, ok := k.RelativeOnset(); ok {
		sb.WriteString("\\k")
		sb.WriteString(formatI32(int32(onset)))
	}
	if onset, ok := k.AbsoluteOnset(); ok {
		sb.WriteString("\\kt")
		sb.WriteString(formatI32(int32(onset)))
	}
	if effect, duration, ok := k.Effect(); ok {
		switch effect {
		case KaraokeInstant:
			sb.WriteString("\\k")
		case KaraokeSweep:
			sb.WriteString("\\kf")
		case KaraokeInstantOutline:
			sb.WriteString("\\ko")
		}
		sb.WriteString(formatI32(int32(duration)))
	}
}

// emitResettable writes nothing for a kept slot, the bare tag for a reset,
// and tag plus value for an override.
func emitResettable[T comparable](sb *strings.Builder, name string, r Resettable[T], format func(T) string) {
	if r.IsReset() {
		sb.WriteString("\\")
		sb.WriteString(name)
		return
	}
	if v, ok := r.Value(); ok {
		sb.WriteString("\\")
		sb.WriteString(name)
		sb.WriteString(format(v))
	}
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatI32(v int32) string { return strconv.FormatInt(int64(v), 10) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatFontSize(fs FontSize) string {
	if fs.Delta && fs.Value >= 0 {
		return "+" + formatFloat(fs.Value)
	}
	return formatFloat(fs.Value)
}

func formatColour(c ass.Colour) string {
	return fmt.Sprintf("&H%02X%02X%02X&", c.Blue, c.Green, c.Red)
}

func formatTransparency(t ass.Transparency) string {
	return fmt.Sprintf("&H%02X&", uint8(t))
}
