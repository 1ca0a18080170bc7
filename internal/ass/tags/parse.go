/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tags

import (
	"strings"

	"gosubstudio/internal/ass"
	"gosubstudio/internal/log"
)

// Parse scans one event's text into its global tags and an ordered span
// list. It is deliberately tolerant: malformed tags degrade to resets or
// no-ops, never errors, because authored subtitle files are routinely
// malformed and must still render as closely as possible.
//
// The returned spans are the raw tokenizer output; callers that want the
// canonical form (merged and trimmed) pass them through Simplify.
func Parse(text string) (Global, []Span) {
	var (
		global   Global
		spans    []Span
		spanTags Local
		sb       strings.Builder
		drawing  *Drawing
	)

	i := 0
	for i < len(text) {
		switch text[i] {
		case '\\':
			// An escaped brace or backslash is literal text; a
			// backslash before anything else is dropped wholesale.
			if i+1 < len(text) && (text[i+1] == '{' || text[i+1] == '\\') {
				sb.WriteByte(text[i+1])
				i += 2
			} else if i+1 < len(text) {
				i += 2
			} else {
				i++
			}
		case '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				// No closing brace anywhere: the brace is
				// literal text after all.
				sb.WriteByte('{')
				i++
				continue
			}
			interior := text[i+1 : i+1+end]
			i += end + 2

			// The block is parsed before the preceding span is
			// finalized: whether the block ends an open drawing
			// decides how that span closes.
			tb := parseTagBlock(interior, &global, false)
			endSpan(&spans, sb.String(), spanTags, &drawing, tb.endDrawing)
			sb.Reset()
			spanTags = tb.local
			if tb.reset != nil {
				spans = append(spans, tb.reset)
			}
			if scale, ok := tb.drawingScale.Value(); ok {
				drawing = &Drawing{Scale: scale}
			}
		default:
			sb.WriteByte(text[i])
			i++
		}
	}
	endSpan(&spans, sb.String(), spanTags, &drawing, true)
	return global, spans
}

// endSpan finalizes the text accumulated since the last tag block. While a
// drawing is open, interrupting tag blocks invalidate the pending commands
// but still contribute their local tags; only a zero drawing scale (or end
// of input) closes the drawing into a span.
func endSpan(spans *[]Span, text string, tags Local, drawing **Drawing, endsDrawing bool) {
	if *drawing != nil {
		if endsDrawing {
			d := **drawing
			d.Commands = text
			*spans = append(*spans, SpanDrawing{Tags: tags, Drawing: d})
			*drawing = nil
		} else {
			*spans = append(*spans, SpanTags{Tags: tags})
		}
		return
	}
	*spans = append(*spans, SpanTags{Tags: tags, Text: text})
}

// tagBlock is the effect of one {...} block on the surrounding line.
type tagBlock struct {
	local        Local
	reset        Span // nil, SpanReset or SpanResetToStyle
	drawingScale Option[int32]
	endDrawing   bool
}

// parseTagBlock tag-parses the interior of one brace block. nested marks
// parsing inside an animation argument, where a handful of tags are not
// permitted.
func parseTagBlock(block string, global *Global, nested bool) tagBlock {
	var tb tagBlock
	for _, tag := range splitBlockTags(block) {
		parseTag(tag, global, &tb, nested)
	}
	return tb
}

// splitBlockTags splits a block interior into individual tag strings. Text
// before the first backslash is comment and dropped; whitespace directly
// after a backslash is skipped; parenthesized argument groups are kept
// intact so nested tags inside them are not split at this level.
func splitBlockTags(block string) []string {
	var out []string
	i := strings.IndexByte(block, '\\')
	if i < 0 {
		return nil
	}
	for i < len(block) {
		i++
		for i < len(block) && (block[i] == ' ' || block[i] == '\t') {
			i++
		}
		start := i
		depth := 0
		for i < len(block) {
			switch block[i] {
			case '(':
				depth++
			case ')':
				if depth > 0 {
					depth--
				}
			case '\\':
				if depth == 0 {
					goto split
				}
			}
			i++
		}
	split:
		if tag := block[start:i]; tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// tagNames is the dispatch table, ordered so that longer names win over
// their prefixes.
var tagNames = []string{
	"xbord", "ybord", "bord", "xshad", "yshad", "shad", "blur", "be",
	"fscx", "fscy", "fsc", "fsp", "fade", "fad", "frx", "fry", "frz",
	"fax", "fay", "fe", "fn", "fs", "iclip", "clip", "move", "pos",
	"pbo", "org", "an", "a", "1c", "2c", "3c", "4c", "1a", "2a", "3a",
	"4a", "c", "kf", "ko", "kt", "k", "t", "i", "b", "u", "s", "r",
	"p", "q",
}

func parseTag(tag string, global *Global, tb *tagBlock, nested bool) {
	name := ""
	for _, n := range tagNames {
		if strings.HasPrefix(tag, n) {
			name = n
			break
		}
	}
	if name == "" {
		return
	}
	rest := tag[len(name):]

	switch name {
	case "i":
		setBool(&tb.local.Italic, simpleArg(rest))
	case "b":
		setFontWeight(&tb.local.FontWeight, simpleArg(rest))
	case "u":
		setBool(&tb.local.Underline, simpleArg(rest))
	case "s":
		setBool(&tb.local.StrikeOut, simpleArg(rest))
	case "xbord":
		setFloat(&tb.local.Border.X, simpleArg(rest))
	case "ybord":
		setFloat(&tb.local.Border.Y, simpleArg(rest))
	case "bord":
		setBoth2D(&tb.local.Border, simpleArg(rest))
	case "xshad":
		setFloat(&tb.local.Shadow.X, simpleArg(rest))
	case "yshad":
		setFloat(&tb.local.Shadow.Y, simpleArg(rest))
	case "shad":
		setBoth2D(&tb.local.Shadow, simpleArg(rest))
	case "blur":
		setFloat(&tb.local.Blur, simpleArg(rest))
	case "be":
		setFloat(&tb.local.Soften, simpleArg(rest))
	case "fn":
		if arg := simpleArg(rest); arg == "" {
			tb.local.FontName = Reset[string]()
		} else {
			tb.local.FontName = Override(arg)
		}
	case "fs":
		setFontSize(&tb.local.FontSize, simpleArg(rest))
	case "fscx":
		setFloat(&tb.local.FontScale.X, simpleArg(rest))
	case "fscy":
		setFloat(&tb.local.FontScale.Y, simpleArg(rest))
	case "fsc":
		// Resets both axes regardless of any argument.
		tb.local.FontScale.X = Reset[float64]()
		tb.local.FontScale.Y = Reset[float64]()
	case "fsp":
		setFloat(&tb.local.LetterSpacing, simpleArg(rest))
	case "frx":
		setFloat(&tb.local.Rotation.X, simpleArg(rest))
	case "fry":
		setFloat(&tb.local.Rotation.Y, simpleArg(rest))
	case "frz":
		setFloat(&tb.local.Rotation.Z, simpleArg(rest))
	case "fax":
		setFloat(&tb.local.Shear.X, simpleArg(rest))
	case "fay":
		setFloat(&tb.local.Shear.Y, simpleArg(rest))
	case "fe":
		setInt(&tb.local.FontEncoding, simpleArg(rest))
	case "an":
		parseAlignment(&global.Alignment, simpleArg(rest), ass.AlignmentFromWireCode)
	case "a":
		parseAlignment(&global.Alignment, simpleArg(rest), ass.AlignmentFromLegacyWireCode)
	case "pos":
		if args, ok := parenArgs(rest); ok && len(args) == 2 && !global.Position.IsSet() {
			global.Position = Some[PositionOrMove](StaticPosition{
				Point: ass.Position{X: parsePrefixF64(args[0]), Y: parsePrefixF64(args[1])},
			})
		}
	case "move":
		parseMove(global, rest)
	case "org":
		if args, ok := parenArgs(rest); ok && len(args) == 2 && !global.Origin.IsSet() {
			global.Origin = Some(ass.Position{X: parsePrefixF64(args[0]), Y: parsePrefixF64(args[1])})
		}
	case "fad":
		if args, ok := parenArgs(rest); ok && len(args) == 2 && !global.Fade.IsSet() {
			global.Fade = Some[Fade](FadeSimple{
				FadeIn:  ass.Milliseconds(parsePrefixI32(args[0], 10)),
				FadeOut: ass.Milliseconds(parsePrefixI32(args[1], 10)),
			})
		}
	case "fade":
		parseFade(global, rest)
	case "clip":
		parseClip(global, rest, false, nested)
	case "iclip":
		parseClip(global, rest, true, nested)
	case "c", "1c":
		setColour(&tb.local.PrimaryColour, simpleArg(rest))
	case "2c":
		setColour(&tb.local.SecondaryColour, simpleArg(rest))
	case "3c":
		setColour(&tb.local.BorderColour, simpleArg(rest))
	case "4c":
		setColour(&tb.local.ShadowColour, simpleArg(rest))
	case "1a":
		setTransparency(&tb.local.PrimaryTransparency, simpleArg(rest))
	case "2a":
		setTransparency(&tb.local.SecondaryTransparency, simpleArg(rest))
	case "3a":
		setTransparency(&tb.local.BorderTransparency, simpleArg(rest))
	case "4a":
		setTransparency(&tb.local.ShadowTransparency, simpleArg(rest))
	case "k":
		tb.local.Karaoke.AddRelative(KaraokeInstant, centisecondsArg(rest, 100))
	case "kf":
		tb.local.Karaoke.AddRelative(KaraokeSweep, centisecondsArg(rest, 100))
	case "ko":
		tb.local.Karaoke.AddRelative(KaraokeInstantOutline, centisecondsArg(rest, 100))
	case "kt":
		tb.local.Karaoke.SetAbsolute(centisecondsArg(rest, 0))
	case "t":
		parseAnimation(global, tb, rest, nested)
	case "r":
		// Discards everything parsed so far in this block; the reset
		// span is emitted ahead of any tags that follow it.
		tb.local = Local{}
		if rest == "" {
			tb.reset = SpanReset{}
		} else {
			tb.reset = SpanResetToStyle{Style: rest}
		}
	case "p":
		// Only a zero (or negative) scale ends an open drawing; a new
		// positive scale replaces the open drawing instead of closing
		// it into a span.
		if v := parsePrefixI32(simpleArg(rest), 10); v > 0 {
			tb.drawingScale = Some(v)
		} else {
			tb.drawingScale = None[int32]()
			tb.endDrawing = true
		}
	case "pbo":
		if arg := simpleArg(rest); arg == "" {
			tb.local.DrawingBaselineOffset = None[float64]()
		} else {
			tb.local.DrawingBaselineOffset = Some(parsePrefixF64(arg))
		}
	case "q":
		if arg := simpleArg(rest); arg == "" {
			global.WrapStyle = Reset[ass.WrapStyle]()
		} else if ws, ok := ass.WrapStyleFromWireCode(parsePrefixI32(arg, 10)); ok {
			global.WrapStyle = Override(ws)
		} else {
			global.WrapStyle = Reset[ass.WrapStyle]()
		}
	}
}

// parseAlignment applies an alignment tag. Only the first alignment tag on
// a line takes effect; an invalid or missing code resets to the style's
// alignment.
func parseAlignment(slot *Resettable[ass.Alignment], arg string, fromWire func(int32) (ass.Alignment, bool)) {
	if !slot.IsKeep() {
		return
	}
	if arg == "" {
		*slot = Reset[ass.Alignment]()
		return
	}
	if a, ok := fromWire(parsePrefixI32(arg, 10)); ok {
		*slot = Override(a)
	} else {
		*slot = Reset[ass.Alignment]()
	}
}

func parseMove(global *Global, rest string) {
	args, ok := parenArgs(rest)
	if !ok || global.Position.IsSet() {
		return
	}
	if len(args) != 4 && len(args) != 6 {
		return
	}
	m := Move{
		From: ass.Position{X: parsePrefixF64(args[0]), Y: parsePrefixF64(args[1])},
		To:   ass.Position{X: parsePrefixF64(args[2]), Y: parsePrefixF64(args[3])},
	}
	if len(args) == 6 {
		m.Timing = Some(MoveTiming{
			Start: ass.Milliseconds(parsePrefixI32(args[4], 10)),
			End:   ass.Milliseconds(parsePrefixI32(args[5], 10)),
		})
	}
	global.Position = Some[PositionOrMove](m)
}

func parseFade(global *Global, rest string) {
	args, ok := parenArgs(rest)
	if !ok || global.Fade.IsSet() {
		return
	}
	switch len(args) {
	case 2:
		global.Fade = Some[Fade](FadeSimple{
			FadeIn:  ass.Milliseconds(parsePrefixI32(args[0], 10)),
			FadeOut: ass.Milliseconds(parsePrefixI32(args[1], 10)),
		})
	case 7:
		global.Fade = Some[Fade](FadeComplex{
			A1: ass.Transparency(parsePrefixI32(args[0], 10)),
			A2: ass.Transparency(parsePrefixI32(args[1], 10)),
			A3: ass.Transparency(parsePrefixI32(args[2], 10)),
			T1: ass.Milliseconds(parsePrefixI32(args[3], 10)),
			T2: ass.Milliseconds(parsePrefixI32(args[4], 10)),
			T3: ass.Milliseconds(parsePrefixI32(args[5], 10)),
			T4: ass.Milliseconds(parsePrefixI32(args[6], 10)),
		})
	}
}

// parseClip applies a clip tag. Rectangular clips obey first-wins like the
// other global tags; vector clips always override, even a previously set
// rectangle. Vector clips inside an animation are not supported by the
// downstream renderer and are dropped with a log line instead of silently
// diverging from it.
func parseClip(global *Global, rest string, inverse, nested bool) {
	args, ok := parenArgs(rest)
	if !ok {
		return
	}
	switch len(args) {
	case 4:
		if global.Clip.IsSet() {
			return
		}
		global.Clip = Some[Clip](ClipRectangle{
			Inverse: inverse,
			X1:      parsePrefixI32(args[0], 10),
			Y1:      parsePrefixI32(args[1], 10),
			X2:      parsePrefixI32(args[2], 10),
			Y2:      parsePrefixI32(args[3], 10),
		})
	case 1, 2:
		if nested {
			log.WithComponent("tags").Warn("vector clip inside an animation is not supported, dropping tag")
			return
		}
		d := Drawing{Scale: 1}
		if len(args) == 2 {
			d.Scale = parsePrefixI32(args[0], 10)
			d.Commands = args[1]
		} else {
			d.Commands = args[0]
		}
		global.Clip = Some[Clip](ClipVector{Inverse: inverse, Drawing: d})
	}
}

// parseAnimation handles the animation tag. The last comma-separated
// argument is the animated tag string; zero to three numeric arguments
// before it select the interval and acceleration. Interval bounds are
// parsed as floats and truncated, matching the reference renderer.
func parseAnimation(global *Global, tb *tagBlock, rest string, nested bool) {
	if nested {
		log.WithComponent("tags").Warn("nested animation tags are not supported, dropping tag")
		return
	}
	args, ok := parenArgs(rest)
	if !ok || len(args) == 0 {
		return
	}
	tagsArg := args[len(args)-1]
	pre := args[:len(args)-1]

	accel := 1.0
	var interval Option[AnimationInterval]
	switch len(pre) {
	case 0:
	case 1:
		accel = parsePrefixF64(pre[0])
	case 2:
		interval = Some(AnimationInterval{
			Start: ass.Milliseconds(int64(parsePrefixF64(pre[0]))),
			End:   ass.Milliseconds(int64(parsePrefixF64(pre[1]))),
		})
	case 3:
		interval = Some(AnimationInterval{
			Start: ass.Milliseconds(int64(parsePrefixF64(pre[0]))),
			End:   ass.Milliseconds(int64(parsePrefixF64(pre[1]))),
		})
		accel = parsePrefixF64(pre[2])
	default:
		log.WithComponent("tags").Warn("animation tag with unsupported argument count, dropping tag", "args", len(args))
		return
	}

	var innerGlobal Global
	inner := parseTagBlock(tagsArg, &innerGlobal, true)
	if la := inner.local.animatable(); !la.IsEmpty() {
		tb.local.Animations = append(tb.local.Animations, Animation[LocalAnimatable]{
			Modifiers:    la,
			Acceleration: accel,
			Interval:     interval,
		})
	}
	if ga := innerGlobal.animatable(); !ga.IsEmpty() {
		global.Animations = append(global.Animations, Animation[GlobalAnimatable]{
			Modifiers:    ga,
			Acceleration: accel,
			Interval:     interval,
		})
	}
}

// simpleArg normalizes the argument of a single-value tag: a parenthesized
// form is unwrapped, otherwise the raw suffix is the argument.
func simpleArg(rest string) string {
	if strings.HasPrefix(rest, "(") {
		if args, ok := parenArgs(rest); ok && len(args) > 0 {
			return args[0]
		}
		return ""
	}
	return rest
}

// parenArgs splits a parenthesized argument group on top-level commas.
// A missing closing parenthesis is tolerated, taking the remainder of the
// string.
func parenArgs(rest string) ([]string, bool) {
	if !strings.HasPrefix(rest, "(") {
		return nil, false
	}
	interior := rest[1:]
	depth := 1
	for i := 0; i < len(interior); i++ {
		switch interior[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				interior = interior[:i]
			}
		}
		if depth == 0 {
			break
		}
	}
	var args []string
	depth = 0
	start := 0
	for i := 0; i < len(interior); i++ {
		switch interior[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				args = append(args, interior[start:i])
				start = i + 1
			}
		}
	}
	args = append(args, interior[start:])
	return args, true
}

func centisecondsArg(rest string, def ass.Centiseconds) ass.Centiseconds {
	arg := simpleArg(rest)
	if arg == "" {
		return def
	}
	return ass.Centiseconds(parsePrefixI32(arg, 10))
}

func setBool(slot *Resettable[bool], arg string) {
	if arg == "" {
		*slot = Reset[bool]()
		return
	}
	*slot = Override(parsePrefixI32(arg, 10) != 0)
}

func setFloat(slot *Resettable[float64], arg string) {
	if arg == "" {
		*slot = Reset[float64]()
		return
	}
	*slot = Override(parsePrefixF64(arg))
}

func setInt(slot *Resettable[int32], arg string) {
	if arg == "" {
		*slot = Reset[int32]()
		return
	}
	*slot = Override(parsePrefixI32(arg, 10))
}

func setBoth2D(m *Maybe2D, arg string) {
	var v Resettable[float64]
	if arg == "" {
		v = Reset[float64]()
	} else {
		v = Override(parsePrefixF64(arg))
	}
	m.X, m.Y = v, v
}

func setColour(slot *Resettable[ass.Colour], arg string) {
	if arg == "" {
		*slot = Reset[ass.Colour]()
		return
	}
	*slot = Override(parseColour(arg))
}

func setTransparency(slot *Resettable[ass.Transparency], arg string) {
	if arg == "" {
		*slot = Reset[ass.Transparency]()
		return
	}
	*slot = Override(parseTransparency(arg))
}

func setFontWeight(slot *Resettable[FontWeight], arg string) {
	if arg == "" {
		*slot = Reset[FontWeight]()
		return
	}
	switch v := parsePrefixI32(arg, 10); v {
	case 0:
		*slot = Override(BoldToggle(false))
	case 1:
		*slot = Override(BoldToggle(true))
	default:
		*slot = Override(WeightValue(v))
	}
}

// setFontSize applies a font size tag: a leading sign in the raw argument
// selects relative mode; a non-positive absolute size resets instead,
// matching the downstream renderer.
func setFontSize(slot *Resettable[FontSize], arg string) {
	if arg == "" {
		*slot = Reset[FontSize]()
		return
	}
	if hasLeadingSign(arg) {
		*slot = Override(FontSize{Delta: true, Value: parsePrefixF64(arg)})
		return
	}
	if v := parsePrefixF64(arg); v > 0 {
		*slot = Override(FontSize{Value: v})
	} else {
		*slot = Reset[FontSize]()
	}
}
