/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tags

import (
	"math"
	"strings"

	"gosubstudio/internal/ass"
)

// The numeric parsers below mirror the permissive C-library behaviour that
// authored subtitle scripts depend on: parse the longest valid prefix,
// tolerate leading whitespace and a sign, clamp overflow, and fall back to
// zero for garbage instead of failing.

// parsePrefixI32 parses the longest valid integer prefix of s in the given
// radix. Overflow clamps to the int32 range; an unparseable prefix yields 0.
func parsePrefixI32(s string, radix int32) int32 {
	s = strings.TrimLeft(s, " \t")
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var v int64
	for i := 0; i < len(s); i++ {
		d, ok := digitValue(s[i])
		if !ok || d >= radix {
			break
		}
		v = v*int64(radix) + int64(d)
		if v > math.MaxInt32+1 {
			// Far enough past the limit that the sign no longer
			// matters for clamping.
			v = math.MaxInt32 + 1
			break
		}
	}
	if neg {
		v = -v
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

func digitValue(b byte) (int32, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int32(b - '0'), true
	case b >= 'a' && b <= 'z':
		return int32(b-'a') + 10, true
	case b >= 'A' && b <= 'Z':
		return int32(b-'A') + 10, true
	default:
		return 0, false
	}
}

// parsePrefixF64 parses the longest valid decimal prefix of s, with optional
// sign and fractional part. Exponents are not recognized; no authored tag
// argument uses them. An unparseable prefix yields 0.
func parsePrefixF64(s string) float64 {
	s = strings.TrimLeft(s, " \t")
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var v float64
	i := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		v = v*10 + float64(s[i]-'0')
	}
	if i < len(s) && s[i] == '.' {
		i++
		scale := 0.1
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			v += float64(s[i]-'0') * scale
			scale /= 10
		}
	}
	if neg {
		return -v
	}
	return v
}

// stripHexPrefix removes the leading '&' and 'H' decoration from a colour or
// transparency argument, plus a trailing '&' if present.
func stripHexPrefix(s string) string {
	s = strings.TrimLeft(s, " \t")
	for len(s) > 0 && (s[0] == '&' || s[0] == 'H' || s[0] == 'h') {
		s = s[1:]
	}
	return s
}

// parseColour parses a permissive hex colour argument. The wire order is
// blue-green-red.
func parseColour(s string) ass.Colour {
	v := parsePrefixI32(stripHexPrefix(s), 16)
	return ass.Colour{
		Red:   uint8(v & 0xFF),
		Green: uint8((v >> 8) & 0xFF),
		Blue:  uint8((v >> 16) & 0xFF),
	}
}

// parseTransparency parses a permissive hex transparency argument, a single
// byte.
func parseTransparency(s string) ass.Transparency {
	return ass.Transparency(parsePrefixI32(stripHexPrefix(s), 16))
}

// hasLeadingSign reports whether the first non-blank character of the raw
// argument text is an explicit sign. Font size uses this to distinguish
// relative from absolute mode, which the parsed numeric value cannot convey.
func hasLeadingSign(s string) bool {
	s = strings.TrimLeft(s, " \t")
	return len(s) > 0 && (s[0] == '+' || s[0] == '-')
}
