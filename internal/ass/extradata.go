/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ass

import "strings"

// Extradata values embedded in a subtitle document are stored on a single
// line, so bytes that would break the line-oriented format (separators,
// control characters, the escape character itself) are written as
// '#' + two uppercase hex digits. "abc#2Cd" decodes to "abc,d".

func inlineNeedsEscape(b byte) bool {
	return b < 0x20 || b == 0x7F || b == ',' || b == '#' || b == '|' || b == '\\'
}

// EncodeInlineString escapes a value for storage on an extradata line.
func EncodeInlineString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if inlineNeedsEscape(b) {
			sb.WriteByte('#')
			sb.WriteByte(hexDigit(b >> 4))
			sb.WriteByte(hexDigit(b & 0x0F))
			continue
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

// DecodeInlineString reverses EncodeInlineString. Malformed escapes (a '#'
// not followed by two hex digits) are kept literally rather than rejected,
// consistent with the tolerant handling of authored files elsewhere.
func DecodeInlineString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '#' && i+2 < len(s) {
			hi, okHi := hexValue(s[i+1])
			lo, okLo := hexValue(s[i+2])
			if okHi && okLo {
				sb.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

func hexDigit(v byte) byte {
	if v < 10 {
		return '0' + v
	}
	return 'A' + v - 10
}

func hexValue(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}
