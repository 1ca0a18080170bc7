/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tags

// Simplify canonicalizes a span list in three passes: drop structurally
// empty spans, merge spans into content-less predecessors, and trim
// everything after the last span that carries content. Reset spans are
// never dropped, but consecutive resets collapse to the last one.
// Simplify is idempotent.
func Simplify(spans []Span) []Span {
	kept := make([]Span, 0, len(spans))
	for _, s := range spans {
		switch sp := s.(type) {
		case SpanTags:
			if sp.Text == "" && sp.Tags.IsEmpty() {
				continue
			}
		case SpanDrawing:
			if sp.Drawing.Commands == "" && sp.Tags.IsEmpty() {
				continue
			}
		}
		kept = append(kept, s)
	}

	merged := make([]Span, 0, len(kept))
	for _, s := range kept {
		if len(merged) > 0 && mergeIntoPredecessor(merged, s) {
			continue
		}
		merged = append(merged, s)
	}

	lastContent := -1
	for i, s := range merged {
		switch sp := s.(type) {
		case SpanTags:
			if sp.Text != "" {
				lastContent = i
			}
		case SpanDrawing:
			if sp.Drawing.Commands != "" {
				lastContent = i
			}
		}
	}
	return merged[:lastContent+1]
}

// mergeIntoPredecessor folds s into the last entry of merged when that
// entry has no content of its own: the predecessor's tags absorb s's tags
// and the combined entry takes s's content. A reset following a reset
// overwrites it in place. Reports whether s was consumed.
func mergeIntoPredecessor(merged []Span, s Span) bool {
	last := len(merged) - 1
	switch cur := s.(type) {
	case SpanTags:
		switch pred := merged[last].(type) {
		case SpanTags:
			if pred.Text == "" {
				pred.Tags.OverrideFrom(&cur.Tags)
				pred.Text = cur.Text
				merged[last] = pred
				return true
			}
		case SpanDrawing:
			if pred.Drawing.Commands == "" {
				pred.Tags.OverrideFrom(&cur.Tags)
				merged[last] = SpanTags{Tags: pred.Tags, Text: cur.Text}
				return true
			}
		}
	case SpanDrawing:
		switch pred := merged[last].(type) {
		case SpanTags:
			if pred.Text == "" {
				pred.Tags.OverrideFrom(&cur.Tags)
				merged[last] = SpanDrawing{Tags: pred.Tags, Drawing: cur.Drawing}
				return true
			}
		case SpanDrawing:
			if pred.Drawing.Commands == "" {
				pred.Tags.OverrideFrom(&cur.Tags)
				merged[last] = SpanDrawing{Tags: pred.Tags, Drawing: cur.Drawing}
				return true
			}
		}
	case SpanReset, SpanResetToStyle:
		switch merged[last].(type) {
		case SpanReset, SpanResetToStyle:
			merged[last] = s
			return true
		}
	}
	return false
}
