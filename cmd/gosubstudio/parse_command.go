/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gosubstudio/internal/ass/drawings"
	"gosubstudio/internal/ass/tags"
)

func newParseCommand() *cobra.Command {
	var simplify bool
	cmd := &cobra.Command{
		Use:   "parse <event-text>",
		Short: "Parse the override tags of one event line and show its spans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			global, spans := tags.Parse(args[0])
			if simplify {
				spans = tags.Simplify(spans)
			}

			if block := tags.Emit(&global, nil); block != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "global:", block)
			}
			rows := make([][]string, 0, len(spans))
			for i, s := range spans {
				kind, detail := describeSpan(s)
				rows = append(rows, []string{strconv.Itoa(i), kind, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "KIND", "CANONICAL"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&simplify, "simplify", false, "Canonicalize spans before display")
	return cmd
}

func newRoundtripCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <event-text>",
		Short: "Parse, simplify and re-emit one event line in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			global, spans := tags.Parse(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), tags.Emit(&global, tags.Simplify(spans)))
			return nil
		},
	}
}

// describeSpan renders one span as its kind plus the canonical emitted form.
func describeSpan(s tags.Span) (string, string) {
	switch sp := s.(type) {
	case tags.SpanTags:
		return "tags", tags.Emit(&tags.Global{}, []tags.Span{sp})
	case tags.SpanDrawing:
		detail := tags.Emit(&tags.Global{}, []tags.Span{sp})
		path := drawings.Parse(sp.Drawing.Commands).AtScale(sp.Drawing.Scale)
		if b, ok := path.Bounds(); ok {
			detail += fmt.Sprintf("  [%gx%g px at (%g,%g)]", b.Width(), b.Height(), b.MinX, b.MinY)
		}
		return "drawing", detail
	case tags.SpanReset:
		return "reset", `{\r}`
	case tags.SpanResetToStyle:
		return "reset-to-style", `{\r` + sp.Style + `}`
	default:
		return "unknown", ""
	}
}
