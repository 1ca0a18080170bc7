/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gosubstudio/internal/ass"
	"gosubstudio/internal/filterstore"
	"gosubstudio/internal/nde"
)

func newCompileCommand(ctx *commandContext) *cobra.Command {
	var (
		filterName string
		start      int64
		duration   int64
	)
	cmd := &cobra.Command{
		Use:   "compile <event-text>",
		Short: "Run one subtitle line through a filter graph and show the events",
		Long: `Run one subtitle line through a filter graph and show the derived events.

Without --filter, a single italicise node is used. With --filter, the graph
is loaded from the filter library by name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := resolveGraph(cmd.Context(), ctx, filterName)
			if err != nil {
				return err
			}
			frameRate, err := ctx.frameRate()
			if err != nil {
				return err
			}

			sline := ass.Sline{
				Start:    ass.Milliseconds(start),
				Duration: ass.Milliseconds(duration),
				Text:     args[0],
			}
			var counter ass.ReadOrderCounter
			res, err := nde.Compile(&sline, graph, frameRate, &counter)
			if err != nil {
				return fmt.Errorf("compile: %w", err)
			}
			if res.Events == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "graph output is inactive; no events produced")
				return nil
			}

			rows := make([][]string, 0, len(res.Events))
			for _, ev := range res.Events {
				rows = append(rows, []string{
					strconv.FormatInt(int64(ev.ReadOrder), 10),
					strconv.FormatInt(int64(ev.Start), 10),
					strconv.FormatInt(int64(ev.Duration), 10),
					ev.Text,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"READ", "START (MS)", "DURATION (MS)", "TEXT"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&filterName, "filter", "", "Name of a stored filter to apply")
	cmd.Flags().Int64Var(&start, "start", 0, "Line start in milliseconds")
	cmd.Flags().Int64Var(&duration, "duration", 1000, "Line duration in milliseconds")
	return cmd
}

func resolveGraph(ctx context.Context, cc *commandContext, filterName string) (*nde.Graph, error) {
	if filterName == "" {
		return nde.FromSingleIntermediate(nde.Italicise{}), nil
	}
	store, err := cc.openLibrary()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	f, err := store.GetByName(ctx, filterName)
	if err != nil {
		if errors.Is(err, filterstore.ErrNotFound) {
			return nil, fmt.Errorf("no filter named %q in the library", filterName)
		}
		return nil, err
	}
	graph, err := nde.UnmarshalGraph(f.Graph)
	if err != nil {
		return nil, fmt.Errorf("load filter %q: %w", filterName, err)
	}
	return graph, nil
}
