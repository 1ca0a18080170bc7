/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"gosubstudio/internal/filterstore"
	"gosubstudio/internal/nde"
)

func newFiltersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage the filter library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newFiltersListCommand(ctx))
	cmd.AddCommand(newFiltersShowCommand(ctx))
	cmd.AddCommand(newFiltersSaveCommand(ctx))
	cmd.AddCommand(newFiltersDeleteCommand(ctx))
	return cmd
}

func newFiltersListCommand(ctx *commandContext) *cobra.Command {
	var term string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer store.Close()
			filters, err := store.Search(cmd.Context(), term)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(filters))
			for _, f := range filters {
				nodes := "?"
				if g, err := nde.UnmarshalGraph(f.Graph); err == nil {
					nodes = strconv.Itoa(len(g.Nodes))
				}
				rows = append(rows, []string{
					f.Name,
					f.Description,
					nodes,
					f.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"NAME", "DESCRIPTION", "NODES", "UPDATED"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&term, "search", "", "Only list filters whose name or description contains the term")
	return cmd
}

func newFiltersShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored filter graph as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer store.Close()
			f, err := store.GetByName(cmd.Context(), args[0])
			if errors.Is(err, filterstore.ErrNotFound) {
				return fmt.Errorf("no filter named %q in the library", args[0])
			}
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write(f.Graph) //nolint:errcheck
			return nil
		},
	}
}

func newFiltersSaveCommand(ctx *commandContext) *cobra.Command {
	var (
		file        string
		description string
	)
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Store a filter graph under a name",
		Long: `Store a filter graph under a name.

Without --file, a fresh single-node italicise graph is stored; with --file,
the graph JSON is read from the given path. Saving an existing name
overwrites that filter.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var graph []byte
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read graph file: %w", err)
				}
				graph = data
			} else {
				data, err := nde.MarshalGraph(nde.FromSingleIntermediate(nde.Italicise{}))
				if err != nil {
					return err
				}
				graph = data
			}

			store, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			f := &filterstore.Filter{Name: args[0], Description: description, Graph: graph}
			if existing, err := store.GetByName(cmd.Context(), args[0]); err == nil {
				f.ID = existing.ID
				f.CreatedAt = existing.CreatedAt
				if description == "" {
					f.Description = existing.Description
				}
			}
			if err := store.Save(cmd.Context(), f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved filter %q (%s)\n", f.Name, f.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read graph JSON from this file")
	cmd.Flags().StringVar(&description, "description", "", "Human-readable description")
	return cmd
}

func newFiltersDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a filter from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer store.Close()
			f, err := store.GetByName(cmd.Context(), args[0])
			if errors.Is(err, filterstore.ErrNotFound) {
				return fmt.Errorf("no filter named %q in the library", args[0])
			}
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), f.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted filter %q\n", f.Name)
			return nil
		},
	}
}
