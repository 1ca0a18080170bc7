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

	"github.com/spf13/cobra"

	"gosubstudio/internal/ass"
	"gosubstudio/internal/config"
	"gosubstudio/internal/filterstore"
	"gosubstudio/internal/version"
)

// commandContext carries lazily-loaded configuration shared by subcommands.
type commandContext struct {
	libraryFlag *string

	cfg    config.AppConfig
	loaded bool
}

func newCommandContext(libraryFlag *string) *commandContext {
	return &commandContext{libraryFlag: libraryFlag}
}

func (c *commandContext) ensureConfig() (config.AppConfig, error) {
	if c.loaded {
		return c.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	c.loaded = true
	return cfg, nil
}

// frameRate resolves the authoring frame rate from the config.
func (c *commandContext) frameRate() (ass.FrameRate, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return ass.FrameRate{}, err
	}
	return ass.FrameRate{
		Numerator:   cfg.Authoring.FrameRateNumerator,
		Denominator: cfg.Authoring.FrameRateDenominator,
	}, nil
}

// openLibrary opens the filter library, honoring the --library flag.
func (c *commandContext) openLibrary() (*filterstore.Store, error) {
	if c.libraryFlag != nil && *c.libraryFlag != "" {
		return filterstore.Open(*c.libraryFlag)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	path, err := cfg.FilterLibraryPath()
	if err != nil {
		return nil, err
	}
	return filterstore.Open(path)
}

func newRootCommand() *cobra.Command {
	var libraryFlag string

	ctx := newCommandContext(&libraryFlag)

	rootCmd := &cobra.Command{
		Use:           "gosubstudio",
		Short:         "Subtitle override-tag and filter-graph toolbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&libraryFlag, "library", "", "Path to the filter library database")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newRoundtripCommand())
	rootCmd.AddCommand(newCompileCommand(ctx))
	rootCmd.AddCommand(newFiltersCommand(ctx))

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "gosubstudio", version.String())
			return nil
		},
	}
}
