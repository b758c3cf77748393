// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Dogma Engine Contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seedwing-io/dogma-engine/internal/config"
	"github.com/seedwing-io/dogma-engine/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Dogma CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dogma",
		Short: "Dogma - a Seedwing-style policy engine",
		Long: `Dogma compiles and evaluates policies written in the Dogma
pattern-matching language, where everything is a type.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath(), "config file path")

	cmd.AddCommand(newLoadCmd())
	cmd.AddCommand(newEvalCmd())
	cmd.AddCommand(newListPatternsCmd())

	return cmd
}

// loadConfig loads configuration, merging in any flags the caller's
// command has already parsed. A missing file at the default path is
// not an error; a missing file the user named explicitly with --config
// is.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("dogma: %w", err)
	}
	logging.SetDefault("dogma", version, cfg.Logging.Format)
	return cfg, nil
}
