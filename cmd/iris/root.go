// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Iris CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iris",
		Short: "Iris - user account backend",
		Long: `Iris is a user-account backend: registration, login with JWT
session tokens, and authorization-gated profile management.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
