// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the ModKit CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modkit",
		Short: "ModKit - in-process extension host",
		Long: `ModKit is a long-running host that exposes a versioned binary
interface to extensions loaded into its address space: a capability
query primitive, a plugin/module registry with lifecycle notification,
and a typed event bus with interception and override semantics.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "modkit.yaml", "config file path")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewValidateCmd())

	return cmd
}
