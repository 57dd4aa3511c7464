// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/manifest"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>...",
		Short: "Validate extension manifests",
		Long: `Validate the extension.yaml manifest in each given extension
directory against the manifest schema and its semantic constraints.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, dir := range args {
				path := filepath.Join(dir, manifest.Filename)
				data, err := os.ReadFile(filepath.Clean(path))
				if err != nil {
					cmd.Printf("%s: %v\n", dir, err)
					failed++
					continue
				}
				if err := manifest.ValidateSchema(data); err != nil {
					cmd.Printf("%s: %s\n", dir, manifest.FormatSchemaError(err))
					failed++
					continue
				}
				mf, err := manifest.Parse(data)
				if err != nil {
					cmd.Printf("%s: %v\n", dir, err)
					failed++
					continue
				}
				cmd.Printf("%s: ok (%s %s)\n", dir, mf.Name, mf.Version)
			}
			if failed > 0 {
				return fmt.Errorf("%d manifest(s) failed validation", failed)
			}
			return nil
		},
	}
}
