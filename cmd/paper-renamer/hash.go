// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-renamer/internal/fingerprint"
)

var hashCmd = &cobra.Command{
	Use:   "hash FILE...",
	Short: "Print the content hash used to recognise processed files",
	Long: `Hash prints the SHA-256 of the first 4096 bytes of each file, the same
value recorded in the state after a file is processed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hasher := fingerprint.NewHasher(afero.NewOsFs(), 0)
		for _, path := range args {
			h, err := hasher.Hash(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", h, path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
}
