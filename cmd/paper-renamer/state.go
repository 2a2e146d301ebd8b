// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-renamer/internal/fingerprint"
	"github.com/pdiddy/paper-renamer/internal/hashstore"
	"github.com/pdiddy/paper-renamer/pkg/types"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or edit the set of processed files",
}

// --- list subcommand ---

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every recorded content hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		return listState(context.Background(), store, cmd.OutOrStdout())
	},
}

// --- forget subcommand ---

var stateForgetCmd = &cobra.Command{
	Use:   "forget HASH|FILE...",
	Short: "Remove hashes so the matching files are processed again",
	Long: `Forget removes entries from the state. Each argument is either a
64-character content hash or a path to a file whose hash is computed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		fs := afero.NewOsFs()
		return forgetState(context.Background(), store, fingerprint.NewHasher(fs, 0), args, cmd.OutOrStdout())
	},
}

func openStore() (hashstore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return hashstore.Open(cfg.State, afero.NewOsFs(), logger)
}

func listState(ctx context.Context, store hashstore.Store, w io.Writer) error {
	set, err := store.Load(ctx)
	if err != nil {
		return err
	}
	for _, h := range set.Sorted() {
		fmt.Fprintln(w, h)
	}
	fmt.Fprintf(w, "\n%d processed files\n", set.Len())
	return nil
}

func forgetState(ctx context.Context, store hashstore.Store, hasher *fingerprint.Hasher, args []string, w io.Writer) error {
	set, err := store.Load(ctx)
	if err != nil {
		return err
	}

	removed := 0
	for _, arg := range args {
		h := types.ContentHash(arg)
		if !hexHash.MatchString(arg) {
			if h, err = hasher.Hash(arg); err != nil {
				return err
			}
		}
		if set.Remove(h) {
			fmt.Fprintf(w, "forgot       %s (%s)\n", h, arg)
			removed++
		} else {
			fmt.Fprintf(w, "not recorded %s (%s)\n", h, arg)
		}
	}

	if removed == 0 {
		return nil
	}
	return store.Save(ctx, set)
}

func init() {
	stateCmd.AddCommand(stateListCmd)
	stateCmd.AddCommand(stateForgetCmd)

	rootCmd.AddCommand(stateCmd)
}
