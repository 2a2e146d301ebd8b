// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-renamer/internal/extract"
	"github.com/pdiddy/paper-renamer/internal/fingerprint"
	"github.com/pdiddy/paper-renamer/internal/hashstore"
	"github.com/pdiddy/paper-renamer/internal/llm"
	"github.com/pdiddy/paper-renamer/internal/pdftext"
	"github.com/pdiddy/paper-renamer/internal/rename"
)

var renameCmd = &cobra.Command{
	Use:   "rename [directory]",
	Short: "Copy or rename the PDFs in a directory after their metadata",
	Long: `Rename processes every file in the directory whose name ends in "pdf".
For each file it asks the model about up to three leading pages, builds
YEAR_Title_Author.pdf, and copies the file to that name (or moves it with
--rename). Files already recorded in the state are skipped unless --force
is given. Files without usable metadata are reported and retried next run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().String("directory", "", "directory to process (alternative to the positional argument)")
	renameCmd.Flags().Bool("rename", false, "move files to their new name instead of copying")
	renameCmd.Flags().Bool("force", false, "reprocess files already recorded in the state")
	renameCmd.Flags().Bool("dry-run", false, "print planned names without changing files or state")
	renameCmd.Flags().String("provider", "", "model provider: openai, anthropic, or vertex (default openai)")
	renameCmd.Flags().String("model", "", "model identifier (provider default when empty)")
	renameCmd.Flags().Int("page-budget", 0, "leading pages to try per file (default 3)")

	viper.BindPFlag("model.provider", renameCmd.Flags().Lookup("provider"))
	viper.BindPFlag("model.name", renameCmd.Flags().Lookup("model"))
	viper.BindPFlag("extract.page_budget", renameCmd.Flags().Lookup("page-budget"))

	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("directory")
	if dir == "" && len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("provide a directory to process (positional argument or --directory)")
	}

	move, _ := cmd.Flags().GetBool("rename")
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	model, closeModel, err := llm.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeModel()

	fs := afero.NewOsFs()
	store, err := hashstore.Open(cfg.State, fs, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	extractor := extract.New(model, pdftext.NewFileOpener(fs), cfg.Extract, logger)
	proc := rename.NewProcessor(fs, fingerprint.NewHasher(fs, 0), extractor, store, cmd.OutOrStdout(), logger)

	_, err = proc.Process(ctx, dir, rename.Options{
		Rename: move,
		Force:  force,
		DryRun: dryRun,
	})
	return err
}
