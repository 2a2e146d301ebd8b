// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-renamer CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-renamer/internal/secrets"
	"github.com/pdiddy/paper-renamer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the run-scoped diagnostic logger, set in PersistentPreRunE.
var logger = slog.Default()

// secretDefault returns fallback if set, otherwise the secret stored under key,
// otherwise the environment variable env.
func secretDefault(key, env, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return os.Getenv(env)
}

// rootCmd is the base command for the paper-renamer CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-renamer",
	Short: "Rename scientific PDFs after their year, title, and last author",
	Long: `paper-renamer reads the first pages of each PDF in a directory, asks a
language model for the publication year, title, and last author, and copies or
renames the file to YEAR_Title_Author.pdf.

Content hashes of handled files are kept in a state file so later runs skip
them. Use "state list" and "state forget" to inspect or reset that state.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := parseLevel(viper.GetString("log.level"))
		logger = newLogger(level, uuid.NewString())
		slog.SetDefault(logger)

		s, err := secrets.Load(afero.NewOsFs(), ".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("secrets.loaded", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-renamer.yaml or ~/.config/paper-renamer/config.yaml)")
	rootCmd.PersistentFlags().String("state", "", "state file path (default: hashes.yaml, or hashes.db for sqlite)")
	rootCmd.PersistentFlags().String("state-backend", "yaml", "state backend: yaml or sqlite")
	rootCmd.PersistentFlags().String("log-level", "info", "diagnostic log level: debug, info, warn, error")

	viper.BindPFlag("state.path", rootCmd.PersistentFlags().Lookup("state"))
	viper.BindPFlag("state.backend", rootCmd.PersistentFlags().Lookup("state-backend"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("model.provider", string(types.ProviderOpenAI))
	viper.SetDefault("model.name", "")
	viper.SetDefault("model.base_url", "")
	viper.SetDefault("model.api_key", "")
	viper.SetDefault("model.timeout", "60s")
	viper.SetDefault("model.max_retries", 5)
	viper.SetDefault("vertex.project", "")
	viper.SetDefault("vertex.location", "us-central1")
	viper.SetDefault("extract.page_budget", 3)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-renamer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-renamer"))
		}
	}

	viper.SetEnvPrefix("PAPER_RENAMER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flag, environment, and file settings and
// fills in the API key for the selected provider.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return cfg, err
	}

	switch cfg.Model.Provider {
	case types.ProviderOpenAI, "":
		cfg.Model.APIKey = secretDefault("openai-api-key", "OPENAI_API_KEY", cfg.Model.APIKey)
	case types.ProviderAnthropic:
		cfg.Model.APIKey = secretDefault("anthropic-api-key", "ANTHROPIC_API_KEY", cfg.Model.APIKey)
	case types.ProviderVertex:
		cfg.Vertex.Project = secretDefault("vertex-project", "GOOGLE_CLOUD_PROJECT", cfg.Vertex.Project)
	}
	return cfg, nil
}

// parseLevel maps a level name to a slog.Level. Empty means info.
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: use debug, info, warn, or error", s)
	}
	return level, nil
}

// newLogger returns a text logger on stderr tagged with the run id.
func newLogger(level slog.Level, runID string) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("run_id", runID)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
