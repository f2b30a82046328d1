// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the genui-engine CLI.
// genui-engine post-processes generated text: it extracts fenced code
// blocks, YAML payloads, and inline annotations from model completions,
// rewrites generated UI sources, and indexes the resulting fragments.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/genui-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose lowers the diagnostic log level to Debug.
var verbose bool

// logger is the process-wide diagnostic logger, built in PersistentPreRunE.
var logger *zap.Logger

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the genui-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "genui-engine",
	Short: "Post-processing for generated UI completions",
	Long: `genui-engine sits between a generative text producer and downstream
consumers that expect clean, typed fragments. It extracts fenced code
blocks (single or multi-delimiter), parses YAML payloads, scans for
inline @need annotations, and rewrites generated UI sources to use
wrapper component tags.

Each operation is a subcommand: generate, extract, parse, edit, and
fragments. All operations are best-effort: malformed input produces
diagnostics and sentinel results, never a crash.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		s, err := secrets.Load(".secrets/")
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./genui-engine.yaml or ~/.config/genui-engine/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug diagnostics")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("genui-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "genui-engine"))
		}
	}

	viper.SetEnvPrefix("GENUI_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
