// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the privylens CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/privylens/internal/metrics"
	"github.com/pdiddy/privylens/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, otherwise the secret value
// for key if it exists.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the privylens CLI.
var rootCmd = &cobra.Command{
	Use:   "privylens",
	Short: "Similarity search over academic and web indexes",
	Long: `privylens turns a free-text research question into a boolean search
string via a language model, queries arXiv or Google Custom Search for
candidates, ranks them by embedding relatedness to the original question,
and saves every ranked result set for later reloading.

Run "privylens search" for one-off searches, "privylens history" to browse
saved result sets, or "privylens serve" for the interactive web UI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		metrics.Register()

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
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./privylens.yaml or ~/.config/privylens/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("privylens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "privylens"))
		}
	}

	viper.SetEnvPrefix("PRIVYLENS")
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
