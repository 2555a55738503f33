// Package main implements the embate CLI: an HTTP server around the embate
// registry plus one-shot commands against a local store.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Promptonauts/embate/pkg/config"
)

var (
	configPath string
	envFile    string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "embate",
	Short: "Run and track multi-agent embates",
	Long: `embate tracks units of work ("embates"), runs each through the strategy
selected by its type, and records the outcome.

Examples:
  # Serve the HTTP API with settings from a file
  embate serve --config embate.yaml

  # Run one embate and print the record
  embate run --task "Summarize X"`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading EMBATE_* variables")
	rootCmd.AddCommand(serveCmd, runCmd, getCmd, listCmd, statusCmd)
}

// loadConfig reads the dotenv file, if present, then the layered config.
func loadConfig() (config.Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return config.Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}
	return config.Load(configPath)
}
