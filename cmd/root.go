package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/config"
)

var (
	cfg          *config.Config
	debugLog     bool
	clustersFile string
)

var rootCmd = &cobra.Command{
	Use:   "fanout-cli",
	Short: "Query fan-out simulator for content strategy",
	Long:  "Expands a seed query into the sub-queries a search engine would fan out to, routes each to its likely source types, profiles the content that currently ranks for it, and synthesizes a clustered content plan.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if debugLog {
			c.Log.Level = "debug"
			c.Log.Format = "console"
		}
		if clustersFile != "" {
			c.Clusters.File = clustersFile
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "console logging at debug level")
	rootCmd.PersistentFlags().StringVar(&clustersFile, "clusters", "", "cluster definitions YAML file (overrides clusters.file)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
