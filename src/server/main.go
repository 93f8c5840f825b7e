package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/portfolio-api/server/src/server/config"
	"github.com/portfolio-api/server/src/server/logging"
)

var (
	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:          "portfolio-api",
	Short:        "Portfolio API server",
	Long:         `Serves portfolio projects, education, experiences and social links from a SQL or in-memory store behind a read-through cache.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		logCloser = logging.Init(cfg.LogLevel, cfg.LogFile)
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.RunE = serveCmd.RunE
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, assetsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
