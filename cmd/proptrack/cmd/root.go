package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/proptrack/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "proptrack",
	Short: "Track prop-firm challenge accounts against their rules",
	Long: `Proptrack keeps a ledger of closed trades per account and recomputes
each account's status after every change: equity, high-water mark, days
traded, room left before the daily and overall drawdown limits, and whether
the challenge has been passed.

It provides tools for:
  - Creating challenge and personal accounts
  - Recording, importing and exporting trades
  - Reporting status and rule-based advice
  - Exporting Org-mode reports
  - Serving Prometheus metrics

Storage is a bbolt file by default or SQLite with --storage sqlite.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile     string
	storageType string
	storagePath string
	logLevel    string
	logPretty   bool

	cfg *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "proptrack.yaml", "config file (YAML or JSON); defaults apply when missing")
	rootCmd.PersistentFlags().StringVar(&storageType, "storage", "", "storage backend: bolt or sqlite")
	rootCmd.PersistentFlags().StringVar(&storagePath, "db", "", "storage file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "pretty", false, "human-readable console logs")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if storageType != "" {
		c.Storage.Type = storageType
	}
	if storagePath != "" {
		c.Storage.Path = storagePath
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logPretty {
		c.Log.Pretty = true
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = c

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}
