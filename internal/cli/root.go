// Package cli implements the Lumen command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumenwallet/lumen/internal/config"
	"github.com/lumenwallet/lumen/internal/output"
	"github.com/lumenwallet/lumen/internal/session"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
)

// Command group IDs.
const (
	groupActivity = "activity"
	groupBackup   = "backup"
	groupWallet   = "wallet"
	groupSecurity = "security"
	groupConfig   = "config"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "A Lightning wallet activity and backup CLI",
	Long: `Lumen is a terminal companion for your Lightning node. It unifies
on-chain transactions, Lightning invoices, and Lightning payments into one
activity feed, and keeps encrypted activity backups you can restore on any
machine with nothing but your recovery phrase.`,
	Example: `  lumen activity list --filter received,pending
  lumen backup create main --provider gdrive
  lumen wallet phrase new --words 24`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		// Format and print error
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return lumenerr.ExitCode(err)
}

// initGlobals initializes configuration, logger, and formatter, and attaches
// a CommandContext to the invoked command.
func initGlobals(cmd *cobra.Command) error {
	// Determine home directory
	home := os.Getenv(config.EnvHome)
	if home == "" {
		home = config.DefaultHome()
	}

	// Load config from the explicit --config path or the default location
	configPath := cfgFile
	if configPath == "" {
		configPath = config.Path(home)
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		if cfgFile != "" {
			// An explicitly named config file must load
			return lumenerr.Wrap(err, "loading config file %s", cfgFile)
		}
		// Use defaults if config doesn't exist
		cfg = config.Defaults()
		cfg.Home = home
	}

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	// Initialize logger
	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, config.ExpandPath(cfg.GetLoggingFile()))
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)

	// Attach dependencies to the invoked command
	cc := NewCommandContext(cfg, logger, formatter)
	if cfg.GetSecurity().SessionEnabled {
		cc.WithSessionManager(session.NewManager(filepath.Join(cfg.GetHome(), "sessions"), nil))
	}
	SetCmdContext(cmd, cc)

	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.lumen/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupActivity, Title: "Activity Commands:"},
		&cobra.Group{ID: groupBackup, Title: "Backup Commands:"},
		&cobra.Group{ID: groupWallet, Title: "Wallet Commands:"},
		&cobra.Group{ID: groupSecurity, Title: "Security Commands:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration Commands:"},
	)
}
