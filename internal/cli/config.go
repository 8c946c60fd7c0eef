package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumenwallet/lumen/internal/config"
	"github.com/lumenwallet/lumen/internal/output"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify Lumen configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.lumen/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  lumen config init
  lumen config init --force`,
	RunE: runConfigInit,
}

// configListCmd lists every configuration key with its value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Long: `List every configuration key with its current value.

Secrets such as access tokens are masked. Use "config get" for raw values.`,
	Example: `  lumen config list
  lumen config list -o json`,
	RunE: runConfigList,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its key.

Keys use dot notation to navigate the configuration tree. Run "config list"
to see every key.`,
	Example: `  lumen config get node.rest_url
  lumen config get backup.default_provider
  lumen config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its key.

Keys use dot notation to navigate the configuration tree.
The configuration file is updated immediately.`,
	Example: `  lumen config set node.rest_url https://mynode:8080
  lumen config set backup.default_provider gdrive
  lumen config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	configCmd.GroupID = groupConfig
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.GetHome())

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return lumenerr.WithSuggestion(
			lumenerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	// Ensure directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Create default config
	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home

	// Write config file
	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - node.rest_url: Your lnd REST endpoint")
	outln(w, "  - node.macaroon_path: Path to a readonly macaroon")
	outln(w, "  - backup.default_provider: Backup destination (local/gdrive/dropbox)")
	outln(w, "  - output.default_format: Output format (text/json)")

	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	format := formatter.Format()

	keys := config.Keys()

	if format == output.FormatJSON {
		type configEntry struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		entries := make([]configEntry, 0, len(keys))
		for _, key := range keys {
			value, err := config.Get(cfg, key)
			if err != nil {
				return err
			}
			entries = append(entries, configEntry{Key: key, Value: maskConfigValue(key, value)})
		}
		return writeJSON(w, entries)
	}

	for _, key := range keys {
		value, err := config.Get(cfg, key)
		if err != nil {
			return err
		}
		out(w, "%s = %s\n", key, maskConfigValue(key, value))
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, err := config.Get(cfg, args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	outln(w, value)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Load current config from file
	configPath := config.Path(cfg.GetHome())
	currentCfg, err := config.Load(configPath)
	if err != nil {
		// If file doesn't exist, start with defaults
		currentCfg = config.Defaults()
		currentCfg.Home = cfg.Home
	}

	// Update the value; the registry validates key and value
	if err := config.Set(currentCfg, key, value); err != nil {
		return err
	}

	// Save updated config
	if err := config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	// Echo the stored value, which may have been normalized
	stored, err := config.Get(currentCfg, key)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	out(w, "Set %s = %s\n", key, maskConfigValue(key, stored))

	return nil
}

// sensitiveConfigKeys lists keys whose values are masked in list output.
//
//nolint:gochecknoglobals // read-only lookup table
var sensitiveConfigKeys = map[string]bool{
	"node.macaroon_hex":           true,
	"backup.gdrive.client_secret": true,
	"backup.dropbox.access_token": true,
}

// maskConfigValue hides all but a short prefix of sensitive values.
func maskConfigValue(key, value string) string {
	if !sensitiveConfigKeys[key] || value == "" {
		return value
	}
	if len(value) >= 4 {
		return value[:4] + "..."
	}
	return "***..."
}
