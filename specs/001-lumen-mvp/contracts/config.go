// Package contracts defines the interface contracts for Lumen MVP.
// These are design artifacts - not compiled code.
// Actual implementations go in internal/config/

package contracts

import (
	"context"
)

// ConfigService defines the interface for configuration management.
type ConfigService interface {
	// Load reads configuration from file, applying defaults for absent keys.
	Load(ctx context.Context) (*Config, error)

	// Save writes configuration to file.
	Save(ctx context.Context, config *Config) error

	// Get retrieves a configuration value by path (e.g., "node.rest_url").
	Get(path string) (interface{}, error)

	// Set updates a configuration value by path.
	Set(path string, value interface{}) error

	// Init creates a default configuration file.
	Init(ctx context.Context) error
}

// Config represents the complete application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Node     NodeConfig     `yaml:"node"`
	Activity ActivityConfig `yaml:"activity"`
	Backup   BackupConfig   `yaml:"backup"`
	Security SecurityConfig `yaml:"security"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NodeConfig defines the lnd node connection settings.
type NodeConfig struct {
	// RESTURL is the node's REST endpoint.
	RESTURL string `yaml:"rest_url"`

	// MacaroonPath is the readonly macaroon file location.
	MacaroonPath string `yaml:"macaroon_path"`

	// MacaroonHex overrides MacaroonPath with an inline hex macaroon.
	MacaroonHex string `yaml:"macaroon_hex,omitempty"`

	// TimeoutSeconds bounds each node request.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// TLSSkipVerify disables certificate verification for self-signed
	// node certificates.
	TLSSkipVerify bool `yaml:"tls_skip_verify"`
}

// ActivityConfig defines activity feed settings.
type ActivityConfig struct {
	// PageSize is the invoice page size for feed pagination.
	PageSize int `yaml:"page_size"`

	// CacheStalenessMinutes is how long cached activity stays fresh.
	CacheStalenessMinutes int `yaml:"cache_staleness_minutes"`
}

// BackupConfig defines backup settings.
type BackupConfig struct {
	// DefaultProvider is used when --provider is not given.
	DefaultProvider string `yaml:"default_provider"`

	// Directory is the local provider's archive directory.
	Directory string `yaml:"directory"`

	// GDrive configures the Google Drive provider.
	GDrive GDriveProviderConfig `yaml:"gdrive"`

	// Dropbox configures the Dropbox provider.
	Dropbox DropboxProviderConfig `yaml:"dropbox"`
}

// GDriveProviderConfig defines Google Drive provider settings.
type GDriveProviderConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenFile    string `yaml:"token_file"`
}

// DropboxProviderConfig defines Dropbox provider settings.
type DropboxProviderConfig struct {
	AccessToken string `yaml:"access_token"`
	Folder      string `yaml:"folder"`
}

// SecurityConfig defines security settings.
type SecurityConfig struct {
	// MemoryLock requests mlock for seed material.
	MemoryLock bool `yaml:"memory_lock"`

	// SessionEnabled allows unlock sessions via the OS keyring.
	SessionEnabled bool `yaml:"session_enabled"`

	// SessionTTLMinutes is the unlock session lifetime.
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConfigDefaults returns the default configuration.
func ConfigDefaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.lumen",
		Node: NodeConfig{
			RESTURL:        "https://localhost:8080",
			MacaroonPath:   "~/.lumen/readonly.macaroon",
			TimeoutSeconds: 30,
			TLSSkipVerify:  false,
		},
		Activity: ActivityConfig{
			PageSize:              50,
			CacheStalenessMinutes: 5,
		},
		Backup: BackupConfig{
			DefaultProvider: "local",
			Directory:       "~/.lumen/backups",
			GDrive: GDriveProviderConfig{
				TokenFile: "~/.lumen/gdrive-token.json",
			},
		},
		Security: SecurityConfig{
			MemoryLock:        true,
			SessionEnabled:    true,
			SessionTTLMinutes: 15,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.lumen/logs/lumen.log",
		},
	}
}

// Config-related errors.
var (
	ErrConfigNotFound = Error{Code: "CONFIG_NOT_FOUND", Message: "configuration file not found"}
	ErrConfigInvalid  = Error{Code: "CONFIG_INVALID", Message: "configuration file is invalid"}
)
