// Package config provides configuration management for Lumen.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
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
	RESTURL        string `yaml:"rest_url"`
	MacaroonPath   string `yaml:"macaroon_path"`
	MacaroonHex    string `yaml:"macaroon_hex,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	TLSSkipVerify  bool   `yaml:"tls_skip_verify"`
}

// ActivityConfig defines activity feed settings.
type ActivityConfig struct {
	PageSize              int `yaml:"page_size"`
	CacheStalenessMinutes int `yaml:"cache_staleness_minutes"`
}

// BackupConfig defines backup settings.
type BackupConfig struct {
	DefaultProvider string        `yaml:"default_provider"`
	Directory       string        `yaml:"directory"`
	GDrive          GDriveConfig  `yaml:"gdrive"`
	Dropbox         DropboxConfig `yaml:"dropbox"`
}

// GDriveConfig defines Google Drive provider settings.
type GDriveConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenFile    string `yaml:"token_file"`
}

// DropboxConfig defines Dropbox provider settings.
type DropboxConfig struct {
	AccessToken string `yaml:"access_token"`
	Folder      string `yaml:"folder"`
}

// SecurityConfig defines security settings.
type SecurityConfig struct {
	MemoryLock        bool `yaml:"memory_lock"`
	SessionEnabled    bool `yaml:"session_enabled"`
	SessionTTLMinutes int  `yaml:"session_ttl_minutes"`
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

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// ExpandPath expands a leading "~/" to the user home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetHome returns the lumen home directory path, expanded.
func (c *Config) GetHome() string {
	return ExpandPath(c.Home)
}

// GetNodeRESTURL returns the lnd REST endpoint URL.
func (c *Config) GetNodeRESTURL() string {
	return c.Node.RESTURL
}

// GetMacaroonPath returns the macaroon file path, expanded.
func (c *Config) GetMacaroonPath() string {
	return ExpandPath(c.Node.MacaroonPath)
}

// GetBackupDirectory returns the local backup directory, expanded.
func (c *Config) GetBackupDirectory() string {
	return ExpandPath(c.Backup.Directory)
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// GetSecurity returns the security configuration.
func (c *Config) GetSecurity() SecurityConfig {
	return c.Security
}

// GetActivityPageSize returns the activity page size.
func (c *Config) GetActivityPageSize() int {
	return c.Activity.PageSize
}

// GetCacheStaleness returns how long cached activity stays fresh.
func (c *Config) GetCacheStaleness() time.Duration {
	return time.Duration(c.Activity.CacheStalenessMinutes) * time.Minute
}

// DefaultHome returns the default lumen home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lumen"
	}
	return filepath.Join(home, ".lumen")
}
