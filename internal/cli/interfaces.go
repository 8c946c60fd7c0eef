package cli

import (
	"time"

	"github.com/lumenwallet/lumen/internal/config"
	"github.com/lumenwallet/lumen/internal/output"
)

// Commands reach configuration, logging, and output formatting through small
// interfaces so tests can substitute fakes without touching disk.
var (
	_ ConfigProvider = (*config.Config)(nil)
	_ LogWriter      = (*config.Logger)(nil)
	_ FormatProvider = (*output.Formatter)(nil)
)

// ConfigProvider is the read-only view of configuration the commands use.
type ConfigProvider interface {
	// GetHome returns the lumen home directory.
	GetHome() string

	// Node connection.
	GetNodeRESTURL() string
	GetMacaroonPath() string

	// Backup and activity settings.
	GetBackupDirectory() string
	GetActivityPageSize() int
	GetCacheStaleness() time.Duration

	// Logging and output.
	GetLoggingLevel() string
	GetLoggingFile() string
	GetOutputFormat() string
	IsVerbose() bool

	// GetSecurity returns the unlock session settings.
	GetSecurity() config.SecurityConfig
}

// LogWriter is the logging surface commands write to.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
	Close() error
}

// FormatProvider exposes the negotiated output format.
type FormatProvider interface {
	Format() output.Format
}
