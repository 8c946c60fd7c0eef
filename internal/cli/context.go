package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lumenwallet/lumen/internal/backup"
	"github.com/lumenwallet/lumen/internal/cache"
	"github.com/lumenwallet/lumen/internal/config"
	"github.com/lumenwallet/lumen/internal/lnd"
	"github.com/lumenwallet/lumen/internal/output"
	"github.com/lumenwallet/lumen/internal/session"
)

// CommandContext holds dependencies for CLI commands. It travels on the
// cobra command's context so commands and tests share one injection point.
type CommandContext struct {
	Cfg        *config.Config
	Log        *config.Logger
	Fmt        *output.Formatter
	Factory    lnd.Factory
	SessionMgr session.Manager

	// ActivityCache, when set, replaces the on-disk activity cache.
	ActivityCache *cache.ActivityCache

	// Provider, when set, replaces the provider named in configuration.
	Provider backup.Provider
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) *CommandContext {
	return &CommandContext{
		Cfg:     cfg,
		Log:     logger,
		Fmt:     formatter,
		Factory: lnd.NewDefaultFactory(),
	}
}

// WithSourceFactory sets the node source factory.
func (c *CommandContext) WithSourceFactory(f lnd.Factory) *CommandContext {
	c.Factory = f
	return c
}

// WithSessionManager sets the session manager.
func (c *CommandContext) WithSessionManager(m session.Manager) *CommandContext {
	c.SessionMgr = m
	return c
}

// WithCache sets the activity cache.
func (c *CommandContext) WithCache(activityCache *cache.ActivityCache) *CommandContext {
	c.ActivityCache = activityCache
	return c
}

// WithProvider sets the backup provider.
func (c *CommandContext) WithProvider(p backup.Provider) *CommandContext {
	c.Provider = p
	return c
}

// cmdContextKey is the private context key for the CommandContext.
type cmdContextKey struct{}

// SetCmdContext attaches the CommandContext to the command's context.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, cc))
}

// GetCmdContext retrieves the CommandContext from the command. Returns nil
// if the command has no context or no CommandContext was attached.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	cc, _ := ctx.Value(cmdContextKey{}).(*CommandContext)
	return cc
}
