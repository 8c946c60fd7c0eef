package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: lumenerr.ExitSuccess},
		{name: "plain error", err: errors.New("boom"), expected: lumenerr.ExitGeneral},
		{name: "invalid input", err: lumenerr.ErrInvalidInput, expected: lumenerr.ExitInput},
		{name: "authentication", err: lumenerr.ErrAuthentication, expected: lumenerr.ExitAuth},
		{name: "not found", err: lumenerr.ErrNotFound, expected: lumenerr.ExitNotFound},
		{name: "permission", err: lumenerr.ErrPermission, expected: lumenerr.ExitPermission},
		{
			name:     "wrapped sentinel",
			err:      lumenerr.Wrap(lumenerr.ErrBackupNotFound, "opening backup"),
			expected: lumenerr.ExitNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ExitCode(tc.err))
		})
	}
}

func TestRootCommand_Registration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lumen", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)

	expected := []string{"activity", "backup", "wallet", "unlock", "lock", "config", "version"}
	registered := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		registered[sub.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "command %q not registered", name)
	}
}

func TestRootCommand_Groups(t *testing.T) {
	t.Parallel()

	groupOf := map[string]string{
		"activity": groupActivity,
		"backup":   groupBackup,
		"wallet":   groupWallet,
		"unlock":   groupSecurity,
		"lock":     groupSecurity,
		"config":   groupConfig,
	}

	for _, sub := range rootCmd.Commands() {
		want, ok := groupOf[sub.Name()]
		if !ok {
			continue
		}
		assert.Equal(t, want, sub.GroupID, "command %q in wrong group", sub.Name())
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	t.Parallel()

	flags := rootCmd.PersistentFlags()
	assert.NotNil(t, flags.Lookup("config"))
	assert.NotNil(t, flags.Lookup("output"))
	assert.NotNil(t, flags.Lookup("verbose"))

	outputFlag := flags.Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
	assert.Equal(t, "auto", outputFlag.DefValue)
}

func TestRootCommand_Help(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--help"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs([]string{})
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	got := buf.String()
	assert.Contains(t, got, "Lumen is a terminal companion")
	assert.Contains(t, got, "Activity Commands:")
	assert.Contains(t, got, "Backup Commands:")
	assert.Contains(t, got, "Security Commands:")
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"no-such-command"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs([]string{})
	}()

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestGlobalAccessors(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()

	assert.Same(t, cfg, Config())
	assert.Same(t, logger, Logger())
	assert.Same(t, formatter, Formatter())
}
