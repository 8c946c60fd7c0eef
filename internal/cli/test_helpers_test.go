package cli

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/lumenwallet/lumen/internal/config"
	"github.com/lumenwallet/lumen/internal/lumencrypto"
	"github.com/lumenwallet/lumen/internal/output"
	"github.com/lumenwallet/lumen/internal/session"
)

func TestMain(m *testing.M) {
	lumencrypto.SetScryptWorkFactor(10) // Fast for tests
	os.Exit(m.Run())
}

// testPhrase is a fixed valid BIP39 mnemonic for tests that need one.
const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// setupTestEnv creates a temporary environment for CLI testing.
// It saves and restores global state to avoid test pollution.
// Tests using this function should NOT use t.Parallel() as they
// modify package-level globals.
func setupTestEnv(t *testing.T) (string, func()) {
	t.Helper()

	// Save original global state
	origCfg := cfg
	origLogger := logger
	origFormatter := formatter

	tmpDir, err := os.MkdirTemp("", "lumen-cli-test")
	require.NoError(t, err)

	// Set up test-specific global config
	testCfg := config.Defaults()
	testCfg.Home = tmpDir
	cfg = testCfg

	// Set up null logger for tests
	logger = config.NullLogger()

	// Set up text formatter for tests
	formatter = output.NewFormatter(output.FormatText, os.Stdout)

	cleanup := func() {
		// Restore original global state
		cfg = origCfg
		logger = origLogger
		formatter = origFormatter

		_ = os.RemoveAll(tmpDir)
	}

	return tmpDir, cleanup
}

// newTestCmd creates a cobra command carrying the given CommandContext, with
// stdout and stderr captured in the returned buffer.
func newTestCmd(cc *CommandContext) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	SetCmdContext(cmd, cc)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

// newTestCommandContext builds a CommandContext over a temp home with a text
// formatter, matching what initGlobals would produce.
func newTestCommandContext(tmpDir string, format output.Format) *CommandContext {
	testCfg := config.Defaults()
	testCfg.Home = tmpDir
	return &CommandContext{
		Cfg: testCfg,
		Log: config.NullLogger(),
		Fmt: output.NewFormatter(format, os.Stdout),
	}
}

// withMockPrompts replaces the prompt functions for testing and restores
// them on cleanup.
func withMockPrompts(t *testing.T, phrase, passphrase string) {
	t.Helper()
	origPhrase := promptPhraseFn
	origPassphrase := promptPassphraseFn
	t.Cleanup(func() {
		promptPhraseFn = origPhrase
		promptPassphraseFn = origPassphrase
	})
	promptPhraseFn = func(_ string) (string, error) {
		return phrase, nil
	}
	promptPassphraseFn = func() (string, error) {
		return passphrase, nil
	}
}

// mockSessionManager implements session.Manager for testing.
type mockSessionManager struct {
	available bool
	sessions  map[string][]byte
	ended     int
}

func newMockSessionManager(available bool) *mockSessionManager {
	return &mockSessionManager{available: available, sessions: make(map[string][]byte)}
}

func (m *mockSessionManager) Available() bool { return m.available }

func (m *mockSessionManager) StartSession(wallet string, seed []byte, _ time.Duration) error {
	stored := make([]byte, len(seed))
	copy(stored, seed)
	m.sessions[wallet] = stored
	return nil
}

func (m *mockSessionManager) GetSession(wallet string) ([]byte, *session.Session, error) {
	seed, ok := m.sessions[wallet]
	if !ok {
		return nil, nil, session.ErrSessionNotFound
	}
	out := make([]byte, len(seed))
	copy(out, seed)
	return out, &session.Session{
		WalletName: wallet,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(15 * time.Minute),
	}, nil
}

func (m *mockSessionManager) HasValidSession(wallet string) bool {
	_, ok := m.sessions[wallet]
	return ok
}

func (m *mockSessionManager) EndSession(wallet string) error {
	delete(m.sessions, wallet)
	return nil
}

func (m *mockSessionManager) EndAllSessions() int {
	n := len(m.sessions)
	m.sessions = make(map[string][]byte)
	m.ended += n
	return n
}

func (m *mockSessionManager) ListSessions() ([]*session.Session, error) {
	var out []*session.Session
	for name := range m.sessions {
		out = append(out, &session.Session{
			WalletName: name,
			ExpiresAt:  time.Now().Add(15 * time.Minute),
		})
	}
	return out, nil
}
