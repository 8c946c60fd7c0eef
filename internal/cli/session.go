package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenwallet/lumen/internal/cache"
	"github.com/lumenwallet/lumen/internal/output"
	"github.com/lumenwallet/lumen/internal/wallet"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// unlockPassphrase indicates whether to prompt for a BIP39 passphrase.
	unlockPassphrase bool
)

// unlockCmd starts an unlock session for a wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var unlockCmd = &cobra.Command{
	Use:   "unlock <wallet>",
	Short: "Unlock a wallet session",
	Long: `Unlock a session for a wallet so backup commands don't re-prompt for the
recovery phrase.

The phrase is verified, converted to the backup key, and the seed is cached
in your operating system's secure keychain for a configurable time
(default: 15 minutes):
- macOS: Keychain
- Linux: Secret Service (GNOME Keyring, KWallet)
- Windows: Credential Manager

If the system keychain is unavailable, sessions are disabled and each
backup command prompts for the phrase instead.`,
	Example: `  lumen unlock main
  lumen unlock main --passphrase`,
	Args: cobra.ExactArgs(1),
	RunE: runUnlock,
}

// lockCmd ends all sessions and clears cached activity.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "End all sessions and clear cached activity",
	Long: `End all unlock sessions immediately and delete the local activity cache.

Use this when stepping away from your computer so neither seeds nor wallet
activity stay cached.`,
	Example: `  lumen lock`,
	RunE:    runLock,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	unlockCmd.GroupID = groupSecurity
	lockCmd.GroupID = groupSecurity
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(lockCmd)

	unlockCmd.Flags().BoolVar(&unlockPassphrase, "passphrase", false, "prompt for a BIP39 passphrase")
}

func runUnlock(cmd *cobra.Command, args []string) error {
	walletName := args[0]
	if err := wallet.ValidateWalletName(walletName); err != nil {
		return err
	}

	ctx := GetCmdContext(cmd)
	mgr := ctx.SessionMgr

	if mgr == nil {
		return lumenerr.WithSuggestion(
			lumenerr.ErrKeyringUnavailable,
			"sessions are disabled. Enable with: lumen config set security.session_enabled true",
		)
	}
	if !mgr.Available() {
		return lumenerr.WithSuggestion(
			lumenerr.ErrKeyringUnavailable,
			"no OS keyring found. Backup commands will prompt for the phrase each time.",
		)
	}

	if mgr.HasValidSession(walletName) {
		output.Noticef("wallet '%s' is already unlocked; replacing the session", walletName)
	}

	// Read and validate the phrase
	phrase, err := promptPhraseFn("Enter recovery phrase: ")
	if err != nil {
		return err
	}

	if err := wallet.ValidateMnemonic(phrase); err != nil {
		suggestion := "the phrase is not a valid BIP39 mnemonic. Check for typos or missing words."
		if typos := wallet.DetectTypos(phrase); len(typos) > 0 {
			suggestion = wallet.FormatTypoSuggestions(typos)
		}
		return lumenerr.WithSuggestion(err, suggestion)
	}

	var passphrase string
	if unlockPassphrase {
		passphrase, err = promptPassphraseFn()
		if err != nil {
			return err
		}
	}

	seed, err := wallet.MnemonicToSeed(phrase, passphrase)
	if err != nil {
		return err
	}
	defer wallet.ZeroBytes(seed)

	// Derive the backup key fingerprint so the user can compare it against
	// the one recorded in their backups.
	key, err := wallet.DeriveBackupKey(seed)
	if err != nil {
		return err
	}
	fingerprint := key.Fingerprint
	key.Zero()

	ttl := time.Duration(ctx.Cfg.GetSecurity().SessionTTLMinutes) * time.Minute
	if err := mgr.StartSession(walletName, seed, ttl); err != nil {
		return lumenerr.Wrap(err, "starting session for wallet %s", walletName)
	}

	w := cmd.OutOrStdout()
	if ctx.Fmt.Format() == output.FormatJSON {
		payload := struct {
			Wallet      string `json:"wallet"`
			ExpiresIn   string `json:"expires_in"`
			Fingerprint string `json:"fingerprint"`
		}{
			Wallet:      walletName,
			ExpiresIn:   formatDuration(ttl),
			Fingerprint: fingerprint,
		}
		return writeJSON(w, payload)
	}

	out(w, "Unlocked wallet '%s' for %s.\n", walletName, formatDuration(ttl))
	out(w, "Backup key fingerprint: %s\n", fingerprint)

	return nil
}

func runLock(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)
	mgr := ctx.SessionMgr
	fmtr := ctx.Fmt
	w := cmd.OutOrStdout()

	ended := 0
	var walletNames []string
	if mgr != nil && mgr.Available() {
		if sessions, err := mgr.ListSessions(); err == nil {
			for _, s := range sessions {
				walletNames = append(walletNames, s.WalletName)
			}
		}
		ended = mgr.EndAllSessions()
	}

	// Locking also clears the cached activity snapshot
	cacheCleared := clearActivityCache(ctx)

	if fmtr.Format() == output.FormatJSON {
		payload := struct {
			Ended        int      `json:"ended"`
			Wallets      []string `json:"wallets,omitempty"`
			CacheCleared bool     `json:"cache_cleared"`
		}{
			Ended:        ended,
			Wallets:      walletNames,
			CacheCleared: cacheCleared,
		}
		return writeJSON(w, payload)
	}

	if ended == 0 {
		outln(w, "No active sessions")
	} else {
		out(w, "Ended %d session(s)", ended)
		if len(walletNames) > 0 {
			out(w, ": %v", walletNames)
		}
		outln(w)
	}
	if cacheCleared {
		outln(w, "Cleared cached activity")
	}

	return nil
}

// clearActivityCache deletes the on-disk activity cache. Returns true if a
// cache file was removed.
func clearActivityCache(ctx *CommandContext) bool {
	if ctx.ActivityCache != nil {
		ctx.ActivityCache.Clear()
		return true
	}

	storage := cache.NewFileStorage(activityCachePath(ctx.Cfg))
	if !storage.Exists() {
		return false
	}
	if err := storage.Delete(); err != nil {
		if ctx.Log != nil {
			ctx.Log.Error("failed to delete activity cache: %v", err)
		}
		return false
	}
	return true
}

// activityCachePath returns the on-disk location of the activity cache.
func activityCachePath(c ConfigProvider) string {
	return filepath.Join(c.GetHome(), "cache", "activity.json")
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}
