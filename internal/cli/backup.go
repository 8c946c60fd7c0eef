package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenwallet/lumen/internal/activity"
	"github.com/lumenwallet/lumen/internal/backup"
	"github.com/lumenwallet/lumen/internal/cache"
	"github.com/lumenwallet/lumen/internal/config"
	"github.com/lumenwallet/lumen/internal/fileutil"
	"github.com/lumenwallet/lumen/internal/output"
	"github.com/lumenwallet/lumen/internal/wallet"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// backupProviderName overrides the configured default provider.
	backupProviderName string
	// backupPassphrase prompts for a BIP39 passphrase alongside the phrase.
	backupPassphrase bool
	// backupRefresh fetches fresh activity from the node before archiving.
	backupRefresh bool
	// backupVerifyKey additionally tests decryption during verify.
	backupVerifyKey bool
	// backupRestoreOut writes the restored snapshot to a file instead of
	// the activity cache.
	backupRestoreOut string
)

// backupCmd is the parent command for backup operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupCmd = &cobra.Command{
	Use:     "backup",
	GroupID: groupBackup,
	Short:   "Manage encrypted activity backups",
	Long: `Create, verify, and restore encrypted backups of your wallet activity.

Archives are encrypted with a key derived from your recovery phrase and
stored with one of three providers: a local directory, Google Drive, or
Dropbox. The same phrase restores them on any machine.`,
}

// backupCreateCmd creates an archive.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupCreateCmd = &cobra.Command{
	Use:   "create <wallet>",
	Short: "Create an encrypted activity backup",
	Long: `Create an encrypted backup of the wallet's activity snapshot.

The snapshot comes from the local activity cache when one is present, or is
fetched from the node. To archive the complete history, page it in first
with 'lumen activity list --all'.

The archive is encrypted with a key derived from your recovery phrase. With
an active unlock session the cached seed is used; otherwise you are prompted
for the phrase.`,
	Example: `  lumen backup create main
  lumen backup create main --provider gdrive
  lumen backup create main --refresh --passphrase`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupCreate,
}

// backupVerifyCmd verifies an archive.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupVerifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Verify a backup archive",
	Long: `Verify the structure and SHA256 checksum of a backup archive.

With --key, the archive's encryption is additionally tested against the key
derived from your recovery phrase.`,
	Example: `  lumen backup verify main-2026-01-15-120000.lumen
  lumen backup verify main-2026-01-15-120000.lumen --key`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupVerify,
}

// backupRestoreCmd restores an archive.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore activity from a backup archive",
	Long: `Decrypt a backup archive and restore its activity snapshot.

The snapshot is written into the local activity cache for the configured
node, so 'lumen activity list' renders it immediately. Use --out to write
the decrypted snapshot to a JSON file instead.

You need the recovery phrase the archive was created with.`,
	Example: `  lumen backup restore main-2026-01-15-120000.lumen
  lumen backup restore main-2026-01-15-120000.lumen --out snapshot.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupRestore,
}

// backupListCmd lists archives.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup archives",
	Long:  `List the backup archives the provider holds.`,
	Example: `  lumen backup list
  lumen backup list --provider dropbox`,
	Aliases: []string{"ls"},
	RunE:    runBackupList,
}

// backupProvidersCmd lists the available providers.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List available backup providers",
	Long: `List the backup providers lumen supports and which one is configured as
the default.`,
	Example: `  lumen backup providers`,
	RunE:    runBackupProviders,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupVerifyCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupProvidersCmd)

	backupCmd.PersistentFlags().StringVarP(&backupProviderName, "provider", "p", "",
		"backup provider: local, gdrive, dropbox (default from config)")

	backupCreateCmd.Flags().BoolVar(&backupPassphrase, "passphrase", false, "prompt for a BIP39 passphrase")
	backupCreateCmd.Flags().BoolVar(&backupRefresh, "refresh", false, "fetch fresh activity from the node first")

	backupVerifyCmd.Flags().BoolVar(&backupVerifyKey, "key", false, "also test decryption with the recovery phrase")

	backupRestoreCmd.Flags().BoolVar(&backupPassphrase, "passphrase", false, "prompt for a BIP39 passphrase")
	backupRestoreCmd.Flags().StringVar(&backupRestoreOut, "out", "", "write the decrypted snapshot to this JSON file")
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	walletName := args[0]
	if err := wallet.ValidateWalletName(walletName); err != nil {
		return err
	}

	items, cached, err := snapshotItems(cmd, cc)
	if err != nil {
		return err
	}

	key, err := resolveBackupKey(cc, walletName)
	if err != nil {
		return err
	}
	defer key.Zero()

	provider, err := resolveProvider(cmd, cc)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, 2*time.Minute)
	defer cancel()

	svc := backup.NewService(provider)
	archive, location, err := svc.Create(ctx, walletName, items, key)
	if err != nil {
		return lumenerr.Wrap(err, "creating backup")
	}

	w := cmd.OutOrStdout()
	if cc.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, backupCreateResponse{
			Wallet:      archive.Manifest.WalletName,
			Provider:    provider.Name(),
			Location:    location,
			Items:       archive.Manifest.ItemCount,
			Fingerprint: archive.Manifest.KeyFingerprint,
			Checksum:    archive.Checksum,
			Cached:      cached,
		})
	}

	outln(w, "Backup created.")
	outln(w)
	out(w, "  Provider:    %s\n", provider.Name())
	out(w, "  Location:    %s\n", location)
	out(w, "  Wallet:      %s\n", archive.Manifest.WalletName)
	out(w, "  Items:       %d\n", archive.Manifest.ItemCount)
	out(w, "  Fingerprint: %s\n", archive.Manifest.KeyFingerprint)
	out(w, "  Checksum:    %s...\n", archive.Checksum[:16])
	outln(w)
	outln(w, "Only your recovery phrase opens this archive. Keep the phrase offline.")
	if cached {
		output.Notice("Archived the cached snapshot. Use --refresh to archive fresh history.")
	}

	return nil
}

func runBackupVerify(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	provider, err := resolveProvider(cmd, cc)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, 2*time.Minute)
	defer cancel()

	svc := backup.NewService(provider)

	manifest, err := svc.Verify(ctx, args[0])
	if err != nil {
		return lumenerr.Wrap(err, "verifying backup")
	}

	decryptionTested := false
	if backupVerifyKey {
		key, keyErr := resolveBackupKey(cc, manifest.WalletName)
		if keyErr != nil {
			return keyErr
		}
		defer key.Zero()

		if _, err := svc.VerifyWithKey(ctx, args[0], key); err != nil {
			return err
		}
		decryptionTested = true
	}

	w := cmd.OutOrStdout()
	if cc.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, backupVerifyResponse{
			File:             args[0],
			Provider:         provider.Name(),
			Wallet:           manifest.WalletName,
			CreatedAt:        manifest.CreatedAt,
			Items:            manifest.ItemCount,
			Fingerprint:      manifest.KeyFingerprint,
			ChecksumOK:       true,
			DecryptionTested: decryptionTested,
		})
	}

	outln(w, "Backup verified: structure and checksum OK.")
	outln(w)
	out(w, "  Wallet:      %s\n", manifest.WalletName)
	out(w, "  Created:     %s\n", manifest.CreatedAt.Format("2006-01-02 15:04:05"))
	out(w, "  Provider:    %s\n", manifest.Provider)
	out(w, "  Items:       %d\n", manifest.ItemCount)
	out(w, "  Fingerprint: %s\n", manifest.KeyFingerprint)
	if decryptionTested {
		outln(w)
		outln(w, "Decryption OK: the recovery phrase opens this archive.")
	} else {
		outln(w)
		outln(w, "Run again with --key to test decryption with your recovery phrase.")
	}

	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	provider, err := resolveProvider(cmd, cc)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, 2*time.Minute)
	defer cancel()

	svc := backup.NewService(provider)

	// Read the manifest first so the session lookup uses the archived
	// wallet name rather than prompting unconditionally.
	manifest, err := svc.Verify(ctx, args[0])
	if err != nil {
		return lumenerr.Wrap(err, "verifying backup")
	}

	key, err := resolveBackupKey(cc, manifest.WalletName)
	if err != nil {
		return err
	}
	defer key.Zero()

	items, manifest, err := svc.Restore(ctx, args[0], key)
	if err != nil {
		return err
	}

	destination, err := restoreSnapshot(cmd, cc, items)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if cc.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, backupRestoreResponse{
			File:        args[0],
			Wallet:      manifest.WalletName,
			CreatedAt:   manifest.CreatedAt,
			Items:       len(items),
			Destination: destination,
		})
	}

	outln(w, "Backup restored.")
	outln(w)
	out(w, "  Wallet:  %s\n", manifest.WalletName)
	out(w, "  Created: %s\n", manifest.CreatedAt.Format("2006-01-02 15:04:05"))
	out(w, "  Items:   %d\n", len(items))
	out(w, "  Written: %s\n", destination)
	if backupRestoreOut == "" {
		outln(w)
		outln(w, "View it with: lumen activity list")
	}

	return nil
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	provider, err := resolveProvider(cmd, cc)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, time.Minute)
	defer cancel()

	archives, err := backup.NewService(provider).List(ctx)
	if err != nil {
		return lumenerr.Wrap(err, "listing backups")
	}

	w := cmd.OutOrStdout()
	if cc.Fmt.Format() == output.FormatJSON {
		if archives == nil {
			archives = []string{}
		}
		return writeJSON(w, backupListResponse{Provider: provider.Name(), Archives: archives})
	}

	if len(archives) == 0 {
		out(w, "No backups on %s.\n", provider.Name())
		outln(w, "Create one with: lumen backup create <wallet>")
		return nil
	}

	out(w, "Backups on %s:\n", provider.Name())
	for _, name := range archives {
		out(w, "  %s\n", name)
	}

	return nil
}

func runBackupProviders(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	configured := cc.Cfg.Backup.DefaultProvider

	w := cmd.OutOrStdout()
	if cc.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, backupProvidersResponse{
			Default:   configured,
			Providers: backup.ProviderNames(),
		})
	}

	outln(w, "Available backup providers:")
	for _, name := range backup.ProviderNames() {
		marker := " "
		if name == configured {
			marker = "*"
		}
		out(w, "  %s %-8s %s\n", marker, name, providerDescription(name))
	}
	outln(w)
	outln(w, "* = configured default. Change it with: lumen config set backup.default_provider <name>")

	return nil
}

func providerDescription(name string) string {
	switch name {
	case backup.ProviderLocal:
		return "local directory (backup.directory)"
	case backup.ProviderGDrive:
		return "Google Drive app folder (backup.gdrive.*)"
	case backup.ProviderDropbox:
		return "Dropbox app folder (backup.dropbox.*)"
	default:
		return ""
	}
}

// resolveProvider builds the backup provider: the injected one when a test
// supplied it, otherwise the one named by --provider or the configured
// default. Provider construction gets the raw command context because the
// Drive provider may run an interactive OAuth grant with its own timeout.
func resolveProvider(cmd *cobra.Command, cc *CommandContext) (backup.Provider, error) {
	if cc.Provider != nil {
		return cc.Provider, nil
	}

	name := backupProviderName
	if name == "" {
		name = cc.Cfg.Backup.DefaultProvider
	}
	if name == "" {
		name = backup.ProviderLocal
	}

	return backup.NewProvider(cmd.Context(), name, backup.Config{
		LocalDir: cc.Cfg.GetBackupDirectory(),
		GDrive: backup.GDriveConfig{
			ClientID:     cc.Cfg.Backup.GDrive.ClientID,
			ClientSecret: cc.Cfg.Backup.GDrive.ClientSecret,
			TokenFile:    config.ExpandPath(cc.Cfg.Backup.GDrive.TokenFile),
			AuthOutput:   cmd.ErrOrStderr(),
		},
		Dropbox: backup.DropboxConfig{
			AccessToken: cc.Cfg.Backup.Dropbox.AccessToken,
			Folder:      cc.Cfg.Backup.Dropbox.Folder,
		},
	})
}

// resolveBackupKey derives the backup key from an active unlock session, or
// prompts for the recovery phrase when there is none.
func resolveBackupKey(cc *CommandContext, walletName string) (*wallet.BackupKey, error) {
	if mgr := cc.SessionMgr; mgr != nil && mgr.Available() && mgr.HasValidSession(walletName) {
		seed, _, err := mgr.GetSession(walletName)
		if err == nil {
			defer wallet.ZeroBytes(seed)
			return wallet.DeriveBackupKey(seed)
		}
		if cc.Log != nil {
			cc.Log.Debug("session lookup for wallet %s failed, prompting: %v", walletName, err)
		}
	}

	phrase, err := promptPhraseFn("Enter recovery phrase: ")
	if err != nil {
		return nil, err
	}
	if err := wallet.ValidateMnemonic(phrase); err != nil {
		suggestion := "the phrase is not a valid BIP39 mnemonic. Check for typos or missing words."
		if typos := wallet.DetectTypos(phrase); len(typos) > 0 {
			suggestion = wallet.FormatTypoSuggestions(typos)
		}
		return nil, lumenerr.WithSuggestion(err, suggestion)
	}

	var passphrase string
	if backupPassphrase {
		passphrase, err = promptPassphraseFn()
		if err != nil {
			return nil, err
		}
	}

	seed, err := wallet.MnemonicToSeed(phrase, passphrase)
	if err != nil {
		return nil, err
	}
	defer wallet.ZeroBytes(seed)

	return wallet.DeriveBackupKey(seed)
}

// snapshotItems returns the activity items to archive: the cached snapshot
// when every kind is present, otherwise a fresh fetch from the node. The
// returned bool reports whether the cache served the snapshot.
func snapshotItems(cmd *cobra.Command, cc *CommandContext) ([]activity.Item, bool, error) {
	activityCache := loadActivityCache(cc, cmd.ErrOrStderr())
	node := cc.Cfg.GetNodeRESTURL()

	if !backupRefresh {
		if items, ok := cachedSnapshot(activityCache, node); ok {
			return items, true, nil
		}
	}

	source, err := nodeSource(cc)
	if err != nil {
		return nil, false, err
	}
	feed := activity.NewFeed(activity.FeedConfig{
		Source:   source,
		PageSize: cc.Cfg.GetActivityPageSize(),
		Logger:   cc.Log,
	})

	ctx, cancel := contextWithTimeout(cmd, 60*time.Second)
	defer cancel()
	if err := feed.Refresh(ctx); err != nil {
		return nil, false, lumenerr.Wrap(err, "fetching activity from node")
	}

	storeActivityPools(activityCache, node, feed.Pools())
	saveActivityCache(cc, activityCache)

	pools := feed.Pools()
	items := pools.Transactions()
	items = append(items, pools.Invoices()...)
	items = append(items, pools.Payments()...)
	return items, false, nil
}

// cachedSnapshot returns every cached item for the node when all three kinds
// are present, regardless of staleness: an old snapshot still backs up.
func cachedSnapshot(ac *cache.ActivityCache, node string) ([]activity.Item, bool) {
	var items []activity.Item
	for _, kind := range []activity.Kind{activity.KindTransaction, activity.KindInvoice, activity.KindPayment} {
		entry, ok, _ := ac.Get(node, kind)
		if !ok {
			return nil, false
		}
		items = append(items, entry.Items...)
	}
	return items, true
}

// restoreSnapshot writes the restored items where they belong: the --out
// file when given, otherwise the activity cache for the configured node.
// Returns a description of the destination.
func restoreSnapshot(cmd *cobra.Command, cc *CommandContext, items []activity.Item) (string, error) {
	if backupRestoreOut != "" {
		path := config.ExpandPath(backupRestoreOut)
		data, err := json.MarshalIndent(backup.Payload{Items: items}, "", "  ")
		if err != nil {
			return "", lumenerr.Wrap(err, "serializing restored snapshot")
		}
		if err := fileutil.WriteAtomic(path, data, 0o600); err != nil {
			return "", lumenerr.Wrap(err, "writing restored snapshot to %s", path)
		}
		return path, nil
	}

	byKind := make(map[activity.Kind][]activity.Item, 3)
	for _, it := range items {
		byKind[it.Kind] = append(byKind[it.Kind], it)
	}

	node := cc.Cfg.GetNodeRESTURL()
	activityCache := loadActivityCache(cc, cmd.ErrOrStderr())
	for _, kind := range []activity.Kind{activity.KindTransaction, activity.KindInvoice, activity.KindPayment} {
		activityCache.Set(cache.ActivityCacheEntry{Node: node, Kind: kind, Items: byKind[kind]})
	}
	saveActivityCache(cc, activityCache)

	return fmt.Sprintf("activity cache for %s", node), nil
}

// backupCreateResponse is the JSON output of backup create.
type backupCreateResponse struct {
	Wallet      string `json:"wallet"`
	Provider    string `json:"provider"`
	Location    string `json:"location"`
	Items       int    `json:"items"`
	Fingerprint string `json:"fingerprint"`
	Checksum    string `json:"checksum"`
	Cached      bool   `json:"cached_snapshot"`
}

// backupVerifyResponse is the JSON output of backup verify.
type backupVerifyResponse struct {
	File             string    `json:"file"`
	Provider         string    `json:"provider"`
	Wallet           string    `json:"wallet"`
	CreatedAt        time.Time `json:"created_at"`
	Items            int       `json:"items"`
	Fingerprint      string    `json:"fingerprint"`
	ChecksumOK       bool      `json:"checksum_ok"`
	DecryptionTested bool      `json:"decryption_tested"`
}

// backupRestoreResponse is the JSON output of backup restore.
type backupRestoreResponse struct {
	File        string    `json:"file"`
	Wallet      string    `json:"wallet"`
	CreatedAt   time.Time `json:"created_at"`
	Items       int       `json:"items"`
	Destination string    `json:"destination"`
}

// backupListResponse is the JSON output of backup list.
type backupListResponse struct {
	Provider string   `json:"provider"`
	Archives []string `json:"archives"`
}

// backupProvidersResponse is the JSON output of backup providers.
type backupProvidersResponse struct {
	Default   string   `json:"default"`
	Providers []string `json:"providers"`
}
