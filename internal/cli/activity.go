package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenwallet/lumen/internal/activity"
	"github.com/lumenwallet/lumen/internal/cache"
	"github.com/lumenwallet/lumen/internal/config"
	"github.com/lumenwallet/lumen/internal/fileutil"
	"github.com/lumenwallet/lumen/internal/lnd"
	"github.com/lumenwallet/lumen/internal/metrics"
	"github.com/lumenwallet/lumen/internal/output"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// activityFilter is the comma-separated category filter.
	activityFilter string
	// activitySearch is the substring search query.
	activitySearch string
	// activityPageSize overrides the configured page size.
	activityPageSize int
	// activityAll pages in the full history instead of the newest page.
	activityAll bool
	// activityRefresh bypasses the cache and fetches from the node.
	activityRefresh bool
	// saveInvoiceOut is the destination path for the invoice artifact.
	saveInvoiceOut string
)

// activityCmd is the parent command for the activity feed.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var activityCmd = &cobra.Command{
	Use:     "activity",
	GroupID: groupActivity,
	Short:   "Browse wallet activity",
	Long: `Browse the unified wallet activity feed.

On-chain transactions, Lightning invoices, and Lightning payments are merged
into one timeline, newest first, grouped under date separators.`,
}

// activityListCmd lists the activity feed.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallet activity",
	Long: `List on-chain transactions, Lightning invoices, and Lightning payments as
one feed, newest first, grouped by date.

Recently fetched history is served from the local cache; use --refresh to
force a node fetch, or --all to page in the complete invoice history.

Categories for --filter: sent, received, pending, expired, internal.`,
	Example: `  # Show recent activity
  lumen activity list

  # Only money leaving the wallet
  lumen activity list --filter sent,pending

  # Find that coffee invoice
  lumen activity list --search coffee

  # Pull the complete history from the node
  lumen activity list --all`,
	RunE: runActivityList,
}

// activitySaveInvoiceCmd saves an invoice artifact to disk.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var activitySaveInvoiceCmd = &cobra.Command{
	Use:   "save-invoice <r-hash>",
	Short: "Save an invoice payment request to a file",
	Long: `Save an invoice's BOLT 11 payment request and details to a text file.

The invoice is looked up by its payment hash (the feed's ID column); a unique
prefix is enough. Cached history is checked first, then the node.`,
	Example: `  # Save to invoice-<hash>.txt in the current directory
  lumen activity save-invoice 66bc7f52539b

  # Choose the destination
  lumen activity save-invoice 66bc7f52539b --out ~/invoices/coffee.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runActivitySaveInvoice,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(activityCmd)
	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activitySaveInvoiceCmd)

	activityListCmd.Flags().StringVarP(&activityFilter, "filter", "f", "", "comma-separated categories to show")
	activityListCmd.Flags().StringVarP(&activitySearch, "search", "s", "", "show only items matching this text")
	activityListCmd.Flags().IntVar(&activityPageSize, "page-size", 0, "items per page (default from config)")
	activityListCmd.Flags().BoolVar(&activityAll, "all", false, "fetch the complete history")
	activityListCmd.Flags().BoolVar(&activityRefresh, "refresh", false, "bypass the cache and fetch from the node")

	activitySaveInvoiceCmd.Flags().StringVar(&saveInvoiceOut, "out", "", "destination file (default invoice-<hash>.txt)")
}

func runActivityList(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	// Parse the filter up front so a typo fails before any network call.
	filter, err := parseActivityFilter(activityFilter)
	if err != nil {
		return err
	}

	pageSize := activityPageSize
	if pageSize <= 0 {
		pageSize = cc.Cfg.GetActivityPageSize()
	}

	node := cc.Cfg.GetNodeRESTURL()
	activityCache := loadActivityCache(cc, cmd.ErrOrStderr())
	pools := freshCachedPools(cc.Cfg, activityCache, node)

	feedCfg := activity.FeedConfig{PageSize: pageSize, Logger: cc.Log}
	if pools == nil {
		// Cache miss: the node will be queried, so credentials must resolve.
		source, srcErr := nodeSource(cc)
		if srcErr != nil {
			return srcErr
		}
		feedCfg.Source = source
	}

	feed := activity.NewFeed(feedCfg)
	store := feed.Store()
	store.SetFilter(filter)
	if activitySearch != "" {
		store.SetSearchText(activitySearch)
	}

	cached := pools != nil
	if cached {
		metrics.Global.RecordCacheHit()
		feed.Pools().ReplaceTransactions(pools[activity.KindTransaction])
		feed.Pools().ReplaceInvoices(pools[activity.KindInvoice])
		feed.Pools().ReplacePayments(pools[activity.KindPayment])
	} else {
		metrics.Global.RecordCacheMiss()
		if fetchErr := fetchActivity(cmd, feed); fetchErr != nil {
			return fetchErr
		}
		storeActivityPools(activityCache, node, feed.Pools())
		saveActivityCache(cc, activityCache)
	}

	entries := feed.Entries()
	if cc.Fmt.Format() == output.FormatJSON {
		return writeJSON(cmd.OutOrStdout(),
			newActivityListResponse(node, filter, cached, store.HasNextPage(), entries))
	}
	return displayActivityText(cmd, entries, cached, store.HasNextPage())
}

// fetchActivity pulls history from the node: the newest page normally, or
// every page until the merge paginator is exhausted with --all.
func fetchActivity(cmd *cobra.Command, feed *activity.Feed) error {
	if activityAll {
		return fetchFullHistory(cmd, feed)
	}

	ctx, cancel := contextWithTimeout(cmd, 60*time.Second)
	defer cancel()
	if err := feed.Refresh(ctx); err != nil {
		return lumenerr.Wrap(err, "fetching activity from node")
	}
	return nil
}

// fetchFullHistory pages the merge paginator until it is exhausted.
func fetchFullHistory(cmd *cobra.Command, feed *activity.Feed) error {
	ctx, cancel := contextWithTimeout(cmd, 5*time.Minute)
	defer cancel()

	for {
		if err := feed.LoadNextPage(ctx); err != nil {
			return lumenerr.Wrap(err, "fetching activity page from node")
		}
		if !feed.Store().HasNextPage() {
			return nil
		}
	}
}

func runActivitySaveInvoice(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	query := strings.ToLower(strings.TrimSpace(args[0]))
	if query == "" {
		return lumenerr.WithSuggestion(
			lumenerr.ErrInvalidInput,
			"provide the invoice payment hash shown in the activity feed's ID column",
		)
	}

	item, err := lookupInvoice(cmd, cc, query)
	if err != nil {
		return err
	}
	if item.PaymentRequest == "" {
		return lumenerr.WithSuggestion(
			lumenerr.ErrInvalidInput,
			fmt.Sprintf("invoice %s carries no payment request to save", shortID(item.RHash)),
		)
	}

	outPath := saveInvoiceOut
	if outPath == "" {
		outPath = fmt.Sprintf("invoice-%s.txt", shortID(item.RHash))
	}
	outPath = config.ExpandPath(outPath)

	now := time.Now()
	artifact := renderInvoiceArtifact(&item, now)

	// The store is the notification surface for save failures; feed and
	// filter state are untouched either way.
	store := activity.NewStore()
	if writeErr := writeInvoiceArtifact(outPath, artifact); writeErr != nil {
		metrics.Global.RecordSaveOp(writeErr)
		store.NotifySaveFailure(writeErr)
		return lumenerr.WithDetails(
			lumenerr.Wrap(lumenerr.ErrGeneral, "%s", store.Notice()),
			map[string]string{"path": outPath},
		)
	}
	metrics.Global.RecordSaveOp(nil)

	w := cmd.OutOrStdout()
	if cc.Fmt.Format() == output.FormatJSON {
		return writeJSON(w, saveInvoiceResponse{
			RHash:     item.RHash,
			Path:      outPath,
			AmountSat: item.Value,
			Memo:      item.Memo,
			Status:    itemStatus(&item, now),
		})
	}

	out(w, "Saved invoice to %s\n", outPath)
	out(w, "  Hash:   %s\n", item.RHash)
	out(w, "  Amount: %s\n", output.FormatSats(item.Value))
	if item.Memo != "" {
		out(w, "  Memo:   %s\n", item.Memo)
	}
	return output.RenderQR(w, item.PaymentRequest, output.DefaultQRConfig())
}

// lookupInvoice resolves a payment hash or unique prefix, checking the cache
// before querying the node.
func lookupInvoice(cmd *cobra.Command, cc *CommandContext, query string) (activity.Item, error) {
	activityCache := loadActivityCache(cc, cmd.ErrOrStderr())
	node := cc.Cfg.GetNodeRESTURL()
	if entry, ok, _ := activityCache.Get(node, activity.KindInvoice); ok {
		if item, matches := findInvoiceByHash(entry.Items, query); matches == 1 {
			return item, nil
		} else if matches > 1 {
			return activity.Item{}, ambiguousInvoiceError(query, matches)
		}
	}

	source, err := nodeSource(cc)
	if err != nil {
		return activity.Item{}, err
	}
	feed := activity.NewFeed(activity.FeedConfig{
		Source:   source,
		PageSize: cc.Cfg.GetActivityPageSize(),
		Logger:   cc.Log,
	})
	ctx, cancel := contextWithTimeout(cmd, 60*time.Second)
	defer cancel()
	if err := feed.Refresh(ctx); err != nil {
		return activity.Item{}, lumenerr.Wrap(err, "fetching invoices from node")
	}

	item, matches := findInvoiceByHash(feed.Pools().Invoices(), query)
	switch {
	case matches == 1:
		return item, nil
	case matches > 1:
		return activity.Item{}, ambiguousInvoiceError(query, matches)
	default:
		return activity.Item{}, lumenerr.WithSuggestion(
			lumenerr.Wrap(lumenerr.ErrInvoiceNotFound, "no invoice matches %s", query),
			"Run 'lumen activity list --all' to page in older invoices, then retry.",
		)
	}
}

// findInvoiceByHash returns the invoice whose payment hash equals or starts
// with query, and how many invoices matched. An exact match wins outright.
func findInvoiceByHash(items []activity.Item, query string) (activity.Item, int) {
	var match activity.Item
	matches := 0
	for i := range items {
		if items[i].Kind != activity.KindInvoice {
			continue
		}
		if items[i].RHash == query {
			return items[i], 1
		}
		if strings.HasPrefix(items[i].RHash, query) {
			match = items[i]
			matches++
		}
	}
	return match, matches
}

func ambiguousInvoiceError(query string, matches int) error {
	return lumenerr.WithSuggestion(
		lumenerr.Wrap(lumenerr.ErrInvalidInput, "payment hash prefix %s matches %d invoices", query, matches),
		"Give more characters of the hash, or the full hash from 'lumen activity list -o json'.",
	)
}

// nodeSource builds the activity data source from configuration. The
// macaroon comes from node.macaroon_hex directly or from the file at
// node.macaroon_path.
func nodeSource(cc *CommandContext) (activity.Source, error) {
	cfg := cc.Cfg
	macaroonHex := cfg.Node.MacaroonHex
	if macaroonHex == "" {
		path := cfg.GetMacaroonPath()
		if path == "" {
			return nil, lumenerr.WithSuggestion(
				lumenerr.ErrMacaroonNotFound,
				"set node.macaroon_path to your node's macaroon file, or node.macaroon_hex to its hex encoding",
			)
		}
		raw, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the user's own config
		if err != nil {
			return nil, lumenerr.WithSuggestion(
				lumenerr.Wrap(lumenerr.ErrMacaroonNotFound, "reading macaroon file %s", path),
				"Check node.macaroon_path in your config.",
			)
		}
		macaroonHex = hex.EncodeToString(raw)
	}

	opts := &lnd.ClientOptions{
		BaseURL:       cfg.GetNodeRESTURL(),
		MacaroonHex:   macaroonHex,
		TLSSkipVerify: cfg.Node.TLSSkipVerify,
		Logger:        cc.Log,
	}
	if cfg.Node.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(cfg.Node.TimeoutSeconds) * time.Second
	}
	return cc.Factory.NewSource(opts), nil
}

// loadActivityCache loads the on-disk activity cache, or the injected one
// when a test supplied it.
func loadActivityCache(cc *CommandContext, errWriter io.Writer) *cache.ActivityCache {
	if cc.ActivityCache != nil {
		return cc.ActivityCache
	}

	storage := cache.NewFileStorage(activityCachePath(cc.Cfg))
	activityCache, err := storage.Load()
	if err != nil {
		handleCacheLoadError(cc, errWriter, err)
		return cache.NewActivityCache()
	}
	return activityCache
}

// handleCacheLoadError logs and displays cache load errors.
func handleCacheLoadError(cc *CommandContext, errWriter io.Writer, err error) {
	if lumenerr.Is(err, cache.ErrCorruptCache) {
		if cc.Log != nil {
			cc.Log.Error("activity cache file is corrupted: %v", err)
		}
		outln(errWriter, "Warning: activity cache was corrupted and has been reset.")
	} else if cc.Log != nil {
		cc.Log.Error("failed to load activity cache: %v", err)
	}
}

// freshCachedPools returns the cached per-kind items when every kind is
// present and fresh, nil otherwise. --refresh and --all always miss.
func freshCachedPools(cfg ConfigProvider, ac *cache.ActivityCache, node string) map[activity.Kind][]activity.Item {
	if activityRefresh || activityAll {
		return nil
	}

	staleness := cfg.GetCacheStaleness()
	if staleness <= 0 {
		staleness = cache.DefaultStaleness
	}

	kinds := []activity.Kind{activity.KindTransaction, activity.KindInvoice, activity.KindPayment}
	pools := make(map[activity.Kind][]activity.Item, len(kinds))
	for _, kind := range kinds {
		if ac.IsStaleWithDuration(node, kind, staleness) {
			return nil
		}
		entry, ok, _ := ac.Get(node, kind)
		if !ok {
			return nil
		}
		pools[kind] = entry.Items
	}
	return pools
}

// storeActivityPools records the fetched pools in the cache, one entry per
// item kind.
func storeActivityPools(ac *cache.ActivityCache, node string, pools *activity.Pools) {
	ac.Set(cache.ActivityCacheEntry{Node: node, Kind: activity.KindTransaction, Items: pools.Transactions()})
	ac.Set(cache.ActivityCacheEntry{Node: node, Kind: activity.KindInvoice, Items: pools.Invoices()})
	ac.Set(cache.ActivityCacheEntry{Node: node, Kind: activity.KindPayment, Items: pools.Payments()})
}

// saveActivityCache persists the cache to disk, logging failures. Injected
// caches live in memory only.
func saveActivityCache(cc *CommandContext, ac *cache.ActivityCache) {
	if cc.ActivityCache != nil {
		return
	}

	storage := cache.NewFileStorage(activityCachePath(cc.Cfg))
	if err := storage.Save(ac); err != nil && cc.Log != nil {
		cc.Log.Error("failed to save activity cache: %v", err)
	}
}

// parseActivityFilter parses the --filter flag, a comma-separated category
// list. Empty means every category.
func parseActivityFilter(raw string) (activity.Filter, error) {
	var cats []activity.Category
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		cat, err := activity.ParseCategory(part)
		if err != nil {
			return activity.Filter{}, err
		}
		cats = append(cats, cat)
	}
	if len(cats) == 0 {
		return activity.AllFilter(), nil
	}
	return activity.SubsetFilter(cats...), nil
}

// activityListResponse is the JSON output of activity list. Separators are
// a text presentation concern; each item carries its own date.
type activityListResponse struct {
	Node    string              `json:"node"`
	Filter  []activity.Category `json:"filter,omitempty"`
	Search  string              `json:"search,omitempty"`
	Cached  bool                `json:"cached"`
	HasMore bool                `json:"has_more"`
	Items   []activityItemJSON  `json:"items"`
}

// activityItemJSON is one feed item in JSON output.
type activityItemJSON struct {
	Kind      activity.Kind     `json:"kind"`
	Category  activity.Category `json:"category"`
	ID        string            `json:"id"`
	Date      string            `json:"date"`
	Timestamp int64             `json:"timestamp"`
	AmountSat int64             `json:"amount_sat"`
	Detail    string            `json:"detail,omitempty"`
	Status    string            `json:"status,omitempty"`
}

// saveInvoiceResponse is the JSON output of activity save-invoice.
type saveInvoiceResponse struct {
	RHash     string `json:"r_hash"`
	Path      string `json:"path"`
	AmountSat int64  `json:"amount_sat"`
	Memo      string `json:"memo,omitempty"`
	Status    string `json:"status"`
}

func newActivityListResponse(node string, filter activity.Filter, cached, hasMore bool, entries []activity.Entry) activityListResponse {
	now := time.Now()
	items := make([]activityItemJSON, 0, len(entries))
	for _, e := range entries {
		if e.IsSeparator() {
			continue
		}
		it := e.Item
		items = append(items, activityItemJSON{
			Kind:      it.Kind,
			Category:  activity.Classify(*it),
			ID:        it.ID(),
			Date:      it.Date,
			Timestamp: it.Timestamp,
			AmountSat: it.AmountSat(),
			Detail:    itemDetail(it),
			Status:    itemStatus(it, now),
		})
	}

	resp := activityListResponse{
		Node:    node,
		Search:  activitySearch,
		Cached:  cached,
		HasMore: hasMore,
		Items:   items,
	}
	if !filter.IsAll() {
		resp.Filter = filter.Visible()
	}
	return resp
}

// displayActivityText renders the feed as a table with date separator rows.
func displayActivityText(cmd *cobra.Command, entries []activity.Entry, cached, hasMore bool) error {
	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		if activityFilter != "" || activitySearch != "" {
			outln(w, "No activity matches the current filter.")
		} else {
			outln(w, "No activity yet.")
		}
		return nil
	}

	now := time.Now()
	table := output.NewTable("KIND", "CATEGORY", "AMOUNT", "DETAIL", "STATUS", "ID")
	for _, e := range entries {
		if e.IsSeparator() {
			table.AddSection(e.Title)
			continue
		}
		it := e.Item
		table.AddRow(
			string(it.Kind),
			string(activity.Classify(*it)),
			output.FormatSats(it.AmountSat()),
			itemDetail(it),
			itemStatus(it, now),
			shortID(it.ID()),
		)
	}
	if err := table.Render(w); err != nil {
		return err
	}

	if cached {
		output.Notice("Showing cached activity. Use --refresh to fetch from the node.")
	}
	if hasMore {
		output.Notice("More history is available. Use --all to fetch everything.")
	}
	return nil
}

// itemDetail returns the human-oriented column for an item: the invoice
// memo, the payment destination, or the transaction's first output address.
func itemDetail(it *activity.Item) string {
	switch it.Kind {
	case activity.KindInvoice:
		return it.Memo
	case activity.KindPayment:
		if it.DestNodeAlias != "" {
			return it.DestNodeAlias
		}
		return shortID(it.DestNodePubkey)
	default:
		if len(it.DestAddresses) > 0 {
			return it.DestAddresses[0]
		}
		return ""
	}
}

// itemStatus returns the status column for an item. Open invoices show a
// live expiry countdown.
func itemStatus(it *activity.Item, now time.Time) string {
	switch it.Kind {
	case activity.KindInvoice:
		switch {
		case it.Settled:
			return "settled"
		case it.IsExpired:
			return "expired"
		default:
			countdown := output.Countdown(time.Unix(it.CreationDate+it.Expiry, 0), now)
			if countdown == "expired" {
				return countdown
			}
			return "expires in " + countdown
		}
	case activity.KindPayment:
		if it.Sending {
			return "in flight"
		}
		return "complete"
	default:
		if it.Sending || it.IsPending {
			return "unconfirmed"
		}
		return fmt.Sprintf("%d conf", it.NumConfirmations)
	}
}

// shortID abbreviates a hash for table display. JSON output carries the
// full value.
func shortID(id string) string {
	const visible = 12
	if len(id) <= visible {
		return id
	}
	return id[:visible]
}

// renderInvoiceArtifact renders the saved invoice file: the details block,
// then the bare payment request on its own line so it pastes cleanly.
func renderInvoiceArtifact(it *activity.Item, now time.Time) string {
	var b strings.Builder
	b.WriteString("Lightning invoice\n")
	b.WriteString("payment_hash: " + it.RHash + "\n")
	b.WriteString("amount:       " + output.FormatSats(it.Value) + "\n")
	if it.Memo != "" {
		b.WriteString("memo:         " + it.Memo + "\n")
	}
	b.WriteString("created:      " + activity.FormatDate(it.CreationDate) + "\n")
	b.WriteString("status:       " + itemStatus(it, now) + "\n")
	b.WriteString("\n")
	b.WriteString(it.PaymentRequest + "\n")
	return b.String()
}

// writeInvoiceArtifact writes the artifact atomically, creating the parent
// directory if needed.
func writeInvoiceArtifact(path, artifact string) error {
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, []byte(artifact), 0o600)
}
