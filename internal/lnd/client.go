// Package lnd provides a REST client for the wallet endpoints of an lnd
// node: on-chain transactions, invoices, payments, and the channel lists
// used to tell channel management apart from ordinary sends and receives.
package lnd

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lumenwallet/lumen/internal/activity"
	"github.com/lumenwallet/lumen/internal/metrics"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

const (
	// defaultTimeout is the default HTTP request timeout.
	defaultTimeout = 30 * time.Second

	// maxResponseBody bounds REST response reads. A busy node's full
	// payment history can run to tens of megabytes.
	maxResponseBody int64 = 50 << 20

	// maxErrorBody bounds error response reads.
	maxErrorBody int64 = 1 << 20

	// macaroonHeader is the header lnd's REST proxy reads credentials from.
	macaroonHeader = "Grpc-Metadata-macaroon"
)

// REST endpoint paths.
const (
	endpointTransactions    = "/v1/transactions"
	endpointInvoices        = "/v1/invoices"
	endpointPayments        = "/v1/payments"
	endpointChannels        = "/v1/channels"
	endpointPendingChannels = "/v1/channels/pending"
	endpointClosedChannels  = "/v1/channels/closed"
	endpointGraphNode       = "/v1/graph/node"
)

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// nopLogger discards all log output. Used when no logger is configured.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// ClientOptions contains optional configuration for the lnd client.
type ClientOptions struct {
	// BaseURL is the node's REST address, e.g. "https://localhost:8080".
	BaseURL string

	// MacaroonHex is the hex-encoded macaroon sent with every request.
	MacaroonHex string

	// TLSSkipVerify disables certificate verification. lnd nodes commonly
	// present self-signed certificates.
	TLSSkipVerify bool

	// Timeout overrides the default HTTP request timeout.
	Timeout time.Duration

	// Retry overrides the default retry configuration.
	Retry *RetryConfig

	// Logger receives debug and error lines.
	Logger LogWriter
}

// Client talks to an lnd node over REST. It implements the activity feed's
// data source.
type Client struct {
	baseURL     string
	macaroonHex string
	httpClient  *http.Client
	limiter     *RateLimiter
	retry       RetryConfig
	logger      LogWriter
	now         func() time.Time

	// aliasMu guards aliases, the session-scoped node alias cache.
	aliasMu sync.Mutex
	aliases map[string]string
}

// Compile-time interface check.
var _ activity.Source = (*Client)(nil)

// NewClient creates a new lnd REST client.
func NewClient(opts *ClientOptions) *Client {
	c := &Client{
		baseURL: "https://localhost:8080",
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: DefaultRateLimiter(),
		retry:   DefaultRetryConfig(),
		logger:  nopLogger{},
		now:     time.Now,
		aliases: make(map[string]string),
	}

	if opts != nil {
		c.applyOptions(opts)
	}

	return c
}

// applyOptions applies optional configuration.
func (c *Client) applyOptions(opts *ClientOptions) {
	if opts.BaseURL != "" {
		c.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	c.macaroonHex = opts.MacaroonHex
	if opts.Timeout > 0 {
		c.httpClient.Timeout = opts.Timeout
	}
	if opts.TLSSkipVerify {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // G402: Opt-in for nodes with self-signed certificates
		}
	}
	if opts.Retry != nil {
		c.retry = *opts.Retry
	}
	if opts.Logger != nil {
		c.logger = opts.Logger
	}
}

// GetTransactions returns all on-chain wallet transactions, flagged against
// the node's channel lists so channel opens and closes classify as internal
// activity rather than sends and receives.
func (c *Client) GetTransactions(ctx context.Context) ([]activity.Item, error) {
	var txResp transactionsResponse
	if err := c.get(ctx, endpointTransactions, "", nil, &txResp); err != nil {
		return nil, err
	}

	marks, err := c.channelMarks(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]activity.Item, 0, len(txResp.Transactions))
	for _, tx := range txResp.Transactions {
		items = append(items, tx.activityItem(marks))
	}

	c.logger.Debug("lnd: fetched %d transactions", len(items))
	return items, nil
}

// ListPayments returns the node's Lightning payments, including in-flight
// ones so pending sends appear in the feed. Failed payments are dropped.
func (c *Client) ListPayments(ctx context.Context) ([]activity.Item, error) {
	query := url.Values{"include_incomplete": []string{"true"}}

	var resp paymentsResponse
	if err := c.get(ctx, endpointPayments, "", query, &resp); err != nil {
		return nil, err
	}

	items := make([]activity.Item, 0, len(resp.Payments))
	for _, p := range resp.Payments {
		if p.Status == paymentStatusFailed {
			continue
		}
		items = append(items, p.activityItem(c.nodeAlias(ctx, p.destPubkey())))
	}

	c.logger.Debug("lnd: fetched %d payments", len(items))
	return items, nil
}

// ListInvoices returns one page of invoices per the request's cursor.
func (c *Client) ListInvoices(ctx context.Context, req activity.InvoicesRequest) (*activity.InvoicesPage, error) {
	query := url.Values{}
	if req.NumMaxInvoices > 0 {
		query.Set("num_max_invoices", strconv.FormatUint(req.NumMaxInvoices, 10))
	}
	if req.IndexOffset > 0 {
		query.Set("index_offset", strconv.FormatUint(req.IndexOffset, 10))
	}
	if req.Reversed {
		query.Set("reversed", "true")
	}

	var resp invoicesResponse
	if err := c.get(ctx, endpointInvoices, "", query, &resp); err != nil {
		return nil, err
	}

	now := c.now()
	items := make([]activity.Item, 0, len(resp.Invoices))
	for _, in := range resp.Invoices {
		items = append(items, in.activityItem(now))
	}

	c.logger.Debug("lnd: fetched %d invoices (first_index_offset=%d)", len(items), uint64(resp.FirstIndexOffset))
	return &activity.InvoicesPage{
		Items:            items,
		FirstIndexOffset: uint64(resp.FirstIndexOffset),
	}, nil
}

// channelMarks fetches the open, pending, and closed channel lists and
// collects their funding and closing transaction ids.
func (c *Client) channelMarks(ctx context.Context) (channelMarks, error) {
	marks := newChannelMarks()

	var open channelsResponse
	if err := c.get(ctx, endpointChannels, "", nil, &open); err != nil {
		return marks, err
	}
	for _, ch := range open.Channels {
		marks.markFunding(ch.ChannelPoint)
	}

	var pending pendingChannelsResponse
	if err := c.get(ctx, endpointPendingChannels, "", nil, &pending); err != nil {
		return marks, err
	}
	for _, ch := range pending.PendingOpenChannels {
		marks.markFunding(ch.Channel.ChannelPoint)
	}
	for _, ch := range pending.WaitingCloseChannels {
		marks.markFunding(ch.Channel.ChannelPoint)
	}
	for _, ch := range pending.PendingClosingChannels {
		marks.markFunding(ch.Channel.ChannelPoint)
		marks.markClosing(ch.ClosingTxid)
	}
	for _, ch := range pending.PendingForceClosingChannels {
		marks.markFunding(ch.Channel.ChannelPoint)
		marks.markClosing(ch.ClosingTxid)
	}

	var closed closedChannelsResponse
	if err := c.get(ctx, endpointClosedChannels, "", nil, &closed); err != nil {
		return marks, err
	}
	for _, ch := range closed.Channels {
		marks.markFunding(ch.ChannelPoint)
		marks.markClosing(ch.ClosingTxHash)
	}

	return marks, nil
}

// nodeAlias resolves a node's alias via the graph endpoint. Lookups are
// cached for the client's lifetime, failures included, so one unreachable
// graph entry cannot stall every payment fetch.
func (c *Client) nodeAlias(ctx context.Context, pubkey string) string {
	if pubkey == "" {
		return ""
	}

	c.aliasMu.Lock()
	alias, ok := c.aliases[pubkey]
	c.aliasMu.Unlock()
	if ok {
		return alias
	}

	var resp nodeInfoResponse
	// A failed lookup leaves the alias empty; get already logged it.
	_ = c.get(ctx, endpointGraphNode, "/"+pubkey, nil, &resp)

	c.aliasMu.Lock()
	c.aliases[pubkey] = resp.Node.Alias
	c.aliasMu.Unlock()
	return resp.Node.Alias
}

// get performs a rate-limited, retried GET against the node and decodes the
// JSON response into out. endpoint keys the rate limiter and metrics; extra
// is appended to the request path.
func (c *Client) get(ctx context.Context, endpoint, extra string, query url.Values, out any) error {
	start := time.Now()

	_, err := RetryWithConfig(ctx, c.retry, func() (struct{}, error) {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, c.doGet(ctx, endpoint+extra, query, out)
	})

	metrics.Global.RecordRESTCall(strings.TrimPrefix(endpoint, "/v1/"), time.Since(start), err)
	if err != nil {
		c.logger.Debug("lnd: GET %s failed: %v", endpoint, err)
	}
	return err
}

// doGet performs a single GET attempt.
func (c *Client) doGet(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.macaroonHex != "" {
		req.Header.Set(macaroonHeader, c.macaroonHex)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return WrapRetryable(fmt.Errorf("%w: %w", lumenerr.ErrNodeUnreachable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// handleErrorResponse maps a non-200 node response to an error. The REST
// gateway renders gRPC failures as {"code": n, "message": "..."}.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	detail := strings.TrimSpace(string(body))
	var nodeErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &nodeErr); err == nil && nodeErr.Message != "" {
		detail = nodeErr.Message
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return lumenerr.Wrap(lumenerr.ErrAuthentication, "node rejected request: %s", detail)
	case resp.StatusCode == http.StatusNotFound:
		return lumenerr.Wrap(lumenerr.ErrNetworkError, "endpoint not found, check the node REST address: %s", detail)
	case resp.StatusCode == http.StatusTooManyRequests:
		err := fmt.Errorf("%w: %s", ErrRateLimited, detail)
		if after := ParseRetryAfter(resp.Header.Get("Retry-After")); after > 0 {
			return &retryAfterError{after: after, err: err}
		}
		return err
	case resp.StatusCode >= http.StatusInternalServerError:
		return WrapRetryable(fmt.Errorf("%w: status %d: %s", lumenerr.ErrNetworkError, resp.StatusCode, detail))
	default:
		return fmt.Errorf("%w: status %d: %s", lumenerr.ErrNetworkError, resp.StatusCode, detail)
	}
}
