// Package version tracks the running lumen build and checks GitHub for newer
// releases.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// RepoOwner and RepoName locate the canonical release repository.
	RepoOwner = "lumenwallet"
	RepoName  = "lumen"

	// DefaultBaseURL is the GitHub API root.
	DefaultBaseURL = "https://api.github.com"

	// DefaultTimeout bounds release check requests.
	DefaultTimeout = 30 * time.Second

	devVersion = "dev"

	// Bounded reads: a hostile or broken server cannot balloon memory.
	maxErrorBodySize    = 1024
	maxResponseBodySize = 64 * 1024
)

// Errors returned by this package.
var (
	ErrGitHubAPIFailed  = errors.New("GitHub API request failed")
	ErrInvalidOwner     = errors.New("owner cannot be empty")
	ErrInvalidRepo      = errors.New("repo cannot be empty")
	ErrInvalidOwnerRepo = errors.New("owner/repo contains invalid characters")
)

// Version is the lumen build version. Release builds set it through
// -ldflags; everything else reports "dev".
var Version = devVersion //nolint:gochecknoglobals // Set at build time

// Current returns the running build's version string.
func Current() string {
	if Version == "" {
		return devVersion
	}
	return Version
}

// GitHubRelease is the subset of the GitHub release payload the check uses.
type GitHubRelease struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	Body        string    `json:"body"`
}

// Info is the outcome of a release check.
type Info struct {
	Current string
	Latest  string
	IsNewer bool
}

// Client fetches GitHub releases. Construct it with NewClient; the zero
// value has no HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root, such as a test
// server. A trailing slash is dropped.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient swaps in a caller-owned HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient builds a Client with GitHub defaults, then applies opts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  fmt.Sprintf("lumen/%s (%s/%s)", Current(), runtime.GOOS, runtime.GOARCH),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

//nolint:gochecknoglobals // package-level convenience client
var defaultClient = NewClient()

// GetLatestRelease fetches the latest release of owner/repo with the default
// client.
func GetLatestRelease(ctx context.Context, owner, repo string) (*GitHubRelease, error) {
	return defaultClient.GetLatestRelease(ctx, owner, repo)
}

// Check compares current against the latest lumen release with the default
// client.
func Check(ctx context.Context, current string) (*Info, error) {
	return defaultClient.Check(ctx, current)
}

// validOwnerRepoPattern matches GitHub owner and repo names: alphanumeric
// first character, then alphanumerics, dots, underscores, and hyphens.
var validOwnerRepoPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// validateOwnerRepo rejects empty or malformed path components before they
// reach URL construction.
func validateOwnerRepo(owner, repo string) error {
	switch {
	case owner == "":
		return ErrInvalidOwner
	case repo == "":
		return ErrInvalidRepo
	case !validOwnerRepoPattern.MatchString(owner), !validOwnerRepoPattern.MatchString(repo):
		return ErrInvalidOwnerRepo
	}
	return nil
}

// GetLatestRelease fetches the latest published release of owner/repo.
func (c *Client) GetLatestRelease(ctx context.Context, owner, repo string) (*GitHubRelease, error) {
	if err := validateOwnerRepo(owner, repo); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: status %d: %s", ErrGitHubAPIFailed, resp.StatusCode, string(body))
	}

	var release GitHubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &release, nil
}

// Check fetches the latest lumen release and compares it against current.
func (c *Client) Check(ctx context.Context, current string) (*Info, error) {
	release, err := c.GetLatestRelease(ctx, RepoOwner, RepoName)
	if err != nil {
		return nil, err
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	return &Info{
		Current: current,
		Latest:  latest,
		IsNewer: IsNewerVersion(current, latest),
	}, nil
}

// CompareVersions orders two version strings: 1 when v1 is newer, -1 when v2
// is, 0 when they are equal. Development builds ("dev", empty, or a commit
// hash) sort below every release.
func CompareVersions(v1, v2 string) int {
	v1 = strings.TrimPrefix(v1, "v")
	v2 = strings.TrimPrefix(v2, "v")

	dev1, dev2 := isDevBuild(v1), isDevBuild(v2)
	switch {
	case dev1 && dev2:
		return 0
	case dev1:
		return -1
	case dev2:
		return 1
	}

	a, b := semverParts(v1), semverParts(v2)
	for i := range a {
		switch {
		case a[i] > b[i]:
			return 1
		case a[i] < b[i]:
			return -1
		}
	}
	return 0
}

// IsNewerVersion reports whether latestVersion is newer than currentVersion.
func IsNewerVersion(currentVersion, latestVersion string) bool {
	return CompareVersions(latestVersion, currentVersion) > 0
}

// NormalizeVersion strips the parts that vary between otherwise identical
// builds: 'v' prefixes, surrounding whitespace, and pre-release or build
// metadata suffixes (-rc1, -dirty, +build).
func NormalizeVersion(version string) string {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}
	version = strings.TrimLeftFunc(version, func(r rune) bool {
		return r == 'v' || unicode.IsSpace(r)
	})
	return strings.TrimSpace(version)
}

// isDevBuild reports whether v names an unreleased build.
func isDevBuild(v string) bool {
	return v == devVersion || v == "" || isCommitHash(v)
}

// semverParts extracts the numeric major, minor, and patch components,
// ignoring pre-release and build metadata. Missing or unparseable components
// read as zero.
func semverParts(version string) [3]int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	var parts [3]int
	for i, field := range strings.Split(version, ".") {
		if i == len(parts) {
			break
		}
		if n, err := strconv.Atoi(field); err == nil {
			parts[i] = n
		}
	}
	return parts
}

// commitHashRegex matches 7 to 40 hex characters, the lengths git
// abbreviates hashes to.
var commitHashRegex = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)

// isCommitHash reports whether s looks like a git commit hash. At least one
// hex letter is required so date-based numeric versions like "2024010100"
// don't match. A -dirty suffix is ignored.
func isCommitHash(s string) bool {
	s = strings.TrimSuffix(s, "-dirty")
	return commitHashRegex.MatchString(s) && strings.ContainsAny(s, "abcdefABCDEF")
}
