package backup

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/lumenwallet/lumen/internal/fileutil"
	"github.com/lumenwallet/lumen/internal/lumencrypto"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

const (
	// gdriveSpace is the hidden per-application folder archives live in.
	// Files there are invisible to the rest of the user's Drive.
	gdriveSpace = "appDataFolder"

	gdrivePageSize     = 100
	gdriveCallbackAddr = ":8080"
	gdriveRedirectURL  = "http://localhost:8080/callback"
	gdriveAuthTimeout  = 5 * time.Minute
)

// GDriveConfig configures the Google Drive provider.
type GDriveConfig struct {
	// ClientID and ClientSecret identify the OAuth application.
	ClientID     string
	ClientSecret string

	// TokenFile is where the granted token is cached between runs.
	// Empty means the interactive grant runs on every use.
	TokenFile string

	// AuthOutput receives interactive authorization instructions.
	// Defaults to os.Stderr.
	AuthOutput io.Writer
}

func (c GDriveConfig) authOutput() io.Writer {
	if c.AuthOutput != nil {
		return c.AuthOutput
	}
	return os.Stderr
}

// GDriveProvider stores archives in the application's Google Drive app
// folder.
type GDriveProvider struct {
	service *drive.Service
}

// NewGDriveProvider creates a Google Drive provider, running the interactive
// OAuth grant if no cached token is usable.
func NewGDriveProvider(ctx context.Context, cfg GDriveConfig) (*GDriveProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		err := lumenerr.Wrap(lumenerr.ErrAuthentication, "google drive client credentials not configured")
		return nil, lumenerr.WithSuggestion(err, "set backup.gdrive.client_id and backup.gdrive.client_secret in the config")
	}

	token, err := fetchToken(ctx, cfg)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, oauthConfig(cfg).TokenSource(ctx, token))
	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, lumenerr.Wrap(err, "creating google drive client")
	}

	return &GDriveProvider{service: service}, nil
}

// Name returns the provider's registered name.
func (p *GDriveProvider) Name() string {
	return ProviderGDrive
}

// Upload writes the archive to the app folder and returns its file ID.
func (p *GDriveProvider) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	meta := &drive.File{
		Name:    filename,
		Parents: []string{gdriveSpace},
	}

	created, err := p.service.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Context(ctx).
		Do()
	if err != nil {
		return "", lumenerr.Wrap(err, "uploading backup %s to google drive", filename)
	}

	return created.Id, nil
}

// Download retrieves an archive from the app folder by filename.
func (p *GDriveProvider) Download(ctx context.Context, filename string) ([]byte, error) {
	fileID, err := p.findFile(ctx, filename)
	if err != nil {
		return nil, err
	}

	resp, err := p.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, lumenerr.Wrap(err, "downloading backup %s from google drive", filename)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, lumenerr.Wrap(err, "reading backup %s from google drive", filename)
	}

	return data, nil
}

// List returns the archive filenames stored in the app folder.
func (p *GDriveProvider) List(ctx context.Context) ([]string, error) {
	var names []string
	err := p.eachFile(ctx, func(f *drive.File) bool {
		if strings.HasSuffix(f.Name, BackupExtension) {
			names = append(names, f.Name)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// findFile resolves a filename to a Drive file ID.
func (p *GDriveProvider) findFile(ctx context.Context, filename string) (string, error) {
	fileID := ""
	err := p.eachFile(ctx, func(f *drive.File) bool {
		if f.Name == filename {
			fileID = f.Id
			return false
		}
		return true
	})
	if err != nil {
		return "", err
	}

	if fileID == "" {
		return "", lumenerr.WithDetails(ErrBackupNotFound, map[string]string{
			"file":     filename,
			"provider": ProviderGDrive,
		})
	}
	return fileID, nil
}

// eachFile visits every file in the app folder until fn returns false.
// Matching happens client-side so filenames never need query escaping.
func (p *GDriveProvider) eachFile(ctx context.Context, fn func(*drive.File) bool) error {
	pageToken := ""
	for {
		call := p.service.Files.List().
			Spaces(gdriveSpace).
			Fields("nextPageToken", "files(id, name)").
			PageSize(gdrivePageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := call.Do()
		if err != nil {
			return lumenerr.Wrap(err, "listing backups on google drive")
		}

		for _, f := range result.Files {
			if !fn(f) {
				return nil
			}
		}

		if result.NextPageToken == "" {
			return nil
		}
		pageToken = result.NextPageToken
	}
}

// oauthConfig builds the OAuth application config for the Drive app folder
// scope.
func oauthConfig(cfg GDriveConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  gdriveRedirectURL,
		Scopes:       []string{drive.DriveAppdataScope},
	}
}

// fetchToken returns a usable OAuth token: cached and still valid, cached and
// refreshed, or freshly granted through the interactive flow.
func fetchToken(ctx context.Context, cfg GDriveConfig) (*oauth2.Token, error) {
	if cfg.TokenFile != "" {
		token, err := loadToken(cfg.TokenFile)
		switch {
		case err == nil:
			return refreshToken(ctx, cfg, token)
		case !errors.Is(err, lumenerr.ErrTokenNotFound):
			return nil, err
		}
	}

	return authorize(ctx, cfg)
}

// refreshToken refreshes an expired token and re-caches it.
func refreshToken(ctx context.Context, cfg GDriveConfig, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	fresh, err := oauthConfig(cfg).TokenSource(ctx, token).Token()
	if err != nil {
		return nil, lumenerr.Wrap(lumenerr.ErrAuthentication, "refreshing google drive token: %v", err)
	}

	if cfg.TokenFile != "" {
		if err := saveToken(cfg.TokenFile, fresh); err != nil {
			return nil, err
		}
	}

	return fresh, nil
}

// loadToken reads a cached OAuth token.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- token path comes from the user's own config
	if os.IsNotExist(err) {
		return nil, lumenerr.WithDetails(lumenerr.ErrTokenNotFound, map[string]string{"file": path})
	}
	if err != nil {
		return nil, lumenerr.Wrap(err, "reading google drive token %s", path)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, lumenerr.Wrap(err, "parsing google drive token %s", path)
	}
	return token, nil
}

// saveToken caches an OAuth token on disk, readable only by the owner.
func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return lumenerr.Wrap(err, "encoding google drive token")
	}

	if err := fileutil.WriteAtomic(path, data, backupFilePerm); err != nil {
		return lumenerr.Wrap(err, "saving google drive token %s", path)
	}
	return nil
}

// authorize runs the interactive OAuth grant: it starts a loopback callback
// server, asks the user to visit the consent URL, and exchanges the returned
// code for a token.
func authorize(ctx context.Context, cfg GDriveConfig) (*oauth2.Token, error) {
	conf := oauthConfig(cfg)

	stateBytes, err := lumencrypto.RandomBytes(16)
	if err != nil {
		return nil, err
	}
	state := hex.EncodeToString(stateBytes)

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			sendResult(errChan, lumenerr.Wrap(lumenerr.ErrAuthentication, "oauth state mismatch"))
			writeCallbackPage(w, "Authentication failed", "State mismatch. Please try again.")
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			sendResult(errChan, lumenerr.Wrap(lumenerr.ErrAuthentication, "no authorization code received"))
			writeCallbackPage(w, "Authentication failed", "No authorization code received. Please try again.")
			return
		}

		sendResult(codeChan, code)
		writeCallbackPage(w, "Authentication successful", "You can close this window and return to the terminal.")
	})

	server := &http.Server{
		Addr:              gdriveCallbackAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sendResult(errChan, lumenerr.Wrap(err, "starting oauth callback server"))
		}
	}()
	defer func() { _ = server.Close() }()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	out := cfg.authOutput()
	fmt.Fprintln(out, "Google Drive authorization required.")
	fmt.Fprintf(out, "Visit this URL to authorize lumen:\n\n  %s\n\n", authURL)
	fmt.Fprintln(out, "Waiting for authorization...")

	var authCode string
	select {
	case authCode = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-time.After(gdriveAuthTimeout):
		return nil, lumenerr.Wrap(lumenerr.ErrAuthentication, "no authorization received within %s", gdriveAuthTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, lumenerr.Wrap(lumenerr.ErrAuthentication, "exchanging authorization code: %v", err)
	}

	if cfg.TokenFile != "" {
		if err := saveToken(cfg.TokenFile, token); err != nil {
			return nil, err
		}
	}

	return token, nil
}

// sendResult delivers a callback outcome without blocking if one has already
// been delivered.
func sendResult[T any](ch chan<- T, value T) {
	select {
	case ch <- value:
	default:
	}
}

func writeCallbackPage(w http.ResponseWriter, title, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html><body>
	<h1>%s</h1>
	<p>%s</p>
	<script>window.setTimeout(function(){window.close();}, 3000);</script>
</body></html>`, title, detail)
}
