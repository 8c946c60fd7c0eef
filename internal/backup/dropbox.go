package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// DropboxConfig configures the Dropbox provider.
type DropboxConfig struct {
	// AccessToken authorizes the Dropbox app.
	AccessToken string

	// Folder is the path archives are stored under, relative to the app
	// root. Empty means the app root itself.
	Folder string
}

// DropboxProvider stores archives in a Dropbox app folder.
//
// The underlying SDK client carries no context; the Provider interface's
// context is accepted and ignored.
type DropboxProvider struct {
	client files.Client
	folder string
}

// NewDropboxProvider creates a Dropbox provider from an access token.
func NewDropboxProvider(cfg DropboxConfig) (*DropboxProvider, error) {
	if cfg.AccessToken == "" {
		err := lumenerr.Wrap(lumenerr.ErrAuthentication, "dropbox access token not configured")
		return nil, lumenerr.WithSuggestion(err, "set backup.dropbox.access_token in the config")
	}

	folder := strings.TrimSuffix(cfg.Folder, "/")
	if folder != "" && !strings.HasPrefix(folder, "/") {
		folder = "/" + folder
	}

	client := files.New(dropbox.Config{
		Token:    cfg.AccessToken,
		LogLevel: dropbox.LogOff,
	})

	return &DropboxProvider{client: client, folder: folder}, nil
}

// Name returns the provider's registered name.
func (p *DropboxProvider) Name() string {
	return ProviderDropbox
}

// Upload writes the archive and returns its Dropbox path.
func (p *DropboxProvider) Upload(_ context.Context, filename string, data []byte) (string, error) {
	arg := files.NewUploadArg(p.archivePath(filename))
	arg.Mode = &files.WriteMode{Tagged: dropbox.Tagged{Tag: files.WriteModeOverwrite}}

	meta, err := p.client.Upload(arg, bytes.NewReader(data))
	if err != nil {
		return "", lumenerr.Wrap(err, "uploading backup %s to dropbox", filename)
	}

	return meta.PathDisplay, nil
}

// Download retrieves an archive by filename.
func (p *DropboxProvider) Download(_ context.Context, filename string) ([]byte, error) {
	_, content, err := p.client.Download(files.NewDownloadArg(p.archivePath(filename)))
	if err != nil {
		if isDropboxNotFound(err) {
			return nil, lumenerr.WithDetails(ErrBackupNotFound, map[string]string{
				"file":     filename,
				"provider": ProviderDropbox,
			})
		}
		return nil, lumenerr.Wrap(err, "downloading backup %s from dropbox", filename)
	}
	defer func() { _ = content.Close() }()

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, lumenerr.Wrap(err, "reading backup %s from dropbox", filename)
	}

	return data, nil
}

// List returns the archive filenames stored in the backup folder.
func (p *DropboxProvider) List(_ context.Context) ([]string, error) {
	result, err := p.client.ListFolder(files.NewListFolderArg(p.folder))
	if err != nil {
		// The folder only exists once the first archive is uploaded.
		if isDropboxNotFound(err) {
			return nil, nil
		}
		return nil, lumenerr.Wrap(err, "listing backups on dropbox")
	}

	var names []string
	for {
		for _, entry := range result.Entries {
			meta, ok := entry.(*files.FileMetadata)
			if !ok {
				continue
			}
			if strings.HasSuffix(meta.Name, BackupExtension) {
				names = append(names, meta.Name)
			}
		}

		if !result.HasMore {
			break
		}

		result, err = p.client.ListFolderContinue(files.NewListFolderContinueArg(result.Cursor))
		if err != nil {
			return nil, lumenerr.Wrap(err, "listing backups on dropbox")
		}
	}

	return names, nil
}

func (p *DropboxProvider) archivePath(filename string) string {
	return p.folder + "/" + filename
}

// isDropboxNotFound reports whether err is the SDK's path lookup failure.
func isDropboxNotFound(err error) bool {
	var downloadErr files.DownloadAPIError
	if errors.As(err, &downloadErr) {
		return downloadErr.EndpointError != nil && lookupNotFound(downloadErr.EndpointError.Path)
	}

	var listErr files.ListFolderAPIError
	if errors.As(err, &listErr) {
		return listErr.EndpointError != nil && lookupNotFound(listErr.EndpointError.Path)
	}

	return false
}

func lookupNotFound(lookup *files.LookupError) bool {
	return lookup != nil && lookup.Tag == files.LookupErrorNotFound
}
