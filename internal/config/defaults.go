package config

// DefaultRESTURL is the default lnd REST endpoint.
// lnd serves its REST proxy on port 8080 by default.
const DefaultRESTURL = "https://localhost:8080"

// DefaultPageSize is the default activity page size.
const DefaultPageSize = 50

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.lumen",
		Node: NodeConfig{
			RESTURL:        DefaultRESTURL,
			MacaroonPath:   "~/.lumen/readonly.macaroon",
			TimeoutSeconds: 30,
			TLSSkipVerify:  false,
		},
		Activity: ActivityConfig{
			PageSize:              DefaultPageSize,
			CacheStalenessMinutes: 5,
		},
		Backup: BackupConfig{
			DefaultProvider: "local",
			Directory:       "~/.lumen/backups",
			GDrive: GDriveConfig{
				TokenFile: "~/.lumen/gdrive-token.json",
			},
			Dropbox: DropboxConfig{
				Folder: "",
			},
		},
		Security: SecurityConfig{
			MemoryLock:        true,
			SessionEnabled:    true,
			SessionTTLMinutes: 15,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.lumen/logs/lumen.log",
		},
	}
}
