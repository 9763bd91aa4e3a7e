package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"invoicebuilder/internal/kvstore"
	"invoicebuilder/internal/secret"
)

// Environment overrides, applied after the config file.
const (
	EnvDataDir       = "INVOICE_BUILDER_DATA_DIR"
	EnvStorageDriver = "INVOICE_BUILDER_STORAGE_DRIVER"
	EnvStorageDSN    = "INVOICE_BUILDER_STORAGE_DSN"
	EnvHTTPAddr      = "INVOICE_BUILDER_HTTP_ADDR"
)

// Duration is a time.Duration that reads and writes as "5s" in JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// bare numbers are seconds
		var n float64
		if err2 := json.Unmarshal(b, &n); err2 != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(n * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

type Storage struct {
	kvstore.Config
	// PasswordSecret names a secret.SecretStore entry holding the password.
	PasswordSecret string `json:"passwordSecret,omitempty"`
}

type HTTP struct {
	Addr          string   `json:"addr"`
	ImageTimeout  Duration `json:"imageTimeout"`
	MaxImageBytes int64    `json:"maxImageBytes"`
}

type Backup struct {
	Schedule string `json:"schedule"` // cron expression, empty disables
	Keep     int    `json:"keep"`
}

// Config holds application configuration.
type Config struct {
	DataDir string  `json:"dataDir"`
	Storage Storage `json:"storage"`
	HTTP    HTTP    `json:"http"`
	Backup  Backup  `json:"backup"`
}

// DefaultDataDir is ~/.local/share/invoice-builder.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(homeDir, ".local", "share", "invoice-builder")
}

// FilePath is ~/.config/invoice-builder/config.json.
func FilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(homeDir, ".config", "invoice-builder", "config.json")
}

func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Storage: Storage{Config: kvstore.Config{Driver: kvstore.DriverSQLite}},
		HTTP: HTTP{
			Addr:          "127.0.0.1:8787",
			ImageTimeout:  Duration(15 * time.Second),
			MaxImageBytes: 10 << 20,
		},
		Backup: Backup{Schedule: "@daily", Keep: 14},
	}
}

// Load reads the config file at path over the defaults, then applies the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = FilePath()
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.fillPaths()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvStorageDriver); v != "" {
		c.Storage.Driver = kvstore.Driver(v)
	}
	if v := os.Getenv(EnvStorageDSN); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.HTTP.Addr = v
	}
}

// fillPaths places the sqlite file and file-backend directory under DataDir
// unless configured explicitly.
func (c *Config) fillPaths() {
	if c.Storage.Path != "" {
		return
	}
	switch c.Storage.Driver {
	case kvstore.DriverSQLite, "":
		c.Storage.Path = filepath.Join(c.DataDir, "invoice-builder.db")
	case kvstore.DriverFile:
		c.Storage.Path = filepath.Join(c.DataDir, "store")
	}
}

// BackupDir is where scheduled snapshots go.
func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backups")
}

// KVConfig returns the storage config with the password resolved from
// secrets when PasswordSecret is set.
func (c *Config) KVConfig(secrets secret.SecretStore) (kvstore.Config, error) {
	kv := c.Storage.Config
	if c.Storage.PasswordSecret == "" || secrets == nil {
		return kv, nil
	}
	pw, err := secrets.Get(c.Storage.PasswordSecret)
	if err != nil {
		return kv, fmt.Errorf("read secret %s: %w", c.Storage.PasswordSecret, err)
	}
	kv.Password = string(pw)
	return kv, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if path == "" {
		path = FilePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// String renders the effective config for `invoicectl config`.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
