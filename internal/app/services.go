package app

import (
	"context"
	"errors"
	"log"
	"time"

	"invoicebuilder/internal/builder"
	"invoicebuilder/internal/config"
	"invoicebuilder/internal/imagefetch"
	"invoicebuilder/internal/kvstore"
	"invoicebuilder/internal/preset"
	"invoicebuilder/internal/secret"
	"invoicebuilder/internal/storage"
)

// ErrEphemeralStorage is returned for backup work while the configured
// storage could not be opened and templates live only in memory.
var ErrEphemeralStorage = errors.New("storage unavailable, running in memory")

// Services is the wired backend shared by the desktop app, the standalone
// MCP server and the CLI.
type Services struct {
	Config    *config.Config
	Templates *storage.TemplateStore
	Backup    *storage.Backup
	Window    *storage.WindowSettings
	Builder   *builder.Store
	Images    *imagefetch.Fetcher
	Presets   *preset.Catalog

	// Ephemeral is set when storage fell back to memory.
	Ephemeral bool
}

// OpenServices opens storage and builds the editor store. Storage failures
// fall back to an in-memory store so the editor always starts; saved
// templates then live only for the session.
func OpenServices(ctx context.Context, cfg *config.Config, emitter builder.EventEmitter, secrets secret.SecretStore) *Services {
	if secrets == nil {
		secrets = secret.Default()
	}
	kvCfg, err := cfg.KVConfig(secrets)
	if err != nil {
		log.Printf("[APP] Failed to resolve storage password: %v", err)
	}

	ephemeral := false
	kv, err := kvstore.Open(ctx, kvCfg)
	if err != nil {
		log.Printf("[APP] Storage %s unavailable, using in-memory store: %v", kvCfg.Driver, err)
		kv = kvstore.NewMemory()
		ephemeral = true
	}

	templates := storage.NewTemplateStore(kv)
	presets := preset.Default()

	opts := []builder.Option{}
	if emitter != nil {
		opts = append(opts, builder.WithEmitter(emitter))
	}
	store := builder.New(ctx, templates, presets, opts...)

	watching, err := templates.OnExternalChange(func() {
		log.Printf("[APP] Saved templates changed on disk, reloading")
		store.ReloadSaved(ctx)
	})
	if err != nil {
		log.Printf("[APP] Failed to watch saved templates: %v", err)
	} else if watching {
		log.Printf("[APP] Watching saved templates for external changes")
	}

	return &Services{
		Config:    cfg,
		Templates: templates,
		Backup:    storage.NewBackup(templates, cfg.BackupDir(), cfg.Backup.Keep),
		Window:    storage.NewWindowSettings(kv),
		Builder:   store,
		Images:    imagefetch.New(time.Duration(cfg.HTTP.ImageTimeout), cfg.HTTP.MaxImageBytes),
		Presets:   presets,
		Ephemeral: ephemeral,
	}
}

// StartBackups schedules snapshots per the config. Nothing is scheduled
// on in-memory storage, where a snapshot would only rotate out good ones.
func (s *Services) StartBackups(ctx context.Context) error {
	if s.Ephemeral {
		log.Printf("[APP] Backups disabled: %v", ErrEphemeralStorage)
		return nil
	}
	return s.Backup.Start(ctx, s.Config.Backup.Schedule)
}

// RunBackup writes one snapshot now.
func (s *Services) RunBackup(ctx context.Context) (string, error) {
	if s.Ephemeral {
		return "", ErrEphemeralStorage
	}
	return s.Backup.Run(ctx)
}

// RestoreBackup replaces the saved templates with a backup file.
func (s *Services) RestoreBackup(ctx context.Context, path string) (int, error) {
	if s.Ephemeral {
		return 0, ErrEphemeralStorage
	}
	return s.Backup.Restore(ctx, path)
}

func (s *Services) Close() error {
	s.Backup.Stop()
	return s.Templates.Close()
}
