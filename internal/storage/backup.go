package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"invoicebuilder/internal/domain"
)

const (
	backupPattern = "backup-*.json"
	backupStamp   = "20060102-150405"
)

// Backup writes timestamped JSON snapshots of the saved-template list and
// keeps only the newest Keep of them.
type Backup struct {
	templates *TemplateStore
	dir       string
	keep      int
	now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewBackup(templates *TemplateStore, dir string, keep int) *Backup {
	return &Backup{templates: templates, dir: dir, keep: keep, now: time.Now}
}

// Run writes one snapshot now and prunes old ones. It returns the file path.
// Unreadable saved data fails the run and leaves existing backups alone.
func (b *Backup) Run(ctx context.Context) (string, error) {
	templates, err := b.templates.LoadStrict(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}

	timestamp := b.now().Format(backupStamp)
	path := filepath.Join(b.dir, "backup-"+timestamp+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	log.Printf("[BACKUP] Wrote %s", path)

	if err := b.prune(); err != nil {
		log.Printf("[BACKUP] Prune failed: %v", err)
	}
	return path, nil
}

// List returns backup file paths, newest first.
func (b *Backup) List() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(b.dir, backupPattern))
	if err != nil {
		return nil, err
	}
	// the timestamp format sorts lexically
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

func (b *Backup) prune() error {
	if b.keep <= 0 {
		return nil
	}
	files, err := b.List()
	if err != nil {
		return err
	}
	for _, f := range files[min(b.keep, len(files)):] {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("remove %s: %w", f, err)
		}
	}
	return nil
}

// Restore replaces the saved-template list with the contents of a backup.
func (b *Backup) Restore(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read backup: %w", err)
	}
	var templates []domain.TemplateData
	if err := json.Unmarshal(data, &templates); err != nil {
		return 0, fmt.Errorf("parse backup: %w", err)
	}
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("restore: %w", err)
		}
	}
	if err := b.templates.Save(ctx, templates); err != nil {
		return 0, err
	}
	return len(templates), nil
}

// Start schedules Run on a cron expression. An empty schedule disables it.
func (b *Backup) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := b.Run(ctx); err != nil {
			log.Printf("[BACKUP] Scheduled backup failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	c.Start()

	b.mu.Lock()
	b.cron = c
	b.mu.Unlock()
	log.Printf("[BACKUP] Scheduled %q into %s", schedule, b.dir)
	return nil
}

func (b *Backup) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cron != nil {
		<-b.cron.Stop().Done()
		b.cron = nil
	}
}
