package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"invoicebuilder/internal/app"
	"invoicebuilder/internal/builder"
	"invoicebuilder/internal/config"
	"invoicebuilder/internal/kvstore"
	"invoicebuilder/internal/secret"
)

func testConfig(t *testing.T, driver kvstore.Driver) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Storage.Driver = driver
	cfg.Backup.Schedule = ""
	switch driver {
	case kvstore.DriverSQLite:
		cfg.Storage.Path = filepath.Join(cfg.DataDir, "kv.db")
	case kvstore.DriverFile:
		cfg.Storage.Path = filepath.Join(cfg.DataDir, "store")
	}
	return cfg
}

func TestOpenServices_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, kvstore.DriverSQLite)

	svc := app.OpenServices(ctx, cfg, nil, secret.NewMapStore())
	svc.Builder.ApplyTemplate(ctx, "modern")
	id := svc.Builder.SaveTemplate(ctx)
	if err := svc.Close(); err != nil {
		t.Fatal(err)
	}

	svc = app.OpenServices(ctx, cfg, nil, secret.NewMapStore())
	defer svc.Close()
	saved := svc.Builder.SavedTemplates()
	if len(saved) != 1 || saved[0].ID != id {
		t.Fatalf("saved after restart = %+v", saved)
	}
}

func TestOpenServices_FallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "cassandra")

	svc := app.OpenServices(ctx, cfg, nil, secret.NewMapStore())
	defer svc.Close()

	svc.Builder.SaveTemplate(ctx)
	if n := len(svc.Builder.SavedTemplates()); n != 1 {
		t.Errorf("saved = %d, want 1 in memory", n)
	}
	if !svc.Ephemeral {
		t.Error("fallback store should be marked ephemeral")
	}
}

func TestOpenServices_NoBackupsInMemory(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "cassandra")
	cfg.Backup.Schedule = "@every 1s"
	cfg.Backup.Keep = 1

	existing := filepath.Join(cfg.BackupDir(), "backup-20260101-000000.json")
	if err := os.MkdirAll(cfg.BackupDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	svc := app.OpenServices(ctx, cfg, nil, secret.NewMapStore())
	defer svc.Close()

	if err := svc.StartBackups(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RunBackup(ctx); !errors.Is(err, app.ErrEphemeralStorage) {
		t.Errorf("RunBackup err = %v, want ErrEphemeralStorage", err)
	}
	if _, err := svc.RestoreBackup(ctx, existing); !errors.Is(err, app.ErrEphemeralStorage) {
		t.Errorf("RestoreBackup err = %v, want ErrEphemeralStorage", err)
	}

	time.Sleep(1500 * time.Millisecond)
	files, _ := svc.Backup.List()
	if len(files) != 1 || files[0] != existing {
		t.Errorf("backups = %v, want only %s", files, existing)
	}
}

func TestOpenServices_ReloadsExternalChanges(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, kvstore.DriverFile)
	emitter := &builder.MockEmitter{}

	svc := app.OpenServices(ctx, cfg, emitter, secret.NewMapStore())
	defer svc.Close()

	external := filepath.Join(cfg.Storage.Path, "savedTemplates.json")
	body := `[{"id":"ext","name":"From elsewhere","elements":[],"width":595,"height":842}]`
	if err := os.WriteFile(external, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		saved := svc.Builder.SavedTemplates()
		if len(saved) == 1 && saved[0].ID == "ext" {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("external change was not reloaded")
}
