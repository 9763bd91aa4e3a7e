package kvstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"invoicebuilder/internal/kvstore"
)

func backends(t *testing.T) map[string]kvstore.Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := kvstore.Open(context.Background(), kvstore.Config{
		Driver: kvstore.DriverSQLite,
		Path:   filepath.Join(dir, "kv.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	file, err := kvstore.Open(context.Background(), kvstore.Config{
		Driver: kvstore.DriverFile,
		Path:   filepath.Join(dir, "files"),
	})
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	stores := map[string]kvstore.Store{
		"sqlite": sqlite,
		"file":   file,
		"memory": kvstore.NewMemory(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
			}
			if err := s.Set(ctx, "savedTemplates", []byte(`[{"id":"a"}]`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, "savedTemplates", []byte(`[{"id":"b"}]`)); err != nil {
				t.Fatalf("Set again: %v", err)
			}
			got, ok, err := s.Get(ctx, "savedTemplates")
			if err != nil || !ok {
				t.Fatalf("Get = ok %v, err %v", ok, err)
			}
			if string(got) != `[{"id":"b"}]` {
				t.Errorf("value = %s", got)
			}
		})
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := kvstore.Open(context.Background(), kvstore.Config{Driver: "cassandra"})
	if !errors.Is(err, kvstore.ErrUnsupportedDriver) {
		t.Fatalf("err = %v, want ErrUnsupportedDriver", err)
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kv.db")

	s, err := kvstore.OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = kvstore.OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get = %q ok %v err %v", got, ok, err)
	}
}

func TestFileStore_WatchIgnoresOwnWrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := kvstore.OpenFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Close()

	changed := make(chan struct{}, 4)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	if err := fs.Watch("savedTemplates", notify); err != nil {
		t.Fatal(err)
	}

	if err := fs.Set(ctx, "savedTemplates", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
		t.Fatal("own write should not notify")
	case <-time.After(200 * time.Millisecond):
	}

	external := filepath.Join(dir, "savedTemplates.json")
	if err := os.WriteFile(external, []byte(`[{"id":"x"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("external write was not reported")
	}
}
