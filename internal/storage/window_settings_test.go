package storage_test

import (
	"context"
	"testing"

	"invoicebuilder/internal/kvstore"
	"invoicebuilder/internal/storage"
)

func TestWindowSettings(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	ws := storage.NewWindowSettings(kv)

	got := ws.Load(ctx)
	if got.Width != storage.DefaultWindowWidth || got.Height != storage.DefaultWindowHeight {
		t.Fatalf("defaults = %+v", got)
	}

	if err := ws.Save(ctx, 1600, 1000); err != nil {
		t.Fatal(err)
	}
	if got := ws.Load(ctx); got.Width != 1600 || got.Height != 1000 {
		t.Errorf("after save = %+v", got)
	}

	// a collapsed window is not restored
	if err := ws.Save(ctx, 200, 100); err != nil {
		t.Fatal(err)
	}
	if got := ws.Load(ctx); got.Width != storage.DefaultWindowWidth || got.Height != storage.DefaultWindowHeight {
		t.Errorf("tiny size = %+v, want defaults", got)
	}

	kv.Set(ctx, storage.WindowSizeKey, []byte("{nope"))
	if got := ws.Load(ctx); got.Width != storage.DefaultWindowWidth {
		t.Errorf("corrupt = %+v, want defaults", got)
	}
}
