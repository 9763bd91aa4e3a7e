package kvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore keeps one <key>.json file per key in a directory. Writes go
// through a temp file and rename so readers never see a partial value.
type FileStore struct {
	dir string

	mu       sync.Mutex
	written  map[string][]byte // last value written by this process, per key
	watcher  *fsnotify.Watcher
	handlers map[string][]func() // file path -> callbacks
}

// OpenFile creates dir if needed and returns a FileStore rooted there.
func OpenFile(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("open file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{
		dir:      dir,
		written:  make(map[string][]byte),
		handlers: make(map[string][]func()),
	}, nil
}

func (f *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(f.dir, safe+".json")
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	path := f.path(key)
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}

	f.mu.Lock()
	f.written[path] = append([]byte(nil), value...)
	f.mu.Unlock()

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Watch calls fn when the file behind key is changed by another process.
// Writes made through this FileStore do not trigger fn.
func (f *FileStore) Watch(key string, fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		// fsnotify watches dirs for file events
		if err := w.Add(f.dir); err != nil {
			w.Close()
			return fmt.Errorf("watch %s: %w", f.dir, err)
		}
		f.watcher = w
		go f.watchLoop(w)
	}
	path := f.path(key)
	f.handlers[path] = append(f.handlers[path], fn)
	return nil
}

func (f *FileStore) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			f.dispatch(filepath.Clean(event.Name))
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("[STORAGE] File watcher error: %v", err)
		}
	}
}

func (f *FileStore) dispatch(path string) {
	f.mu.Lock()
	handlers := append([]func(){}, f.handlers[path]...)
	own := f.written[path]
	f.mu.Unlock()

	if len(handlers) == 0 {
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if own != nil && bytes.Equal(content, own) {
		return
	}
	for _, fn := range handlers {
		fn()
	}
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watcher == nil {
		return nil
	}
	err := f.watcher.Close()
	f.watcher = nil
	return err
}
