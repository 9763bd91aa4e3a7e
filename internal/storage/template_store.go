package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/kvstore"
)

// SavedTemplatesKey is the well-known key holding the saved-template list.
const SavedTemplatesKey = "savedTemplates"

// TemplateStore persists the saved-template list as one JSON document in a
// kvstore. It fails open: anything unreadable loads as an empty list.
type TemplateStore struct {
	kv  kvstore.Store
	key string
}

func NewTemplateStore(kv kvstore.Store) *TemplateStore {
	return &TemplateStore{kv: kv, key: SavedTemplatesKey}
}

// Load returns the saved templates, or an empty list when the key is
// missing or its value cannot be read or decoded.
func (s *TemplateStore) Load(ctx context.Context) []domain.TemplateData {
	templates, err := s.LoadStrict(ctx)
	if err != nil {
		log.Printf("[STORAGE] %v, starting empty", err)
		return []domain.TemplateData{}
	}
	return templates
}

// LoadStrict is Load without the fallback: read and decode errors are
// returned. A missing key is still an empty list.
func (s *TemplateStore) LoadStrict(ctx context.Context) ([]domain.TemplateData, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	if !ok || len(raw) == 0 {
		return []domain.TemplateData{}, nil
	}

	var templates []domain.TemplateData
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.key, err)
	}
	if templates == nil {
		return []domain.TemplateData{}, nil
	}
	for i := range templates {
		if templates[i].Elements == nil {
			templates[i].Elements = []domain.CanvasElement{}
		}
	}
	return templates, nil
}

// Save replaces the stored list.
func (s *TemplateStore) Save(ctx context.Context, templates []domain.TemplateData) error {
	if templates == nil {
		templates = []domain.TemplateData{}
	}
	raw, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("marshal templates: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save templates: %w", err)
	}
	return nil
}

// Get returns one saved template by id.
func (s *TemplateStore) Get(ctx context.Context, id string) (domain.TemplateData, bool) {
	for _, t := range s.Load(ctx) {
		if t.ID == id {
			return t, true
		}
	}
	return domain.TemplateData{}, false
}

// OnExternalChange registers fn to run when the list is modified by another
// process. It reports false when the backend cannot watch.
func (s *TemplateStore) OnExternalChange(fn func()) (bool, error) {
	w, ok := s.kv.(kvstore.Watcher)
	if !ok {
		return false, nil
	}
	if err := w.Watch(s.key, fn); err != nil {
		return false, fmt.Errorf("watch %s: %w", s.key, err)
	}
	return true, nil
}

func (s *TemplateStore) Close() error {
	return s.kv.Close()
}
