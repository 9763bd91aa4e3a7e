package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"invoicebuilder/internal/kvstore"
)

// WindowSizeKey holds the editor window dimensions between sessions.
const WindowSizeKey = "windowSize"

const (
	DefaultWindowWidth  = 1440
	DefaultWindowHeight = 900
	minWindowWidth      = 1024
	minWindowHeight     = 700
)

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSettings persists the main window size next to the saved templates.
type WindowSettings struct {
	kv kvstore.Store
}

func NewWindowSettings(kv kvstore.Store) *WindowSettings {
	return &WindowSettings{kv: kv}
}

// Load returns the saved window dimensions, or the defaults when nothing
// usable is stored.
func (s *WindowSettings) Load(ctx context.Context) WindowSize {
	size := WindowSize{Width: DefaultWindowWidth, Height: DefaultWindowHeight}
	raw, ok, err := s.kv.Get(ctx, WindowSizeKey)
	if err != nil {
		log.Printf("[STORAGE] Failed to read window size: %v", err)
		return size
	}
	if !ok {
		return size
	}
	var saved WindowSize
	if err := json.Unmarshal(raw, &saved); err != nil {
		log.Printf("[STORAGE] Ignoring corrupt window size: %v", err)
		return size
	}
	if saved.Width >= minWindowWidth {
		size.Width = saved.Width
	}
	if saved.Height >= minWindowHeight {
		size.Height = saved.Height
	}
	return size
}

// Save persists the current window dimensions.
func (s *WindowSettings) Save(ctx context.Context, width, height int) error {
	raw, err := json.Marshal(WindowSize{Width: width, Height: height})
	if err != nil {
		return fmt.Errorf("marshal window size: %w", err)
	}
	if err := s.kv.Set(ctx, WindowSizeKey, raw); err != nil {
		return fmt.Errorf("save window size: %w", err)
	}
	return nil
}
