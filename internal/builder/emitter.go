package builder

import (
	"context"
	"sync"
)

// Events emitted after each state change. Payloads are snapshots.
const (
	EventTemplateChanged  = "builder:template-changed"
	EventSelectionChanged = "builder:selection-changed"
	EventSavedChanged     = "builder:saved-changed"
	EventZoomChanged      = "builder:zoom-changed"
	EventInvoiceChanged   = "builder:invoice-changed"
)

// EventEmitter decouples the store from wailsRuntime.
// The App implements it by delegating to wailsRuntime.EventsEmit; the MCP
// process and tests plug in their own.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Names returns the recorded event names in emission order.
func (m *MockEmitter) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Event
	}
	return out
}

func (m *MockEmitter) Reset() {
	m.mu.Lock()
	m.Events = nil
	m.mu.Unlock()
}
