package app

import (
	"context"
	"fmt"
	"log"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"invoicebuilder/internal/builder"
	"invoicebuilder/internal/config"
	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/httpapi"
	mcpserver "invoicebuilder/internal/mcp"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	svc   *Services
	store *builder.Store
	mcp   *mcpserver.Server

	stopHTTP context.CancelFunc
	apiAddr  string
}

// New creates a new App.
func New() *App {
	return &App{}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	cfg, err := config.Load("")
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to load config, using defaults: %v", err)
		cfg = config.Default()
	}

	emitter := wailsEmitter{ctx: ctx}
	a.svc = OpenServices(ctx, cfg, emitter, nil)
	a.store = a.svc.Builder

	size := a.svc.Window.Load(ctx)
	wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)

	if err := a.svc.StartBackups(ctx); err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to schedule backups: %v", err)
	}

	// In-process MCP: agents edit the live canvas, destructive tools ask the user
	a.mcp = mcpserver.New(ctx, mcpserver.Deps{
		Emitter:         emitter,
		Store:           a.store,
		Images:          a.svc.Images,
		RequireApproval: true,
	})

	// Local HTTP API: image proxy for the canvas, PDF rendering and MCP
	handlers := httpapi.NewHandlers(a.svc.Images, a.svc.Presets, a.svc.Templates, a.store.InvoiceData)
	httpCtx, cancel := context.WithCancel(ctx)
	a.stopHTTP = cancel
	a.apiAddr = cfg.HTTP.Addr
	go func() {
		if err := httpapi.Serve(httpCtx, cfg.HTTP.Addr, httpapi.NewRouter(handlers, a.mcp.Handler())); err != nil {
			wailsRuntime.LogErrorf(ctx, "HTTP API stopped: %v", err)
		}
	}()

	wailsRuntime.LogInfof(ctx, "Invoice builder started (storage %s, api %s)", cfg.Storage.Driver, cfg.HTTP.Addr)
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.stopHTTP != nil {
		a.stopHTTP()
	}
	if a.svc != nil {
		w, h := wailsRuntime.WindowGetSize(ctx)
		if err := a.svc.Window.Save(ctx, w, h); err != nil {
			log.Printf("[APP] Failed to save window size: %v", err)
		}
		if err := a.svc.Close(); err != nil {
			log.Printf("[APP] Failed to close storage: %v", err)
		}
	}
}

// wailsEmitter forwards store and MCP events to the frontend. Events always
// go out on the Wails context, whatever context the caller holds.
type wailsEmitter struct {
	ctx context.Context
}

func (e wailsEmitter) Emit(_ context.Context, event string, data any) {
	wailsRuntime.EventsEmit(e.ctx, event, data)
}

// APIBaseURL is where the frontend reaches the image proxy.
func (a *App) APIBaseURL() string {
	return fmt.Sprintf("http://%s/api", a.apiAddr)
}

// ============================================================
// MCP approvals
// ============================================================

// ApproveMCPAction approves a pending destructive MCP tool call.
func (a *App) ApproveMCPAction(actionID string) {
	a.mcp.Approve(actionID)
}

// PendingMCPActions lists destructive MCP tool calls awaiting an answer.
func (a *App) PendingMCPActions() []mcpserver.PendingAction {
	return a.mcp.PendingApprovals()
}

// RejectMCPAction rejects a pending destructive MCP tool call.
func (a *App) RejectMCPAction(actionID string) {
	a.mcp.Reject(actionID)
}

// ============================================================
// Builder state
// ============================================================

// GetState returns the whole editor state for the initial render.
func (a *App) GetState() builder.Snapshot {
	return a.store.State()
}

func (a *App) ListPresets() []domain.TemplatePreset {
	return a.store.Presets()
}

// AddElement adds an element from the toolbar and selects it.
func (a *App) AddElement(elementType string, x, y float64) (domain.CanvasElement, error) {
	t := domain.ElementType(elementType)
	if !t.Valid() {
		return domain.CanvasElement{}, fmt.Errorf("unknown element type %q", elementType)
	}
	return a.store.AddElement(a.ctx, t, x, y), nil
}

func (a *App) UpdateElement(el domain.CanvasElement) {
	a.store.UpdateElement(a.ctx, el)
}

func (a *App) DeleteElement(id string) {
	a.store.DeleteElement(a.ctx, id)
}

// DuplicateElement returns the copy, or nil when id is unknown.
func (a *App) DuplicateElement(id string) *domain.CanvasElement {
	dup, ok := a.store.DuplicateElement(a.ctx, id)
	if !ok {
		return nil
	}
	return &dup
}

func (a *App) SelectElement(id string) {
	a.store.SelectElement(a.ctx, id)
}

func (a *App) ClearSelection() {
	a.store.SetSelectedElement(a.ctx, nil)
}

// ApplyTemplate replaces the canvas with a preset.
func (a *App) ApplyTemplate(presetID string) error {
	if _, ok := a.svc.Presets.Get(presetID); !ok {
		return fmt.Errorf("preset %s not found", presetID)
	}
	a.store.ApplyTemplate(a.ctx, presetID)
	return nil
}

// SaveTemplate saves the active template and returns its id.
func (a *App) SaveTemplate() string {
	return a.store.SaveTemplate(a.ctx)
}

func (a *App) LoadTemplate(id string) {
	a.store.LoadTemplate(a.ctx, id)
}

func (a *App) DeleteSavedTemplate(id string) {
	a.store.DeleteSavedTemplate(a.ctx, id)
}

// SetActiveTemplate applies document-level edits (name, size, background).
func (a *App) SetActiveTemplate(t domain.TemplateData) error {
	return a.store.SetActiveTemplate(a.ctx, t)
}

func (a *App) SetZoom(zoom float64) {
	a.store.SetZoom(a.ctx, zoom)
}

func (a *App) SetInvoiceData(d domain.InvoiceData) {
	a.store.SetInvoiceData(a.ctx, d)
}
