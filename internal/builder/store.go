package builder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/preset"
)

// DuplicateOffset is how far a duplicated element is shifted right and down.
const DuplicateOffset = 20.0

// Gateway persists the saved-template list as a whole.
// Load never fails: unreadable data comes back as an empty list.
type Gateway interface {
	Load(ctx context.Context) []domain.TemplateData
	Save(ctx context.Context, templates []domain.TemplateData) error
}

// Snapshot is the whole editor state in one value, as sent to the frontend.
type Snapshot struct {
	ActiveTemplate  domain.TemplateData     `json:"activeTemplate"`
	SelectedElement *domain.CanvasElement   `json:"selectedElement"`
	Zoom            float64                 `json:"zoom"`
	SavedTemplates  []domain.TemplateData   `json:"savedTemplates"`
	InvoiceData     domain.InvoiceData      `json:"invoiceData"`
	Presets         []domain.TemplatePreset `json:"presets"`
}

// Store owns the editor state: the template being edited, the selection,
// zoom, the saved-template list and the invoice payload.
//
// Every operation runs under one mutex, so callers from the Wails bridge and
// the MCP server observe a single total order. Emitters are invoked with the
// lock held and must not call back into the store.
type Store struct {
	mu sync.Mutex

	gateway Gateway
	catalog *preset.Catalog
	emitter EventEmitter
	newID   func() string
	now     func() time.Time

	active     domain.TemplateData
	selectedID string
	zoom       float64
	saved      []domain.TemplateData
	invoice    *domain.InvoiceData
}

type Option func(*Store)

func WithEmitter(e EventEmitter) Option {
	return func(s *Store) { s.emitter = e }
}

// WithIDGenerator replaces uuid-based ids, mostly for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithInvoice(d domain.InvoiceData) Option {
	return func(s *Store) {
		c := d.Clone()
		s.invoice = &c
	}
}

func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// New creates a store with a blank active template and loads the saved list
// from the gateway once.
func New(ctx context.Context, gateway Gateway, catalog *preset.Catalog, opts ...Option) *Store {
	s := &Store{
		gateway: gateway,
		catalog: catalog,
		emitter: noopEmitter{},
		newID:   uuid.NewString,
		now:     time.Now,
		zoom:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = preset.Default()
	}
	if s.invoice == nil {
		d := SampleInvoice(s.now())
		s.invoice = &d
	}
	s.active = NewBlankTemplate(s.newID())
	s.saved = s.loadSaved(ctx)
	return s
}

func (s *Store) loadSaved(ctx context.Context) []domain.TemplateData {
	if s.gateway == nil {
		return []domain.TemplateData{}
	}
	saved := s.gateway.Load(ctx)
	if saved == nil {
		saved = []domain.TemplateData{}
	}
	return saved
}

// ─────────────────────────────────────────────────────────────
// Element operations
// ─────────────────────────────────────────────────────────────

// AddElement appends a new element of type t at (x, y) with the type's
// default size and style, and selects it.
func (s *Store) AddElement(ctx context.Context, t domain.ElementType, x, y float64) domain.CanvasElement {
	s.mu.Lock()
	defer s.mu.Unlock()

	el := NewElement(s.newID(), t, x, y)
	s.active.Elements = append(s.active.Elements, el)
	s.selectedID = el.ID

	s.emitTemplate(ctx)
	s.emitSelection(ctx)
	return el.Clone()
}

// UpdateElement replaces the element with the same id. Unknown ids are ignored.
func (s *Store) UpdateElement(ctx context.Context, el domain.CanvasElement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.active.IndexOf(el.ID)
	if idx < 0 {
		return
	}
	el = el.Clone()
	normalizeSize(&el.Position)
	s.active.Elements[idx] = el

	s.emitTemplate(ctx)
	if s.selectedID == el.ID {
		s.emitSelection(ctx)
	}
}

// DeleteElement removes the element and clears the selection if it pointed
// at it. Unknown ids are ignored.
func (s *Store) DeleteElement(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.active.IndexOf(id)
	if idx < 0 {
		return
	}
	s.active.Elements = append(s.active.Elements[:idx], s.active.Elements[idx+1:]...)

	s.emitTemplate(ctx)
	if s.selectedID == id {
		s.selectedID = ""
		s.emitSelection(ctx)
	}
}

// DuplicateElement appends a shifted copy of the element under a fresh id
// and selects the copy. Unknown ids are ignored.
func (s *Store) DuplicateElement(ctx context.Context, id string) (domain.CanvasElement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.active.IndexOf(id)
	if idx < 0 {
		return domain.CanvasElement{}, false
	}
	dup := s.active.Elements[idx].Clone()
	dup.ID = s.newID()
	dup.Position.X += DuplicateOffset
	dup.Position.Y += DuplicateOffset
	s.active.Elements = append(s.active.Elements, dup)
	s.selectedID = dup.ID

	s.emitTemplate(ctx)
	s.emitSelection(ctx)
	return dup.Clone(), true
}

// SetSelectedElement selects el, or clears the selection when el is nil.
// An element that is not part of the active template clears it too.
func (s *Store) SetSelectedElement(ctx context.Context, el *domain.CanvasElement) {
	id := ""
	if el != nil {
		id = el.ID
	}
	s.SelectElement(ctx, id)
}

// SelectElement selects by id; "" or an unknown id clears the selection.
func (s *Store) SelectElement(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active.IndexOf(id) < 0 {
		id = ""
	}
	s.selectedID = id
	s.emitSelection(ctx)
}

// ─────────────────────────────────────────────────────────────
// Template operations
// ─────────────────────────────────────────────────────────────

// ApplyTemplate makes a private copy of the preset the active template.
// Unknown preset ids are ignored.
func (s *Store) ApplyTemplate(ctx context.Context, presetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.catalog.Get(presetID)
	if !ok {
		return
	}
	s.active = p.Template
	s.selectedID = ""

	s.emitTemplate(ctx)
	s.emitSelection(ctx)
}

// SaveTemplate stores a copy of the active template in the saved list,
// replacing an entry with the same id, and persists the whole list.
// Persistence errors are logged and otherwise ignored. It returns the id the
// template was saved under.
func (s *Store) SaveTemplate(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active.ID == "" {
		s.active.ID = s.newID()
		s.emitTemplate(ctx)
	}
	copied := s.active.Clone()

	replaced := false
	for i := range s.saved {
		if s.saved[i].ID == copied.ID {
			s.saved[i] = copied
			replaced = true
			break
		}
	}
	if !replaced {
		s.saved = append(s.saved, copied)
	}

	s.persist(ctx)
	s.emitSaved(ctx)
	return copied.ID
}

// LoadTemplate makes a private copy of a saved template the active one.
// Unknown ids are ignored.
func (s *Store) LoadTemplate(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.saved {
		if t.ID == id {
			s.active = t.Clone()
			s.selectedID = ""
			s.emitTemplate(ctx)
			s.emitSelection(ctx)
			return
		}
	}
}

// DeleteSavedTemplate removes an entry from the saved list and persists.
// Unknown ids are ignored.
func (s *Store) DeleteSavedTemplate(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.saved {
		if t.ID == id {
			s.saved = append(s.saved[:i], s.saved[i+1:]...)
			s.persist(ctx)
			s.emitSaved(ctx)
			return
		}
	}
}

// ReloadSaved re-reads the saved list from the gateway, e.g. after the
// backing file was changed by another process.
func (s *Store) ReloadSaved(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = s.loadSaved(ctx)
	s.emitSaved(ctx)
}

// SetActiveTemplate replaces the whole active template, e.g. after document
// level edits of name, size or background. Non-positive element sizes are
// clamped; duplicate element ids are rejected.
func (s *Store) SetActiveTemplate(ctx context.Context, t domain.TemplateData) error {
	t = t.Clone()
	if t.Elements == nil {
		t.Elements = []domain.CanvasElement{}
	}
	for i := range t.Elements {
		normalizeSize(&t.Elements[i].Position)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("set active template: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = t
	s.emitTemplate(ctx)
	if s.selectedID != "" && s.active.IndexOf(s.selectedID) < 0 {
		s.selectedID = ""
		s.emitSelection(ctx)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────
// View and invoice
// ─────────────────────────────────────────────────────────────

// SetZoom stores the zoom factor as given.
func (s *Store) SetZoom(ctx context.Context, zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.zoom = zoom
	s.emitter.Emit(ctx, EventZoomChanged, zoom)
}

func (s *Store) SetInvoiceData(ctx context.Context, d domain.InvoiceData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := d.Clone()
	s.invoice = &c
	s.emitter.Emit(ctx, EventInvoiceChanged, c.Clone())
}

// ─────────────────────────────────────────────────────────────
// Read side: every getter returns a copy
// ─────────────────────────────────────────────────────────────

func (s *Store) ActiveTemplate() domain.TemplateData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone()
}

// Element returns a copy of one element of the active template.
func (s *Store) Element(id string) (domain.CanvasElement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.active.IndexOf(id)
	if idx < 0 {
		return domain.CanvasElement{}, false
	}
	return s.active.Elements[idx].Clone(), true
}

// SelectedElement returns the live selected element, or nil.
func (s *Store) SelectedElement() *domain.CanvasElement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

func (s *Store) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

func (s *Store) SavedTemplates() []domain.TemplateData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTemplates(s.saved)
}

func (s *Store) InvoiceData() domain.InvoiceData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoice.Clone()
}

func (s *Store) Presets() []domain.TemplatePreset {
	return s.catalog.List()
}

func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ActiveTemplate:  s.active.Clone(),
		SelectedElement: s.selectedLocked(),
		Zoom:            s.zoom,
		SavedTemplates:  cloneTemplates(s.saved),
		InvoiceData:     s.invoice.Clone(),
		Presets:         s.catalog.List(),
	}
}

// ─────────────────────────────────────────────────────────────
// Internals (callers hold s.mu)
// ─────────────────────────────────────────────────────────────

func (s *Store) selectedLocked() *domain.CanvasElement {
	if s.selectedID == "" {
		return nil
	}
	idx := s.active.IndexOf(s.selectedID)
	if idx < 0 {
		return nil
	}
	el := s.active.Elements[idx].Clone()
	return &el
}

func (s *Store) persist(ctx context.Context) {
	if s.gateway == nil {
		return
	}
	if err := s.gateway.Save(ctx, cloneTemplates(s.saved)); err != nil {
		log.Printf("[BUILDER] Failed to persist saved templates: %v", err)
	}
}

func (s *Store) emitTemplate(ctx context.Context) {
	s.emitter.Emit(ctx, EventTemplateChanged, s.active.Clone())
}

func (s *Store) emitSelection(ctx context.Context) {
	s.emitter.Emit(ctx, EventSelectionChanged, s.selectedLocked())
}

func (s *Store) emitSaved(ctx context.Context) {
	s.emitter.Emit(ctx, EventSavedChanged, cloneTemplates(s.saved))
}

func normalizeSize(p *domain.Position) {
	if p.Width <= 0 {
		p.Width = domain.MinElementSize
	}
	if p.Height <= 0 {
		p.Height = domain.MinElementSize
	}
}

func cloneTemplates(in []domain.TemplateData) []domain.TemplateData {
	out := make([]domain.TemplateData, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}
