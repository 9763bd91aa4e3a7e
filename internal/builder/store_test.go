package builder_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"invoicebuilder/internal/builder"
	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/preset"
)

// memGateway is an in-memory Gateway that records every Save.
type memGateway struct {
	mu      sync.Mutex
	data    []domain.TemplateData
	saves   int
	saveErr error
}

func (g *memGateway) Load(context.Context) []domain.TemplateData {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.TemplateData, len(g.data))
	for i, t := range g.data {
		out[i] = t.Clone()
	}
	return out
}

func (g *memGateway) Save(_ context.Context, templates []domain.TemplateData) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves++
	if g.saveErr != nil {
		return g.saveErr
	}
	g.data = templates
	return nil
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newStore(t *testing.T, opts ...builder.Option) (*builder.Store, *memGateway) {
	t.Helper()
	gw := &memGateway{}
	opts = append([]builder.Option{builder.WithIDGenerator(seqIDs())}, opts...)
	return builder.New(context.Background(), gw, preset.Default(), opts...), gw
}

func TestNew_InitialState(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s, _ := newStore(t, builder.WithClock(func() time.Time { return now }))

	st := s.State()
	if len(st.ActiveTemplate.Elements) != 0 {
		t.Errorf("elements = %d, want 0", len(st.ActiveTemplate.Elements))
	}
	if st.ActiveTemplate.Width != 595 || st.ActiveTemplate.Height != 842 {
		t.Errorf("size = %vx%v", st.ActiveTemplate.Width, st.ActiveTemplate.Height)
	}
	if st.ActiveTemplate.Name != "Blank Template" {
		t.Errorf("name = %q", st.ActiveTemplate.Name)
	}
	if st.SelectedElement != nil {
		t.Error("expected no selection")
	}
	if st.Zoom != 1 {
		t.Errorf("zoom = %v, want 1", st.Zoom)
	}
	if st.InvoiceData.Number != "INV-001" || st.InvoiceData.DueDate != "2025-03-31" {
		t.Errorf("sample invoice = %s due %s", st.InvoiceData.Number, st.InvoiceData.DueDate)
	}
	if len(st.Presets) != 3 {
		t.Errorf("presets = %d, want 3", len(st.Presets))
	}
}

func TestNew_LoadsSavedOnce(t *testing.T) {
	gw := &memGateway{data: []domain.TemplateData{builder.NewBlankTemplate("saved-1")}}
	s := builder.New(context.Background(), gw, preset.Default())

	saved := s.SavedTemplates()
	if len(saved) != 1 || saved[0].ID != "saved-1" {
		t.Fatalf("saved = %+v", saved)
	}
	if gw.saves != 0 {
		t.Errorf("construction must not save, got %d saves", gw.saves)
	}
}

func TestAddElement_TextAtBlank(t *testing.T) {
	s, _ := newStore(t)
	s.AddElement(context.Background(), domain.ElementTypeText, 50, 50)

	tpl := s.ActiveTemplate()
	if len(tpl.Elements) != 1 {
		t.Fatalf("elements = %d, want 1", len(tpl.Elements))
	}
	el := tpl.Elements[0]
	if el.Type != domain.ElementTypeText {
		t.Errorf("type = %s", el.Type)
	}
	if el.Position.X != 50 || el.Position.Y != 50 || el.Position.Width != 100 || el.Position.Height != 40 {
		t.Errorf("position = %+v", el.Position)
	}
	if el.Content != "Text" {
		t.Errorf("content = %q", el.Content)
	}
	if *el.Style.FontSize != 12 || *el.Style.Color != "#000000" {
		t.Errorf("style = %v %v", *el.Style.FontSize, *el.Style.Color)
	}
	sel := s.SelectedElement()
	if sel == nil || sel.ID != el.ID {
		t.Fatalf("selected = %+v, want %s", sel, el.ID)
	}
}

func TestAddElement_DefaultSizes(t *testing.T) {
	tests := []struct {
		typ  domain.ElementType
		w, h float64
	}{
		{domain.ElementTypeLogo, 120, 60},
		{domain.ElementTypeRectangle, 100, 100},
		{domain.ElementTypeLine, 200, 2},
		{domain.ElementTypeImage, 150, 150},
		{domain.ElementTypeItemsTable, 500, 200},
		{domain.ElementTypeNotes, 300, 80},
		{domain.ElementTypeTable, 100, 40},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			s, _ := newStore(t)
			el := s.AddElement(context.Background(), tt.typ, 0, 0)
			if el.Position.Width != tt.w || el.Position.Height != tt.h {
				t.Errorf("size = %vx%v, want %vx%v", el.Position.Width, el.Position.Height, tt.w, tt.h)
			}
		})
	}
}

func TestAddElement_UniqueIDs(t *testing.T) {
	s := builder.New(context.Background(), &memGateway{}, preset.Default())
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		s.AddElement(ctx, domain.ElementTypes[i%len(domain.ElementTypes)], float64(i), float64(i))
	}
	if err := s.ActiveTemplate().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestUpdateElement_SelectionFollows(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	el := s.AddElement(ctx, domain.ElementTypeText, 10, 10)

	el.Position.X = 200
	el.Content = "Hello"
	el.Style.Color = domain.Ptr("#ff0000")
	s.UpdateElement(ctx, el)

	sel := s.SelectedElement()
	if sel == nil {
		t.Fatal("selection lost")
	}
	if !reflect.DeepEqual(*sel, el) {
		t.Errorf("selected = %+v\nwant %+v", *sel, el)
	}
}

func TestUpdateElement_UnknownIDIsNoop(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	s.AddElement(ctx, domain.ElementTypeText, 10, 10)
	before := s.ActiveTemplate()

	s.UpdateElement(ctx, domain.CanvasElement{ID: "missing", Type: domain.ElementTypeText})

	if !reflect.DeepEqual(before, s.ActiveTemplate()) {
		t.Error("template changed on unknown id")
	}
}

func TestUpdateElement_ClampsSize(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	el := s.AddElement(ctx, domain.ElementTypeRectangle, 0, 0)
	el.Position.Width = -5
	el.Position.Height = 0
	s.UpdateElement(ctx, el)

	got, _ := s.Element(el.ID)
	if got.Position.Width != domain.MinElementSize || got.Position.Height != domain.MinElementSize {
		t.Errorf("size = %vx%v", got.Position.Width, got.Position.Height)
	}
}

func TestUpdateElement_CallerCannotMutateStore(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	el := s.AddElement(ctx, domain.ElementTypeText, 0, 0)
	el.Style.FontSize = domain.Ptr(20.0)
	s.UpdateElement(ctx, el)

	*el.Style.FontSize = 99
	got, _ := s.Element(el.ID)
	if *got.Style.FontSize != 20 {
		t.Errorf("font size = %v, want 20", *got.Style.FontSize)
	}
}

func TestDeleteElement_Idempotent(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	a := s.AddElement(ctx, domain.ElementTypeText, 0, 0)
	s.AddElement(ctx, domain.ElementTypeLogo, 0, 0)

	s.DeleteElement(ctx, a.ID)
	s.DeleteElement(ctx, a.ID)

	tpl := s.ActiveTemplate()
	if len(tpl.Elements) != 1 || tpl.Elements[0].Type != domain.ElementTypeLogo {
		t.Fatalf("elements = %+v", tpl.Elements)
	}
}

func TestDeleteElement_ClearsSelection(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	s.AddElement(ctx, domain.ElementTypeText, 0, 0)

	s.DeleteElement(ctx, s.SelectedElement().ID)

	if s.SelectedElement() != nil {
		t.Fatal("selection should be cleared")
	}
}

func TestDeleteElement_KeepsOtherSelection(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	a := s.AddElement(ctx, domain.ElementTypeText, 0, 0)
	b := s.AddElement(ctx, domain.ElementTypeText, 0, 0)

	s.DeleteElement(ctx, a.ID)

	if sel := s.SelectedElement(); sel == nil || sel.ID != b.ID {
		t.Fatalf("selected = %+v, want %s", sel, b.ID)
	}
}

func TestDuplicateElement(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	orig := s.AddElement(ctx, domain.ElementTypeRectangle, 30, 40)

	dup, ok := s.DuplicateElement(ctx, orig.ID)
	if !ok {
		t.Fatal("duplicate failed")
	}
	if dup.ID == orig.ID {
		t.Fatal("duplicate reused id")
	}
	if dup.Position.X != 50 || dup.Position.Y != 60 {
		t.Errorf("position = %v,%v, want 50,60", dup.Position.X, dup.Position.Y)
	}

	want := orig
	want.ID = dup.ID
	want.Position.X += builder.DuplicateOffset
	want.Position.Y += builder.DuplicateOffset
	if !reflect.DeepEqual(dup, want) {
		t.Errorf("dup = %+v\nwant %+v", dup, want)
	}
	if sel := s.SelectedElement(); sel == nil || sel.ID != dup.ID {
		t.Error("duplicate should be selected")
	}
	if n := len(s.ActiveTemplate().Elements); n != 2 {
		t.Errorf("elements = %d, want 2", n)
	}
}

func TestDuplicateElement_DoesNotShareStyle(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	orig := s.AddElement(ctx, domain.ElementTypeText, 0, 0)
	dup, _ := s.DuplicateElement(ctx, orig.ID)

	dup.Style.FontSize = domain.Ptr(30.0)
	s.UpdateElement(ctx, dup)

	got, _ := s.Element(orig.ID)
	if *got.Style.FontSize != 12 {
		t.Errorf("original font size = %v, want 12", *got.Style.FontSize)
	}
}

func TestDuplicateElement_Miss(t *testing.T) {
	s, _ := newStore(t)
	if _, ok := s.DuplicateElement(context.Background(), "missing"); ok {
		t.Fatal("expected miss")
	}
	if n := len(s.ActiveTemplate().Elements); n != 0 {
		t.Errorf("elements = %d", n)
	}
}

func TestSetSelectedElement(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	a := s.AddElement(ctx, domain.ElementTypeText, 0, 0)
	s.AddElement(ctx, domain.ElementTypeText, 0, 0)

	s.SetSelectedElement(ctx, &a)
	if sel := s.SelectedElement(); sel == nil || sel.ID != a.ID {
		t.Fatalf("selected = %+v", sel)
	}

	s.SetSelectedElement(ctx, nil)
	if s.SelectedElement() != nil {
		t.Fatal("nil should clear selection")
	}

	stranger := domain.CanvasElement{ID: "not-here"}
	s.SetSelectedElement(ctx, &stranger)
	if s.SelectedElement() != nil {
		t.Fatal("foreign element should clear selection")
	}
}

func TestApplyTemplate_Modern(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	s.AddElement(ctx, domain.ElementTypeText, 0, 0)

	s.ApplyTemplate(ctx, "modern")

	tpl := s.ActiveTemplate()
	if tpl.ID != "modern" {
		t.Errorf("id = %q", tpl.ID)
	}
	if len(tpl.Elements) != 9 {
		t.Errorf("elements = %d, want 9", len(tpl.Elements))
	}
	if s.SelectedElement() != nil {
		t.Error("selection should be cleared")
	}
}

func TestApplyTemplate_EditsDoNotLeakIntoCatalog(t *testing.T) {
	catalog := preset.Default()
	s := builder.New(context.Background(), &memGateway{}, catalog)
	ctx := context.Background()

	s.ApplyTemplate(ctx, "professional")
	el := s.ActiveTemplate().Elements[0]
	el.Position.X = 300
	el.Style.BackgroundColor = domain.Ptr("#000000")
	s.UpdateElement(ctx, el)
	s.DeleteElement(ctx, s.ActiveTemplate().Elements[1].ID)

	p, _ := catalog.Get("professional")
	if len(p.Template.Elements) != 12 {
		t.Fatalf("catalog elements = %d, want 12", len(p.Template.Elements))
	}
	if p.Template.Elements[0].Position.X != 0 || *p.Template.Elements[0].Style.BackgroundColor != "#2c3e50" {
		t.Errorf("catalog element mutated: %+v", p.Template.Elements[0])
	}

	s.ApplyTemplate(ctx, "professional")
	if n := len(s.ActiveTemplate().Elements); n != 12 {
		t.Errorf("re-applied elements = %d, want 12", n)
	}
}

func TestApplyTemplate_UnknownIsNoop(t *testing.T) {
	s, _ := newStore(t)
	before := s.ActiveTemplate()
	s.ApplyTemplate(context.Background(), "nope")
	if !reflect.DeepEqual(before, s.ActiveTemplate()) {
		t.Error("template changed on unknown preset")
	}
}

func TestSaveTemplate_UpdateNotAppend(t *testing.T) {
	s, gw := newStore(t)
	ctx := context.Background()
	s.AddElement(ctx, domain.ElementTypeText, 0, 0)

	id1 := s.SaveTemplate(ctx)
	s.AddElement(ctx, domain.ElementTypeLogo, 0, 0)
	id2 := s.SaveTemplate(ctx)

	if id1 != id2 {
		t.Fatalf("ids differ: %s vs %s", id1, id2)
	}
	saved := s.SavedTemplates()
	if len(saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(saved))
	}
	if len(saved[0].Elements) != 2 {
		t.Errorf("saved elements = %d, want 2", len(saved[0].Elements))
	}
	if gw.saves != 2 {
		t.Errorf("gateway saves = %d, want 2", gw.saves)
	}
	if len(gw.Load(ctx)) != 1 {
		t.Error("gateway should hold one template")
	}
}

func TestSaveTemplate_AssignsIDWhenEmpty(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	if err := s.SetActiveTemplate(ctx, domain.TemplateData{Name: "Untitled", Width: 595, Height: 842}); err != nil {
		t.Fatal(err)
	}
	id := s.SaveTemplate(ctx)
	if id == "" {
		t.Fatal("expected generated id")
	}
	if s.ActiveTemplate().ID != id {
		t.Errorf("active id = %q, want %q", s.ActiveTemplate().ID, id)
	}
}

func TestSaveTemplate_PersistErrorIsSwallowed(t *testing.T) {
	s, gw := newStore(t)
	gw.saveErr = errors.New("disk full")
	ctx := context.Background()

	s.SaveTemplate(ctx)

	if len(s.SavedTemplates()) != 1 {
		t.Fatal("in-memory list should still hold the template")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	s.ApplyTemplate(ctx, "creative")
	el := s.ActiveTemplate().Elements[3]
	el.Content = "FACTURA"
	s.UpdateElement(ctx, el)
	want := s.ActiveTemplate()

	id := s.SaveTemplate(ctx)
	s.ApplyTemplate(ctx, "modern")
	s.LoadTemplate(ctx, id)

	if got := s.ActiveTemplate(); !reflect.DeepEqual(got, want) {
		t.Errorf("loaded = %+v\nwant %+v", got, want)
	}
	if s.SelectedElement() != nil {
		t.Error("load should clear selection")
	}
}

func TestLoadTemplate_EditsDoNotLeakIntoSaved(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	s.AddElement(ctx, domain.ElementTypeText, 0, 0)
	id := s.SaveTemplate(ctx)
	s.LoadTemplate(ctx, id)

	el := s.ActiveTemplate().Elements[0]
	el.Content = "changed"
	s.UpdateElement(ctx, el)

	if got := s.SavedTemplates()[0].Elements[0].Content; got != "Text" {
		t.Errorf("saved content = %q, want Text", got)
	}
}

func TestLoadTemplate_UnknownIsNoop(t *testing.T) {
	s, _ := newStore(t)
	before := s.ActiveTemplate()
	s.LoadTemplate(context.Background(), "missing")
	if !reflect.DeepEqual(before, s.ActiveTemplate()) {
		t.Error("template changed on unknown saved id")
	}
}

func TestDeleteSavedTemplate(t *testing.T) {
	s, gw := newStore(t)
	ctx := context.Background()
	id := s.SaveTemplate(ctx)

	s.DeleteSavedTemplate(ctx, "missing")
	if gw.saves != 1 {
		t.Errorf("miss should not persist, saves = %d", gw.saves)
	}
	s.DeleteSavedTemplate(ctx, id)
	if len(s.SavedTemplates()) != 0 {
		t.Error("template not removed")
	}
	if len(gw.Load(ctx)) != 0 {
		t.Error("removal not persisted")
	}
}

func TestReloadSaved(t *testing.T) {
	s, gw := newStore(t)
	ctx := context.Background()
	gw.data = []domain.TemplateData{builder.NewBlankTemplate("external")}

	s.ReloadSaved(ctx)

	saved := s.SavedTemplates()
	if len(saved) != 1 || saved[0].ID != "external" {
		t.Fatalf("saved = %+v", saved)
	}
}

func TestSetActiveTemplate_RejectsDuplicateIDs(t *testing.T) {
	s, _ := newStore(t)
	tpl := builder.NewBlankTemplate("dup")
	tpl.Elements = []domain.CanvasElement{
		builder.NewElement("a", domain.ElementTypeText, 0, 0),
		builder.NewElement("a", domain.ElementTypeLogo, 0, 0),
	}
	err := s.SetActiveTemplate(context.Background(), tpl)
	if !errors.Is(err, domain.ErrDuplicateElementID) {
		t.Fatalf("err = %v, want ErrDuplicateElementID", err)
	}
	if s.ActiveTemplate().ID == "dup" {
		t.Error("rejected template became active")
	}
}

func TestSetActiveTemplate_DropsDanglingSelection(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	s.AddElement(ctx, domain.ElementTypeText, 0, 0)

	if err := s.SetActiveTemplate(ctx, builder.NewBlankTemplate("other")); err != nil {
		t.Fatal(err)
	}
	if s.SelectedElement() != nil {
		t.Error("selection should be cleared")
	}
}

func TestSetZoom_NoClamp(t *testing.T) {
	s, _ := newStore(t)
	for _, z := range []float64{0.25, 4, -1} {
		s.SetZoom(context.Background(), z)
		if s.Zoom() != z {
			t.Errorf("zoom = %v, want %v", s.Zoom(), z)
		}
	}
}

func TestSetInvoiceData(t *testing.T) {
	s, _ := newStore(t)
	d := s.InvoiceData()
	d.Number = "INV-042"
	d.Items = d.Items[:1]
	s.SetInvoiceData(context.Background(), d)

	got := s.InvoiceData()
	if got.Number != "INV-042" || len(got.Items) != 1 {
		t.Errorf("invoice = %s with %d items", got.Number, len(got.Items))
	}
	if got.Total != 280 {
		t.Errorf("total recomputed to %v", got.Total)
	}
}

func TestEvents(t *testing.T) {
	em := &builder.MockEmitter{}
	s, _ := newStore(t, builder.WithEmitter(em))
	ctx := context.Background()

	el := s.AddElement(ctx, domain.ElementTypeText, 0, 0)
	s.SetZoom(ctx, 2)
	s.SaveTemplate(ctx)
	s.DeleteElement(ctx, el.ID)

	want := []string{
		builder.EventTemplateChanged, builder.EventSelectionChanged,
		builder.EventZoomChanged,
		builder.EventSavedChanged,
		builder.EventTemplateChanged, builder.EventSelectionChanged,
	}
	if got := em.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v\nwant %v", got, want)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	s := builder.New(context.Background(), &memGateway{}, preset.Default())
	ctx := context.Background()
	el := s.AddElement(ctx, domain.ElementTypeRectangle, 0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := el
			e.Position.X = float64(i)
			s.UpdateElement(ctx, e)
			s.AddElement(ctx, domain.ElementTypeText, float64(i), 0)
		}(i)
	}
	wg.Wait()

	tpl := s.ActiveTemplate()
	if len(tpl.Elements) != 21 {
		t.Errorf("elements = %d, want 21", len(tpl.Elements))
	}
	if err := tpl.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}
