package preset

import (
	"invoicebuilder/internal/domain"
)

// Catalog is the read-only list of starter layouts. Lookups hand out deep
// copies so edits to an applied preset never reach the catalog.
type Catalog struct {
	presets []domain.TemplatePreset
}

// New builds a catalog from the given presets. The slice is copied.
func New(presets ...domain.TemplatePreset) *Catalog {
	c := &Catalog{presets: make([]domain.TemplatePreset, len(presets))}
	for i, p := range presets {
		c.presets[i] = p.Clone()
	}
	return c
}

// Default returns the built-in Modern, Professional and Creative presets.
func Default() *Catalog {
	return New(modern(), professional(), creative())
}

func (c *Catalog) Get(id string) (domain.TemplatePreset, bool) {
	for _, p := range c.presets {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.TemplatePreset{}, false
}

func (c *Catalog) List() []domain.TemplatePreset {
	out := make([]domain.TemplatePreset, len(c.presets))
	for i, p := range c.presets {
		out[i] = p.Clone()
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.presets)
}

// ─────────────────────────────────────────────────────────────
// Element helpers
// ─────────────────────────────────────────────────────────────

type styleOpt func(*domain.Style)

func fontSize(v float64) styleOpt { return func(s *domain.Style) { s.FontSize = domain.Ptr(v) } }
func color(v string) styleOpt     { return func(s *domain.Style) { s.Color = domain.Ptr(v) } }
func bold() styleOpt              { return func(s *domain.Style) { s.FontWeight = domain.Ptr("bold") } }
func fill(v string) styleOpt      { return func(s *domain.Style) { s.BackgroundColor = domain.Ptr(v) } }
func radius(v float64) styleOpt   { return func(s *domain.Style) { s.BorderRadius = domain.Ptr(v) } }
func paddingTop(v float64) styleOpt {
	return func(s *domain.Style) { s.PaddingTop = domain.Ptr(v) }
}

func align(a domain.TextAlign) styleOpt {
	return func(s *domain.Style) { s.TextAlign = domain.Ptr(a) }
}

func border(c string, w float64) styleOpt {
	return func(s *domain.Style) {
		s.BorderColor = domain.Ptr(c)
		s.BorderWidth = domain.Ptr(w)
	}
}

func borderTop(c string, w float64) styleOpt {
	return func(s *domain.Style) {
		s.BorderTopColor = domain.Ptr(c)
		s.BorderTopWidth = domain.Ptr(w)
	}
}

func el(id string, typ domain.ElementType, x, y, w, h float64, opts ...styleOpt) domain.CanvasElement {
	e := domain.CanvasElement{
		ID:       id,
		Type:     typ,
		Position: domain.Position{X: x, Y: y, Width: w, Height: h},
	}
	for _, opt := range opts {
		opt(&e.Style)
	}
	return e
}

func text(id, content string, x, y, w, h float64, opts ...styleOpt) domain.CanvasElement {
	e := el(id, domain.ElementTypeText, x, y, w, h, opts...)
	e.Content = content
	return e
}

func page(id, name string, elements ...domain.CanvasElement) domain.TemplatePreset {
	return domain.TemplatePreset{
		ID:        id,
		Name:      name,
		Thumbnail: "/templates/" + id + ".png",
		Template: domain.TemplateData{
			ID:         id,
			Name:       name + " Template",
			Elements:   elements,
			Width:      domain.A4Width,
			Height:     domain.A4Height,
			Background: "#ffffff",
		},
	}
}

// ─────────────────────────────────────────────────────────────
// Built-in layouts
// ─────────────────────────────────────────────────────────────

func modern() domain.TemplatePreset {
	return page("modern", "Modern",
		el("modern-logo", domain.ElementTypeLogo, 40, 40, 120, 60),
		el("modern-business", domain.ElementTypeBusinessInfo, 40, 110, 200, 100,
			fontSize(10), color("#555555")),
		text("modern-title", "INVOICE", 40, 40, 515, 50,
			fontSize(24), bold(), color("#333333"), align(domain.TextAlignRight)),
		el("modern-details", domain.ElementTypeInvoiceDetails, 355, 100, 200, 100,
			fontSize(10), color("#555555"), align(domain.TextAlignRight)),
		el("modern-client", domain.ElementTypeClientInfo, 40, 230, 200, 100,
			fontSize(10), color("#555555")),
		el("modern-items", domain.ElementTypeItemsTable, 40, 350, 515, 200,
			fontSize(10), color("#333333"), border("#dddddd", 1)),
		el("modern-totals", domain.ElementTypeTotals, 355, 570, 200, 100,
			fontSize(10), color("#333333"), align(domain.TextAlignRight)),
		el("modern-notes", domain.ElementTypeNotes, 40, 650, 250, 80,
			fontSize(10), color("#555555")),
		el("modern-terms", domain.ElementTypeTerms, 40, 740, 515, 60,
			fontSize(9), color("#777777"), borderTop("#dddddd", 1), paddingTop(10)),
	)
}

func professional() domain.TemplatePreset {
	return page("professional", "Professional",
		el("professional-header", domain.ElementTypeRectangle, 0, 0, 595, 120,
			fill("#2c3e50")),
		el("professional-logo", domain.ElementTypeLogo, 40, 30, 120, 60),
		text("professional-title", "INVOICE", 355, 40, 200, 40,
			fontSize(24), bold(), color("#ffffff"), align(domain.TextAlignRight)),
		el("professional-business", domain.ElementTypeBusinessInfo, 40, 140, 200, 100,
			fontSize(10), color("#555555")),
		el("professional-details", domain.ElementTypeInvoiceDetails, 355, 140, 200, 100,
			fontSize(10), color("#555555"), align(domain.TextAlignRight)),
		el("professional-client-box", domain.ElementTypeRectangle, 40, 260, 515, 80,
			fill("#f5f5f5"), radius(4)),
		el("professional-client", domain.ElementTypeClientInfo, 55, 270, 485, 60,
			fontSize(10), color("#555555")),
		el("professional-items", domain.ElementTypeItemsTable, 40, 360, 515, 200,
			fontSize(10), color("#333333")),
		el("professional-totals", domain.ElementTypeTotals, 355, 580, 200, 100,
			fontSize(10), color("#333333"), align(domain.TextAlignRight)),
		el("professional-notes", domain.ElementTypeNotes, 40, 660, 250, 80,
			fontSize(10), color("#555555")),
		el("professional-footer", domain.ElementTypeRectangle, 0, 782, 595, 60,
			fill("#2c3e50")),
		el("professional-terms", domain.ElementTypeTerms, 40, 792, 515, 40,
			fontSize(9), color("#ffffff"), paddingTop(10)),
	)
}

func creative() domain.TemplatePreset {
	return page("creative", "Creative",
		el("creative-sidebar", domain.ElementTypeRectangle, 0, 0, 180, 842,
			fill("#9b59b6")),
		el("creative-logo", domain.ElementTypeLogo, 30, 40, 120, 60),
		el("creative-business", domain.ElementTypeBusinessInfo, 30, 120, 140, 150,
			fontSize(9), color("#ffffff")),
		text("creative-title", "INVOICE", 210, 40, 345, 50,
			fontSize(28), bold(), color("#9b59b6")),
		el("creative-details", domain.ElementTypeInvoiceDetails, 210, 100, 345, 100,
			fontSize(10), color("#555555")),
		el("creative-client", domain.ElementTypeClientInfo, 210, 220, 345, 100,
			fontSize(10), color("#555555")),
		el("creative-items", domain.ElementTypeItemsTable, 210, 340, 345, 200,
			fontSize(10), color("#333333")),
		el("creative-totals", domain.ElementTypeTotals, 355, 560, 200, 100,
			fontSize(10), color("#333333"), align(domain.TextAlignRight)),
		el("creative-notes", domain.ElementTypeNotes, 210, 670, 345, 80,
			fontSize(10), color("#555555")),
		el("creative-terms", domain.ElementTypeTerms, 210, 760, 345, 60,
			fontSize(9), color("#777777"), borderTop("#dddddd", 1), paddingTop(10)),
	)
}
