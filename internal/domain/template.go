package domain

import (
	"errors"
	"fmt"
)

type ElementType string

const (
	ElementTypeText           ElementType = "text"
	ElementTypeImage          ElementType = "image"
	ElementTypeRectangle      ElementType = "rectangle"
	ElementTypeLine           ElementType = "line"
	ElementTypeTable          ElementType = "table"
	ElementTypeSignature      ElementType = "signature"
	ElementTypeLogo           ElementType = "logo"
	ElementTypeBusinessInfo   ElementType = "businessInfo"
	ElementTypeClientInfo     ElementType = "clientInfo"
	ElementTypeInvoiceDetails ElementType = "invoiceDetails"
	ElementTypeItemsTable     ElementType = "itemsTable"
	ElementTypeTotals         ElementType = "totals"
	ElementTypeNotes          ElementType = "notes"
	ElementTypeTerms          ElementType = "terms"
)

// ElementTypes lists every element kind in toolbar order.
var ElementTypes = []ElementType{
	ElementTypeText,
	ElementTypeRectangle,
	ElementTypeLine,
	ElementTypeImage,
	ElementTypeLogo,
	ElementTypeBusinessInfo,
	ElementTypeClientInfo,
	ElementTypeInvoiceDetails,
	ElementTypeItemsTable,
	ElementTypeTotals,
	ElementTypeNotes,
	ElementTypeTerms,
	ElementTypeSignature,
	ElementTypeTable,
}

// Valid reports whether t is one of the known element kinds.
func (t ElementType) Valid() bool {
	for _, known := range ElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// A4 page size in points.
const (
	A4Width  = 595.0
	A4Height = 842.0
)

// MinElementSize is the smallest width or height an element may have.
const MinElementSize = 1.0

var ErrDuplicateElementID = errors.New("duplicate element id")

type Position struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Rotation *float64 `json:"rotation,omitempty"`
}

type TextAlign string

const (
	TextAlignLeft    TextAlign = "left"
	TextAlignCenter  TextAlign = "center"
	TextAlignRight   TextAlign = "right"
	TextAlignJustify TextAlign = "justify"
)

// Style is sparse: a nil field means "use the renderer default".
type Style struct {
	FontFamily      *string    `json:"fontFamily,omitempty"`
	FontSize        *float64   `json:"fontSize,omitempty"`
	FontWeight      *string    `json:"fontWeight,omitempty"`
	Color           *string    `json:"color,omitempty"`
	BackgroundColor *string    `json:"backgroundColor,omitempty"`
	BorderColor     *string    `json:"borderColor,omitempty"`
	BorderWidth     *float64   `json:"borderWidth,omitempty"`
	BorderRadius    *float64   `json:"borderRadius,omitempty"`
	Padding         *float64   `json:"padding,omitempty"`
	PaddingTop      *float64   `json:"paddingTop,omitempty"`
	TextAlign       *TextAlign `json:"textAlign,omitempty"`
	LineHeight      *float64   `json:"lineHeight,omitempty"`
	Opacity         *float64   `json:"opacity,omitempty"`
	BorderTopWidth  *float64   `json:"borderTopWidth,omitempty"`
	BorderTopColor  *string    `json:"borderTopColor,omitempty"`
}

// Ptr returns a pointer to v. Handy for filling sparse styles.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a copy that shares no pointers with s.
func (s Style) Clone() Style {
	return Style{
		FontFamily:      clonePtr(s.FontFamily),
		FontSize:        clonePtr(s.FontSize),
		FontWeight:      clonePtr(s.FontWeight),
		Color:           clonePtr(s.Color),
		BackgroundColor: clonePtr(s.BackgroundColor),
		BorderColor:     clonePtr(s.BorderColor),
		BorderWidth:     clonePtr(s.BorderWidth),
		BorderRadius:    clonePtr(s.BorderRadius),
		Padding:         clonePtr(s.Padding),
		PaddingTop:      clonePtr(s.PaddingTop),
		TextAlign:       clonePtr(s.TextAlign),
		LineHeight:      clonePtr(s.LineHeight),
		Opacity:         clonePtr(s.Opacity),
		BorderTopWidth:  clonePtr(s.BorderTopWidth),
		BorderTopColor:  clonePtr(s.BorderTopColor),
	}
}

// Merge returns s with every non-nil field of o applied on top.
func (s Style) Merge(o Style) Style {
	m := s.Clone()
	o = o.Clone()
	if o.FontFamily != nil {
		m.FontFamily = o.FontFamily
	}
	if o.FontSize != nil {
		m.FontSize = o.FontSize
	}
	if o.FontWeight != nil {
		m.FontWeight = o.FontWeight
	}
	if o.Color != nil {
		m.Color = o.Color
	}
	if o.BackgroundColor != nil {
		m.BackgroundColor = o.BackgroundColor
	}
	if o.BorderColor != nil {
		m.BorderColor = o.BorderColor
	}
	if o.BorderWidth != nil {
		m.BorderWidth = o.BorderWidth
	}
	if o.BorderRadius != nil {
		m.BorderRadius = o.BorderRadius
	}
	if o.Padding != nil {
		m.Padding = o.Padding
	}
	if o.PaddingTop != nil {
		m.PaddingTop = o.PaddingTop
	}
	if o.TextAlign != nil {
		m.TextAlign = o.TextAlign
	}
	if o.LineHeight != nil {
		m.LineHeight = o.LineHeight
	}
	if o.Opacity != nil {
		m.Opacity = o.Opacity
	}
	if o.BorderTopWidth != nil {
		m.BorderTopWidth = o.BorderTopWidth
	}
	if o.BorderTopColor != nil {
		m.BorderTopColor = o.BorderTopColor
	}
	return m
}

// CanvasElement is a single placed object on the page.
// Locked is a UI contract only: the store still accepts mutations.
type CanvasElement struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	Position Position    `json:"position"`
	Style    Style       `json:"style"`
	Content  string      `json:"content,omitempty"` // literal text for text elements
	Src      string      `json:"src,omitempty"`     // image URL for image elements
	Locked   bool        `json:"locked,omitempty"`
	Hidden   bool        `json:"hidden,omitempty"`
}

func (e CanvasElement) Clone() CanvasElement {
	c := e
	c.Position.Rotation = clonePtr(e.Position.Rotation)
	c.Style = e.Style.Clone()
	return c
}

// TemplateData is one page layout. Element order is paint order, first = bottom.
type TemplateData struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Elements   []CanvasElement `json:"elements"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Background string          `json:"background,omitempty"`
}

func (t TemplateData) Clone() TemplateData {
	c := t
	if t.Elements != nil {
		c.Elements = make([]CanvasElement, len(t.Elements))
		for i, el := range t.Elements {
			c.Elements[i] = el.Clone()
		}
	}
	return c
}

// IndexOf returns the index of the element with the given id, or -1.
func (t TemplateData) IndexOf(id string) int {
	for i := range t.Elements {
		if t.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks element id uniqueness and positive element sizes.
func (t TemplateData) Validate() error {
	seen := make(map[string]struct{}, len(t.Elements))
	for _, el := range t.Elements {
		if _, dup := seen[el.ID]; dup {
			return fmt.Errorf("template %s: %w: %q", t.ID, ErrDuplicateElementID, el.ID)
		}
		seen[el.ID] = struct{}{}
		if el.Position.Width <= 0 || el.Position.Height <= 0 {
			return fmt.Errorf("template %s: element %s has non-positive size %.1fx%.1f",
				t.ID, el.ID, el.Position.Width, el.Position.Height)
		}
	}
	return nil
}

// TemplatePreset is a read-only starter layout.
type TemplatePreset struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Thumbnail string       `json:"thumbnail"`
	Template  TemplateData `json:"template"`
}

func (p TemplatePreset) Clone() TemplatePreset {
	c := p
	c.Template = p.Template.Clone()
	return c
}
