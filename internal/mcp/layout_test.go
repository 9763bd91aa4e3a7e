package mcpserver

import (
	"testing"

	"invoicebuilder/internal/domain"
)

func page(els ...domain.CanvasElement) domain.TemplateData {
	return domain.TemplateData{Width: domain.A4Width, Height: domain.A4Height, Elements: els}
}

func box(id string, x, y, w, h float64) domain.CanvasElement {
	return domain.CanvasElement{ID: id, Position: domain.Position{X: x, Y: y, Width: w, Height: h}}
}

func TestNextPosition_EmptyPage(t *testing.T) {
	le := NewLayoutEngine()
	x, y := le.NextPosition(page(), 200, 100)
	if x != Margin || y != Margin {
		t.Errorf("expected (%.0f, %.0f) for empty page, got (%.0f, %.0f)", Margin, Margin, x, y)
	}
}

func TestNextPosition_AvoidsExistingElements(t *testing.T) {
	le := NewLayoutEngine()
	existing := []domain.CanvasElement{
		box("a", 40, 40, 200, 100),
		box("b", 300, 40, 250, 100),
	}
	x, y := le.NextPosition(page(existing...), 200, 100)

	r := rect{x, y, 200, 100}
	for _, el := range existing {
		p := el.Position
		padded := rect{p.X - Padding, p.Y - Padding, p.Width + Padding*2, p.Height + Padding*2}
		if r.intersects(padded) {
			t.Errorf("position (%.0f, %.0f) overlaps %s", x, y, el.ID)
		}
	}
	if x+200 > domain.A4Width-Margin {
		t.Errorf("position (%.0f, %.0f) leaves the page margin", x, y)
	}
}

func TestNextPosition_IgnoresHidden(t *testing.T) {
	le := NewLayoutEngine()
	hidden := box("h", 0, 0, domain.A4Width, domain.A4Height)
	hidden.Hidden = true
	x, y := le.NextPosition(page(hidden), 100, 40)
	if x != Margin || y != Margin {
		t.Errorf("hidden element should not occupy space, got (%.0f, %.0f)", x, y)
	}
}

func TestNextPosition_FullPageFallsBelow(t *testing.T) {
	le := NewLayoutEngine()
	x, y := le.NextPosition(page(box("full", 0, 0, domain.A4Width, domain.A4Height)), 100, 40)
	if x != Margin || y < domain.A4Height {
		t.Errorf("expected placement below the page, got (%.0f, %.0f)", x, y)
	}
}

func TestArrangeGroup(t *testing.T) {
	le := NewLayoutEngine()
	els := []domain.CanvasElement{
		box("1", 0, 0, 200, 80),
		box("2", 0, 0, 200, 80),
		box("3", 0, 0, 200, 80),
	}

	arranged := le.ArrangeGroup(els, domain.A4Width, Margin, Margin)

	for i := 0; i < len(arranged); i++ {
		p := arranged[i].Position
		if p.X+p.Width > domain.A4Width {
			t.Errorf("element %d runs off the page at x=%.0f", i, p.X)
		}
		for j := i + 1; j < len(arranged); j++ {
			q := arranged[j].Position
			a := rect{p.X, p.Y, p.Width, p.Height}
			b := rect{q.X, q.Y, q.Width, q.Height}
			if a.intersects(b) {
				t.Errorf("elements %d and %d overlap: (%.0f,%.0f) and (%.0f,%.0f)",
					i, j, a.x, a.y, b.x, b.y)
			}
		}
	}
	if arranged[2].Position.Y <= arranged[0].Position.Y {
		t.Errorf("third element should wrap to a new row, got y=%.0f", arranged[2].Position.Y)
	}
}

func TestSnap(t *testing.T) {
	le := NewLayoutEngine()
	tests := []struct {
		input, want float64
	}{
		{0, 0},
		{2, 0},
		{3, 5},
		{41, 40},
		{43, 45},
		{100, 100},
	}
	for _, tt := range tests {
		got := le.snap(tt.input)
		if got != tt.want {
			t.Errorf("snap(%.0f) = %.0f, want %.0f", tt.input, got, tt.want)
		}
	}
}
