package mcpserver

import (
	"math"

	"invoicebuilder/internal/domain"
)

const (
	GridSize = 5.0  // canvas snap step in points
	Padding  = 10.0 // gap kept around existing elements
	Margin   = 40.0 // page margin used for auto placement
)

// LayoutEngine handles automatic placement of elements on the page
// so that MCP-created elements don't overlap existing ones.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	margin   float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		margin:   Margin,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// rect is a simple axis-aligned bounding box.
type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

func pageSize(t domain.TemplateData) (float64, float64) {
	if t.Width <= 0 || t.Height <= 0 {
		return domain.A4Width, domain.A4Height
	}
	return t.Width, t.Height
}

// NextPosition finds the first free grid position inside the page margins
// for an element of size (newW, newH). Hidden elements don't occupy space.
func (le *LayoutEngine) NextPosition(page domain.TemplateData, newW, newH float64) (float64, float64) {
	pageW, pageH := pageSize(page)

	var occupied []rect
	for _, el := range page.Elements {
		if el.Hidden {
			continue
		}
		p := el.Position
		occupied = append(occupied, rect{
			x: p.X - le.padding,
			y: p.Y - le.padding,
			w: p.Width + le.padding*2,
			h: p.Height + le.padding*2,
		})
	}
	if len(occupied) == 0 {
		return le.margin, le.margin
	}

	// Scan rows top-to-bottom, columns left-to-right
	candidate := rect{w: newW, h: newH}
	for y := le.margin; y+newH <= pageH-le.margin; y += le.gridSize {
		for x := le.margin; x+newW <= pageW-le.margin; x += le.gridSize {
			candidate.x = le.snap(x)
			candidate.y = le.snap(y)

			overlaps := false
			for _, occ := range occupied {
				if candidate.intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return candidate.x, candidate.y
			}
		}
	}

	// Page is full: place below all existing elements
	maxY := 0.0
	for _, occ := range occupied {
		maxY = max(maxY, occ.y+occ.h)
	}
	return le.margin, le.snap(maxY)
}

// ArrangeGroup lays elements out left to right from (startX, startY),
// wrapping at the page's right margin. Positions are modified in place.
func (le *LayoutEngine) ArrangeGroup(els []domain.CanvasElement, pageW, startX, startY float64) []domain.CanvasElement {
	x := le.snap(startX)
	y := le.snap(startY)
	rowHeight := 0.0

	for i := range els {
		p := &els[i].Position
		if x > le.snap(startX) && x+p.Width > pageW-le.margin {
			x = le.snap(startX)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		p.X = x
		p.Y = y
		rowHeight = max(rowHeight, p.Height)
		x += le.snap(p.Width + le.padding)
	}
	return els
}
