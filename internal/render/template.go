package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"invoicebuilder/internal/domain"
)

const defaultFontSize = 12.0

// TemplateRenderer draws a TemplateData page filled with invoice data.
type TemplateRenderer struct {
	images ImageSource
}

// NewTemplateRenderer creates a renderer. images may be nil, in which case
// image and logo elements render as placeholders.
func NewTemplateRenderer(images ImageSource) *TemplateRenderer {
	return &TemplateRenderer{images: images}
}

// Render writes a one-page PDF. Elements are painted in slice order and
// hidden elements are skipped.
func (r *TemplateRenderer) Render(ctx context.Context, w io.Writer, tpl domain.TemplateData, inv domain.InvoiceData) error {
	width, height := tpl.Width, tpl.Height
	if width <= 0 || height <= 0 {
		width, height = domain.A4Width, domain.A4Height
	}
	d := newDoc(ctx, r.images, width, height)
	d.pdf.SetTitle(d.tr(tpl.Name), false)

	if tpl.Background != "" {
		d.fillRect(0, 0, width, height, parseColor(tpl.Background, white))
	}

	for _, el := range tpl.Elements {
		if el.Hidden {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		d.element(el, inv)
	}

	if d.pdf.Err() {
		return fmt.Errorf("render template %s: %w", tpl.ID, d.pdf.Error())
	}
	return d.output(w)
}

// box is an element's content area after padding.
type box struct{ x, y, w, h float64 }

func (d *doc) element(el domain.CanvasElement, inv domain.InvoiceData) {
	p := el.Position
	s := el.Style
	pdf := d.pdf

	if s.Opacity != nil && *s.Opacity < 1 {
		pdf.SetAlpha(max(*s.Opacity, 0), "Normal")
		defer pdf.SetAlpha(1, "Normal")
	}
	if p.Rotation != nil && *p.Rotation != 0 {
		pdf.TransformBegin()
		// CSS rotates clockwise, PDF counter-clockwise
		pdf.TransformRotate(-*p.Rotation, p.X+p.Width/2, p.Y+p.Height/2)
		defer pdf.TransformEnd()
	}

	if el.Type == domain.ElementTypeLine {
		lw := 1.0
		if s.BorderWidth != nil && *s.BorderWidth > 0 {
			lw = *s.BorderWidth
		}
		d.fillRect(p.X, p.Y+p.Height/2-lw/2, p.Width, lw, colorOr(s.BorderColor, black))
		return
	}

	if s.BackgroundColor != nil {
		d.fillRect(p.X, p.Y, p.Width, p.Height, parseColor(*s.BackgroundColor, white))
	}
	if s.BorderWidth != nil && *s.BorderWidth > 0 {
		d.strokeRect(p.X, p.Y, p.Width, p.Height, *s.BorderWidth, colorOr(s.BorderColor, black))
	}
	if s.BorderTopWidth != nil && *s.BorderTopWidth > 0 {
		d.line(p.X, p.Y, p.X+p.Width, p.Y, *s.BorderTopWidth, colorOr(s.BorderTopColor, black))
	}

	pad := 0.0
	if s.Padding != nil {
		pad = *s.Padding
	}
	top := pad
	if s.PaddingTop != nil {
		top = *s.PaddingTop
	}
	b := box{x: p.X + pad, y: p.Y + top, w: p.Width - 2*pad, h: p.Height - top - pad}
	if b.w <= 0 || b.h <= 0 {
		return
	}

	pdf.ClipRect(p.X, p.Y, p.Width, p.Height, false)
	defer pdf.ClipEnd()

	f := newFont(s)
	switch el.Type {
	case domain.ElementTypeText:
		d.paragraph(b, f, el.Content)
	case domain.ElementTypeTable:
		d.paragraph(b, f, el.Content)
	case domain.ElementTypeRectangle:
	case domain.ElementTypeImage:
		if !d.image(el.Src, b.x, b.y, b.w, b.h) {
			d.placeholder(b, "Image")
		}
	case domain.ElementTypeLogo:
		src := inv.Business.Logo
		if src == "" {
			src = el.Src
		}
		if !d.image(src, b.x, b.y, b.w, b.h) {
			d.placeholder(b, "Logo")
		}
	case domain.ElementTypeBusinessInfo:
		d.lines(b, f, businessLines(inv.Business))
	case domain.ElementTypeClientInfo:
		d.lines(b, f, clientLines(inv.Client))
	case domain.ElementTypeInvoiceDetails:
		d.pairs(b, f, detailPairs(inv), false)
	case domain.ElementTypeItemsTable:
		d.itemsTable(b, f, s, inv)
	case domain.ElementTypeTotals:
		d.pairs(b, f, totalPairs(inv), true)
	case domain.ElementTypeNotes:
		d.lines(b, f, []styledLine{{text: "Notes:", bold: true}, {text: inv.Notes}})
	case domain.ElementTypeTerms:
		d.lines(b, f, []styledLine{{text: "Terms & Conditions:", bold: true}, {text: inv.Terms}})
	case domain.ElementTypeSignature:
		d.signature(b, f, inv.Signature)
	default:
		d.paragraph(b, f, "Unknown Element Type")
	}
}

// ─────────────────────────────────────────────────────────────
// Fonts and text
// ─────────────────────────────────────────────────────────────

type font struct {
	family string
	bold   bool
	size   float64
	color  rgb
	align  string
	lineH  float64
}

func newFont(s domain.Style) font {
	f := font{family: "Helvetica", size: defaultFontSize, color: colorOr(s.Color, black), align: "L"}
	if s.FontSize != nil && *s.FontSize > 0 {
		f.size = *s.FontSize
	}
	if s.FontFamily != nil {
		fam := strings.ToLower(*s.FontFamily)
		switch {
		case strings.Contains(fam, "courier"), strings.Contains(fam, "mono"):
			f.family = "Courier"
		case strings.Contains(fam, "times"), strings.Contains(fam, "georgia"),
			fam == "serif":
			f.family = "Times"
		}
	}
	if s.FontWeight != nil {
		switch *s.FontWeight {
		case "bold", "bolder", "600", "700", "800", "900":
			f.bold = true
		}
	}
	if s.TextAlign != nil {
		switch *s.TextAlign {
		case domain.TextAlignCenter:
			f.align = "C"
		case domain.TextAlignRight:
			f.align = "R"
		case domain.TextAlignJustify:
			f.align = "J"
		}
	}
	mult := 1.2
	if s.LineHeight != nil && *s.LineHeight > 0 {
		mult = *s.LineHeight
	}
	f.lineH = f.size * mult
	return f
}

func (d *doc) useFont(f font, bold bool) {
	style := ""
	if f.bold || bold {
		style = "B"
	}
	d.pdf.SetFont(f.family, style, f.size)
	d.setText(f.color)
}

type styledLine struct {
	text string
	bold bool
}

func (d *doc) paragraph(b box, f font, s string) {
	d.useFont(f, false)
	d.text(b.x, b.y, b.w, f.lineH, f.align, s)
}

func (d *doc) lines(b box, f font, lines []styledLine) {
	y := b.y
	for _, l := range lines {
		if y >= b.y+b.h {
			return
		}
		d.useFont(f, l.bold)
		y = d.text(b.x, y, b.w, f.lineH, f.align, l.text)
	}
}

// pairs lays out label/value rows with bold labels. A right-aligned style
// pushes both columns to the right edge.
func (d *doc) pairs(b box, f font, rows [][2]string, lastBold bool) {
	labelW := b.w * 0.45
	valueW := b.w - labelW
	labelAlign, valueAlign := "L", "L"
	if f.align == "R" {
		labelAlign, valueAlign = "R", "R"
	}
	y := b.y
	for i, row := range rows {
		if y+f.lineH > b.y+b.h+0.01 {
			return
		}
		d.useFont(f, true)
		d.cell(b.x, y, labelW, f.lineH, labelAlign, row[0])
		d.useFont(f, lastBold && i == len(rows)-1)
		d.cell(b.x+labelW, y, valueW, f.lineH, valueAlign, row[1])
		y += f.lineH
	}
}

func (d *doc) placeholder(b box, label string) {
	d.fillRect(b.x, b.y, b.w, b.h, gray100)
	d.pdf.SetFont("Helvetica", "", 8)
	d.setText(gray500)
	d.cell(b.x, b.y+b.h/2-5, b.w, 10, "C", label)
}

func (d *doc) signature(b box, f font, src string) {
	labelH := f.lineH
	imgH := b.h * 0.6
	drawn := d.image(src, b.x, b.y+b.h-labelH-imgH-2, b.w, imgH)
	if !drawn {
		d.line(b.x, b.y+b.h-labelH-2, b.x+b.w, b.y+b.h-labelH-2, 0.75, gray400)
	}
	d.useFont(f, false)
	d.cell(b.x, b.y+b.h-labelH, b.w, labelH, "L", "Authorized Signature")
}

func (d *doc) itemsTable(b box, f font, s domain.Style, inv domain.InvoiceData) {
	border := colorOr(s.BorderColor, gray300)
	cols := []struct {
		title string
		frac  float64
		align string
	}{
		{"Description", 0.46, "L"},
		{"Qty", 0.12, "R"},
		{"Price", 0.21, "R"},
		{"Total", 0.21, "R"},
	}
	rowH := f.size * 1.8
	pad := 3.0
	pdf := d.pdf

	draw := func(y float64, cells []string, header bool) {
		x := b.x
		for i, c := range cols {
			cw := b.w * c.frac
			if header {
				d.fillRect(x, y, cw, rowH, gray100)
			}
			d.strokeRect(x, y, cw, rowH, 0.5, border)
			d.useFont(f, header)
			pdf.SetXY(x+pad, y)
			pdf.CellFormat(cw-2*pad, rowH, d.tr(cells[i]), "", 0, c.align+"M", false, 0, "")
			x += cw
		}
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	draw(b.y, header, true)

	y := b.y + rowH
	for _, it := range inv.Items {
		if y+rowH > b.y+b.h+0.01 {
			break
		}
		draw(y, []string{
			it.Description,
			trimFloat(it.Quantity),
			FormatMoney(it.Price, inv.Currency),
			FormatMoney(it.Total, inv.Currency),
		}, false)
		y += rowH
	}
}

// ─────────────────────────────────────────────────────────────
// Invoice data → text
// ─────────────────────────────────────────────────────────────

func cityLine(city, state, zip string) string {
	return strings.TrimSpace(fmt.Sprintf("%s, %s %s", city, state, zip))
}

func businessLines(bi domain.BusinessInfo) []styledLine {
	lines := []styledLine{
		{text: bi.Name, bold: true},
		{text: bi.Address},
		{text: cityLine(bi.City, bi.State, bi.Zip)},
		{text: bi.Country},
		{text: bi.Phone},
		{text: bi.Email},
	}
	if bi.Website != "" {
		lines = append(lines, styledLine{text: bi.Website})
	}
	if bi.TaxID != "" {
		lines = append(lines, styledLine{text: "Tax ID: " + bi.TaxID})
	}
	return lines
}

func clientLines(c domain.ClientInfo) []styledLine {
	lines := []styledLine{
		{text: "BILL TO:", bold: true},
		{text: c.Name, bold: true},
		{text: c.Address},
		{text: cityLine(c.City, c.State, c.Zip)},
		{text: c.Country},
	}
	if c.Phone != "" {
		lines = append(lines, styledLine{text: c.Phone})
	}
	if c.Email != "" {
		lines = append(lines, styledLine{text: c.Email})
	}
	return lines
}

func detailPairs(inv domain.InvoiceData) [][2]string {
	status := string(inv.Status)
	if status != "" {
		status = strings.ToUpper(status[:1]) + status[1:]
	}
	return [][2]string{
		{"Invoice #:", inv.Number},
		{"Date:", inv.Date},
		{"Due Date:", inv.DueDate},
		{"Status:", status},
	}
}

func totalPairs(inv domain.InvoiceData) [][2]string {
	rows := [][2]string{{"Subtotal:", FormatMoney(inv.Subtotal, inv.Currency)}}
	if inv.DiscountTotal > 0 {
		rows = append(rows, [2]string{"Discount:", FormatMoney(inv.DiscountTotal, inv.Currency)})
	}
	rows = append(rows, [2]string{"Tax:", FormatMoney(inv.TaxTotal, inv.Currency)})
	if inv.Shipping != nil {
		rows = append(rows, [2]string{"Shipping:", FormatMoney(*inv.Shipping, inv.Currency)})
	}
	return append(rows, [2]string{"Total:", FormatMoney(inv.Total, inv.Currency)})
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
