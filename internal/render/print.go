package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoicebuilder/internal/domain"
)

const (
	printMargin   = 40.0
	printFooterH  = 50.0
	printRowH     = 22.0
	watermarkSize = 60.0
)

type theme struct {
	primary   rgb
	accent    rgb
	border    rgb
	headText  rgb
	bankTitle string // empty means no bank section
	watermark bool
}

var themes = map[domain.PrintStyle]theme{
	domain.StyleOne:   {primary: rgb{17, 24, 39}, accent: rgb{75, 85, 99}, border: gray300, headText: white},
	domain.StyleTwo:   {primary: rgb{51, 51, 51}, accent: rgb{102, 102, 102}, border: rgb{224, 224, 224}, headText: white},
	domain.StyleThree: {primary: rgb{30, 58, 138}, accent: rgb{59, 130, 246}, border: rgb{191, 219, 254}, headText: white},
	domain.StyleFour: {primary: rgb{79, 70, 229}, accent: rgb{129, 140, 248}, border: rgb{199, 210, 254}, headText: white,
		bankTitle: "BANK & PAYMENT DETAILS"},
	domain.StyleFive: {primary: black, accent: black, border: black, headText: white,
		bankTitle: "BANKING DETAILS", watermark: true},
	domain.StyleSix:   {primary: rgb{15, 118, 110}, accent: rgb{20, 184, 166}, border: rgb{153, 246, 228}, headText: white},
	domain.StyleSeven: {primary: rgb{180, 83, 9}, accent: rgb{245, 158, 11}, border: rgb{253, 230, 138}, headText: white},
	domain.StyleEight: {primary: rgb{190, 18, 60}, accent: rgb{244, 63, 94}, border: rgb{254, 205, 211}, headText: white},
}

// bankLines are the placeholder remittance details printed by the
// layouts that carry a bank section.
var bankLines = []string{
	"XXXXXXXX",
	"Acct No: 0000000",
	"Sort Code: 00-00-00",
	"Acct Name: xxxxxxx Ltd",
	"Remittance Advice to: xxxxxxx@xxxxx.co.uk",
	"Company Registration No: 00000000",
}

// ResolveStyle maps unknown or empty style names to StyleOne.
func ResolveStyle(s domain.PrintStyle) domain.PrintStyle {
	if _, ok := themes[s]; ok {
		return s
	}
	return domain.StyleOne
}

// PrintRenderer lays a PrintData record out in one of the fixed styles.
type PrintRenderer struct {
	images ImageSource
}

func NewPrintRenderer(images ImageSource) *PrintRenderer {
	return &PrintRenderer{images: images}
}

// Render writes an A4 PDF. An empty style falls back to data.Theme, and an
// unknown one to StyleOne. Long item lists continue on new pages.
func (r *PrintRenderer) Render(ctx context.Context, w io.Writer, data domain.PrintData, style domain.PrintStyle) error {
	if style == "" {
		style = data.Theme
	}
	style = ResolveStyle(style)
	th := themes[style]

	d := newDoc(ctx, r.images, domain.A4Width, domain.A4Height)
	d.pdf.SetTitle(d.tr(data.Title), false)
	p := &printer{doc: d, data: data, th: th}

	if th.watermark && data.WatermarkEnabled() {
		p.watermark()
	}
	y := p.header(printMargin)
	y = p.info(y + 16)
	y = p.items(y + 20)
	y = p.summary(y + 12)
	if data.IsSignature {
		y = p.signature(y + 16)
	}
	if data.Terms != "" {
		y = p.terms(y + 16)
	}
	if th.bankTitle != "" && data.IsBankAccount {
		p.bank(y + 16)
	}
	p.footer()

	if err := ctx.Err(); err != nil {
		return err
	}
	if d.pdf.Err() {
		return fmt.Errorf("render print %s: %w", style, d.pdf.Error())
	}
	return d.output(w)
}

type printer struct {
	*doc
	data domain.PrintData
	th   theme
}

func (p *printer) contentW() float64 { return domain.A4Width - 2*printMargin }

// ensure starts a new page when h more points would run into the footer.
func (p *printer) ensure(y, h float64) float64 {
	if y+h <= domain.A4Height-printMargin-printFooterH {
		return y
	}
	p.footer()
	p.pdf.AddPage()
	return printMargin
}

func (p *printer) font(style string, size float64, c rgb) {
	p.pdf.SetFont("Helvetica", style, size)
	p.setText(c)
}

func (p *printer) header(y float64) float64 {
	x := printMargin
	if p.data.HasLogo != domain.LogoDisabled && p.data.LogoURL != "" {
		if p.image(p.data.LogoURL, x, y, 60, 60) {
			x += 70
		}
	}
	p.font("B", 16, p.th.primary)
	p.cell(x, y+20, 200, 20, "L", p.data.CompanyName)

	right := printMargin + p.contentW()/2
	half := p.contentW() / 2
	title := p.data.Title
	if title == "" {
		title = "Invoice"
	}
	p.font("B", 24, p.th.primary)
	p.cell(right, y, half, 28, "R", strings.ToUpper(title))
	p.font("", 10, p.th.accent)
	p.cell(right, y+30, half, 14, "R", fmt.Sprintf("%s No. #%s", prefix(title, 3), p.data.InvoiceNumber))
	p.cell(right, y+44, half, 14, "R", "Issue Date: "+displayDate(p.data.Date))

	y += 68
	p.line(printMargin, y, printMargin+p.contentW(), y, 1.5, p.th.accent)
	return y
}

func (p *printer) info(y float64) float64 {
	colW := p.contentW() / 2
	left := []styledLine{
		{text: "Bill To", bold: true},
		{text: orNA(p.data.CustomerName)},
		{text: orNA(p.data.CustomerAddress)},
		{text: "Contact", bold: true},
		{text: orNA(p.data.CustomerPhone)},
	}
	if p.data.CustomerEmail != "" {
		left = append(left, styledLine{text: p.data.CustomerEmail})
	}
	right := []styledLine{
		{text: "From", bold: true},
		{text: orNA(p.data.CompanyName)},
		{text: orNA(p.data.CompanyAddress)},
		{text: orNA(p.data.CompanyEmail)},
		{text: orNA(p.data.CompanyPhone)},
	}

	ly := p.column(printMargin, y, colW-10, left, "L")
	ry := p.column(printMargin+colW, y, colW, right, "R")
	return max(ly, ry)
}

func (p *printer) column(x, y, w float64, lines []styledLine, align string) float64 {
	for _, l := range lines {
		if l.bold {
			p.font("B", 11, p.th.primary)
		} else {
			p.font("", 10, black)
		}
		y = p.text(x, y, w, 14, align, l.text)
	}
	return y
}

func (p *printer) heads() []domain.PrintHeader {
	if len(p.data.ItemsHead) > 0 {
		return p.data.ItemsHead
	}
	return domain.DefaultItemsHead
}

func (p *printer) items(y float64) float64 {
	heads := p.heads()
	widths := columnWidths(heads, p.contentW())

	drawHead := func(y float64) float64 {
		x := printMargin
		p.font("B", 10, p.th.headText)
		for i, h := range heads {
			p.fillRect(x, y, widths[i], printRowH, p.th.primary)
			p.pdf.SetXY(x+4, y)
			p.pdf.CellFormat(widths[i]-8, printRowH, p.tr(h.Name), "", 0, cellAlign(h.Key)+"M", false, 0, "")
			x += widths[i]
		}
		return y + printRowH
	}

	y = p.ensure(y, 2*printRowH)
	y = drawHead(y)
	for i, it := range p.data.Items {
		if next := p.ensure(y, printRowH); next != y {
			y = drawHead(next)
		}
		if i%2 == 1 {
			p.fillRect(printMargin, y, p.contentW(), printRowH, gray100)
		}
		x := printMargin
		p.font("", 10, black)
		for j, h := range heads {
			p.pdf.SetXY(x+4, y)
			p.pdf.CellFormat(widths[j]-8, printRowH, p.tr(itemValue(it, h.Key)), "", 0, cellAlign(h.Key)+"M", false, 0, "")
			x += widths[j]
		}
		y += printRowH
		p.line(printMargin, y, printMargin+p.contentW(), y, 0.5, p.th.border)
	}
	return y
}

func (p *printer) summary(y float64) float64 {
	rows := [][2]string{
		{"Subtotal", amountText(p.data.Subtotal)},
		{"Tax", amountText(p.data.TotalTax)},
		{"Shipping", amountText(p.data.Shipping)},
		{"Total", amountText(p.data.Total)},
	}
	y = p.ensure(y, float64(len(rows))*18+4)

	w := 200.0
	x := printMargin + p.contentW() - w
	for i, row := range rows {
		last := i == len(rows)-1
		if last {
			p.line(x, y+2, x+w, y+2, 1, p.th.accent)
			y += 4
			p.font("B", 12, p.th.primary)
		} else {
			p.font("", 10, black)
		}
		p.cell(x, y, w/2, 18, "L", row[0])
		p.cell(x+w/2, y, w/2, 18, "R", row[1])
		y += 18
	}
	return y
}

func (p *printer) signature(y float64) float64 {
	y = p.ensure(y, 80)
	w := 180.0
	x := printMargin + p.contentW() - w
	if p.data.SignatureImage != nil && *p.data.SignatureImage != "" {
		p.image(*p.data.SignatureImage, x, y, w, 40)
	}
	y += 44
	p.font("", 10, black)
	p.cell(x, y, w, 14, "C", "____________________")
	p.cell(x, y+14, w, 14, "C", "Authorized Signature")
	return y + 28
}

func (p *printer) terms(y float64) float64 {
	y = p.ensure(y, 40)
	p.font("B", 11, p.th.primary)
	p.cell(printMargin, y, p.contentW(), 16, "L", "Terms & Conditions")
	p.font("", 9, gray500)
	return p.text(printMargin, y+18, p.contentW(), 12, "L", p.data.Terms)
}

func (p *printer) bank(y float64) float64 {
	y = p.ensure(y, float64(len(bankLines)+1)*13+8)
	p.line(printMargin, y, printMargin+p.contentW(), y, 0.75, p.th.border)
	y += 6
	p.font("B", 11, p.th.primary)
	p.cell(printMargin, y, p.contentW(), 16, "L", p.th.bankTitle)
	y += 18
	p.font("", 9, black)
	for _, l := range bankLines {
		p.cell(printMargin, y, p.contentW(), 13, "L", l)
		y += 13
	}
	return y
}

func (p *printer) footer() {
	title := strings.ToLower(p.data.Title)
	if title == "" {
		title = "invoice"
	}
	y := domain.A4Height - printMargin - 24
	p.line(printMargin, y-6, printMargin+p.contentW(), y-6, 0.5, p.th.border)
	p.font("", 8, gray500)
	p.cell(printMargin, y, p.contentW(), 12, "C",
		fmt.Sprintf("This %s was created on a computer and is valid without a signature and seal.", title))
	p.font("B", 9, p.th.primary)
	p.cell(printMargin, y+12, p.contentW(), 12, "C", "Thank you for your business!")
}

func (p *printer) watermark() {
	cx, cy := domain.A4Width/2, domain.A4Height/2
	pdf := p.pdf
	pdf.SetAlpha(0.08, "Normal")
	defer pdf.SetAlpha(1, "Normal")

	if p.data.WatermarkImage != "" && p.image(p.data.WatermarkImage, cx-150, cy-150, 300, 300) {
		return
	}
	text := firstNonEmpty(p.data.WatermarkText, p.data.CompanyName, p.data.Watermark)
	if text == "" {
		return
	}
	pdf.TransformBegin()
	pdf.TransformRotate(45, cx, cy)
	p.font("B", watermarkSize, black)
	p.cell(0, cy-watermarkSize/2, domain.A4Width, watermarkSize, "C", text)
	pdf.TransformEnd()
}

// ─────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────

func columnWidths(heads []domain.PrintHeader, total float64) []float64 {
	weights := make([]float64, len(heads))
	sum := 0.0
	for i, h := range heads {
		weights[i] = 1
		if h.Key == "product" {
			weights[i] = 2.5
		}
		sum += weights[i]
	}
	out := make([]float64, len(heads))
	for i, w := range weights {
		out[i] = total * w / sum
	}
	return out
}

func cellAlign(key string) string {
	if key == "product" {
		return "L"
	}
	return "R"
}

func itemValue(it domain.PrintItem, key string) string {
	switch key {
	case "product":
		return it.Product
	case "quantity":
		return trimFloat(it.Quantity)
	case "price":
		return amountText(it.Price)
	case "tax":
		return percentText(it.Tax)
	case "discount":
		return amountText(it.Discount)
	case "amount":
		return groupThousands(lineAmount(parseAmount(it.Price), it.Quantity, parseAmount(it.Tax)).StringFixed(2))
	}
	return ""
}

func amountText(s string) string {
	return groupThousands(parseAmount(s).StringFixed(2))
}

func percentText(s string) string {
	d := parseAmount(s)
	if d.Equal(decimal.Zero) {
		return "0%"
	}
	return d.String() + "%"
}

// displayDate renders ISO dates as "January 2, 2006"; anything else is
// printed as given.
func displayDate(s string) string {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return s
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
