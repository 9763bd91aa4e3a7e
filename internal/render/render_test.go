package render_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"invoicebuilder/internal/builder"
	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/imagefetch"
	"invoicebuilder/internal/preset"
	"invoicebuilder/internal/render"
)

// countingImages serves a 2x2 PNG for every URL and records requests.
type countingImages struct {
	mu   sync.Mutex
	urls []string
	png  []byte
}

func newCountingImages(t *testing.T) *countingImages {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &countingImages{png: buf.Bytes()}
}

func (c *countingImages) Fetch(_ context.Context, url string) (*imagefetch.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, url)
	return &imagefetch.Image{Data: c.png, ContentType: "image/png"}, nil
}

func (c *countingImages) requested() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.urls...)
}

func assertPDF(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:min(buf.Len(), 16)])
	}
}

func sample() domain.InvoiceData {
	return builder.SampleInvoice(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
}

func TestTemplateRenderer_Presets(t *testing.T) {
	r := render.NewTemplateRenderer(newCountingImages(t))
	for _, p := range preset.Default().List() {
		t.Run(p.ID, func(t *testing.T) {
			var buf bytes.Buffer
			if err := r.Render(context.Background(), &buf, p.Template, sample()); err != nil {
				t.Fatalf("Render: %v", err)
			}
			assertPDF(t, &buf)
		})
	}
}

func TestTemplateRenderer_SkipsHiddenElements(t *testing.T) {
	images := newCountingImages(t)
	r := render.NewTemplateRenderer(images)

	tpl := builder.NewBlankTemplate("t1")
	visible := builder.NewElement("a", domain.ElementTypeImage, 10, 10)
	visible.Src = "https://example.com/visible.png"
	hidden := builder.NewElement("b", domain.ElementTypeImage, 10, 200)
	hidden.Src = "https://example.com/hidden.png"
	hidden.Hidden = true
	tpl.Elements = append(tpl.Elements, visible, hidden)

	var buf bytes.Buffer
	if err := r.Render(context.Background(), &buf, tpl, sample()); err != nil {
		t.Fatal(err)
	}
	assertPDF(t, &buf)

	got := images.requested()
	if len(got) != 1 || got[0] != visible.Src {
		t.Errorf("fetched %v, want only %s", got, visible.Src)
	}
}

func TestTemplateRenderer_NoImageSource(t *testing.T) {
	r := render.NewTemplateRenderer(nil)
	tpl := builder.NewBlankTemplate("t1")
	for i, typ := range domain.ElementTypes {
		el := builder.NewElement(string(typ), typ, 10, float64(i)*50)
		el.Position.Rotation = domain.Ptr(15.0)
		el.Style.Opacity = domain.Ptr(0.5)
		tpl.Elements = append(tpl.Elements, el)
	}
	tpl.Elements = append(tpl.Elements, domain.CanvasElement{
		ID:       "odd",
		Type:     "sticker",
		Position: domain.Position{X: 0, Y: 0, Width: 50, Height: 20},
	})

	var buf bytes.Buffer
	if err := r.Render(context.Background(), &buf, tpl, sample()); err != nil {
		t.Fatal(err)
	}
	assertPDF(t, &buf)
}

func TestTemplateRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, _ := preset.Default().Get("modern")

	var buf bytes.Buffer
	err := render.NewTemplateRenderer(nil).Render(ctx, &buf, p.Template, sample())
	if err == nil {
		t.Fatal("expected context error")
	}
}

func printSample() domain.PrintData {
	sig := "https://example.com/sig.png"
	return domain.PrintData{
		Title:           "Invoice",
		LogoURL:         "https://example.com/logo.png",
		InvoiceNumber:   "INV-0042",
		Date:            "2026-03-01",
		CustomerName:    "Globex",
		CustomerAddress: "1 Main St",
		CustomerPhone:   "555-0100",
		Items: []domain.PrintItem{
			{Product: "Design", Quantity: 2, Price: "150", Tax: "10"},
			{Product: "Hosting", Quantity: 1, Price: "1,200.50", Tax: "0"},
		},
		Subtotal:       "1500.50",
		TotalTax:       "30",
		Shipping:       "0",
		Total:          "1530.50",
		Terms:          "Net 30",
		CompanyName:    "Acme",
		SignatureImage: &sig,
		IsSignature:    true,
		IsBankAccount:  true,
		HasLogo:        domain.LogoEnabled,
	}
}

func TestPrintRenderer_AllStyles(t *testing.T) {
	r := render.NewPrintRenderer(newCountingImages(t))
	styles := append(append([]domain.PrintStyle(nil), domain.PrintStyles...), "StyleNine", "")
	for _, s := range styles {
		t.Run(string(s), func(t *testing.T) {
			var buf bytes.Buffer
			if err := r.Render(context.Background(), &buf, printSample(), s); err != nil {
				t.Fatalf("Render: %v", err)
			}
			assertPDF(t, &buf)
		})
	}
}

func TestPrintRenderer_LogoDisabled(t *testing.T) {
	images := newCountingImages(t)
	data := printSample()
	data.HasLogo = domain.LogoDisabled
	data.IsSignature = false

	var buf bytes.Buffer
	if err := render.NewPrintRenderer(images).Render(context.Background(), &buf, data, domain.StyleOne); err != nil {
		t.Fatal(err)
	}
	if got := images.requested(); len(got) != 0 {
		t.Errorf("fetched %v with logo and signature off", got)
	}
}

func TestPrintRenderer_ManyItemsPaginate(t *testing.T) {
	data := printSample()
	for i := range 80 {
		data.Items = append(data.Items, domain.PrintItem{
			Product: strings.Repeat("x", i%20+1), Quantity: 1, Price: "1",
		})
	}
	var buf bytes.Buffer
	if err := render.NewPrintRenderer(nil).Render(context.Background(), &buf, data, domain.StyleFive); err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(buf.Bytes(), []byte("/Type /Page\n")); n < 2 {
		t.Errorf("pages = %d, want at least 2", n)
	}
}

func TestResolveStyle(t *testing.T) {
	tests := map[domain.PrintStyle]domain.PrintStyle{
		domain.StyleThree: domain.StyleThree,
		domain.StyleEight: domain.StyleEight,
		"StyleNine":       domain.StyleOne,
		"":                domain.StyleOne,
	}
	for in, want := range tests {
		if got := render.ResolveStyle(in); got != want {
			t.Errorf("ResolveStyle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{1234.5, "USD", "$1,234.50"},
		{0, "USD", "$0.00"},
		{-12.3, "EUR", "-€12.30"},
		{1000, "JPY", "¥1,000"},
		{1234567.891, "usd", "$1,234,567.89"},
		{12, "CHF", "CHF 12.00"},
		{999, "", "999.00"},
	}
	for _, tt := range tests {
		if got := render.FormatMoney(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatMoney(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}
