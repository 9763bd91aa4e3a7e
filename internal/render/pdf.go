// Package render turns templates and print records into PDF documents
// using gofpdf. All coordinates are PDF points.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"invoicebuilder/internal/imagefetch"
)

// ImageSource resolves an image URL to bytes. *imagefetch.Fetcher implements it.
type ImageSource interface {
	Fetch(ctx context.Context, url string) (*imagefetch.Image, error)
}

type rgb struct{ r, g, b int }

var (
	black   = rgb{0, 0, 0}
	white   = rgb{255, 255, 255}
	gray100 = rgb{243, 244, 246}
	gray300 = rgb{209, 213, 219}
	gray400 = rgb{156, 163, 175}
	gray500 = rgb{107, 114, 128}
)

// parseColor accepts #rgb and #rrggbb. Anything else yields def.
func parseColor(s string, def rgb) rgb {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return def
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return def
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}

func colorOr(p *string, def rgb) rgb {
	if p == nil {
		return def
	}
	return parseColor(*p, def)
}

// doc wraps one gofpdf document with the bits every renderer needs.
type doc struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	images ImageSource
	ctx    context.Context
	nimg   int
}

func newDoc(ctx context.Context, images ImageSource, width, height float64) *doc {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.AddPage()
	return &doc{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: images,
		ctx:    ctx,
	}
}

func (d *doc) setFill(c rgb) { d.pdf.SetFillColor(c.r, c.g, c.b) }
func (d *doc) setDraw(c rgb) { d.pdf.SetDrawColor(c.r, c.g, c.b) }
func (d *doc) setText(c rgb) { d.pdf.SetTextColor(c.r, c.g, c.b) }

func (d *doc) fillRect(x, y, w, h float64, c rgb) {
	d.setFill(c)
	d.pdf.Rect(x, y, w, h, "F")
}

func (d *doc) strokeRect(x, y, w, h, width float64, c rgb) {
	d.setDraw(c)
	d.pdf.SetLineWidth(width)
	d.pdf.Rect(x, y, w, h, "D")
}

func (d *doc) line(x1, y1, x2, y2, width float64, c rgb) {
	d.setDraw(c)
	d.pdf.SetLineWidth(width)
	d.pdf.Line(x1, y1, x2, y2)
}

// text writes wrapped text into a box of width w starting at (x, y) and
// returns the y below the last line.
func (d *doc) text(x, y, w, lineH float64, align, s string) float64 {
	d.pdf.SetXY(x, y)
	d.pdf.MultiCell(w, lineH, d.tr(s), "", align, false)
	return d.pdf.GetY()
}

// cell writes a single unwrapped line.
func (d *doc) cell(x, y, w, h float64, align, s string) {
	d.pdf.SetXY(x, y)
	d.pdf.CellFormat(w, h, d.tr(s), "", 0, align, false, 0, "")
}

// image fetches src and draws it contained and centered in the box.
// It reports false when the image could not be drawn.
func (d *doc) image(src string, x, y, w, h float64) bool {
	if src == "" || d.images == nil {
		return false
	}
	img, err := d.images.Fetch(d.ctx, src)
	if err != nil {
		log.Printf("[RENDER] Failed to fetch image %q: %v", truncate(src, 80), err)
		return false
	}
	imgType := imagefetch.PDFImageType(img.ContentType)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		log.Printf("[RENDER] Unreadable image %q: %v", truncate(src, 80), err)
		return false
	}
	if imgType == "" {
		imgType = strings.ToUpper(strings.Replace(format, "jpeg", "jpg", 1))
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return false
	}

	d.nimg++
	name := fmt.Sprintf("img%d", d.nimg)
	opts := gofpdf.ImageOptions{ImageType: imgType}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if d.pdf.Err() {
		return false
	}

	scale := min(w/float64(cfg.Width), h/float64(cfg.Height))
	iw, ih := float64(cfg.Width)*scale, float64(cfg.Height)*scale
	d.pdf.ImageOptions(name, x+(w-iw)/2, y+(h-ih)/2, iw, ih, false, opts, 0, "")
	return true
}

func (d *doc) output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
