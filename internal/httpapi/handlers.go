package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/imagefetch"
	"invoicebuilder/internal/preset"
	"invoicebuilder/internal/render"
)

const maxBodyBytes = 4 << 20

// ImageFetcher resolves remote image URLs. *imagefetch.Fetcher implements it.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*imagefetch.Image, error)
}

// TemplateSource reads saved templates. *storage.TemplateStore implements it.
type TemplateSource interface {
	Load(ctx context.Context) []domain.TemplateData
	Get(ctx context.Context, id string) (domain.TemplateData, bool)
}

// Handlers holds the HTTP endpoint handlers.
type Handlers struct {
	images    ImageFetcher
	presets   *preset.Catalog
	templates TemplateSource
	invoice   func() domain.InvoiceData

	templatePDF *render.TemplateRenderer
	printPDF    *render.PrintRenderer
}

// NewHandlers creates the handlers. invoice supplies the invoice data used
// when a render request carries none.
func NewHandlers(images ImageFetcher, presets *preset.Catalog, templates TemplateSource, invoice func() domain.InvoiceData) *Handlers {
	if presets == nil {
		presets = preset.Default()
	}
	return &Handlers{
		images:      images,
		presets:     presets,
		templates:   templates,
		invoice:     invoice,
		templatePDF: render.NewTemplateRenderer(images),
		printPDF:    render.NewPrintRenderer(images),
	}
}

// ─────────────────────────────────────────────────────────────
// Image proxy
// ─────────────────────────────────────────────────────────────

// ImageHandler fetches ?url= server-side so the canvas can draw
// cross-origin images.
func (h *Handlers) ImageHandler(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "Missing image URL")
		return
	}

	img, err := h.images.Fetch(r.Context(), url)
	if err != nil {
		log.Printf("[HTTP] Image proxy failed for %q: %v", url, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch image")
		return
	}

	ct := img.ContentType
	if ct == "" {
		ct = imagefetch.DefaultContentType
	}
	w.Header().Set("Content-Type", ct)
	w.Write(img.Data)
}

// ─────────────────────────────────────────────────────────────
// Catalog
// ─────────────────────────────────────────────────────────────

func (h *Handlers) PresetsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presets.List())
}

func (h *Handlers) PresetHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.presets.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Preset not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) TemplatesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.templates.Load(r.Context()))
}

func (h *Handlers) TemplateHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := h.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ─────────────────────────────────────────────────────────────
// PDF
// ─────────────────────────────────────────────────────────────

// TemplatePDFHandler renders a saved template or a preset. The optional
// body is the InvoiceData to bind.
func (h *Handlers) TemplatePDFHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tpl, ok := h.templates.Get(r.Context(), id)
	if !ok {
		p, found := h.presets.Get(id)
		if !found {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		tpl = p.Template
	}

	inv, err := h.decodeInvoice(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.writePDF(w, tpl.Name, func(buf *bytes.Buffer) error {
		return h.templatePDF.Render(r.Context(), buf, tpl, inv)
	})
}

type renderRequest struct {
	Template domain.TemplateData `json:"template"`
	Invoice  *domain.InvoiceData `json:"invoice,omitempty"`
}

// RenderHandler renders an unsaved template posted by the editor.
func (h *Handlers) RenderHandler(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := req.Template.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv := h.currentInvoice()
	if req.Invoice != nil {
		inv = *req.Invoice
	}
	h.writePDF(w, req.Template.Name, func(buf *bytes.Buffer) error {
		return h.templatePDF.Render(r.Context(), buf, req.Template, inv)
	})
}

// PrintHandler renders a PrintData body in the layout named by ?style=.
func (h *Handlers) PrintHandler(w http.ResponseWriter, r *http.Request) {
	var data domain.PrintData
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	style := domain.PrintStyle(r.URL.Query().Get("style"))
	h.writePDF(w, data.Title+" "+data.InvoiceNumber, func(buf *bytes.Buffer) error {
		return h.printPDF.Render(r.Context(), buf, data, style)
	})
}

func (h *Handlers) decodeInvoice(r *http.Request) (domain.InvoiceData, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.InvoiceData{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return h.currentInvoice(), nil
	}
	var inv domain.InvoiceData
	if err := json.Unmarshal(body, &inv); err != nil {
		return domain.InvoiceData{}, err
	}
	return inv, nil
}

func (h *Handlers) currentInvoice() domain.InvoiceData {
	if h.invoice == nil {
		return domain.InvoiceData{}
	}
	return h.invoice()
}

// writePDF buffers the document so a render failure can still produce a
// JSON error instead of a truncated PDF.
func (h *Handlers) writePDF(w http.ResponseWriter, name string, draw func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("[HTTP] Failed to render PDF %q: %v", name, err)
		writeError(w, http.StatusInternalServerError, "Failed to render PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+fileName(name)+`.pdf"`)
	w.Write(buf.Bytes())
}

func fileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "invoice"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, name)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
