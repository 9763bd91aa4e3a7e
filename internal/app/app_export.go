package app

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/render"
)

// ── PDF export ─────────────────────────────────────────────
// Both bindings ask for a destination with the native save dialog and
// return the chosen path, or "" when the user cancelled.

// ExportTemplatePDF renders the active template with the current invoice.
func (a *App) ExportTemplatePDF() (string, error) {
	t := a.store.ActiveTemplate()
	var buf bytes.Buffer
	if err := render.NewTemplateRenderer(a.svc.Images).Render(a.ctx, &buf, t, a.store.InvoiceData()); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return a.savePDF(t.Name, buf.Bytes())
}

// PrintInvoice renders a print record in one of the fixed styles.
func (a *App) PrintInvoice(data domain.PrintData, style string) (string, error) {
	var buf bytes.Buffer
	if err := render.NewPrintRenderer(a.svc.Images).Render(a.ctx, &buf, data, domain.PrintStyle(style)); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	name := strings.TrimSpace(data.Title + " " + data.InvoiceNumber)
	return a.savePDF(name, buf.Bytes())
}

func (a *App) savePDF(name string, data []byte) (string, error) {
	if name == "" {
		name = "invoice"
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export PDF",
		DefaultFilename: name + ".pdf",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "PDF (*.pdf)", Pattern: "*.pdf"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("save dialog: %w", err)
	}
	if path == "" {
		return "", nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	wailsRuntime.LogInfof(a.ctx, "Exported PDF to %s", path)
	return path, nil
}
