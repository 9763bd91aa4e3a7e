package mcpserver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/render"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTemplateTools() {
	// ── get_state ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Summarize the builder: active template, elements, selection, zoom and saved templates"),
	), s.handleGetState)

	// ── list_presets ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_presets",
		mcp.WithDescription("List the built-in template presets"),
	), s.handleListPresets)

	// ── apply_preset (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("apply_preset",
		mcp.WithDescription("🛑 DESTRUCTIVE: Replace the active template with a copy of a preset. Unsaved edits are lost."),
		mcp.WithString("presetId", mcp.Description("Preset ID: modern, professional or creative"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleApplyPreset)

	// ── save_template ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_template",
		mcp.WithDescription("Save the active template into the saved list, replacing an entry with the same id"),
		mcp.WithString("name", mcp.Description("Rename the template before saving (optional)")),
	), s.handleSaveTemplate)

	// ── load_template ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("load_template",
		mcp.WithDescription("Make a saved template the active one"),
		mcp.WithString("templateId", mcp.Description("Saved template ID"), mcp.Required()),
	), s.handleLoadTemplate)

	// ── list_saved_templates ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_saved_templates",
		mcp.WithDescription("List saved templates"),
	), s.handleListSavedTemplates)

	// ── delete_saved_template (destructive) ────────────
	s.mcp.AddTool(mcp.NewTool("delete_saved_template",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a template from the saved list. Requires user approval."),
		mcp.WithString("templateId", mcp.Description("Saved template ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteSavedTemplate)

	// ── set_zoom ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_zoom",
		mcp.WithDescription("Set the canvas zoom factor (1 = 100%)"),
		mcp.WithNumber("zoom", mcp.Description("Zoom factor"), mcp.Required()),
	), s.handleSetZoom)

	// ── export_pdf ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_pdf",
		mcp.WithDescription("Render the active template with the current invoice data to a PDF file"),
		mcp.WithString("path", mcp.Description("Output file path"), mcp.Required()),
	), s.handleExportPDF)
}

type templateSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Elements int    `json:"elements"`
}

type stateSummary struct {
	Template struct {
		ID       string           `json:"id"`
		Name     string           `json:"name"`
		Width    float64          `json:"width"`
		Height   float64          `json:"height"`
		Elements []elementSummary `json:"elements"`
	} `json:"template"`
	SelectedID string            `json:"selectedId,omitempty"`
	Zoom       float64           `json:"zoom"`
	Saved      []templateSummary `json:"saved"`
}

func summarizeTemplates(ts []domain.TemplateData) []templateSummary {
	out := make([]templateSummary, len(ts))
	for i, t := range ts {
		out[i] = templateSummary{ID: t.ID, Name: t.Name, Elements: len(t.Elements)}
	}
	return out
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleGetState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.store.State()

	var out stateSummary
	out.Template.ID = snap.ActiveTemplate.ID
	out.Template.Name = snap.ActiveTemplate.Name
	out.Template.Width = snap.ActiveTemplate.Width
	out.Template.Height = snap.ActiveTemplate.Height
	out.Template.Elements = make([]elementSummary, len(snap.ActiveTemplate.Elements))
	for i, el := range snap.ActiveTemplate.Elements {
		out.Template.Elements[i] = summarizeElement(el)
	}
	if snap.SelectedElement != nil {
		out.SelectedID = snap.SelectedElement.ID
	}
	out.Zoom = snap.Zoom
	out.Saved = summarizeTemplates(snap.SavedTemplates)
	return jsonResult(out)
}

func (s *Server) handleListPresets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type presetSummary struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Thumbnail string `json:"thumbnail"`
		Elements  int    `json:"elements"`
	}
	presets := s.store.Presets()
	out := make([]presetSummary, len(presets))
	for i, p := range presets {
		out[i] = presetSummary{ID: p.ID, Name: p.Name, Thumbnail: p.Thumbnail, Elements: len(p.Template.Elements)}
	}
	return jsonResult(out)
}

func (s *Server) handleApplyPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	presetID := req.GetString("presetId", "")
	if presetID == "" {
		return nil, fmt.Errorf("presetId is required")
	}
	known := false
	for _, p := range s.store.Presets() {
		known = known || p.ID == presetID
	}
	if !known {
		return nil, fmt.Errorf("preset %s not found", presetID)
	}

	if !s.confirm(ctx, "apply_preset", fmt.Sprintf("Replace the active template with preset %s", presetID), Targets{PresetID: presetID}) {
		return textResult("Action rejected by user"), nil
	}
	s.store.ApplyTemplate(ctx, presetID)
	t := s.store.ActiveTemplate()
	return textResult(fmt.Sprintf("Applied preset %s (%d elements)", t.Name, len(t.Elements))), nil
}

func (s *Server) handleSaveTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if name := req.GetString("name", ""); name != "" {
		t := s.store.ActiveTemplate()
		t.Name = name
		if err := s.store.SetActiveTemplate(ctx, t); err != nil {
			return nil, fmt.Errorf("rename template: %w", err)
		}
	}
	id := s.store.SaveTemplate(ctx)
	return textResult(fmt.Sprintf("Template saved as %s", id)), nil
}

func (s *Server) handleLoadTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("templateId", "")
	if id == "" {
		return nil, fmt.Errorf("templateId is required")
	}
	if !s.hasSaved(id) {
		return nil, fmt.Errorf("saved template %s not found", id)
	}
	s.store.LoadTemplate(ctx, id)
	return textResult(fmt.Sprintf("Loaded template %s", id)), nil
}

func (s *Server) handleListSavedTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(summarizeTemplates(s.store.SavedTemplates()))
}

func (s *Server) handleDeleteSavedTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("templateId", "")
	if id == "" {
		return nil, fmt.Errorf("templateId is required")
	}
	if !s.hasSaved(id) {
		return nil, fmt.Errorf("saved template %s not found", id)
	}
	targets := Targets{TemplateIDs: []string{id}}
	if !s.confirm(ctx, "delete_saved_template", fmt.Sprintf("Delete saved template %s", id), targets) {
		return textResult("Action rejected by user"), nil
	}
	s.store.DeleteSavedTemplate(ctx, id)
	return textResult(fmt.Sprintf("Saved template %s deleted", id)), nil
}

func (s *Server) handleSetZoom(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	zoom := getFloat(req.GetArguments(), "zoom", 0)
	if zoom <= 0 {
		return nil, fmt.Errorf("zoom must be positive")
	}
	s.store.SetZoom(ctx, zoom)
	return textResult(fmt.Sprintf("Zoom set to %.0f%%", s.store.Zoom()*100)), nil
}

func (s *Server) handleExportPDF(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	t := s.store.ActiveTemplate()
	if err := render.NewTemplateRenderer(s.images).Render(ctx, f, t, s.store.InvoiceData()); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return textResult(fmt.Sprintf("Exported %s to %s", t.Name, path)), nil
}

func (s *Server) hasSaved(id string) bool {
	for _, t := range s.store.SavedTemplates() {
		if t.ID == id {
			return true
		}
	}
	return false
}
