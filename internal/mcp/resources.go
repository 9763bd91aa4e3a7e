package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	presetsURI        = "invoice://presets"
	activeTemplateURI = "invoice://template"
	invoiceURI        = "invoice://invoice"
	savedTemplatePfx  = "invoice://templates/"
)

func (s *Server) registerResources() {
	// ── invoice://presets ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		presetsURI,
		"Template Presets",
		mcp.WithMIMEType("application/json"),
	), s.handlePresetsResource)

	// ── invoice://template ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		activeTemplateURI,
		"Active Template",
		mcp.WithMIMEType("application/json"),
	), s.handleActiveTemplateResource)

	// ── invoice://invoice ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		invoiceURI,
		"Invoice Data",
		mcp.WithMIMEType("application/json"),
	), s.handleInvoiceResource)

	// ── invoice://templates/{templateId} ───────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			savedTemplatePfx+"{templateId}",
			"Saved Template",
		),
		s.handleSavedTemplateResource,
	)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePresetsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(presetsURI, s.store.Presets())
}

func (s *Server) handleActiveTemplateResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(activeTemplateURI, s.store.ActiveTemplate())
}

func (s *Server) handleInvoiceResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(invoiceURI, s.store.InvoiceData())
}

func (s *Server) handleSavedTemplateResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := templateIDFromURI(uri)
	if id == "" {
		return nil, fmt.Errorf("could not extract templateId from URI: %s", uri)
	}
	for _, t := range s.store.SavedTemplates() {
		if t.ID == id {
			return jsonResource(uri, t)
		}
	}
	return nil, fmt.Errorf("saved template %s not found", id)
}

// templateIDFromURI extracts the id from "invoice://templates/{id}".
func templateIDFromURI(uri string) string {
	id, ok := strings.CutPrefix(uri, savedTemplatePfx)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
