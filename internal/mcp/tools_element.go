package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"invoicebuilder/internal/builder"
	"invoicebuilder/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerElementTools() {
	types := make([]string, len(domain.ElementTypes))
	for i, t := range domain.ElementTypes {
		types[i] = string(t)
	}

	// ── add_element ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Add an element to the active template and select it. Position is auto-calculated if not provided."),
		mcp.WithString("type",
			mcp.Description("Element type: "+strings.Join(types, ", ")),
			mcp.Required(),
		),
		mcp.WithNumber("x", mcp.Description("X position in points (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position in points (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (optional, uses the type default)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, uses the type default)")),
		mcp.WithString("content", mcp.Description("Literal text for text elements (optional)")),
		mcp.WithString("src", mcp.Description("Image URL for image elements (optional)")),
	), s.handleAddElement)

	// ── update_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_element",
		mcp.WithDescription("Update content, image source, style or flags of an element. Omitted fields are unchanged."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New text content")),
		mcp.WithString("src", mcp.Description("New image URL")),
		mcp.WithString("style", mcp.Description(`JSON style fields merged over the current style, e.g. {"fontSize":14,"color":"#111827"}`)),
		mcp.WithBoolean("locked", mcp.Description("Lock the element against moves and resizes")),
		mcp.WithBoolean("hidden", mcp.Description("Hide the element from the canvas and exports")),
	), s.handleUpdateElement)

	// ── list_elements ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List elements of the active template, optionally filtered by type"),
		mcp.WithString("type", mcp.Description("Filter by element type (optional)")),
	), s.handleListElements)

	// ── move_element ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_element",
		mcp.WithDescription("Move an element to a new position"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveElement)

	// ── resize_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_element",
		mcp.WithDescription("Resize an element"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("New height"), mcp.Required()),
	), s.handleResizeElement)

	// ── delete_element (destructive) ───────────────────
	s.mcp.AddTool(mcp.NewTool("delete_element",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete an element. Requires user approval."),
		mcp.WithString("elementId", mcp.Description("Element ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteElement)

	// ── duplicate_element ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_element",
		mcp.WithDescription(fmt.Sprintf("Copy an element under a new id, offset by %.0fpt, and select the copy", float64(builder.DuplicateOffset))),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
	), s.handleDuplicateElement)

	// ── select_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_element",
		mcp.WithDescription("Select an element. Omit elementId to clear the selection."),
		mcp.WithString("elementId", mcp.Description("Element ID (optional)")),
	), s.handleSelectElement)

	// ── arrange_elements ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_elements",
		mcp.WithDescription("Lay out elements left to right in rows, wrapping at the page margin"),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs"), mcp.Required()),
		mcp.WithNumber("startX", mcp.Description("Starting X position (default 40)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (default 40)")),
	), s.handleArrangeElements)
}

type elementSummary struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Locked  bool    `json:"locked,omitempty"`
	Hidden  bool    `json:"hidden,omitempty"`
	Preview string  `json:"preview,omitempty"` // first 200 chars of content
}

func summarizeElement(el domain.CanvasElement) elementSummary {
	preview := el.Content
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return elementSummary{
		ID:      el.ID,
		Type:    string(el.Type),
		X:       el.Position.X,
		Y:       el.Position.Y,
		Width:   el.Position.Width,
		Height:  el.Position.Height,
		Locked:  el.Locked,
		Hidden:  el.Hidden,
		Preview: preview,
	}
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	elType := domain.ElementType(req.GetString("type", ""))
	if !elType.Valid() {
		return nil, fmt.Errorf("unknown element type %q", elType)
	}

	defW, defH := builder.DefaultSize(elType)
	w := getFloat(args, "width", defW)
	h := getFloat(args, "height", defH)

	// Auto-layout if position not provided
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if !hasX || !hasY {
		x, y = s.layout.NextPosition(s.store.ActiveTemplate(), w, h)
	}

	el := s.store.AddElement(ctx, elType, x, y)

	changed := false
	if w != defW || h != defH {
		el.Position.Width, el.Position.Height = w, h
		changed = true
	}
	if content, ok := args["content"].(string); ok && content != "" {
		el.Content = content
		changed = true
	}
	if src, ok := args["src"].(string); ok && src != "" {
		el.Src = src
		changed = true
	}
	if changed {
		s.store.UpdateElement(ctx, el)
		el, _ = s.store.Element(el.ID)
	}
	return jsonResult(el)
}

func (s *Server) handleUpdateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	el, err := s.getElementForTool(args)
	if err != nil {
		return nil, err
	}

	if content, ok := args["content"].(string); ok {
		el.Content = content
	}
	if src, ok := args["src"].(string); ok {
		el.Src = src
	}
	if raw, ok := args["style"].(string); ok && raw != "" {
		var patch domain.Style
		if err := parseJSON(raw, &patch); err != nil {
			return nil, fmt.Errorf("parse style: %w", err)
		}
		el.Style = el.Style.Merge(patch)
	}
	if locked, ok := args["locked"].(bool); ok {
		el.Locked = locked
	}
	if hidden, ok := args["hidden"].(bool); ok {
		el.Hidden = hidden
	}

	s.store.UpdateElement(ctx, el)
	return textResult(fmt.Sprintf("Element %s updated", el.ID)), nil
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := req.GetString("type", "")
	var out []elementSummary
	for _, el := range s.store.ActiveTemplate().Elements {
		if filter == "" || string(el.Type) == filter {
			out = append(out, summarizeElement(el))
		}
	}
	if out == nil {
		out = []elementSummary{}
	}
	return jsonResult(out)
}

func (s *Server) handleMoveElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	el, err := s.getElementForTool(args)
	if err != nil {
		return nil, err
	}
	if el.Locked {
		return nil, fmt.Errorf("element %s is locked", el.ID)
	}

	el.Position.X = getFloat(args, "x", el.Position.X)
	el.Position.Y = getFloat(args, "y", el.Position.Y)
	s.store.UpdateElement(ctx, el)
	return textResult(fmt.Sprintf("Element %s moved to (%.0f, %.0f)", el.ID, el.Position.X, el.Position.Y)), nil
}

func (s *Server) handleResizeElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	el, err := s.getElementForTool(args)
	if err != nil {
		return nil, err
	}
	if el.Locked {
		return nil, fmt.Errorf("element %s is locked", el.ID)
	}

	el.Position.Width = getFloat(args, "width", el.Position.Width)
	el.Position.Height = getFloat(args, "height", el.Position.Height)
	s.store.UpdateElement(ctx, el)

	el, _ = s.store.Element(el.ID)
	return textResult(fmt.Sprintf("Element %s resized to (%.0f × %.0f)", el.ID, el.Position.Width, el.Position.Height)), nil
}

func (s *Server) handleDeleteElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	el, err := s.getElementForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}

	targets := Targets{ElementIDs: []string{el.ID}}
	if !s.confirm(ctx, "delete_element", fmt.Sprintf("Delete %s element %s", el.Type, el.ID), targets) {
		return textResult("Action rejected by user"), nil
	}

	s.store.DeleteElement(ctx, el.ID)
	return textResult(fmt.Sprintf("Element %s deleted", el.ID)), nil
}

func (s *Server) handleDuplicateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	el, err := s.getElementForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	dup, ok := s.store.DuplicateElement(ctx, el.ID)
	if !ok {
		return nil, fmt.Errorf("element %s not found", el.ID)
	}
	return jsonResult(dup)
}

func (s *Server) handleSelectElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("elementId", "")
	if id != "" {
		if _, ok := s.store.Element(id); !ok {
			return nil, fmt.Errorf("element %s not found", id)
		}
	}
	s.store.SelectElement(ctx, id)
	if id == "" {
		return textResult("Selection cleared"), nil
	}
	return textResult(fmt.Sprintf("Element %s selected", id)), nil
}

func (s *Server) handleArrangeElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ids := splitIDs(req.GetString("elementIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("elementIds is required")
	}

	els := make([]domain.CanvasElement, 0, len(ids))
	for _, id := range ids {
		el, ok := s.store.Element(id)
		if !ok {
			return nil, fmt.Errorf("element %s not found", id)
		}
		if el.Locked {
			return nil, fmt.Errorf("element %s is locked", id)
		}
		els = append(els, el)
	}

	pageW, _ := pageSize(s.store.ActiveTemplate())
	startX := getFloat(args, "startX", Margin)
	startY := getFloat(args, "startY", Margin)
	for _, el := range s.layout.ArrangeGroup(els, pageW, startX, startY) {
		s.store.UpdateElement(ctx, el)
	}
	return textResult(fmt.Sprintf("Arranged %d elements", len(els))), nil
}
