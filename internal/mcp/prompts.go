package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("design_invoice",
		mcp.WithPromptDescription("Guide through building an invoice template from a preset"),
		mcp.WithArgument("brand",
			mcp.ArgumentDescription("Business or brand the invoice is for"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("tone",
			mcp.ArgumentDescription("Visual tone, e.g. minimal, corporate, playful"),
		),
	), s.handleDesignInvoicePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("restyle_template",
		mcp.WithPromptDescription("Apply a consistent color and font scheme to the active template"),
		mcp.WithArgument("primaryColor",
			mcp.ArgumentDescription("Primary hex color, e.g. #1E3A8A"),
			mcp.RequiredArgument(),
		),
	), s.handleRestylePrompt)
}

func (s *Server) handleDesignInvoicePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	brand := req.Params.Arguments["brand"]
	tone := req.Params.Arguments["tone"]
	if tone == "" {
		tone = "professional"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Design an invoice template for: %s", brand),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Design a %s invoice template for "%s" on the A4 canvas (595 x 842 points). Follow these steps:

1. Call list_presets and apply_preset with the preset closest to the requested tone
2. Call get_state to see the elements the preset placed
3. Add a logo element if the preset has none, and a text element with the brand tagline
4. Adjust colors and font sizes with update_element, keeping businessInfo, clientInfo, itemsTable and totals readable
5. Save the result with save_template, naming it after the brand

Keep every element inside the page and avoid overlaps.`, tone, brand),
				},
			},
		},
	}, nil
}

func (s *Server) handleRestylePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	primary := req.Params.Arguments["primaryColor"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Restyle the active template around %s", primary),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Restyle the active invoice template around the primary color %s:

1. Call list_elements to see every element
2. Set rectangles used as headers or bands to backgroundColor %s with white text on top
3. Set heading text (the INVOICE title, totals) to color %s
4. Leave body text dark (#111827) and table borders light (#d1d5db)
5. Call save_template when done`, primary, primary, primary),
				},
			},
		},
	}, nil
}
