package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"invoicebuilder/internal/config"
	mcpserver "invoicebuilder/internal/mcp"
)

// noopEmitter is a no-op EventEmitter used in MCP-only mode (no Wails frontend).
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs a standalone MCP server on stdin/stdout with no GUI.
// Saved templates go to the configured storage, so a running desktop app
// with a watchable backend picks them up.
func ServeMCP(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	svc := OpenServices(ctx, cfg, noopEmitter{}, nil)
	defer svc.Close()

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter: noopEmitter{},
		Store:   svc.Builder,
		Images:  svc.Images,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	return mcpSrv.ServeStdio()
}
