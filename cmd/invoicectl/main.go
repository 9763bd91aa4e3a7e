// Command invoicectl renders templates and print layouts, manages saved
// templates and backups, and runs the HTTP API or MCP server without the
// desktop window.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"invoicebuilder/internal/app"
	"invoicebuilder/internal/config"
	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/httpapi"
	mcpserver "invoicebuilder/internal/mcp"
	"invoicebuilder/internal/preset"
	"invoicebuilder/internal/render"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("invoicectl: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "invoicectl",
		Usage: "invoice template builder tools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file",
				Value:   config.FilePath(),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "presets",
				Usage:  "list built-in template presets",
				Action: presetsAction,
			},
			{
				Name:   "templates",
				Usage:  "list saved templates",
				Action: templatesAction,
			},
			{
				Name:   "config",
				Usage:  "print the effective configuration",
				Action: configAction,
			},
			{
				Name:  "render",
				Usage: "render a saved template or preset to PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "saved template or preset id", Required: true},
					&cli.StringFlag{Name: "invoice", Aliases: []string{"i"}, Usage: "invoice data JSON file (default: sample invoice)"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output PDF path", Value: "invoice.pdf"},
				},
				Action: renderAction,
			},
			{
				Name:  "print",
				Usage: "render a print record in one of the fixed styles",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "print data JSON file", Required: true},
					&cli.StringFlag{Name: "style", Aliases: []string{"s"}, Usage: "StyleOne … StyleEight (default: the record's theme)"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output PDF path", Value: "invoice.pdf"},
				},
				Action: printAction,
			},
			{
				Name:  "serve",
				Usage: "run the HTTP API with MCP mounted at /mcp",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address (default from config)"},
				},
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "run the MCP server on stdin/stdout",
				Action: mcpAction,
			},
			{
				Name:  "backup",
				Usage: "snapshot saved templates",
				Subcommands: []*cli.Command{
					{Name: "run", Usage: "write a backup now", Action: backupRunAction},
					{Name: "list", Usage: "list backups, newest first", Action: backupListAction},
					{
						Name:      "restore",
						Usage:     "replace saved templates with a backup",
						ArgsUsage: "<backup file>",
						Action:    backupRestoreAction,
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	return cfg, nil
}

// withServices opens storage for the duration of fn.
func withServices(c *cli.Context, fn func(*app.Services) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc := app.OpenServices(c.Context, cfg, nil, nil)
	defer svc.Close()
	return fn(svc)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writePDF(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Println(path)
	return nil
}

// ── Actions ────────────────────────────────────────────────

func presetsAction(c *cli.Context) error {
	type row struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Elements int    `json:"elements"`
	}
	var rows []row
	for _, p := range preset.Default().List() {
		rows = append(rows, row{ID: p.ID, Name: p.Name, Elements: len(p.Template.Elements)})
	}
	return printJSON(rows)
}

func templatesAction(c *cli.Context) error {
	return withServices(c, func(svc *app.Services) error {
		return printJSON(svc.Templates.Load(c.Context))
	})
}

func configAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	fmt.Println(cfg.String())
	return nil
}

func renderAction(c *cli.Context) error {
	return withServices(c, func(svc *app.Services) error {
		id := c.String("template")
		tpl, ok := svc.Templates.Get(c.Context, id)
		if !ok {
			p, found := svc.Presets.Get(id)
			if !found {
				return cli.Exit(fmt.Sprintf("template %s not found", id), 1)
			}
			tpl = p.Template
		}

		inv := svc.Builder.InvoiceData()
		if path := c.String("invoice"); path != "" {
			if err := readJSON(path, &inv); err != nil {
				return err
			}
		}

		var buf bytes.Buffer
		if err := render.NewTemplateRenderer(svc.Images).Render(c.Context, &buf, tpl, inv); err != nil {
			return err
		}
		return writePDF(c.String("out"), buf.Bytes())
	})
}

func printAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	var data domain.PrintData
	if err := readJSON(c.String("data"), &data); err != nil {
		return err
	}

	svc := app.OpenServices(c.Context, cfg, nil, nil)
	defer svc.Close()

	var buf bytes.Buffer
	style := domain.PrintStyle(c.String("style"))
	if err := render.NewPrintRenderer(svc.Images).Render(c.Context, &buf, data, style); err != nil {
		return err
	}
	return writePDF(c.String("out"), buf.Bytes())
}

func serveAction(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	addr := c.String("addr")
	if addr == "" {
		addr = cfg.HTTP.Addr
	}

	svc := app.OpenServices(ctx, cfg, nil, nil)
	defer svc.Close()
	if err := svc.StartBackups(ctx); err != nil {
		log.Printf("[APP] %v", err)
	}

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{Store: svc.Builder, Images: svc.Images})
	handlers := httpapi.NewHandlers(svc.Images, svc.Presets, svc.Templates, svc.Builder.InvoiceData)
	return httpapi.Serve(ctx, addr, httpapi.NewRouter(handlers, mcpSrv.Handler()))
}

func mcpAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return app.ServeMCP(cfg)
}

func backupRunAction(c *cli.Context) error {
	return withServices(c, func(svc *app.Services) error {
		path, err := svc.RunBackup(c.Context)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	})
}

func backupListAction(c *cli.Context) error {
	return withServices(c, func(svc *app.Services) error {
		paths, err := svc.Backup.List()
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	})
}

func backupRestoreAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("usage: invoicectl backup restore <backup file>", 2)
	}
	return withServices(c, func(svc *app.Services) error {
		n, err := svc.RestoreBackup(c.Context, path)
		if err != nil {
			return err
		}
		fmt.Printf("restored %d templates from %s\n", n, path)
		return nil
	})
}
