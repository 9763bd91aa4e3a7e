package main

import (
	"embed"
	"log"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	builderApp "invoicebuilder/internal/app"
	"invoicebuilder/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	// `invoice-builder mcp` serves MCP on stdio instead of opening a window
	if len(os.Args) > 1 && os.Args[1] == "mcp" {
		cfg, err := config.Load("")
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if err := builderApp.ServeMCP(cfg); err != nil {
			log.Fatalf("MCP server error: %v", err)
		}
		return
	}

	app := builderApp.New()

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	err := wails.Run(&options.App{
		Title:     "Invoice Builder",
		Width:     1440,
		Height:    900,
		MinWidth:  1024,
		MinHeight: 700,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 243, G: 244, B: 246, A: 1},
		Menu:             appMenu,
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				HideTitleBar:               false,
				FullSizeContent:            true,
				UseToolbar:                 true,
				HideToolbarSeparator:       true,
			},
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			About: &mac.AboutInfo{
				Title:   "Invoice Builder",
				Message: "Drag-and-drop invoice template designer",
			},
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
