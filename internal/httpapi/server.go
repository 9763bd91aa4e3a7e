// Package httpapi exposes the image proxy, template catalog and PDF
// rendering over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every endpoint onto a chi router. mcp, when non-nil, is
// mounted at /mcp.
func NewRouter(h *Handlers, mcp http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/image", h.ImageHandler)
		r.Get("/presets", h.PresetsHandler)
		r.Get("/presets/{id}", h.PresetHandler)
		r.Get("/templates", h.TemplatesHandler)
		r.Get("/templates/{id}", h.TemplateHandler)
		r.Post("/templates/{id}/pdf", h.TemplatePDFHandler)
		r.Post("/render", h.RenderHandler)
		r.Post("/print", h.PrintHandler)
	})
	if mcp != nil {
		r.Handle("/mcp", mcp)
	}
	return r
}

// Serve runs the HTTP server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("[HTTP] Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
