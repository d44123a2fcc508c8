// Package web provides an HTTP status server for the pulsein daemon.
package web

import (
	"context"
	"net/http"

	"github.com/sweeney/pulsein/internal/status"
)

// Handler returns the status routes backed by tr: an HTML summary at
// the root (and /index.html) and the machine-readable document at
// /index.json. Any other path is a 404.
func Handler(tr *status.Tracker) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/index.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(status.FormatJSON(tr.Snapshot()))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		renderHTML(w, tr.Snapshot())
	})
	return mux
}

// Server binds the status routes to a listening address.
type Server struct {
	httpServer *http.Server
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	return &Server{httpServer: &http.Server{
		Addr:    addr,
		Handler: Handler(tracker),
	}}
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
