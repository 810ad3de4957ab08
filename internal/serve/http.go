package serve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/history"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
)

// HTTPServer serves the generated site with livereload script injection and
// operational endpoints.
type HTTPServer struct {
	cfg            *config.Config
	siteDir        string
	hub            *LiveReloadHub
	store          *history.Store
	metricsHandler http.Handler
	server         *http.Server
}

func NewHTTPServer(cfg *config.Config, siteDir string, hub *LiveReloadHub, store *history.Store, metricsHandler http.Handler) *HTTPServer {
	return &HTTPServer{cfg: cfg, siteDir: siteDir, hub: hub, store: store, metricsHandler: metricsHandler}
}

// Start begins listening. Non-blocking; errors after startup are logged.
func (s *HTTPServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/livereload", s.hub)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/builds", s.handleBuilds)
	if s.cfg.Serve.Metrics && s.metricsHandler != nil {
		mux.Handle("/metrics", s.metricsHandler)
	}
	mux.HandleFunc("/", s.handleSite)

	addr := fmt.Sprintf(":%d", s.cfg.Serve.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	// No write timeout: the livereload SSE stream is long-lived.
	s.server = &http.Server{
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 300 * time.Second,
	}
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", logfields.Error(err))
		}
	}()
	slog.Info("Serving site", logfields.Port(s.cfg.Serve.Port), logfields.Path(s.siteDir))
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

func (s *HTTPServer) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "build history disabled", http.StatusNotFound)
		return
	}
	entries, err := s.store.Recent(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

// handleSite serves files from the output tree, injecting the livereload
// script into HTML pages.
func (s *HTTPServer) handleSite(w http.ResponseWriter, r *http.Request) {
	urlPath := r.URL.Path
	if strings.HasSuffix(urlPath, "/") {
		urlPath += "index.html"
	}

	rel := filepath.FromSlash(strings.TrimPrefix(urlPath, "/"))
	filePath := filepath.Join(s.siteDir, rel)

	// Keep requests inside the site root.
	if !strings.HasPrefix(filePath, filepath.Clean(s.siteDir)+string(filepath.Separator)) &&
		filePath != filepath.Clean(s.siteDir) {
		http.NotFound(w, r)
		return
	}

	if !strings.HasSuffix(filePath, ".html") {
		http.ServeFile(w, r, filePath)
		return
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(injectLiveReload(data))
}

// injectLiveReload inserts the client script before </body>, or appends it
// when the page has no closing body tag.
func injectLiveReload(page []byte) []byte {
	script := "<script>" + LiveReloadScript + "</script>"
	html := string(page)
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		return []byte(html[:idx] + script + html[idx:])
	}
	return []byte(html + script)
}
