package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"finance-search/models"
	"finance-search/search"
)

const fallbackShell = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Search Tool with Gen AI</title></head>
<body><div id="root"></div></body>
</html>
`

// Handler serves the generic search surface and the single-page app shell.
type Handler struct {
	Engine    search.SearchEngine
	Version   string
	StaticDir string

	now func() time.Time
}

func NewHandler(engine search.SearchEngine, version, staticDir string) *Handler {
	return &Handler{Engine: engine, Version: version, StaticDir: staticDir, now: time.Now}
}

// Search filters the fixture results by title. An empty q lists everything.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results := h.Engine.Search(query)

	respondWithJSON(w, http.StatusOK, models.SearchResponse{
		Query:     query,
		Results:   results,
		Total:     len(results),
		Timestamp: models.Timestamp(h.now()),
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": models.Timestamp(h.now()),
		"version":   h.Version,
	})
}

// Static serves files from StaticDir and falls back to index.html for any
// path that is not a file, so client-side routes resolve to the app shell.
func (h *Handler) Static(w http.ResponseWriter, r *http.Request) {
	// Serve static files with no-cache headers for development
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if h.StaticDir != "" {
		name := filepath.Join(h.StaticDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			http.ServeFile(w, r, name)
			return
		}

		index := filepath.Join(h.StaticDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			http.ServeFile(w, r, index)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte(fallbackShell))
	}
}

// isAPIPath reports whether p belongs to the JSON API namespace.
func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
