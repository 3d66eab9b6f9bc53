package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// MediaHandler serves generated artifacts (audio clips, screenshots)
// from their directories. Only the basename of the requested path is
// used, so traversal outside the directory is impossible.
type MediaHandler struct {
	dir    string
	logger *zap.Logger
}

// NewMediaHandler serves files from dir.
func NewMediaHandler(dir string, logger *zap.Logger) *MediaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaHandler{
		dir:    dir,
		logger: logger.With(zap.String("component", "media_handler")),
	}
}

// HandleServe serves GET requests with a {file} path value.
func (h *MediaHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.PathValue("file"))
	if name == "" || name == "." || name == "/" {
		WriteErrorMessage(w, http.StatusNotFound, "File not found")
		return
	}

	path := filepath.Join(h.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		WriteErrorMessage(w, http.StatusNotFound, "File not found")
		return
	}

	http.ServeFile(w, r, path)
}

// IndexHandler serves the frontend entry point, or a service
// descriptor when no web directory is configured.
type IndexHandler struct {
	webDir string
}

// NewIndexHandler builds the handler. webDir may be empty.
func NewIndexHandler(webDir string) *IndexHandler {
	return &IndexHandler{webDir: webDir}
}

// HandleIndex serves GET /.
func (h *IndexHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteErrorMessage(w, http.StatusNotFound, "Not found")
		return
	}

	if h.webDir != "" {
		index := filepath.Join(h.webDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			http.ServeFile(w, r, index)
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"service": "voxagent",
		"status":  "ok",
	})
}
