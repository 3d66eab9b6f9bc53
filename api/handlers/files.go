package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/types"
	"github.com/innovate-ai/voxagent/vectorstore"
)

// DocumentStore is the slice of the vector store manager the file
// endpoints need.
type DocumentStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (fileID, storeID string, err error)
	List(ctx context.Context) ([]vectorstore.FileInfo, error)
	StoreID(ctx context.Context) string
	Delete(ctx context.Context, fileID string) error
}

// FilesHandler manages the searchable document collection.
type FilesHandler struct {
	store    DocumentStore
	fileDir  string
	maxBytes int64
	logger   *zap.Logger
}

// FilesHandlerConfig wires the files handler.
type FilesHandlerConfig struct {
	// FileUploadDir keeps a local copy of each uploaded document.
	FileUploadDir string
	// MaxBytes caps the request body; 0 means 32 MB.
	MaxBytes int64
}

// NewFilesHandler builds the handler.
func NewFilesHandler(store DocumentStore, cfg FilesHandlerConfig, logger *zap.Logger) *FilesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 32 << 20
	}
	return &FilesHandler{
		store:    store,
		fileDir:  cfg.FileUploadDir,
		maxBytes: cfg.MaxBytes,
		logger:   logger.With(zap.String("component", "files_handler")),
	}
}

type uploadResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	FileID        string `json:"file_id"`
	VectorStoreID string `json:"vector_store_id"`
}

type listFilesResponse struct {
	Files         []vectorstore.FileInfo `json:"files"`
	VectorStoreID string                 `json:"vector_store_id,omitempty"`
	Message       string                 `json:"message,omitempty"`
}

// HandleUpload serves POST /api/upload-file: a multipart "file" field
// is saved locally and pushed into the document store.
func (h *FilesHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteErrorMessage(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == "/" {
		WriteErrorMessage(w, http.StatusBadRequest, "Empty file provided")
		return
	}

	localPath, err := h.saveLocal(name, file)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	doc, err := os.Open(localPath)
	if err != nil {
		WriteError(w, types.NewError(types.ErrConfiguration, "failed to read saved file").WithCause(err), h.logger)
		return
	}
	defer doc.Close()

	fileID, storeID, err := h.store.Upload(r.Context(), name, doc)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.logger.Info("file uploaded",
		zap.String("filename", name),
		zap.String("file_id", fileID),
		zap.String("vector_store_id", storeID))

	WriteJSON(w, http.StatusOK, uploadResponse{
		Success:       true,
		Message:       fmt.Sprintf("File uploaded successfully: %s", name),
		FileID:        fileID,
		VectorStoreID: storeID,
	})
}

// HandleList serves GET /api/files.
func (h *FilesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	storeID := h.store.StoreID(r.Context())
	if storeID == "" {
		WriteJSON(w, http.StatusOK, listFilesResponse{
			Files:   []vectorstore.FileInfo{},
			Message: "No vector store initialized yet",
		})
		return
	}

	files, err := h.store.List(r.Context())
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, listFilesResponse{
		Files:         files,
		VectorStoreID: storeID,
	})
}

// HandleDelete serves DELETE /api/files/{id}.
func (h *FilesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("id")
	if fileID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, "No file ID provided")
		return
	}

	if err := h.store.Delete(r.Context(), fileID); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// saveLocal keeps a copy of the uploaded document on disk.
func (h *FilesHandler) saveLocal(name string, file io.Reader) (string, error) {
	if err := os.MkdirAll(h.fileDir, 0o755); err != nil {
		return "", types.NewError(types.ErrConfiguration, "failed to create upload directory").WithCause(err)
	}

	path := filepath.Join(h.fileDir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", types.NewError(types.ErrConfiguration, "failed to save uploaded file").WithCause(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", types.NewError(types.ErrInvalidRequest, "failed to save uploaded file").WithCause(err)
	}
	return path, nil
}
