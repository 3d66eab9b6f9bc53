package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/types"
	"github.com/innovate-ai/voxagent/vectorstore"
)

type fakeDocStore struct {
	storeID   string
	files     []vectorstore.FileInfo
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (f *fakeDocStore) Upload(ctx context.Context, filename string, r io.Reader) (string, string, error) {
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, filename)
	if f.storeID == "" {
		f.storeID = "vs_new"
	}
	return "file_1", f.storeID, nil
}

func (f *fakeDocStore) List(ctx context.Context) ([]vectorstore.FileInfo, error) {
	return f.files, nil
}

func (f *fakeDocStore) StoreID(ctx context.Context) string { return f.storeID }

func (f *fakeDocStore) Delete(ctx context.Context, fileID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

func newFilesHandler(t *testing.T, store DocumentStore) *FilesHandler {
	t.Helper()
	return NewFilesHandler(store, FilesHandlerConfig{FileUploadDir: t.TempDir()}, zap.NewNop())
}

func multipartFile(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestFilesHandler_Upload(t *testing.T) {
	store := &fakeDocStore{}
	h := newFilesHandler(t, store)

	body, contentType := multipartFile(t, "file", "notes.pdf", []byte("pdf-bytes"))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/upload-file", body)
	r.Header.Set("Content-Type", contentType)
	h.HandleUpload(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "File uploaded successfully: notes.pdf", resp.Message)
	assert.Equal(t, "file_1", resp.FileID)
	assert.Equal(t, "vs_new", resp.VectorStoreID)
	assert.Equal(t, []string{"notes.pdf"}, store.uploaded)
}

func TestFilesHandler_UploadSanitizesPath(t *testing.T) {
	store := &fakeDocStore{}
	h := newFilesHandler(t, store)

	body, contentType := multipartFile(t, "file", "../../etc/passwd", []byte("x"))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/upload-file", body)
	r.Header.Set("Content-Type", contentType)
	h.HandleUpload(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"passwd"}, store.uploaded)
}

func TestFilesHandler_UploadMissingFile(t *testing.T) {
	h := newFilesHandler(t, &fakeDocStore{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/upload-file", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	h.HandleUpload(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No file provided")
}

func TestFilesHandler_UploadStoreError(t *testing.T) {
	store := &fakeDocStore{uploadErr: types.NewError(types.ErrModelCall, "upload rejected")}
	h := newFilesHandler(t, store)

	body, contentType := multipartFile(t, "file", "notes.pdf", []byte("x"))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/upload-file", body)
	r.Header.Set("Content-Type", contentType)
	h.HandleUpload(w, r)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upload rejected")
}

func TestFilesHandler_ListNoStore(t *testing.T) {
	h := newFilesHandler(t, &fakeDocStore{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	h.HandleList(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp listFilesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Empty(t, resp.Files)
	assert.Equal(t, "No vector store initialized yet", resp.Message)
	assert.Empty(t, resp.VectorStoreID)
}

func TestFilesHandler_List(t *testing.T) {
	store := &fakeDocStore{
		storeID: "vs_1",
		files: []vectorstore.FileInfo{
			{ID: "file_1", Filename: "notes.pdf", Status: "processed"},
		},
	}
	h := newFilesHandler(t, store)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	h.HandleList(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp listFilesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "notes.pdf", resp.Files[0].Filename)
	assert.Equal(t, "vs_1", resp.VectorStoreID)
}

func TestFilesHandler_Delete(t *testing.T) {
	store := &fakeDocStore{storeID: "vs_1"}
	h := newFilesHandler(t, store)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/files/file_1", nil)
	r.SetPathValue("id", "file_1")
	h.HandleDelete(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, []string{"file_1"}, store.deleted)
}

func TestFilesHandler_DeleteNotFound(t *testing.T) {
	store := &fakeDocStore{deleteErr: types.NewError(types.ErrNotFound, "no vector store exists")}
	h := newFilesHandler(t, store)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/files/file_1", nil)
	r.SetPathValue("id", "file_1")
	h.HandleDelete(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
