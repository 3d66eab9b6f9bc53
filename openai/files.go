package openai

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/innovate-ai/voxagent/types"
)

// File is an uploaded file object.
type File struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
	Status    string `json:"status,omitempty"`
}

// VectorStore is a hosted document index.
type VectorStore struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// FileBatch is a group of files ingested into a vector store together.
type FileBatch struct {
	ID            string   `json:"id"`
	VectorStoreID string   `json:"vector_store_id"`
	Status        string   `json:"status"`
	FileIDs       []string `json:"file_ids,omitempty"`
	CreatedAt     int64    `json:"created_at"`
}

// listEnvelope is the standard list response wrapper.
type listEnvelope[T any] struct {
	Object  string `json:"object"`
	Data    []T    `json:"data"`
	HasMore bool   `json:"has_more"`
}

// deletedEnvelope is the standard delete response wrapper.
type deletedEnvelope struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// UploadFile uploads r under filename with the given purpose.
func (c *Client) UploadFile(ctx context.Context, filename, purpose string, r io.Reader) (*File, error) {
	if c.cfg.APIKey == "" {
		return nil, types.NewError(types.ErrConfiguration, "OpenAI API key is not set")
	}

	var file File
	err := c.postMultipart(ctx, "/files", func(w *multipart.Writer) error {
		if err := w.WriteField("purpose", purpose); err != nil {
			return err
		}
		return writeFormFile(w, "file", filename, r)
	}, &file)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// RetrieveFile fetches one file object.
func (c *Client) RetrieveFile(ctx context.Context, fileID string) (*File, error) {
	var file File
	if err := c.getJSON(ctx, "/files/"+fileID, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile deletes a file object.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	var out deletedEnvelope
	return c.deleteJSON(ctx, "/files/"+fileID, &out)
}

// CreateVectorStore creates a vector store. expiresDays > 0 attaches a
// last-active expiry policy.
func (c *Client) CreateVectorStore(ctx context.Context, name string, expiresDays int) (*VectorStore, error) {
	body := map[string]any{"name": name}
	if expiresDays > 0 {
		body["expires_after"] = map[string]any{
			"anchor": "last_active_at",
			"days":   expiresDays,
		}
	}

	var store VectorStore
	if err := c.postJSON(ctx, "/vector_stores", body, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// DeleteVectorStore deletes a vector store.
func (c *Client) DeleteVectorStore(ctx context.Context, storeID string) error {
	var out deletedEnvelope
	return c.deleteJSON(ctx, "/vector_stores/"+storeID, &out)
}

// CreateFileBatch attaches files to a vector store as one batch.
func (c *Client) CreateFileBatch(ctx context.Context, storeID string, fileIDs []string) (*FileBatch, error) {
	body := map[string]any{"file_ids": fileIDs}

	var batch FileBatch
	if err := c.postJSON(ctx, fmt.Sprintf("/vector_stores/%s/file_batches", storeID), body, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// RetrieveFileBatch fetches one file batch with its status.
func (c *Client) RetrieveFileBatch(ctx context.Context, storeID, batchID string) (*FileBatch, error) {
	var batch FileBatch
	if err := c.getJSON(ctx, fmt.Sprintf("/vector_stores/%s/file_batches/%s", storeID, batchID), &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListFileBatches lists a vector store's file batches.
func (c *Client) ListFileBatches(ctx context.Context, storeID string) ([]FileBatch, error) {
	var out listEnvelope[FileBatch]
	if err := c.getJSON(ctx, fmt.Sprintf("/vector_stores/%s/file_batches", storeID), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListBatchFiles lists the file IDs belonging to one batch.
func (c *Client) ListBatchFiles(ctx context.Context, storeID, batchID string) ([]File, error) {
	var out listEnvelope[File]
	if err := c.getJSON(ctx, fmt.Sprintf("/vector_stores/%s/file_batches/%s/files", storeID, batchID), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// RemoveVectorStoreFile detaches a file from a vector store.
func (c *Client) RemoveVectorStoreFile(ctx context.Context, storeID, fileID string) error {
	var out deletedEnvelope
	return c.deleteJSON(ctx, fmt.Sprintf("/vector_stores/%s/files/%s", storeID, fileID), &out)
}
