package vectorstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// fileRecord is the on-disk shape of the handle.
type fileRecord struct {
	Handle
	Revision uint64 `json:"revision"`
}

// FileRepository keeps the handle in a JSON file. Good enough for a
// single-node deployment; multi-node setups use the Redis, SQL, or
// Mongo repositories instead.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository persists the handle at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) read() (fileRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileRecord{}, ErrNoHandle
		}
		return fileRecord{}, err
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fileRecord{}, err
	}
	if rec.VectorStoreID == "" {
		return fileRecord{}, ErrNoHandle
	}
	return rec, nil
}

// Load reads the handle and its revision.
func (r *FileRepository) Load(ctx context.Context) (Handle, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.read()
	if err != nil {
		return Handle{}, 0, err
	}
	return rec.Handle, rec.Revision, nil
}

// Save writes the handle if the stored revision still matches. The
// write goes through a temp file and rename so readers never see a
// partial record.
func (r *FileRepository) Save(ctx context.Context, h Handle, expectedRevision uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.read()
	switch {
	case err == nil:
		if rec.Revision != expectedRevision {
			return ErrRevisionConflict
		}
	case err == ErrNoHandle:
		if expectedRevision != 0 {
			return ErrRevisionConflict
		}
	default:
		return err
	}

	data, err := json.Marshal(fileRecord{Handle: h, Revision: expectedRevision + 1})
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".handle-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
