package vectorstore

import (
	"context"
	"errors"
	"io"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/innovate-ai/voxagent/openai"
	"github.com/innovate-ai/voxagent/types"
)

// StoreClient is the slice of the OpenAI client the manager needs.
type StoreClient interface {
	UploadFile(ctx context.Context, filename, purpose string, r io.Reader) (*openai.File, error)
	RetrieveFile(ctx context.Context, fileID string) (*openai.File, error)
	DeleteFile(ctx context.Context, fileID string) error
	CreateVectorStore(ctx context.Context, name string, expiresDays int) (*openai.VectorStore, error)
	DeleteVectorStore(ctx context.Context, storeID string) error
	CreateFileBatch(ctx context.Context, storeID string, fileIDs []string) (*openai.FileBatch, error)
	RetrieveFileBatch(ctx context.Context, storeID, batchID string) (*openai.FileBatch, error)
	ListFileBatches(ctx context.Context, storeID string) ([]openai.FileBatch, error)
	RemoveVectorStoreFile(ctx context.Context, storeID, fileID string) error
}

// FileInfo describes one searchable file for the API.
type FileInfo struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	CreatedAt int64  `json:"created_at"`
	Bytes     int64  `json:"bytes"`
	Status    string `json:"status"`
}

// ManagerConfig names the shared store and its expiry policy.
type ManagerConfig struct {
	StoreName  string
	ExpiryDays int
}

// casRetries bounds handle compare-and-swap retry loops.
const casRetries = 5

// Manager owns the shared vector store: uploads attach files to it,
// List exposes only files whose ingestion batches completed, Delete
// detaches and removes. Store creation is deduplicated in-process with
// singleflight and across processes with the repository's CAS.
type Manager struct {
	client StoreClient
	repo   Repository
	cfg    ManagerConfig
	group  singleflight.Group
	logger *zap.Logger
}

// NewManager wires the manager.
func NewManager(client StoreClient, repo Repository, cfg ManagerConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StoreName == "" {
		cfg.StoreName = "INNOVATE AI Document Store"
	}
	if cfg.ExpiryDays <= 0 {
		cfg.ExpiryDays = 30
	}
	return &Manager{
		client: client,
		repo:   repo,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "vectorstore_manager")),
	}
}

// Ensure returns the shared store's handle, creating the store on
// first use. Exactly one store survives concurrent first uploads: the
// loser of the repository CAS deletes its freshly created store.
func (m *Manager) Ensure(ctx context.Context) (Handle, uint64, error) {
	h, rev, err := m.repo.Load(ctx)
	if err == nil {
		return h, rev, nil
	}
	if !errors.Is(err, ErrNoHandle) {
		return Handle{}, 0, types.NewError(types.ErrPersistence, "failed to load vector store handle").WithCause(err)
	}

	_, err, _ = m.group.Do("ensure", func() (any, error) {
		// Another goroutine may have created it while we queued.
		if _, _, err := m.repo.Load(ctx); err == nil {
			return nil, nil
		} else if !errors.Is(err, ErrNoHandle) {
			return nil, err
		}

		store, err := m.client.CreateVectorStore(ctx, m.cfg.StoreName, m.cfg.ExpiryDays)
		if err != nil {
			return nil, err
		}

		saveErr := m.repo.Save(ctx, Handle{VectorStoreID: store.ID}, 0)
		if errors.Is(saveErr, ErrRevisionConflict) {
			// Another process won; our store is an orphan.
			m.logger.Info("concurrent vector store creation, deleting orphan",
				zap.String("orphan_id", store.ID))
			if delErr := m.client.DeleteVectorStore(ctx, store.ID); delErr != nil {
				m.logger.Warn("failed to delete orphan vector store",
					zap.String("orphan_id", store.ID), zap.Error(delErr))
			}
			return nil, nil
		}
		if saveErr != nil {
			return nil, saveErr
		}
		m.logger.Info("vector store created",
			zap.String("vector_store_id", store.ID),
			zap.String("name", m.cfg.StoreName))
		return nil, nil
	})
	if err != nil {
		return Handle{}, 0, err
	}

	h, rev, err = m.repo.Load(ctx)
	if err != nil {
		return Handle{}, 0, types.NewError(types.ErrPersistence, "vector store handle vanished after create").WithCause(err)
	}
	return h, rev, nil
}

// Upload sends the file to the hosted files API and attaches it to the
// shared store as a single-file batch. Returns the file and store IDs.
func (m *Manager) Upload(ctx context.Context, filename string, r io.Reader) (string, string, error) {
	file, err := m.client.UploadFile(ctx, filename, "assistants", r)
	if err != nil {
		return "", "", err
	}

	h, _, err := m.Ensure(ctx)
	if err != nil {
		return "", "", err
	}

	batch, err := m.client.CreateFileBatch(ctx, h.VectorStoreID, []string{file.ID})
	if err != nil {
		return "", "", err
	}

	if status, err := m.client.RetrieveFileBatch(ctx, h.VectorStoreID, batch.ID); err == nil {
		m.logger.Info("file batch created",
			zap.String("file_id", file.ID),
			zap.String("batch_id", batch.ID),
			zap.String("status", status.Status))
	}

	if err := m.updateHandle(ctx, func(h *Handle) {
		if !slices.Contains(h.FileIDs, file.ID) {
			h.FileIDs = append(h.FileIDs, file.ID)
		}
	}); err != nil {
		m.logger.Warn("failed to record file in handle", zap.Error(err))
	}

	return file.ID, h.VectorStoreID, nil
}

// List returns the files whose ingestion batches completed. Files that
// cannot be described are skipped, not fatal.
func (m *Manager) List(ctx context.Context) ([]FileInfo, error) {
	h, _, err := m.repo.Load(ctx)
	if errors.Is(err, ErrNoHandle) {
		return []FileInfo{}, nil
	}
	if err != nil {
		return nil, types.NewError(types.ErrPersistence, "failed to load vector store handle").WithCause(err)
	}

	batches, err := m.client.ListFileBatches(ctx, h.VectorStoreID)
	if err != nil {
		return nil, err
	}

	var fileIDs []string
	for _, batch := range batches {
		info, err := m.client.RetrieveFileBatch(ctx, h.VectorStoreID, batch.ID)
		if err != nil {
			m.logger.Warn("failed to retrieve file batch",
				zap.String("batch_id", batch.ID), zap.Error(err))
			continue
		}
		if info.Status != "completed" {
			continue
		}
		fileIDs = append(fileIDs, info.FileIDs...)
	}

	files := make([]FileInfo, 0, len(fileIDs))
	for _, id := range fileIDs {
		file, err := m.client.RetrieveFile(ctx, id)
		if err != nil {
			m.logger.Warn("failed to retrieve file", zap.String("file_id", id), zap.Error(err))
			continue
		}
		files = append(files, FileInfo{
			ID:        file.ID,
			Filename:  file.Filename,
			CreatedAt: file.CreatedAt,
			Bytes:     file.Bytes,
			Status:    file.Status,
		})
	}
	return files, nil
}

// HasFiles reports whether any completed file is available for search.
func (m *Manager) HasFiles(ctx context.Context) bool {
	files, err := m.List(ctx)
	return err == nil && len(files) > 0
}

// StoreID returns the shared store's ID, or "" when none exists yet.
func (m *Manager) StoreID(ctx context.Context) string {
	h, _, err := m.repo.Load(ctx)
	if err != nil {
		return ""
	}
	return h.VectorStoreID
}

// Delete detaches the file from the store and removes it from the
// hosted files API.
func (m *Manager) Delete(ctx context.Context, fileID string) error {
	h, _, err := m.repo.Load(ctx)
	if errors.Is(err, ErrNoHandle) {
		return types.NewError(types.ErrNotFound, "no vector store exists")
	}
	if err != nil {
		return types.NewError(types.ErrPersistence, "failed to load vector store handle").WithCause(err)
	}

	if err := m.client.RemoveVectorStoreFile(ctx, h.VectorStoreID, fileID); err != nil {
		// Detach failures are tolerated; the file delete below is what
		// frees the data.
		m.logger.Warn("failed to detach file from vector store",
			zap.String("file_id", fileID), zap.Error(err))
	}

	if err := m.client.DeleteFile(ctx, fileID); err != nil {
		return err
	}

	if err := m.updateHandle(ctx, func(h *Handle) {
		h.FileIDs = slices.DeleteFunc(h.FileIDs, func(id string) bool { return id == fileID })
	}); err != nil {
		m.logger.Warn("failed to remove file from handle", zap.Error(err))
	}

	m.logger.Info("file deleted", zap.String("file_id", fileID))
	return nil
}

// updateHandle applies mutate under the repository's CAS, retrying on
// conflicts.
func (m *Manager) updateHandle(ctx context.Context, mutate func(*Handle)) error {
	for i := 0; i < casRetries; i++ {
		h, rev, err := m.repo.Load(ctx)
		if err != nil {
			return err
		}
		mutate(&h)
		err = m.repo.Save(ctx, h, rev)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrRevisionConflict) {
			return err
		}
	}
	return ErrRevisionConflict
}
