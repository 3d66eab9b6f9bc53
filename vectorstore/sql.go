package vectorstore

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

// handleRow is the gorm model behind SQLRepository. One row per
// deployment, keyed by a fixed name.
type handleRow struct {
	Key           string `gorm:"primaryKey;size:64"`
	VectorStoreID string `gorm:"size:128"`
	FileIDs       string `gorm:"type:text"`
	Revision      uint64 `gorm:"not null"`
}

func (handleRow) TableName() string { return "vector_store_handles" }

// SQLRepository keeps the handle in a relational table guarded by an
// optimistic revision column.
type SQLRepository struct {
	db  *gorm.DB
	key string
}

// NewSQLRepository persists the handle in db. The schema comes from
// the migration set; AutoMigrate is not run here.
func NewSQLRepository(db *gorm.DB, key string) *SQLRepository {
	if key == "" {
		key = "default"
	}
	return &SQLRepository{db: db, key: key}
}

// Load reads the handle and its revision.
func (r *SQLRepository) Load(ctx context.Context) (Handle, uint64, error) {
	var row handleRow
	err := r.db.WithContext(ctx).First(&row, "key = ?", r.key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Handle{}, 0, ErrNoHandle
		}
		return Handle{}, 0, err
	}

	h := Handle{VectorStoreID: row.VectorStoreID}
	if row.FileIDs != "" {
		if err := json.Unmarshal([]byte(row.FileIDs), &h.FileIDs); err != nil {
			return Handle{}, 0, err
		}
	}
	return h, row.Revision, nil
}

// Save writes the handle if the stored revision still matches. An
// insert covers the first save; updates compare-and-swap on the
// revision column.
func (r *SQLRepository) Save(ctx context.Context, h Handle, expectedRevision uint64) error {
	fileIDs, err := json.Marshal(h.FileIDs)
	if err != nil {
		return err
	}

	if expectedRevision == 0 {
		err := r.db.WithContext(ctx).Create(&handleRow{
			Key:           r.key,
			VectorStoreID: h.VectorStoreID,
			FileIDs:       string(fileIDs),
			Revision:      1,
		}).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrRevisionConflict
			}
			return err
		}
		return nil
	}

	res := r.db.WithContext(ctx).Model(&handleRow{}).
		Where("key = ? AND revision = ?", r.key, expectedRevision).
		Updates(map[string]any{
			"vector_store_id": h.VectorStoreID,
			"file_ids":        string(fileIDs),
			"revision":        expectedRevision + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRevisionConflict
	}
	return nil
}
