package vectorstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newSQLRepo(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	return NewSQLRepository(gormDB, "default"), mock
}

func TestSQLRepositoryLoad(t *testing.T) {
	repo, mock := newSQLRepo(t)

	rows := sqlmock.NewRows([]string{"key", "vector_store_id", "file_ids", "revision"}).
		AddRow("default", "vs-1", `["file-1","file-2"]`, 3)
	mock.ExpectQuery(`SELECT .* FROM "vector_store_handles"`).WillReturnRows(rows)

	h, rev, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vs-1", h.VectorStoreID)
	assert.Equal(t, []string{"file-1", "file-2"}, h.FileIDs)
	assert.Equal(t, uint64(3), rev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepositoryLoadMissing(t *testing.T) {
	repo, mock := newSQLRepo(t)

	mock.ExpectQuery(`SELECT .* FROM "vector_store_handles"`).
		WillReturnError(sql.ErrNoRows)

	_, _, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoHandle)
}

func TestSQLRepositoryStaleRevision(t *testing.T) {
	repo, mock := newSQLRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "vector_store_handles"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), Handle{VectorStoreID: "vs-2"}, 3)
	assert.ErrorIs(t, err, ErrRevisionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepositoryUpdate(t *testing.T) {
	repo, mock := newSQLRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "vector_store_handles"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), Handle{VectorStoreID: "vs-1", FileIDs: []string{"f"}}, 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
