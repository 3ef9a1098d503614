package books

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage"
	"github.com/mrlokans/library/internal/storage/storagetest"
)

func openTestDB(t *testing.T, dbPath string) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(dbPath, database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestDB(t *testing.T) (*Repository, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.db")
	return NewRepository(openTestDB(t, dbPath).DB), dbPath
}

func TestRepositoryContract(t *testing.T) {
	paths := map[storage.CatalogStore]string{}
	storagetest.RunCatalogStoreContract(t, storagetest.CatalogFactory{
		New: func(t *testing.T) storage.CatalogStore {
			repo, dbPath := setupTestDB(t)
			paths[repo] = dbPath
			return repo
		},
		Reopen: func(t *testing.T, s storage.CatalogStore) storage.CatalogStore {
			return NewRepository(openTestDB(t, paths[s]).DB)
		},
	})
}

func TestRepository_SaveIsSingleUpsert(t *testing.T) {
	repo, _ := setupTestDB(t)
	book := storagetest.SampleBooks(1)[0]

	_, err := repo.Save(book)
	require.NoError(t, err)
	book.Available = false
	_, err = repo.Save(book)
	require.NoError(t, err)

	var count int64
	require.NoError(t, repo.db.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByID(book.ID)
	require.NoError(t, err)
	assert.False(t, found.Available)
}

func TestRepository_SaveAllIsAtomic(t *testing.T) {
	repo, _ := setupTestDB(t)
	original := storagetest.SampleBooks(2)
	require.NoError(t, repo.SaveAll(original))

	// A row rejected in the middle of the batch must roll back the whole batch.
	batch := storagetest.SampleBooks(4)
	batch[0].Title = "Changed before failure"
	batch[2].ID = "broken"
	require.NoError(t, repo.db.Exec("CREATE TRIGGER reject_broken BEFORE INSERT ON books WHEN NEW.id = 'broken' BEGIN SELECT RAISE(ABORT, 'rejected'); END").Error)

	err := repo.SaveAll(batch)
	require.Error(t, err)

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, original[0].Title, all[0].Title)
}

func TestRepository_MigrationIsIdempotent(t *testing.T) {
	repo, dbPath := setupTestDB(t)
	require.NoError(t, repo.SaveAll(storagetest.SampleBooks(3)))

	again := NewRepository(openTestDB(t, dbPath).DB)
	all, err := again.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepository_FindByIDNotFound(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.FindByID("nope")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
