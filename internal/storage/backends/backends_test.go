package backends

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/storage/storagetest"
)

func testStorageConfig(t *testing.T) config.Storage {
	dir := t.TempDir()
	return config.Storage{
		CatalogBackend:  config.BackendCSV,
		UserBackend:     config.BackendAuto,
		LoanBackend:     config.BackendAuto,
		DataDir:         dir,
		CatalogCSVPath:  filepath.Join(dir, "books.csv"),
		CatalogJSONPath: filepath.Join(dir, "catalog.json"),
		DatabasePath:    filepath.Join(dir, "library.db"),
		UsersJSONPath:   filepath.Join(dir, "users.json"),
		LoansJSONPath:   filepath.Join(dir, "loans.json"),
	}
}

func TestOpen_Defaults(t *testing.T) {
	stores, err := Open(testStorageConfig(t))
	require.NoError(t, err)
	defer stores.Close()

	assert.Equal(t, config.BackendCSV, stores.CatalogBackend)
	assert.Equal(t, config.BackendMemory, stores.UserBackend)
	assert.Equal(t, config.BackendMemory, stores.LoanBackend)
	assert.Nil(t, stores.Database())
}

func TestOpen_AutoPicksExistingJSON(t *testing.T) {
	cfg := testStorageConfig(t)
	require.NoError(t, os.WriteFile(cfg.UsersJSONPath, []byte("[]"), 0644))

	stores, err := Open(cfg)
	require.NoError(t, err)
	defer stores.Close()

	assert.Equal(t, config.BackendJSON, stores.UserBackend)
	assert.Equal(t, config.BackendMemory, stores.LoanBackend)
}

func TestOpen_SQLiteSharesOneConnection(t *testing.T) {
	cfg := testStorageConfig(t)
	cfg.CatalogBackend = config.BackendSQLite
	cfg.UserBackend = config.BackendSQLite
	cfg.LoanBackend = config.BackendSQLite

	stores, err := Open(cfg)
	require.NoError(t, err)
	defer stores.Close()

	require.NotNil(t, stores.Database())
	require.NoError(t, stores.Catalog.SaveAll(storagetest.SampleBooks(2)))
	all, err := stores.Catalog.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOpen_FallsBackToMemory(t *testing.T) {
	cfg := testStorageConfig(t)
	blocker := filepath.Join(cfg.DataDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.CatalogCSVPath = filepath.Join(blocker, "books.csv")
	cfg.LoanBackend = config.BackendJSON
	cfg.LoansJSONPath = filepath.Join(blocker, "loans.json")

	stores, err := Open(cfg)
	require.NoError(t, err)
	defer stores.Close()

	assert.Equal(t, config.BackendMemory, stores.CatalogBackend)
	assert.Equal(t, config.BackendMemory, stores.LoanBackend)

	_, err = stores.Catalog.Save(storagetest.SampleBooks(1)[0])
	assert.NoError(t, err)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := testStorageConfig(t)
	cfg.CatalogBackend = "punchcards"

	_, err := Open(cfg)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpenCatalog(t *testing.T) {
	cfg := testStorageConfig(t)

	catalog, closer, err := OpenCatalog(config.BackendJSON, cfg)
	require.NoError(t, err)
	defer closer.Close()
	require.NoError(t, catalog.SaveAll(storagetest.SampleBooks(3)))

	_, statErr := os.Stat(cfg.CatalogJSONPath)
	assert.NoError(t, statErr)
}

func TestOpenCatalog_RoundTripEveryDurableBackend(t *testing.T) {
	for _, backend := range []string{config.BackendCSV, config.BackendJSON, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testStorageConfig(t)
			books := storagetest.SampleBooks(8)

			catalog, closer, err := OpenCatalog(backend, cfg)
			require.NoError(t, err)
			require.NoError(t, catalog.SaveAll(books))
			require.NoError(t, closer.Close())

			reopened, closer, err := OpenCatalog(backend, cfg)
			require.NoError(t, err)
			defer closer.Close()

			all, err := reopened.LoadAll()
			require.NoError(t, err)
			require.Len(t, all, len(books))
			for i := range books {
				storagetest.AssertSameBook(t, books[i], all[i])
			}
		})
	}
}
