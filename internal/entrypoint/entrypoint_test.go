package entrypoint

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const seedYAML = `
- id: b1
  title: Dune
  author: Frank Herbert
  genre: Science Fiction
  publicationYear: 1965
  isbn: "9780441172719"
- id: b2
  title: It
  author: Stephen King
  genre: Horror
  publicationYear: 1986
  isbn: "0670813028"
  available: false
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "books.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedYAML), 0644))

	return &config.Config{
		Global: config.Global{ShutdownTimeoutInSeconds: 1},
		Storage: config.Storage{
			CatalogBackend: config.BackendMemory,
			UserBackend:    config.BackendMemory,
			LoanBackend:    config.BackendMemory,
			DataDir:        dir,
		},
		Lending:   config.Lending{DefaultLoanDays: 21},
		Bootstrap: config.Bootstrap{SeedPath: seedPath},
		Audit:     config.Audit{Dir: filepath.Join(dir, "audit")},
		Tasks:     config.Tasks{DatabasePath: filepath.Join(dir, "tasks.db"), Workers: 1},
	}
}

func TestBuild_SeedsAndReconciles(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(ctx) })

	books, err := app.Catalog.ListBooks()
	require.NoError(t, err)
	assert.Len(t, books, 2)

	loans, err := app.Lending.ListLoans()
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, "b2", loans[0].BookID)
	assert.True(t, loans[0].IsOpen())

	seedUser, err := app.Members.FindByEmail(services.SeedUserEmail)
	require.NoError(t, err)
	assert.Equal(t, seedUser.ID, loans[0].UserID)

	report, err := app.Reconciler.Check(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())

	events, err := app.Audit.Events()
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, entities.AuditEventReconcile, events[0].EventType)
	assert.Equal(t, "bootstrap", events[0].Action)

	assert.Equal(t, 21, app.Orchestrator.DefaultLoanDays())
	assert.Nil(t, app.Tasks)
}

func TestBuild_SkipsSeedForNonEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Storage.CatalogBackend = config.BackendJSON
	cfg.Storage.CatalogJSONPath = filepath.Join(cfg.Storage.DataDir, "catalog.json")

	first, err := Build(ctx, cfg)
	require.NoError(t, err)
	_, err = first.Catalog.CreateBook("Solaris", "Stanislaw Lem", entities.GenreScienceFiction, 1961, "0156027607")
	require.NoError(t, err)
	first.Close(ctx)

	second, err := Build(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close(ctx) })

	books, err := second.Catalog.ListBooks()
	require.NoError(t, err)
	assert.Len(t, books, 3, "seeded books plus the one added before restart, without a second import")
}

func TestBuild_MissingSeedFile(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Bootstrap.SeedPath = filepath.Join(cfg.Storage.DataDir, "absent.json")

	app, err := Build(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(ctx) })

	books, err := app.Catalog.ListBooks()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBuild_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.CatalogBackend = "postgres"

	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}

func TestApp_RouterWithTaskQueue(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Tasks.Enabled = true

	app, err := Build(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(ctx) })
	require.NotNil(t, app.Tasks)

	router := app.Router("test")
	for _, path := range []string{"/health", "/metrics", "/api/tasks/types", "/api/consistency", "/api/books"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRunConsole(t *testing.T) {
	var out bytes.Buffer
	err := RunConsole(context.Background(), testConfig(t), strings.NewReader("2\n0\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Dune - Frank Herbert")
	assert.Contains(t, out.String(), "It - Stephen King")
	assert.Contains(t, out.String(), "Goodbye!")
}
