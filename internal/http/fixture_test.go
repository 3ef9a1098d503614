package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
	"github.com/mrlokans/library/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// failingCatalog refuses writes while broken is set.
type failingCatalog struct {
	*memory.CatalogStore
	mu     sync.Mutex
	broken bool
}

func (f *failingCatalog) Save(b entities.Book) (entities.Book, error) {
	f.mu.Lock()
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return entities.Book{}, errors.New("catalog file is read-only")
	}
	return f.CatalogStore.Save(b)
}

type testApp struct {
	router       *gin.Engine
	books        *failingCatalog
	catalog      *services.CatalogService
	members      *services.MembershipService
	lending      *services.LendingService
	orchestrator *services.LendingOrchestrator
}

func newTestApp(t *testing.T, extra func(*RouterConfig)) *testApp {
	t.Helper()
	app := &testApp{books: &failingCatalog{CatalogStore: memory.NewCatalogStore()}}
	app.catalog = services.NewCatalogService(app.books)
	app.members = services.NewMembershipService(memory.NewUserStore())
	app.lending = services.NewLendingService(memory.NewLoanStore())
	reconciler := services.NewReconciler(app.catalog, app.members, app.lending, 14)
	app.orchestrator = services.NewLendingOrchestrator(app.catalog, app.members, app.lending,
		services.WithSignal(services.SignalFunc(func(_ context.Context, _ services.Inconsistency) {})),
		services.WithBookLocks(reconciler.BookLocks()))

	cfg := RouterConfig{
		Catalog:      app.catalog,
		Members:      app.members,
		Lending:      app.lending,
		Orchestrator: app.orchestrator,
		Checker:      reconciler,
		Version:      "test",
	}
	if extra != nil {
		extra(&cfg)
	}
	app.router = NewRouter(cfg)
	return app
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) addBook(t *testing.T, title, author string, year int) entities.Book {
	t.Helper()
	book, err := a.catalog.CreateBook(title, author, entities.GenreFiction, year, "0441172717")
	require.NoError(t, err)
	return book
}

func (a *testApp) addUser(t *testing.T, name string) entities.User {
	t.Helper()
	user, err := a.members.Register(name, name+"@example.com")
	require.NoError(t, err)
	return user
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
