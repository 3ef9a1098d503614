package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage/memory"
)

var errDiskFull = errors.New("disk full")

// flakyCatalog fails writes on demand and can park the next write that
// marks a book available.
type flakyCatalog struct {
	*memory.CatalogStore
	mu       sync.Mutex
	failSave bool
	reached  chan struct{}
	release  chan struct{}
}

// holdNextAvailable parks the next Save of an available book until release is called.
func (f *flakyCatalog) holdNextAvailable() (reached <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reached = make(chan struct{})
	f.release = make(chan struct{})
	return f.reached, func() { close(f.release) }
}

func (f *flakyCatalog) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSave = v
}

func (f *flakyCatalog) Save(b entities.Book) (entities.Book, error) {
	f.mu.Lock()
	failing := f.failSave
	var reached, release chan struct{}
	if b.Available && f.reached != nil {
		reached, release = f.reached, f.release
		f.reached, f.release = nil, nil
	}
	f.mu.Unlock()
	if reached != nil {
		close(reached)
		<-release
	}
	if failing {
		return entities.Book{}, errDiskFull
	}
	return f.CatalogStore.Save(b)
}

type signalRecorder struct {
	mu     sync.Mutex
	issues []Inconsistency
}

func (r *signalRecorder) Signal(_ context.Context, issue Inconsistency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issues = append(r.issues, issue)
}

func (r *signalRecorder) all() []Inconsistency {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Inconsistency(nil), r.issues...)
}

type countingMetrics struct {
	mu       sync.Mutex
	created  int
	returned int
	rejected map[string]int
}

func (m *countingMetrics) LoanCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) LoanReturned() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returned++
}

func (m *countingMetrics) LoanRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejected == nil {
		m.rejected = map[string]int{}
	}
	m.rejected[reason]++
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	books        *flakyCatalog
	loans        *memory.LoanStore
	catalog      *CatalogService
	members      *MembershipService
	lending      *LendingService
	orchestrator *LendingOrchestrator
	reconciler   *Reconciler
	signals      *signalRecorder
	metrics      *countingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		books:   &flakyCatalog{CatalogStore: memory.NewCatalogStore()},
		loans:   memory.NewLoanStore(),
		signals: &signalRecorder{},
		metrics: &countingMetrics{},
	}
	f.catalog = NewCatalogService(f.books)
	f.members = NewMembershipService(memory.NewUserStore())
	f.lending = NewLendingService(f.loans)
	f.lending.now = func() time.Time { return fixedNow }
	f.reconciler = NewReconciler(f.catalog, f.members, f.lending, 14)
	f.reconciler.now = func() time.Time { return fixedNow }
	f.orchestrator = NewLendingOrchestrator(f.catalog, f.members, f.lending,
		WithSignal(f.signals),
		WithMetrics(f.metrics),
		WithClock(func() time.Time { return fixedNow }),
		WithBookLocks(f.reconciler.BookLocks()),
	)
	return f
}

func (f *fixture) addBook(t *testing.T, id string, available bool) entities.Book {
	t.Helper()
	book, err := entities.NewBook(id, "Title "+id, "Author", entities.GenreFiction, 2000, "0441172717")
	require.NoError(t, err)
	book.Available = available
	book.AddedAt = fixedNow.Add(-30 * 24 * time.Hour)
	_, err = f.catalog.AddBook(book)
	require.NoError(t, err)
	return book
}

func (f *fixture) addUser(t *testing.T, name string) entities.User {
	t.Helper()
	user, err := f.members.Register(name, name+"@example.com")
	require.NoError(t, err)
	return user
}

func (f *fixture) book(t *testing.T, id string) entities.Book {
	t.Helper()
	book, err := f.catalog.GetBook(id)
	require.NoError(t, err)
	return book
}
