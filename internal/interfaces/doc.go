// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and see how to implement new functionality.
//
// # Interface Categories
//
// ## Storage Port
//
//   - CatalogStore: Books, with bulk SaveAll/LoadAll (internal/storage/storage.go)
//   - UserStore: Library members (internal/storage/storage.go)
//   - LoanStore: Loans, with lookups by book and by user (internal/storage/storage.go)
//
// Every store returns storage.ErrNotFound from FindByID for a missing record.
// The services translate it into ErrBookNotFound, ErrUserNotFound or ErrLoanNotFound.
//
// ## Reconciliation Interfaces
//
//   - InconsistencySignal: Receives a notice whenever a loan change was persisted
//     but the paired availability update was not (internal/services/interfaces.go)
//   - LendingMetrics: Observes loan outcomes (internal/services/interfaces.go)
//   - ConsistencyChecker / Checker / BookVerifier: Audit entry points used by the
//     HTTP API, the cron scheduler and the task queue
//
// # Adding a New Storage Backend
//
// To store the catalog somewhere else (e.g., a remote document store):
//
//  1. Create a package under internal/storage/ implementing storage.CatalogStore
//
//     type CatalogStore struct { ... }
//
//     func (s *CatalogStore) Save(book entities.Book) (entities.Book, error)
//     func (s *CatalogStore) FindByID(id string) (*entities.Book, error)
//     ...
//
//  2. Run the shared contract tests from internal/storage/storagetest:
//
//     storagetest.RunCatalogStoreContract(t, storagetest.CatalogFactory{...})
//
//  3. Add a backend name in internal/config and a case in
//     internal/storage/backends
//
//  4. Add a compile-time check to checks.go
//
// # Adding a New Signal Sink
//
// To react to reconciliation-needed notices (e.g., send an email):
//
//  1. Implement InconsistencySignal. Signal runs inline with the lending
//     request and must not block for long.
//
//     func (n *Notifier) Signal(ctx context.Context, issue services.Inconsistency)
//
//  2. Append it to the MultiSignal built in entrypoint.Build
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
