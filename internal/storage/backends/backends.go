// Package backends picks the concrete stores once at process start.
//
// A backend that fails to initialize is replaced by the volatile in-memory
// backend and the substitution is logged. Unknown backend names are a
// configuration error.
package backends

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/loans"
	"github.com/mrlokans/library/internal/database/users"
	"github.com/mrlokans/library/internal/storage"
	"github.com/mrlokans/library/internal/storage/csvfile"
	"github.com/mrlokans/library/internal/storage/jsonfile"
	"github.com/mrlokans/library/internal/storage/memory"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Stores is the fixed set of stores used for the whole process lifetime.
type Stores struct {
	Catalog storage.CatalogStore
	Users   storage.UserStore
	Loans   storage.LoanStore

	// Names of the backends actually in use after any fallback
	CatalogBackend string
	UserBackend    string
	LoanBackend    string

	db *database.Database
}

// Database returns the relational connection when any store uses it.
func (s *Stores) Database() *database.Database {
	return s.db
}

func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type opener struct {
	cfg config.Storage
	db  *database.Database
}

func (o *opener) database() (*database.Database, error) {
	if o.db != nil {
		return o.db, nil
	}
	if err := os.MkdirAll(o.cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := database.NewDatabase(o.cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	o.db = db
	return db, nil
}

// Open builds every store from cfg, falling back to memory per store on failure.
func Open(cfg config.Storage) (*Stores, error) {
	o := &opener{cfg: cfg}
	stores := &Stores{}

	catalog, name, err := o.catalog(cfg.CatalogBackend)
	if errors.Is(err, ErrUnknownBackend) {
		return nil, err
	}
	if err != nil {
		log.Printf("[STORAGE] catalog backend %q unavailable, falling back to memory: %v", cfg.CatalogBackend, err)
		catalog, name = memory.NewCatalogStore(), config.BackendMemory
	}
	stores.Catalog, stores.CatalogBackend = catalog, name

	userStore, name, err := o.users(cfg.UserBackend)
	if errors.Is(err, ErrUnknownBackend) {
		return nil, err
	}
	if err != nil {
		log.Printf("[STORAGE] user backend %q unavailable, falling back to memory: %v", cfg.UserBackend, err)
		userStore, name = memory.NewUserStore(), config.BackendMemory
	}
	stores.Users, stores.UserBackend = userStore, name

	loanStore, name, err := o.loans(cfg.LoanBackend)
	if errors.Is(err, ErrUnknownBackend) {
		return nil, err
	}
	if err != nil {
		log.Printf("[STORAGE] loan backend %q unavailable, falling back to memory: %v", cfg.LoanBackend, err)
		loanStore, name = memory.NewLoanStore(), config.BackendMemory
	}
	stores.Loans, stores.LoanBackend = loanStore, name

	stores.db = o.db
	log.Printf("[STORAGE] catalog=%s users=%s loans=%s", stores.CatalogBackend, stores.UserBackend, stores.LoanBackend)
	return stores, nil
}

// OpenCatalog opens one catalog backend without any fallback. The returned
// closer releases the database connection when the relational backend is used.
func OpenCatalog(backend string, cfg config.Storage) (storage.CatalogStore, io.Closer, error) {
	o := &opener{cfg: cfg}
	catalog, _, err := o.catalog(backend)
	if err != nil {
		return nil, nil, err
	}
	if o.db != nil {
		return catalog, o.db, nil
	}
	return catalog, nopCloser{}, nil
}

func (o *opener) catalog(backend string) (storage.CatalogStore, string, error) {
	switch backend {
	case config.BackendMemory:
		return memory.NewCatalogStore(), backend, nil
	case config.BackendCSV:
		s, err := csvfile.NewCatalogStore(o.cfg.CatalogCSVPath)
		return s, backend, err
	case config.BackendJSON:
		s, err := jsonfile.NewCatalogStore(o.cfg.CatalogJSONPath)
		return s, backend, err
	case config.BackendSQLite:
		db, err := o.database()
		if err != nil {
			return nil, backend, err
		}
		return books.NewRepository(db.DB), backend, nil
	default:
		return nil, backend, fmt.Errorf("%w: catalog %q", ErrUnknownBackend, backend)
	}
}

func (o *opener) users(backend string) (storage.UserStore, string, error) {
	if backend == config.BackendAuto {
		backend = autoBackend(o.cfg.UsersJSONPath)
	}
	switch backend {
	case config.BackendMemory:
		return memory.NewUserStore(), backend, nil
	case config.BackendJSON:
		s, err := jsonfile.NewUserStore(o.cfg.UsersJSONPath)
		return s, backend, err
	case config.BackendSQLite:
		db, err := o.database()
		if err != nil {
			return nil, backend, err
		}
		return users.NewRepository(db.DB), backend, nil
	default:
		return nil, backend, fmt.Errorf("%w: users %q", ErrUnknownBackend, backend)
	}
}

func (o *opener) loans(backend string) (storage.LoanStore, string, error) {
	if backend == config.BackendAuto {
		backend = autoBackend(o.cfg.LoansJSONPath)
	}
	switch backend {
	case config.BackendMemory:
		return memory.NewLoanStore(), backend, nil
	case config.BackendJSON:
		s, err := jsonfile.NewLoanStore(o.cfg.LoansJSONPath)
		return s, backend, err
	case config.BackendSQLite:
		db, err := o.database()
		if err != nil {
			return nil, backend, err
		}
		return loans.NewRepository(db.DB), backend, nil
	default:
		return nil, backend, fmt.Errorf("%w: loans %q", ErrUnknownBackend, backend)
	}
}

func autoBackend(jsonPath string) string {
	if _, err := os.Stat(jsonPath); err == nil {
		return config.BackendJSON
	}
	return config.BackendMemory
}
