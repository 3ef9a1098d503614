// Package database provides the embedded relational backend (SQLite through GORM).
//
// # Architecture
//
// The database layer is organized into one sub-package per entity kind:
//
//	database/
//	├── database.go      # Connection setup and idempotent migrations
//	├── books/           # Catalog store
//	├── users/           # User store
//	└── loans/           # Loan store
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type implementing one storage port:
//
//	db, err := database.NewDatabase("./data/library.db")
//
//	catalog := books.NewRepository(db.DB)
//	members := users.NewRepository(db.DB)
//	lending := loans.NewRepository(db.DB)
//
// # Interface Implementations
//
//   - books.Repository: implements storage.CatalogStore
//   - users.Repository: implements storage.UserStore
//   - loans.Repository: implements storage.LoanStore
//
// # Write Semantics
//
// Save is a single INSERT ... ON CONFLICT(id) DO UPDATE statement. The catalog's
// SaveAll runs in one explicit transaction so a failed batch leaves the previous
// rows untouched.
package database
