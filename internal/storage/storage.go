package storage

import (
	"errors"

	"github.com/mrlokans/library/internal/entities"
)

// ErrNotFound is returned by FindByID when no record has the requested identifier.
var ErrNotFound = errors.New("record not found")

// CatalogStore persists books.
type CatalogStore interface {
	// Save inserts the book or replaces the record with the same ID
	Save(book entities.Book) (entities.Book, error)

	// FindByID returns ErrNotFound when the book does not exist
	FindByID(id string) (*entities.Book, error)

	// FindAll lists every book in the backend's own stable order
	FindAll() ([]entities.Book, error)

	// DeleteByID reports whether a record existed and was removed
	DeleteByID(id string) (bool, error)

	// SaveAll inserts or replaces every book of the batch
	SaveAll(books []entities.Book) error

	// LoadAll behaves exactly like FindAll
	LoadAll() ([]entities.Book, error)
}

// UserStore persists library members.
type UserStore interface {
	Save(user entities.User) (entities.User, error)
	FindByID(id string) (*entities.User, error)
	FindAll() ([]entities.User, error)
	DeleteByID(id string) (bool, error)
}

// LoanStore persists loans.
type LoanStore interface {
	Save(loan entities.Loan) (entities.Loan, error)
	FindByID(id string) (*entities.Loan, error)
	FindAll() ([]entities.Loan, error)
	DeleteByID(id string) (bool, error)
	FindByBookID(bookID string) ([]entities.Loan, error)
	FindByUserID(userID string) ([]entities.Loan, error)
}
