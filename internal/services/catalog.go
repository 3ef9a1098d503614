package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage"
	"github.com/mrlokans/library/internal/utils"
)

// CatalogService manages books through a single catalog store.
type CatalogService struct {
	store storage.CatalogStore
	newID IDGenerator
}

func NewCatalogService(store storage.CatalogStore) *CatalogService {
	return &CatalogService{store: store, newID: NewID}
}

// BookFilter holds optional criteria. Empty strings and a zero year impose no constraint.
type BookFilter struct {
	Author string
	Genre  string // display name
	Year   int
}

func (f BookFilter) IsEmpty() bool {
	return strings.TrimSpace(f.Author) == "" && strings.TrimSpace(f.Genre) == "" && f.Year == 0
}

// Matches reports whether the book satisfies every supplied criterion.
func (f BookFilter) Matches(b entities.Book) bool {
	if strings.TrimSpace(f.Author) != "" && !utils.EqualFold(b.Author, f.Author) {
		return false
	}
	if strings.TrimSpace(f.Genre) != "" && !utils.EqualFold(b.Genre.DisplayName(), f.Genre) {
		return false
	}
	if f.Year != 0 && b.PublicationYear != f.Year {
		return false
	}
	return true
}

// CreateBook assigns a fresh identifier and adds a new available book.
func (s *CatalogService) CreateBook(title, author string, genre entities.Genre, year int, isbn string) (entities.Book, error) {
	book, err := entities.NewBook(s.newID(), title, author, genre, year, isbn)
	if err != nil {
		return entities.Book{}, err
	}
	return s.AddBook(book)
}

// AddBook validates and stores the book.
func (s *CatalogService) AddBook(book entities.Book) (entities.Book, error) {
	if err := book.Validate(); err != nil {
		return entities.Book{}, err
	}
	return s.store.Save(book)
}

// UpdateBook replaces an existing book after validation.
func (s *CatalogService) UpdateBook(book entities.Book) (entities.Book, error) {
	if err := book.Validate(); err != nil {
		return entities.Book{}, err
	}
	if _, err := s.GetBook(book.ID); err != nil {
		return entities.Book{}, err
	}
	return s.store.Save(book)
}

// SetAvailability flips only the availability flag of a stored book.
func (s *CatalogService) SetAvailability(id string, available bool) (entities.Book, error) {
	book, err := s.GetBook(id)
	if err != nil {
		return entities.Book{}, err
	}
	book.Available = available
	return s.store.Save(book)
}

func (s *CatalogService) DeleteBook(id string) error {
	removed, err := s.store.DeleteByID(id)
	if err != nil {
		return fmt.Errorf("failed to delete book %s: %w", id, err)
	}
	if !removed {
		return ErrBookNotFound
	}
	return nil
}

func (s *CatalogService) GetBook(id string) (entities.Book, error) {
	book, err := s.store.FindByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		return entities.Book{}, ErrBookNotFound
	}
	if err != nil {
		return entities.Book{}, fmt.Errorf("failed to get book %s: %w", id, err)
	}
	return *book, nil
}

func (s *CatalogService) ListBooks() ([]entities.Book, error) {
	return s.store.FindAll()
}

// SearchByTitle matches a case-insensitive substring of the title. A blank query matches nothing.
func (s *CatalogService) SearchByTitle(query string) ([]entities.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entities.Book{}, nil
	}
	return s.selectBooks(func(b entities.Book) bool {
		return utils.ContainsFold(b.Title, query)
	})
}

// Search matches a case-insensitive substring of title, author or ISBN. A blank query matches everything.
func (s *CatalogService) Search(query string) ([]entities.Book, error) {
	query = strings.TrimSpace(query)
	return s.selectBooks(func(b entities.Book) bool {
		return utils.ContainsFold(b.Title, query) ||
			utils.ContainsFold(b.Author, query) ||
			utils.ContainsFold(b.ISBN, query)
	})
}

// Filter applies every supplied criterion; with none it returns the whole catalog.
func (s *CatalogService) Filter(f BookFilter) ([]entities.Book, error) {
	return s.selectBooks(f.Matches)
}

// Import bulk inserts or replaces books as they are, without validation.
func (s *CatalogService) Import(books []entities.Book) error {
	return s.store.SaveAll(books)
}

func (s *CatalogService) selectBooks(keep func(entities.Book) bool) ([]entities.Book, error) {
	books, err := s.store.FindAll()
	if err != nil {
		return nil, err
	}
	out := make([]entities.Book, 0, len(books))
	for _, b := range books {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out, nil
}
