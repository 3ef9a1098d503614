// Package books implements the catalog store on top of GORM.
//
//	var _ storage.CatalogStore = (*Repository)(nil)
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage"
)

const batchSize = 100

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts the book or overwrites every column of the existing row.
func (r *Repository) Save(book entities.Book) (entities.Book, error) {
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&book).Error; err != nil {
		return entities.Book{}, fmt.Errorf("failed to save book %s: %w", book.ID, err)
	}
	return book, nil
}

func (r *Repository) FindByID(id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %s: %w", id, err)
	}
	return &book, nil
}

// FindAll lists books in insertion (rowid) order.
func (r *Repository) FindAll() ([]entities.Book, error) {
	var books []entities.Book
	if err := r.db.Order("rowid").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

func (r *Repository) DeleteByID(id string) (bool, error) {
	result := r.db.Delete(&entities.Book{}, "id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete book %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SaveAll upserts the whole batch inside one transaction.
func (r *Repository) SaveAll(books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&books, batchSize).Error
		if err != nil {
			return fmt.Errorf("failed to save %d books: %w", len(books), err)
		}
		return nil
	})
}

func (r *Repository) LoadAll() ([]entities.Book, error) {
	return r.FindAll()
}
