// Package loans implements the loan store on top of GORM.
package loans

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Save(loan entities.Loan) (entities.Loan, error) {
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&loan).Error; err != nil {
		return entities.Loan{}, fmt.Errorf("failed to save loan %s: %w", loan.ID, err)
	}
	return loan, nil
}

func (r *Repository) FindByID(id string) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.First(&loan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan %s: %w", id, err)
	}
	return &loan, nil
}

func (r *Repository) FindAll() ([]entities.Loan, error) {
	return r.find("", "")
}

func (r *Repository) DeleteByID(id string) (bool, error) {
	result := r.db.Delete(&entities.Loan{}, "id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete loan %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) FindByBookID(bookID string) ([]entities.Loan, error) {
	return r.find("book_id = ?", bookID)
}

func (r *Repository) FindByUserID(userID string) ([]entities.Loan, error) {
	return r.find("user_id = ?", userID)
}

func (r *Repository) find(condition, value string) ([]entities.Loan, error) {
	query := r.db.Order("rowid")
	if condition != "" {
		query = query.Where(condition, value)
	}
	var loans []entities.Loan
	if err := query.Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}
