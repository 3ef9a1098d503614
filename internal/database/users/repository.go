// Package users implements the user store on top of GORM.
package users

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

func (r *Repository) Save(user entities.User) (entities.User, error) {
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&user).Error; err != nil {
		return entities.User{}, fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return user, nil
}

func (r *Repository) FindByID(id string) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

func (r *Repository) FindAll() ([]entities.User, error) {
	var users []entities.User
	if err := r.db.Order("rowid").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *Repository) DeleteByID(id string) (bool, error) {
	result := r.db.Delete(&entities.User{}, "id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete user %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
