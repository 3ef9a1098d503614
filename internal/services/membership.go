package services

import (
	"errors"
	"fmt"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage"
	"github.com/mrlokans/library/internal/utils"
)

// MembershipService registers and looks up users through a single user store.
type MembershipService struct {
	store storage.UserStore
	newID IDGenerator
}

func NewMembershipService(store storage.UserStore) *MembershipService {
	return &MembershipService{store: store, newID: NewID}
}

// Register creates a user with a fresh identifier.
func (s *MembershipService) Register(name, email string) (entities.User, error) {
	user, err := entities.NewUser(s.newID(), name, email)
	if err != nil {
		return entities.User{}, err
	}
	return s.store.Save(user)
}

func (s *MembershipService) GetUser(id string) (entities.User, error) {
	user, err := s.store.FindByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		return entities.User{}, ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return *user, nil
}

func (s *MembershipService) ListUsers() ([]entities.User, error) {
	return s.store.FindAll()
}

// FindByEmail returns the first user whose email matches ignoring case.
func (s *MembershipService) FindByEmail(email string) (entities.User, error) {
	users, err := s.store.FindAll()
	if err != nil {
		return entities.User{}, err
	}
	for _, u := range users {
		if utils.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return entities.User{}, ErrUserNotFound
}

func (s *MembershipService) DeleteUser(id string) error {
	removed, err := s.store.DeleteByID(id)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	if !removed {
		return ErrUserNotFound
	}
	return nil
}
