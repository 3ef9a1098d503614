package entities

import (
	"fmt"
	"strings"
	"time"
)

// User is a registered library member.
type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name         string    `gorm:"size:256;not null" json:"name" yaml:"name"`
	Email        string    `gorm:"size:256;index" json:"email" yaml:"email"`
	RegisteredAt time.Time `json:"registeredAt" yaml:"registeredAt"`
}

func NewUser(id, name, email string) (User, error) {
	u := User{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		RegisteredAt: time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

func (u User) Validate() error {
	if err := requireText("id", u.ID); err != nil {
		return err
	}
	if err := requireText("name", u.Name); err != nil {
		return err
	}
	return requireText("email", u.Email)
}

func (u User) String() string {
	return fmt.Sprintf("[%s] %s <%s>", u.ID, u.Name, u.Email)
}
