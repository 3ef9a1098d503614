package entities

import (
	"fmt"
	"strings"
	"time"
)

// Book is a catalog entry. Two books are the same book when their IDs match.
type Book struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Title           string    `gorm:"size:512;not null" json:"title" yaml:"title"`
	Author          string    `gorm:"size:256;not null" json:"author" yaml:"author"`
	Genre           Genre     `gorm:"size:64" json:"genre" yaml:"genre"`
	PublicationYear int       `json:"publicationYear" yaml:"publicationYear"`
	ISBN            string    `gorm:"size:32" json:"isbn" yaml:"isbn"`
	Available       bool      `json:"available" yaml:"available"`
	AddedAt         time.Time `json:"addedDate" yaml:"addedDate"`
}

// NewBook builds an available book stamped with the current time.
func NewBook(id, title, author string, genre Genre, year int, isbn string) (Book, error) {
	b := Book{
		ID:              id,
		Title:           strings.TrimSpace(title),
		Author:          strings.TrimSpace(author),
		Genre:           genre.Normalize(),
		PublicationYear: year,
		ISBN:            strings.TrimSpace(isbn),
		Available:       true,
		AddedAt:         time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Validate checks every field constraint.
func (b Book) Validate() error {
	if err := requireText("id", b.ID); err != nil {
		return err
	}
	if err := requireText("title", b.Title); err != nil {
		return err
	}
	if err := requireText("author", b.Author); err != nil {
		return err
	}
	if !ValidPublicationYear(b.PublicationYear) {
		return &ValidationError{
			Field:   "publicationYear",
			Message: fmt.Sprintf("%d is outside %d..%d", b.PublicationYear, MinPublicationYear, time.Now().Year()),
		}
	}
	if !ValidISBN(b.ISBN) {
		return &ValidationError{Field: "isbn", Message: fmt.Sprintf("%q must contain 10 or 13 digits", b.ISBN)}
	}
	return nil
}

func (b Book) String() string {
	status := "available"
	if !b.Available {
		status = "on loan"
	}
	return fmt.Sprintf("[%s] %s - %s (%d) | %s | ISBN %s | %s",
		b.ID, b.Title, b.Author, b.PublicationYear, b.Genre.DisplayName(), b.ISBN, status)
}
