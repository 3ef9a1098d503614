package entities

import (
	"fmt"
	"time"
)

// Loan links a book to the user holding it. A nil ReturnedAt marks the loan as open.
type Loan struct {
	ID         string     `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	BookID     string     `gorm:"size:64;index;not null" json:"bookId" yaml:"bookId"`
	UserID     string     `gorm:"size:64;index;not null" json:"userId" yaml:"userId"`
	LoanedAt   time.Time  `json:"loanedAt" yaml:"loanedAt"`
	DueAt      time.Time  `json:"dueAt" yaml:"dueAt"`
	ReturnedAt *time.Time `json:"returnedAt" yaml:"returnedAt"`
}

// NewLoan builds an open loan due at the given time. LoanedAt is stamped when the loan is persisted.
func NewLoan(id, bookID, userID string, dueAt time.Time) (Loan, error) {
	l := Loan{ID: id, BookID: bookID, UserID: userID, DueAt: dueAt}
	if err := l.Validate(); err != nil {
		return Loan{}, err
	}
	return l, nil
}

func (l Loan) Validate() error {
	if err := requireText("id", l.ID); err != nil {
		return err
	}
	if err := requireText("bookId", l.BookID); err != nil {
		return err
	}
	return requireText("userId", l.UserID)
}

// IsOpen reports whether the book has not been returned yet.
func (l Loan) IsOpen() bool {
	return l.ReturnedAt == nil
}

// IsOverdue reports whether an open loan is past its due time.
func (l Loan) IsOverdue(now time.Time) bool {
	return l.IsOpen() && now.After(l.DueAt)
}

func (l Loan) String() string {
	state := "open"
	if !l.IsOpen() {
		state = "returned " + l.ReturnedAt.Format(time.DateTime)
	}
	return fmt.Sprintf("[%s] book=%s user=%s loaned=%s due=%s %s",
		l.ID, l.BookID, l.UserID, l.LoanedAt.Format(time.DateTime), l.DueAt.Format(time.DateTime), state)
}
