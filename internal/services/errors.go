package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book unavailable")
	ErrUserNotFound    = errors.New("user not found")
	ErrLoanNotFound    = errors.New("loan not found")
)

// InconsistencyKind names a way the availability flag and loan records can disagree.
type InconsistencyKind string

const (
	// An open loan exists but the book is flagged available
	KindOpenLoanBookAvailable InconsistencyKind = "open_loan_book_available"
	// The book is flagged unavailable but no open loan references it
	KindUnavailableWithoutLoan InconsistencyKind = "unavailable_without_loan"
	// More than one open loan references the same book
	KindMultipleOpenLoans InconsistencyKind = "multiple_open_loans"
	// A loan references a book that is not in the catalog
	KindMissingBook InconsistencyKind = "missing_book"
)

func InconsistencyKinds() []InconsistencyKind {
	return []InconsistencyKind{
		KindOpenLoanBookAvailable,
		KindUnavailableWithoutLoan,
		KindMultipleOpenLoans,
		KindMissingBook,
	}
}

// Inconsistency describes one cross-store disagreement.
type Inconsistency struct {
	Kind       InconsistencyKind `json:"kind"`
	Operation  string            `json:"operation"` // request_loan, return_loan or audit
	BookID     string            `json:"bookId"`
	LoanID     string            `json:"loanId,omitempty"`
	Detail     string            `json:"detail,omitempty"`
	DetectedAt time.Time         `json:"detectedAt"`
}

func (i Inconsistency) String() string {
	s := fmt.Sprintf("%s during %s (book=%s", i.Kind, i.Operation, i.BookID)
	if i.LoanID != "" {
		s += " loan=" + i.LoanID
	}
	s += ")"
	if i.Detail != "" {
		s += ": " + i.Detail
	}
	return s
}
