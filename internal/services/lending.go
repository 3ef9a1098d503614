package services

import (
	"errors"
	"fmt"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage"
)

// LendingService owns the loan state machine: open, then returned, never back.
type LendingService struct {
	store storage.LoanStore
	now   Clock
}

func NewLendingService(store storage.LoanStore) *LendingService {
	return &LendingService{store: store, now: systemClock}
}

// CreateLoan stamps LoanedAt with the current time and persists the loan.
func (s *LendingService) CreateLoan(loan entities.Loan) (entities.Loan, error) {
	if err := loan.Validate(); err != nil {
		return entities.Loan{}, err
	}
	loan.LoanedAt = s.now()
	loan.ReturnedAt = nil
	return s.store.Save(loan)
}

// RecordLoan persists a loan with the timestamps it already carries.
// Used for reconstructed loans whose loan date lies in the past.
func (s *LendingService) RecordLoan(loan entities.Loan) (entities.Loan, error) {
	if err := loan.Validate(); err != nil {
		return entities.Loan{}, err
	}
	return s.store.Save(loan)
}

// MarkReturned stamps ReturnedAt on an open loan. Returning an already
// returned loan succeeds and keeps the original return time.
func (s *LendingService) MarkReturned(loanID string) (entities.Loan, error) {
	loan, err := s.GetLoan(loanID)
	if err != nil {
		return entities.Loan{}, err
	}
	if !loan.IsOpen() {
		return loan, nil
	}
	returnedAt := s.now()
	loan.ReturnedAt = &returnedAt
	return s.store.Save(loan)
}

func (s *LendingService) GetLoan(id string) (entities.Loan, error) {
	loan, err := s.store.FindByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		return entities.Loan{}, ErrLoanNotFound
	}
	if err != nil {
		return entities.Loan{}, fmt.Errorf("failed to get loan %s: %w", id, err)
	}
	return *loan, nil
}

func (s *LendingService) ListLoans() ([]entities.Loan, error) {
	return s.store.FindAll()
}

func (s *LendingService) LoansForBook(bookID string) ([]entities.Loan, error) {
	return s.store.FindByBookID(bookID)
}

func (s *LendingService) LoansForUser(userID string) ([]entities.Loan, error) {
	return s.store.FindByUserID(userID)
}

// OpenLoansForBook lists the unreturned loans of a book; a consistent catalog has at most one.
func (s *LendingService) OpenLoansForBook(bookID string) ([]entities.Loan, error) {
	loans, err := s.store.FindByBookID(bookID)
	if err != nil {
		return nil, err
	}
	open := loans[:0:0]
	for _, l := range loans {
		if l.IsOpen() {
			open = append(open, l)
		}
	}
	return open, nil
}
