package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/library/internal/entities"
)

const (
	SeedUserName  = "System (seed loans)"
	SeedUserEmail = "seed@example.local"
)

// ConsistencyReport lists the disagreements found between catalog and loans.
type ConsistencyReport struct {
	CheckedBooks int             `json:"checkedBooks"`
	CheckedLoans int             `json:"checkedLoans"`
	Issues       []Inconsistency `json:"issues"`
	// Repaired holds the issues a repair pass fixed; they are not repeated in Issues
	Repaired []Inconsistency `json:"repaired,omitempty"`
}

func (r ConsistencyReport) Consistent() bool {
	return len(r.Issues) == 0
}

// Reconciler detects and repairs availability/loan disagreements after the fact.
type Reconciler struct {
	catalog     *CatalogService
	members     *MembershipService
	lending     *LendingService
	defaultDays int
	now         Clock
	newID       IDGenerator
	books       *BookLocks
}

func NewReconciler(catalog *CatalogService, members *MembershipService, lending *LendingService, defaultDays int) *Reconciler {
	if defaultDays <= 0 {
		defaultDays = 14
	}
	return &Reconciler{
		catalog:     catalog,
		members:     members,
		lending:     lending,
		defaultDays: defaultDays,
		now:         systemClock,
		newID:       NewID,
		books:       NewBookLocks(),
	}
}

// BookLocks returns the per-book locks repairs run under. Pass them to the
// orchestrator with WithBookLocks.
func (r *Reconciler) BookLocks() *BookLocks {
	return r.books
}

// Check reports every disagreement without changing anything.
func (r *Reconciler) Check(ctx context.Context) (ConsistencyReport, error) {
	books, err := r.catalog.ListBooks()
	if err != nil {
		return ConsistencyReport{}, fmt.Errorf("failed to list books: %w", err)
	}
	loans, err := r.lending.ListLoans()
	if err != nil {
		return ConsistencyReport{}, fmt.Errorf("failed to list loans: %w", err)
	}

	report := ConsistencyReport{CheckedBooks: len(books), CheckedLoans: len(loans)}
	openByBook := make(map[string][]entities.Loan)
	for _, l := range loans {
		if l.IsOpen() {
			openByBook[l.BookID] = append(openByBook[l.BookID], l)
		}
	}

	known := make(map[string]bool, len(books))
	for _, b := range books {
		known[b.ID] = true
		report.Issues = append(report.Issues, r.inspect(b, openByBook[b.ID])...)
	}
	for _, l := range loans {
		if l.IsOpen() && !known[l.BookID] {
			report.Issues = append(report.Issues, r.issue(KindMissingBook, l.BookID, l.ID, "open loan references a book missing from the catalog"))
		}
	}
	return report, ctx.Err()
}

// VerifyBook checks a single book against its loans.
func (r *Reconciler) VerifyBook(ctx context.Context, bookID string) ([]Inconsistency, error) {
	open, err := r.lending.OpenLoansForBook(bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans for book %s: %w", bookID, err)
	}
	book, err := r.catalog.GetBook(bookID)
	if errors.Is(err, ErrBookNotFound) {
		var issues []Inconsistency
		for _, l := range open {
			issues = append(issues, r.issue(KindMissingBook, bookID, l.ID, "open loan references a book missing from the catalog"))
		}
		return issues, nil
	}
	if err != nil {
		return nil, err
	}
	return r.inspect(book, open), ctx.Err()
}

func (r *Reconciler) inspect(book entities.Book, open []entities.Loan) []Inconsistency {
	var issues []Inconsistency
	switch {
	case len(open) > 1:
		issues = append(issues, r.issue(KindMultipleOpenLoans, book.ID, open[0].ID, fmt.Sprintf("%d open loans", len(open))))
	case len(open) == 1 && book.Available:
		issues = append(issues, r.issue(KindOpenLoanBookAvailable, book.ID, open[0].ID, "book flagged available while an open loan exists"))
	case len(open) == 0 && !book.Available:
		issues = append(issues, r.issue(KindUnavailableWithoutLoan, book.ID, "", "book flagged unavailable without an open loan"))
	}
	return issues
}

func (r *Reconciler) issue(kind InconsistencyKind, bookID, loanID, detail string) Inconsistency {
	return Inconsistency{
		Kind:       kind,
		Operation:  "audit",
		BookID:     bookID,
		LoanID:     loanID,
		Detail:     detail,
		DetectedAt: r.now(),
	}
}

// Bootstrap gives every unavailable book without an open loan a placeholder loan
// held by the seed user. Meant to run once after importing an external snapshot.
func (r *Reconciler) Bootstrap(ctx context.Context) (ConsistencyReport, error) {
	return r.repair(ctx, map[InconsistencyKind]bool{KindUnavailableWithoutLoan: true})
}

// Repair fixes what can be fixed automatically: unavailable books without a loan
// get a placeholder loan, available books with an open loan are marked unavailable.
// Duplicate open loans and loans of missing books are left for a human.
func (r *Reconciler) Repair(ctx context.Context) (ConsistencyReport, error) {
	return r.repair(ctx, map[InconsistencyKind]bool{
		KindUnavailableWithoutLoan: true,
		KindOpenLoanBookAvailable:  true,
	})
}

func (r *Reconciler) repair(ctx context.Context, fixable map[InconsistencyKind]bool) (ConsistencyReport, error) {
	found, err := r.Check(ctx)
	if err != nil {
		return found, err
	}

	report := ConsistencyReport{CheckedBooks: found.CheckedBooks, CheckedLoans: found.CheckedLoans}
	var seedUser *entities.User
	for _, issue := range found.Issues {
		if !fixable[issue.Kind] {
			report.Issues = append(report.Issues, issue)
			continue
		}

		if seedUser == nil && issue.Kind == KindUnavailableWithoutLoan {
			u, err := r.seedUser()
			if err != nil {
				return report, err
			}
			seedUser = &u
		}

		stale, fixErr := r.fixBook(ctx, issue, seedUser)
		if stale {
			log.Printf("[RECONCILE] %s resolved itself before repair", issue)
			continue
		}
		if fixErr != nil {
			log.Printf("[RECONCILE] could not repair %s: %v", issue, fixErr)
			issue.Detail = fixErr.Error()
			report.Issues = append(report.Issues, issue)
			continue
		}
		report.Repaired = append(report.Repaired, issue)
	}

	log.Printf("[RECONCILE] checked %d books and %d loans: %d repaired, %d remaining",
		report.CheckedBooks, report.CheckedLoans, len(report.Repaired), len(report.Issues))
	return report, nil
}

// fixBook repairs one issue while holding its book lock. The book is verified
// again under the lock, and stale reports true when the issue no longer holds.
func (r *Reconciler) fixBook(ctx context.Context, issue Inconsistency, seedUser *entities.User) (stale bool, err error) {
	unlock := r.books.lock(issue.BookID)
	defer unlock()

	current, err := r.VerifyBook(ctx, issue.BookID)
	if err != nil {
		return false, err
	}
	if !hasKind(current, issue.Kind) {
		return true, nil
	}

	switch issue.Kind {
	case KindUnavailableWithoutLoan:
		return false, r.placeholderLoan(issue.BookID, seedUser.ID)
	case KindOpenLoanBookAvailable:
		_, err = r.catalog.SetAvailability(issue.BookID, false)
		return false, err
	}
	return false, nil
}

func hasKind(issues []Inconsistency, kind InconsistencyKind) bool {
	for _, i := range issues {
		if i.Kind == kind {
			return true
		}
	}
	return false
}

func (r *Reconciler) seedUser() (entities.User, error) {
	u, err := r.members.FindByEmail(SeedUserEmail)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return entities.User{}, err
	}
	return r.members.Register(SeedUserName, SeedUserEmail)
}

func (r *Reconciler) placeholderLoan(bookID, userID string) error {
	book, err := r.catalog.GetBook(bookID)
	if err != nil {
		return err
	}
	now := r.now()
	loanedAt := now
	if !book.AddedAt.IsZero() && book.AddedAt.Before(now) {
		loanedAt = book.AddedAt
	}
	loan := entities.Loan{
		ID:       r.newID(),
		BookID:   bookID,
		UserID:   userID,
		LoanedAt: loanedAt,
		DueAt:    now.Add(time.Duration(r.defaultDays) * 24 * time.Hour),
	}
	_, err = r.lending.RecordLoan(loan)
	return err
}
