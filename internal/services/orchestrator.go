package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrlokans/library/internal/entities"
)

const tracerName = "github.com/mrlokans/library/internal/services"

// LoanOutcome is the result of an orchestrated loan operation.
type LoanOutcome struct {
	Loan entities.Loan
	// Inconsistency is set when the loan change was persisted but the
	// paired availability update was not. The operation still counts as done.
	Inconsistency *Inconsistency
}

// Partial reports whether the operation left the stores out of step.
func (o LoanOutcome) Partial() bool {
	return o.Inconsistency != nil
}

// LendingOrchestrator keeps a book's availability flag in step with its loans.
// Loan and book live in independent stores without a shared transaction: the
// loan write happens first and a failed book write is reported, never rolled back.
type LendingOrchestrator struct {
	catalog     *CatalogService
	members     *MembershipService
	lending     *LendingService
	signal      InconsistencySignal
	metrics     LendingMetrics
	tracer      trace.Tracer
	defaultDays int
	now         Clock
	newID       IDGenerator
	books       *BookLocks
}

type OrchestratorOption func(*LendingOrchestrator)

func WithDefaultLoanDays(days int) OrchestratorOption {
	return func(o *LendingOrchestrator) {
		if days > 0 {
			o.defaultDays = days
		}
	}
}

// WithSignal replaces the default log-only reconciliation signal.
func WithSignal(signal InconsistencySignal) OrchestratorOption {
	return func(o *LendingOrchestrator) { o.signal = signal }
}

func WithMetrics(metrics LendingMetrics) OrchestratorOption {
	return func(o *LendingOrchestrator) { o.metrics = metrics }
}

func WithClock(now Clock) OrchestratorOption {
	return func(o *LendingOrchestrator) { o.now = now }
}

func WithIDGenerator(newID IDGenerator) OrchestratorOption {
	return func(o *LendingOrchestrator) { o.newID = newID }
}

// WithBookLocks makes the orchestrator serialize on locks shared with a Reconciler.
func WithBookLocks(locks *BookLocks) OrchestratorOption {
	return func(o *LendingOrchestrator) {
		if locks != nil {
			o.books = locks
		}
	}
}

func NewLendingOrchestrator(catalog *CatalogService, members *MembershipService, lending *LendingService, opts ...OrchestratorOption) *LendingOrchestrator {
	o := &LendingOrchestrator{
		catalog:     catalog,
		members:     members,
		lending:     lending,
		signal:      LogSignal,
		metrics:     noopMetrics{},
		tracer:      otel.Tracer(tracerName),
		defaultDays: 14,
		now:         systemClock,
		newID:       NewID,
		books:       NewBookLocks(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *LendingOrchestrator) DefaultLoanDays() int {
	return o.defaultDays
}

// RequestLoan lends an available book to a user for days days (the default when days <= 0).
func (o *LendingOrchestrator) RequestLoan(ctx context.Context, bookID, userID string, days int) (LoanOutcome, error) {
	ctx, span := o.tracer.Start(ctx, "lending.request_loan", trace.WithAttributes(
		attribute.String("book.id", bookID),
		attribute.String("user.id", userID),
	))
	defer span.End()

	unlock := o.books.lock(bookID)
	defer unlock()

	outcome, err := o.requestLoan(ctx, span, bookID, userID, days)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.metrics.LoanRejected(rejectReason(err))
		return LoanOutcome{}, err
	}
	o.metrics.LoanCreated()
	return outcome, nil
}

func (o *LendingOrchestrator) requestLoan(ctx context.Context, span trace.Span, bookID, userID string, days int) (LoanOutcome, error) {
	book, err := o.catalog.GetBook(bookID)
	if err != nil {
		return LoanOutcome{}, err
	}
	if !book.Available {
		return LoanOutcome{}, ErrBookUnavailable
	}

	open, err := o.lending.OpenLoansForBook(bookID)
	if err != nil {
		return LoanOutcome{}, fmt.Errorf("failed to check open loans: %w", err)
	}
	if len(open) > 0 {
		o.raise(ctx, Inconsistency{
			Kind:      KindOpenLoanBookAvailable,
			Operation: "request_loan",
			BookID:    bookID,
			LoanID:    open[0].ID,
			Detail:    "book flagged available while an open loan exists",
		})
		return LoanOutcome{}, ErrBookUnavailable
	}

	if _, err := o.members.GetUser(userID); err != nil {
		return LoanOutcome{}, err
	}

	if days <= 0 {
		days = o.defaultDays
	}
	loan, err := entities.NewLoan(o.newID(), bookID, userID, o.now().Add(time.Duration(days)*24*time.Hour))
	if err != nil {
		return LoanOutcome{}, err
	}

	loan, err = o.lending.CreateLoan(loan)
	if err != nil {
		return LoanOutcome{}, fmt.Errorf("failed to persist loan: %w", err)
	}
	span.AddEvent("loan.persisted", trace.WithAttributes(attribute.String("loan.id", loan.ID)))

	outcome := LoanOutcome{Loan: loan}
	if _, err := o.catalog.SetAvailability(bookID, false); err != nil {
		kind := KindOpenLoanBookAvailable
		if errors.Is(err, ErrBookNotFound) {
			kind = KindMissingBook
		}
		outcome.Inconsistency = o.raise(ctx, Inconsistency{
			Kind:      kind,
			Operation: "request_loan",
			BookID:    bookID,
			LoanID:    loan.ID,
			Detail:    err.Error(),
		})
		return outcome, nil
	}
	span.AddEvent("book.marked_unavailable")

	log.Printf("[LENDING] loan %s: book %s lent to user %s until %s", loan.ID, bookID, userID, loan.DueAt.Format(time.DateOnly))
	return outcome, nil
}

// ReturnLoan closes a loan and makes its book available again.
// Returning an already returned loan is a no-op that leaves the book untouched.
func (o *LendingOrchestrator) ReturnLoan(ctx context.Context, loanID string) (LoanOutcome, error) {
	ctx, span := o.tracer.Start(ctx, "lending.return_loan", trace.WithAttributes(
		attribute.String("loan.id", loanID),
	))
	defer span.End()

	current, err := o.lending.GetLoan(loanID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return LoanOutcome{}, err
	}
	span.SetAttributes(attribute.String("book.id", current.BookID))

	unlock := o.books.lock(current.BookID)
	defer unlock()

	// Re-read under the book lock: a concurrent return may have won.
	current, err = o.lending.GetLoan(loanID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return LoanOutcome{}, err
	}
	if !current.IsOpen() {
		span.AddEvent("loan.already_returned")
		return LoanOutcome{Loan: current}, nil
	}

	loan, err := o.lending.MarkReturned(loanID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return LoanOutcome{}, err
	}
	span.AddEvent("loan.returned")
	o.metrics.LoanReturned()

	outcome := LoanOutcome{Loan: loan}
	if _, err := o.catalog.SetAvailability(loan.BookID, true); err != nil {
		kind := KindUnavailableWithoutLoan
		if errors.Is(err, ErrBookNotFound) {
			kind = KindMissingBook
		}
		outcome.Inconsistency = o.raise(ctx, Inconsistency{
			Kind:      kind,
			Operation: "return_loan",
			BookID:    loan.BookID,
			LoanID:    loan.ID,
			Detail:    err.Error(),
		})
		return outcome, nil
	}
	span.AddEvent("book.marked_available")

	log.Printf("[LENDING] loan %s returned, book %s available", loan.ID, loan.BookID)
	return outcome, nil
}

func (o *LendingOrchestrator) raise(ctx context.Context, issue Inconsistency) *Inconsistency {
	issue.DetectedAt = o.now()
	trace.SpanFromContext(ctx).AddEvent("reconciliation.needed", trace.WithAttributes(
		attribute.String("inconsistency.kind", string(issue.Kind)),
	))
	o.signal.Signal(ctx, issue)
	return &issue
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrBookNotFound):
		return "book_not_found"
	case errors.Is(err, ErrBookUnavailable):
		return "book_unavailable"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, entities.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
