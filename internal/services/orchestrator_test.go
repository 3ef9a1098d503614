package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLendingOrchestrator_LoanLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "B1", true)
	u1 := f.addUser(t, "u1")
	u2 := f.addUser(t, "u2")

	first, err := f.orchestrator.RequestLoan(ctx, "B1", u1.ID, 0)
	require.NoError(t, err)
	assert.False(t, first.Partial())
	assert.Equal(t, fixedNow, first.Loan.LoanedAt)
	assert.Equal(t, fixedNow.Add(14*24*time.Hour), first.Loan.DueAt)
	assert.False(t, f.book(t, "B1").Available)

	_, err = f.orchestrator.RequestLoan(ctx, "B1", u2.ID, 7)
	assert.ErrorIs(t, err, ErrBookUnavailable)

	returned, err := f.orchestrator.ReturnLoan(ctx, first.Loan.ID)
	require.NoError(t, err)
	assert.False(t, returned.Partial())
	require.NotNil(t, returned.Loan.ReturnedAt)
	assert.True(t, f.book(t, "B1").Available)

	second, err := f.orchestrator.RequestLoan(ctx, "B1", u2.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, u2.ID, second.Loan.UserID)
	assert.Equal(t, fixedNow.Add(7*24*time.Hour), second.Loan.DueAt)

	assert.Equal(t, 2, f.metrics.created)
	assert.Equal(t, 1, f.metrics.returned)
	assert.Equal(t, 1, f.metrics.rejected["book_unavailable"])
	assert.Empty(t, f.signals.all())
}

func TestLendingOrchestrator_RequestLoanRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "B1", true)
	f.addBook(t, "B2", false)
	user := f.addUser(t, "reader")

	tests := []struct {
		name     string
		bookID   string
		userID   string
		expected error
	}{
		{"unknown book", "nope", user.ID, ErrBookNotFound},
		{"unavailable book", "B2", user.ID, ErrBookUnavailable},
		{"unknown user", "B1", "ghost", ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orchestrator.RequestLoan(ctx, tt.bookID, tt.userID, 0)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	loans, err := f.lending.ListLoans()
	require.NoError(t, err)
	assert.Empty(t, loans, "rejected requests must not create loans")
	assert.True(t, f.book(t, "B1").Available)
}

func TestLendingOrchestrator_RequestLoanRefusesBookWithOpenLoan(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "B1", true)
	user := f.addUser(t, "reader")
	_, err := f.lending.RecordLoan(mustLoan(t, "stale", "B1", user.ID))
	require.NoError(t, err)

	_, err = f.orchestrator.RequestLoan(context.Background(), "B1", user.ID, 0)
	assert.ErrorIs(t, err, ErrBookUnavailable)

	issues := f.signals.all()
	require.Len(t, issues, 1)
	assert.Equal(t, KindOpenLoanBookAvailable, issues[0].Kind)
	assert.Equal(t, "stale", issues[0].LoanID)
}

func TestLendingOrchestrator_BookUpdateFailureAfterLoanIsReported(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "B1", true)
	user := f.addUser(t, "reader")
	f.books.setFailing(true)

	outcome, err := f.orchestrator.RequestLoan(context.Background(), "B1", user.ID, 0)
	require.NoError(t, err, "the loan itself was persisted")
	require.True(t, outcome.Partial())
	assert.Equal(t, KindOpenLoanBookAvailable, outcome.Inconsistency.Kind)
	assert.Equal(t, outcome.Loan.ID, outcome.Inconsistency.LoanID)
	assert.Contains(t, outcome.Inconsistency.Detail, errDiskFull.Error())

	stored, err := f.lending.GetLoan(outcome.Loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOpen(), "the loan is not rolled back")
	assert.True(t, f.book(t, "B1").Available)

	issues := f.signals.all()
	require.Len(t, issues, 1)
	assert.Equal(t, "request_loan", issues[0].Operation)
	assert.Equal(t, fixedNow, issues[0].DetectedAt)
}

func TestLendingOrchestrator_ReturnFailureIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "B1", true)
	user := f.addUser(t, "reader")
	loaned, err := f.orchestrator.RequestLoan(ctx, "B1", user.ID, 0)
	require.NoError(t, err)

	f.books.setFailing(true)
	outcome, err := f.orchestrator.ReturnLoan(ctx, loaned.Loan.ID)
	require.NoError(t, err)
	require.True(t, outcome.Partial())
	assert.Equal(t, KindUnavailableWithoutLoan, outcome.Inconsistency.Kind)
	assert.False(t, outcome.Loan.IsOpen())
	assert.False(t, f.book(t, "B1").Available)
	require.Len(t, f.signals.all(), 1)
}

func TestLendingOrchestrator_ReturnUnknownLoanLeavesBooksAlone(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "B1", false)

	_, err := f.orchestrator.ReturnLoan(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLoanNotFound)
	assert.False(t, f.book(t, "B1").Available)
}

func TestLendingOrchestrator_DoubleReturnIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "B1", true)
	u1 := f.addUser(t, "u1")
	u2 := f.addUser(t, "u2")

	first, err := f.orchestrator.RequestLoan(ctx, "B1", u1.ID, 0)
	require.NoError(t, err)
	_, err = f.orchestrator.ReturnLoan(ctx, first.Loan.ID)
	require.NoError(t, err)
	second, err := f.orchestrator.RequestLoan(ctx, "B1", u2.ID, 0)
	require.NoError(t, err)

	again, err := f.orchestrator.ReturnLoan(ctx, first.Loan.ID)
	require.NoError(t, err)
	assert.False(t, again.Partial())
	assert.False(t, f.book(t, "B1").Available, "stale return must not free a book lent again")

	current, err := f.lending.GetLoan(second.Loan.ID)
	require.NoError(t, err)
	assert.True(t, current.IsOpen())
	assert.Equal(t, 1, f.metrics.returned)
}

func TestLendingOrchestrator_ConcurrentRequestsForSameBook(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "B1", true)

	const readers = 16
	userIDs := make([]string, readers)
	for i := range userIDs {
		userIDs[i] = f.addUser(t, "reader"+string(rune('a'+i))).ID
	}

	var wg sync.WaitGroup
	var succeeded, unavailable atomic.Int32
	for _, id := range userIDs {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.orchestrator.RequestLoan(context.Background(), "B1", userID, 0)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrBookUnavailable):
				unavailable.Add(1)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(readers-1), unavailable.Load())
	open, err := f.lending.OpenLoansForBook("B1")
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestLendingOrchestrator_UsesInjectedLoanIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "B1", true)
	user := f.addUser(t, "u1")

	var seq atomic.Int32
	orchestrator := NewLendingOrchestrator(f.catalog, f.members, f.lending,
		WithIDGenerator(func() string { return "loan-" + string(rune('0'+seq.Add(1))) }),
	)

	outcome, err := orchestrator.RequestLoan(ctx, "B1", user.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "loan-1", outcome.Loan.ID)

	stored, err := f.lending.GetLoan("loan-1")
	require.NoError(t, err)
	assert.Equal(t, "B1", stored.BookID)
}
