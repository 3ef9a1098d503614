package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
	"github.com/mrlokans/library/internal/storage/memory"
)

type fixture struct {
	catalog      *services.CatalogService
	members      *services.MembershipService
	lending      *services.LendingService
	orchestrator *services.LendingOrchestrator
}

func newFixture() *fixture {
	f := &fixture{
		catalog: services.NewCatalogService(memory.NewCatalogStore()),
		members: services.NewMembershipService(memory.NewUserStore()),
		lending: services.NewLendingService(memory.NewLoanStore()),
	}
	f.orchestrator = services.NewLendingOrchestrator(f.catalog, f.members, f.lending,
		services.WithSignal(services.SignalFunc(func(context.Context, services.Inconsistency) {})))
	return f
}

func (f *fixture) run(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	menu := NewMenu(f.catalog, f.members, f.lending, f.orchestrator, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	menu.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, menu.Run(context.Background()))
	return out.String()
}

func TestMenu_AddBookRepromptsAndDefaults(t *testing.T) {
	f := newFixture()

	out := f.run(t,
		"1",
		"", "Dune", // empty title is re-prompted
		"Frank Herbert",
		"3",                // Mystery
		"",                 // default year
		"12", "0441172717", // invalid ISBN is re-prompted
		"0",
	)

	assert.Contains(t, out, "Value cannot be empty.")
	assert.Contains(t, out, "ISBN must contain 10 or 13 digits.")
	assert.Contains(t, out, "Book added: ")
	assert.Contains(t, out, "Goodbye!")

	books, err := f.catalog.ListBooks()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, entities.GenreMystery, books[0].Genre)
	assert.Equal(t, 2024, books[0].PublicationYear)
	assert.True(t, books[0].Available)
}

func TestMenu_InvalidNumberIsReprompted(t *testing.T) {
	f := newFixture()

	out := f.run(t, "1", "Dune", "Frank Herbert", "abc", "99", "1965", "0441172717", "0")

	assert.Contains(t, out, "Invalid value. Enter a number.")
	books, err := f.catalog.ListBooks()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, entities.GenreOther, books[0].Genre, "out of range index falls back to Other")
}

func TestMenu_InvalidChoice(t *testing.T) {
	f := newFixture()
	out := f.run(t, "42", "0")
	assert.Contains(t, out, "Invalid choice.")
}

func TestMenu_EndOfInputExits(t *testing.T) {
	f := newFixture()
	out := f.run(t, "5", "Ada")
	assert.Contains(t, out, "Goodbye!")

	users, err := f.members.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestMenu_ListAndSearch(t *testing.T) {
	f := newFixture()
	_, err := f.catalog.CreateBook("Dune", "Frank Herbert", entities.GenreScienceFiction, 1965, "0441172717")
	require.NoError(t, err)

	out := f.run(t, "2", "3", "dun", "3", "zzz", "0")

	assert.Equal(t, 2, strings.Count(out, "Dune - Frank Herbert"))
	assert.Contains(t, out, "No results.")
}

func TestMenu_ListEmpty(t *testing.T) {
	f := newFixture()
	out := f.run(t, "2", "6", "8", "0")
	assert.Contains(t, out, "No books in the catalog.")
	assert.Contains(t, out, "No registered users.")
	assert.Contains(t, out, "No loans.")
}

func TestMenu_DeleteBook(t *testing.T) {
	f := newFixture()
	book, err := f.catalog.CreateBook("Dune", "Frank Herbert", entities.GenreFiction, 1965, "0441172717")
	require.NoError(t, err)

	out := f.run(t, "4", "missing", "4", book.ID, "0")

	assert.Contains(t, out, "Not found.")
	assert.Contains(t, out, "Deleted.")
	_, err = f.catalog.GetBook(book.ID)
	assert.ErrorIs(t, err, services.ErrBookNotFound)
}

func TestMenu_LoanLifecycle(t *testing.T) {
	f := newFixture()
	book, err := f.catalog.CreateBook("Dune", "Frank Herbert", entities.GenreFiction, 1965, "0441172717")
	require.NoError(t, err)

	out := f.run(t, "5", "Ada", "ada@example.com", "6", "0")
	assert.Contains(t, out, "User registered with ID: ")
	assert.Contains(t, out, "Ada <ada@example.com>")

	users, err := f.members.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	ada := users[0]

	out = f.run(t, "7", book.ID, ada.ID, "", "7", book.ID, "8", "0")
	assert.Contains(t, out, "Loan created with ID: ")
	assert.Contains(t, out, "The book is not available")
	assert.Contains(t, out, "Book: Dune - User: Ada")
	assert.Contains(t, out, "On loan (not returned)")

	loans, err := f.lending.ListLoans()
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.InDelta(t, 14*24.0, loans[0].DueAt.Sub(loans[0].LoanedAt).Hours(), 0.01)

	out = f.run(t, "9", "nope", "9", loans[0].ID, "8", "0")
	assert.Contains(t, out, "Error: loan not found")
	assert.Contains(t, out, "Loan returned: "+loans[0].ID)
	assert.Contains(t, out, "Returned on ")

	stored, err := f.catalog.GetBook(book.ID)
	require.NoError(t, err)
	assert.True(t, stored.Available)
}

func TestMenu_CreateLoanUnknownIDs(t *testing.T) {
	f := newFixture()
	book, err := f.catalog.CreateBook("Dune", "Frank Herbert", entities.GenreFiction, 1965, "0441172717")
	require.NoError(t, err)

	out := f.run(t, "7", "missing", "7", book.ID, "ghost", "0")

	assert.Contains(t, out, "Error: book not found")
	assert.Contains(t, out, "Error: user not found")
	loans, err := f.lending.ListLoans()
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestMenu_LoanListPlaceholder(t *testing.T) {
	f := newFixture()
	book, err := f.catalog.CreateBook("Dune", "Frank Herbert", entities.GenreFiction, 1965, "0441172717")
	require.NoError(t, err)
	user, err := f.members.Register("Ada", "ada@example.com")
	require.NoError(t, err)
	_, err = f.orchestrator.RequestLoan(context.Background(), book.ID, user.ID, 7)
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeleteBook(book.ID))

	out := f.run(t, "8", "0")
	assert.Contains(t, out, "Book: [unknown] - User: Ada")
}

func TestMenu_CancelledContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	menu := NewMenu(f.catalog, f.members, f.lending, f.orchestrator, strings.NewReader("2\n"), &bytes.Buffer{})
	assert.ErrorIs(t, menu.Run(ctx), context.Canceled)
}
