// Package console drives the library services from an interactive text menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

const unknownPlaceholder = "[unknown]"

// Menu reads choices line by line from in and writes prompts and results to out.
type Menu struct {
	catalog      *services.CatalogService
	members      *services.MembershipService
	lending      *services.LendingService
	orchestrator *services.LendingOrchestrator

	in  *bufio.Scanner
	out io.Writer
	now func() time.Time
}

func NewMenu(catalog *services.CatalogService, members *services.MembershipService, lending *services.LendingService, orchestrator *services.LendingOrchestrator, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		catalog:      catalog,
		members:      members,
		lending:      lending,
		orchestrator: orchestrator,
		in:           bufio.NewScanner(in),
		out:          out,
		now:          time.Now,
	}
}

// Run loops until the user picks 0, the input ends or ctx is cancelled.
// Failed actions are reported and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	actions := map[string]func(context.Context) error{
		"1": m.addBook,
		"2": m.listBooks,
		"3": m.searchBooks,
		"4": m.deleteBook,
		"5": m.registerUser,
		"6": m.listUsers,
		"7": m.createLoan,
		"8": m.listLoans,
		"9": m.returnLoan,
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printMenu()
		choice, err := m.readLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if choice == "0" {
			break
		}

		action, ok := actions[choice]
		if !ok {
			m.println("Invalid choice.")
			continue
		}
		err = action(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			m.println("Error: " + describe(err))
		}
	}

	m.println("Goodbye!")
	return nil
}

func (m *Menu) printMenu() {
	m.println("")
	m.println("=== Digital Library ===")
	m.println("1) Add book")
	m.println("2) List books")
	m.println("3) Search by title")
	m.println("4) Delete book by ID")
	m.println("5) Register user")
	m.println("6) List users")
	m.println("7) Create loan")
	m.println("8) List loans")
	m.println("9) Return loan (by ID)")
	m.println("0) Exit")
	m.print("Select: ")
}

func (m *Menu) addBook(_ context.Context) error {
	m.println("--- Add Book ---")
	title, err := m.readRequired("Title: ")
	if err != nil {
		return err
	}
	author, err := m.readRequired("Author: ")
	if err != nil {
		return err
	}
	m.println("Select genre:")
	m.print(entities.FormattedGenreList())
	index, err := m.readInt("Genre number: ", 1)
	if err != nil {
		return err
	}
	year, err := m.readInt("Publication year: ", m.now().Year())
	if err != nil {
		return err
	}

	var isbn string
	for {
		isbn, err = m.readRequired("ISBN: ")
		if err != nil {
			return err
		}
		if entities.ValidISBN(isbn) {
			break
		}
		m.println("ISBN must contain 10 or 13 digits.")
	}

	book, err := m.catalog.CreateBook(title, author, entities.GenreFromIndex(index), year, isbn)
	if err != nil {
		return err
	}
	m.println("Book added: " + book.ID)
	return nil
}

func (m *Menu) listBooks(_ context.Context) error {
	m.println("--- Catalog ---")
	books, err := m.catalog.ListBooks()
	if err != nil {
		return err
	}
	if len(books) == 0 {
		m.println("No books in the catalog.")
		return nil
	}
	for _, b := range books {
		m.println(b.String())
	}
	return nil
}

func (m *Menu) searchBooks(_ context.Context) error {
	m.print("Title search: ")
	query, err := m.readLine()
	if err != nil {
		return err
	}
	books, err := m.catalog.SearchByTitle(query)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		m.println("No results.")
		return nil
	}
	for _, b := range books {
		m.println(b.String())
	}
	return nil
}

func (m *Menu) deleteBook(_ context.Context) error {
	id, err := m.readRequired("ID of the book to delete: ")
	if err != nil {
		return err
	}
	err = m.catalog.DeleteBook(id)
	if errors.Is(err, services.ErrBookNotFound) {
		m.println("Not found.")
		return nil
	}
	if err != nil {
		return err
	}
	m.println("Deleted.")
	return nil
}

func (m *Menu) registerUser(_ context.Context) error {
	m.println("--- Register User ---")
	name, err := m.readRequired("Name: ")
	if err != nil {
		return err
	}
	email, err := m.readRequired("Email: ")
	if err != nil {
		return err
	}
	user, err := m.members.Register(name, email)
	if err != nil {
		return err
	}
	m.println("User registered with ID: " + user.ID)
	return nil
}

func (m *Menu) listUsers(_ context.Context) error {
	m.println("--- Users ---")
	users, err := m.members.ListUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		m.println("No registered users.")
		return nil
	}
	for _, u := range users {
		m.println(u.String())
	}
	return nil
}

func (m *Menu) createLoan(ctx context.Context) error {
	m.println("--- Create Loan ---")
	bookID, err := m.readRequired("Book ID: ")
	if err != nil {
		return err
	}
	book, err := m.catalog.GetBook(bookID)
	if err != nil {
		return err
	}
	if !book.Available {
		m.println("The book is not available (it is probably on loan already).")
		return nil
	}
	userID, err := m.readRequired("User ID: ")
	if err != nil {
		return err
	}
	if _, err := m.members.GetUser(userID); err != nil {
		return err
	}
	days, err := m.readInt("Loan days: ", m.orchestrator.DefaultLoanDays())
	if err != nil {
		return err
	}

	outcome, err := m.orchestrator.RequestLoan(ctx, bookID, userID, days)
	if err != nil {
		return err
	}
	if outcome.Partial() {
		m.println("Warning: the book status could not be updated: " + outcome.Inconsistency.Detail)
	}
	m.println("Loan created with ID: " + outcome.Loan.ID)
	return nil
}

func (m *Menu) listLoans(_ context.Context) error {
	m.println("--- Loans ---")
	loans, err := m.lending.ListLoans()
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		m.println("No loans.")
		return nil
	}
	for _, l := range loans {
		title := unknownPlaceholder
		if b, err := m.catalog.GetBook(l.BookID); err == nil {
			title = b.Title
		}
		name := unknownPlaceholder
		if u, err := m.members.GetUser(l.UserID); err == nil {
			name = u.Name
		}
		state := "On loan (not returned)"
		if !l.IsOpen() {
			state = "Returned on " + l.ReturnedAt.Format(time.DateTime)
		}
		m.println(fmt.Sprintf("Loan ID: %s - Book: %s - User: %s - Due: %s - %s",
			l.ID, title, name, l.DueAt.Format(time.DateOnly), state))
	}
	return nil
}

func (m *Menu) returnLoan(ctx context.Context) error {
	id, err := m.readRequired("ID of the loan to return: ")
	if err != nil {
		return err
	}
	outcome, err := m.orchestrator.ReturnLoan(ctx, id)
	if err != nil {
		return err
	}
	if outcome.Partial() {
		m.println("Warning: the book status could not be updated: " + outcome.Inconsistency.Detail)
	}
	m.println("Loan returned: " + outcome.Loan.ID)
	return nil
}

// --- Input helpers ---

func (m *Menu) readLine() (string, error) {
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) readRequired(prompt string) (string, error) {
	for {
		m.print(prompt)
		line, err := m.readLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		m.println("Value cannot be empty.")
	}
}

// readInt returns fallback on an empty line and re-prompts on anything that is not a number.
func (m *Menu) readInt(prompt string, fallback int) (int, error) {
	for {
		m.print(prompt)
		line, err := m.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" {
			return fallback, nil
		}
		v, err := strconv.Atoi(line)
		if err == nil {
			return v, nil
		}
		m.println("Invalid value. Enter a number.")
	}
}

func (m *Menu) print(s string) {
	fmt.Fprint(m.out, s)
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func describe(err error) string {
	switch {
	case errors.Is(err, services.ErrBookNotFound):
		return "book not found"
	case errors.Is(err, services.ErrUserNotFound):
		return "user not found"
	case errors.Is(err, services.ErrLoanNotFound):
		return "loan not found"
	case errors.Is(err, services.ErrBookUnavailable):
		return "book is not available"
	default:
		return err.Error()
	}
}
