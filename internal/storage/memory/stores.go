package memory

import (
	"github.com/mrlokans/library/internal/entities"
)

type CatalogStore struct {
	books *table[entities.Book]
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{books: newTable(func(b entities.Book) string { return b.ID })}
}

func (s *CatalogStore) Save(book entities.Book) (entities.Book, error) {
	return s.books.put(book), nil
}

func (s *CatalogStore) FindByID(id string) (*entities.Book, error) {
	return s.books.get(id)
}

func (s *CatalogStore) FindAll() ([]entities.Book, error) {
	return s.books.list(nil), nil
}

func (s *CatalogStore) DeleteByID(id string) (bool, error) {
	return s.books.remove(id), nil
}

func (s *CatalogStore) SaveAll(books []entities.Book) error {
	s.books.putAll(books)
	return nil
}

func (s *CatalogStore) LoadAll() ([]entities.Book, error) {
	return s.FindAll()
}

type UserStore struct {
	users *table[entities.User]
}

func NewUserStore() *UserStore {
	return &UserStore{users: newTable(func(u entities.User) string { return u.ID })}
}

func (s *UserStore) Save(user entities.User) (entities.User, error) {
	return s.users.put(user), nil
}

func (s *UserStore) FindByID(id string) (*entities.User, error) {
	return s.users.get(id)
}

func (s *UserStore) FindAll() ([]entities.User, error) {
	return s.users.list(nil), nil
}

func (s *UserStore) DeleteByID(id string) (bool, error) {
	return s.users.remove(id), nil
}

type LoanStore struct {
	loans *table[entities.Loan]
}

func NewLoanStore() *LoanStore {
	return &LoanStore{loans: newTable(func(l entities.Loan) string { return l.ID })}
}

func (s *LoanStore) Save(loan entities.Loan) (entities.Loan, error) {
	return s.loans.put(loan), nil
}

func (s *LoanStore) FindByID(id string) (*entities.Loan, error) {
	return s.loans.get(id)
}

func (s *LoanStore) FindAll() ([]entities.Loan, error) {
	return s.loans.list(nil), nil
}

func (s *LoanStore) DeleteByID(id string) (bool, error) {
	return s.loans.remove(id), nil
}

func (s *LoanStore) FindByBookID(bookID string) ([]entities.Loan, error) {
	return s.loans.list(func(l entities.Loan) bool { return l.BookID == bookID }), nil
}

func (s *LoanStore) FindByUserID(userID string) ([]entities.Loan, error) {
	return s.loans.list(func(l entities.Loan) bool { return l.UserID == userID }), nil
}
