package jsonfile

import (
	"github.com/mrlokans/library/internal/entities"
)

type CatalogStore struct {
	books *collection[entities.Book, bookRecord]
}

// NewCatalogStore opens (without creating) the catalog document at path.
func NewCatalogStore(path string) (*CatalogStore, error) {
	c := &collection[entities.Book, bookRecord]{
		path: path,
		id:   func(b entities.Book) string { return b.ID },
		toRecord: func(b entities.Book) bookRecord {
			available := b.Available
			return bookRecord{
				ID:              b.ID,
				Title:           b.Title,
				Author:          b.Author,
				Genre:           b.Genre.DisplayName(),
				PublicationYear: flexibleInt(b.PublicationYear),
				ISBN:            b.ISBN,
				Available:       &available,
				AddedDate:       formatTime(b.AddedAt),
			}
		},
		fromRecord: func(r bookRecord) (entities.Book, bool) {
			if r.ID == "" {
				return entities.Book{}, false
			}
			available := true
			if r.Available != nil {
				available = *r.Available
			}
			return entities.Book{
				ID:              r.ID,
				Title:           r.Title,
				Author:          r.Author,
				Genre:           entities.ParseGenre(r.Genre),
				PublicationYear: int(r.PublicationYear),
				ISBN:            r.ISBN,
				Available:       available,
				AddedAt:         parseTime(r.AddedDate),
			}, true
		},
	}
	if err := c.open(); err != nil {
		return nil, err
	}
	return &CatalogStore{books: c}, nil
}

func (s *CatalogStore) Path() string {
	return s.books.path
}

func (s *CatalogStore) Save(book entities.Book) (entities.Book, error) {
	return s.books.save(book)
}

func (s *CatalogStore) FindByID(id string) (*entities.Book, error) {
	return s.books.get(id)
}

func (s *CatalogStore) FindAll() ([]entities.Book, error) {
	return s.books.all()
}

func (s *CatalogStore) DeleteByID(id string) (bool, error) {
	return s.books.remove(id)
}

func (s *CatalogStore) SaveAll(books []entities.Book) error {
	return s.books.saveAll(books)
}

func (s *CatalogStore) LoadAll() ([]entities.Book, error) {
	return s.books.all()
}

type UserStore struct {
	users *collection[entities.User, userRecord]
}

func NewUserStore(path string) (*UserStore, error) {
	c := &collection[entities.User, userRecord]{
		path: path,
		id:   func(u entities.User) string { return u.ID },
		toRecord: func(u entities.User) userRecord {
			return userRecord{ID: u.ID, Name: u.Name, Email: u.Email, RegisteredAt: formatTime(u.RegisteredAt)}
		},
		fromRecord: func(r userRecord) (entities.User, bool) {
			if r.ID == "" {
				return entities.User{}, false
			}
			return entities.User{ID: r.ID, Name: r.Name, Email: r.Email, RegisteredAt: parseTime(r.RegisteredAt)}, true
		},
	}
	if err := c.open(); err != nil {
		return nil, err
	}
	return &UserStore{users: c}, nil
}

func (s *UserStore) Path() string {
	return s.users.path
}

func (s *UserStore) Save(user entities.User) (entities.User, error) {
	return s.users.save(user)
}

func (s *UserStore) FindByID(id string) (*entities.User, error) {
	return s.users.get(id)
}

func (s *UserStore) FindAll() ([]entities.User, error) {
	return s.users.all()
}

func (s *UserStore) DeleteByID(id string) (bool, error) {
	return s.users.remove(id)
}

type LoanStore struct {
	loans *collection[entities.Loan, loanRecord]
}

func NewLoanStore(path string) (*LoanStore, error) {
	c := &collection[entities.Loan, loanRecord]{
		path: path,
		id:   func(l entities.Loan) string { return l.ID },
		toRecord: func(l entities.Loan) loanRecord {
			return loanRecord{
				ID:         l.ID,
				BookID:     l.BookID,
				UserID:     l.UserID,
				LoanedAt:   formatTime(l.LoanedAt),
				DueAt:      formatTime(l.DueAt),
				ReturnedAt: formatOptionalTime(l.ReturnedAt),
			}
		},
		fromRecord: func(r loanRecord) (entities.Loan, bool) {
			if r.ID == "" {
				return entities.Loan{}, false
			}
			return entities.Loan{
				ID:         r.ID,
				BookID:     r.BookID,
				UserID:     r.UserID,
				LoanedAt:   parseTime(r.LoanedAt),
				DueAt:      parseTime(r.DueAt),
				ReturnedAt: parseOptionalTime(r.ReturnedAt),
			}, true
		},
	}
	if err := c.open(); err != nil {
		return nil, err
	}
	return &LoanStore{loans: c}, nil
}

func (s *LoanStore) Path() string {
	return s.loans.path
}

func (s *LoanStore) Save(loan entities.Loan) (entities.Loan, error) {
	return s.loans.save(loan)
}

func (s *LoanStore) FindByID(id string) (*entities.Loan, error) {
	return s.loans.get(id)
}

func (s *LoanStore) FindAll() ([]entities.Loan, error) {
	return s.loans.all()
}

func (s *LoanStore) DeleteByID(id string) (bool, error) {
	return s.loans.remove(id)
}

func (s *LoanStore) FindByBookID(bookID string) ([]entities.Loan, error) {
	return s.loans.filter(func(l entities.Loan) bool { return l.BookID == bookID })
}

func (s *LoanStore) FindByUserID(userID string) ([]entities.Loan, error) {
	return s.loans.filter(func(l entities.Loan) bool { return l.UserID == userID })
}
