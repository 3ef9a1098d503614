// Package csvfile stores the catalog as delimited text, one book per line.
//
// Field order: id, title, author, genre display name, publication year, ISBN,
// availability, added-at timestamp (RFC 3339). Every mutation reads the whole
// file, applies the change in memory and atomically replaces the file.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage"
	"github.com/mrlokans/library/internal/utils"
)

const (
	Delimiter  = ','
	fieldCount = 8
	filePerm   = 0644
	timeLayout = time.RFC3339Nano
	logPrefix  = "[CSV]"
)

type CatalogStore struct {
	path string
	mu   sync.Mutex
}

// NewCatalogStore checks that path is readable (or absent) and that its directory can be created.
func NewCatalogStore(path string) (*CatalogStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	s := &CatalogStore{path: path}
	if _, err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CatalogStore) Path() string {
	return s.path
}

func (s *CatalogStore) Save(book entities.Book) (entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.read()
	if err != nil {
		return entities.Book{}, err
	}
	book = sanitize(book)
	if err := s.write(upsert(books, book)); err != nil {
		return entities.Book{}, err
	}
	return book, nil
}

// sanitize returns the book exactly as a later read will see it.
func sanitize(b entities.Book) entities.Book {
	b.ID = utils.StripField(b.ID, Delimiter)
	b.Title = utils.StripField(b.Title, Delimiter)
	b.Author = utils.StripField(b.Author, Delimiter)
	b.ISBN = utils.StripField(b.ISBN, Delimiter)
	return b
}

func (s *CatalogStore) FindByID(id string) (*entities.Book, error) {
	books, err := s.FindAll()
	if err != nil {
		return nil, err
	}
	id = utils.StripField(id, Delimiter)
	for i := range books {
		if books[i].ID == id {
			return &books[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *CatalogStore) FindAll() ([]entities.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *CatalogStore) DeleteByID(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.read()
	if err != nil {
		return false, err
	}
	id = utils.StripField(id, Delimiter)
	kept := books[:0]
	for _, b := range books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(books) {
		return false, nil
	}
	if err := s.write(kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CatalogStore) SaveAll(books []entities.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	for _, b := range books {
		current = upsert(current, sanitize(b))
	}
	return s.write(current)
}

func (s *CatalogStore) LoadAll() ([]entities.Book, error) {
	return s.FindAll()
}

func (s *CatalogStore) read() ([]entities.Book, error) {
	data, err := utils.ReadFileIfExists(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", s.path, err)
	}
	return decode(bytes.NewReader(data)), nil
}

func (s *CatalogStore) write(books []entities.Book) error {
	var buf bytes.Buffer
	if err := encode(&buf, books); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(s.path, buf.Bytes(), filePerm); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func upsert(books []entities.Book, book entities.Book) []entities.Book {
	for i := range books {
		if books[i].ID == book.ID {
			books[i] = book
			return books
		}
	}
	return append(books, book)
}

func encode(w io.Writer, books []entities.Book) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	for _, b := range books {
		record := []string{
			utils.StripField(b.ID, Delimiter),
			utils.StripField(b.Title, Delimiter),
			utils.StripField(b.Author, Delimiter),
			b.Genre.DisplayName(),
			strconv.Itoa(b.PublicationYear),
			utils.StripField(b.ISBN, Delimiter),
			strconv.FormatBool(b.Available),
			b.AddedAt.Format(timeLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to encode book %s: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// decode never fails as a whole: malformed lines are logged and skipped.
func decode(r io.Reader) []entities.Book {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1

	var books []entities.Book
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Printf("%s skipping malformed line %d: %v", logPrefix, parseErr.Line, err)
				continue
			}
			log.Printf("%s stopped reading: %v", logPrefix, err)
			break
		}

		line, _ := cr.FieldPos(0)
		book, err := parseRecord(record)
		if err != nil {
			log.Printf("%s skipping line %d: %v", logPrefix, line, err)
			continue
		}
		books = append(books, book)
	}
	return books
}

func parseRecord(record []string) (entities.Book, error) {
	if len(record) < fieldCount {
		return entities.Book{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(record))
	}
	if record[0] == "" {
		return entities.Book{}, errors.New("missing id")
	}
	if record[1] == "" {
		return entities.Book{}, errors.New("missing title")
	}
	year, err := strconv.Atoi(record[4])
	if err != nil {
		return entities.Book{}, fmt.Errorf("invalid year %q", record[4])
	}
	available, err := strconv.ParseBool(record[6])
	if err != nil {
		return entities.Book{}, fmt.Errorf("invalid availability %q", record[6])
	}
	addedAt, err := time.Parse(timeLayout, record[7])
	if err != nil {
		return entities.Book{}, fmt.Errorf("invalid timestamp %q", record[7])
	}
	return entities.Book{
		ID:              record[0],
		Title:           record[1],
		Author:          record[2],
		Genre:           entities.ParseGenre(record[3]),
		PublicationYear: year,
		ISBN:            record[5],
		Available:       available,
		AddedAt:         addedAt,
	}, nil
}
