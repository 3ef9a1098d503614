// Package storagetest holds the behaviour every storage adapter must share.
// Adapter packages call these helpers from their own tests.
package storagetest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage"
)

// CatalogFactory opens a fresh catalog store and reopens one against the same backing data.
type CatalogFactory struct {
	New    func(t *testing.T) storage.CatalogStore
	Reopen func(t *testing.T, s storage.CatalogStore) storage.CatalogStore
}

var baseTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// SampleBooks returns n valid books with distinct IDs and fixed timestamps.
func SampleBooks(n int) []entities.Book {
	genres := entities.Genres()
	books := make([]entities.Book, 0, n)
	for i := 0; i < n; i++ {
		books = append(books, entities.Book{
			ID:              fmt.Sprintf("book-%03d", i+1),
			Title:           fmt.Sprintf("Title %d", i+1),
			Author:          fmt.Sprintf("Author %d", i%3),
			Genre:           genres[i%len(genres)],
			PublicationYear: 1950 + i,
			ISBN:            fmt.Sprintf("978000000%04d", i),
			Available:       i%2 == 0,
			AddedAt:         baseTime.Add(time.Duration(i) * time.Hour).Add(123456789 * time.Nanosecond),
		})
	}
	return books
}

// AssertSameBook compares every field; timestamps are compared as instants.
func AssertSameBook(t require.TestingT, want, got entities.Book) {
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Author, got.Author)
	assert.Equal(t, want.Genre, got.Genre)
	assert.Equal(t, want.PublicationYear, got.PublicationYear)
	assert.Equal(t, want.ISBN, got.ISBN)
	assert.Equal(t, want.Available, got.Available)
	assert.True(t, want.AddedAt.Equal(got.AddedAt), "addedAt: want %s, got %s", want.AddedAt, got.AddedAt)
}

func byID(books []entities.Book) map[string]entities.Book {
	out := make(map[string]entities.Book, len(books))
	for _, b := range books {
		out[b.ID] = b
	}
	return out
}

// RunCatalogStoreContract exercises the CatalogStore contract.
func RunCatalogStoreContract(t *testing.T, f CatalogFactory) {
	t.Run("save then find returns identical fields", func(t *testing.T) {
		s := f.New(t)
		book := SampleBooks(1)[0]

		saved, err := s.Save(book)
		require.NoError(t, err)
		AssertSameBook(t, book, saved)

		found, err := s.FindByID(book.ID)
		require.NoError(t, err)
		AssertSameBook(t, book, *found)
	})

	t.Run("save replaces by id", func(t *testing.T) {
		s := f.New(t)
		book := SampleBooks(1)[0]
		_, err := s.Save(book)
		require.NoError(t, err)

		book.Title = "Renamed"
		book.Available = false
		_, err = s.Save(book)
		require.NoError(t, err)

		all, err := s.FindAll()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Renamed", all[0].Title)
		assert.False(t, all[0].Available)
	})

	t.Run("find unknown id", func(t *testing.T) {
		s := f.New(t)
		found, err := s.FindByID("missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Nil(t, found)
	})

	t.Run("delete unknown id leaves store unchanged", func(t *testing.T) {
		s := f.New(t)
		require.NoError(t, s.SaveAll(SampleBooks(3)))

		removed, err := s.DeleteByID("missing")
		require.NoError(t, err)
		assert.False(t, removed)

		all, err := s.FindAll()
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("delete known id", func(t *testing.T) {
		s := f.New(t)
		books := SampleBooks(3)
		require.NoError(t, s.SaveAll(books))

		removed, err := s.DeleteByID(books[1].ID)
		require.NoError(t, err)
		assert.True(t, removed)

		_, err = s.FindByID(books[1].ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		all, err := s.FindAll()
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("save all upserts", func(t *testing.T) {
		s := f.New(t)
		books := SampleBooks(4)
		require.NoError(t, s.SaveAll(books[:2]))

		changed := books[1]
		changed.Title = "Changed"
		require.NoError(t, s.SaveAll([]entities.Book{changed, books[2], books[3]}))

		all, err := s.LoadAll()
		require.NoError(t, err)
		assert.Len(t, all, 4)
		assert.Equal(t, "Changed", byID(all)[changed.ID].Title)
	})

	t.Run("save all with empty batch", func(t *testing.T) {
		s := f.New(t)
		require.NoError(t, s.SaveAll(nil))
		all, err := s.FindAll()
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("load all matches find all", func(t *testing.T) {
		s := f.New(t)
		require.NoError(t, s.SaveAll(SampleBooks(5)))

		found, err := s.FindAll()
		require.NoError(t, err)
		loaded, err := s.LoadAll()
		require.NoError(t, err)
		assert.Equal(t, len(found), len(loaded))
		for i := range found {
			AssertSameBook(t, found[i], loaded[i])
		}
	})

	t.Run("round trip through reopen", func(t *testing.T) {
		s := f.New(t)
		books := SampleBooks(12)
		require.NoError(t, s.SaveAll(books))

		reopened := f.Reopen(t, s)
		all, err := reopened.LoadAll()
		require.NoError(t, err)
		require.Len(t, all, len(books))

		got := byID(all)
		for _, want := range books {
			AssertSameBook(t, want, got[want.ID])
		}
	})

	t.Run("property: save then find", func(t *testing.T) {
		s := f.New(t)
		rapid.Check(t, func(rt *rapid.T) {
			book := BookGenerator().Draw(rt, "book")
			_, err := s.Save(book)
			require.NoError(rt, err)

			found, err := s.FindByID(book.ID)
			require.NoError(rt, err)
			AssertSameBook(rt, book, *found)
		})
	})
}

// BookGenerator draws valid books whose free text survives every on-disk encoding.
func BookGenerator() *rapid.Generator[entities.Book] {
	word := `[A-Za-z0-9]+( [A-Za-z0-9]+){0,3}`
	return rapid.Custom(func(t *rapid.T) entities.Book {
		return entities.Book{
			ID:              rapid.StringMatching(`[a-z0-9]{1,12}`).Draw(t, "id"),
			Title:           rapid.StringMatching(word).Draw(t, "title"),
			Author:          rapid.StringMatching(word).Draw(t, "author"),
			Genre:           rapid.SampledFrom(entities.Genres()).Draw(t, "genre"),
			PublicationYear: rapid.IntRange(entities.MinPublicationYear, 2020).Draw(t, "year"),
			ISBN:            rapid.StringMatching(`[0-9]{13}`).Draw(t, "isbn"),
			Available:       rapid.Bool().Draw(t, "available"),
			AddedAt: time.Unix(
				rapid.Int64Range(0, 4_000_000_000).Draw(t, "seconds"),
				rapid.Int64Range(0, 999_999_999).Draw(t, "nanos"),
			).UTC(),
		}
	})
}
