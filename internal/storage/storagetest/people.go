package storagetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/storage"
)

type UserFactory struct {
	New    func(t *testing.T) storage.UserStore
	Reopen func(t *testing.T, s storage.UserStore) storage.UserStore
}

type LoanFactory struct {
	New    func(t *testing.T) storage.LoanStore
	Reopen func(t *testing.T, s storage.LoanStore) storage.LoanStore
}

func sampleUser(id string) entities.User {
	return entities.User{
		ID:           id,
		Name:         "Reader " + id,
		Email:        id + "@example.com",
		RegisteredAt: baseTime.Add(42 * time.Millisecond),
	}
}

func sampleLoan(id, bookID, userID string, returned bool) entities.Loan {
	loan := entities.Loan{
		ID:       id,
		BookID:   bookID,
		UserID:   userID,
		LoanedAt: baseTime,
		DueAt:    baseTime.Add(14 * 24 * time.Hour),
	}
	if returned {
		at := baseTime.Add(3 * 24 * time.Hour)
		loan.ReturnedAt = &at
	}
	return loan
}

func assertSameUser(t *testing.T, want, got entities.User) {
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Email, got.Email)
	assert.True(t, want.RegisteredAt.Equal(got.RegisteredAt))
}

// AssertSameLoan compares every field; timestamps are compared as instants.
func AssertSameLoan(t *testing.T, want, got entities.Loan) {
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.BookID, got.BookID)
	assert.Equal(t, want.UserID, got.UserID)
	assert.True(t, want.LoanedAt.Equal(got.LoanedAt))
	assert.True(t, want.DueAt.Equal(got.DueAt))
	if want.ReturnedAt == nil {
		assert.Nil(t, got.ReturnedAt)
		return
	}
	require.NotNil(t, got.ReturnedAt)
	assert.True(t, want.ReturnedAt.Equal(*got.ReturnedAt))
}

func RunUserStoreContract(t *testing.T, f UserFactory) {
	t.Run("save then find", func(t *testing.T) {
		s := f.New(t)
		user := sampleUser("u1")
		_, err := s.Save(user)
		require.NoError(t, err)

		found, err := s.FindByID("u1")
		require.NoError(t, err)
		assertSameUser(t, user, *found)
	})

	t.Run("save replaces by id", func(t *testing.T) {
		s := f.New(t)
		user := sampleUser("u1")
		_, err := s.Save(user)
		require.NoError(t, err)
		user.Name = "Renamed"
		_, err = s.Save(user)
		require.NoError(t, err)

		all, err := s.FindAll()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Renamed", all[0].Name)
	})

	t.Run("find unknown id", func(t *testing.T) {
		_, err := f.New(t).FindByID("nobody")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := f.New(t)
		_, err := s.Save(sampleUser("u1"))
		require.NoError(t, err)

		removed, err := s.DeleteByID("nobody")
		require.NoError(t, err)
		assert.False(t, removed)

		removed, err = s.DeleteByID("u1")
		require.NoError(t, err)
		assert.True(t, removed)

		_, err = s.FindByID("u1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("round trip through reopen", func(t *testing.T) {
		s := f.New(t)
		users := []entities.User{sampleUser("u1"), sampleUser("u2"), sampleUser("u3")}
		for _, u := range users {
			_, err := s.Save(u)
			require.NoError(t, err)
		}

		all, err := f.Reopen(t, s).FindAll()
		require.NoError(t, err)
		require.Len(t, all, len(users))
		got := make(map[string]entities.User)
		for _, u := range all {
			got[u.ID] = u
		}
		for _, want := range users {
			assertSameUser(t, want, got[want.ID])
		}
	})
}

func RunLoanStoreContract(t *testing.T, f LoanFactory) {
	t.Run("save then find keeps open and returned state", func(t *testing.T) {
		s := f.New(t)
		open := sampleLoan("l1", "b1", "u1", false)
		closed := sampleLoan("l2", "b2", "u1", true)
		for _, l := range []entities.Loan{open, closed} {
			_, err := s.Save(l)
			require.NoError(t, err)
		}

		found, err := s.FindByID("l1")
		require.NoError(t, err)
		AssertSameLoan(t, open, *found)

		found, err = s.FindByID("l2")
		require.NoError(t, err)
		AssertSameLoan(t, closed, *found)
	})

	t.Run("save replaces by id", func(t *testing.T) {
		s := f.New(t)
		loan := sampleLoan("l1", "b1", "u1", false)
		_, err := s.Save(loan)
		require.NoError(t, err)

		returned := sampleLoan("l1", "b1", "u1", true)
		_, err = s.Save(returned)
		require.NoError(t, err)

		all, err := s.FindAll()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.False(t, all[0].IsOpen())
	})

	t.Run("find by book and user", func(t *testing.T) {
		s := f.New(t)
		for _, l := range []entities.Loan{
			sampleLoan("l1", "b1", "u1", true),
			sampleLoan("l2", "b1", "u2", false),
			sampleLoan("l3", "b2", "u1", false),
		} {
			_, err := s.Save(l)
			require.NoError(t, err)
		}

		forBook, err := s.FindByBookID("b1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"l1", "l2"}, loanIDs(forBook))

		forUser, err := s.FindByUserID("u1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"l1", "l3"}, loanIDs(forUser))

		none, err := s.FindByBookID("b9")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("delete", func(t *testing.T) {
		s := f.New(t)
		_, err := s.Save(sampleLoan("l1", "b1", "u1", false))
		require.NoError(t, err)

		removed, err := s.DeleteByID("missing")
		require.NoError(t, err)
		assert.False(t, removed)

		removed, err = s.DeleteByID("l1")
		require.NoError(t, err)
		assert.True(t, removed)

		_, err = s.FindByID("l1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("round trip through reopen", func(t *testing.T) {
		s := f.New(t)
		loans := []entities.Loan{
			sampleLoan("l1", "b1", "u1", true),
			sampleLoan("l2", "b2", "u1", false),
		}
		for _, l := range loans {
			_, err := s.Save(l)
			require.NoError(t, err)
		}

		all, err := f.Reopen(t, s).FindAll()
		require.NoError(t, err)
		require.Len(t, all, 2)
		got := make(map[string]entities.Loan)
		for _, l := range all {
			got[l.ID] = l
		}
		for _, want := range loans {
			AssertSameLoan(t, want, got[want.ID])
		}
	})
}

func loanIDs(loans []entities.Loan) []string {
	ids := make([]string, 0, len(loans))
	for _, l := range loans {
		ids = append(ids, l.ID)
	}
	return ids
}
