// Package storetest checks that a store.Store implementation behaves like a store. Backends call
// Run from their own tests with a function that returns an empty store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
)

// Person builds a valid person without id.
func Person(first, last string, birthday time.Time, email string, salary string) model.Person {
	amount := decimal.RequireFromString(salary)
	return model.Person{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: &birthday,
		Email:       email,
		Salary:      &amount,
	}
}

// AssertSamePerson compares two people field by field. Decimals and dates are compared by value
// since backends may return them with a different scale or location.
func AssertSamePerson(t *testing.T, expected model.Person, actual model.Person) {
	t.Helper()
	assert.Equal(t, expected.Id, actual.Id)
	assert.Equal(t, expected.FirstName, actual.FirstName)
	assert.Equal(t, expected.LastName, actual.LastName)
	assert.Equal(t, expected.Email, actual.Email)
	if assert.NotNil(t, actual.DateOfBirth) && expected.DateOfBirth != nil {
		assert.Equal(t, expected.DateOfBirth.Format(time.DateOnly), actual.DateOfBirth.Format(time.DateOnly))
	}
	if assert.NotNil(t, actual.Salary) && expected.Salary != nil {
		assert.True(t, expected.Salary.Equal(*actual.Salary), "salary %s != %s", expected.Salary, actual.Salary)
	}
}

// Run executes the store contract tests. newStore must return an empty store each time.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	birthday := time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("SaveAssignsId", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		saved, err := s.Save(ctx, Person("John", "Doe", birthday, "john@x.com", "1000"))
		require.NoError(t, err)
		assert.NotZero(t, saved.Id)

		found, err := s.FindById(ctx, saved.Id)
		require.NoError(t, err)
		AssertSamePerson(t, saved, found)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		AssertSamePerson(t, saved, all[0])
	})

	t.Run("SaveUpdatesInPlace", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		saved, err := s.Save(ctx, Person("John", "Doe", birthday, "john@x.com", "1000"))
		require.NoError(t, err)

		saved.LastName = "Smith"
		raised := decimal.RequireFromString("2500.50")
		saved.Salary = &raised
		updated, err := s.Save(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, saved.Id, updated.Id)

		found, err := s.FindById(ctx, saved.Id)
		require.NoError(t, err)
		AssertSamePerson(t, saved, found)
		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("SaveWithUnknownIdInserts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := Person("Jane", "Doe", birthday, "jane@x.com", "2000")
		p.Id = 4711
		saved, err := s.Save(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, int64(4711), saved.Id)

		found, err := s.FindById(ctx, 4711)
		require.NoError(t, err)
		AssertSamePerson(t, p, found)
	})

	t.Run("FindByIdNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindById(context.Background(), 99999)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("SaveAllAndDelete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		saved, err := s.SaveAll(ctx, store.SamplePeople())
		require.NoError(t, err)
		require.Len(t, saved, 7)

		err = s.DeleteAllById(ctx, []int64{saved[1].Id, saved[3].Id, 99999})
		require.NoError(t, err)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 5)
		for _, p := range all {
			assert.NotEqual(t, saved[1].Id, p.Id)
			assert.NotEqual(t, saved[3].Id, p.Id)
		}

		require.NoError(t, s.DeleteAllById(ctx, nil))
		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})

	t.Run("FindAllOrderedById", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.SaveAll(ctx, store.SamplePeople())
		require.NoError(t, err)
		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].Id, all[i].Id)
		}
	})
}
