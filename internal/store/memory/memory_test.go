package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
	"gitlab.com/dirk.krummacker/people-service/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

// TestReturnedPeopleAreCopies changes a returned person and expects the stored one to stay.
func TestReturnedPeopleAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	saved, err := s.Save(ctx, storetest.Person("John", "Doe", time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), "john@x.com", "1000"))
	require.NoError(t, err)

	*saved.DateOfBirth = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	found, err := s.FindById(ctx, saved.Id)
	require.NoError(t, err)
	assert.Equal(t, 1980, found.DateOfBirth.Year())
}

// TestIdsAfterExplicitId expects generated ids to continue after an explicitly chosen one.
func TestIdsAfterExplicitId(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := storetest.Person("John", "Doe", time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), "john@x.com", "1000")
	p.Id = 10
	_, err := s.Save(ctx, p)
	require.NoError(t, err)

	p.Id = 0
	saved, err := s.Save(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(11), saved.Id)
}

func TestConcurrentSaves(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := storetest.Person("John", "Doe", time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), "john@x.com", "1000")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Save(ctx, p)
		}()
	}
	wg.Wait()
	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)
}
