// Package memory keeps people in a map. It is the default store and the one used by the handler
// tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	people map[int64]model.Person
	lastId int64
}

// New returns an empty store.
func New() *Store {
	return &Store{people: make(map[int64]model.Person)}
}

func (s *Store) FindAll(_ context.Context) ([]model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	people := make([]model.Person, 0, len(s.people))
	for _, p := range s.people {
		people = append(people, clone(p))
	}
	sort.Slice(people, func(i, j int) bool { return people[i].Id < people[j].Id })
	return people, nil
}

func (s *Store) FindById(_ context.Context, id int64) (model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, found := s.people[id]
	if !found {
		return model.Person{}, fmt.Errorf("find person %d: %w", id, store.ErrNotFound)
	}
	return clone(p), nil
}

func (s *Store) Save(_ context.Context, p model.Person) (model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p), nil
}

func (s *Store) SaveAll(_ context.Context, people []model.Person) ([]model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := make([]model.Person, 0, len(people))
	for _, p := range people {
		saved = append(saved, s.save(p))
	}
	return saved, nil
}

// save must be called with the write lock held.
func (s *Store) save(p model.Person) model.Person {
	if p.Id == 0 {
		s.lastId++
		p.Id = s.lastId
	} else if p.Id > s.lastId {
		s.lastId = p.Id
	}
	s.people[p.Id] = clone(p)
	return clone(p)
}

func (s *Store) DeleteAllById(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.people, id)
	}
	return nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.people)), nil
}

// clone copies the pointer fields so that callers cannot change stored records.
func clone(p model.Person) model.Person {
	if p.DateOfBirth != nil {
		d := *p.DateOfBirth
		p.DateOfBirth = &d
	}
	if p.Salary != nil {
		s := *p.Salary
		p.Salary = &s
	}
	return p
}
