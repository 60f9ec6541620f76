// Package store defines the persistence contract for people. The backends live in the
// subpackages; driver.Open picks one according to the configuration.
package store

import (
	"context"
	"errors"

	"gitlab.com/dirk.krummacker/people-service/internal/model"
)

// ErrNotFound is returned when no person has the requested id. Backends wrap it, so compare
// with errors.Is.
var ErrNotFound = errors.New("person not found")

// Store is a collection of people keyed by a generated id.
type Store interface {
	// FindAll returns every saved person ordered by id.
	FindAll(ctx context.Context) ([]model.Person, error)

	// FindById returns the person with the given id or ErrNotFound.
	FindById(ctx context.Context, id int64) (model.Person, error)

	// Save inserts a person without id and assigns a new one. A person with an id replaces
	// the stored record of that id, or is inserted under that id if there is none.
	Save(ctx context.Context, p model.Person) (model.Person, error)

	// SaveAll saves each person in turn and returns them with their ids.
	SaveAll(ctx context.Context, people []model.Person) ([]model.Person, error)

	// DeleteAllById removes the people with the given ids. Unknown ids are ignored.
	DeleteAllById(ctx context.Context, ids []int64) error

	// Count returns the number of saved people.
	Count(ctx context.Context) (int64, error)
}
