package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"go.uber.org/zap"
)

// SamplePeople returns the initial test data. The records have no ids yet.
func SamplePeople() []model.Person {
	person := func(first, last string, year int, email string, salary int64) model.Person {
		birthday := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		amount := decimal.NewFromInt(salary)
		return model.Person{
			FirstName:   first,
			LastName:    last,
			DateOfBirth: &birthday,
			Email:       email,
			Salary:      &amount,
		}
	}
	return []model.Person{
		person("John", "Doe", 1980, "fake@email.com", 1000),
		person("Jane", "Doe", 1985, "email.@example.com", 2000),
		person("Jim", "Jackson", 1990, "dummy@email.com", 3000),
		person("Jill", "Jackson", 1995, "another@dummy.mail", 4000),
		person("Jack", "Smith", 2000, "no@idea.now", 5000),
		person("Jenny", "Doe", 2005, "will@this.end", 6000),
		person("Jerry", "Jackson", 2010, "should@use.copypaste", 7000),
	}
}

// Populate enters the sample people into the store. If the store already holds people then
// nothing is added.
func Populate(ctx context.Context, s Store, logger *zap.Logger) error {
	count, err := s.Count(ctx)
	if err != nil {
		return fmt.Errorf("count people: %w", err)
	}
	if count > 0 {
		logger.Debug("store not empty, skipping sample data", zap.Int64("count", count))
		return nil
	}
	saved, err := s.SaveAll(ctx, SamplePeople())
	if err != nil {
		return fmt.Errorf("save sample people: %w", err)
	}
	logger.Info("entered sample people", zap.Int("count", len(saved)))
	return nil
}
