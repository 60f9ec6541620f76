// Package gormstore keeps people in PostgreSQL through the gorm object relational mapper.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store with gorm.
type Store struct {
	db *gorm.DB
}

// Open connects to PostgreSQL. The simple protocol keeps the driver usable behind poolers.
func Open(dsn string) (*Store, error) {
	return New(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}))
}

// New wraps any gorm dialector. Tests hand in a postgres dialector backed by sqlmock.
func New(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates or updates the people table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&model.Person{}); err != nil {
		return fmt.Errorf("could not migrate: %w", err)
	}
	return nil
}

func (s *Store) FindAll(ctx context.Context) ([]model.Person, error) {
	people := []model.Person{}
	if err := s.db.WithContext(ctx).Order("id").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("select people: %w", err)
	}
	return people, nil
}

func (s *Store) FindById(ctx context.Context, id int64) (model.Person, error) {
	var p model.Person
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Person{}, fmt.Errorf("find person %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return model.Person{}, fmt.Errorf("find person %d: %w", id, err)
	}
	return p, nil
}

// syncSequence moves the id sequence past the highest stored id. Rows inserted with an explicit
// id do not advance the sequence by themselves.
const syncSequence = "SELECT setval(pg_get_serial_sequence('people', 'id'), GREATEST((SELECT MAX(id) FROM people), 1))"

// Save relies on gorm: a zero id creates, any other id updates and falls back to an insert when
// nothing was updated.
func (s *Store) Save(ctx context.Context, p model.Person) (model.Person, error) {
	if p.Id == 0 {
		if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
			return model.Person{}, fmt.Errorf("save person: %w", err)
		}
		return p, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		return tx.Exec(syncSequence).Error
	})
	if err != nil {
		return model.Person{}, fmt.Errorf("save person %d: %w", p.Id, err)
	}
	return p, nil
}

// SaveAll runs the batch in one transaction.
func (s *Store) SaveAll(ctx context.Context, people []model.Person) ([]model.Person, error) {
	saved := make([]model.Person, 0, len(people))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		explicitIds := false
		for _, p := range people {
			explicitIds = explicitIds || p.Id != 0
			if err := tx.Save(&p).Error; err != nil {
				return err
			}
			saved = append(saved, p)
		}
		if explicitIds {
			return tx.Exec(syncSequence).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save people: %w", err)
	}
	return saved, nil
}

func (s *Store) DeleteAllById(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&model.Person{}, ids).Error; err != nil {
		return fmt.Errorf("delete people: %w", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Person{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	return count, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
