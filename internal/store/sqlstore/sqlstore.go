// Package sqlstore keeps people in a MySQL or SQLite table through sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
)

var _ store.Store = (*Store)(nil)

// Dialect holds the statements that differ between database systems.
type Dialect struct {
	// Driver is the database/sql driver name, which also selects the sqlx bind type.
	Driver string
	Schema string
	Upsert string
}

// MySQL is the dialect for go-sql-driver/mysql. The DSN must contain parseTime=true.
var MySQL = Dialect{
	Driver: "mysql",
	Schema: `CREATE TABLE IF NOT EXISTS people (
		id            BIGINT        NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name    VARCHAR(255)  NOT NULL,
		last_name     VARCHAR(255)  NOT NULL,
		date_of_birth DATE          NOT NULL,
		email         VARCHAR(255)  NOT NULL,
		salary        DECIMAL(12,2) NOT NULL
	)`,
	Upsert: "INSERT INTO people (id, first_name, last_name, date_of_birth, email, salary) " +
		"VALUES (:id, :first_name, :last_name, :date_of_birth, :email, :salary) " +
		"ON DUPLICATE KEY UPDATE first_name = VALUES(first_name), last_name = VALUES(last_name), " +
		"date_of_birth = VALUES(date_of_birth), email = VALUES(email), salary = VALUES(salary)",
}

// SQLite is the dialect for mattn/go-sqlite3. Salaries are stored as text to keep them exact.
var SQLite = Dialect{
	Driver: "sqlite3",
	Schema: `CREATE TABLE IF NOT EXISTS people (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		date_of_birth DATE NOT NULL,
		email         TEXT NOT NULL,
		salary        TEXT NOT NULL
	)`,
	Upsert: "INSERT INTO people (id, first_name, last_name, date_of_birth, email, salary) " +
		"VALUES (:id, :first_name, :last_name, :date_of_birth, :email, :salary) " +
		"ON CONFLICT(id) DO UPDATE SET first_name = excluded.first_name, last_name = excluded.last_name, " +
		"date_of_birth = excluded.date_of_birth, email = excluded.email, salary = excluded.salary",
}

const (
	insertQuery = "INSERT INTO people (first_name, last_name, date_of_birth, email, salary) " +
		"VALUES (:first_name, :last_name, :date_of_birth, :email, :salary)"
	selectAllQuery      = "SELECT id, first_name, last_name, date_of_birth, email, salary FROM people ORDER BY id"
	selectWhereIdQuery  = "SELECT id, first_name, last_name, date_of_birth, email, salary FROM people WHERE id = ?"
	countQuery          = "SELECT COUNT(*) FROM people"
	deleteWhereIdsQuery = "DELETE FROM people WHERE id IN (?)"
)

// Store implements store.Store on top of a sqlx database handle.
type Store struct {
	db      *sqlx.DB
	dialect Dialect

	// Prepared statements offer a significant speed increase if executed many times.
	insert        *sqlx.NamedStmt
	upsert        *sqlx.NamedStmt
	selectAll     *sqlx.Stmt
	selectWhereId *sqlx.Stmt
	count         *sqlx.Stmt
}

// Migrate creates the people table if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB, dialect Dialect) error {
	if _, err := db.ExecContext(ctx, dialect.Schema); err != nil {
		return fmt.Errorf("create people table: %w", err)
	}
	return nil
}

// New wraps the sql database and prepares all statements. The database argument can be a real
// database for production use or a mock database within unit tests. The people table must exist.
func New(sqlDB *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: sqlx.NewDb(sqlDB, dialect.Driver), dialect: dialect}
	var err error
	if s.insert, err = s.db.PrepareNamed(insertQuery); err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	if s.upsert, err = s.db.PrepareNamed(dialect.Upsert); err != nil {
		return nil, fmt.Errorf("prepare upsert: %w", err)
	}
	if s.selectAll, err = s.db.Preparex(selectAllQuery); err != nil {
		return nil, fmt.Errorf("prepare select all: %w", err)
	}
	if s.selectWhereId, err = s.db.Preparex(selectWhereIdQuery); err != nil {
		return nil, fmt.Errorf("prepare select by id: %w", err)
	}
	if s.count, err = s.db.Preparex(countQuery); err != nil {
		return nil, fmt.Errorf("prepare count: %w", err)
	}
	return s, nil
}

func (s *Store) FindAll(ctx context.Context) ([]model.Person, error) {
	people := []model.Person{}
	if err := s.selectAll.SelectContext(ctx, &people); err != nil {
		return nil, fmt.Errorf("select people: %w", err)
	}
	return people, nil
}

func (s *Store) FindById(ctx context.Context, id int64) (model.Person, error) {
	var p model.Person
	err := s.selectWhereId.GetContext(ctx, &p, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Person{}, fmt.Errorf("find person %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return model.Person{}, fmt.Errorf("find person %d: %w", id, err)
	}
	return p, nil
}

func (s *Store) Save(ctx context.Context, p model.Person) (model.Person, error) {
	return save(ctx, s.insert.ExecContext, s.upsert.ExecContext, p)
}

// SaveAll runs the batch in one transaction, so either all people are saved or none.
func (s *Store) SaveAll(ctx context.Context, people []model.Person) (saved []model.Person, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	insert := func(ctx context.Context, arg interface{}) (sql.Result, error) {
		return tx.NamedExecContext(ctx, insertQuery, arg)
	}
	upsert := func(ctx context.Context, arg interface{}) (sql.Result, error) {
		return tx.NamedExecContext(ctx, s.dialect.Upsert, arg)
	}
	saved = make([]model.Person, 0, len(people))
	for _, p := range people {
		p, err = save(ctx, insert, upsert, p)
		if err != nil {
			return nil, err
		}
		saved = append(saved, p)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return saved, nil
}

type execFunc func(ctx context.Context, arg interface{}) (sql.Result, error)

func save(ctx context.Context, insert execFunc, upsert execFunc, p model.Person) (model.Person, error) {
	if p.Id != 0 {
		if _, err := upsert(ctx, &p); err != nil {
			return model.Person{}, fmt.Errorf("update person %d: %w", p.Id, err)
		}
		return p, nil
	}
	result, err := insert(ctx, &p)
	if err != nil {
		return model.Person{}, fmt.Errorf("insert person: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Person{}, fmt.Errorf("insert person: %w", err)
	}
	p.Id = id
	return p, nil
}

func (s *Store) DeleteAllById(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(deleteWhereIdsQuery, ids)
	if err != nil {
		return fmt.Errorf("delete people: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete people: %w", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.count.GetContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	return count, nil
}

// Close releases the prepared statements and the database.
func (s *Store) Close() error {
	for _, stmt := range []interface{ Close() error }{s.insert, s.upsert, s.selectAll, s.selectWhereId, s.count} {
		_ = stmt.Close()
	}
	return s.db.Close()
}
