package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
	"gitlab.com/dirk.krummacker/people-service/internal/store/storetest"
)

var columns = []string{"id", "first_name", "last_name", "date_of_birth", "email", "salary"}

// createMockObjects builds a mock database handle and a mock object for defining our expected SQL
// calls.
func createMockObjects(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	return db, mock
}

// expectPreparedStatements instructs the mock object to expect that several statements are being
// prepared.
func expectPreparedStatements(mock sqlmock.Sqlmock) {
	mock.ExpectPrepare("INSERT INTO people \\(first_name")
	mock.ExpectPrepare("INSERT INTO people \\(id, first_name")
	mock.ExpectPrepare("SELECT (.+) FROM people ORDER BY id")
	mock.ExpectPrepare("SELECT (.+) FROM people WHERE id = \\?")
	mock.ExpectPrepare("SELECT COUNT\\(\\*\\) FROM people")
}

// newStore sets up the store with the mock database.
func newStore(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock) *Store {
	expectPreparedStatements(mock)
	s, err := New(db, MySQL)
	require.NoError(t, err)
	return s
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func birthday(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestFindAll(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	rows := mock.NewRows(columns).
		AddRow(1, "Aaron", "Alpha", birthday(1970, time.January, 1), "aaron@x.com", "1000.00").
		AddRow(2, "Berta", "Beta", birthday(1980, time.January, 1), "berta@x.com", "2000.50").
		AddRow(3, "Carla", "Gamma", birthday(1990, time.January, 1), "carla@x.com", "3000.00")
	mock.ExpectQuery("SELECT (.+) FROM people ORDER BY id").WillReturnRows(rows)

	people, err := s.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, people, 3)

	expected := storetest.Person("Berta", "Beta", birthday(1980, time.January, 1), "berta@x.com", "2000.50")
	expected.Id = 2
	storetest.AssertSamePerson(t, expected, people[1])
	expectationsMet(t, mock)
}

func TestFindAllEmpty(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	mock.ExpectQuery("SELECT (.+) FROM people ORDER BY id").WillReturnRows(mock.NewRows(columns))

	people, err := s.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, people)
	assert.Empty(t, people)
	expectationsMet(t, mock)
}

func TestFindById(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	rows := mock.NewRows(columns).
		AddRow(29, "Erika", "Mustermann", birthday(1969, time.March, 2), "erika@x.de", "4711.00")
	mock.ExpectQuery("SELECT (.+) FROM people WHERE id = \\?").
		WithArgs(int64(29)).
		WillReturnRows(rows)

	p, err := s.FindById(context.Background(), 29)
	require.NoError(t, err)
	expected := storetest.Person("Erika", "Mustermann", birthday(1969, time.March, 2), "erika@x.de", "4711")
	expected.Id = 29
	storetest.AssertSamePerson(t, expected, p)
	expectationsMet(t, mock)
}

// TestFindByIdNotFound expects ErrNotFound when the select returns no rows.
func TestFindByIdNotFound(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	mock.ExpectQuery("SELECT (.+) FROM people WHERE id = \\?").
		WithArgs(int64(99999)).
		WillReturnRows(mock.NewRows(columns))

	_, err := s.FindById(context.Background(), 99999)
	assert.ErrorIs(t, err, store.ErrNotFound)
	expectationsMet(t, mock)
}

// TestFindByIdFailure expects database errors to be passed on, not turned into ErrNotFound.
func TestFindByIdFailure(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	broken := errors.New("connection reset")
	mock.ExpectQuery("SELECT (.+) FROM people WHERE id = \\?").
		WithArgs(int64(1)).
		WillReturnError(broken)

	_, err := s.FindById(context.Background(), 1)
	assert.ErrorIs(t, err, broken)
	assert.False(t, errors.Is(err, store.ErrNotFound))
	expectationsMet(t, mock)
}

func TestSaveInserts(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	mock.ExpectExec("INSERT INTO people \\(first_name").
		WithArgs("John", "Doe", birthday(1980, time.January, 1), "john@x.com", "1000").
		WillReturnResult(sqlmock.NewResult(42, 1))

	saved, err := s.Save(context.Background(), storetest.Person("John", "Doe", birthday(1980, time.January, 1), "john@x.com", "1000"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.Id)
	expectationsMet(t, mock)
}

func TestSaveUpserts(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	mock.ExpectExec("INSERT INTO people \\(id, first_name(.+)ON DUPLICATE KEY UPDATE").
		WithArgs(int64(17), "Rudi", "Völler", birthday(1960, time.April, 13), "rudi@x.de", "5000").
		WillReturnResult(sqlmock.NewResult(17, 2))

	p := storetest.Person("Rudi", "Völler", birthday(1960, time.April, 13), "rudi@x.de", "5000")
	p.Id = 17
	saved, err := s.Save(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int64(17), saved.Id)
	expectationsMet(t, mock)
}

func TestSaveAll(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO people \\(first_name").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO people \\(id, first_name").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	existing := storetest.Person("Jane", "Doe", birthday(1985, time.January, 1), "jane@x.com", "2000")
	existing.Id = 5
	saved, err := s.SaveAll(context.Background(), []model.Person{
		storetest.Person("John", "Doe", birthday(1980, time.January, 1), "john@x.com", "1000"),
		existing,
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, int64(1), saved[0].Id)
	assert.Equal(t, int64(5), saved[1].Id)
	expectationsMet(t, mock)
}

// TestSaveAllRollback expects the transaction to be rolled back when one insert fails.
func TestSaveAllRollback(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO people \\(first_name").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO people \\(first_name").WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	_, err := s.SaveAll(context.Background(), store.SamplePeople()[:2])
	assert.Error(t, err)
	expectationsMet(t, mock)
}

func TestDeleteAllById(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	mock.ExpectExec("DELETE FROM people WHERE id IN \\(\\?, \\?\\)").
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(-1, 2))

	require.NoError(t, s.DeleteAllById(context.Background(), []int64{1, 2}))
	expectationsMet(t, mock)
}

// TestDeleteNothing expects that we do not reach out to the database for an empty selection.
func TestDeleteNothing(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	require.NoError(t, s.DeleteAllById(context.Background(), nil))
	require.NoError(t, s.DeleteAllById(context.Background(), []int64{}))
	expectationsMet(t, mock)
}

func TestCount(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newStore(t, db, mock)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM people").
		WillReturnRows(mock.NewRows([]string{"COUNT(*)"}).AddRow(7))

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	expectationsMet(t, mock)
}

func TestMigrate(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS people").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), sqlx.NewDb(db, "mysql"), MySQL))
	expectationsMet(t, mock)
}
