package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, NewValidator(nil)), mock
}

var insertPattern = regexp.QuoteMeta("INSERT INTO feedbacks (id, created_at, category, rating, feedback, improvement, email)")

func TestPostgresStore_Insert(t *testing.T) {
	s, mock := newPostgresStore(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	s.now = func() time.Time { return fixed }

	in := validRecord()
	in.CreatedAt = time.Time{}

	mock.ExpectExec(insertPattern).
		WithArgs(sqlmock.AnyArg(), fixed.Truncate(time.Microsecond), "general", 4, "Great course",
			sql.NullString{}, "a@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := s.Insert(context.Background(), in)
	require.NoError(t, err)

	_, err = uuid.Parse(got.ID)
	assert.NoError(t, err)
	assert.Equal(t, fixed.Truncate(time.Microsecond), got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertRejectsInvalidRecord(t *testing.T) {
	s, mock := newPostgresStore(t)

	in := validRecord()
	in.Rating = 0

	_, err := s.Insert(context.Background(), in)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("rating"))

	// Nothing reached the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertConstraintViolations(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"check", &pq.Error{Code: "23514", Constraint: "feedbacks_rating_check"}, "rating"},
		{"not null", &pq.Error{Code: "23502", Column: "email"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newPostgresStore(t)
			mock.ExpectExec(insertPattern).WillReturnError(tt.err)

			_, err := s.Insert(context.Background(), validRecord())
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.True(t, verr.HasField(tt.field))
		})
	}
}

func TestPostgresStore_InsertConnectionError(t *testing.T) {
	s, mock := newPostgresStore(t)
	mock.ExpectExec(insertPattern).WillReturnError(sql.ErrConnDone)

	_, err := s.Insert(context.Background(), validRecord())
	assert.ErrorIs(t, err, sql.ErrConnDone)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestPostgresStore_FindByID(t *testing.T) {
	s, mock := newPostgresStore(t)
	id := uuid.New().String()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "created_at", "category", "rating", "feedback", "improvement", "email"}).
		AddRow(id, created, "parent", 3, "Okay", "Shorter queues", "p@x.com")
	mock.ExpectQuery(regexp.QuoteMeta("FROM feedbacks")).WithArgs(id).WillReturnRows(rows)

	got, err := s.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "parent", got.Category)
	assert.Equal(t, 3, got.Rating)
	assert.Equal(t, "Shorter queues", got.Improvement)
	assert.Equal(t, created, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByIDNotFound(t *testing.T) {
	s, mock := newPostgresStore(t)
	id := uuid.New().String()
	mock.ExpectQuery(regexp.QuoteMeta("FROM feedbacks")).WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := s.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByID(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNotFound)
}
