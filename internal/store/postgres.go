package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AnshRaj112/feedback-backend/internal/models"
)

const (
	pqCheckViolation   = "23514"
	pqNotNullViolation = "23502"
)

const insertFeedbackSQL = `
		INSERT INTO feedbacks (id, created_at, category, rating, feedback, improvement, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

const selectFeedbackSQL = `
		SELECT id, created_at, category, rating, feedback, improvement, email
		FROM feedbacks
		WHERE id = $1
	`

// PostgresStore keeps feedback in the feedbacks table.
type PostgresStore struct {
	db        *sql.DB
	validator *Validator
	now       func() time.Time
}

func NewPostgresStore(db *sql.DB, v *Validator) *PostgresStore {
	return &PostgresStore{db: db, validator: v, now: time.Now}
}

func (s *PostgresStore) Insert(ctx context.Context, rec models.Feedback) (models.Feedback, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
	}
	if err := s.validator.Validate(rec); err != nil {
		return models.Feedback{}, err
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, insertFeedbackSQL,
		id, rec.CreatedAt, rec.Category, rec.Rating, rec.Feedback, nullString(rec.Improvement), rec.Email)
	if err != nil {
		if verr := constraintError(err); verr != nil {
			return models.Feedback{}, verr
		}
		return models.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}

	rec.ID = id
	return rec, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (models.Feedback, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Feedback{}, ErrNotFound
	}

	var rec models.Feedback
	var improvement sql.NullString
	err := s.db.QueryRowContext(ctx, selectFeedbackSQL, id).Scan(
		&rec.ID, &rec.CreatedAt, &rec.Category, &rec.Rating, &rec.Feedback, &improvement, &rec.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Feedback{}, ErrNotFound
		}
		return models.Feedback{}, fmt.Errorf("find feedback %s: %w", id, err)
	}
	rec.Improvement = improvement.String
	return rec, nil
}

// constraintError maps table constraint violations onto the schema error.
func constraintError(err error) *ValidationError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case pqCheckViolation:
		// feedbacks_rating_check -> rating
		field := strings.TrimSuffix(strings.TrimPrefix(pqErr.Constraint, "feedbacks_"), "_check")
		return NewFieldError(field, fmt.Sprintf("%s violates constraint %s", field, pqErr.Constraint))
	case pqNotNullViolation:
		return NewFieldError(pqErr.Column, fmt.Sprintf("%s is required", pqErr.Column))
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
