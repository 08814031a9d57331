// Package store persists feedback records and enforces the feedback schema at
// write time. Records are insert-only.
package store

import (
	"context"

	"github.com/AnshRaj112/feedback-backend/internal/models"
)

// FeedbackStore is implemented by every storage backend.
type FeedbackStore interface {
	// Insert validates rec, stamps CreatedAt when it is zero, assigns an id
	// and writes the record. A *ValidationError means nothing was written.
	Insert(ctx context.Context, rec models.Feedback) (models.Feedback, error)
	FindByID(ctx context.Context, id string) (models.Feedback, error)
}
