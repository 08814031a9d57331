package models

import "time"

// Feedback is one persisted, immutable feedback submission.
type Feedback struct {
	// ID is assigned by the store (ObjectID hex on MongoDB, UUID on PostgreSQL)
	ID        string    `bson:"-" json:"id"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`

	Category    string `bson:"category" json:"category" validate:"required,category"`
	Rating      int    `bson:"rating" json:"rating" validate:"min=1,max=5"`
	Feedback    string `bson:"feedback" json:"feedback" validate:"required"`
	Improvement string `bson:"improvement,omitempty" json:"improvement,omitempty"`

	// Email is a delivery address only; submissions are not tied to an identity
	Email string `bson:"email" json:"email" validate:"required"`
}
