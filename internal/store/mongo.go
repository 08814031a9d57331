package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/feedback-backend/internal/models"
)

// FeedbackCollection holds one document per submission.
const FeedbackCollection = "feedbacks"

const (
	codeNamespaceExists          = 48
	codeDocumentValidationFailed = 121
)

type mongoFeedback struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	models.Feedback `bson:",inline"`
}

// MongoStore keeps feedback in the feedbacks collection.
type MongoStore struct {
	col       *mongo.Collection
	validator *Validator
	now       func() time.Time
}

// NewMongoStore returns a store over db's feedbacks collection.
func NewMongoStore(db *mongo.Database, v *Validator) *MongoStore {
	return &MongoStore{
		col:       db.Collection(FeedbackCollection),
		validator: v,
		now:       time.Now,
	}
}

func (s *MongoStore) Insert(ctx context.Context, rec models.Feedback) (models.Feedback, error) {
	if rec.CreatedAt.IsZero() {
		// BSON dates carry millisecond precision
		rec.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	}
	if err := s.validator.Validate(rec); err != nil {
		return models.Feedback{}, err
	}

	doc := mongoFeedback{ID: primitive.NewObjectID(), Feedback: rec}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		var se mongo.ServerError
		if errors.As(err, &se) && se.HasErrorCode(codeDocumentValidationFailed) {
			return models.Feedback{}, NewFieldError("document", "Document failed schema validation")
		}
		return models.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}

	rec.ID = doc.ID.Hex()
	return rec, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (models.Feedback, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Feedback{}, ErrNotFound
	}

	var doc mongoFeedback
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Feedback{}, ErrNotFound
		}
		return models.Feedback{}, fmt.Errorf("find feedback %s: %w", id, err)
	}

	rec := doc.Feedback
	rec.ID = doc.ID.Hex()
	return rec, nil
}

// feedbackSchema mirrors the validator tags on models.Feedback so writes that
// bypass this package are held to the same constraints.
func feedbackSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"category", "rating", "feedback", "email", "createdAt"},
			"properties": bson.M{
				"category":    bson.M{"bsonType": "string", "minLength": 1},
				"rating":      bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 5},
				"feedback":    bson.M{"bsonType": "string", "minLength": 1},
				"improvement": bson.M{"bsonType": "string"},
				"email":       bson.M{"bsonType": "string", "minLength": 1},
				"createdAt":   bson.M{"bsonType": "date"},
			},
		},
	}
}

// EnsureFeedbackCollection creates the feedbacks collection with its schema
// validator, or applies the validator to an existing collection, and ensures
// the createdAt index. Called on startup after Mongo has connected.
func EnsureFeedbackCollection(ctx context.Context, db *mongo.Database) error {
	schema := feedbackSchema()

	err := db.CreateCollection(ctx, FeedbackCollection, options.CreateCollection().SetValidator(schema))
	if err != nil {
		var ce mongo.CommandError
		if !errors.As(err, &ce) || ce.Code != codeNamespaceExists {
			return fmt.Errorf("create %s collection: %w", FeedbackCollection, err)
		}
		cmd := bson.D{
			{Key: "collMod", Value: FeedbackCollection},
			{Key: "validator", Value: schema},
		}
		if err := db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("apply %s schema: %w", FeedbackCollection, err)
		}
	}

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_created_at"),
	}
	if _, err := db.Collection(FeedbackCollection).Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("create %s index: %w", FeedbackCollection, err)
	}
	return nil
}
