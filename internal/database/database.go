package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultMongoDatabase is used when the URI does not name a database.
const DefaultMongoDatabase = "feedback"

// Mongo owns a connected client and the database handle taken from its URI.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials MongoDB and pings it. The caller owns the returned handle and
// must Close it.
func Connect(ctx context.Context, mongoURI string, log *zap.Logger) (*Mongo, error) {
	// Use longer timeout for Atlas connections
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	log.Info("connecting to MongoDB", zap.String("uri", MaskURI(mongoURI)))
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	dbName := DatabaseName(mongoURI)
	log.Info("connected to MongoDB", zap.String("database", dbName))
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// DatabaseName extracts the database from mongodb://host/name?opts, falling
// back to DefaultMongoDatabase.
func DatabaseName(mongoURI string) string {
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			return dbPart
		}
	}
	return DefaultMongoDatabase
}

// MaskURI hides the password of a user:pass@host URI for logging.
func MaskURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at == -1 {
		return uri
	}
	scheme := strings.Index(uri, "://")
	start := 0
	if scheme != -1 {
		start = scheme + 3
	}
	colon := strings.Index(uri[start:at], ":")
	if colon == -1 {
		return uri
	}
	return uri[:start+colon+1] + "***" + uri[at:]
}
