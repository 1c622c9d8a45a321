package store

import (
	"context"
	"errors"
	"time"

	"gamevault/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTokenStore implements TokenStore on a MongoDB blacklist collection.
// The unique index on the token makes a concurrent double-revoke lose cleanly
// with a duplicate-key error instead of a second entry.
type MongoTokenStore struct {
	coll *mongo.Collection
}

func NewTokenStore(db *mongo.Database) *MongoTokenStore {
	return &MongoTokenStore{coll: db.Collection("blacklist")}
}

func (s *MongoTokenStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	err := s.coll.FindOne(ctx, bson.M{"token": token}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MongoTokenStore) Blacklist(ctx context.Context, entry *models.BlacklistedToken) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.coll.InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyBlacklisted
	}
	return err
}
