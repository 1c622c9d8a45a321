package store

import (
	"context"
	"errors"
	"fmt"

	"gamevault/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGameStore implements GameStore on a MongoDB games collection.
type MongoGameStore struct {
	coll *mongo.Collection
}

func NewGameStore(db *mongo.Database) *MongoGameStore {
	return &MongoGameStore{coll: db.Collection("games")}
}

func (s *MongoGameStore) List(ctx context.Context, pageNum, pageSize int) ([]models.Game, error) {
	skip := int64(pageSize) * int64(pageNum-1)
	opts := options.Find().SetSkip(skip).SetLimit(int64(pageSize))

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	games := []models.Game{}
	if err := cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (s *MongoGameStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Game, error) {
	var game models.Game
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&game)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *MongoGameStore) TitleExists(ctx context.Context, title string) (bool, error) {
	err := s.coll.FindOne(ctx, bson.M{"title": title}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MongoGameStore) Insert(ctx context.Context, game *models.Game) (primitive.ObjectID, error) {
	res, err := s.coll.InsertOne(ctx, game)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, ErrDuplicateTitle
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (s *MongoGameStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateTitle
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (s *MongoGameStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (s *MongoGameStore) Reviews(ctx context.Context, gameID primitive.ObjectID) ([]models.Review, error) {
	var game models.Game
	opts := options.FindOne().SetProjection(bson.M{"reviews": 1})
	err := s.coll.FindOne(ctx, bson.M{"_id": gameID}, opts).Decode(&game)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return game.Reviews, nil
}

func (s *MongoGameStore) AddReview(ctx context.Context, gameID primitive.ObjectID, review *models.Review) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": gameID},
		bson.M{"$push": bson.M{"reviews": review}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

// reviewFilter builds the atomic match filter for a review mutation: the
// parent game, the review id, and (for non-admin callers) the owner id all
// have to match in the same round-trip.
func reviewFilter(gameID, reviewID primitive.ObjectID, owner *primitive.ObjectID) bson.M {
	elem := bson.M{"_id": reviewID}
	if owner != nil {
		elem["user_id"] = *owner
	}
	return bson.M{"_id": gameID, "reviews": bson.M{"$elemMatch": elem}}
}

func (s *MongoGameStore) UpdateReview(ctx context.Context, gameID, reviewID primitive.ObjectID, owner *primitive.ObjectID, fields bson.M) error {
	set := bson.M{}
	for k, v := range fields {
		set["reviews.$."+k] = v
	}

	res, err := s.coll.UpdateOne(ctx, reviewFilter(gameID, reviewID, owner), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyReviewMiss(ctx, gameID, reviewID, owner)
	}
	return nil
}

func (s *MongoGameStore) RemoveReview(ctx context.Context, gameID, reviewID primitive.ObjectID, owner *primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		reviewFilter(gameID, reviewID, owner),
		bson.M{"$pull": bson.M{"reviews": bson.M{"_id": reviewID}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyReviewMiss(ctx, gameID, reviewID, owner)
	}
	if res.ModifiedCount != 1 {
		// Matched the document but did not remove exactly one element: the
		// review vanished between the match and the pull.
		return fmt.Errorf("review removal modified %d documents, expected 1", res.ModifiedCount)
	}
	return nil
}

// classifyReviewMiss decides why an atomic review mutation matched nothing.
// The write filter remains the source of truth; this read only picks the
// error to report.
func (s *MongoGameStore) classifyReviewMiss(ctx context.Context, gameID, reviewID primitive.ObjectID, owner *primitive.ObjectID) error {
	reviews, err := s.Reviews(ctx, gameID)
	if err != nil {
		return err
	}
	for _, r := range reviews {
		if r.ID == reviewID {
			if owner != nil && r.UserID != *owner {
				return ErrNotOwner
			}
			return fmt.Errorf("review %s matched on read but not on write", reviewID.Hex())
		}
	}
	return ErrReviewNotFound
}

func (s *MongoGameStore) AwardLeaderboard(ctx context.Context, pageNum, pageSize int) ([]LeaderboardEntry, error) {
	skip := int64(pageSize) * int64(pageNum-1)
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$project", Value: bson.M{
			"title":       1,
			"award_count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$awards", bson.A{}}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "award_count", Value: -1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: int64(pageSize)}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []LeaderboardEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *MongoGameStore) Nearby(ctx context.Context, lng, lat, radiusMeters float64, limit int) ([]NearbyGame, error) {
	geoNear := bson.M{
		"near":          bson.M{"type": "Point", "coordinates": []float64{lng, lat}},
		"distanceField": "distance",
		"key":           "developer_hq",
		"spherical":     true,
	}
	if radiusMeters > 0 {
		geoNear["maxDistance"] = radiusMeters
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$geoNear", Value: geoNear}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []NearbyGame{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
