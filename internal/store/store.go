package store

import (
	"context"
	"errors"

	"gamevault/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors returned by the storage gateway. Handlers map these onto
// HTTP statuses; anything else is a server error.
var (
	ErrGameNotFound       = errors.New("game not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotOwner           = errors.New("caller does not own the review")
	ErrDuplicateTitle     = errors.New("a game already exists with that title")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrAlreadyBlacklisted = errors.New("token already blacklisted")
)

// LeaderboardEntry is one row of the award leaderboard aggregation.
type LeaderboardEntry struct {
	ID         primitive.ObjectID `bson:"_id"`
	Title      string             `bson:"title"`
	AwardCount int                `bson:"award_count"`
}

// NearbyGame is one result of the developer-HQ geospatial query. Distance is
// in meters, as reported by the storage engine.
type NearbyGame struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Developer   string             `bson:"developer"`
	DeveloperHQ models.GeoPoint    `bson:"developer_hq"`
	Distance    float64            `bson:"distance"`
}

// GameStore is the storage gateway for game documents and their embedded
// reviews. Every review mutation is a single atomic document update; the
// update filter carries the existence and ownership predicates, so a
// zero-match write is the authoritative "not found / not yours" signal.
type GameStore interface {
	List(ctx context.Context, pageNum, pageSize int) ([]models.Game, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Game, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	Insert(ctx context.Context, game *models.Game) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	Reviews(ctx context.Context, gameID primitive.ObjectID) ([]models.Review, error)
	AddReview(ctx context.Context, gameID primitive.ObjectID, review *models.Review) error
	// UpdateReview applies the given fields to the matching embedded review.
	// A nil owner skips the ownership predicate (admin caller).
	UpdateReview(ctx context.Context, gameID, reviewID primitive.ObjectID, owner *primitive.ObjectID, fields bson.M) error
	RemoveReview(ctx context.Context, gameID, reviewID primitive.ObjectID, owner *primitive.ObjectID) error

	AwardLeaderboard(ctx context.Context, pageNum, pageSize int) ([]LeaderboardEntry, error)
	// Nearby returns games whose developer_hq lies within radiusMeters of the
	// given point, closest first. A non-positive radius means unbounded.
	Nearby(ctx context.Context, lng, lat, radiusMeters float64, limit int) ([]NearbyGame, error)
}

// UserStore is the storage gateway for user records.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenStore is the storage gateway for the revoked-token blacklist.
type TokenStore interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	Blacklist(ctx context.Context, entry *models.BlacklistedToken) error
}
