package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// GeoPoint is a GeoJSON point: Coordinates is [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// IsValid reports whether the point is a well-formed GeoJSON point with
// exactly two coordinates.
func (p *GeoPoint) IsValid() bool {
	return p != nil && p.Type == "Point" && len(p.Coordinates) == 2
}

// Game represents a game document. Reviews are embedded in the document, so
// every review mutation is a single atomic update on the parent game.
type Game struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Title       string             `bson:"title" json:"title"`
	Platforms   []string           `bson:"platforms" json:"platforms"`
	ReleaseYear int                `bson:"release_year" json:"release_year"`
	Developer   string             `bson:"developer" json:"developer"`
	Publisher   string             `bson:"publisher" json:"publisher"`
	ESRB        string             `bson:"esrb" json:"esrb"`
	Genres      []string           `bson:"genres" json:"genres"`
	Modes       []string           `bson:"modes" json:"modes"`
	Rating      *float64           `bson:"rating,omitempty" json:"rating,omitempty"`
	DeveloperHQ *GeoPoint          `bson:"developer_hq,omitempty" json:"developer_hq,omitempty"`
	Awards      []Award            `bson:"awards" json:"awards"`
	Reviews     []Review           `bson:"reviews" json:"reviews"`
}

// Award is an opaque award record; the leaderboard only counts them.
type Award struct {
	Name string `bson:"name,omitempty" json:"name,omitempty"`
	Year int    `bson:"year,omitempty" json:"year,omitempty"`
}

// Review is a sub-document embedded in a game's reviews array. Username is a
// snapshot taken at creation time and is never resynchronized.
type Review struct {
	ID       primitive.ObjectID `bson:"_id" json:"-"`
	UserID   primitive.ObjectID `bson:"user_id" json:"-"`
	Username string             `bson:"username" json:"username"`
	Comment  string             `bson:"comment" json:"comment"`
	Rating   int                `bson:"rating" json:"rating"`
}
