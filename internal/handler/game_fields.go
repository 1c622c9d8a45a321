package handler

import (
	"errors"

	"gamevault/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	errMissingFields = errors.New("Missing required fields")
	errNoFields      = errors.New("No valid fields provided")
	errBadGeoPoint   = errors.New("developer_hq must be a GeoJSON Point with exactly two coordinates")
)

// GameInput is the payload for creating or partially updating a game. Fields
// not listed here do not exist as far as the API is concerned; unknown JSON
// keys are dropped by construction.
type GameInput struct {
	Title       *string          `json:"title"`
	Platforms   []string         `json:"platforms"`
	ReleaseYear *int             `json:"release_year"`
	Developer   *string          `json:"developer"`
	Publisher   *string          `json:"publisher"`
	ESRB        *string          `json:"esrb"`
	Genres      []string         `json:"genres"`
	Modes       []string         `json:"modes"`
	Rating      *float64         `json:"rating"`
	DeveloperHQ *models.GeoPoint `json:"developer_hq"`
	Awards      []models.Award   `json:"awards"`
}

// gameField describes one mutable field of a game document: its storage name,
// whether create requires it, and how to extract a validated value from the
// input. extract returns false when the field was not supplied.
type gameField struct {
	name     string
	required bool
	extract  func(in *GameInput) (interface{}, bool, error)
}

var gameFields = []gameField{
	{"title", true, func(in *GameInput) (interface{}, bool, error) {
		if in.Title == nil {
			return nil, false, nil
		}
		return *in.Title, true, nil
	}},
	{"platforms", true, func(in *GameInput) (interface{}, bool, error) {
		if in.Platforms == nil {
			return nil, false, nil
		}
		return in.Platforms, true, nil
	}},
	{"release_year", true, func(in *GameInput) (interface{}, bool, error) {
		if in.ReleaseYear == nil {
			return nil, false, nil
		}
		return *in.ReleaseYear, true, nil
	}},
	{"developer", true, func(in *GameInput) (interface{}, bool, error) {
		if in.Developer == nil {
			return nil, false, nil
		}
		return *in.Developer, true, nil
	}},
	{"publisher", true, func(in *GameInput) (interface{}, bool, error) {
		if in.Publisher == nil {
			return nil, false, nil
		}
		return *in.Publisher, true, nil
	}},
	{"esrb", true, func(in *GameInput) (interface{}, bool, error) {
		if in.ESRB == nil {
			return nil, false, nil
		}
		return *in.ESRB, true, nil
	}},
	{"genres", true, func(in *GameInput) (interface{}, bool, error) {
		if in.Genres == nil {
			return nil, false, nil
		}
		return in.Genres, true, nil
	}},
	{"modes", true, func(in *GameInput) (interface{}, bool, error) {
		if in.Modes == nil {
			return nil, false, nil
		}
		return in.Modes, true, nil
	}},
	{"rating", false, func(in *GameInput) (interface{}, bool, error) {
		if in.Rating == nil {
			return nil, false, nil
		}
		return *in.Rating, true, nil
	}},
	{"developer_hq", false, func(in *GameInput) (interface{}, bool, error) {
		if in.DeveloperHQ == nil {
			return nil, false, nil
		}
		if !in.DeveloperHQ.IsValid() {
			return nil, false, errBadGeoPoint
		}
		return in.DeveloperHQ, true, nil
	}},
	{"awards", false, func(in *GameInput) (interface{}, bool, error) {
		if in.Awards == nil {
			return nil, false, nil
		}
		return in.Awards, true, nil
	}},
}

// buildGame validates a create payload against the field table and assembles
// the new document. Awards and reviews always start as empty arrays unless
// awards were supplied.
func buildGame(in *GameInput) (*models.Game, error) {
	for _, f := range gameFields {
		_, supplied, err := f.extract(in)
		if err != nil {
			return nil, err
		}
		if f.required && !supplied {
			return nil, errMissingFields
		}
	}

	game := &models.Game{
		Title:       *in.Title,
		Platforms:   in.Platforms,
		ReleaseYear: *in.ReleaseYear,
		Developer:   *in.Developer,
		Publisher:   *in.Publisher,
		ESRB:        *in.ESRB,
		Genres:      in.Genres,
		Modes:       in.Modes,
		Rating:      in.Rating,
		DeveloperHQ: in.DeveloperHQ,
		Awards:      []models.Award{},
		Reviews:     []models.Review{},
	}
	if in.Awards != nil {
		game.Awards = in.Awards
	}
	return game, nil
}

// buildGameUpdate collects the supplied fields of a partial update into a
// storage update document. At least one recognized field must be present.
func buildGameUpdate(in *GameInput) (bson.M, error) {
	fields := bson.M{}
	for _, f := range gameFields {
		value, supplied, err := f.extract(in)
		if err != nil {
			return nil, err
		}
		if supplied {
			fields[f.name] = value
		}
	}
	if len(fields) == 0 {
		return nil, errNoFields
	}
	return fields, nil
}
