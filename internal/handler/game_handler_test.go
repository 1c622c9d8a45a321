package handler

import (
	"fmt"
	"net/http"
	"testing"

	"gamevault/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.tokenFor(t, env.seedUser(t, "admin", true))

	t.Run("round trip", func(t *testing.T) {
		input := validGameInput("Breath of the Wild")
		w := env.do(t, http.MethodPost, "/api/v1.0/games", input, adminToken)
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		gameID, ok := body["game_id"].(string)
		require.True(t, ok)
		assert.Contains(t, body["url"], gameID)

		w = env.do(t, http.MethodGet, "/api/v1.0/games/"+gameID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		got := decodeBody(t, w)
		assert.Equal(t, "Breath of the Wild", got["title"])
		assert.Equal(t, "Nintendo EPD", got["developer"])
		assert.Equal(t, float64(2017), got["release_year"])
		assert.Empty(t, got["reviews"])
		assert.Empty(t, got["awards"])
	})

	t.Run("missing required field", func(t *testing.T) {
		input := validGameInput("Hollow Knight")
		delete(input, "developer")
		w := env.do(t, http.MethodPost, "/api/v1.0/games", input, adminToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields", decodeBody(t, w)["error"])
	})

	t.Run("duplicate title", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1.0/games", validGameInput("Celeste"), adminToken)
		require.Equal(t, http.StatusCreated, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1.0/games", validGameInput("Celeste"), adminToken)
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("malformed developer_hq", func(t *testing.T) {
		input := validGameInput("Outer Wilds")
		input["developer_hq"] = map[string]interface{}{
			"type":        "Point",
			"coordinates": []float64{-122.3, 47.6, 12.0},
		}
		w := env.do(t, http.MethodPost, "/api/v1.0/games", input, adminToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires admin", func(t *testing.T) {
		userToken := env.tokenFor(t, env.seedUser(t, "mortal", false))
		w := env.do(t, http.MethodPost, "/api/v1.0/games", validGameInput("Hades"), userToken)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Admin privileges required", decodeBody(t, w)["error"])
	})

	t.Run("requires token", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1.0/games", validGameInput("Hades"), "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token missing", decodeBody(t, w)["error"])
	})
}

func TestGetGames(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 25; i++ {
		env.games.seed(models.Game{Title: fmt.Sprintf("Game %02d", i)})
	}

	t.Run("window length and full coverage", func(t *testing.T) {
		seen := map[string]bool{}
		for pn := 1; pn <= 3; pn++ {
			w := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1.0/games?pn=%d&ps=10", pn), nil, "")
			require.Equal(t, http.StatusOK, w.Code)
			page := decodeList(t, w)
			assert.LessOrEqual(t, len(page), 10)
			for _, game := range page {
				seen[game["title"].(string)] = true
			}
		}
		assert.Len(t, seen, 25)
	})

	t.Run("defaults", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1.0/games", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeList(t, w), 10)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		for _, query := range []string{"pn=0", "ps=0", "pn=-1", "pn=abc", "ps=1.5"} {
			w := env.do(t, http.MethodGet, "/api/v1.0/games?"+query, nil, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, query)
		}
	})
}

func TestGetGameByID(t *testing.T) {
	env := newTestEnv(t)

	t.Run("malformed id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1.0/games/not-an-id", nil, "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Invalid Game ID format", decodeBody(t, w)["error"])
	})

	t.Run("well-formed but absent", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1.0/games/"+primitive.NewObjectID().Hex(), nil, "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Invalid Game ID", decodeBody(t, w)["error"])
	})
}

func TestUpdateGame(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.tokenFor(t, env.seedUser(t, "admin", true))
	gameID := env.games.seed(models.Game{Title: "Celeste", Developer: "EXOK", ReleaseYear: 2018})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1.0/games/"+gameID.Hex(),
			map[string]interface{}{"release_year": 2019}, adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1.0/games/"+gameID.Hex(), nil, "")
		got := decodeBody(t, w)
		assert.Equal(t, float64(2019), got["release_year"])
		assert.Equal(t, "Celeste", got["title"])
		assert.Equal(t, "EXOK", got["developer"])
	})

	t.Run("unknown fields ignored, no recognized field rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1.0/games/"+gameID.Hex(),
			map[string]interface{}{"bogus": "value"}, adminToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No valid fields provided", decodeBody(t, w)["error"])
	})

	t.Run("malformed id", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1.0/games/xyz",
			map[string]interface{}{"title": "New"}, adminToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("absent game", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1.0/games/"+primitive.NewObjectID().Hex(),
			map[string]interface{}{"title": "New"}, adminToken)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed developer_hq", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1.0/games/"+gameID.Hex(),
			map[string]interface{}{"developer_hq": map[string]interface{}{"type": "Polygon", "coordinates": []float64{1, 2}}},
			adminToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteGame(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.tokenFor(t, env.seedUser(t, "admin", true))
	gameID := env.games.seed(models.Game{Title: "Doomed"})

	w := env.do(t, http.MethodDelete, "/api/v1.0/games/"+gameID.Hex(), nil, adminToken)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Second delete finds nothing; exactly-once, not idempotent success.
	w = env.do(t, http.MethodDelete, "/api/v1.0/games/"+gameID.Hex(), nil, adminToken)
	require.Equal(t, http.StatusNotFound, w.Code)
}
