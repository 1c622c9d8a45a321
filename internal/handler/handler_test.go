package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"testing"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/config"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/store"
	"gamevault/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}
	os.Exit(m.Run())
}

// region --- fake stores ---

type fakeGameStore struct {
	mu    sync.Mutex
	games map[primitive.ObjectID]*models.Game
	order []primitive.ObjectID
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{games: map[primitive.ObjectID]*models.Game{}}
}

func (f *fakeGameStore) seed(game models.Game) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if game.ID.IsZero() {
		game.ID = primitive.NewObjectID()
	}
	f.games[game.ID] = &game
	f.order = append(f.order, game.ID)
	return game.ID
}

func (f *fakeGameStore) List(_ context.Context, pageNum, pageSize int) ([]models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Game{}
	start := pageSize * (pageNum - 1)
	for i := start; i < len(f.order) && len(out) < pageSize; i++ {
		out = append(out, *f.games[f.order[i]])
	}
	return out, nil
}

func (f *fakeGameStore) Get(_ context.Context, id primitive.ObjectID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return nil, store.ErrGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (f *fakeGameStore) TitleExists(_ context.Context, title string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGameStore) Insert(_ context.Context, game *models.Game) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.Title == game.Title {
			return primitive.NilObjectID, store.ErrDuplicateTitle
		}
	}
	game.ID = primitive.NewObjectID()
	copied := *game
	f.games[game.ID] = &copied
	f.order = append(f.order, game.ID)
	return game.ID, nil
}

func (f *fakeGameStore) Update(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[id]
	if !ok {
		return store.ErrGameNotFound
	}
	for name, value := range fields {
		switch name {
		case "title":
			title := value.(string)
			for gid, g := range f.games {
				if gid != id && g.Title == title {
					return store.ErrDuplicateTitle
				}
			}
			game.Title = title
		case "platforms":
			game.Platforms = value.([]string)
		case "release_year":
			game.ReleaseYear = value.(int)
		case "developer":
			game.Developer = value.(string)
		case "publisher":
			game.Publisher = value.(string)
		case "esrb":
			game.ESRB = value.(string)
		case "genres":
			game.Genres = value.([]string)
		case "modes":
			game.Modes = value.([]string)
		case "rating":
			rating := value.(float64)
			game.Rating = &rating
		case "developer_hq":
			game.DeveloperHQ = value.(*models.GeoPoint)
		case "awards":
			game.Awards = value.([]models.Award)
		}
	}
	return nil
}

func (f *fakeGameStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[id]; !ok {
		return store.ErrGameNotFound
	}
	delete(f.games, id)
	for i, gid := range f.order {
		if gid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeGameStore) Reviews(_ context.Context, gameID primitive.ObjectID) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return nil, store.ErrGameNotFound
	}
	return append([]models.Review{}, game.Reviews...), nil
}

func (f *fakeGameStore) AddReview(_ context.Context, gameID primitive.ObjectID, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return store.ErrGameNotFound
	}
	game.Reviews = append(game.Reviews, *review)
	return nil
}

func (f *fakeGameStore) UpdateReview(_ context.Context, gameID, reviewID primitive.ObjectID, owner *primitive.ObjectID, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return store.ErrGameNotFound
	}
	for i := range game.Reviews {
		if game.Reviews[i].ID != reviewID {
			continue
		}
		if owner != nil && game.Reviews[i].UserID != *owner {
			return store.ErrNotOwner
		}
		if comment, ok := fields["comment"]; ok {
			game.Reviews[i].Comment = comment.(string)
		}
		if rating, ok := fields["rating"]; ok {
			game.Reviews[i].Rating = rating.(int)
		}
		return nil
	}
	return store.ErrReviewNotFound
}

func (f *fakeGameStore) RemoveReview(_ context.Context, gameID, reviewID primitive.ObjectID, owner *primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return store.ErrGameNotFound
	}
	for i := range game.Reviews {
		if game.Reviews[i].ID != reviewID {
			continue
		}
		if owner != nil && game.Reviews[i].UserID != *owner {
			return store.ErrNotOwner
		}
		game.Reviews = append(game.Reviews[:i], game.Reviews[i+1:]...)
		return nil
	}
	return store.ErrReviewNotFound
}

func (f *fakeGameStore) AwardLeaderboard(_ context.Context, pageNum, pageSize int) ([]store.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := []store.LeaderboardEntry{}
	for _, id := range f.order {
		game := f.games[id]
		entries = append(entries, store.LeaderboardEntry{
			ID:         game.ID,
			Title:      game.Title,
			AwardCount: len(game.Awards),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AwardCount > entries[j].AwardCount
	})
	start := pageSize * (pageNum - 1)
	if start >= len(entries) {
		return []store.LeaderboardEntry{}, nil
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], nil
}

func (f *fakeGameStore) Nearby(_ context.Context, lng, lat, radiusMeters float64, limit int) ([]store.NearbyGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	results := []store.NearbyGame{}
	for _, id := range f.order {
		game := f.games[id]
		if game.DeveloperHQ == nil {
			continue
		}
		d := haversineMeters(lng, lat, game.DeveloperHQ.Coordinates[0], game.DeveloperHQ.Coordinates[1])
		if radiusMeters > 0 && d > radiusMeters {
			continue
		}
		results = append(results, store.NearbyGame{
			ID:          game.ID,
			Title:       game.Title,
			Developer:   game.Developer,
			DeveloperHQ: *game.DeveloperHQ,
			Distance:    d,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func haversineMeters(lng1, lat1, lng2, lat2 float64) float64 {
	const earthRadius = 6378137.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) Insert(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.Username]; exists {
		return primitive.NilObjectID, store.ErrDuplicateUsername
	}
	user.ID = primitive.NewObjectID()
	copied := *user
	f.users[user.Username] = &copied
	return user.ID, nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

type fakeTokenStore struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{revoked: map[string]bool{}}
}

func (f *fakeTokenStore) IsBlacklisted(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[token], nil
}

func (f *fakeTokenStore) Blacklist(_ context.Context, entry *models.BlacklistedToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked[entry.Token] {
		return store.ErrAlreadyBlacklisted
	}
	f.revoked[entry.Token] = true
	return nil
}

// endregion

// region --- test harness ---

type testEnv struct {
	games  *fakeGameStore
	users  *fakeUserStore
	tokens *fakeTokenStore
	router *gin.Engine
}

// newTestEnv wires the same route table as cmd/server against fake stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		games:  newFakeGameStore(),
		users:  newFakeUserStore(),
		tokens: newFakeTokenStore(),
	}

	userHandler := NewUserHandler(env.users, env.tokens)
	gameHandler := NewGameHandler(env.games)
	reviewHandler := NewReviewHandler(env.games)

	router := gin.New()
	apiV1 := router.Group("/api/v1.0")
	{
		apiV1.POST("/register", userHandler.Register)
		apiV1.POST("/login", userHandler.Login)
		apiV1.POST("/logout", auth.AuthMiddleware(env.tokens), userHandler.Logout)

		gameRoutes := apiV1.Group("/games")
		{
			gameRoutes.GET("", gameHandler.GetGames)
			gameRoutes.GET("/award-leaderboard", gameHandler.AwardLeaderboard)
			gameRoutes.GET("/closest", gameHandler.ClosestGames)
			gameRoutes.GET("/:id", gameHandler.GetGameByID)
			gameRoutes.GET("/:id/reviews", reviewHandler.GetReviews)
			gameRoutes.GET("/:id/reviews/:reviewID", reviewHandler.GetReviewByID)

			authed := gameRoutes.Group("")
			authed.Use(auth.AuthMiddleware(env.tokens))
			{
				authed.POST("/:id/reviews", reviewHandler.AddReview)
				authed.PUT("/:id/reviews/:reviewID", reviewHandler.UpdateReview)
				authed.DELETE("/:id/reviews/:reviewID", reviewHandler.DeleteReview)
			}

			admin := gameRoutes.Group("")
			admin.Use(auth.AuthMiddleware(env.tokens), auth.AdminMiddleware())
			{
				admin.POST("", gameHandler.CreateGame)
				admin.PUT("/:id", gameHandler.UpdateGame)
				admin.DELETE("/:id", gameHandler.DeleteGame)
			}
		}
	}
	env.router = router

	return env
}

// seedUser registers a user directly in the fake store and returns it.
func (e *testEnv) seedUser(t *testing.T, username string, admin bool) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x", Admin: admin}
	id, err := e.users.Insert(context.Background(), &user)
	require.NoError(t, err)
	user.ID = id
	return user
}

// tokenFor issues a real signed token for a seeded user.
func (e *testEnv) tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := jwt.GenerateToken(user.ID.Hex(), user.Username, user.Admin)
	require.NoError(t, err)
	return token
}

// do performs a request against the test router. A nil body sends no payload;
// an empty token omits the Authorization header.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// validGameInput returns a payload carrying every required field.
func validGameInput(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":        title,
		"platforms":    []string{"PC", "Switch"},
		"release_year": 2017,
		"developer":    "Nintendo EPD",
		"publisher":    "Nintendo",
		"esrb":         "E10+",
		"genres":       []string{"Action", "Adventure"},
		"modes":        []string{"Single-player"},
	}
}

// endregion
