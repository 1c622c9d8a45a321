package handler

import (
	"errors"
	"fmt"
	"net/http"

	"gamevault/backend/internal/models"
	"gamevault/backend/internal/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// region --- DTOs ---

// GameResponse is the wire form of a game document. All identifiers are
// string-encoded; the storage engine's native id format never leaves the
// service.
type GameResponse struct {
	ID          string           `json:"_id"`
	Title       string           `json:"title"`
	Platforms   []string         `json:"platforms"`
	ReleaseYear int              `json:"release_year"`
	Developer   string           `json:"developer"`
	Publisher   string           `json:"publisher"`
	ESRB        string           `json:"esrb"`
	Genres      []string         `json:"genres"`
	Modes       []string         `json:"modes"`
	Rating      *float64         `json:"rating,omitempty"`
	DeveloperHQ *models.GeoPoint `json:"developer_hq,omitempty"`
	Awards      []models.Award   `json:"awards"`
	Reviews     []ReviewResponse `json:"reviews"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

func newGameResponse(game models.Game) GameResponse {
	reviews := make([]ReviewResponse, 0, len(game.Reviews))
	for _, r := range game.Reviews {
		reviews = append(reviews, newReviewResponse(r))
	}

	awards := game.Awards
	if awards == nil {
		awards = []models.Award{}
	}

	return GameResponse{
		ID:          game.ID.Hex(),
		Title:       game.Title,
		Platforms:   game.Platforms,
		ReleaseYear: game.ReleaseYear,
		Developer:   game.Developer,
		Publisher:   game.Publisher,
		ESRB:        game.ESRB,
		Genres:      game.Genres,
		Modes:       game.Modes,
		Rating:      game.Rating,
		DeveloperHQ: game.DeveloperHQ,
		Awards:      awards,
		Reviews:     reviews,
	}
}

// endregion

// GameHandler serves the game catalog routes.
type GameHandler struct {
	games store.GameStore
}

func NewGameHandler(games store.GameStore) *GameHandler {
	return &GameHandler{games: games}
}

func gameURL(c *gin.Context, id string) string {
	return fmt.Sprintf("http://%s/api/v1.0/games/%s", c.Request.Host, id)
}

// GetGames godoc
// @Summary      List games
// @Description  Retrieves a paginated list of games in natural storage order.
// @Tags         games
// @Produce      json
// @Param        pn  query  int  false  "Page number"  default(1)
// @Param        ps  query  int  false  "Page size"    default(10)
// @Success      200  {array}   GameResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /games [get]
func (h *GameHandler) GetGames(c *gin.Context) {
	pageNum, pageSize, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	games, err := h.games.List(c.Request.Context(), pageNum, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	response := make([]GameResponse, 0, len(games))
	for _, game := range games {
		response = append(response, newGameResponse(game))
	}

	c.JSON(http.StatusOK, response)
}

// GetGameByID godoc
// @Summary      Get a single game
// @Description  Retrieves one game document including its embedded reviews.
// @Tags         games
// @Produce      json
// @Param        id  path  string  true  "Game ID"
// @Success      200  {object}  GameResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /games/{id} [get]
func (h *GameHandler) GetGameByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Game ID format"})
		return
	}

	game, err := h.games.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Game ID"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve game"})
		return
	}

	c.JSON(http.StatusOK, newGameResponse(*game))
}

// CreateGame godoc
// @Summary      Create a new game
// @Description  Creates a new game document with an empty review list.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body  GameInput  true  "Game Info"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse  "Admin privileges required"
// @Failure      409  {object}  ErrorResponse  "Duplicate title"
// @Router       /games [post]
func (h *GameHandler) CreateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := buildGame(&input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := h.games.TitleExists(c.Request.Context(), game.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check title"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "A game already exists with that title"})
		return
	}

	id, err := h.games.Insert(c.Request.Context(), game)
	if errors.Is(err, store.ErrDuplicateTitle) {
		// The unique index catches the race the pre-check cannot.
		c.JSON(http.StatusConflict, gin.H{"error": "A game already exists with that title"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"game_id": id.Hex(),
		"url":     gameURL(c, id.Hex()),
	})
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Applies a partial update over the whitelisted game fields.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string     true  "Game ID"
// @Param        input  body  GameInput  true  "Fields to update"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse  "Admin privileges required"
// @Failure      404  {object}  ErrorResponse  "Game not found"
// @Failure      409  {object}  ErrorResponse  "Duplicate title"
// @Router       /games/{id} [put]
func (h *GameHandler) UpdateGame(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Game ID format"})
		return
	}

	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields, err := buildGameUpdate(&input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.games.Update(c.Request.Context(), id, fields)
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Game ID"})
	case errors.Is(err, store.ErrDuplicateTitle):
		c.JSON(http.StatusConflict, gin.H{"error": "A game already exists with that title"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update game"})
	default:
		c.JSON(http.StatusOK, gin.H{"url": gameURL(c, c.Param("id"))})
	}
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Deletes a game document and its embedded reviews with it.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Game ID"
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse  "Admin privileges required"
// @Failure      404  {object}  ErrorResponse  "Game not found"
// @Router       /games/{id} [delete]
func (h *GameHandler) DeleteGame(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Game ID format"})
		return
	}

	err = h.games.Delete(c.Request.Context(), id)
	if errors.Is(err, store.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Game ID"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete game"})
		return
	}

	c.Status(http.StatusNoContent)
}
