package handler

import (
	"math"
	"net/http"
	"strconv"

	"gamevault/backend/internal/store"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// LeaderboardEntryResponse is one row of the award leaderboard. Ties share an
// award count in whatever order the storage engine yields them.
type LeaderboardEntryResponse struct {
	GameID     string `json:"game_id"`
	Title      string `json:"title"`
	AwardCount int    `json:"award_count"`
}

// NearbyGameResponse is one result of the closest-developer-HQ query.
type NearbyGameResponse struct {
	GameID     string  `json:"game_id"`
	Title      string  `json:"title"`
	Developer  string  `json:"developer"`
	DistanceKM float64 `json:"distance_km"`
}

func newNearbyGameResponse(g store.NearbyGame) NearbyGameResponse {
	return NearbyGameResponse{
		GameID:     g.ID.Hex(),
		Title:      g.Title,
		Developer:  g.Developer,
		DistanceKM: roundKM(g.Distance),
	}
}

// roundKM converts meters to kilometers rounded to 2 decimal places.
func roundKM(meters float64) float64 {
	return math.Round(meters/10) / 100
}

// endregion

const (
	defaultRadiusMeters = 10000.0
	defaultNearbyLimit  = 5
)

// AwardLeaderboard godoc
// @Summary      Award leaderboard
// @Description  Ranks games by number of award records, most-awarded first.
// @Tags         games
// @Produce      json
// @Param        pn  query  int  false  "Page number"  default(1)
// @Param        ps  query  int  false  "Page size"    default(10)
// @Success      200  {array}   LeaderboardEntryResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /games/award-leaderboard [get]
func (h *GameHandler) AwardLeaderboard(c *gin.Context) {
	pageNum, pageSize, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.games.AwardLeaderboard(c.Request.Context(), pageNum, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute leaderboard"})
		return
	}

	response := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, LeaderboardEntryResponse{
			GameID:     e.ID.Hex(),
			Title:      e.Title,
			AwardCount: e.AwardCount,
		})
	}

	c.JSON(http.StatusOK, response)
}

// ClosestGames godoc
// @Summary      Closest developer HQs
// @Description  Finds games whose developer HQ lies within the given radius of
// @Description  a point, closest first. If none are in range, falls back to
// @Description  the single globally closest game.
// @Tags         games
// @Produce      json
// @Param        lng     query  number  true   "Longitude"
// @Param        lat     query  number  true   "Latitude"
// @Param        radius  query  number  false  "Radius in meters"  default(10000)
// @Param        limit   query  int     false  "Maximum results"   default(5)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse  "No game has a developer HQ"
// @Router       /games/closest [get]
func (h *GameHandler) ClosestGames(c *gin.Context) {
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid longitude"})
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid latitude"})
		return
	}

	radius := defaultRadiusMeters
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius"})
			return
		}
	}

	limit := defaultNearbyLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
	}

	results, err := h.games.Nearby(c.Request.Context(), lng, lat, radius, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run geospatial query"})
		return
	}

	if len(results) > 0 {
		response := make([]NearbyGameResponse, 0, len(results))
		for _, g := range results {
			response = append(response, newNearbyGameResponse(g))
		}
		c.JSON(http.StatusOK, gin.H{"games": response})
		return
	}

	// Nothing in range: fall back to the single closest HQ anywhere.
	fallback, err := h.games.Nearby(c.Request.Context(), lng, lat, 0, 1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run geospatial query"})
		return
	}
	if len(fallback) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No games with developer HQ locations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "No games within radius, returning closest game",
		"games":   []NearbyGameResponse{newNearbyGameResponse(fallback[0])},
	})
}
