package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// region --- DTOs ---

// ReviewInput is the payload for adding or editing a review. Rating rides as
// json.Number so a non-integer value fails validation instead of being
// silently truncated.
type ReviewInput struct {
	Comment *string      `json:"comment"`
	Rating  *json.Number `json:"rating"`
}

// ReviewResponse is the wire form of an embedded review.
type ReviewResponse struct {
	ID       string `json:"_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Comment  string `json:"comment"`
	Rating   int    `json:"rating"`
}

func newReviewResponse(review models.Review) ReviewResponse {
	return ReviewResponse{
		ID:       review.ID.Hex(),
		UserID:   review.UserID.Hex(),
		Username: review.Username,
		Comment:  review.Comment,
		Rating:   review.Rating,
	}
}

// endregion

// ReviewHandler serves the review routes nested under a game.
type ReviewHandler struct {
	games store.GameStore
}

func NewReviewHandler(games store.GameStore) *ReviewHandler {
	return &ReviewHandler{games: games}
}

// parseRating validates that a supplied rating is an integer in [1,10].
func parseRating(raw json.Number) (int, error) {
	rating, err := raw.Int64()
	if err != nil {
		return 0, errors.New("Rating must be a valid number")
	}
	if rating < 1 || rating > 10 {
		return 0, errors.New("Rating must be between 1 and 10")
	}
	return int(rating), nil
}

func reviewURL(c *gin.Context, gameID, reviewID string) string {
	return fmt.Sprintf("http://%s/api/v1.0/games/%s/reviews/%s", c.Request.Host, gameID, reviewID)
}

// mutationOwner returns the ownership predicate for a review mutation: nil
// for admins, the caller's own id otherwise.
func mutationOwner(ident *auth.Identity) *primitive.ObjectID {
	if ident.Admin {
		return nil
	}
	return &ident.UserID
}

// GetReviews godoc
// @Summary      List reviews for a game
// @Description  Retrieves the reviews embedded in a game, paginated in memory.
// @Tags         reviews
// @Produce      json
// @Param        id  path   string  true   "Game ID"
// @Param        pn  query  int     false  "Page number"  default(1)
// @Param        ps  query  int     false  "Page size"    default(10)
// @Success      200  {array}   ReviewResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse  "Game absent or no reviews"
// @Router       /games/{id}/reviews [get]
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	gameID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Game ID format"})
		return
	}

	pageNum, pageSize, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviews, err := h.games.Reviews(c.Request.Context(), gameID)
	if errors.Is(err, store.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Game ID"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reviews"})
		return
	}

	// "No reviews at all" is distinct from "this page is empty".
	if len(reviews) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No reviews found"})
		return
	}

	page := paginate(reviews, pageNum, pageSize)
	response := make([]ReviewResponse, 0, len(page))
	for _, review := range page {
		response = append(response, newReviewResponse(review))
	}

	c.JSON(http.StatusOK, response)
}

// GetReviewByID godoc
// @Summary      Get a single review
// @Description  Retrieves one review from a game's embedded review list.
// @Tags         reviews
// @Produce      json
// @Param        g_id  path  string  true  "Game ID"
// @Param        r_id  path  string  true  "Review ID"
// @Success      200  {object}  ReviewResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /games/{g_id}/reviews/{r_id} [get]
func (h *ReviewHandler) GetReviewByID(c *gin.Context) {
	gameID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Game ID format"})
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Review ID format"})
		return
	}

	reviews, err := h.games.Reviews(c.Request.Context(), gameID)
	if errors.Is(err, store.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Game ID"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve review"})
		return
	}

	for _, review := range reviews {
		if review.ID == reviewID {
			c.JSON(http.StatusOK, newReviewResponse(review))
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Review ID"})
}

// AddReview godoc
// @Summary      Add a review to a game
// @Description  Appends a new review, snapshotting the caller's username.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string       true  "Game ID"
// @Param        input  body  ReviewInput  true  "Review"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse  "Game not found"
// @Router       /games/{id}/reviews [post]
func (h *ReviewHandler) AddReview(c *gin.Context) {
	gameID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Game ID format"})
		return
	}

	ident, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Comment == nil || input.Rating == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing form data"})
		return
	}

	rating, err := parseRating(*input.Rating)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review := models.Review{
		ID:       primitive.NewObjectID(),
		UserID:   ident.UserID,
		Username: ident.Username,
		Comment:  *input.Comment,
		Rating:   rating,
	}

	err = h.games.AddReview(c.Request.Context(), gameID, &review)
	if errors.Is(err, store.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Game ID"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add review"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": reviewURL(c, c.Param("id"), review.ID.Hex())})
}

// UpdateReview godoc
// @Summary      Edit a review
// @Description  Updates comment and/or rating of a review. Only the review's
// @Description  owner or an admin may edit it.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        g_id   path  string       true  "Game ID"
// @Param        r_id   path  string       true  "Review ID"
// @Param        input  body  ReviewInput  true  "Fields to update"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse  "Not the review owner"
// @Failure      404  {object}  ErrorResponse
// @Router       /games/{g_id}/reviews/{r_id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	gameID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Game ID format"})
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Review ID format"})
		return
	}

	ident, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Comment == nil && input.Rating == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields provided"})
		return
	}

	fields := bson.M{}
	if input.Comment != nil {
		fields["comment"] = *input.Comment
	}
	if input.Rating != nil {
		rating, err := parseRating(*input.Rating)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fields["rating"] = rating
	}

	err = h.games.UpdateReview(c.Request.Context(), gameID, reviewID, mutationOwner(ident), fields)
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Game ID"})
	case errors.Is(err, store.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Review ID"})
	case errors.Is(err, store.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own reviews"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Review update failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"url": reviewURL(c, c.Param("id"), c.Param("reviewID"))})
	}
}

// DeleteReview godoc
// @Summary      Delete a review
// @Description  Removes a review from a game's embedded review list. Only the
// @Description  review's owner or an admin may delete it.
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        g_id  path  string  true  "Game ID"
// @Param        r_id  path  string  true  "Review ID"
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse  "Not the review owner"
// @Failure      404  {object}  ErrorResponse
// @Router       /games/{g_id}/reviews/{r_id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	gameID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Game ID format"})
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Review ID format"})
		return
	}

	ident, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	err = h.games.RemoveReview(c.Request.Context(), gameID, reviewID, mutationOwner(ident))
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Game ID"})
	case errors.Is(err, store.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Review ID"})
	case errors.Is(err, store.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own reviews"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Review deletion failed"})
	default:
		c.Status(http.StatusNoContent)
	}
}
