package handler

import (
	"errors"
	"net/http"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/store"
	"gamevault/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginInput defines the structure for user login. Login also accepts HTTP
// Basic auth in place of a JSON body.
type LoginInput struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// endregion

// UserHandler serves registration and the token lifecycle.
type UserHandler struct {
	users  store.UserStore
	tokens store.TokenStore
}

func NewUserHandler(users store.UserStore, tokens store.TokenStore) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a non-admin user. Registration issues no token; the
// @Description  user logs in separately.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body  RegisterInput  true  "Registration Info"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "Username taken"
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
		Admin:        false,
	}

	_, err = h.users.Insert(c.Request.Context(), &user)
	if errors.Is(err, store.ErrDuplicateUsername) {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates by username and password, via JSON body or HTTP
// @Description  Basic auth, and returns a token valid for 30 minutes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body  LoginInput  false  "Login Info"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse  "Bad credentials"
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		username, password = input.Username, input.Password
	}

	user, err := h.users.FindByUsername(c.Request.Context(), username)
	if errors.Is(err, store.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := jwt.GenerateToken(user.ID.Hex(), user.Username, user.Admin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the presented token by inserting it into the
// @Description  blacklist. Revocation is permanent for the token's lifetime.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse  "Token already blacklisted"
// @Failure      401  {object}  ErrorResponse
// @Router       /logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	ident, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	entry := models.BlacklistedToken{
		Token:     ident.Token,
		UserID:    ident.UserID,
		ExpiresAt: ident.TokenExpires,
	}

	err := h.tokens.Blacklist(c.Request.Context(), &entry)
	if errors.Is(err, store.ErrAlreadyBlacklisted) {
		// The auth middleware rejects blacklisted tokens before the handler
		// runs; this is only reachable when two logouts race.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token already blacklisted"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
