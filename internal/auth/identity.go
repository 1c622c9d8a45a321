package auth

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const identityKey = "identity"

// Identity is the caller identity derived from a validated token. It is
// produced once by the auth middleware and handed to handlers explicitly;
// nothing below the middleware re-reads ambient token state.
type Identity struct {
	UserID   primitive.ObjectID
	Username string
	Admin    bool

	// Token is the raw bearer token the identity was derived from, kept so
	// logout can blacklist it until TokenExpires.
	Token        string
	TokenExpires time.Time
}

// IdentityFromContext returns the identity stored by AuthMiddleware.
func IdentityFromContext(c *gin.Context) (*Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	ident, ok := v.(*Identity)
	return ident, ok
}
