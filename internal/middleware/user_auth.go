package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodify/internal/apperr"
	"foodify/internal/auth"
	"foodify/internal/models"
)

type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// UserAuth requires a user session and stores the resolved *models.User in
// the context. A session whose user no longer exists is rejected with 401.
func UserAuth(tokens TokenVerifier, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := authenticate(c, tokens, auth.RoleUser)
		if !ok {
			return
		}

		user, ok := resolve(c, id, users.FindByID, apperr.KindAuthRequired, "Please login first")
		if !ok {
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by UserAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
