package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodify/internal/apperr"
	"foodify/internal/auth"
	"foodify/internal/models"
)

type FoodPartnerFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.FoodPartner, error)
}

// FoodPartnerAuth requires a food partner session and stores the resolved
// *models.FoodPartner in the context.
func FoodPartnerAuth(tokens TokenVerifier, partners FoodPartnerFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := authenticate(c, tokens, auth.RoleFoodPartner)
		if !ok {
			return
		}

		partner, ok := resolve(c, id, partners.FindByID, apperr.KindForbidden, roleDeniedMessage[auth.RoleFoodPartner])
		if !ok {
			return
		}

		c.Set(ContextFoodPartner, partner)
		c.Next()
	}
}

func CurrentFoodPartner(c *gin.Context) (*models.FoodPartner, bool) {
	value, ok := c.Get(ContextFoodPartner)
	if !ok {
		return nil, false
	}
	partner, ok := value.(*models.FoodPartner)
	return partner, ok && partner != nil
}
