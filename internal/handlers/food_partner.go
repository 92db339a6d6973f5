package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodify/internal/apperr"
	"foodify/internal/models"
	"foodify/internal/repository"
)

// GetFoodPartnerByID returns the public partner page with all its reels.
func GetFoodPartnerByID(partners FoodPartnerStore, foods FoodStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			fail(c, apperr.New(apperr.KindNotFound, "Food Partner not found"))
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		partner, err := partners.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			fail(c, apperr.New(apperr.KindNotFound, "Food Partner not found"))
			return
		}
		if err != nil {
			fail(c, apperr.Wrap(apperr.KindInternal, "Internal Server Error", err))
			return
		}

		items, err := foods.ListByPartner(ctx, partner.ID)
		if err != nil {
			fail(c, apperr.Wrap(apperr.KindInternal, "Internal Server Error", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Food Partner fetched successfully",
			"foodPartner": models.FoodPartnerProfile{
				FoodPartner: *partner,
				FoodItems:   items,
			},
		})
	}
}
