package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodify/internal/apperr"
	"foodify/internal/cache"
	"foodify/internal/metrics"
	"foodify/internal/middleware"
	"foodify/internal/models"
	"foodify/internal/repository"
	"foodify/internal/storage"
)

const uploadTimeout = 2 * time.Minute

type FoodDeps struct {
	Foods                FoodStore
	Storage              MediaStorage
	Cache                FeedCache
	Metrics              *metrics.Metrics
	MaxVideoSize         int64
	SavedEmptyAsNotFound bool
}

type ToggleRequest struct {
	FoodID string `json:"foodId" binding:"required,notblank"`
}

func CreateFood(deps FoodDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		partner, ok := middleware.CurrentFoodPartner(c)
		if !ok {
			fail(c, apperr.New(apperr.KindForbidden, "Only food partners can upload food"))
			return
		}

		input, err := parseFoodUpload(c, deps.MaxVideoSize)
		if err != nil {
			fail(c, err)
			return
		}

		log := middleware.LoggerFrom(c).WithField("food_partner_id", partner.ID.Hex())

		uploadCtx, cancelUpload := context.WithTimeout(c.Request.Context(), uploadTimeout)
		defer cancelUpload()

		key := storage.NewObjectKey(input.File.Filename)
		file, err := input.File.Open()
		if err != nil {
			fail(c, apperr.Wrap(apperr.KindInternal, "Internal Server Error", err))
			return
		}
		defer file.Close()

		url, err := deps.Storage.Upload(uploadCtx, key, file, input.File.Size, input.ContentType)
		if err != nil || url == "" {
			if err == nil {
				err = storage.ErrEmptyURL
			}
			fail(c, apperr.Wrap(apperr.KindUpstream, "Failed to upload video file", err))
			return
		}
		log.WithField("object_key", key).Debug("video uploaded")

		ctx, cancel := requestContext(c)
		defer cancel()

		food := &models.Food{
			Name:        input.Name,
			Description: input.Description,
			Video:       url,
			FoodPartner: partner.ID,
		}
		if err := deps.Foods.Create(ctx, food); err != nil {
			removeOrphan(deps.Storage, key, log)
			fail(c, apperr.Wrap(apperr.KindInternal, "Internal Server Error", err))
			return
		}

		invalidateFeed(c, deps.Cache)
		if deps.Metrics != nil {
			deps.Metrics.FoodsCreatedTotal.Inc()
			deps.Metrics.UploadBytes.Observe(float64(input.File.Size))
		}

		log.WithField("food_id", food.ID.Hex()).Info("food created")
		c.JSON(http.StatusCreated, gin.H{
			"message": "Food created successfully",
			"food":    food,
		})
	}
}

func ListFood(deps FoodDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		foods, err := readFeed(ctx, deps.Cache)
		result := "hit"
		switch {
		case err == nil:
		case errors.Is(err, cache.ErrCacheDisabled):
			result = "disabled"
		case errors.Is(err, cache.ErrCacheMiss):
			result = "miss"
		default:
			result = "error"
			middleware.LoggerFrom(c).WithError(err).Warn("feed cache read failed")
		}
		if deps.Metrics != nil {
			deps.Metrics.FeedCacheTotal.WithLabelValues(result).Inc()
		}

		if err != nil {
			var gen int64
			cacheable := result == "miss"
			if cacheable {
				if gen, err = deps.Cache.Generation(ctx); err != nil {
					middleware.LoggerFrom(c).WithError(err).Warn("feed cache generation read failed")
					cacheable = false
				}
			}

			foods, err = deps.Foods.List(ctx)
			if err != nil {
				fail(c, apperr.Wrap(apperr.KindInternal, "Internal Server Error", err))
				return
			}

			if cacheable {
				storeFeed(ctx, c, deps.Cache, gen, foods)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "Food items fetched successfully",
			"foodItems": foods,
		})
	}
}

func ToggleLike(deps FoodDeps) gin.HandlerFunc {
	return toggleHandler(deps, "like", deps.Foods.ToggleLike, toggleMessages{
		on:  "Food liked successfully",
		off: "Food unliked successfully",
	})
}

func ToggleSave(deps FoodDeps) gin.HandlerFunc {
	return toggleHandler(deps, "save", deps.Foods.ToggleSave, toggleMessages{
		on:  "Food saved successfully",
		off: "Food unsaved successfully",
	})
}

type toggleMessages struct {
	on  string
	off string
}

type toggleFunc func(ctx context.Context, userID, foodID primitive.ObjectID) (bool, error)

// toggleHandler answers 201 when the relation was created and 200 when it
// was removed; the boolean is reported under the relation name.
func toggleHandler(deps FoodDeps, kind string, toggle toggleFunc, messages toggleMessages) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			fail(c, apperr.New(apperr.KindAuthRequired, "Please login first"))
			return
		}

		var req ToggleRequest
		if err := bindJSON(c, &req, "foodId is required"); err != nil {
			fail(c, err)
			return
		}
		foodID, err := primitive.ObjectIDFromHex(req.FoodID)
		if err != nil {
			fail(c, apperr.Validation("foodId is invalid", "foodId must be a valid id"))
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		on, err := toggle(ctx, user.ID, foodID)
		if errors.Is(err, repository.ErrNotFound) {
			fail(c, apperr.New(apperr.KindNotFound, "Food not found"))
			return
		}
		if err != nil {
			fail(c, apperr.Wrap(apperr.KindInternal, "Internal Server Error", err))
			return
		}

		invalidateFeed(c, deps.Cache)

		state, status, message := "off", http.StatusOK, messages.off
		if on {
			state, status, message = "on", http.StatusCreated, messages.on
		}
		if deps.Metrics != nil {
			deps.Metrics.TogglesTotal.WithLabelValues(kind, state).Inc()
		}

		c.JSON(status, gin.H{
			"message": message,
			kind:      on,
		})
	}
}

func ListSaved(deps FoodDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			fail(c, apperr.New(apperr.KindAuthRequired, "Please login first"))
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		saved, err := deps.Foods.ListSaved(ctx, user.ID)
		if err != nil {
			fail(c, apperr.Wrap(apperr.KindInternal, "Internal Server Error", err))
			return
		}
		if len(saved) == 0 && deps.SavedEmptyAsNotFound {
			fail(c, apperr.New(apperr.KindNotFound, "No saved foods found"))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "Saved foods retrieved successfully",
			"savedFoods": saved,
		})
	}
}

// removeOrphan deletes an uploaded object whose food record was never
// written. It runs detached from the request, bounded by requestTimeout.
func removeOrphan(store MediaStorage, key string, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := store.Delete(ctx, key); err != nil {
		log.WithError(err).WithField("object_key", key).Warn("orphaned upload could not be removed")
	}
}

func readFeed(ctx context.Context, feed FeedCache) ([]models.Food, error) {
	if feed == nil {
		return nil, cache.ErrCacheDisabled
	}
	return feed.GetFeed(ctx)
}

func storeFeed(ctx context.Context, c *gin.Context, feed FeedCache, gen int64, foods []models.Food) {
	err := feed.SetFeed(ctx, gen, foods)
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrStaleFeed):
		middleware.LoggerFrom(c).Debug("feed changed while loading, not cached")
	default:
		middleware.LoggerFrom(c).WithError(err).Warn("feed cache write failed")
	}
}

func invalidateFeed(c *gin.Context, feed FeedCache) {
	if feed == nil {
		return
	}
	if err := feed.InvalidateFeed(c.Request.Context()); err != nil {
		middleware.LoggerFrom(c).WithError(err).Warn("feed cache invalidation failed")
	}
}
