package handlers

import (
	"github.com/gin-gonic/gin"

	"foodify/internal/middleware"
)

// Routes bundles the dependencies of every API route.
type Routes struct {
	Auth        AuthDeps
	Food        FoodDeps
	Tokens      middleware.TokenVerifier
	Users       middleware.UserFinder
	Partners    FoodPartnerStore
	AuthLimiter *middleware.IPRateLimiter
}

// Register mounts the /api routes on r.
func Register(r gin.IRouter, deps Routes) {
	RegisterValidators()

	userAuth := middleware.UserAuth(deps.Tokens, deps.Users)
	partnerAuth := middleware.FoodPartnerAuth(deps.Tokens, deps.Partners)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(middleware.RateLimit(deps.AuthLimiter))
	}
	{
		authGroup.POST("/user/register", RegisterUser(deps.Auth))
		authGroup.POST("/user/login", LoginUser(deps.Auth))
		authGroup.POST("/user/logout", LogoutUser(deps.Auth))
		authGroup.GET("/user/logout", LogoutUser(deps.Auth))

		authGroup.POST("/food-partner/register", RegisterFoodPartner(deps.Auth))
		authGroup.POST("/food-partner/login", LoginFoodPartner(deps.Auth))
		authGroup.POST("/food-partner/logout", LogoutFoodPartner(deps.Auth))
		authGroup.GET("/food-partner/logout", LogoutFoodPartner(deps.Auth))
	}

	api.GET("/food-partner/:id", GetFoodPartnerByID(deps.Partners, deps.Food.Foods))

	food := api.Group("/food")
	{
		food.GET("", ListFood(deps.Food))
		food.POST("", partnerAuth, CreateFood(deps.Food))
		food.POST("/like", userAuth, ToggleLike(deps.Food))
		food.POST("/save", userAuth, ToggleSave(deps.Food))
		food.GET("/save", userAuth, ListSaved(deps.Food))
	}
}
