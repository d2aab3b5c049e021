package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipesmith/backend/internal/api"
	"github.com/recipesmith/backend/internal/middleware"
	"github.com/recipesmith/backend/internal/service"
)

// Services bundles the application services the router wires into
// handlers.
type Services struct {
	Recipes     *service.RecipeService
	Store       *service.RecipeStore
	Nutrition   *service.NutritionService
	Ingredients *service.IngredientService
}

// Setup builds the gin engine with all routes registered.
func Setup(svcs Services, logger *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	api.NewRecipeHandler(svcs.Recipes, svcs.Store, svcs.Nutrition, logger).RegisterRoutes(v1)
	api.NewIngredientHandler(svcs.Ingredients, logger).RegisterRoutes(v1)
	api.NewPreferencesHandler(svcs.Store, logger).RegisterRoutes(v1)

	return router
}
