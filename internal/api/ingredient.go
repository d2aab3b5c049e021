package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipesmith/backend/internal/service"
)

// IngredientHandler serves ingredient database search.
type IngredientHandler struct {
	ingredients *service.IngredientService
	logger      *zap.Logger
}

// NewIngredientHandler creates a new IngredientHandler instance.
func NewIngredientHandler(ingredients *service.IngredientService, logger *zap.Logger) *IngredientHandler {
	return &IngredientHandler{
		ingredients: ingredients,
		logger:      logger,
	}
}

// RegisterRoutes registers the ingredient endpoints on the given group.
func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("/search", h.Search)
	}
}

// Search returns candidate foods matching the query, enriched with
// thumbnails where available.
func (h *IngredientHandler) Search(c *gin.Context) {
	query := c.Query("q")

	results, err := h.ingredients.SearchIngredients(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("ingredient search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to search ingredients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": results})
}
