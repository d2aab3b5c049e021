package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipesmith/backend/internal/model"
	"github.com/recipesmith/backend/internal/service"
)

// RecipeHandler serves recipe generation, persistence and nutrition
// endpoints.
type RecipeHandler struct {
	recipes   *service.RecipeService
	store     *service.RecipeStore
	nutrition *service.NutritionService
	logger    *zap.Logger
}

// NewRecipeHandler creates a new RecipeHandler instance.
func NewRecipeHandler(recipes *service.RecipeService, store *service.RecipeStore, nutrition *service.NutritionService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		store:     store,
		nutrition: nutrition,
		logger:    logger,
	}
}

// RegisterRoutes registers the recipe endpoints on the given group.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("/generate", h.GenerateRecipe)
		recipes.POST("/generate/dish", h.GenerateDish)
		recipes.POST("", h.SaveRecipe)
		recipes.GET("", h.ListRecipes)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/edit", h.EditRecipe)
		recipes.GET("/:id/nutrition", h.RecipeNutrition)
		recipes.GET("/trends", h.NutritionTrends)
		recipes.GET("/diet", h.ListDiet)
		recipes.POST("/:id/diet", h.MarkInDiet)
		recipes.DELETE("/:id/diet", h.UnmarkInDiet)
	}
}

type generateRequest struct {
	Ingredients           []string                       `json:"ingredients"`
	AllowOtherIngredients *bool                          `json:"allow_other_ingredients"`
	Constraints           *service.GenerationConstraints `json:"constraints"`
}

type generateDishRequest struct {
	Dish        string                         `json:"dish" binding:"required"`
	Constraints *service.GenerationConstraints `json:"constraints"`
}

// GenerateRecipe synthesizes a recipe from an ingredient list. Request
// fields left out fall back to the stored preferences.
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one ingredient is required"})
		return
	}

	constraints := req.Constraints
	if constraints == nil {
		stored, err := h.store.ExtraDetails(c.Request.Context())
		if err != nil {
			h.logger.Error("failed to load extra details", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
			return
		}
		constraints = stored
	}

	allowOther := true
	if req.AllowOtherIngredients != nil {
		allowOther = *req.AllowOtherIngredients
	} else {
		only, err := h.store.OnlyTheseIngredients(c.Request.Context())
		if err != nil {
			h.logger.Error("failed to load ingredient flag", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
			return
		}
		allowOther = !only
	}

	recipe, err := h.recipes.GenerateFromIngredients(c.Request.Context(), req.Ingredients, allowOther, constraints)
	if err != nil {
		h.logger.Error("recipe generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// GenerateDish synthesizes a recipe for a named popular dish.
func (h *RecipeHandler) GenerateDish(c *gin.Context) {
	var req generateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	constraints := req.Constraints
	if constraints == nil {
		stored, err := h.store.ExtraDetails(c.Request.Context())
		if err != nil {
			h.logger.Error("failed to load extra details", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
			return
		}
		constraints = stored
	}

	recipe, err := h.recipes.GenerateDish(c.Request.Context(), req.Dish, constraints)
	if err != nil {
		h.logger.Error("dish generation failed", zap.String("dish", req.Dish), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// SaveRecipe adds the recipe to the saved collection, replacing a prior
// version with the same identifier.
func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}

	if err := h.store.SaveRecipe(c.Request.Context(), &recipe); err != nil {
		h.logger.Error("failed to save recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// ListRecipes returns the saved collection.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.store.ListRecipes(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// DeleteRecipe removes a recipe and its stored image.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	if err := h.store.DeleteRecipe(c.Request.Context(), id); err != nil {
		h.logger.Error("failed to delete recipe", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	c.Status(http.StatusNoContent)
}

type editRequest struct {
	Changes string `json:"changes" binding:"required"`
}

// EditRecipe regenerates a saved recipe according to free-form change
// instructions and persists the result in place.
func (h *RecipeHandler) EditRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.store.GetRecipe(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to load recipe", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipe"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	updated, err := h.recipes.EditRecipe(c.Request.Context(), existing, req.Changes)
	if err != nil {
		h.logger.Error("recipe edit failed", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to edit recipe"})
		return
	}

	if err := h.store.SaveRecipe(c.Request.Context(), updated); err != nil {
		h.logger.Error("failed to persist edited recipe", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// RecipeNutrition returns per-serving nutrition data, health insights
// and dietary recommendations for a saved recipe.
func (h *RecipeHandler) RecipeNutrition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	recipe, err := h.store.GetRecipe(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to load recipe", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipe"})
		return
	}
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	data := h.nutrition.Calculate(recipe)
	c.JSON(http.StatusOK, gin.H{
		"nutrition":       data,
		"insights":        h.nutrition.HealthInsights(data),
		"recommendations": h.nutrition.DietaryRecommendations(data),
	})
}

// NutritionTrends aggregates nutrition across the saved collection.
func (h *RecipeHandler) NutritionTrends(c *gin.Context) {
	recipes, err := h.store.ListRecipes(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": h.nutrition.Trends(recipes)})
}

// ListDiet returns the identifiers of recipes marked as part of the
// current diet.
func (h *RecipeHandler) ListDiet(c *gin.Context) {
	ids, err := h.store.InDietIDs(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list diet markers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch diet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe_ids": ids})
}

// MarkInDiet flags a saved recipe as part of the current diet.
func (h *RecipeHandler) MarkInDiet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	if err := h.store.MarkInDiet(c.Request.Context(), id); err != nil {
		h.logger.Error("failed to mark recipe in diet", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update diet"})
		return
	}

	c.Status(http.StatusNoContent)
}

// UnmarkInDiet removes a recipe from the current diet.
func (h *RecipeHandler) UnmarkInDiet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	if err := h.store.UnmarkInDiet(c.Request.Context(), id); err != nil {
		h.logger.Error("failed to unmark recipe in diet", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update diet"})
		return
	}

	c.Status(http.StatusNoContent)
}
