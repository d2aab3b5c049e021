package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipesmith/backend/internal/model"
	"github.com/recipesmith/backend/internal/service"
)

// PreferencesHandler serves the persisted generation preferences and
// the user's working ingredient slots.
type PreferencesHandler struct {
	store  *service.RecipeStore
	logger *zap.Logger
}

// NewPreferencesHandler creates a new PreferencesHandler instance.
func NewPreferencesHandler(store *service.RecipeStore, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers the preference endpoints on the given group.
func (h *PreferencesHandler) RegisterRoutes(router *gin.RouterGroup) {
	prefs := router.Group("/preferences")
	{
		prefs.GET("/extra-details", h.GetExtraDetails)
		prefs.PUT("/extra-details", h.PutExtraDetails)
		prefs.GET("/only-these-ingredients", h.GetOnlyTheseIngredients)
		prefs.PUT("/only-these-ingredients", h.PutOnlyTheseIngredients)
		prefs.GET("/ingredient-slots", h.GetIngredientSlots)
		prefs.PUT("/ingredient-slots", h.PutIngredientSlots)
	}
}

// GetExtraDetails returns the stored generation constraints, or defaults
// when none are stored.
func (h *PreferencesHandler) GetExtraDetails(c *gin.Context) {
	details, err := h.store.ExtraDetails(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load extra details", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, details)
}

// PutExtraDetails replaces the stored generation constraints.
func (h *PreferencesHandler) PutExtraDetails(c *gin.Context) {
	var details service.GenerationConstraints
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SaveExtraDetails(c.Request.Context(), &details); err != nil {
		h.logger.Error("failed to save extra details", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, details)
}

type onlyIngredientsRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetOnlyTheseIngredients returns the "only these ingredients" flag.
func (h *PreferencesHandler) GetOnlyTheseIngredients(c *gin.Context) {
	only, err := h.store.OnlyTheseIngredients(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load ingredient flag", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": only})
}

// PutOnlyTheseIngredients sets the "only these ingredients" flag.
func (h *PreferencesHandler) PutOnlyTheseIngredients(c *gin.Context) {
	var req onlyIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetOnlyTheseIngredients(c.Request.Context(), *req.Enabled); err != nil {
		h.logger.Error("failed to save ingredient flag", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

// GetIngredientSlots returns the user's working ingredient slots.
func (h *PreferencesHandler) GetIngredientSlots(c *gin.Context) {
	slots, err := h.store.IngredientSlots(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load ingredient slots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": slots})
}

// PutIngredientSlots replaces the user's working ingredient slots.
func (h *PreferencesHandler) PutIngredientSlots(c *gin.Context) {
	var slots []model.IngredientDetail
	if err := c.ShouldBindJSON(&slots); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SaveIngredientSlots(c.Request.Context(), slots); err != nil {
		h.logger.Error("failed to save ingredient slots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": slots})
}
