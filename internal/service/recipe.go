package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipesmith/backend/internal/model"
)

// RecipeService orchestrates the generation pipeline: prompt → completion
// → validation → best-effort image → result.
type RecipeService struct {
	llm    *LLMService
	images *ImageService
	logger *zap.Logger
}

// NewRecipeService creates a new RecipeService instance.
func NewRecipeService(llm *LLMService, images *ImageService, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		llm:    llm,
		images: images,
		logger: logger,
	}
}

// GenerateFromIngredients builds a prompt from the user's ingredient list
// and constraints and runs the full pipeline.
func (s *RecipeService) GenerateFromIngredients(ctx context.Context, ingredients []string, allowOtherIngredients bool, constraints *GenerationConstraints) (*model.Recipe, error) {
	prompt := BuildRecipePrompt(ingredients, allowOtherIngredients, constraints)
	return s.Generate(ctx, prompt)
}

// GenerateDish runs the pipeline for a fixed popular dish.
func (s *RecipeService) GenerateDish(ctx context.Context, dish string, constraints *GenerationConstraints) (*model.Recipe, error) {
	prompt := BuildDishPrompt(dish, constraints)
	return s.Generate(ctx, prompt)
}

// Generate produces a validated recipe for the given prompt. A failure
// anywhere in the image sub-pipeline yields the recipe without image
// fields rather than an overall failure.
func (s *RecipeService) Generate(ctx context.Context, prompt string) (*model.Recipe, error) {
	recipe, err := s.llm.GenerateRecipeData(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.attachImage(ctx, recipe)
	return recipe, nil
}

// EditRecipe regenerates a recipe's text fields according to free-form
// change instructions. The identifier, image reference and saved flag of
// the original survive the edit, so a later save replaces the prior
// version instead of duplicating it.
func (s *RecipeService) EditRecipe(ctx context.Context, existing *model.Recipe, changes string) (*model.Recipe, error) {
	prompt := BuildEditPrompt(existing.Title, existing.Description, changes)

	updated, err := s.llm.GenerateRecipeData(ctx, prompt)
	if err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.ImageName = existing.ImageName
	updated.ImageURL = existing.ImageURL
	updated.Saved = existing.Saved
	return updated, nil
}

// attachImage runs the image sub-pipeline. Any failure is reported as a
// diagnostic signal only; the recipe stays usable without image fields.
func (s *RecipeService) attachImage(ctx context.Context, recipe *model.Recipe) {
	if recipe.ImageDescription == "" {
		s.logger.Debug("no image description, skipping image generation")
		return
	}

	encoded, err := s.images.GenerateImage(ctx, recipe.ImageDescription)
	if err != nil {
		s.logger.Warn("image generation failed", zap.String("recipe", recipe.Title), zap.Error(err))
		return
	}

	imageBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		s.logger.Warn("image payload not valid base64", zap.String("recipe", recipe.Title), zap.Error(err))
		return
	}

	fileName := imageFileName(recipe.Title)
	imageURL, err := s.images.UploadImage(ctx, imageBytes, fileName)
	if err != nil {
		s.logger.Warn("image upload failed", zap.String("recipe", recipe.Title), zap.Error(err))
		return
	}

	recipe.ImageName = fileName
	recipe.ImageURL = imageURL
}

// imageFileName derives an object key from the sanitized recipe title
// plus a short random suffix to avoid collisions between same-named
// dishes.
func imageFileName(title string) string {
	sanitized := strings.ReplaceAll(title, " ", "_")
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s_%s.png", sanitized, suffix)
}
