package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/recipesmith/backend/internal/model"
)

// Store keys. The saved collection is one serialized list, matching the
// single-user read-modify-write model: concurrent writers are not
// reconciled, last write wins.
const (
	savedRecipesKey    = "recipes:saved"
	extraDetailsKey    = "prefs:extra_details"
	onlyIngredientsKey = "prefs:only_these_ingredients"
	ingredientSlotsKey = "ingredients:slots"
	dietSetKey         = "recipes:diet"
)

// imageDeleter is the cleanup dependency of RecipeStore: deleting a
// saved recipe best-effort removes its stored image.
type imageDeleter interface {
	DeleteImage(ctx context.Context, fileName string) error
}

// RecipeStore persists the saved-recipe collection and the user's
// preference state in Redis.
type RecipeStore struct {
	rdb    redis.Cmdable
	images imageDeleter
	logger *zap.Logger
}

// NewRecipeStore creates a new RecipeStore instance. images may be nil
// when no content store is configured.
func NewRecipeStore(rdb redis.Cmdable, images imageDeleter, logger *zap.Logger) *RecipeStore {
	return &RecipeStore{
		rdb:    rdb,
		images: images,
		logger: logger,
	}
}

// ListRecipes returns the saved collection, oldest first.
func (s *RecipeStore) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	data, err := s.rdb.Get(ctx, savedRecipesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.Recipe{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load saved recipes: %w", err)
	}

	var recipes []model.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal saved recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe looks up a saved recipe by identifier.
func (s *RecipeStore) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	recipes, err := s.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		if recipes[i].ID == id {
			return &recipes[i], nil
		}
	}
	return nil, nil
}

// SaveRecipe adds a recipe to the saved collection. An existing entry
// with the same identifier is replaced in place; a new identifier is
// appended. Edits therefore never duplicate a recipe.
func (s *RecipeStore) SaveRecipe(ctx context.Context, recipe *model.Recipe) error {
	recipes, err := s.ListRecipes(ctx)
	if err != nil {
		return err
	}

	recipe.Saved = true
	replaced := false
	for i := range recipes {
		if recipes[i].ID == recipe.ID {
			recipes[i] = *recipe
			replaced = true
			break
		}
	}
	if !replaced {
		recipes = append(recipes, *recipe)
	}

	return s.writeRecipes(ctx, recipes)
}

// DeleteRecipe removes a recipe from the saved collection and
// best-effort deletes its stored image. Image cleanup failures are
// logged and swallowed: they must never block the delete.
func (s *RecipeStore) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	recipes, err := s.ListRecipes(ctx)
	if err != nil {
		return err
	}

	var removed *model.Recipe
	kept := make([]model.Recipe, 0, len(recipes))
	for i := range recipes {
		if recipes[i].ID == id {
			removed = &recipes[i]
			continue
		}
		kept = append(kept, recipes[i])
	}
	if removed == nil {
		return nil
	}

	if err := s.writeRecipes(ctx, kept); err != nil {
		return err
	}

	if err := s.rdb.SRem(ctx, dietSetKey, id.String()).Err(); err != nil {
		s.logger.Warn("failed to remove diet marker", zap.String("id", id.String()), zap.Error(err))
	}

	if s.images != nil && removed.ImageName != "" {
		if err := s.images.DeleteImage(ctx, removed.ImageName); err != nil {
			s.logger.Warn("failed to delete recipe image",
				zap.String("image", removed.ImageName), zap.Error(err))
		}
	}

	return nil
}

func (s *RecipeStore) writeRecipes(ctx context.Context, recipes []model.Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to marshal saved recipes: %w", err)
	}
	if err := s.rdb.Set(ctx, savedRecipesKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store saved recipes: %w", err)
	}
	return nil
}

// SaveExtraDetails persists the generation constraints at the current
// schema version. The caller's value is not modified.
func (s *RecipeStore) SaveExtraDetails(ctx context.Context, c *GenerationConstraints) error {
	stamped := *c
	stamped.SchemaVersion = ConstraintsSchemaVersion
	data, err := json.Marshal(stamped)
	if err != nil {
		return fmt.Errorf("failed to marshal extra details: %w", err)
	}
	if err := s.rdb.Set(ctx, extraDetailsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store extra details: %w", err)
	}
	return nil
}

// ExtraDetails loads the stored generation constraints, returning
// defaults when none are stored. Blobs written before versioning are
// upgraded to the current schema.
func (s *RecipeStore) ExtraDetails(ctx context.Context) (*GenerationConstraints, error) {
	data, err := s.rdb.Get(ctx, extraDetailsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return DefaultConstraints(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load extra details: %w", err)
	}

	var c GenerationConstraints
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extra details: %w", err)
	}
	if c.SchemaVersion == 0 {
		c.SchemaVersion = ConstraintsSchemaVersion
	}
	return &c, nil
}

// SetOnlyTheseIngredients stores the "only these ingredients" flag.
func (s *RecipeStore) SetOnlyTheseIngredients(ctx context.Context, only bool) error {
	if err := s.rdb.Set(ctx, onlyIngredientsKey, strconv.FormatBool(only), 0).Err(); err != nil {
		return fmt.Errorf("failed to store ingredient flag: %w", err)
	}
	return nil
}

// OnlyTheseIngredients reads the "only these ingredients" flag,
// defaulting to false.
func (s *RecipeStore) OnlyTheseIngredients(ctx context.Context) (bool, error) {
	val, err := s.rdb.Get(ctx, onlyIngredientsKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load ingredient flag: %w", err)
	}
	only, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid ingredient flag value %q: %w", val, err)
	}
	return only, nil
}

// SaveIngredientSlots persists the user's current (unsaved) ingredient
// slots.
func (s *RecipeStore) SaveIngredientSlots(ctx context.Context, slots []model.IngredientDetail) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredient slots: %w", err)
	}
	if err := s.rdb.Set(ctx, ingredientSlotsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store ingredient slots: %w", err)
	}
	return nil
}

// IngredientSlots loads the user's current ingredient slots.
func (s *RecipeStore) IngredientSlots(ctx context.Context) ([]model.IngredientDetail, error) {
	data, err := s.rdb.Get(ctx, ingredientSlotsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.IngredientDetail{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient slots: %w", err)
	}

	var slots []model.IngredientDetail
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredient slots: %w", err)
	}
	return slots, nil
}

// MarkInDiet adds a recipe identifier to the in-diet set.
func (s *RecipeStore) MarkInDiet(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.SAdd(ctx, dietSetKey, id.String()).Err(); err != nil {
		return fmt.Errorf("failed to mark recipe in diet: %w", err)
	}
	return nil
}

// UnmarkInDiet removes a recipe identifier from the in-diet set.
func (s *RecipeStore) UnmarkInDiet(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.SRem(ctx, dietSetKey, id.String()).Err(); err != nil {
		return fmt.Errorf("failed to unmark recipe in diet: %w", err)
	}
	return nil
}

// InDietIDs returns the identifiers currently marked in-diet.
func (s *RecipeStore) InDietIDs(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, dietSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load diet markers: %w", err)
	}
	return ids, nil
}
