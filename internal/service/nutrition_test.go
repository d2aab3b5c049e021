package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipesmith/backend/internal/model"
)

func nutritionRecipe(mutate func(*model.Recipe)) *model.Recipe {
	r := validTestRecipe()
	if mutate != nil {
		mutate(r)
	}
	return r
}

func TestCalculateUsesSuppliedValues(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		r.Macros.Sodium = "700mg"
		r.Macros.Cholesterol = "95mg"
		r.Ingredients = []string{"soy sauce", "eggs", "cheese"}
	})

	data := svc.Calculate(r)

	assert.Equal(t, 700.0, data.Sodium)
	assert.Equal(t, 95.0, data.Cholesterol)
	assert.False(t, data.SodiumEstimated)
	assert.False(t, data.CholesterolEstimated)
}

func TestCalculateSuppliedZeroNotReestimated(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		r.Macros.Sodium = "0mg"
		r.Ingredients = []string{"soy sauce"}
	})

	data := svc.Calculate(r)

	assert.Equal(t, 0.0, data.Sodium)
	assert.False(t, data.SodiumEstimated)
}

func TestCalculateEstimatesCholesterolPerIngredient(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		r.Ingredients = []string{"2 eggs", "cheddar cheese", "flour"}
	})

	data := svc.Calculate(r)

	// egg 186 + cheese 30, accumulated across ingredients.
	assert.Equal(t, 216.0, data.Cholesterol)
	assert.True(t, data.CholesterolEstimated)
}

func TestCalculateEstimatesSodiumFromNames(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		r.Ingredients = []string{"soy sauce", "parmesan cheese", "rice"}
	})

	data := svc.Calculate(r)

	assert.Equal(t, 1150.0, data.Sodium)
	assert.True(t, data.SodiumEstimated)
}

func TestEstimateFirstRuleWinsPerIngredient(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		// Matches both "soy sauce" and "salt"; only the first rule counts.
		r.Ingredients = []string{"low salt soy sauce"}
	})

	data := svc.Calculate(r)
	assert.Equal(t, 900.0, data.Sodium)
}

func TestEstimatePrefersIngredientTags(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		r.Ingredients = []string{"soy sauce", "broth"}
		r.IngredientTypes = map[string][]string{
			"soy sauce": {"high sodium", "condiment"},
			"broth":     {"liquid"},
		}
	})

	data := svc.Calculate(r)

	// One tag match at the fixed increment; name rules do not run.
	assert.Equal(t, 400.0, data.Sodium)
}

func TestEstimateTagMissFallsBackToNames(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		r.Ingredients = []string{"chicken broth"}
		r.IngredientTypes = map[string][]string{
			"chicken broth": {"liquid", "protein"},
		}
	})

	data := svc.Calculate(r)
	assert.Equal(t, 700.0, data.Sodium)
}

func TestEstimateClamped(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		r.Ingredients = []string{
			"soy sauce", "dark soy sauce", "light soy sauce",
			"sweet soy sauce", "aged soy sauce", "extra soy sauce",
		}
	})

	data := svc.Calculate(r)
	assert.Equal(t, 5000.0, data.Sodium)
}

func TestCalculateIdempotent(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		r.Ingredients = []string{"eggs", "soy sauce"}
	})

	first := svc.Calculate(r)
	second := svc.Calculate(r)
	assert.Equal(t, first, second)
}

func TestCalculateVitaminDailyValues(t *testing.T) {
	svc := NewNutritionService()
	r := nutritionRecipe(func(r *model.Recipe) {
		r.Macros.Vitamins = []model.NutrientInfo{
			{Name: "Vitamin B12", Amount: "1.2", Unit: "mcg"},
			{Name: "Vitamin B6", Amount: "0.5", Unit: "mg"},
			{Name: "Vitamin A", Amount: "1500", Unit: "IU"},
			{Name: "Vitamin D", Amount: "10", Unit: "µg"},
			{Name: "Mystery Nutrient", Amount: "3", Unit: "mg"},
		}
	})

	data := svc.Calculate(r)
	require.Len(t, data.Vitamins, 5)

	assert.Equal(t, 2.4, data.Vitamins[0].DailyValue)
	assert.Equal(t, 1.7, data.Vitamins[1].DailyValue)
	assert.Equal(t, 3000.0, data.Vitamins[2].DailyValue)
	assert.Equal(t, 20.0, data.Vitamins[3].DailyValue)
	assert.Equal(t, 0.0, data.Vitamins[4].DailyValue)
}

func TestHealthInsightsHighProtein(t *testing.T) {
	svc := NewNutritionService()

	insights := svc.HealthInsights(NutritionData{Protein: 30, Fiber: 5, Carbohydrates: 40, Fat: 10, Calories: 300})

	require.NotEmpty(t, insights)
	assert.Equal(t, InsightPositive, insights[0].Type)
	assert.Equal(t, "High Protein Content", insights[0].Title)
}

func TestHealthInsightsWarnings(t *testing.T) {
	svc := NewNutritionService()

	insights := svc.HealthInsights(NutritionData{
		Protein:       5,
		Fiber:         1,
		Sodium:        900,
		Fat:           20,
		SaturatedFat:  10,
		Carbohydrates: 30,
		Calories:      600,
	})

	titles := make([]string, len(insights))
	for i, ins := range insights {
		titles[i] = ins.Title
	}

	// Independent rules fire together, in a fixed order.
	assert.Equal(t, []string{
		"Low Protein Content",
		"Low Fiber Content",
		"High Sodium Content",
		"High Saturated Fat",
		"High Calorie Density",
	}, titles)

	assert.Equal(t, SeverityHigh, insights[2].Severity)
}

func TestHealthInsightsZeroFatNoSaturatedRule(t *testing.T) {
	svc := NewNutritionService()

	insights := svc.HealthInsights(NutritionData{Protein: 15, Fiber: 5, Fat: 0, SaturatedFat: 0, Carbohydrates: 50, Calories: 200})

	for _, ins := range insights {
		assert.NotEqual(t, "High Saturated Fat", ins.Title)
	}
}

func TestTrendsEmpty(t *testing.T) {
	svc := NewNutritionService()
	assert.Empty(t, svc.Trends(nil))
}

func TestTrendsAverages(t *testing.T) {
	svc := NewNutritionService()

	first := nutritionRecipe(func(r *model.Recipe) {
		r.CalorieCount = "400"
		r.Macros.Protein = "20g"
	})
	second := nutritionRecipe(func(r *model.Recipe) {
		r.CalorieCount = "600"
		r.Macros.Protein = "40g"
	})

	trends := svc.Trends([]model.Recipe{*first, *second})
	require.Len(t, trends, 1)

	assert.Equal(t, "All Time", trends[0].Period)
	assert.Equal(t, 500.0, trends[0].AverageCalories)
	assert.Equal(t, 30.0, trends[0].AverageProtein)
	assert.Equal(t, TrendStable, trends[0].Trend)
}

func TestDietaryRecommendations(t *testing.T) {
	svc := NewNutritionService()

	recs := svc.DietaryRecommendations(NutritionData{
		Protein:      10,
		Fiber:        2,
		Fat:          10,
		SaturatedFat: 5,
		Sodium:       700,
	})
	assert.Len(t, recs, 4)

	assert.Empty(t, svc.DietaryRecommendations(NutritionData{
		Protein: 30, Fiber: 8, Fat: 20, SaturatedFat: 2, Sodium: 100,
	}))
}
