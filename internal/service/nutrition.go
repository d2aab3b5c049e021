package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/recipesmith/backend/internal/model"
)

// NutritionData is the derived, non-persisted nutrition view computed on
// demand from a recipe. Estimated fields are flagged so callers can tell
// a heuristic value from one the generation model supplied.
type NutritionData struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
	Sodium        float64 `json:"sodium"`
	Cholesterol   float64 `json:"cholesterol"`
	SaturatedFat  float64 `json:"saturated_fat"`
	TransFat      float64 `json:"trans_fat"`

	SodiumEstimated      bool `json:"sodium_estimated"`
	CholesterolEstimated bool `json:"cholesterol_estimated"`

	Vitamins []NutrientValue `json:"vitamins"`
	Minerals []NutrientValue `json:"minerals"`
}

// NutrientValue is a vitamin or mineral amount with its recommended
// daily reference. A zero DailyValue means the nutrient (or its unit)
// was not recognized and percent-of-daily-value displays as zero.
type NutrientValue struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
	DailyValue float64 `json:"daily_value"`
}

// InsightType classifies a health insight.
type InsightType string

const (
	InsightPositive       InsightType = "positive"
	InsightWarning        InsightType = "warning"
	InsightConcern        InsightType = "concern"
	InsightRecommendation InsightType = "recommendation"
)

// Severity grades a health insight.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// HealthInsight is one advisory produced by the threshold rules.
type HealthInsight struct {
	Type           InsightType `json:"type"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Severity       Severity    `json:"severity"`
	Recommendation string      `json:"recommendation,omitempty"`
}

// TrendDirection describes how an aggregate is moving.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// NutritionTrend is an aggregate over a set of recipes.
type NutritionTrend struct {
	Period          string         `json:"period"`
	AverageCalories float64        `json:"average_calories"`
	AverageProtein  float64        `json:"average_protein"`
	AverageCarbs    float64        `json:"average_carbs"`
	AverageFat      float64        `json:"average_fat"`
	Trend           TrendDirection `json:"trend"`
}

// Estimation tuning constants. These are heuristics, not cited
// nutritional references; keep them here rather than scattering the
// numbers through the code.
const (
	sodiumClampMaxMg      = 5000
	cholesterolClampMaxMg = 1000

	sodiumTagIncrementMg      = 400
	cholesterolTagIncrementMg = 120
)

// keywordRule maps an ingredient-name substring to a per-serving
// nutrient increment in mg. Rules are evaluated in order and the first
// match wins for a given ingredient.
type keywordRule struct {
	keyword string
	amount  float64
}

var sodiumRules = []keywordRule{
	{"soy sauce", 900},
	{"broth", 700},
	{"bouillon", 700},
	{"cheese", 250},
	{"bacon", 300},
	{"salami", 300},
	{"salt", 500},
}

var cholesterolRules = []keywordRule{
	{"egg", 186},
	{"shrimp", 150},
	{"butter", 30},
	{"cheese", 30},
	{"lamb", 40},
	{"beef", 40},
	{"pork", 40},
}

var sodiumTagKeywords = []string{"sodium", "salt"}
var cholesterolTagKeywords = []string{"cholesterol"}

// NutritionService derives nutrition analytics from validated recipes.
// It is pure calculation: safe for concurrent use and idempotent for an
// immutable input.
type NutritionService struct{}

// NewNutritionService creates a new NutritionService instance.
func NewNutritionService() *NutritionService {
	return &NutritionService{}
}

// Calculate produces the NutritionData view for a recipe. Sodium and
// cholesterol supplied by the recipe are used as-is; absent values are
// estimated from ingredient keywords and clamped.
func (s *NutritionService) Calculate(recipe *model.Recipe) NutritionData {
	data := NutritionData{
		Calories:      parseNumber(string(recipe.CalorieCount)),
		Protein:       parseMacroValue(recipe.Macros.Protein),
		Carbohydrates: parseMacroValue(recipe.Macros.Carbohydrates),
		Fat:           parseMacroValue(recipe.Macros.Fat),
		Fiber:         parseMacroValue(recipe.Macros.Fiber),
		Sugar:         parseMacroValue(recipe.Macros.Sugar),
		SaturatedFat:  parseMacroValue(recipe.Macros.SaturatedFat),
		TransFat:      parseMacroValue(recipe.Macros.TransFat),
	}

	if recipe.Macros.Sodium != "" {
		data.Sodium = parseMacroValue(recipe.Macros.Sodium)
	} else {
		data.Sodium = estimateNutrient(recipe, sodiumTagKeywords, sodiumTagIncrementMg, sodiumRules, sodiumClampMaxMg)
		data.SodiumEstimated = true
	}

	if recipe.Macros.Cholesterol != "" {
		data.Cholesterol = parseMacroValue(recipe.Macros.Cholesterol)
	} else {
		data.Cholesterol = estimateNutrient(recipe, cholesterolTagKeywords, cholesterolTagIncrementMg, cholesterolRules, cholesterolClampMaxMg)
		data.CholesterolEstimated = true
	}

	data.Vitamins = nutrientValues(recipe.Macros.Vitamins)
	data.Minerals = nutrientValues(recipe.Macros.Minerals)
	return data
}

// estimateNutrient scans the ingredient-to-tags mapping when present,
// then falls back to ingredient-name keywords. Increments accumulate
// across matching ingredients and the total is clamped to [0, max].
func estimateNutrient(recipe *model.Recipe, tagKeywords []string, tagIncrement float64, rules []keywordRule, clampMax float64) float64 {
	var total float64

	if len(recipe.IngredientTypes) > 0 {
		for _, tags := range recipe.IngredientTypes {
			if tagsMatch(tags, tagKeywords) {
				total += tagIncrement
			}
		}
	}

	if total <= 0 {
		for _, ingredient := range recipe.Ingredients {
			lower := strings.ToLower(ingredient)
			for _, rule := range rules {
				if strings.Contains(lower, rule.keyword) {
					total += rule.amount
					break
				}
			}
		}
	}

	return math.Min(math.Max(0, total), clampMax)
}

func tagsMatch(tags, keywords []string) bool {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}

func nutrientValues(entries []model.NutrientInfo) []NutrientValue {
	values := make([]NutrientValue, 0, len(entries))
	for _, e := range entries {
		values = append(values, NutrientValue{
			Name:       e.Name,
			Amount:     parseNumber(string(e.Amount)),
			Unit:       e.Unit,
			DailyValue: dailyValue(e.Name, e.Unit),
		})
	}
	return values
}

// dailyValueEntry holds recommended daily references per unit, with a
// default for units the table does not distinguish.
type dailyValueEntry struct {
	matches []string
	byUnit  map[string]float64
	def     float64
}

// dailyValues is evaluated in order; the first name match wins. More
// specific names (B12 before B1) come first so substring matching stays
// deterministic.
var dailyValues = []dailyValueEntry{
	{matches: []string{"vitamin b12"}, def: 2.4, byUnit: map[string]float64{"mcg": 2.4}},
	{matches: []string{"vitamin b6"}, def: 1.7, byUnit: map[string]float64{"mg": 1.7}},
	{matches: []string{"thiamin", "vitamin b1"}, def: 1.2, byUnit: map[string]float64{"mg": 1.2}},
	{matches: []string{"riboflavin", "vitamin b2"}, def: 1.3, byUnit: map[string]float64{"mg": 1.3}},
	{matches: []string{"niacin", "vitamin b3"}, def: 16, byUnit: map[string]float64{"mg": 16}},
	{matches: []string{"folate", "folic acid"}, def: 400, byUnit: map[string]float64{"mcg": 400}},
	{matches: []string{"vitamin a", "vit a"}, def: 900, byUnit: map[string]float64{"iu": 3000, "mcg": 900, "mg": 0.9}},
	{matches: []string{"vitamin c", "vit c"}, def: 90, byUnit: map[string]float64{"mg": 90}},
	{matches: []string{"vitamin d", "vit d"}, def: 20, byUnit: map[string]float64{"iu": 800, "mcg": 20, "mg": 0.02}},
	{matches: []string{"vitamin e", "vit e"}, def: 15, byUnit: map[string]float64{"iu": 22, "mg": 15}},
	{matches: []string{"vitamin k", "vit k"}, def: 120, byUnit: map[string]float64{"mcg": 120}},
	{matches: []string{"iron"}, def: 18, byUnit: map[string]float64{"mg": 18}},
	{matches: []string{"calcium"}, def: 1000, byUnit: map[string]float64{"mg": 1000, "g": 1}},
	{matches: []string{"potassium"}, def: 4700, byUnit: map[string]float64{"mg": 4700}},
	{matches: []string{"magnesium"}, def: 420, byUnit: map[string]float64{"mg": 420}},
	{matches: []string{"zinc"}, def: 11, byUnit: map[string]float64{"mg": 11}},
}

// dailyValue looks up the recommended daily reference for a nutrient
// name and unit. Unrecognized names yield zero rather than failing.
func dailyValue(name, unit string) float64 {
	lowerName := strings.ToLower(name)
	lowerUnit := strings.ToLower(strings.TrimSpace(unit))
	if lowerUnit == "µg" || lowerUnit == "ug" {
		lowerUnit = "mcg"
	}

	for _, entry := range dailyValues {
		for _, match := range entry.matches {
			if strings.Contains(lowerName, match) {
				if v, ok := entry.byUnit[lowerUnit]; ok {
					return v
				}
				return entry.def
			}
		}
	}
	return 0
}

// HealthInsights applies the fixed threshold-rule sequence. Rules are
// independent, so several can fire, and the order is deterministic for a
// given input.
func (s *NutritionService) HealthInsights(data NutritionData) []HealthInsight {
	insights := []HealthInsight{}

	if data.Protein > 25 {
		insights = append(insights, HealthInsight{
			Type:        InsightPositive,
			Title:       "High Protein Content",
			Description: "This recipe provides excellent protein content for muscle building and satiety. Great for post-workout meals or when you need sustained energy.",
			Severity:    SeverityLow,
		})
	} else if data.Protein < 10 {
		insights = append(insights, HealthInsight{
			Type:           InsightWarning,
			Title:          "Low Protein Content",
			Description:    "This recipe is relatively low in protein.",
			Severity:       SeverityMedium,
			Recommendation: "Consider adding lean protein sources like chicken, fish, or legumes.",
		})
	}

	if data.Fiber > 8 {
		insights = append(insights, HealthInsight{
			Type:        InsightPositive,
			Title:       "High Fiber Content",
			Description: "Excellent fiber content supports digestive health and helps maintain stable blood sugar.",
			Severity:    SeverityLow,
		})
	} else if data.Fiber < 3 {
		insights = append(insights, HealthInsight{
			Type:           InsightConcern,
			Title:          "Low Fiber Content",
			Description:    "This recipe could benefit from more fiber-rich ingredients.",
			Severity:       SeverityMedium,
			Recommendation: "Add vegetables, whole grains, or legumes to increase fiber content.",
		})
	}

	if data.Sodium > 800 {
		insights = append(insights, HealthInsight{
			Type:           InsightWarning,
			Title:          "High Sodium Content",
			Description:    "This recipe contains high sodium levels.",
			Severity:       SeverityHigh,
			Recommendation: "Consider reducing salt or using low-sodium alternatives.",
		})
	}

	if data.Fat > 0 && data.SaturatedFat/data.Fat*100 > 30 {
		insights = append(insights, HealthInsight{
			Type:           InsightWarning,
			Title:          "High Saturated Fat",
			Description:    "This recipe has a high percentage of saturated fat.",
			Severity:       SeverityMedium,
			Recommendation: "Consider using healthier fat sources like olive oil or avocado.",
		})
	}

	calorieDensity := data.Calories / math.Max(1, data.Protein+data.Carbohydrates+data.Fat)
	if calorieDensity > 4 {
		insights = append(insights, HealthInsight{
			Type:           InsightConcern,
			Title:          "High Calorie Density",
			Description:    "This recipe is calorie-dense with relatively low nutritional value.",
			Severity:       SeverityMedium,
			Recommendation: "Consider adding more vegetables or reducing high-calorie ingredients.",
		})
	}

	return insights
}

// Trends computes unweighted means across the given recipes. An empty
// input yields an empty result.
func (s *NutritionService) Trends(recipes []model.Recipe) []NutritionTrend {
	if len(recipes) == 0 {
		return []NutritionTrend{}
	}

	var calories, protein, carbs, fat float64
	for i := range recipes {
		data := s.Calculate(&recipes[i])
		calories += data.Calories
		protein += data.Protein
		carbs += data.Carbohydrates
		fat += data.Fat
	}

	n := float64(len(recipes))
	return []NutritionTrend{
		{
			Period:          "All Time",
			AverageCalories: calories / n,
			AverageProtein:  protein / n,
			AverageCarbs:    carbs / n,
			AverageFat:      fat / n,
			Trend:           TrendStable,
		},
	}
}

// DietaryRecommendations produces free-text suggestions from the same
// derived data the insights use.
func (s *NutritionService) DietaryRecommendations(data NutritionData) []string {
	recommendations := []string{}

	if data.Protein < 20 {
		recommendations = append(recommendations, "Consider adding lean protein sources like chicken breast, fish, or tofu")
	}
	if data.Fiber < 5 {
		recommendations = append(recommendations, "Add more vegetables, fruits, or whole grains to increase fiber content")
	}
	if data.SaturatedFat > data.Fat*0.3 {
		recommendations = append(recommendations, "Replace saturated fats with unsaturated fats like olive oil or nuts")
	}
	if data.Sodium > 600 {
		recommendations = append(recommendations, "Reduce sodium by using herbs, spices, or low-sodium alternatives")
	}

	return recommendations
}

// parseMacroValue reads a unit-bearing macro string leniently, returning
// zero for anything unparseable. The validator already gated required
// fields; this path also serves optional ones.
func parseMacroValue(value string) float64 {
	if value == "" {
		return 0
	}
	return parseNumber(unitStripper.Replace(value))
}

func parseNumber(value string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return n
}
