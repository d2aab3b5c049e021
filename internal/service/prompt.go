package service

import (
	"fmt"
	"strings"
)

// ConstraintsSchemaVersion is the current persisted form of
// GenerationConstraints. Bump when fields change meaning.
const ConstraintsSchemaVersion = 1

// GenerationConstraints is the structured replacement for the legacy
// loosely-typed "extra details" dictionary. Zero values mean "no
// constraint"; the prompt builder emits a line only for present fields.
type GenerationConstraints struct {
	SchemaVersion int `json:"schema_version"`

	CaloriesMin *int `json:"calories_min,omitempty"`
	CaloriesMax *int `json:"calories_max,omitempty"`
	ProteinMin  *int `json:"protein_min,omitempty"`
	ProteinMax  *int `json:"protein_max,omitempty"`
	CarbsMin    *int `json:"carbs_min,omitempty"`
	CarbsMax    *int `json:"carbs_max,omitempty"`
	FatMin      *int `json:"fat_min,omitempty"`
	FatMax      *int `json:"fat_max,omitempty"`

	Allergies       []string `json:"allergies,omitempty"`
	DietPreferences []string `json:"diet_preferences,omitempty"`
	MealTypes       []string `json:"meal_types,omitempty"`
	CuisineTypes    []string `json:"cuisine_types,omitempty"`
	Equipment       []string `json:"equipment,omitempty"`

	ServingSize    string `json:"serving_size,omitempty"`
	TimeConstraint string `json:"time_constraint,omitempty"`
	Notes          string `json:"notes,omitempty"`

	PopularDish  string `json:"popular_dish,omitempty"`
	PopularNotes string `json:"popular_notes,omitempty"`
}

// DefaultConstraints returns an empty constraints object at the current
// schema version.
func DefaultConstraints() *GenerationConstraints {
	return &GenerationConstraints{SchemaVersion: ConstraintsSchemaVersion}
}

// recipeSchema is the machine-readable output contract appended to every
// ingredient prompt. The generation model must return exactly this shape.
const recipeSchema = `
Return ONLY a JSON object with these REQUIRED fields:
{
  "cuisine": "specific cuisine type",
  "title": "descriptive recipe name",
  "description": "detailed description",
  "imgdesc": "very detailed visual description for image generation",
  "servings": "specific number",
  "prep": "exact time",
  "cook": "exact time",
  "total": "exact total time",
  "cal": "EXACT number per serving",
  "macros": {
    "protein": "exact grams per serving",
    "carbohydrates": "exact grams per serving",
    "fat": "exact grams per serving"
  },
  "ingredients": ["detailed ingredients with amounts"],
  "instructions": ["numbered, detailed steps"],
  "meal": "specific meal type",
  "equipment": ["specific equipment list"],
  "diet": ["all applicable dietary labels"]
}`

// BuildRecipePrompt turns an ingredient list plus optional constraints
// into the user prompt for the generation model. Pure function of its
// inputs: no network or persistence side effects.
func BuildRecipePrompt(ingredients []string, allowOtherIngredients bool, c *GenerationConstraints) string {
	var b strings.Builder

	b.WriteString("Create a recipe using these ingredients:\n- ")
	b.WriteString(strings.Join(ingredients, "\n- "))
	b.WriteString("\n\nIMPORTANT REQUIREMENTS:\n")
	b.WriteString("1. Calculate and include exact nutritional information per serving:\n")
	b.WriteString("   - Calories (must be a specific number)\n")
	b.WriteString("   - Protein (in grams)\n")
	b.WriteString("   - Carbohydrates (in grams)\n")
	b.WriteString("   - Fat (in grams)\n\n")
	b.WriteString("2. Always include specific dietary labels based on ingredients and nutrition\n\n")
	b.WriteString("3. Provide detailed cooking instructions and timing\n\n")

	if !allowOtherIngredients {
		b.WriteString("CRITICAL: Use ONLY the listed ingredients. Do not add any others.\n")
		b.WriteString("Be creative with only these ingredients.\n")
	}

	writeConstraints(&b, c)

	b.WriteString(recipeSchema)
	return b.String()
}

// BuildDishPrompt builds the prompt for a fixed popular dish. The output
// schema comes from the system instruction, so only the dish and the
// present constraints are emitted here.
func BuildDishPrompt(dish string, c *GenerationConstraints) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %s recipe", dish)

	if c != nil {
		if c.PopularNotes != "" {
			fmt.Fprintf(&b, "\n\nAdditional requirements:\n%s", c.PopularNotes)
		}
		if len(c.Allergies) > 0 {
			b.WriteString("\n\nAvoid these allergies/restrictions:\n- " + strings.Join(c.Allergies, "\n- "))
		}
		if len(c.DietPreferences) > 0 {
			b.WriteString("\n\nDietary preferences:\n- " + strings.Join(c.DietPreferences, "\n- "))
		}
		if len(c.Equipment) > 0 {
			b.WriteString("\n\nAvailable equipment:\n- " + strings.Join(c.Equipment, "\n- "))
		}
		if c.TimeConstraint != "" {
			fmt.Fprintf(&b, "\n\nTime constraint: %s", c.TimeConstraint)
		}
		if c.ServingSize != "" {
			fmt.Fprintf(&b, "\n\nServing size: %s", c.ServingSize)
		}
	}

	return b.String()
}

// BuildEditPrompt asks the model to regenerate a recipe's text fields
// according to free-form change instructions, without touching the image.
func BuildEditPrompt(title, description, changes string) string {
	return fmt.Sprintf(`Update this recipe according to the following changes: %s

Current Recipe:
Title: %s
Description: %s

Maintain the JSON format and update ONLY the text fields without changing the image.`, changes, title, description)
}

// isEmpty reports whether no constraint field is set.
func (c *GenerationConstraints) isEmpty() bool {
	return c.CaloriesMin == nil && c.CaloriesMax == nil &&
		c.ProteinMin == nil && c.ProteinMax == nil &&
		c.CarbsMin == nil && c.CarbsMax == nil &&
		c.FatMin == nil && c.FatMax == nil &&
		len(c.Allergies) == 0 && len(c.DietPreferences) == 0 &&
		len(c.MealTypes) == 0 && len(c.CuisineTypes) == 0 &&
		len(c.Equipment) == 0 &&
		c.ServingSize == "" && c.TimeConstraint == "" && c.Notes == "" &&
		c.PopularDish == "" && c.PopularNotes == ""
}

func writeConstraints(b *strings.Builder, c *GenerationConstraints) {
	if c == nil || c.isEmpty() {
		return
	}

	b.WriteString("Additional requirements:\n")

	bounds := []struct {
		value *int
		label string
	}{
		{c.FatMin, "Minimum Fat"},
		{c.FatMax, "Maximum Fat"},
		{c.ProteinMin, "Minimum Protein"},
		{c.ProteinMax, "Maximum Protein"},
		{c.CarbsMin, "Minimum Carbohydrates"},
		{c.CarbsMax, "Maximum Carbohydrates"},
		{c.CaloriesMin, "Minimum Calories"},
		{c.CaloriesMax, "Maximum Calories"},
	}
	for _, bound := range bounds {
		if bound.value != nil {
			fmt.Fprintf(b, "%s Per Serving Of The Dish Will Be: %d\n", bound.label, *bound.value)
		}
	}

	if len(c.Allergies) > 0 {
		b.WriteString("\nAllergies/Restrictions to avoid:\n- " + strings.Join(c.Allergies, "\n- ") + "\n")
	}
	if len(c.DietPreferences) > 0 {
		b.WriteString("\nDietary Preferences:\n- " + strings.Join(c.DietPreferences, "\n- ") + "\n")
	}
	if len(c.MealTypes) > 0 {
		b.WriteString("\nThe Meal Type Will Be:\n- " + strings.Join(c.MealTypes, "\n- ") + "\n")
	}
	if len(c.CuisineTypes) > 0 {
		b.WriteString("\nThe Dish Cuisine Type Will Be:\n- " + strings.Join(c.CuisineTypes, "\n- ") + "\n")
	}
	if len(c.Equipment) > 0 {
		b.WriteString("\nAvailable Equipment:\n- " + strings.Join(c.Equipment, "\n- ") + "\n")
	}
	if c.ServingSize != "" {
		fmt.Fprintf(b, "\nServing Size: %s\n", c.ServingSize)
	}
	if c.TimeConstraint != "" {
		fmt.Fprintf(b, "\nTime Constraint: %s\n", c.TimeConstraint)
	}
	if c.Notes != "" {
		fmt.Fprintf(b, "\nAdditional Notes:\n%s\n", c.Notes)
	}
	if c.PopularDish != "" {
		fmt.Fprintf(b, "\nThis should be a recipe for: %s\n", c.PopularDish)
	}
	if c.PopularNotes != "" {
		fmt.Fprintf(b, "\nAdditional notes for popular dish:\n%s\n", c.PopularNotes)
	}
}
