package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/recipesmith/backend/internal/model"
)

// unitStripper removes the mass units the generation schema mandates.
// "mg" must precede "g" so milligram values survive the strip.
var unitStripper = strings.NewReplacer("mg", "", "g", "", " ", "")

// macroNumber parses a unit-bearing macro string to its numeric value,
// rejecting anything that is not a non-negative number after stripping.
func macroNumber(value string) (float64, error) {
	n, err := strconv.ParseFloat(unitStripper.Replace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value: %q", value)
	}
	return n, nil
}

// validateRecipe is the correctness boundary for generated recipes: the
// upstream model is non-deterministic, so required fields are checked
// strictly while enrichment fields stay optional. The returned error
// carries field detail for diagnostics; callers surface it uniformly as
// ErrDecoding.
func validateRecipe(r *model.Recipe) error {
	if r.Title == "" {
		return fmt.Errorf("missing title")
	}
	if r.Description == "" {
		return fmt.Errorf("missing description")
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("empty ingredient list")
	}
	if len(r.Instructions) == 0 {
		return fmt.Errorf("empty instruction list")
	}

	for _, t := range []struct{ field, value string }{
		{"prep", r.PrepTime},
		{"cook", r.CookTime},
		{"total", r.TotalTime},
	} {
		if t.value == "" || !strings.Contains(t.value, "minute") {
			return fmt.Errorf("time field %s lacks a duration unit: %q", t.field, t.value)
		}
	}

	if r.CalorieCount == "" {
		return fmt.Errorf("missing calorie count")
	}
	if cal, err := strconv.ParseFloat(string(r.CalorieCount), 64); err != nil || cal < 0 {
		return fmt.Errorf("calorie count not a non-negative number: %q", r.CalorieCount)
	}

	if len(r.DietLabels) == 0 {
		return fmt.Errorf("empty diet label list")
	}
	if len(r.EquipmentUsed) == 0 {
		return fmt.Errorf("empty equipment list")
	}

	for _, m := range []struct{ field, value string }{
		{"protein", r.Macros.Protein},
		{"carbohydrates", r.Macros.Carbohydrates},
		{"fat", r.Macros.Fat},
	} {
		if m.value == "" || !strings.Contains(m.value, "g") {
			return fmt.Errorf("macro %s lacks a mass unit: %q", m.field, m.value)
		}
		if _, err := macroNumber(m.value); err != nil {
			return fmt.Errorf("macro %s: %w", m.field, err)
		}
	}

	// Enrichment fields: validated only when present.
	if r.Macros.Sodium != "" {
		if _, err := macroNumber(r.Macros.Sodium); err != nil {
			return fmt.Errorf("sodium: %w", err)
		}
	}
	if r.Macros.Cholesterol != "" {
		if _, err := macroNumber(r.Macros.Cholesterol); err != nil {
			return fmt.Errorf("cholesterol: %w", err)
		}
	}

	return nil
}
