package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StringOrNumber decodes a JSON value that generation models return
// inconsistently as either a string or a bare number.
type StringOrNumber string

func (s *StringOrNumber) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num == float64(int64(num)) {
			*s = StringOrNumber(fmt.Sprintf("%d", int64(num)))
		} else {
			*s = StringOrNumber(fmt.Sprintf("%g", num))
		}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = StringOrNumber(str)
		return nil
	}

	return fmt.Errorf("invalid string-or-number value: %s", string(data))
}

// Recipe is the central entity: the validated output of the generation
// pipeline and the unit stored in the saved collection. The JSON keys are
// the wire format the generation prompt fixes, which doubles as the
// persisted form.
type Recipe struct {
	ID               uuid.UUID           `json:"id"`
	Cuisine          string              `json:"cuisine"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	ImageDescription string              `json:"imgdesc,omitempty"`
	Servings         StringOrNumber      `json:"servings"`
	ServingSize      string              `json:"serving_size,omitempty"`
	PrepTime         string              `json:"prep"`
	CookTime         string              `json:"cook"`
	TotalTime        string              `json:"total"`
	CalorieCount     StringOrNumber      `json:"cal"`
	Macros           Macros              `json:"macros"`
	Ingredients      []string            `json:"ingredients"`
	Instructions     []string            `json:"instructions"`
	MealType         string              `json:"meal"`
	EquipmentUsed    []string            `json:"equipment"`
	DietLabels       []string            `json:"diet"`
	IngredientTypes  map[string][]string `json:"ingredient_types,omitempty"`
	ImageName        string              `json:"imgname,omitempty"`
	ImageURL         string              `json:"imgurl,omitempty"`
	Saved            bool                `json:"saved,omitempty"`
}

// Macros carries per-serving nutrition as unit-bearing strings.
// Protein, carbohydrates and fat are required; the rest are enrichment
// fields that stay empty when the model omits them.
type Macros struct {
	Protein       string         `json:"protein"`
	Carbohydrates string         `json:"carbohydrates"`
	Fat           string         `json:"fat"`
	Fiber         string         `json:"fiber,omitempty"`
	Sugar         string         `json:"sugar,omitempty"`
	Sodium        string         `json:"sodium,omitempty"`
	Cholesterol   string         `json:"cholesterol,omitempty"`
	SaturatedFat  string         `json:"saturated_fat,omitempty"`
	TransFat      string         `json:"trans_fat,omitempty"`
	Vitamins      []NutrientInfo `json:"vitamins,omitempty"`
	Minerals      []NutrientInfo `json:"minerals,omitempty"`
}

// UnmarshalJSON tolerates numeric macro values. A bare number gets the
// gram unit appended. An absent or null required macro decodes as the
// empty string, never a fabricated zero, so required-field checks
// downstream still fire.
func (m *Macros) UnmarshalJSON(data []byte) error {
	type alias struct {
		Protein       json.RawMessage `json:"protein"`
		Carbohydrates json.RawMessage `json:"carbohydrates"`
		Fat           json.RawMessage `json:"fat"`
		Fiber         string          `json:"fiber"`
		Sugar         string          `json:"sugar"`
		Sodium        string          `json:"sodium"`
		Cholesterol   string          `json:"cholesterol"`
		SaturatedFat  string          `json:"saturated_fat"`
		TransFat      string          `json:"trans_fat"`
		Vitamins      []NutrientInfo  `json:"vitamins"`
		Minerals      []NutrientInfo  `json:"minerals"`
	}

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	m.Protein = massValue(a.Protein)
	m.Carbohydrates = massValue(a.Carbohydrates)
	m.Fat = massValue(a.Fat)
	m.Fiber = a.Fiber
	m.Sugar = a.Sugar
	m.Sodium = a.Sodium
	m.Cholesterol = a.Cholesterol
	m.SaturatedFat = a.SaturatedFat
	m.TransFat = a.TransFat
	m.Vitamins = a.Vitamins
	m.Minerals = a.Minerals
	return nil
}

func massValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if num == float64(int64(num)) {
			return fmt.Sprintf("%dg", int64(num))
		}
		return fmt.Sprintf("%gg", num)
	}

	return ""
}

// NutrientInfo is a single vitamin or mineral entry.
type NutrientInfo struct {
	Name   string         `json:"name"`
	Amount StringOrNumber `json:"amount"`
	Unit   string         `json:"unit"`
}

// IngredientDetail is a food match from the external nutrition database,
// attached to an ingredient slot by value copy so later database changes
// never alter a recipe generated from it.
type IngredientDetail struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Calories        float64 `json:"calories"`
	Protein         float64 `json:"protein"`
	Carbs           float64 `json:"carbs"`
	Fat             float64 `json:"fat"`
	ServingSize     float64 `json:"servingSize"`
	ServingSizeUnit string  `json:"servingSizeUnit"`
	ImageURL        string  `json:"imageUrl,omitempty"`
}
