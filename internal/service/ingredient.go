package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recipesmith/backend/config"
	"github.com/recipesmith/backend/internal/model"
)

// thumbnailWorkers bounds concurrent Spoonacular lookups per search.
const thumbnailWorkers = 4

// IngredientService searches the USDA FoodData Central database and
// enriches matches with Spoonacular thumbnail URLs.
type IngredientService struct {
	usdaAPIKey        string
	usdaBaseURL       string
	spoonacularAPIKey string
	spoonacularURL    string
	client            *http.Client
	logger            *zap.Logger
}

// NewIngredientService creates a new IngredientService instance.
func NewIngredientService(cfg *config.Config, logger *zap.Logger) *IngredientService {
	return &IngredientService{
		usdaAPIKey:        cfg.USDAAPIKey,
		usdaBaseURL:       cfg.USDABaseURL,
		spoonacularAPIKey: cfg.SpoonacularAPIKey,
		spoonacularURL:    cfg.SpoonacularURL,
		client:            &http.Client{Timeout: 15 * time.Second},
		logger:            logger,
	}
}

type foodSearchResponse struct {
	Foods []struct {
		FdcID         int     `json:"fdcId"`
		Description   string  `json:"description"`
		ServingSize   float64 `json:"servingSize"`
		ServingUnit   string  `json:"servingSizeUnit"`
		FoodNutrients []struct {
			NutrientName string  `json:"nutrientName"`
			Value        float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

type spoonacularSearchResponse struct {
	Results []struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Image string `json:"image"`
	} `json:"results"`
}

// SearchIngredients returns candidate foods for the query. Thumbnail
// enrichment is best-effort and bounded; a failed image lookup leaves
// the match without a thumbnail rather than failing the search.
func (s *IngredientService) SearchIngredients(ctx context.Context, query string) ([]model.IngredientDetail, error) {
	if query == "" {
		return []model.IngredientDetail{}, nil
	}

	ingredients, err := s.searchUSDA(ctx, query)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(thumbnailWorkers)
	for i := range ingredients {
		i := i
		g.Go(func() error {
			imageURL, err := s.fetchIngredientImage(gctx, ingredients[i].Name)
			if err != nil {
				s.logger.Debug("thumbnail lookup failed",
					zap.String("ingredient", ingredients[i].Name), zap.Error(err))
				return nil
			}
			ingredients[i].ImageURL = imageURL
			return nil
		})
	}
	_ = g.Wait()

	return ingredients, nil
}

func (s *IngredientService) searchUSDA(ctx context.Context, query string) ([]model.IngredientDetail, error) {
	endpoint := fmt.Sprintf("%s/foods/search?api_key=%s&query=%s&pageSize=25",
		s.usdaBaseURL, s.usdaAPIKey, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &BadStatusError{Code: resp.StatusCode}
	}

	var search foodSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}

	details := make([]model.IngredientDetail, 0, len(search.Foods))
	for _, food := range search.Foods {
		detail := model.IngredientDetail{
			ID:              food.FdcID,
			Name:            food.Description,
			ServingSize:     food.ServingSize,
			ServingSizeUnit: food.ServingUnit,
		}
		if detail.ServingSize == 0 {
			detail.ServingSize = 100
		}
		if detail.ServingSizeUnit == "" {
			detail.ServingSizeUnit = "g"
		}

		for _, nutrient := range food.FoodNutrients {
			switch nutrient.NutrientName {
			case "Energy":
				detail.Calories = nutrient.Value
			case "Protein":
				detail.Protein = nutrient.Value
			case "Carbohydrate, by difference":
				detail.Carbs = nutrient.Value
			case "Total lipid (fat)":
				detail.Fat = nutrient.Value
			}
		}

		details = append(details, detail)
	}

	return details, nil
}

func (s *IngredientService) fetchIngredientImage(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/search?query=%s&apiKey=%s&number=1",
		s.spoonacularURL, url.QueryEscape(name), s.spoonacularAPIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &BadStatusError{Code: resp.StatusCode}
	}

	var search spoonacularSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecoding, err)
	}

	if len(search.Results) == 0 {
		return "", nil
	}
	return "https://spoonacular.com/cdn/ingredients_100x100/" + search.Results[0].Image, nil
}

// ingredientSearcher is the search dependency of IngredientSearcher,
// narrowed for testability.
type ingredientSearcher interface {
	SearchIngredients(ctx context.Context, query string) ([]model.IngredientDetail, error)
}

// IngredientSearcher serializes rapid repeated queries: each Search
// supersedes any in-flight one, and a stale result arriving after a
// newer query was issued is discarded. The underlying network call is
// not aborted; its result simply stops contributing.
type IngredientSearcher struct {
	service ingredientSearcher

	mu  sync.Mutex
	seq uint64
}

// NewIngredientSearcher creates a searcher over the given service.
func NewIngredientSearcher(service ingredientSearcher) *IngredientSearcher {
	return &IngredientSearcher{service: service}
}

// Search runs the query asynchronously and calls apply with the results
// unless a newer Search was issued in the meantime.
func (s *IngredientSearcher) Search(ctx context.Context, query string, apply func([]model.IngredientDetail, error)) {
	s.mu.Lock()
	s.seq++
	token := s.seq
	s.mu.Unlock()

	go func() {
		results, err := s.service.SearchIngredients(ctx, query)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.seq != token {
			return
		}
		apply(results, err)
	}()
}
