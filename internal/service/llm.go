package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipesmith/backend/config"
	"github.com/recipesmith/backend/internal/model"
)

// systemPrompt fixes the exact JSON schema the generation model must
// return, including the unit every numeric field carries.
const systemPrompt = `You are a culinary expert. Return recipe data in strict JSON format.

You MUST follow these rules:
1. Return ONLY a JSON object with NO additional text
2. ALL fields listed below are required and must not be empty
3. Time fields MUST include "minutes" (e.g. "15 minutes")
4. Calorie count MUST be a number as string (e.g. "450")
5. Macros MUST include "g" unit (e.g. "45g")
6. Include at least one diet label and equipment item
7. DO NOT include step numbers in instructions

Required JSON format:
{
  "cuisine": "string",
  "title": "string",
  "description": "string",
  "imgdesc": "string",
  "servings": "string",
  "prep": "string with minutes",
  "cook": "string with minutes",
  "total": "string with minutes",
  "cal": "number as string",
  "macros": {
    "protein": "string with g",
    "carbohydrates": "string with g",
    "fat": "string with g"
  },
  "ingredients": ["string"],
  "instructions": ["string"],
  "meal": "string",
  "equipment": ["string"],
  "diet": ["string"]
}`

// LLMService calls the chat-completion API that synthesizes recipes.
type LLMService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	logger *zap.Logger
}

// NewLLMService creates a new LLMService instance.
func NewLLMService(cfg *config.Config, logger *zap.Logger) *LLMService {
	return &LLMService{
		apiKey: cfg.OpenAIAPIKey,
		apiURL: cfg.OpenAIAPIURL,
		model:  "gpt-4.1-mini",
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateRecipeData issues the completion request and returns the
// decoded, validated recipe. Failures propagate immediately: any
// retry/backoff policy belongs to the caller.
func (s *LLMService) GenerateRecipeData(ctx context.Context, prompt string) (*model.Recipe, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

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
		s.logger.Warn("completion request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, &BadStatusError{Code: resp.StatusCode}
	}

	var envelope chatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return nil, ErrEmptyContent
	}

	cleaned := stripCodeFence(envelope.Choices[0].Message.Content)
	if !utf8.ValidString(cleaned) {
		return nil, ErrEncoding
	}

	var recipe model.Recipe
	if err := json.Unmarshal([]byte(cleaned), &recipe); err != nil {
		s.logger.Warn("recipe payload did not parse", zap.Error(err))
		return nil, ErrDecoding
	}

	if err := validateRecipe(&recipe); err != nil {
		s.logger.Warn("recipe failed validation", zap.Error(err))
		return nil, ErrDecoding
	}

	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}

	return &recipe, nil
}

// stripCodeFence removes markdown triple-backtick wrapping (optionally
// tagged "json") that models sometimes put around their JSON payload.
func stripCodeFence(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
