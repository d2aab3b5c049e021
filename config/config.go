package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application. Every field is
// populated once at startup and treated as immutable afterwards.
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Recipe generation (OpenAI chat completions)
	OpenAIAPIKey string
	OpenAIAPIURL string

	// Image generation (Gemini)
	GoogleAPIKey string
	GeminiAPIURL string

	// Ingredient search
	USDAAPIKey        string
	USDABaseURL       string
	SpoonacularAPIKey string
	SpoonacularURL    string

	// Object storage
	S3Bucket  string
	AWSRegion string
}

// Load creates a new Config instance from environment variables.
// API keys may alternatively be provided through *_FILE variables
// pointing at secret files.
func Load() (*Config, error) {
	cfg := &Config{
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisURL:       os.Getenv("REDIS_URL"),
		OpenAIAPIURL:   getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		GeminiAPIURL:   getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-image:generateContent"),
		USDABaseURL:    getEnv("USDA_API_URL", "https://api.nal.usda.gov/fdc/v1"),
		SpoonacularURL: getEnv("SPOONACULAR_API_URL", "https://api.spoonacular.com/food/ingredients"),
		S3Bucket:       getEnv("S3_BUCKET_NAME", "recipesmith-images"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", dbStr, err)
		}
		cfg.RedisDB = db
	}

	var err error
	if cfg.OpenAIAPIKey, err = readKey("OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.GoogleAPIKey, err = readKey("GOOGLE_API_KEY"); err != nil {
		return nil, err
	}

	// Ingredient search keys are optional: without them the search
	// endpoints return errors but recipe generation still works.
	cfg.USDAAPIKey, _ = readKey("USDA_API_KEY")
	cfg.SpoonacularAPIKey, _ = readKey("SPOONACULAR_API_KEY")

	return cfg, nil
}

// readKey loads an API key from NAME or, failing that, from the file
// named by NAME_FILE.
func readKey(name string) (string, error) {
	if v := os.Getenv(name); v != "" {
		return v, nil
	}

	keyFile := os.Getenv(name + "_FILE")
	if keyFile == "" {
		return "", fmt.Errorf("%s or %s_FILE must be set", name, name)
	}

	data, err := os.ReadFile(keyFile)
	if err != nil {
		return "", fmt.Errorf("failed to read %s file: %w", name, err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%s file is empty", name)
	}
	return key, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
