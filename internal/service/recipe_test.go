package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRecipeService(t *testing.T, llmURL, imageURL string, store *fakeS3) *RecipeService {
	t.Helper()
	return NewRecipeService(
		newTestLLMService(llmURL),
		newTestImageService(imageURL, store),
		zap.NewNop(),
	)
}

func TestGenerateAttachesImage(t *testing.T) {
	llmSrv := newCompletionServer(t, recipePayload)
	defer llmSrv.Close()

	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [
					{"inlineData": {"mimeType": "image/png", "data": "aGVsbG8="}}
				]}
			}]
		}`))
	}))
	defer imageSrv.Close()

	store := &fakeS3{}
	svc := newTestRecipeService(t, llmSrv.URL, imageSrv.URL, store)

	recipe, err := svc.GenerateFromIngredients(context.Background(), []string{"chicken"}, true, nil)
	require.NoError(t, err)

	assert.Equal(t, "Green Curry", recipe.Title)
	assert.True(t, strings.HasPrefix(recipe.ImageName, "Green_Curry_"))
	assert.True(t, strings.HasSuffix(recipe.ImageName, ".png"))
	assert.Contains(t, recipe.ImageURL, "https://test-bucket.s3.us-east-1.amazonaws.com/")
	require.Len(t, store.putKeys, 1)
	assert.Equal(t, recipe.ImageName, store.putKeys[0])
}

func TestGenerateSurvivesImageFailure(t *testing.T) {
	llmSrv := newCompletionServer(t, recipePayload)
	defer llmSrv.Close()

	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer imageSrv.Close()

	svc := newTestRecipeService(t, llmSrv.URL, imageSrv.URL, &fakeS3{})

	recipe, err := svc.GenerateDish(context.Background(), "Green Curry", nil)
	require.NoError(t, err)

	assert.Equal(t, "Green Curry", recipe.Title)
	assert.Empty(t, recipe.ImageName)
	assert.Empty(t, recipe.ImageURL)
}

func TestGenerateSkipsImageWithoutDescription(t *testing.T) {
	withoutImgDesc := strings.Replace(recipePayload,
		`"imgdesc": "a bowl of green curry with jasmine rice",`, "", 1)
	llmSrv := newCompletionServer(t, withoutImgDesc)
	defer llmSrv.Close()

	store := &fakeS3{}
	svc := newTestRecipeService(t, llmSrv.URL, "http://unused", store)

	recipe, err := svc.Generate(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Empty(t, recipe.ImageName)
	assert.Empty(t, store.putKeys)
}

func TestGenerateFailsOnLLMError(t *testing.T) {
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer llmSrv.Close()

	svc := newTestRecipeService(t, llmSrv.URL, "http://unused", &fakeS3{})

	_, err := svc.GenerateFromIngredients(context.Background(), []string{"chicken"}, true, nil)
	var badStatus *BadStatusError
	assert.ErrorAs(t, err, &badStatus)
}

func TestEditRecipePreservesIdentityAndImage(t *testing.T) {
	llmSrv := newCompletionServer(t, recipePayload)
	defer llmSrv.Close()

	svc := newTestRecipeService(t, llmSrv.URL, "http://unused", &fakeS3{})

	existing := validTestRecipe()
	existing.ID = uuid.New()
	existing.ImageName = "Lentil_Soup_ab12cd34.png"
	existing.ImageURL = "https://test-bucket.s3.us-east-1.amazonaws.com/Lentil_Soup_ab12cd34.png"
	existing.Saved = true

	updated, err := svc.EditRecipe(context.Background(), existing, "make it spicier")
	require.NoError(t, err)

	assert.Equal(t, existing.ID, updated.ID)
	assert.Equal(t, existing.ImageName, updated.ImageName)
	assert.Equal(t, existing.ImageURL, updated.ImageURL)
	assert.True(t, updated.Saved)
	assert.Equal(t, "Green Curry", updated.Title)
}

func TestImageFileName(t *testing.T) {
	name := imageFileName("Green Curry With Rice")

	assert.True(t, strings.HasPrefix(name, "Green_Curry_With_Rice_"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotContains(t, name, " ")

	// Distinct suffixes keep same-titled dishes from colliding.
	assert.NotEqual(t, name, imageFileName("Green Curry With Rice"))
}
