package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRecipeTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewRecipeHandler(nil, nil, nil, zap.NewNop())
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestGenerateRecipeRejectsEmptyIngredients(t *testing.T) {
	router := newRecipeTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/generate", strings.NewReader(`{"ingredients": []}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ingredient")
}

func TestGenerateDishRequiresDish(t *testing.T) {
	router := newRecipeTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/generate/dish", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipeRoutesRejectInvalidId(t *testing.T) {
	router := newRecipeTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodDelete, "/api/v1/recipes/not-a-uuid", ""},
		{http.MethodPost, "/api/v1/recipes/not-a-uuid/edit", `{"changes": "spicier"}`},
		{http.MethodGet, "/api/v1/recipes/not-a-uuid/nutrition", ""},
		{http.MethodPost, "/api/v1/recipes/not-a-uuid/diet", ""},
		{http.MethodDelete, "/api/v1/recipes/not-a-uuid/diet", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid recipe id")
		})
	}
}

func TestSaveRecipeRejectsMalformedBody(t *testing.T) {
	router := newRecipeTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
