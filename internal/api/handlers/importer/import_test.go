package importer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	importerCore "recipe-importer/internal/core/importer"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter() *gin.Engine {
	cfg := config.ImportConfig{
		FetchTimeout: 5 * time.Second,
		MaxHTMLBytes: 64 * 1024,
		UserAgent:    "test-agent/1.0",
	}
	handler := NewHandler(importerCore.NewPipeline(cfg, nil))

	router := gin.New()
	router.POST("/api/v1/recipes/import", handler.HandleImport)
	return router
}

func doImport(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleImportInvalidBody(t *testing.T) {
	rec := doImport(t, newTestRouter(), `{"no_url": true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp common.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Code != common.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", resp.Code, common.ErrCodeInvalidRequest)
	}
}

func TestHandleImportUnsupportedProtocol(t *testing.T) {
	rec := doImport(t, newTestRouter(), `{"url":"ftp://example.com/recipe"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp common.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Code != common.ErrCodeUnsupportedProtocol {
		t.Errorf("code = %q, want %q", resp.Code, common.ErrCodeUnsupportedProtocol)
	}
}

func TestHandleImportSuccess(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
	{"@type":"Recipe","name":"Tortilha","recipeIngredient":["6 ovos","2 batatas"],
	 "recipeInstructions":["Fritar as batatas","Juntar os ovos"],"totalTime":"PT35M","recipeYield":"4"}
	</script></head><body></body></html>`
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer source.Close()

	rec := doImport(t, newTestRouter(), `{"url":"`+source.URL+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var recipe common.NormalizedRecipe
	if err := json.Unmarshal(rec.Body.Bytes(), &recipe); err != nil {
		t.Fatalf("invalid recipe body: %v", err)
	}
	if recipe.Title != "Tortilha" {
		t.Errorf("title = %q", recipe.Title)
	}
	if recipe.CookingTime != 35 || recipe.Servings != 4 {
		t.Errorf("cooking_time/servings = %d/%d", recipe.CookingTime, recipe.Servings)
	}
	if len(recipe.Ingredients) != 2 || len(recipe.Steps) != 2 {
		t.Errorf("ingredients/steps = %v / %v", recipe.Ingredients, recipe.Steps)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry a request id")
	}
}
