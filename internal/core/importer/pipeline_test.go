package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipe-importer/internal/pkg/common"
)

// stubCompletion 可控的 AI 補全替身
type stubCompletion struct {
	response string
	err      error
	called   bool
	prompt   string
}

func (s *stubCompletion) ProcessRequest(_ context.Context, prompt string) (string, error) {
	s.called = true
	s.prompt = prompt
	return s.response, s.err
}

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const structuredPage = `<html><head><script type="application/ld+json">
{"@type":"Recipe","name":"Arroz de pato",
 "recipeIngredient":["1 pato","400g arroz"],
 "recipeInstructions":[{"@type":"HowToStep","text":"Cozer o pato"},{"@type":"HowToStep","text":"Levar ao forno"}],
 "totalTime":"PT1H30M","recipeYield":"6 porções","keywords":"arroz, pato",
 "image":"https://img.example.com/arroz-de-pato.jpg"}
</script></head><body></body></html>`

const emptyPage = `<html><body><h1>Loja de ferragens</h1><p>Parafusos e pregos.</p></body></html>`

func TestImportStructuredData(t *testing.T) {
	srv := servePage(t, structuredPage)

	p := NewPipeline(testImportConfig(), nil)
	recipe, err := p.Import(context.Background(), srv.URL, RequestContext{BaseOrigin: "https://app.example.com"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if recipe.Title != "Arroz de pato" {
		t.Errorf("Title = %q", recipe.Title)
	}
	if recipe.CookingTime != 90 {
		t.Errorf("CookingTime = %d, want 90", recipe.CookingTime)
	}
	if recipe.Servings != 6 {
		t.Errorf("Servings = %d, want 6", recipe.Servings)
	}
	if len(recipe.Ingredients) != 2 || len(recipe.Steps) != 2 {
		t.Errorf("Ingredients/Steps = %v / %v", recipe.Ingredients, recipe.Steps)
	}
	if len(recipe.Tags) != 2 {
		t.Errorf("Tags = %v", recipe.Tags)
	}
	if recipe.Image != "https://img.example.com/arroz-de-pato.jpg" {
		t.Errorf("Image = %q", recipe.Image)
	}
}

func TestImportAllStagesExhausted(t *testing.T) {
	srv := servePage(t, emptyPage)

	p := NewPipeline(testImportConfig(), nil)
	_, err := p.Import(context.Background(), srv.URL, RequestContext{})
	if !errors.Is(err, common.ErrUnrecognizedStructure) {
		t.Fatalf("Import() error = %v, want %v", err, common.ErrUnrecognizedStructure)
	}
}

func TestImportFetchErrorIsTerminal(t *testing.T) {
	p := NewPipeline(testImportConfig(), nil)
	_, err := p.Import(context.Background(), "ftp://example.com/recipe", RequestContext{})
	ce, ok := common.AsCustomError(err)
	if !ok || ce.Code != common.ErrCodeUnsupportedProtocol {
		t.Fatalf("Import() error = %v, want code %s", err, common.ErrCodeUnsupportedProtocol)
	}
}

func TestImportAIFallbackSuccess(t *testing.T) {
	srv := servePage(t, emptyPage)

	stub := &stubCompletion{response: "```json\n" +
		`{"name":"Prato misterioso","recipeIngredient":["1 cebola"],"recipeInstructions":["Refogar"],"recipeYield":"2","totalTime":"20","keywords":"","image":""}` +
		"\n```"}
	cfg := testImportConfig()
	cfg.AIFallbackEnabled = true
	cfg.AIMaxHTMLChars = 4096

	p := NewPipeline(cfg, stub)
	recipe, err := p.Import(context.Background(), srv.URL, RequestContext{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if !stub.called {
		t.Fatal("AI fallback was never reached")
	}
	if recipe.Title != "Prato misterioso" {
		t.Errorf("Title = %q", recipe.Title)
	}
	if recipe.CookingTime != 20 || recipe.Servings != 2 {
		t.Errorf("CookingTime/Servings = %d/%d", recipe.CookingTime, recipe.Servings)
	}
}

func TestImportAIFallbackRepairsUnquotedKeys(t *testing.T) {
	srv := servePage(t, emptyPage)

	stub := &stubCompletion{response: `{name: "Caldeirada", recipeIngredient: ["peixe"], recipeInstructions: ["estufar"]}`}
	cfg := testImportConfig()
	cfg.AIFallbackEnabled = true
	cfg.AIMaxHTMLChars = 4096

	p := NewPipeline(cfg, stub)
	recipe, err := p.Import(context.Background(), srv.URL, RequestContext{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if recipe.Title != "Caldeirada" {
		t.Errorf("Title = %q", recipe.Title)
	}
}

func TestImportAIFallbackParseFailure(t *testing.T) {
	srv := servePage(t, emptyPage)

	stub := &stubCompletion{response: "I could not find a recipe on this page, sorry!"}
	cfg := testImportConfig()
	cfg.AIFallbackEnabled = true
	cfg.AIMaxHTMLChars = 4096

	p := NewPipeline(cfg, stub)
	_, err := p.Import(context.Background(), srv.URL, RequestContext{})
	if !errors.Is(err, common.ErrAIParseFailure) {
		t.Fatalf("Import() error = %v, want %v", err, common.ErrAIParseFailure)
	}
}

func TestImportAICallErrorFallsThrough(t *testing.T) {
	srv := servePage(t, emptyPage)

	stub := &stubCompletion{err: errors.New("model unavailable")}
	cfg := testImportConfig()
	cfg.AIFallbackEnabled = true
	cfg.AIMaxHTMLChars = 4096

	p := NewPipeline(cfg, stub)
	_, err := p.Import(context.Background(), srv.URL, RequestContext{})
	if !errors.Is(err, common.ErrUnrecognizedStructure) {
		t.Fatalf("Import() error = %v, want %v", err, common.ErrUnrecognizedStructure)
	}
}

func TestImportAIDisabledStubNeverCalled(t *testing.T) {
	srv := servePage(t, emptyPage)

	stub := &stubCompletion{response: "{}"}
	cfg := testImportConfig()
	cfg.AIFallbackEnabled = false

	p := NewPipeline(cfg, stub)
	_, err := p.Import(context.Background(), srv.URL, RequestContext{})
	if !errors.Is(err, common.ErrUnrecognizedStructure) {
		t.Fatalf("Import() error = %v, want %v", err, common.ErrUnrecognizedStructure)
	}
	if stub.called {
		t.Error("AI stub was called although the fallback is disabled")
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(common.ErrUnrecognizedStructure) || !IsTerminal(common.ErrAIParseFailure) {
		t.Error("pipeline exhaustion errors should be terminal")
	}
	if IsTerminal(errors.New("random")) {
		t.Error("arbitrary errors should not be terminal")
	}
}
