package importer

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAIExtractorTruncatesOnRuneBoundary(t *testing.T) {
	stub := &stubCompletion{response: `{"name":"x","recipeIngredient":["a"],"recipeInstructions":["b"]}`}
	e := NewAIExtractor(stub, 10)

	// 每個中文字佔 3 個位元組，10 不是 3 的倍數，切點會落在字元中間
	htmlContent := strings.Repeat("食", 8)
	if _, err := e.Extract(context.Background(), htmlContent, ""); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !stub.called {
		t.Fatal("completion service was never called")
	}
	if !utf8.ValidString(stub.prompt) {
		t.Error("prompt contains invalid UTF-8 after truncation")
	}
	if strings.Contains(stub.prompt, "�") {
		t.Error("prompt contains replacement characters")
	}
}

func TestAIExtractorShortInputUntouched(t *testing.T) {
	stub := &stubCompletion{response: `{"name":"x","recipeIngredient":["a"],"recipeInstructions":["b"]}`}
	e := NewAIExtractor(stub, 4096)

	htmlContent := "<html><body>short</body></html>"
	if _, err := e.Extract(context.Background(), htmlContent, ""); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(stub.prompt, htmlContent) {
		t.Error("short input should be passed through whole")
	}
}
