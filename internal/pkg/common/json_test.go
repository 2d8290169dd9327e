package common

import (
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json untouched", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Here you go: {"a":1} hope it helps`, `{"a":1}`},
		{"no object at all", "sorry, nothing here", "sorry, nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.input); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	if err := ParseJSON(`{"a":1} trailing`, &v); err == nil {
		t.Error("ParseJSON should reject trailing data")
	}
}

func TestParseJSONStrict(t *testing.T) {
	type target struct {
		Name string `json:"name"`
	}
	var v target
	if err := ParseJSONStrict(`{"name":"x","extra":true}`, &v); err == nil {
		t.Error("ParseJSONStrict should reject unknown fields")
	}
	if err := ParseJSON(`{"name":"x","extra":true}`, &v); err != nil {
		t.Errorf("ParseJSON should accept unknown fields, got %v", err)
	}
}

func TestQuoteJSONKeys(t *testing.T) {
	got := QuoteJSONKeys(`{name: "x", count: 2}`)
	want := `{"name": "x", "count": 2}`
	if got != want {
		t.Errorf("QuoteJSONKeys() = %q, want %q", got, want)
	}
}
