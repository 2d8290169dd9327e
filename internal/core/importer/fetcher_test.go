package importer

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"
)

func testImportConfig() config.ImportConfig {
	return config.ImportConfig{
		FetchTimeout: 5 * time.Second,
		MaxHTMLBytes: 64 * 1024,
		UserAgent:    "test-agent/1.0",
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantCode string
	}{
		{"valid https", "https://example.com/recipe", ""},
		{"valid http", "http://example.com/recipe", ""},
		{"empty", "", common.ErrCodeInvalidURL},
		{"no host", "/recipes/123", common.ErrCodeInvalidURL},
		{"garbage", "not a url at all", common.ErrCodeInvalidURL},
		{"ftp scheme", "ftp://example.com/recipe", common.ErrCodeUnsupportedProtocol},
		{"file scheme", "file:///etc/passwd", common.ErrCodeInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateURL(tt.url)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateURL(%q) = %v, want nil", tt.url, err)
				}
				return
			}
			ce, ok := common.AsCustomError(err)
			if !ok || ce.Code != tt.wantCode {
				t.Errorf("ValidateURL(%q) = %v, want code %s", tt.url, err, tt.wantCode)
			}
		})
	}
}

func TestFetchOK(t *testing.T) {
	const body = "<html><body><h1>Recipe</h1></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent/1.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(testImportConfig())
	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != body {
		t.Errorf("Fetch() = %q, want %q", got, body)
	}
}

func TestFetchGzipBody(t *testing.T) {
	const body = "<html><body>compressed recipe</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(body))
		_ = gz.Close()
	}))
	defer srv.Close()

	f := NewFetcher(testImportConfig())
	got, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != body {
		t.Errorf("Fetch() = %q, want %q", got, body)
	}
}

func TestFetchUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(testImportConfig())
	_, err := f.Fetch(context.Background(), srv.URL)
	ce, ok := common.AsCustomError(err)
	if !ok || ce.Code != common.ErrCodeUpstreamError {
		t.Fatalf("Fetch() error = %v, want code %s", err, common.ErrCodeUpstreamError)
	}
	if ce.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", ce.Status)
	}
	if !strings.Contains(ce.Message, "404") {
		t.Errorf("Message %q should carry the upstream status code", ce.Message)
	}
}

func TestFetchResponseTooLargeByContentLength(t *testing.T) {
	big := strings.Repeat("x", 8*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(big))
	}))
	defer srv.Close()

	cfg := testImportConfig()
	cfg.MaxHTMLBytes = 1024
	f := NewFetcher(cfg)
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, common.ErrResponseTooLarge) {
		t.Fatalf("Fetch() error = %v, want %v", err, common.ErrResponseTooLarge)
	}
}

func TestFetchResponseTooLargeStreaming(t *testing.T) {
	// 分塊傳輸不帶 Content-Length，上限要在讀取過程中生效
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer does not support flushing")
			return
		}
		chunk := strings.Repeat("y", 1024)
		for i := 0; i < 8; i++ {
			_, _ = w.Write([]byte(chunk))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	cfg := testImportConfig()
	cfg.MaxHTMLBytes = 2048
	f := NewFetcher(cfg)
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, common.ErrResponseTooLarge) {
		t.Fatalf("Fetch() error = %v, want %v", err, common.ErrResponseTooLarge)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testImportConfig()
	cfg.FetchTimeout = 50 * time.Millisecond
	f := NewFetcher(cfg)
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, common.ErrFetchTimeout) {
		t.Fatalf("Fetch() error = %v, want %v", err, common.ErrFetchTimeout)
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // 立刻關掉，模擬連不上的來源站

	f := NewFetcher(testImportConfig())
	_, err := f.Fetch(context.Background(), url)
	ce, ok := common.AsCustomError(err)
	if !ok || ce.Code != common.ErrCodeUpstreamError {
		t.Fatalf("Fetch() error = %v, want code %s", err, common.ErrCodeUpstreamError)
	}
}
