package importer

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"

	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"
)

// Fetcher 負責抓取來源頁面的 HTML
// 單次嘗試、硬性超時、大小上限；抓取失敗對整條管線是終止性的
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	maxBytes  int64
}

// NewFetcher 創建新的抓取器
func NewFetcher(cfg config.ImportConfig) *Fetcher {
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		// 自行處理 Accept-Encoding 與解壓縮
		DisableCompression: true,
	}

	return &Fetcher{
		client:    &http.Client{Transport: transport},
		userAgent: cfg.UserAgent,
		timeout:   cfg.FetchTimeout,
		maxBytes:  cfg.MaxHTMLBytes,
	}
}

// ValidateURL 驗證網址，不觸發任何網路請求
func ValidateURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return nil, common.ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, common.ErrUnsupportedProtocol
	}
	return parsed, nil
}

// Fetch 抓取單一網址的 HTML 內容
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", common.ErrInvalidURL
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8,pt;q=0.6")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", common.ErrFetchTimeout
		}
		return "", common.NewError(common.ErrCodeUpstreamError, "無法連線到來源站", http.StatusBadGateway, err)
	}
	defer resp.Body.Close()

	// Content-Length 宣告超過上限時直接失敗，不讀取 body
	if resp.ContentLength > f.maxBytes {
		common.LogWarn("來源頁面宣告大小超過上限",
			zap.Int64("content_length", resp.ContentLength),
			zap.Int64("max_bytes", f.maxBytes),
			zap.String("url", parsed.String()),
		)
		return "", common.ErrResponseTooLarge
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", common.NewUpstreamError(resp.StatusCode)
	}

	body, err := f.readBody(resp)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// readBody 依 Content-Encoding 解壓縮並在讀取過程中防禦性地檢查大小
func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)
	var closers []io.Closer

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, common.NewError(common.ErrCodeUpstreamError, "來源頁面解壓縮失敗", http.StatusBadGateway, err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBytes+1))
	if err != nil {
		if isTimeout(err) {
			return nil, common.ErrFetchTimeout
		}
		return nil, common.NewError(common.ErrCodeUpstreamError, "讀取來源頁面失敗", http.StatusBadGateway, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, common.ErrResponseTooLarge
	}
	return body, nil
}

// isTimeout 判斷錯誤是否來自超時
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
