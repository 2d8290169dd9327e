package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"recipe-importer/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// Client OpenRouter API 客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建 OpenRouter 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL("https://openrouter.ai/api/v1").
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-importer.app").
		SetHeader("X-Title", "Recipe Importer")

	return &Client{
		config: cfg,
		client: client,
	}
}

// GenerateResponse 生成回應
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	// 去除前後空白，保留換行（prompt 內含 HTML，壓行會破壞結構）
	prompt = strings.TrimSpace(prompt)

	req := map[string]interface{}{
		"model": c.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": c.config.OpenRouter.MaxTokens,
	}

	// 發送請求
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API returned error: %s", resp.String())
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	return result.Choices[0].Message.Content, nil
}
