package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"recipe-importer/internal/core/ai/cache"
	"recipe-importer/internal/core/ai/openrouter"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"
)

// Service AI 服務：OpenRouter 客戶端加上回應快取與請求頻率閘門
type Service struct {
	config      *config.Config
	client      *openrouter.Client
	cacheStore  cache.Store
	mu          sync.Mutex
	lastRequest time.Time
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, cacheStore cache.Store) (*Service, error) {
	return &Service{
		config:     cfg,
		client:     openrouter.NewClient(cfg),
		cacheStore: cacheStore,
	}, nil
}

// ProcessRequest 統一對外方法：查快取、呼叫模型、寫快取
func (s *Service) ProcessRequest(ctx context.Context, prompt string) (string, error) {
	if err := s.checkRequestRate(); err != nil {
		return "", err
	}

	// 檢查緩存
	if s.config.Cache.Enabled && s.cacheStore != nil {
		if val, err := s.cacheStore.Get(ctx, prompt); err == nil && val != "" {
			return val, nil
		}
	}

	start := time.Now()
	content, err := s.client.GenerateResponse(ctx, prompt)
	common.LogAICall(prompt, time.Since(start), err, "")
	if err != nil {
		return "", err
	}

	if s.config.Cache.Enabled && s.cacheStore != nil {
		_ = s.cacheStore.Set(ctx, prompt, content)
	}

	return content, nil
}

// checkRequestRate 檢查請求頻率
func (s *Service) checkRequestRate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.config.RateLimit.Enabled && now.Sub(s.lastRequest) < s.config.RateLimit.Window/time.Duration(max(s.config.RateLimit.Requests, 1)) {
		return errors.New("request rate limit exceeded")
	}

	s.lastRequest = now
	return nil
}

// max 返回兩個整數中的較大值
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
