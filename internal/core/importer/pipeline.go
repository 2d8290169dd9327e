package importer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"
)

// State 管線狀態
type State string

const (
	StateFetching               State = "fetching"
	StateTryingStructuredData   State = "trying_structured_data"
	StateTryingGenericScraper   State = "trying_generic_scraper"
	StateTryingSiteSpecific     State = "trying_site_specific"
	StateTryingGenericHeuristic State = "trying_generic_heuristic"
	StateTryingAIFallback       State = "trying_ai_fallback"
	StateSucceeded              State = "succeeded"
	StateFailed                 State = "failed"
)

// Pipeline 多策略食譜匯入管線
// 每次匯入獨立執行、無共享可變狀態；階段嚴格依序，第一個有結果的階段勝出
type Pipeline struct {
	cfg     config.ImportConfig
	fetcher *Fetcher
	ai      *AIExtractor // nil 表示 AI 後備停用
}

// NewPipeline 創建匯入管線；aiSvc 為 nil 或設定未啟用時，AI 後備不可達
func NewPipeline(cfg config.ImportConfig, aiSvc CompletionService) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		fetcher: NewFetcher(cfg),
	}
	if cfg.AIFallbackEnabled && aiSvc != nil {
		p.ai = NewAIExtractor(aiSvc, cfg.AIMaxHTMLChars)
	}
	return p
}

// stage 單一抓取策略：回傳 nil 代表無結果，管線落到下一個策略
type stage struct {
	name State
	run  func() (*ScrapedRecipe, error)
}

// Import 對單一網址執行整條匯入管線
// 成功時回傳一份完整且符合格式約定的食譜，失敗時回傳型別化錯誤，
// 絕不回傳半成品
func (p *Pipeline) Import(ctx context.Context, rawURL string, rc RequestContext) (*common.NormalizedRecipe, error) {
	requestID := requestIDFrom(ctx)
	state := StateFetching
	start := time.Now()

	htmlContent, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		// 沒有 HTML 任何階段都無法運作，抓取失敗對整條管線是終止性的
		common.LogWarn("來源頁面抓取失敗",
			zap.String("url", rawURL),
			zap.String("state", string(state)),
			zap.Error(err),
		)
		return nil, err
	}

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if docErr != nil {
		// 解析不了 DOM 時，僅依賴原始 HTML 的階段仍可運作
		common.LogWarn("DOM 解析失敗",
			zap.String("url", rawURL),
			zap.Error(docErr),
		)
		doc = nil
	}

	stages := []stage{
		{StateTryingStructuredData, func() (*ScrapedRecipe, error) {
			if doc == nil {
				return nil, nil
			}
			candidates := extractStructuredData(doc)
			if len(candidates) == 0 {
				return nil, nil
			}
			// 只用文件順序的第一個候選
			return candidates[0], nil
		}},
		{StateTryingGenericScraper, func() (*ScrapedRecipe, error) {
			return extractWithScraperLib(rawURL), nil
		}},
		{StateTryingSiteSpecific, func() (*ScrapedRecipe, error) {
			if doc == nil {
				return nil, nil
			}
			return extractSiteSpecific(rawURL, doc), nil
		}},
		{StateTryingGenericHeuristic, func() (*ScrapedRecipe, error) {
			if doc == nil {
				return nil, nil
			}
			return extractGenericHeuristic(rawURL, doc), nil
		}},
	}
	if p.ai != nil {
		stages = append(stages, stage{StateTryingAIFallback, func() (*ScrapedRecipe, error) {
			return p.ai.Extract(ctx, htmlContent, requestID)
		}})
	}

	for _, st := range stages {
		state = st.name
		stageStart := time.Now()

		scraped, err := runStage(st)
		if err != nil {
			// 唯一會走到這裡的是 AI 回應解析失敗，對管線是終止性的
			return nil, err
		}

		matched := scraped != nil && hasContent(scraped)
		common.LogStage(string(st.name), matched, time.Since(stageStart), requestID)
		if !matched {
			continue
		}

		recipe := Normalize(scraped, rc)
		state = StateSucceeded
		common.LogInfo("食譜匯入成功",
			zap.String("url", rawURL),
			zap.String("stage", string(st.name)),
			zap.String("state", string(state)),
			zap.Int("ingredients", len(recipe.Ingredients)),
			zap.Int("steps", len(recipe.Steps)),
			zap.Duration("耗時", time.Since(start)),
			zap.String("request_id", requestID),
		)
		return &recipe, nil
	}

	state = StateFailed
	common.LogWarn("所有策略都無法解析食譜",
		zap.String("url", rawURL),
		zap.String("state", string(state)),
		zap.Bool("ai_fallback_enabled", p.ai != nil),
		zap.String("request_id", requestID),
	)
	return nil, common.ErrUnrecognizedStructure
}

// runStage 執行單一策略並吸收 panic：
// 策略內的任何意外都視為「本階段無結果」，唯獨 AI 解析錯誤往上傳
func runStage(st stage) (scraped *ScrapedRecipe, err error) {
	defer func() {
		if r := recover(); r != nil {
			common.LogWarn("抓取策略 panic，視為無結果",
				zap.String("stage", string(st.name)),
				zap.Any("panic", r),
			)
			scraped, err = nil, nil
		}
	}()
	return st.run()
}

// hasContent 階段間唯一的轉移條件：
// 過濾後仍有至少一個食材或一個步驟才算有結果
func hasContent(s *ScrapedRecipe) bool {
	return len(cleanIngredients(s)) > 0 || len(cleanSteps(s)) > 0
}

type contextKey string

// RequestIDKey 放在 context 裡的請求 ID 鍵
const RequestIDKey contextKey = "request_id"

func requestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// IsTerminal 判斷錯誤是否為管線終止性錯誤（供呼叫端區分記錄層級）
func IsTerminal(err error) bool {
	return errors.Is(err, common.ErrUnrecognizedStructure) || errors.Is(err, common.ErrAIParseFailure)
}
