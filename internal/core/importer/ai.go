package importer

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"recipe-importer/internal/pkg/common"
)

// CompletionService AI 補全服務的最小介面（由 core/ai/service 實作）
type CompletionService interface {
	ProcessRequest(ctx context.Context, prompt string) (string, error)
}

// AIExtractor AI 後備解析器，僅在設定明確啟用時可達
type AIExtractor struct {
	svc      CompletionService
	maxChars int
}

// NewAIExtractor 創建 AI 後備解析器
func NewAIExtractor(svc CompletionService, maxChars int) *AIExtractor {
	return &AIExtractor{
		svc:      svc,
		maxChars: maxChars,
	}
}

const aiPromptTemplate = `Extract the recipe from the following HTML.
Respond with strict JSON only, no prose, no markdown, exactly this shape:
{"name":"","recipeIngredient":["..."],"recipeInstructions":["..."],"recipeYield":"","totalTime":"","keywords":"","image":""}
Omit nothing; use empty strings or empty arrays for missing data.

HTML:
%s`

// Extract 把截斷後的 HTML 前綴交給語言模型，解析其 JSON 回應
// 回應不是合法 JSON 時，整條管線終止（這是最後一道防線，錯誤不能被吞掉）
func (e *AIExtractor) Extract(ctx context.Context, htmlContent string, requestID string) (*ScrapedRecipe, error) {
	// 截斷 HTML 前綴，控制 token 成本；切點退到符文邊界，避免送出壞掉的 UTF-8
	truncated := htmlContent
	if len(truncated) > e.maxChars {
		cut := e.maxChars
		for cut > 0 && !utf8.RuneStart(truncated[cut]) {
			cut--
		}
		truncated = truncated[:cut]
	}

	content, err := e.svc.ProcessRequest(ctx, fmt.Sprintf(aiPromptTemplate, truncated))
	if err != nil {
		// AI 呼叫本身失敗視為本階段無結果，不終止管線
		common.LogWarn("AI 後備呼叫失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		return nil, nil
	}

	cleaned := common.StripCodeFence(content)

	var payload map[string]any
	if err := common.ParseJSON(cleaned, &payload); err != nil {
		// 模型偶爾漏掉鍵的雙引號，補上後再試一次
		if retryErr := common.ParseJSON(common.QuoteJSONKeys(cleaned), &payload); retryErr != nil {
			common.LogError("AI 後備回應不是合法 JSON",
				zap.Error(err),
				zap.Int("response_length", len(content)),
				zap.String("request_id", requestID),
			)
			return nil, common.ErrAIParseFailure
		}
	}

	return scrapedFromMap(payload), nil
}
