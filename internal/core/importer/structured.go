package importer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"recipe-importer/internal/pkg/common"
)

// extractStructuredData 解析文件中所有內嵌的 JSON-LD 區塊，
// 依文件順序回傳所有食譜候選；壞掉的區塊直接略過，不影響其他區塊
func extractStructuredData(doc *goquery.Document) []*ScrapedRecipe {
	var candidates []*ScrapedRecipe

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		var payload any
		if err := common.ParseJSON(sel.Text(), &payload); err != nil {
			common.LogDebug("JSON-LD 區塊解析失敗，略過",
				zap.Int("block_index", i),
				zap.Error(err),
			)
			return
		}
		candidates = append(candidates, recipeNodes(payload)...)
	})

	return candidates
}

// recipeNodes 處理 JSON-LD 的三種形狀：單一物件、物件陣列、帶 @graph 的容器
func recipeNodes(payload any) []*ScrapedRecipe {
	switch t := payload.(type) {
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			return recipeNodes(graph)
		}
		if isRecipeNode(t) {
			return []*ScrapedRecipe{scrapedFromMap(t)}
		}
		return nil
	case []any:
		var out []*ScrapedRecipe
		for _, item := range t {
			out = append(out, recipeNodes(item)...)
		}
		return out
	default:
		return nil
	}
}

// isRecipeNode 檢查 @type 是否包含 "recipe"
// 刻意用寬鬆的子字串比對，容忍 "Recipe"、"recipe" 或複合型別陣列
func isRecipeNode(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.Contains(strings.ToLower(t), "recipe")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.Contains(strings.ToLower(s), "recipe") {
				return true
			}
		}
	}
	return false
}
