package importer

import (
	"go.uber.org/zap"

	gorecipe "github.com/kkyr/go-recipe/pkg/recipe"

	"recipe-importer/internal/pkg/common"
)

// extractWithScraperLib 委派給第三方通用食譜抓取函式庫（自行抓取頁面）
// 任何錯誤都吞掉並回傳 nil，讓管線落到下一個策略，絕不往上傳
func extractWithScraperLib(rawURL string) (result *ScrapedRecipe) {
	defer func() {
		if r := recover(); r != nil {
			common.LogWarn("通用抓取函式庫 panic，視為無結果",
				zap.Any("panic", r),
				zap.String("url", rawURL),
			)
			result = nil
		}
	}()

	scraper, err := gorecipe.ScrapeURL(rawURL)
	if err != nil {
		common.LogDebug("通用抓取函式庫無結果",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return nil
	}

	out := &ScrapedRecipe{}
	if name, ok := scraper.Name(); ok {
		out.Name = name
	}
	if ingredients, ok := scraper.Ingredients(); ok {
		out.Ingredients = ingredients
	}
	if instructions, ok := scraper.Instructions(); ok {
		out.RecipeInstructions = instructions
	}
	if image, ok := scraper.ImageURL(); ok {
		out.Image = image
	}
	if total, ok := scraper.TotalTime(); ok {
		out.TotalTime = int(total.Minutes())
	} else if cook, ok := scraper.CookTime(); ok {
		out.CookTime = int(cook.Minutes())
	}
	if yields, ok := scraper.Yields(); ok {
		out.RecipeYield = yields
	}

	return out
}
