package importer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// 跨語言的通用選擇器（EN / PT / ES / FR / DE）
// 依序嘗試，第一個命中的選擇器決定整份清單
var (
	genericIngredientSelectors = []string{
		`[itemprop="recipeIngredient"]`,
		`[itemprop="ingredients"]`,
		"ul.recipe-ingredients li",
		"ul.ingredients li",
		"div.ingredients li",
		"div.ingredientes li",
		"div.ingredients-list li",
		"ul.zutaten li",
		"div.ingredients-section li",
		`[class*="ingredient"] li`,
		`[class*="ingrediente"] li`,
	}

	genericInstructionSelectors = []string{
		`[itemprop="recipeInstructions"] li`,
		`[itemprop="recipeInstructions"] p`,
		`[itemprop="recipeInstructions"]`,
		"ol.instructions li",
		"div.instructions li",
		"div.directions li",
		"div.method li",
		"div.preparation li",
		"div.preparacao li",
		"div.preparacion li",
		"div.zubereitung li",
		`[class*="instruction"] li`,
		`[class*="direction"] li`,
		`[class*="preparation"] p`,
		`[class*="step"] li`,
	}

	genericTitleSelectors = []string{
		`[itemprop="name"]`,
		"h1.recipe-title",
		"h1.entry-title",
		"h1",
	}

	genericServingsSelectors = []string{
		`[itemprop="recipeYield"]`,
		`[class*="servings"]`,
		`[class*="yield"]`,
		`[class*="porcoes"]`,
		`[class*="doses"]`,
		`[class*="comensales"]`,
	}
)

// extractGenericHeuristic 與網站無關的最後防線：
// 通用多語言選擇器，外加一層極寬鬆的後備（h1 標題 + 含 "ingred" 的 li）
func extractGenericHeuristic(rawURL string, doc *goquery.Document) *ScrapedRecipe {
	out := &ScrapedRecipe{
		Name:               selectFirstText(doc, genericTitleSelectors),
		Ingredients:        selectAllText(doc, genericIngredientSelectors),
		RecipeInstructions: selectAllText(doc, genericInstructionSelectors),
		RecipeYield:        selectFirstText(doc, genericServingsSelectors),
		Image:              selectSiteImage(doc, []string{"figure img", "article img"}, rawURL),
	}

	// 極寬鬆後備：任何 class 或內文帶有 "ingred" 痕跡的 li
	if len(asStringList(out.Ingredients)) == 0 {
		var loose []string
		doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
			class, _ := sel.Attr("class")
			text := normalizeWhitespace(sel.Text())
			if text == "" {
				return
			}
			if strings.Contains(strings.ToLower(class), "ingred") ||
				strings.Contains(strings.ToLower(text), "ingred") {
				loose = append(loose, text)
			}
		})
		out.Ingredients = loose
	}

	if len(asStringList(out.Ingredients)) == 0 && len(asStringList(out.RecipeInstructions)) == 0 {
		return nil
	}

	return out
}
