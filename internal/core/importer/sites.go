package importer

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"recipe-importer/internal/pkg/common"
)

// siteSelectors 單一網站的選擇器組，依序嘗試（先精確、後寬鬆）
type siteSelectors struct {
	Title        []string
	Ingredients  []string
	Instructions []string
	Servings     []string
	Image        []string
}

// sectionHeaders 原始 HTML 章節標題後備：找到標題後收集兄弟元素直到下一個標題
type sectionHeaders struct {
	Ingredients []string
	Steps       []string
}

// siteDescriptor 一個網站 = （主機條件、選擇器組、可選的章節後備）三元組
// 新增網站只要加一筆資料，不用動流程
type siteDescriptor struct {
	Name     string
	Host     string // 網址包含此子字串才會啟用
	Sel      siteSelectors
	Sections *sectionHeaders
}

// siteRegistry 已知食譜網站；依序檢查，第一個符合的主機生效
var siteRegistry = []siteDescriptor{
	{
		Name: "allrecipes",
		Host: "allrecipes.com",
		Sel: siteSelectors{
			Title:        []string{"h1.article-heading", "h1"},
			Ingredients:  []string{"ul.mm-recipes-structured-ingredients__list li", "[class*=ingredients-item]", "[class*=structured-ingredients] li"},
			Instructions: []string{"div.mm-recipes-steps ol li p", "[class*=instructions-section] p", "[class*=recipes-steps] li"},
			Servings:     []string{"div.mm-recipes-details__value", "[class*=recipe-details] [class*=value]"},
			Image:        []string{"img.primary-image__image", "div.article-content img"},
		},
	},
	{
		Name: "bbcgoodfood",
		Host: "bbcgoodfood.com",
		Sel: siteSelectors{
			Title:        []string{"h1.heading-1", "h1"},
			Ingredients:  []string{"section.recipe__ingredients li", "[class*=ingredients-list] li"},
			Instructions: []string{"section.recipe__method-steps li div.editor-content", "section.recipe__method-steps li", "[class*=method-steps] li"},
			Servings:     []string{"ul.recipe__cook-and-prep li", "[class*=servings]"},
			Image:        []string{"div.post-header__image-container img", "img.image__img"},
		},
		Sections: &sectionHeaders{
			Ingredients: []string{"Ingredients"},
			Steps:       []string{"Method"},
		},
	},
	{
		Name: "simplyrecipes",
		Host: "simplyrecipes.com",
		Sel: siteSelectors{
			Title:        []string{"h1.heading__title", "h1"},
			Ingredients:  []string{"div.structured-ingredients li", "[class*=ingredient-list] li", "[class*=structured-ingredients] li"},
			Instructions: []string{"div#structured-project__steps_1-0 li p", "[class*=structured-project__steps] li", "[class*=section--instructions] p"},
			Servings:     []string{"div.recipe-serving", "[class*=project-meta] [class*=servings]"},
			Image:        []string{"img.primary-image", "figure img"},
		},
	},
	{
		Name: "food.com",
		Host: "food.com",
		Sel: siteSelectors{
			Title:        []string{"h1.svelte-1muv3s8", "h1"},
			Ingredients:  []string{"ul.ingredient-list li", "[class*=ingredient-list] li"},
			Instructions: []string{"ul.direction-list li", "[class*=direction-list] li", "[class*=directions] li"},
			Servings:     []string{"div.facts__item", "[class*=servings]"},
			Image:        []string{"div.primary-image img", "img.rec-photo"},
		},
	},
	{
		Name: "marmiton",
		Host: "marmiton.org",
		Sel: siteSelectors{
			Title:        []string{"h1.main-title", "h1"},
			Ingredients:  []string{"div.card-ingredient span.ingredient-name", "[class*=ingredient-list] li", "[class*=card-ingredient]"},
			Instructions: []string{"div.recipe-step-list__container p", "[class*=recipe-step] p"},
			Servings:     []string{"div.mrtn-recette_ingredients-counter", "[class*=ingredients-counter]"},
			Image:        []string{"img#af-diapo-desktop-0_img", "div.recipe-media-viewer img"},
		},
		Sections: &sectionHeaders{
			Ingredients: []string{"Ingrédients"},
			Steps:       []string{"Préparation", "Étapes"},
		},
	},
	{
		Name: "chefkoch",
		Host: "chefkoch.de",
		Sel: siteSelectors{
			Title:        []string{"h1.recipe-header__headline", "h1"},
			Ingredients:  []string{"table.ingredients td.td-right span", "table.ingredients td", "[class*=ingredients] td"},
			Instructions: []string{"div.rds-recipe-meta + article div.ds-box", "article.recipe-text div.ds-box", "[class*=recipe-text]"},
			Servings:     []string{"input.quantity-input", "[class*=recipe-servings]"},
			Image:        []string{"img.i-amphtml-fill-content", "div.recipe-image img"},
		},
		Sections: &sectionHeaders{
			Ingredients: []string{"Zutaten"},
			Steps:       []string{"Zubereitung"},
		},
	},
	{
		Name: "recetasgratis",
		Host: "recetasgratis.net",
		Sel: siteSelectors{
			Title:        []string{"h1.titulo--articulo", "h1"},
			Ingredients:  []string{"div.ingredientes li label", "div.ingredientes li", "[class*=ingrediente]"},
			Instructions: []string{"div.apartado p", "[class*=apartado] p"},
			Servings:     []string{"span.property.comensales", "[class*=comensales]"},
			Image:        []string{"div.imagen img", "figure img"},
		},
		Sections: &sectionHeaders{
			Ingredients: []string{"Ingredientes"},
			Steps:       []string{"Cómo hacer", "Preparación", "Elaboración"},
		},
	},
	{
		Name: "teleculinaria",
		Host: "teleculinaria.pt",
		Sel: siteSelectors{
			Title:        []string{"h1.entry-title", "h1"},
			Ingredients:  []string{"div.ingredients-list li", "div.wprm-recipe-ingredients-container li", "[class*=ingredient] li"},
			Instructions: []string{"div.preparation-list li", "div.wprm-recipe-instructions-container li", "[class*=instruction] li"},
			Servings:     []string{"span.wprm-recipe-servings", "[class*=doses]"},
			Image:        []string{"div.entry-image img", "figure img"},
		},
		Sections: &sectionHeaders{
			Ingredients: []string{"Ingredientes"},
			Steps:       []string{"Preparação", "Modo de preparação"},
		},
	},
	{
		Name: "pingodoce",
		Host: "pingodoce.pt",
		Sel: siteSelectors{
			Title:        []string{"h1.recipe-title", "h1"},
			Ingredients:  []string{"div.recipe-ingredients li", "[class*=ingredients] li"},
			Instructions: []string{"div.recipe-steps li", "div.recipe-preparation li", "[class*=preparation] li", "[class*=steps] li"},
			Servings:     []string{"div.recipe-info span.doses", "[class*=doses]", "[class*=porcoes]"},
			Image:        []string{"div.recipe-image img", "figure img"},
		},
		Sections: &sectionHeaders{
			Ingredients: []string{"Ingredientes"},
			Steps:       []string{"Preparação"},
		},
	},
	{
		Name: "sabornamesa",
		Host: "sabornamesa.com.br",
		Sel: siteSelectors{
			Title:        []string{"h1.entry-title", "h1"},
			Ingredients:  []string{"div.tasty-recipes-ingredients li", "[class*=ingredientes] li", "[class*=ingredient] li"},
			Instructions: []string{"div.tasty-recipes-instructions li", "[class*=preparo] li", "[class*=instruction] li"},
			Servings:     []string{"span.tasty-recipes-yield", "[class*=porcoes]", "[class*=rendimento]"},
			Image:        []string{"div.entry-content img", "figure img"},
		},
		Sections: &sectionHeaders{
			Ingredients: []string{"Ingredientes"},
			Steps:       []string{"Modo de preparo", "Preparo"},
		},
	},
}

// matchSite 回傳第一個主機符合的網站描述，沒有就回 nil
func matchSite(rawURL string) *siteDescriptor {
	lower := strings.ToLower(rawURL)
	for i := range siteRegistry {
		if strings.Contains(lower, siteRegistry[i].Host) {
			return &siteRegistry[i]
		}
	}
	return nil
}

// extractSiteSpecific 用網站描述對已抓取的 HTML 跑選擇器級聯
// 主機符合不保證有結果：湊不到任何食材或步驟時回傳 nil，讓管線繼續往下
func extractSiteSpecific(rawURL string, doc *goquery.Document) *ScrapedRecipe {
	site := matchSite(rawURL)
	if site == nil {
		return nil
	}

	out := &ScrapedRecipe{
		Name:               selectFirstText(doc, site.Sel.Title),
		Ingredients:        selectAllText(doc, site.Sel.Ingredients),
		RecipeInstructions: selectAllText(doc, site.Sel.Instructions),
		RecipeYield:        selectFirstText(doc, site.Sel.Servings),
		Image:              selectSiteImage(doc, site.Sel.Image, rawURL),
	}

	// 選擇器全滅時退回原始 HTML 的章節標題掃描
	if site.Sections != nil {
		if len(asStringList(out.Ingredients)) == 0 {
			out.Ingredients = collectSection(doc, site.Sections.Ingredients)
		}
		if len(asStringList(out.RecipeInstructions)) == 0 {
			out.RecipeInstructions = collectSection(doc, site.Sections.Steps)
		}
	}

	if len(asStringList(out.Ingredients)) == 0 && len(asStringList(out.RecipeInstructions)) == 0 {
		common.LogDebug("網站專用抓取無結果",
			zap.String("site", site.Name),
			zap.String("url", rawURL),
		)
		return nil
	}

	return out
}

// selectFirstText 依序嘗試選擇器，回傳第一個非空文字
func selectFirstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return normalizeWhitespace(text)
		}
	}
	return ""
}

// selectAllText 依序嘗試選擇器，回傳第一個命中選擇器的所有文字
func selectAllText(doc *goquery.Document, selectors []string) []string {
	for _, selector := range selectors {
		var items []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := normalizeWhitespace(sel.Text()); text != "" {
				items = append(items, text)
			}
		})
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

// selectSiteImage 優先取 Open Graph 圖片，否則跑圖片選擇器；
// 相對路徑以來源頁面的 origin 解析
func selectSiteImage(doc *goquery.Document, selectors []string, pageURL string) string {
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return resolveAgainstPage(og, pageURL)
		}
	}
	for _, selector := range selectors {
		if src, ok := doc.Find(selector).First().Attr("src"); ok {
			if src = strings.TrimSpace(src); src != "" {
				return resolveAgainstPage(src, pageURL)
			}
		}
	}
	return ""
}

// resolveAgainstPage 把相對圖片路徑解析成以來源頁面為基準的絕對網址
func resolveAgainstPage(imageURL, pageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return imageURL
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return imageURL
	}
	return base.ResolveReference(parsed).String()
}

// collectSection 找到指定文字的章節標題（h2/h3/h4），
// 收集其後的 li 與 p 兄弟元素，直到遇到下一個章節標題為止
func collectSection(doc *goquery.Document, headers []string) []string {
	var items []string
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		text := normalizeWhitespace(heading.Text())
		if !matchesHeader(text, headers) {
			return true
		}
		for node := heading.Next(); node.Length() > 0; node = node.Next() {
			if node.Is("h2, h3, h4") {
				break
			}
			node.Find("li").Each(func(_ int, li *goquery.Selection) {
				if t := normalizeWhitespace(li.Text()); t != "" {
					items = append(items, t)
				}
			})
			if node.Is("p") {
				if t := normalizeWhitespace(node.Text()); t != "" {
					items = append(items, t)
				}
			}
		}
		return false
	})
	return items
}

// matchesHeader 標題比對不分大小寫，允許前綴式標題（"Ingredientes para 4 doses"）
func matchesHeader(text string, headers []string) bool {
	lower := strings.ToLower(text)
	for _, header := range headers {
		if strings.HasPrefix(lower, strings.ToLower(header)) {
			return true
		}
	}
	return false
}

var whitespaceReplacer = strings.NewReplacer("\n", " ", "\t", " ", "\r", " ")

// normalizeWhitespace 壓掉換行與連續空白
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(whitespaceReplacer.Replace(s)), " ")
}
