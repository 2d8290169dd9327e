package importer

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ScrapedRecipe 各抓取策略產出的中間結果
// 欄位一律不可信任：可能缺漏、型別錯誤，甚至夾帶網址或 base64 資料，
// 只能透過本檔的 accessor 讀取，由 Normalizer 收斂成 NormalizedRecipe
type ScrapedRecipe struct {
	Name               any
	Title              any
	Ingredients        any
	RecipeIngredient   any
	Instructions       any
	RecipeInstructions any
	Image              any
	TotalTime          any
	CookTime           any
	PrepTime           any
	Yield              any
	RecipeYield        any
	Keywords           any
	Difficulty         any
}

// scrapedFromMap 將結構化資料（JSON-LD、AI 回應）的鍵值對應到 ScrapedRecipe
func scrapedFromMap(m map[string]any) *ScrapedRecipe {
	return &ScrapedRecipe{
		Name:               m["name"],
		Title:              m["title"],
		Ingredients:        m["ingredients"],
		RecipeIngredient:   m["recipeIngredient"],
		Instructions:       m["instructions"],
		RecipeInstructions: m["recipeInstructions"],
		Image:              m["image"],
		TotalTime:          m["totalTime"],
		CookTime:           m["cookTime"],
		PrepTime:           m["prepTime"],
		Yield:              m["yield"],
		RecipeYield:        m["recipeYield"],
		Keywords:           m["keywords"],
		Difficulty:         m["difficulty"],
	}
}

// asString 盡力把任意值轉成字串，失敗時回傳空字串
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		// 整數值不帶小數點
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// firstString 回傳第一個非空字串
func firstString(values ...any) string {
	for _, v := range values {
		if s := strings.TrimSpace(asString(v)); s != "" {
			return s
		}
	}
	return ""
}

// asStringList 把「字串、字串陣列、{text}/{name} 物件陣列」攤平成字串切片
func asStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := entryText(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		if s := entryText(t); s != "" {
			return []string{s}
		}
		return nil
	default:
		return nil
	}
}

// entryText 從單一列表項目取出文字：純字串或 {text}/{name} 物件
func entryText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if s := strings.TrimSpace(asString(t["text"])); s != "" {
			return s
		}
		return strings.TrimSpace(asString(t["name"]))
	default:
		return strings.TrimSpace(asString(v))
	}
}
