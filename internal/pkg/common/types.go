package common

// NormalizedRecipe 匯入管線的唯一輸出格式
// 注意：ingredients 與 steps 保證非空，數值欄位保證在範圍內，呼叫端依賴這個約定
type NormalizedRecipe struct {
	ID          string   `json:"id"`           // 以時間戳產生，每次匯入唯一
	Title       string   `json:"title"`        // 非空，缺漏時使用固定佔位字串
	CookingTime int      `json:"cooking_time"` // 分鐘，範圍 [5, 600]
	Difficulty  string   `json:"difficulty"`   // 自由文字，缺漏時使用預設值
	Servings    int      `json:"servings"`     // 正整數，小於 1000
	Cost        string   `json:"cost"`         // 匯入一律使用固定預設（抓取無成本訊號）
	Ingredients []string `json:"ingredients"`  // 永不為空
	Steps       []string `json:"steps"`        // 永不為空，已解碼 HTML entity
	Tags        []string `json:"tags"`         // 去重、首字大寫，最多 5 個
	Image       string   `json:"image"`        // 絕對網址，缺漏時使用內建預設圖
	CreatedAt   string   `json:"created_at"`   // 正規化當下的 ISO 時間戳
}

// 正規化預設值
const (
	DefaultTitle       = "Receita importada"
	DefaultCookingTime = 30
	DefaultServings    = 4
	DefaultDifficulty  = "Médio"
	DefaultCost        = "Médio"
	DefaultImage       = "assets/images/recipe-placeholder.png"

	PlaceholderIngredient = "Ingredientes não disponíveis"
	PlaceholderStep       = "Consulte a receita na página original"
)

// 正規化邊界
const (
	MinCookingTime = 5
	MaxCookingTime = 600
	MaxServings    = 1000
	MaxTags        = 5
	MaxTagLength   = 50
)

// ImportRequest 匯入請求
type ImportRequest struct {
	URL string `json:"url" binding:"required"` // 欲匯入的食譜網址
}
