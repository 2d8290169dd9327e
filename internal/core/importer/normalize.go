package importer

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"recipe-importer/internal/pkg/common"
)

// RequestContext 正規化時需要的請求端資訊
type RequestContext struct {
	// BaseOrigin 匯入服務自身的 origin（協定 + 主機）。
	// 相對圖片路徑刻意以服務自身為基準解析，而不是來源站，
	// 讓相對路徑落在匯入服務的資產命名空間
	BaseOrigin string
	// SourceURL 來源頁面網址，僅供記錄
	SourceURL string
}

var (
	// P 後面必須接數字或 T 才算 ISO 時長，"Prep 30 mins" 這類自由文字不算
	isoPrefixRe   = regexp.MustCompile(`(?i)^P[\dT]`)
	isoDurationRe = regexp.MustCompile(`(?i)^P(?:\d+D)?T?(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?`)
	hoursRe       = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?|horas?|heures?|stunden?|h)\b`)
	minutesRe     = regexp.MustCompile(`(?i)(\d+)\s*(?:minutes?|mins?|minutos?|minuten?|m)\b`)
	bareNumberRe  = regexp.MustCompile(`^\s*(\d+)\s*$`)

	// 各語言的份量表達：關鍵字在數字前或後都有
	servingsAfterRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:servings?|people|persons?|personas?|pessoas|porç(?:ões|ão)|porcoes|porciones|doses?|comensales|portionen|parts?|personnes?)`)
	servingsBeforeRe = regexp.MustCompile(`(?i)(?:serves|makes|para|per|pour|für|for)\s*(\d+)`)
	firstIntRe       = regexp.MustCompile(`(\d+)`)

	nonAlphanumericRe = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
)

// Normalize 把任何抓取策略的產出收斂成唯一的輸出格式
// 純函式且永不失敗：所有缺漏或畸形欄位都退化為文件化的預設值
func Normalize(s *ScrapedRecipe, rc RequestContext) common.NormalizedRecipe {
	if s == nil {
		s = &ScrapedRecipe{}
	}

	ingredients := cleanIngredients(s)
	if len(ingredients) == 0 {
		ingredients = []string{common.PlaceholderIngredient}
	}

	steps := cleanSteps(s)
	if len(steps) == 0 {
		steps = []string{common.PlaceholderStep}
	}

	title := firstString(s.Name, s.Title)
	if title != "" {
		title = strings.TrimSpace(html.UnescapeString(title))
	}
	if title == "" {
		title = common.DefaultTitle
	}

	difficulty := firstString(s.Difficulty)
	if difficulty == "" {
		difficulty = common.DefaultDifficulty
	}

	now := time.Now()
	return common.NormalizedRecipe{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Title:       title,
		CookingTime: normalizeCookingTime(s),
		Difficulty:  difficulty,
		Servings:    normalizeServings(s),
		Cost:        common.DefaultCost,
		Ingredients: ingredients,
		Steps:       steps,
		Tags:        normalizeTags(s.Keywords),
		Image:       resolveImage(s.Image, rc),
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}
}

// normalizeCookingTime 依序嘗試 totalTime、cookTime、prepTime，
// 取第一個落在 [5, 600] 分鐘內的值
func normalizeCookingTime(s *ScrapedRecipe) int {
	for _, candidate := range []any{s.TotalTime, s.CookTime, s.PrepTime} {
		if minutes, ok := parseDurationMinutes(candidate); ok {
			if minutes >= common.MinCookingTime && minutes <= common.MaxCookingTime {
				return minutes
			}
		}
	}
	return common.DefaultCookingTime
}

// parseDurationMinutes 接受 ISO-8601 時長、自由文字（可重複時/分群組）或純數字（視為分鐘）
func parseDurationMinutes(v any) (int, bool) {
	raw := strings.TrimSpace(asString(v))
	if raw == "" {
		return 0, false
	}

	// 純數字直接當分鐘
	if m := bareNumberRe.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}

	// ISO-8601，例如 PT1H20M
	if isoPrefixRe.MatchString(raw) {
		if m := isoDurationRe.FindStringSubmatch(raw); m != nil && (m[1] != "" || m[2] != "") {
			total := 0.0
			if m[1] != "" {
				h, _ := strconv.ParseFloat(m[1], 64)
				total += h * 60
			}
			if m[2] != "" {
				mi, _ := strconv.ParseFloat(m[2], 64)
				total += mi
			}
			if total > 0 {
				return int(total), true
			}
		}
		return 0, false
	}

	// 自由文字，支援多個時/分群組（"1 hour 30 minutes"、"2h 15m"）
	total := 0
	for _, m := range hoursRe.FindAllStringSubmatch(raw, -1) {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	// 先移除已匹配的小時群組，避免 "1h" 的 "1" 再被分鐘規則撿走
	remainder := hoursRe.ReplaceAllString(raw, " ")
	for _, m := range minutesRe.FindAllStringSubmatch(remainder, -1) {
		mi, _ := strconv.Atoi(m[1])
		total += mi
	}
	if total > 0 {
		return total, true
	}
	return 0, false
}

// normalizeServings 以多語言關鍵字規則解析份量，找不到時退回字串中第一個整數
func normalizeServings(s *ScrapedRecipe) int {
	for _, candidate := range []any{s.Yield, s.RecipeYield} {
		if n, ok := parseServings(candidate); ok {
			return n
		}
	}
	return common.DefaultServings
}

func parseServings(v any) (int, bool) {
	raw := strings.TrimSpace(asString(v))
	if raw == "" {
		return 0, false
	}

	for _, re := range []*regexp.Regexp{servingsAfterRe, servingsBeforeRe, firstIntRe} {
		if m := re.FindStringSubmatch(raw); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if n > 0 && n < common.MaxServings {
				return n, true
			}
			// 數字超界視為沒解析到，讓預設值接手
			return 0, false
		}
	}
	return 0, false
}

// cleanIngredients 攤平並過濾食材清單；先取 ingredients，為空時退回 recipeIngredient
func cleanIngredients(s *ScrapedRecipe) []string {
	out := filterLines(asStringList(s.Ingredients), true)
	if len(out) == 0 {
		out = filterLines(asStringList(s.RecipeIngredient), true)
	}
	return out
}

// cleanSteps 攤平並過濾步驟清單；先取 recipeInstructions，為空時退回 instructions
// 每一行都做 HTML entity 解碼
func cleanSteps(s *ScrapedRecipe) []string {
	lines := filterLines(asStringList(s.RecipeInstructions), false)
	if len(lines) == 0 {
		lines = filterLines(asStringList(s.Instructions), false)
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if decoded := strings.TrimSpace(html.UnescapeString(line)); decoded != "" {
			out = append(out, decoded)
		}
	}
	return out
}

// filterLines 去除空行以及夾帶網址（或 base64 資料）的行，
// 防止散落的嵌入資源混進食材與步驟
func filterLines(lines []string, rejectBase64 bool) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "http") {
			continue
		}
		if rejectBase64 && strings.Contains(lower, "base64") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// normalizeTags 切開逗號分隔的 keywords，去重、去符號、首字大寫，
// 丟棄超過 50 字元的標籤，最多保留 5 個
func normalizeTags(keywords any) []string {
	raw := strings.TrimSpace(asString(keywords))
	if raw == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0, common.MaxTags)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(nonAlphanumericRe.ReplaceAllString(part, ""))
		if tag == "" || len(tag) > common.MaxTagLength {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, capitalize(tag))
		if len(tags) >= common.MaxTags {
			break
		}
	}
	return tags
}

// capitalize 首字母大寫，其餘維持小寫
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// resolveImage 接受字串、陣列（取第一個有效項）或 {url} 物件；
// 相對路徑以呼叫端服務自身的 origin 解析
func resolveImage(v any, rc RequestContext) string {
	candidate := imageCandidate(v)
	if candidate == "" {
		return common.DefaultImage
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return common.DefaultImage
	}
	if parsed.IsAbs() {
		return candidate
	}
	if strings.HasPrefix(candidate, "//") {
		return "https:" + candidate
	}

	base, err := url.Parse(rc.BaseOrigin)
	if err != nil || base.Host == "" {
		return common.DefaultImage
	}
	return base.ResolveReference(parsed).String()
}

// imageCandidate 從各種形狀中挑出第一個看起來像網址的字串
func imageCandidate(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := imageCandidate(item); s != "" {
				return s
			}
		}
		return ""
	case []string:
		for _, item := range t {
			if s := strings.TrimSpace(item); s != "" {
				return s
			}
		}
		return ""
	case map[string]any:
		return strings.TrimSpace(asString(t["url"]))
	default:
		return ""
	}
}
