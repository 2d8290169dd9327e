package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 支援 errors.Is / errors.As 鏈
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// AsCustomError 取出錯誤鏈上的 CustomError
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504

	// 匯入管線錯誤
	ErrCodeInvalidURL            = "INVALID_URL"            // 網址無法解析
	ErrCodeUnsupportedProtocol   = "UNSUPPORTED_PROTOCOL"   // 非 http/https
	ErrCodeFetchTimeout          = "FETCH_TIMEOUT"          // 來源頁面抓取超時
	ErrCodeResponseTooLarge      = "RESPONSE_TOO_LARGE"     // 來源頁面超過大小限制
	ErrCodeUpstreamError         = "UPSTREAM_ERROR"         // 來源站回應非 2xx
	ErrCodeUnrecognizedStructure = "UNRECOGNIZED_STRUCTURE" // 所有策略都無法解析
	ErrCodeAIParseFailure        = "AI_PARSE_FAILURE"       // AI 後備回應不是合法 JSON
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 匯入管線錯誤
	ErrInvalidURL            = NewError(ErrCodeInvalidURL, "無效的食譜網址", http.StatusBadRequest, nil)
	ErrUnsupportedProtocol   = NewError(ErrCodeUnsupportedProtocol, "僅支援 http 與 https 網址", http.StatusBadRequest, nil)
	ErrFetchTimeout          = NewError(ErrCodeFetchTimeout, "抓取來源頁面超時", http.StatusGatewayTimeout, nil)
	ErrResponseTooLarge      = NewError(ErrCodeResponseTooLarge, "來源頁面超過大小限制", http.StatusBadGateway, nil)
	ErrUnrecognizedStructure = NewError(ErrCodeUnrecognizedStructure, "無法辨識的食譜頁面結構", http.StatusUnprocessableEntity, nil)
	ErrAIParseFailure        = NewError(ErrCodeAIParseFailure, "AI 後備解析結果不是合法 JSON", http.StatusBadGateway, nil)

	// 業務錯誤
	ErrCacheFull      = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled  = NewError("CACHE_DISABLED", "緩存已禁用", http.StatusServiceUnavailable, nil)
	ErrAIServiceError = NewError("AI_SERVICE_ERROR", "AI 服務錯誤", http.StatusServiceUnavailable, nil)
)

// NewUpstreamError 創建帶有來源站狀態碼的錯誤
func NewUpstreamError(statusCode int) *CustomError {
	return NewError(
		ErrCodeUpstreamError,
		fmt.Sprintf("來源站回應錯誤（狀態碼 %d）", statusCode),
		http.StatusBadGateway,
		fmt.Errorf("upstream returned status %d", statusCode),
	)
}
