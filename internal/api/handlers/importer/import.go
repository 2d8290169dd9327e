package importer

import (
	"context"
	"net/http"

	importerCore "recipe-importer/internal/core/importer"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜匯入處理程序
type Handler struct {
	pipeline *importerCore.Pipeline
}

// NewHandler 創建新的食譜匯入處理程序
func NewHandler(pipeline *importerCore.Pipeline) *Handler {
	return &Handler{
		pipeline: pipeline,
	}
}

// HandleImport 處理食譜匯入請求
// 成功回傳正規化後的食譜，失敗回傳型別化錯誤，絕無半成品
func (h *Handler) HandleImport(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}

	common.LogInfo("開始處理食譜匯入請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req common.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "Invalid request format",
		})
		return
	}

	ctx := context.WithValue(c.Request.Context(), importerCore.RequestIDKey, requestID)
	rc := importerCore.RequestContext{
		BaseOrigin: requestOrigin(c),
		SourceURL:  req.URL,
	}

	recipe, err := h.pipeline.Import(ctx, req.URL, rc)
	if err != nil {
		writeImportError(c, err, requestID, req.URL)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// writeImportError 把管線的型別化錯誤映射成 HTTP 回應
func writeImportError(c *gin.Context, err error, requestID, url string) {
	ce, ok := common.AsCustomError(err)
	if !ok {
		common.LogError("食譜匯入發生未預期錯誤",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("url", url),
		)
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrCodeInternalError,
			Message: "Recipe import failed",
		})
		return
	}

	common.LogWarn("食譜匯入失敗",
		zap.String("code", ce.Code),
		zap.String("request_id", requestID),
		zap.String("url", url),
		zap.Error(err),
	)
	c.JSON(ce.Status, common.ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	})
}

// requestOrigin 取出本服務自身的 origin，相對圖片路徑以此為基準
func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + c.Request.Host
}
