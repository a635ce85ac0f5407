package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kamino-labs/kamino-portal/internal/services"
	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// AuditHandler 操作审计查询处理器
type AuditHandler struct {
	logSvc *services.OperationLogService
}

// NewAuditHandler 创建审计查询处理器
func NewAuditHandler(logSvc *services.OperationLogService) *AuditHandler {
	return &AuditHandler{logSvc: logSvc}
}

// GetOperationLogs 分页查询操作日志
func (h *AuditHandler) GetOperationLogs(c *gin.Context) {
	q := services.ListQuery{
		Username: c.Query("username"),
		Module:   c.Query("module"),
	}

	if successStr := c.Query("success"); successStr != "" {
		success := successStr == "true"
		q.Success = &success
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		q.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("pageSize")); err == nil {
		q.PageSize = pageSize
	}

	result, err := h.logSvc.List(q)
	if err != nil {
		logger.Error("查询操作日志失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询操作日志失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "查询成功",
		"data":    result,
	})
}
