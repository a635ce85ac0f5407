package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kamino-labs/kamino-portal/internal/client"
	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// DashboardHandler 仪表盘处理器
type DashboardHandler struct {
	client *client.Client
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(c *client.Client) *DashboardHandler {
	return &DashboardHandler{client: c}
}

// GetStats 获取仪表盘统计
// 不做缓存，每次加载都反映后端的实时状态
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.client.GetDashboardStats(c.Request.Context())
	if err != nil {
		logger.Error("获取仪表盘统计失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取统计数据成功",
		"data":    stats,
	})
}
