package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kamino-labs/kamino-portal/internal/models"
)

// GetDashboardStats 获取仪表盘统计
// 统计由后端实时计算，门户每次页面加载都重新获取，不做缓存
func (c *Client) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/dashboard", nil, &stats); err != nil {
		return nil, fmt.Errorf("获取仪表盘统计失败: %w", err)
	}
	return &stats, nil
}
