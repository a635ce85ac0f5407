package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kamino-labs/kamino-portal/internal/models"
)

// GetAllDeployedPods 获取全部已部署 Pod（后端返回裸数组）
func (c *Client) GetAllDeployedPods(ctx context.Context) ([]models.DeployedPod, error) {
	var pods []models.DeployedPod
	if err := c.do(ctx, http.MethodGet, "/api/v1/pods", nil, &pods); err != nil {
		return nil, fmt.Errorf("获取 Pod 列表失败: %w", err)
	}
	if pods == nil {
		pods = []models.DeployedPod{}
	}
	return pods, nil
}

// DeployPod 从模板部署一个 Pod
func (c *Client) DeployPod(ctx context.Context, template, podName string) error {
	payload := map[string]string{"template": template, "name": podName}
	if err := c.do(ctx, http.MethodPost, "/api/v1/pod/deploy", payload, nil); err != nil {
		return fmt.Errorf("部署 Pod %s 失败: %w", podName, err)
	}
	return nil
}

// DeletePod 删除 Pod
// 后端把实际清理排入异步队列，本调用成功只代表删除已受理
func (c *Client) DeletePod(ctx context.Context, name string) error {
	path := fmt.Sprintf("/api/v1/pod/%s", url.PathEscape(name))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("删除 Pod %s 失败: %w", name, err)
	}
	return nil
}
