package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kamino-labs/kamino-portal/internal/models"
)

// usersEnvelope 用户列表返回 {users: [...]} 信封
type usersEnvelope struct {
	Users []models.User `json:"users"`
}

// GetAllUsers 获取全部用户
func (c *Client) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var envelope usersEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", nil, &envelope); err != nil {
		return nil, fmt.Errorf("获取用户列表失败: %w", err)
	}
	if envelope.Users == nil {
		return []models.User{}, nil
	}
	return envelope.Users, nil
}

// CreateUser 创建单个用户
// 批量创建由门户循环逐个调用，后端没有批量端点
func (c *Client) CreateUser(ctx context.Context, name, password string) error {
	payload := map[string]string{"name": name, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/user", payload, nil); err != nil {
		return fmt.Errorf("创建用户 %s 失败: %w", name, err)
	}
	return nil
}

// DeleteUser 删除用户
func (c *Client) DeleteUser(ctx context.Context, name string) error {
	path := fmt.Sprintf("/api/v1/user/%s", url.PathEscape(name))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("删除用户 %s 失败: %w", name, err)
	}
	return nil
}

// SetUserEnabled 启用/禁用用户
func (c *Client) SetUserEnabled(ctx context.Context, name string, enabled bool) error {
	path := fmt.Sprintf("/api/v1/user/%s/enabled", url.PathEscape(name))
	payload := map[string]bool{"enabled": enabled}
	if err := c.do(ctx, http.MethodPatch, path, payload, nil); err != nil {
		return fmt.Errorf("更新用户 %s 状态失败: %w", name, err)
	}
	return nil
}
