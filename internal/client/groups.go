package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kamino-labs/kamino-portal/internal/models"
)

// groupsEnvelope 组列表返回 {groups: [...], count: n} 信封
type groupsEnvelope struct {
	Groups []models.Group `json:"groups"`
	Count  int            `json:"count"`
}

// GetGroups 获取全部用户组
func (c *Client) GetGroups(ctx context.Context) ([]models.Group, error) {
	var envelope groupsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/groups", nil, &envelope); err != nil {
		return nil, fmt.Errorf("获取用户组列表失败: %w", err)
	}
	if envelope.Groups == nil {
		return []models.Group{}, nil
	}
	return envelope.Groups, nil
}

// CreateGroup 创建用户组
func (c *Client) CreateGroup(ctx context.Context, name string) error {
	payload := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/v1/group", payload, nil); err != nil {
		return fmt.Errorf("创建用户组 %s 失败: %w", name, err)
	}
	return nil
}

// RenameGroup 重命名用户组
func (c *Client) RenameGroup(ctx context.Context, oldName, newName string) error {
	path := fmt.Sprintf("/api/v1/group/%s/rename", url.PathEscape(oldName))
	payload := map[string]string{"new_name": newName}
	if err := c.do(ctx, http.MethodPut, path, payload, nil); err != nil {
		return fmt.Errorf("重命名用户组 %s 失败: %w", oldName, err)
	}
	return nil
}

// DeleteGroup 删除用户组
func (c *Client) DeleteGroup(ctx context.Context, name string) error {
	path := fmt.Sprintf("/api/v1/group/%s", url.PathEscape(name))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("删除用户组 %s 失败: %w", name, err)
	}
	return nil
}

// AddUsersToGroup 批量把用户加入一个组（后端支持一次调用传用户数组）
func (c *Client) AddUsersToGroup(ctx context.Context, users []string, group string) error {
	payload := map[string]interface{}{"users": users, "group": group}
	if err := c.do(ctx, http.MethodPost, "/api/v1/groups/add-users", payload, nil); err != nil {
		return fmt.Errorf("添加用户到组 %s 失败: %w", group, err)
	}
	return nil
}

// RemoveUsersFromGroup 批量把用户移出一个组
func (c *Client) RemoveUsersFromGroup(ctx context.Context, users []string, group string) error {
	payload := map[string]interface{}{"users": users, "group": group}
	if err := c.do(ctx, http.MethodPost, "/api/v1/groups/remove-users", payload, nil); err != nil {
		return fmt.Errorf("从组 %s 移除用户失败: %w", group, err)
	}
	return nil
}
