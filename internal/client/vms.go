package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kamino-labs/kamino-portal/internal/models"
)

// GetAllVMs 获取全部虚拟机（后端返回裸数组）
func (c *Client) GetAllVMs(ctx context.Context) ([]models.VirtualMachine, error) {
	var vms []models.VirtualMachine
	if err := c.do(ctx, http.MethodGet, "/api/v1/vms", nil, &vms); err != nil {
		return nil, fmt.Errorf("获取虚拟机列表失败: %w", err)
	}
	if vms == nil {
		vms = []models.VirtualMachine{}
	}
	return vms, nil
}

// StartVM 启动虚拟机
func (c *Client) StartVM(ctx context.Context, node string, vmid int) error {
	path := fmt.Sprintf("/api/v1/vm/%s/%d/start", node, vmid)
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("启动虚拟机 %d 失败: %w", vmid, err)
	}
	return nil
}

// StopVM 关闭虚拟机（guest shutdown）
func (c *Client) StopVM(ctx context.Context, node string, vmid int) error {
	path := fmt.Sprintf("/api/v1/vm/%s/%d/shutdown", node, vmid)
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("关闭虚拟机 %d 失败: %w", vmid, err)
	}
	return nil
}

// RebootVM 重启虚拟机
func (c *Client) RebootVM(ctx context.Context, node string, vmid int) error {
	path := fmt.Sprintf("/api/v1/vm/%s/%d/reboot", node, vmid)
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("重启虚拟机 %d 失败: %w", vmid, err)
	}
	return nil
}
