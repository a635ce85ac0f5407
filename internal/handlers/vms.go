package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kamino-labs/kamino-portal/internal/client"
	"github.com/kamino-labs/kamino-portal/internal/listview"
	"github.com/kamino-labs/kamino-portal/internal/models"
	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// VMHandler 虚拟机管理处理器
type VMHandler struct {
	client *client.Client
	hub    *EventHub
	// Proxmox Web 控制台基础地址，控制台链接由门户统一拼接
	consoleURL string
}

// NewVMHandler 创建虚拟机管理处理器
func NewVMHandler(c *client.Client, hub *EventHub, consoleURL string) *VMHandler {
	return &VMHandler{
		client:     c,
		hub:        hub,
		consoleURL: strings.TrimSuffix(consoleURL, "/"),
	}
}

// vmView 虚拟机列表视图：按名称、节点、VMID、状态和资源池搜索
func vmView() listview.View[models.VirtualMachine] {
	return listview.View[models.VirtualMachine]{
		SearchFields: func(vm models.VirtualMachine) []string {
			return []string{vm.Name, vm.Node, strconv.Itoa(vm.VMID), vm.Status, vm.Pool}
		},
		Columns: map[string]listview.Column[models.VirtualMachine]{
			"name": {
				Compare: listview.TextCompare(func(vm models.VirtualMachine) string { return vm.Name }),
			},
			"node": {
				Compare: listview.TextCompare(func(vm models.VirtualMachine) string { return vm.Node }),
			},
			"vmid": {
				Compare: listview.NumberCompare(func(vm models.VirtualMachine) float64 { return float64(vm.VMID) }),
			},
			"status": {
				Compare: listview.TextCompare(func(vm models.VirtualMachine) string { return vm.Status }),
			},
			"uptime": {
				Compare:     listview.TimeCompare(func(vm models.VirtualMachine) int64 { return vm.Uptime }),
				NewestFirst: true,
			},
			"mem": {
				Compare: listview.NumberCompare(func(vm models.VirtualMachine) float64 { return float64(vm.Mem) }),
			},
		},
	}
}

// GetVMs 获取虚拟机列表
// 每台虚拟机附带根据配置拼接的 Proxmox 控制台链接
func (h *VMHandler) GetVMs(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	vms, err := h.client.GetAllVMs(c.Request.Context())
	if err != nil {
		logger.Error("获取虚拟机列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	if h.consoleURL != "" {
		for i := range vms {
			vms[i].ConsoleURL = fmt.Sprintf("%s/#v1:0:=qemu%%2F%d", h.consoleURL, vms[i].VMID)
		}
	}

	result := vmView().Apply(vms, q)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取虚拟机列表成功",
		"data":    result,
	})
}

// StartVM 启动虚拟机
func (h *VMHandler) StartVM(c *gin.Context) {
	h.powerAction(c, "启动", h.client.StartVM)
}

// ShutdownVM 关闭虚拟机
func (h *VMHandler) ShutdownVM(c *gin.Context) {
	h.powerAction(c, "关闭", h.client.StopVM)
}

// RebootVM 重启虚拟机
func (h *VMHandler) RebootVM(c *gin.Context) {
	h.powerAction(c, "重启", h.client.RebootVM)
}

// powerAction 执行电源操作
// 后端立即返回受理结果，状态变化需要等待下一次列表刷新
func (h *VMHandler) powerAction(c *gin.Context, action string, op func(ctx context.Context, node string, vmid int) error) {
	node := c.Param("node")
	vmid, err := strconv.Atoi(c.Param("vmid"))
	if err != nil || vmid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的 VMID: " + c.Param("vmid"),
		})
		return
	}

	if err := op(c.Request.Context(), node, vmid); err != nil {
		logger.Error("%s虚拟机失败: node=%s, vmid=%d, err=%v", action, node, vmid, err)
		h.hub.Publish("error", "vm", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	message := fmt.Sprintf("虚拟机 %d %s指令已下发", vmid, action)
	h.hub.Publish("success", "vm", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}
