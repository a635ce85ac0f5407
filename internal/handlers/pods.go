package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kamino-labs/kamino-portal/internal/bulk"
	"github.com/kamino-labs/kamino-portal/internal/client"
	"github.com/kamino-labs/kamino-portal/internal/listview"
	"github.com/kamino-labs/kamino-portal/internal/models"
	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// PodHandler 已部署 Pod 管理处理器
type PodHandler struct {
	client *client.Client
	hub    *EventHub
}

// NewPodHandler 创建 Pod 管理处理器
func NewPodHandler(c *client.Client, hub *EventHub) *PodHandler {
	return &PodHandler{client: c, hub: hub}
}

// podView Pod 列表视图：按名称、描述和来源模板搜索
func podView() listview.View[models.DeployedPod] {
	return listview.View[models.DeployedPod]{
		SearchFields: func(p models.DeployedPod) []string {
			fields := []string{p.Name, p.Description}
			if p.Template != nil {
				fields = append(fields, p.Template.Name)
			}
			return fields
		},
		Columns: map[string]listview.Column[models.DeployedPod]{
			"name": {
				Compare: listview.TextCompare(func(p models.DeployedPod) string { return p.Name }),
			},
			"vm_count": {
				Compare: listview.NumberCompare(func(p models.DeployedPod) float64 {
					return float64(len(p.VMs))
				}),
			},
		},
	}
}

// GetPods 获取已部署 Pod 列表
func (h *PodHandler) GetPods(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	pods, err := h.client.GetAllDeployedPods(c.Request.Context())
	if err != nil {
		logger.Error("获取 Pod 列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	result := podView().Apply(pods, q)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取 Pod 列表成功",
		"data":    result,
	})
}

// DeployPod 从模板部署 Pod
func (h *PodHandler) DeployPod(c *gin.Context) {
	var req struct {
		Template string `json:"template" binding:"required"`
		Name     string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	if err := h.client.DeployPod(c.Request.Context(), req.Template, req.Name); err != nil {
		logger.Error("部署 Pod 失败: template=%s, name=%s, err=%v", req.Template, req.Name, err)
		h.hub.Publish("error", "pod", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	message := fmt.Sprintf("Pod %s 部署已开始，克隆完成前列表中可能暂不可见", req.Name)
	h.hub.Publish("success", "pod", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}

// DeletePod 删除单个 Pod
// 后端异步销毁虚拟机，返回成功只表示任务已受理
func (h *PodHandler) DeletePod(c *gin.Context) {
	name := c.Param("name")
	if err := h.client.DeletePod(c.Request.Context(), name); err != nil {
		logger.Error("删除 Pod 失败: name=%s, err=%v", name, err)
		h.hub.Publish("error", "pod", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	message := fmt.Sprintf("Pod %s 删除任务已提交", name)
	h.hub.Publish("success", "pod", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}

// BulkDeletePods 批量删除 Pod
// 逐个调用后端接口，单项失败不影响其余项
func (h *PodHandler) BulkDeletePods(c *gin.Context) {
	var req namesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	pods, err := h.client.GetAllDeployedPods(c.Request.Context())
	if err != nil {
		logger.Error("获取 Pod 列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	existing := make([]string, 0, len(pods))
	for _, p := range pods {
		existing = append(existing, p.Name)
	}

	sel := listview.NewSelection()
	for _, name := range req.Names {
		sel.Toggle(name)
	}
	sel.Prune(existing)

	result := bulk.Run(c.Request.Context(), sel.IDs(), 1, func(ctx context.Context, name string) error {
		return h.client.DeletePod(ctx, name)
	})

	if result.OK() {
		message := fmt.Sprintf("删除 %d 个 Pod 的任务已提交", len(result.Succeeded))
		h.hub.Publish("success", "pod", message)
		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"message": message,
			"data":    result,
		})
		return
	}

	message := fmt.Sprintf("批量删除 Pod 部分失败: 成功 %d 个，失败 %d 个",
		len(result.Succeeded), len(result.Failed))
	logger.Warn("批量删除 Pod 存在失败: %+v", result.Failed)
	h.hub.Publish("error", "pod", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    207,
		"message": message,
		"data":    result,
	})
}
