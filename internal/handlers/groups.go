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

// GroupHandler 用户组管理处理器
type GroupHandler struct {
	client *client.Client
	hub    *EventHub
}

// NewGroupHandler 创建用户组管理处理器
func NewGroupHandler(c *client.Client, hub *EventHub) *GroupHandler {
	return &GroupHandler{client: c, hub: hub}
}

// groupView 用户组列表视图
func groupView() listview.View[models.Group] {
	return listview.View[models.Group]{
		SearchFields: func(g models.Group) []string {
			return []string{g.Name}
		},
		Columns: map[string]listview.Column[models.Group]{
			"name": {
				Compare: listview.TextCompare(func(g models.Group) string { return g.Name }),
			},
			"user_count": {
				Compare: listview.NumberCompare(func(g models.Group) float64 {
					if g.UserCount == nil {
						return 0
					}
					return float64(*g.UserCount)
				}),
			},
			"created_at": {
				Compare: listview.TimeCompare(func(g models.Group) int64 {
					if g.CreatedAt == nil {
						return 0
					}
					return g.CreatedAt.Unix()
				}),
				NewestFirst: true,
			},
		},
	}
}

// GetGroups 获取用户组列表
func (h *GroupHandler) GetGroups(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	groups, err := h.client.GetGroups(c.Request.Context())
	if err != nil {
		logger.Error("获取用户组列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	result := groupView().Apply(groups, q)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取用户组列表成功",
		"data":    result,
	})
}

// CreateGroups 批量创建用户组，单次最多 50 个
func (h *GroupHandler) CreateGroups(c *gin.Context) {
	var req namesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	if len(req.Names) == 0 || len(req.Names) > models.MaxBulkGroups {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": fmt.Sprintf("单次创建数量必须在 1-%d 之间", models.MaxBulkGroups),
		})
		return
	}
	for _, name := range req.Names {
		if err := models.ValidateGroupName(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": err.Error(),
			})
			return
		}
	}

	result := bulk.Run(c.Request.Context(), req.Names, 1, func(ctx context.Context, name string) error {
		return h.client.CreateGroup(ctx, name)
	})
	h.respondBulk(c, "创建", result)
}

// RenameGroup 重命名用户组
func (h *GroupHandler) RenameGroup(c *gin.Context) {
	oldName := c.Param("name")
	var req struct {
		NewName string `json:"new_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	if err := models.ValidateGroupName(req.NewName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}
	if err := h.ensureModifiable(c, oldName); err != nil {
		return
	}

	if err := h.client.RenameGroup(c.Request.Context(), oldName, req.NewName); err != nil {
		logger.Error("重命名用户组失败: %s -> %s, err=%v", oldName, req.NewName, err)
		h.hub.Publish("error", "group", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	message := fmt.Sprintf("用户组 %s 已重命名为 %s", oldName, req.NewName)
	h.hub.Publish("success", "group", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}

// BulkDeleteGroups 批量删除用户组，保护组显式指定时返回 403
func (h *GroupHandler) BulkDeleteGroups(c *gin.Context) {
	var req namesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	groups, err := h.client.GetGroups(c.Request.Context())
	if err != nil {
		logger.Error("获取用户组列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	protected := make(map[string]bool, len(groups))
	existing := make([]string, 0, len(groups))
	for _, g := range groups {
		existing = append(existing, g.Name)
		if !g.CanModify {
			protected[g.Name] = true
		}
	}

	sel := listview.NewSelection()
	for _, name := range req.Names {
		if protected[name] || models.IsProtectedGroup(name) {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": fmt.Sprintf("用户组 %s 受保护，不允许删除", name),
			})
			return
		}
		sel.Toggle(name)
	}
	sel.Prune(existing)

	result := bulk.Run(c.Request.Context(), sel.IDs(), 1, func(ctx context.Context, name string) error {
		return h.client.DeleteGroup(ctx, name)
	})
	h.respondBulk(c, "删除", result)
}

// membersRequest 组成员变更请求体
type membersRequest struct {
	Users []string `json:"users" binding:"required"`
	Group string   `json:"group" binding:"required"`
}

// AddUsers 向用户组批量添加成员，后端只接受单次调用
func (h *GroupHandler) AddUsers(c *gin.Context) {
	var req membersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}
	if err := h.ensureModifiable(c, req.Group); err != nil {
		return
	}

	if err := h.client.AddUsersToGroup(c.Request.Context(), req.Users, req.Group); err != nil {
		logger.Error("添加组成员失败: group=%s, err=%v", req.Group, err)
		h.hub.Publish("error", "group", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	message := fmt.Sprintf("已向用户组 %s 添加 %d 个成员", req.Group, len(req.Users))
	h.hub.Publish("success", "group", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}

// RemoveUsers 从用户组批量移除成员
func (h *GroupHandler) RemoveUsers(c *gin.Context) {
	var req membersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}
	if err := h.ensureModifiable(c, req.Group); err != nil {
		return
	}

	if err := h.client.RemoveUsersFromGroup(c.Request.Context(), req.Users, req.Group); err != nil {
		logger.Error("移除组成员失败: group=%s, err=%v", req.Group, err)
		h.hub.Publish("error", "group", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	message := fmt.Sprintf("已从用户组 %s 移除 %d 个成员", req.Group, len(req.Users))
	h.hub.Publish("success", "group", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}

// ensureModifiable 校验用户组是否允许变更，不允许时直接写入响应
func (h *GroupHandler) ensureModifiable(c *gin.Context, name string) error {
	if models.IsProtectedGroup(name) {
		c.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": fmt.Sprintf("用户组 %s 受保护，不允许修改", name),
		})
		return fmt.Errorf("protected group")
	}

	groups, err := h.client.GetGroups(c.Request.Context())
	if err != nil {
		logger.Error("获取用户组列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return err
	}
	for _, g := range groups {
		if g.Name == name && !g.CanModify {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": fmt.Sprintf("用户组 %s 受保护，不允许修改", name),
			})
			return fmt.Errorf("protected group")
		}
	}
	return nil
}

// respondBulk 汇总批量操作结果并广播事件
func (h *GroupHandler) respondBulk(c *gin.Context, action string, result bulk.Result) {
	if result.OK() {
		message := fmt.Sprintf("%s %d 个用户组成功", action, len(result.Succeeded))
		h.hub.Publish("success", "group", message)
		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"message": message,
			"data":    result,
		})
		return
	}

	message := fmt.Sprintf("%s用户组部分失败: 成功 %d 个，失败 %d 个",
		action, len(result.Succeeded), len(result.Failed))
	logger.Warn("批量%s用户组存在失败: %+v", action, result.Failed)
	h.hub.Publish("error", "group", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    207,
		"message": message,
		"data":    result,
	})
}
