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

// UserHandler 用户管理处理器
type UserHandler struct {
	client *client.Client
	hub    *EventHub
}

// NewUserHandler 创建用户管理处理器
func NewUserHandler(c *client.Client, hub *EventHub) *UserHandler {
	return &UserHandler{client: c, hub: hub}
}

// userView 用户列表视图：按用户名和所属组搜索，支持用户名与创建时间排序
func userView() listview.View[models.User] {
	return listview.View[models.User]{
		SearchFields: func(u models.User) []string {
			fields := []string{u.Name}
			for _, g := range u.Groups {
				fields = append(fields, g.Name)
			}
			return fields
		},
		Columns: map[string]listview.Column[models.User]{
			"name": {
				Compare: listview.TextCompare(func(u models.User) string { return u.Name }),
			},
			"created_at": {
				Compare: listview.TimeCompare(func(u models.User) int64 {
					if u.CreatedAt == nil {
						return 0
					}
					return u.CreatedAt.Unix()
				}),
				NewestFirst: true,
			},
		},
	}
}

// GetUsers 获取用户列表
// 每次请求从后端拉取全量数据，在门户侧完成过滤、排序和分页
func (h *UserHandler) GetUsers(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	users, err := h.client.GetAllUsers(c.Request.Context())
	if err != nil {
		logger.Error("获取用户列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	result := userView().Apply(users, q)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取用户列表成功",
		"data":    result,
	})
}

// CreateUsers 批量创建用户
func (h *UserHandler) CreateUsers(c *gin.Context) {
	var req struct {
		Names    []string `json:"names" binding:"required"`
		Password string   `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	for _, name := range req.Names {
		if err := models.ValidateUsername(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": err.Error(),
			})
			return
		}
	}

	result := bulk.Run(c.Request.Context(), req.Names, 1, func(ctx context.Context, name string) error {
		return h.client.CreateUser(ctx, name, req.Password)
	})
	h.respondBulk(c, "创建", result)
}

// BulkDeleteUsers 批量删除用户
// 管理员账号受保护，显式指定时返回 403；已不存在的用户名从集合中剔除
func (h *UserHandler) BulkDeleteUsers(c *gin.Context) {
	var req namesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	users, err := h.client.GetAllUsers(c.Request.Context())
	if err != nil {
		logger.Error("获取用户列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	admins := make(map[string]bool, len(users))
	existing := make([]string, 0, len(users))
	for _, u := range users {
		existing = append(existing, u.Name)
		if u.IsAdmin {
			admins[u.Name] = true
		}
	}

	sel := listview.NewSelection()
	for _, name := range req.Names {
		if admins[name] {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": fmt.Sprintf("管理员账号 %s 不允许删除", name),
			})
			return
		}
		sel.Toggle(name)
	}
	sel.Prune(existing)

	result := bulk.Run(c.Request.Context(), sel.IDs(), 1, func(ctx context.Context, name string) error {
		return h.client.DeleteUser(ctx, name)
	})
	h.respondBulk(c, "删除", result)
}

// SetUserEnabled 启用/禁用用户
func (h *UserHandler) SetUserEnabled(c *gin.Context) {
	name := c.Param("name")
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	users, err := h.client.GetAllUsers(c.Request.Context())
	if err != nil {
		logger.Error("获取用户列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}
	for _, u := range users {
		if u.Name == name && u.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": fmt.Sprintf("管理员账号 %s 不允许禁用", name),
			})
			return
		}
	}

	if err := h.client.SetUserEnabled(c.Request.Context(), name, *req.Enabled); err != nil {
		logger.Error("更新用户状态失败: name=%s, err=%v", name, err)
		h.hub.Publish("error", "user", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	action := "禁用"
	if *req.Enabled {
		action = "启用"
	}
	message := fmt.Sprintf("用户 %s 已%s", name, action)
	h.hub.Publish("success", "user", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}

// respondBulk 汇总批量操作结果并广播事件
func (h *UserHandler) respondBulk(c *gin.Context, action string, result bulk.Result) {
	if result.OK() {
		message := fmt.Sprintf("%s %d 个用户成功", action, len(result.Succeeded))
		h.hub.Publish("success", "user", message)
		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"message": message,
			"data":    result,
		})
		return
	}

	message := fmt.Sprintf("%s用户部分失败: 成功 %d 个，失败 %d 个",
		action, len(result.Succeeded), len(result.Failed))
	logger.Warn("批量%s用户存在失败: %+v", action, result.Failed)
	h.hub.Publish("error", "user", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    207,
		"message": message,
		"data":    result,
	})
}
