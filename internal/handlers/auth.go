package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kamino-labs/kamino-portal/internal/client"
	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// AuthHandler 认证处理器
// 凭据校验和令牌签发都在后端，门户只透传并在 /me 返回本请求的身份
type AuthHandler struct {
	client *client.Client
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(c *client.Client) *AuthHandler {
	return &AuthHandler{client: c}
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	result, err := h.client.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.Warn("登录失败: username=%s, err=%v", req.Username, err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": err.Error(),
		})
		return
	}

	logger.Info("用户登录成功: %s", result.Username)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "登录成功",
		"data":    result,
	})
}

// Logout 用户登出
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.client.Logout(c.Request.Context()); err != nil {
		logger.Warn("登出通知后端失败: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "登出成功",
	})
}

// Me 返回当前登录用户信息（来自 JWT 声明）
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"username":   c.GetString("username"),
			"is_admin":   c.GetBool("is_admin"),
			"is_creator": c.GetBool("is_creator"),
		},
	})
}
