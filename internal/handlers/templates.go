package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kamino-labs/kamino-portal/internal/client"
	"github.com/kamino-labs/kamino-portal/internal/listview"
	"github.com/kamino-labs/kamino-portal/internal/models"
	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// TemplateHandler Pod 模板管理处理器
type TemplateHandler struct {
	client *client.Client
	hub    *EventHub
	// 封面图上传大小上限（字节）
	maxUploadBytes int64
}

// NewTemplateHandler 创建模板管理处理器
func NewTemplateHandler(c *client.Client, hub *EventHub, maxUploadMB int) *TemplateHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &TemplateHandler{
		client:         c,
		hub:            hub,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// templateView 模板列表视图：按名称、作者和描述搜索
func templateView() listview.View[models.PodTemplate] {
	return listview.View[models.PodTemplate]{
		SearchFields: func(t models.PodTemplate) []string {
			return []string{t.Name, t.Authors, t.Description}
		},
		Columns: map[string]listview.Column[models.PodTemplate]{
			"name": {
				Compare: listview.TextCompare(func(t models.PodTemplate) string { return t.Name }),
			},
			"deployments": {
				Compare: listview.NumberCompare(func(t models.PodTemplate) float64 {
					return float64(t.Deployments)
				}),
			},
			"vm_count": {
				Compare: listview.NumberCompare(func(t models.PodTemplate) float64 {
					return float64(t.VMCount)
				}),
			},
			"created_at": {
				Compare: listview.TimeCompare(func(t models.PodTemplate) int64 {
					if t.CreatedAt == nil {
						return 0
					}
					return t.CreatedAt.Unix()
				}),
				NewestFirst: true,
			},
		},
	}
}

// GetTemplates 获取已发布模板列表
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	templates, err := h.client.GetAllPodTemplates(c.Request.Context())
	if err != nil {
		logger.Error("获取模板列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	result := templateView().Apply(templates, q)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取模板列表成功",
		"data":    result,
	})
}

// GetUnpublishedTemplates 获取未发布模板列表
// 数据量小，不走分页管线
func (h *TemplateHandler) GetUnpublishedTemplates(c *gin.Context) {
	templates, err := h.client.GetUnpublishedTemplates(c.Request.Context())
	if err != nil {
		logger.Error("获取未发布模板列表失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取未发布模板列表成功",
		"data":    templates,
	})
}

// templateRequest 模板编辑请求体
type templateRequest struct {
	Description string `json:"description"`
	Authors     string `json:"authors"`
	VMCount     int    `json:"vm_count"`
	ImagePath   string `json:"image_path"`
	Visible     *bool  `json:"template_visible"`
}

// EditTemplate 编辑模板元数据
func (h *TemplateHandler) EditTemplate(c *gin.Context) {
	name := c.Param("name")
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	if err := models.ValidateVMCount(req.VMCount, models.EditVMCountMax); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	payload := client.TemplatePayload{
		Name:        name,
		Description: req.Description,
		Authors:     req.Authors,
		VMCount:     req.VMCount,
		ImagePath:   req.ImagePath,
	}
	if req.Visible != nil {
		payload.Visible = *req.Visible
	}

	if err := h.client.EditTemplate(c.Request.Context(), name, payload); err != nil {
		logger.Error("编辑模板失败: name=%s, err=%v", name, err)
		h.hub.Publish("error", "template", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	message := fmt.Sprintf("模板 %s 已更新", name)
	h.hub.Publish("success", "template", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}

// SetVisibility 切换模板可见性
func (h *TemplateHandler) SetVisibility(c *gin.Context) {
	name := c.Param("name")
	var req struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	if err := h.client.SetTemplateVisibility(c.Request.Context(), name, *req.Visible); err != nil {
		logger.Error("更新模板可见性失败: name=%s, err=%v", name, err)
		h.hub.Publish("error", "template", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	state := "隐藏"
	if *req.Visible {
		state = "可见"
	}
	message := fmt.Sprintf("模板 %s 已设为%s", name, state)
	h.hub.Publish("success", "template", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}

// DeleteTemplate 删除模板
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	name := c.Param("name")
	if err := h.client.DeleteTemplate(c.Request.Context(), name); err != nil {
		logger.Error("删除模板失败: name=%s, err=%v", name, err)
		h.hub.Publish("error", "template", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	message := fmt.Sprintf("模板 %s 已删除", name)
	h.hub.Publish("success", "template", message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
	})
}

// UploadImage 上传模板封面图
// 门户只做大小和类型校验，文件由后端落盘并返回相对路径
func (h *TemplateHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少 image 文件字段",
		})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": fmt.Sprintf("图片大小超过限制 %d MB", h.maxUploadBytes>>20),
		})
		return
	}
	if !isImageFilename(header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "只支持 png/jpg/jpeg/gif/webp 格式",
		})
		return
	}

	path, err := h.client.UploadTemplateImage(c.Request.Context(), header.Filename, file)
	if err != nil {
		logger.Error("上传模板图片失败: filename=%s, err=%v", header.Filename, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "上传成功",
		"data":    gin.H{"path": path},
	})
}

// GetImage 代理模板封面图
// 前端 <img> 标签无法携带 Authorization 头直连后端，由门户转发
func (h *TemplateHandler) GetImage(c *gin.Context) {
	imagePath := strings.TrimPrefix(c.Param("path"), "/")
	if imagePath == "" || strings.Contains(imagePath, "..") {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的图片路径",
		})
		return
	}

	data, contentType, err := h.client.GetTemplateImage(c.Request.Context(), imagePath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

// isImageFilename 校验图片扩展名
func isImageFilename(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
