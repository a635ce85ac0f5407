package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kamino-labs/kamino-portal/internal/client"
	"github.com/kamino-labs/kamino-portal/internal/wizard"
	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// WizardHandler 向导会话处理器
// 发布/创建/部署三种向导共用一套步骤接口，提交时按类型分发到后端
type WizardHandler struct {
	manager *wizard.Manager
	client  *client.Client
	hub     *EventHub
}

// NewWizardHandler 创建向导处理器
func NewWizardHandler(m *wizard.Manager, c *client.Client, hub *EventHub) *WizardHandler {
	return &WizardHandler{manager: m, client: c, hub: hub}
}

// CreateSession 创建向导会话
func (h *WizardHandler) CreateSession(c *gin.Context) {
	var req struct {
		Kind string `json:"kind" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}

	session, err := h.manager.Create(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "向导会话已创建",
		"data":    session.Snapshot(),
	})
}

// GetSession 获取向导会话状态
func (h *WizardHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": session.Snapshot(),
	})
}

// stepRequest 步骤操作请求体，fields 可选
type stepRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

// NextStep 进入下一步，当前步骤校验不通过则停留在原步骤
func (h *WizardHandler) NextStep(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req stepRequest
	_ = c.ShouldBindJSON(&req)
	if req.Fields != nil {
		session.SetFields(req.Fields)
	}

	if err := session.GoToNextStep(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
			"data":    session.Snapshot(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": session.Snapshot(),
	})
}

// PrevStep 返回上一步
func (h *WizardHandler) PrevStep(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req stepRequest
	_ = c.ShouldBindJSON(&req)
	if req.Fields != nil {
		session.SetFields(req.Fields)
	}

	session.GoToPreviousStep()
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": session.Snapshot(),
	})
}

// GotoStep 跳转到指定步骤
// 只允许跳到已完成的步骤或紧邻的下一步，其余请求原样返回当前状态
func (h *WizardHandler) GotoStep(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Step   int                    `json:"step" binding:"required"`
		Fields map[string]interface{} `json:"fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请求参数错误: " + err.Error(),
		})
		return
	}
	if req.Fields != nil {
		session.SetFields(req.Fields)
	}

	session.GoToStep(req.Step)
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": session.Snapshot(),
	})
}

// ResetSession 重置向导到初始状态
func (h *WizardHandler) ResetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	session.Reset()
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "向导已重置",
		"data":    session.Snapshot(),
	})
}

// DeleteSession 关闭向导会话
func (h *WizardHandler) DeleteSession(c *gin.Context) {
	h.manager.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "向导会话已关闭",
	})
}

// Submit 提交向导
// 封面图随提交上传时先传给后端换取 image_path，再全量校验并按类型调用后端
// 任何失败都保留会话数据，允许重试
func (h *WizardHandler) Submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if fieldsJSON := c.PostForm("fields"); fieldsJSON != "" {
			var fields map[string]interface{}
			if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"code":    400,
					"message": "fields 字段不是合法 JSON: " + err.Error(),
				})
				return
			}
			session.SetFields(fields)
		}

		if file, header, err := c.Request.FormFile("image"); err == nil {
			path, uploadErr := h.client.UploadTemplateImage(c.Request.Context(), header.Filename, file)
			_ = file.Close()
			if uploadErr != nil {
				logger.Error("向导图片上传失败: id=%s, err=%v", session.ID, uploadErr)
				c.JSON(http.StatusBadGateway, gin.H{
					"code":    502,
					"message": uploadErr.Error(),
					"data":    session.Snapshot(),
				})
				return
			}
			session.SetFields(map[string]interface{}{"image_path": path})
		}
	} else {
		var req stepRequest
		_ = c.ShouldBindJSON(&req)
		if req.Fields != nil {
			session.SetFields(req.Fields)
		}
	}

	if err := session.ValidateAll(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
			"data":    session.Snapshot(),
		})
		return
	}

	message, err := h.submit(c, session)
	if err != nil {
		logger.Error("向导提交失败: id=%s, kind=%s, err=%v", session.ID, session.Kind, err)
		h.hub.Publish("error", "template", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
			"data":    session.Snapshot(),
		})
		return
	}

	session.MarkSuccess()
	h.hub.Publish("success", resourceForKind(session.Kind), message)
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
		"data":    session.Snapshot(),
	})
}

// submit 按向导类型调用后端
func (h *WizardHandler) submit(c *gin.Context, session *wizard.Session) (string, error) {
	ctx := c.Request.Context()
	fields := session.Fields()

	str := func(key string) string {
		if v, ok := fields[key].(string); ok {
			return v
		}
		return ""
	}
	num := func(key string) int {
		switch v := fields[key].(type) {
		case float64:
			return int(v)
		case int:
			return v
		default:
			return 0
		}
	}

	switch session.Kind {
	case wizard.KindPublish:
		payload := client.TemplatePayload{
			Name:        str("template"),
			Description: str("description"),
			Authors:     str("authors"),
			VMCount:     num("vm_count"),
			ImagePath:   str("image_path"),
			Visible:     true,
		}
		if err := h.client.PublishTemplate(ctx, payload); err != nil {
			return "", err
		}
		return fmt.Sprintf("模板 %s 发布成功", payload.Name), nil

	case wizard.KindCreate:
		visible, _ := fields["visible"].(bool)
		payload := client.TemplatePayload{
			Name:        str("name"),
			Pool:        str("pool"),
			Description: str("description"),
			Authors:     str("authors"),
			VMCount:     num("vm_count"),
			ImagePath:   str("image_path"),
			Visible:     visible,
		}
		if err := h.client.CreateTemplate(ctx, payload); err != nil {
			return "", err
		}
		return fmt.Sprintf("模板 %s 创建成功", payload.Name), nil

	case wizard.KindDeploy:
		template := str("template")
		podName := str("pod_name")
		if err := h.client.DeployPod(ctx, template, podName); err != nil {
			return "", err
		}
		return fmt.Sprintf("Pod %s 部署已开始", podName), nil

	default:
		return "", fmt.Errorf("未知的向导类型: %s", session.Kind)
	}
}

// session 解析路径中的会话 ID，不存在时写入 404
func (h *WizardHandler) session(c *gin.Context) (*wizard.Session, bool) {
	session, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return nil, false
	}
	return session, true
}

// resourceForKind 向导类型对应的资源类别
func resourceForKind(kind string) string {
	if kind == wizard.KindDeploy {
		return "pod"
	}
	return "template"
}
