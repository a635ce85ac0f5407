package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/kamino-labs/kamino-portal/internal/models"
)

// TemplatePayload 模板发布/创建/编辑载荷
type TemplatePayload struct {
	Name        string `json:"name"`
	Pool        string `json:"pool,omitempty"` // 创建时的源资源池
	Description string `json:"description"`
	Authors     string `json:"authors"`
	VMCount     int    `json:"vm_count"`
	ImagePath   string `json:"image_path,omitempty"`
	Visible     bool   `json:"template_visible"`
}

// GetAllPodTemplates 获取全部已发布模板（后端返回裸数组）
func (c *Client) GetAllPodTemplates(ctx context.Context) ([]models.PodTemplate, error) {
	var templates []models.PodTemplate
	if err := c.do(ctx, http.MethodGet, "/api/v1/templates", nil, &templates); err != nil {
		return nil, fmt.Errorf("获取模板列表失败: %w", err)
	}
	if templates == nil {
		templates = []models.PodTemplate{}
	}
	return templates, nil
}

// GetUnpublishedTemplates 获取未发布模板
func (c *Client) GetUnpublishedTemplates(ctx context.Context) ([]models.UnpublishedPodTemplate, error) {
	var templates []models.UnpublishedPodTemplate
	if err := c.do(ctx, http.MethodGet, "/api/v1/templates/unpublished", nil, &templates); err != nil {
		return nil, fmt.Errorf("获取未发布模板列表失败: %w", err)
	}
	if templates == nil {
		templates = []models.UnpublishedPodTemplate{}
	}
	return templates, nil
}

// PublishTemplate 发布模板（未发布 → 已发布，单向，不可逆）
func (c *Client) PublishTemplate(ctx context.Context, payload TemplatePayload) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/template/publish", payload, nil); err != nil {
		return fmt.Errorf("发布模板 %s 失败: %w", payload.Name, err)
	}
	return nil
}

// CreateTemplate 从 Proxmox 资源池创建模板
func (c *Client) CreateTemplate(ctx context.Context, payload TemplatePayload) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/template", payload, nil); err != nil {
		return fmt.Errorf("创建模板 %s 失败: %w", payload.Name, err)
	}
	return nil
}

// EditTemplate 编辑模板元数据
func (c *Client) EditTemplate(ctx context.Context, name string, payload TemplatePayload) error {
	path := fmt.Sprintf("/api/v1/template/%s", url.PathEscape(name))
	if err := c.do(ctx, http.MethodPut, path, payload, nil); err != nil {
		return fmt.Errorf("编辑模板 %s 失败: %w", name, err)
	}
	return nil
}

// SetTemplateVisibility 切换模板可见性
func (c *Client) SetTemplateVisibility(ctx context.Context, name string, visible bool) error {
	path := fmt.Sprintf("/api/v1/template/%s/visibility", url.PathEscape(name))
	payload := map[string]bool{"template_visible": visible}
	if err := c.do(ctx, http.MethodPatch, path, payload, nil); err != nil {
		return fmt.Errorf("更新模板 %s 可见性失败: %w", name, err)
	}
	return nil
}

// DeleteTemplate 删除模板元数据
// 注意：只删除模板记录，不删除底层 Proxmox 虚拟机
func (c *Client) DeleteTemplate(ctx context.Context, name string) error {
	path := fmt.Sprintf("/api/v1/template/%s", url.PathEscape(name))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("删除模板 %s 失败: %w", name, err)
	}
	return nil
}

// UploadTemplateImage 上传模板封面图
// 返回服务端相对路径，随后写入创建/编辑载荷的 image_path 字段
func (c *Client) UploadTemplateImage(ctx context.Context, filename string, file io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("构造上传请求失败: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("读取图片失败: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("构造上传请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/template/image", &buf)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("上传图片失败: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiError(resp)
	}

	var result struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("解析上传响应失败: %w", err)
	}
	return result.Path, nil
}

// GetTemplateImage 读取模板封面图（门户按 /api/v1/template/image/{path} 约定代理展示）
func (c *Client) GetTemplateImage(ctx context.Context, imagePath string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/template/image/%s", c.baseURL, imagePath), nil)
	if err != nil {
		return nil, "", fmt.Errorf("创建请求失败: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("获取图片失败: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", apiError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("读取图片失败: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
