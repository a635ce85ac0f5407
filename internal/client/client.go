// Package client 封装 Kamino 后端 REST API。
// 每个方法对应一次 HTTP 调用：解析 JSON 返回类型化结果，失败时返回
// 带可读信息的 error 由调用方展示。不做重试、批量和缓存。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client Kamino 后端 API 客户端
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New 创建后端 API 客户端
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiError 从响应体提取可读错误信息
// 后端错误格式不统一，依次尝试 error/message 字段，兜底为 Unknown error
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return fmt.Errorf("%s", envelope.Error)
		}
		if envelope.Message != "" {
			return fmt.Errorf("%s", envelope.Message)
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		return fmt.Errorf("status=%d: %s", resp.StatusCode, text)
	}
	if resp.StatusCode != 0 {
		return fmt.Errorf("status=%d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return fmt.Errorf("Unknown error")
}

// do 执行一次请求并解析 JSON 响应
func (c *Client) do(ctx context.Context, method, path string, reqBody interface{}, out interface{}) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("序列化请求失败: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	c.setHeaders(req)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求后端失败: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// setHeaders 设置通用请求头
func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("Accept", "application/json")
}

// LoginResult 登录结果（令牌由后端签发，门户只透传）
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	IsCreator bool   `json:"is_creator"`
}

// Login 用户登录
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	payload := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", payload, &result); err != nil {
		return nil, fmt.Errorf("登录失败: %w", err)
	}
	return &result, nil
}

// Logout 用户登出
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}
