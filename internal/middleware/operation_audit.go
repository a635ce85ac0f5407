package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kamino-labs/kamino-portal/internal/services"
	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// routeRule 路由规则
type routeRule struct {
	Pattern      *regexp.Regexp
	Module       string
	Action       string
	ResourceType string
	// 动态提取资源名的参数索引，-1 表示不提取
	ResourceNameIndex int
}

// 预编译的路由规则
var routeRules []routeRule

func init() {
	rules := []struct {
		Pattern           string
		Module            string
		Action            string
		ResourceType      string
		ResourceNameIndex int
	}{
		// 认证模块
		{`^/api/v1/auth/login$`, "auth", "login", "user", -1},
		{`^/api/v1/auth/logout$`, "auth", "logout", "user", -1},

		// 用户模块
		{`^/api/v1/users$`, "user", "create", "user", -1},
		{`^/api/v1/users/bulk-delete$`, "user", "delete", "user", -1},
		{`^/api/v1/users/([^/]+)$`, "user", "", "user", 1},
		{`^/api/v1/users/([^/]+)/enabled$`, "user", "update", "user", 1},

		// 用户组模块
		{`^/api/v1/groups$`, "group", "create", "group", -1},
		{`^/api/v1/groups/bulk-delete$`, "group", "delete", "group", -1},
		{`^/api/v1/groups/add-users$`, "group", "update", "group_member", -1},
		{`^/api/v1/groups/remove-users$`, "group", "update", "group_member", -1},
		{`^/api/v1/groups/([^/]+)$`, "group", "", "group", 1},
		{`^/api/v1/groups/([^/]+)/rename$`, "group", "rename", "group", 1},

		// Pod 模块
		{`^/api/v1/pods/deploy$`, "pod", "deploy", "pod", -1},
		{`^/api/v1/pods/bulk-delete$`, "pod", "delete", "pod", -1},
		{`^/api/v1/pods/([^/]+)$`, "pod", "", "pod", 1},

		// 虚拟机模块
		{`^/api/v1/vms/([^/]+)/(\d+)/start$`, "vm", "start", "vm", 2},
		{`^/api/v1/vms/([^/]+)/(\d+)/shutdown$`, "vm", "shutdown", "vm", 2},
		{`^/api/v1/vms/([^/]+)/(\d+)/reboot$`, "vm", "reboot", "vm", 2},

		// 模板模块
		{`^/api/v1/templates/image$`, "template", "upload", "template_image", -1},
		{`^/api/v1/templates/([^/]+)$`, "template", "", "template", 1},
		{`^/api/v1/templates/([^/]+)/visibility$`, "template", "update", "template", 1},

		// 向导模块
		{`^/api/v1/wizards$`, "wizard", "create", "wizard_session", -1},
		{`^/api/v1/wizards/([^/]+)/submit$`, "wizard", "submit", "wizard_session", 1},
	}

	for _, r := range rules {
		routeRules = append(routeRules, routeRule{
			Pattern:           regexp.MustCompile(r.Pattern),
			Module:            r.Module,
			Action:            r.Action,
			ResourceType:      r.ResourceType,
			ResourceNameIndex: r.ResourceNameIndex,
		})
	}
}

// OperationAudit 操作审计中间件
// 只记录写操作；资源由后端持久化，这里记录的是门户侧的操作痕迹
func OperationAudit(logSvc *services.OperationLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "GET" {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/healthz") || strings.HasPrefix(path, "/readyz") {
			c.Next()
			return
		}
		// WebSocket 推送不走审计
		if strings.HasPrefix(path, "/ws/") {
			c.Next()
			return
		}

		startTime := time.Now()

		// 执行请求
		c.Next()

		module, action, resourceType, resourceName := parseRoute(path)
		if action == "" {
			action = methodToAction(c.Request.Method)
		}
		if resourceName == "" {
			resourceName = c.Param("name")
		}

		errorMessage := ""
		if err, exists := c.Get("error_message"); exists {
			if errStr, ok := err.(string); ok {
				errorMessage = errStr
			}
		}

		entry := &services.LogEntry{
			Username:     c.GetString("username"),
			Method:       c.Request.Method,
			Path:         path,
			Module:       module,
			Action:       action,
			ResourceType: resourceType,
			ResourceName: resourceName,
			StatusCode:   c.Writer.Status(),
			Success:      c.Writer.Status() < 400,
			ErrorMessage: errorMessage,
			ClientIP:     c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			Duration:     time.Since(startTime).Milliseconds(),
		}

		// 异步记录
		logSvc.RecordAsync(entry)

		logger.Debug("操作审计记录: module=%s action=%s path=%s user=%s success=%v",
			module, action, path, entry.Username, entry.Success)
	}
}

// parseRoute 从路由解析操作信息
func parseRoute(path string) (module, action, resourceType, resourceName string) {
	for _, rule := range routeRules {
		matches := rule.Pattern.FindStringSubmatch(path)
		if matches != nil {
			module = rule.Module
			action = rule.Action
			resourceType = rule.ResourceType
			if rule.ResourceNameIndex > 0 && rule.ResourceNameIndex < len(matches) {
				resourceName = matches[rule.ResourceNameIndex]
			}
			return
		}
	}

	module = "unknown"
	resourceType = guessResourceType(path)
	return
}

// methodToAction 根据 HTTP 方法返回操作
func methodToAction(method string) string {
	switch method {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// guessResourceType 从路径猜测资源类型
func guessResourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	resourceTypes := []string{"users", "groups", "pods", "vms", "templates", "wizards"}

	for _, part := range parts {
		for _, rt := range resourceTypes {
			if part == rt {
				return strings.TrimSuffix(rt, "s")
			}
		}
	}
	return "unknown"
}
