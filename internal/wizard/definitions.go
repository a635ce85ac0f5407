package wizard

import (
	"fmt"
	"strings"

	"github.com/kamino-labs/kamino-portal/internal/models"
)

// 向导类型
const (
	KindPublish = "publish" // 发布模板：3 步
	KindCreate  = "create"  // 创建模板：4 步
	KindDeploy  = "deploy"  // 部署 Pod：确认 + 进度
)

// fieldString 读取字符串字段
func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// fieldInt 读取数值字段，JSON 解码后的数字是 float64
func fieldInt(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// publishSteps 发布向导：选择模板 → 模板信息 → 确认发布
func publishSteps() []Step {
	return []Step{
		{
			Name: "选择模板",
			Validate: func(fields map[string]interface{}) error {
				if fieldString(fields, "template") == "" {
					return fmt.Errorf("请先选择要发布的模板")
				}
				return nil
			},
		},
		{
			Name: "模板信息",
			Validate: func(fields map[string]interface{}) error {
				if fieldString(fields, "description") == "" {
					return fmt.Errorf("模板描述不能为空")
				}
				if fieldString(fields, "authors") == "" {
					return fmt.Errorf("作者不能为空")
				}
				return models.ValidateVMCount(fieldInt(fields, "vm_count"), models.PublishVMCountMax)
			},
		},
		{
			Name: "确认发布",
		},
	}
}

// createSteps 创建向导：选择资源池 → 模板信息 → 资源配置 → 确认创建
func createSteps() []Step {
	return []Step{
		{
			Name: "选择资源池",
			Validate: func(fields map[string]interface{}) error {
				if fieldString(fields, "pool") == "" {
					return fmt.Errorf("请先选择源资源池")
				}
				return nil
			},
		},
		{
			Name: "模板信息",
			Validate: func(fields map[string]interface{}) error {
				if fieldString(fields, "name") == "" {
					return fmt.Errorf("模板名称不能为空")
				}
				if fieldString(fields, "description") == "" {
					return fmt.Errorf("模板描述不能为空")
				}
				return nil
			},
		},
		{
			Name: "资源配置",
			Validate: func(fields map[string]interface{}) error {
				return models.ValidateVMCount(fieldInt(fields, "vm_count"), models.EditVMCountMax)
			},
		},
		{
			Name: "确认创建",
		},
	}
}

// deploySteps 部署向导：确认 → 进度
func deploySteps() []Step {
	return []Step{
		{
			Name: "确认部署",
			Validate: func(fields map[string]interface{}) error {
				if fieldString(fields, "template") == "" {
					return fmt.Errorf("请先选择要部署的模板")
				}
				if fieldString(fields, "pod_name") == "" {
					return fmt.Errorf("Pod 名称不能为空")
				}
				return nil
			},
		},
		{
			Name: "部署进度",
		},
	}
}

// stepsForKind 按类型取步骤定义
func stepsForKind(kind string) ([]Step, error) {
	switch kind {
	case KindPublish:
		return publishSteps(), nil
	case KindCreate:
		return createSteps(), nil
	case KindDeploy:
		return deploySteps(), nil
	default:
		return nil, fmt.Errorf("未知的向导类型: %s", kind)
	}
}

// initialFieldsForKind 各类型的初始字段值
func initialFieldsForKind(kind string) map[string]interface{} {
	switch kind {
	case KindPublish:
		return map[string]interface{}{
			"template":    "",
			"description": "",
			"authors":     "",
			"vm_count":    1,
			"image_path":  "",
		}
	case KindCreate:
		return map[string]interface{}{
			"pool":        "",
			"name":        "",
			"description": "",
			"authors":     "",
			"vm_count":    1,
			"image_path":  "",
			"visible":     false,
		}
	case KindDeploy:
		return map[string]interface{}{
			"template": "",
			"pod_name": "",
		}
	default:
		return map[string]interface{}{}
	}
}
