package models

import "time"

// User 用户（后端 AD 同步的账号，门户只持有临时副本）
type User struct {
	Name      string     `json:"name"`
	Groups    []Group    `json:"groups"`
	Enabled   bool       `json:"enabled"`
	IsAdmin   bool       `json:"is_admin"`
	IsCreator bool       `json:"is_creator"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Group 用户组
// CanModify 为 false 的保护组（名称含 kamino/admin）不允许改名、删除和成员变更
type Group struct {
	Name      string     `json:"name"`
	UserCount *int       `json:"user_count,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	CanModify bool       `json:"can_modify"`
}

// DeployedPod 已部署的 Pod（一组从模板克隆出来的虚拟机）
type DeployedPod struct {
	Name        string           `json:"name"`
	VMs         []VirtualMachine `json:"vms"`
	Description string           `json:"description,omitempty"`
	Template    *PodTemplate     `json:"template,omitempty"`
}

// VirtualMachine Proxmox 虚拟机
// 生命周期完全由后端/Proxmox 管理，门户只做启停和展示
type VirtualMachine struct {
	VMID       int     `json:"vmid"`
	Node       string  `json:"node"`
	Name       string  `json:"name"`
	Status     string  `json:"status"` // running, stopped
	Uptime     int64   `json:"uptime"` // 秒
	CPU        float64 `json:"cpu"`
	MaxCPU     int     `json:"maxcpu"`
	Mem        int64   `json:"mem"`
	MaxMem     int64   `json:"maxmem"`
	MaxDisk    int64   `json:"maxdisk"`
	Pool       string  `json:"pool,omitempty"`
	ConsoleURL string  `json:"console_url,omitempty"` // 由门户根据配置拼接
}

// PodTemplate Pod 模板（已发布）
type PodTemplate struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"` // markdown
	Authors         string     `json:"authors"`
	VMCount         int        `json:"vm_count"`
	ImagePath       string     `json:"image_path,omitempty"` // 服务端相对路径
	TemplateVisible bool       `json:"template_visible"`
	Deployments     int        `json:"deployments"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

// UnpublishedPodTemplate 未发布的 Pod 模板（Proxmox VM 资源池）
type UnpublishedPodTemplate struct {
	Name    string `json:"name"`
	VMCount int    `json:"vm_count"`
}

// DashboardStats 仪表盘统计（后端实时计算，每次加载重新获取）
type DashboardStats struct {
	Users              int             `json:"users"`
	Groups             int             `json:"groups"`
	PublishedTemplates int             `json:"published_templates"`
	DeployedPods       int             `json:"deployed_pods"`
	VMs                int             `json:"vms"`
	Cluster            ClusterResource `json:"cluster"`
}

// ClusterResource 集群资源汇总
type ClusterResource struct {
	CPUUsage     float64 `json:"cpu_usage"`
	MemoryUsed   int64   `json:"memory_used"`
	MemoryTotal  int64   `json:"memory_total"`
	StorageUsed  int64   `json:"storage_used"`
	StorageTotal int64   `json:"storage_total"`
}
