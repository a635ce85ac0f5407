package models

import (
	"fmt"
	"regexp"
	"strings"
)

// 组名限制：字母/数字/连字符/下划线，最长 63 字节（AD sAMAccountName 约束）
var groupNameRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// 用户名限制与组名一致
var usernameRegexp = groupNameRegexp

const (
	// MaxNameBytes 名称最大字节数
	MaxNameBytes = 63

	// MaxBulkGroups 一次批量创建的组数量上限
	MaxBulkGroups = 50

	// PublishVMCountMax 发布向导允许的 VM 数量上限
	PublishVMCountMax = 10
	// EditVMCountMax 编辑/创建允许的 VM 数量上限
	EditVMCountMax = 12
)

// ValidateGroupName 校验组名
func ValidateGroupName(name string) error {
	if name == "" {
		return fmt.Errorf("组名不能为空")
	}
	if len(name) > MaxNameBytes {
		return fmt.Errorf("组名不能超过 %d 字节", MaxNameBytes)
	}
	if !groupNameRegexp.MatchString(name) {
		return fmt.Errorf("组名只能包含字母、数字、连字符和下划线")
	}
	return nil
}

// ValidateUsername 校验用户名
func ValidateUsername(name string) error {
	if name == "" {
		return fmt.Errorf("用户名不能为空")
	}
	if len(name) > MaxNameBytes {
		return fmt.Errorf("用户名不能超过 %d 字节", MaxNameBytes)
	}
	if !usernameRegexp.MatchString(name) {
		return fmt.Errorf("用户名只能包含字母、数字、连字符和下划线")
	}
	return nil
}

// ValidateVMCount 校验 VM 数量，max 取发布或编辑的上限
func ValidateVMCount(count, max int) error {
	if count < 1 || count > max {
		return fmt.Errorf("VM 数量必须在 1 到 %d 之间", max)
	}
	return nil
}

// IsProtectedGroup 判断是否为保护组（名称含 kamino/admin 的组不可修改）
func IsProtectedGroup(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "kamino") || strings.Contains(lower, "admin")
}

// ValidPageSizes 允许的分页大小
var ValidPageSizes = []int{10, 25, 50}

// IsValidPageSize 校验分页大小
func IsValidPageSize(size int) bool {
	for _, s := range ValidPageSizes {
		if s == size {
			return true
		}
	}
	return false
}
