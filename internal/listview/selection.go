package listview

import "sort"

// HeaderState 表头复选框的派生状态
type HeaderState string

const (
	HeaderNone          HeaderState = "none"
	HeaderIndeterminate HeaderState = "indeterminate"
	HeaderAll           HeaderState = "all"
)

// Selection 行选择集合，按唯一标识维护，与分页无关
// 过滤结果变化时必须调用 Prune，避免残留不可见行的选中状态
type Selection struct {
	ids map[string]bool
}

// NewSelection 创建空选择集合
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]bool)}
}

// Toggle 翻转单行选中状态
func (s *Selection) Toggle(id string) {
	if s.ids[id] {
		delete(s.ids, id)
	} else {
		s.ids[id] = true
	}
}

// Selected 判断某行是否选中
func (s *Selection) Selected(id string) bool {
	return s.ids[id]
}

// Count 选中数量
func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs 返回选中的标识（排序后，保证结果稳定）
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clear 清空选择
func (s *Selection) Clear() {
	s.ids = make(map[string]bool)
}

// Prune 裁剪到当前可见集合，不可见的选中项被移除
func (s *Selection) Prune(visible []string) {
	keep := make(map[string]bool, len(visible))
	for _, id := range visible {
		if s.ids[id] {
			keep[id] = true
		}
	}
	s.ids = keep
}

// ToggleAll 全选/取消全选
// 保护行（selectable 返回 false）永远不会被加入选择集合，
// 但取消全选会移除所有可见行；可见集合之外的标识不受影响
func (s *Selection) ToggleAll(visible []string, selectable func(id string) bool) {
	allSelected := true
	hasSelectable := false
	for _, id := range visible {
		if selectable != nil && !selectable(id) {
			continue
		}
		hasSelectable = true
		if !s.ids[id] {
			allSelected = false
		}
	}

	if hasSelectable && allSelected {
		// 取消所有可见行
		for _, id := range visible {
			delete(s.ids, id)
		}
		return
	}

	for _, id := range visible {
		if selectable != nil && !selectable(id) {
			continue
		}
		s.ids[id] = true
	}
}

// Header 计算表头复选框状态，分母只统计可选行
func (s *Selection) Header(visible []string, selectable func(id string) bool) HeaderState {
	selectableCount := 0
	selectedCount := 0
	for _, id := range visible {
		if selectable != nil && !selectable(id) {
			continue
		}
		selectableCount++
		if s.ids[id] {
			selectedCount++
		}
	}

	switch {
	case selectableCount == 0 || selectedCount == 0:
		return HeaderNone
	case selectedCount == selectableCount:
		return HeaderAll
	default:
		return HeaderIndeterminate
	}
}
