// Package listview 实现列表视图的派生管线：过滤 → 排序 → 分页 → 选择。
// 五类资源页面（用户/组/Pod/虚拟机/模板)共用这一套实现，
// 每类资源只需提供可搜索字段和列比较器。
package listview

import (
	"math"
	"sort"
	"strings"
)

// SortState 单列排序状态
// 前端的排序规格是数组类型，但所有页面实际只使用单列，
// 这里直接收敛为单项切片
type SortState struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// Column 列配置
type Column[T any] struct {
	// Compare 升序比较器，返回 <0/0/>0
	Compare func(a, b T) int
	// NewestFirst 时间类列的反转约定：desc=false 时最新值排在最前
	// 这是既有契约，不是缺陷
	NewestFirst bool
}

// View 资源视图配置
type View[T any] struct {
	// SearchFields 返回参与大小写不敏感子串匹配的字段值
	SearchFields func(item T) []string
	// Columns 列名到比较器的映射
	Columns map[string]Column[T]
}

// Query 列表查询参数
type Query struct {
	Search   string
	Sorting  []SortState
	Page     int
	PageSize int
}

// PageResult 分页结果
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
}

// Filter 过滤：大小写不敏感子串匹配，保持原有相对顺序
// 空搜索词直接返回原切片
func (v View[T]) Filter(items []T, term string) []T {
	if term == "" {
		return items
	}
	needle := strings.ToLower(term)
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range v.SearchFields(item) {
			if strings.Contains(strings.ToLower(field), needle) {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

// Sort 排序：空排序规格为恒等透传，保持后端返回的顺序
// 未配置的列同样透传，排序永远不报错
func (v View[T]) Sort(items []T, sorting []SortState) []T {
	if len(sorting) == 0 {
		return items
	}
	state := sorting[0]
	col, ok := v.Columns[state.Column]
	if !ok || col.Compare == nil {
		return items
	}

	// 时间列反转：desc=false 表示最新在前
	desc := state.Desc
	if col.NewestFirst {
		desc = !desc
	}

	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := col.Compare(sorted[i], sorted[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

// Paginate 分页：page 从 1 开始，越界区间自动截断
// 零条数据时 totalPages 为 0，由前端决定隐藏分页控件
func Paginate[T any](items []T, page, pageSize int) PageResult[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	total := len(items)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return PageResult[T]{
		Items:      items[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		StartIndex: start,
		EndIndex:   end,
	}
}

// Apply 完整管线：过滤 → 排序 → 分页
func (v View[T]) Apply(items []T, q Query) PageResult[T] {
	filtered := v.Filter(items, q.Search)
	sorted := v.Sort(filtered, q.Sorting)
	return Paginate(sorted, q.Page, q.PageSize)
}

// ToggleSort 三态切换：未排序 → 升序 → 降序 → 未排序
// 点击新列时整体替换，不保留次级排序键
func ToggleSort(sorting []SortState, column string) []SortState {
	if len(sorting) == 0 || sorting[0].Column != column {
		return []SortState{{Column: column, Desc: false}}
	}
	if !sorting[0].Desc {
		return []SortState{{Column: column, Desc: true}}
	}
	return nil
}

// TextCompare 文本列比较器（小写比较）
func TextCompare[T any](field func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// NumberCompare 数值列比较器
func NumberCompare[T any](field func(T) float64) func(a, b T) int {
	return func(a, b T) int {
		fa, fb := field(a), field(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
}

// TimeCompare 时间列比较器，nil 时间按零值（epoch）处理
func TimeCompare[T any](field func(T) int64) func(a, b T) int {
	return NumberCompare(func(item T) float64 {
		return float64(field(item))
	})
}
