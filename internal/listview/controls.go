package listview

// Controls 列表控件状态：搜索词、排序、页码、分页大小
// 页码重置规则在这里统一收口：
// 搜索词、分页大小和过滤开关的变化把页码重置为 1，排序变化不重置
type Controls struct {
	Search   string
	Sorting  []SortState
	Page     int
	PageSize int
	Filters  map[string]bool
}

// NewControls 创建默认控件状态
func NewControls() *Controls {
	return &Controls{Page: 1, PageSize: 10, Filters: make(map[string]bool)}
}

// SetSearch 更新搜索词并重置页码
func (c *Controls) SetSearch(term string) {
	if c.Search == term {
		return
	}
	c.Search = term
	c.Page = 1
}

// SetPageSize 更新分页大小并重置页码
func (c *Controls) SetPageSize(size int) {
	if c.PageSize == size {
		return
	}
	c.PageSize = size
	c.Page = 1
}

// SetFilter 更新过滤开关并重置页码
func (c *Controls) SetFilter(name string, on bool) {
	if c.Filters == nil {
		c.Filters = make(map[string]bool)
	}
	if c.Filters[name] == on {
		return
	}
	c.Filters[name] = on
	c.Page = 1
}

// SetPage 跳页
func (c *Controls) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.Page = page
}

// ToggleSortColumn 三态切换排序列，页码保持不变
func (c *Controls) ToggleSortColumn(column string) {
	c.Sorting = ToggleSort(c.Sorting, column)
}

// Query 转换为查询参数
func (c *Controls) Query() Query {
	return Query{
		Search:   c.Search,
		Sorting:  c.Sorting,
		Page:     c.Page,
		PageSize: c.PageSize,
	}
}
