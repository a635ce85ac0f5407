package listview

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// rowFixture 测试用资源行
type rowFixture struct {
	Name      string
	Node      string
	Count     int
	CreatedAt time.Time
}

func testView() View[rowFixture] {
	return View[rowFixture]{
		SearchFields: func(r rowFixture) []string {
			return []string{r.Name, r.Node, fmt.Sprintf("%d", r.Count)}
		},
		Columns: map[string]Column[rowFixture]{
			"name":  {Compare: TextCompare(func(r rowFixture) string { return r.Name })},
			"count": {Compare: NumberCompare(func(r rowFixture) float64 { return float64(r.Count) })},
			"created_at": {
				Compare:     TimeCompare(func(r rowFixture) int64 { return r.CreatedAt.Unix() }),
				NewestFirst: true,
			},
		},
	}
}

func fixtureRows() []rowFixture {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []rowFixture{
		{Name: "beta", Node: "pve1", Count: 2, CreatedAt: base.Add(24 * time.Hour)},
		{Name: "alpha", Node: "pve2", Count: 3, CreatedAt: base},
		{Name: "gamma", Node: "pve1", Count: 1, CreatedAt: base.Add(48 * time.Hour)},
	}
}

// TestFilter_EmptyTermIsIdentity 空搜索词返回原集合
func TestFilter_EmptyTermIsIdentity(t *testing.T) {
	v := testView()
	rows := fixtureRows()

	got := v.Filter(rows, "")
	assert.Equal(t, rows, got)
	assert.Len(t, got, 3)
}

// TestFilter_CaseInsensitiveSubstring 大小写不敏感子串匹配
func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	v := testView()
	rows := fixtureRows()

	got := v.Filter(rows, "ALPH")
	assert.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Name)

	// 任一可搜索字段命中即保留，相对顺序不变
	got = v.Filter(rows, "pve1")
	assert.Len(t, got, 2)
	assert.Equal(t, "beta", got[0].Name)
	assert.Equal(t, "gamma", got[1].Name)

	// 无命中
	got = v.Filter(rows, "zzz")
	assert.Empty(t, got)
}

// TestSort_Ascending 升序排序
func TestSort_Ascending(t *testing.T) {
	v := testView()
	got := v.Sort(fixtureRows(), []SortState{{Column: "name", Desc: false}})

	assert.Equal(t, "alpha", got[0].Name)
	assert.Equal(t, "beta", got[1].Name)
	assert.Equal(t, "gamma", got[2].Name)
}

// TestSort_Descending 降序排序
func TestSort_Descending(t *testing.T) {
	v := testView()
	got := v.Sort(fixtureRows(), []SortState{{Column: "name", Desc: true}})

	assert.Equal(t, "gamma", got[0].Name)
	assert.Equal(t, "beta", got[1].Name)
	assert.Equal(t, "alpha", got[2].Name)
}

// TestSort_EmptySpecIsPassthrough 空排序规格保持后端顺序
func TestSort_EmptySpecIsPassthrough(t *testing.T) {
	v := testView()
	rows := fixtureRows()

	got := v.Sort(rows, nil)
	assert.Equal(t, rows, got)
}

// TestSort_NewestFirstInversion created_at 列 desc=false 必须最新在前
func TestSort_NewestFirstInversion(t *testing.T) {
	v := testView()
	rows := fixtureRows()

	got := v.Sort(rows, []SortState{{Column: "created_at", Desc: false}})
	assert.Equal(t, "gamma", got[0].Name) // 最新
	assert.Equal(t, "beta", got[1].Name)
	assert.Equal(t, "alpha", got[2].Name) // 最旧

	// desc=true 反过来是最旧在前
	got = v.Sort(rows, []SortState{{Column: "created_at", Desc: true}})
	assert.Equal(t, "alpha", got[0].Name)
	assert.Equal(t, "gamma", got[2].Name)
}

// TestToggleSort_TriState 三态循环：升序 → 降序 → 清空
func TestToggleSort_TriState(t *testing.T) {
	var sorting []SortState

	sorting = ToggleSort(sorting, "name")
	assert.Equal(t, []SortState{{Column: "name", Desc: false}}, sorting)

	sorting = ToggleSort(sorting, "name")
	assert.Equal(t, []SortState{{Column: "name", Desc: true}}, sorting)

	sorting = ToggleSort(sorting, "name")
	assert.Empty(t, sorting)
}

// TestToggleSort_SwitchColumnReplaces 切换列时整体替换
func TestToggleSort_SwitchColumnReplaces(t *testing.T) {
	sorting := []SortState{{Column: "name", Desc: true}}

	sorting = ToggleSort(sorting, "count")
	assert.Equal(t, []SortState{{Column: "count", Desc: false}}, sorting)
	assert.Len(t, sorting, 1)
}

// TestPaginate_Invariants 分页不变式：页长上限、全页拼接还原、总页数
func TestPaginate_Invariants(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	for _, pageSize := range []int{10, 25, 50} {
		result := Paginate(items, 1, pageSize)
		expectPages := (len(items) + pageSize - 1) / pageSize
		assert.Equal(t, expectPages, result.TotalPages)

		var rebuilt []int
		for page := 1; page <= result.TotalPages; page++ {
			p := Paginate(items, page, pageSize)
			assert.LessOrEqual(t, len(p.Items), pageSize)
			rebuilt = append(rebuilt, p.Items...)
		}
		assert.Equal(t, items, rebuilt)
	}
}

// TestPaginate_OutOfRange 越界页码返回空切片而不是报错
func TestPaginate_OutOfRange(t *testing.T) {
	items := []int{1, 2, 3}

	result := Paginate(items, 99, 10)
	assert.Empty(t, result.Items)
	assert.Equal(t, 3, result.Total)

	// 零条数据 → 零页
	result = Paginate([]int{}, 1, 10)
	assert.Equal(t, 0, result.TotalPages)
	assert.Empty(t, result.Items)
}

// TestSelection_Pruning 过滤结果变化后裁剪选择集合
func TestSelection_Pruning(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("a")
	sel.Toggle("b")

	// b 不再可见
	sel.Prune([]string{"a", "c"})
	assert.True(t, sel.Selected("a"))
	assert.False(t, sel.Selected("b"))
	assert.Equal(t, 1, sel.Count())
}

// TestSelection_ToggleAllExcludesProtected 全选永远不包含保护行
func TestSelection_ToggleAllExcludesProtected(t *testing.T) {
	sel := NewSelection()
	visible := []string{"alpha", "kamino-admins", "beta"}
	selectable := func(id string) bool { return id != "kamino-admins" }

	sel.ToggleAll(visible, selectable)
	assert.True(t, sel.Selected("alpha"))
	assert.True(t, sel.Selected("beta"))
	assert.False(t, sel.Selected("kamino-admins"))
	assert.Equal(t, HeaderAll, sel.Header(visible, selectable))

	// 再次全选变为全部取消
	sel.ToggleAll(visible, selectable)
	assert.Equal(t, 0, sel.Count())
	assert.Equal(t, HeaderNone, sel.Header(visible, selectable))
}

// TestSelection_HeaderIndeterminate 部分选中时表头为半选状态
func TestSelection_HeaderIndeterminate(t *testing.T) {
	sel := NewSelection()
	visible := []string{"alpha", "beta", "gamma"}

	sel.Toggle("alpha")
	assert.Equal(t, HeaderIndeterminate, sel.Header(visible, nil))

	sel.Toggle("beta")
	sel.Toggle("gamma")
	assert.Equal(t, HeaderAll, sel.Header(visible, nil))
}

// TestSelection_ToggleAllNeverTouchesHidden 全选/取消只作用于可见集合
func TestSelection_ToggleAllNeverTouchesHidden(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("hidden")

	sel.ToggleAll([]string{"a", "b"}, nil)
	assert.True(t, sel.Selected("hidden"))
	assert.True(t, sel.Selected("a"))

	// 全部取消也不影响不可见的选中项
	sel.ToggleAll([]string{"a", "b"}, nil)
	assert.True(t, sel.Selected("hidden"))
	assert.False(t, sel.Selected("a"))
}

// TestControls_PageResetRules 搜索词/分页大小变化重置页码，排序不重置
func TestControls_PageResetRules(t *testing.T) {
	c := NewControls()
	c.SetPage(3)

	c.ToggleSortColumn("name")
	assert.Equal(t, 3, c.Page)

	c.SetSearch("web")
	assert.Equal(t, 1, c.Page)

	c.SetPage(2)
	c.SetPageSize(25)
	assert.Equal(t, 1, c.Page)

	// 相同值不触发重置
	c.SetPage(4)
	c.SetSearch("web")
	c.SetPageSize(25)
	assert.Equal(t, 4, c.Page)

	// 过滤开关变化重置页码，重复设置相同值不重置
	c.SetFilter("running_only", true)
	assert.Equal(t, 1, c.Page)
	c.SetPage(5)
	c.SetFilter("running_only", true)
	assert.Equal(t, 5, c.Page)
}

// TestApply_FullPipeline 过滤 → 排序 → 分页组合
func TestApply_FullPipeline(t *testing.T) {
	v := testView()
	rows := fixtureRows()

	result := v.Apply(rows, Query{
		Search:   "pve1",
		Sorting:  []SortState{{Column: "name", Desc: false}},
		Page:     1,
		PageSize: 10,
	})

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "beta", result.Items[0].Name)
	assert.Equal(t, "gamma", result.Items[1].Name)
}
