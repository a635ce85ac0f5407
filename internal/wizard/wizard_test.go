package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestPublish_StepGating 第 1 步未选模板时不允许前进
func TestPublish_StepGating(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Close()

	s, err := m.Create(KindPublish)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Current())

	// 未选择模板，前进被拒绝
	err = s.GoToNextStep()
	assert.Error(t, err)
	assert.Equal(t, 1, s.Current())

	// 选择模板后可以前进
	s.SetFields(map[string]interface{}{"template": "web-range"})
	assert.NoError(t, s.GoToNextStep())
	assert.Equal(t, 2, s.Current())
}

// TestPublish_GoToStepOnlyCompletedOrNext 只能跳到已完成步骤或紧邻下一步
func TestPublish_GoToStepOnlyCompletedOrNext(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Close()

	s, _ := m.Create(KindPublish)
	s.SetFields(map[string]interface{}{"template": "web-range"})
	assert.NoError(t, s.GoToNextStep())
	assert.Equal(t, 2, s.Current())

	// 只完成了第 1 步，跳到第 3 步被忽略（第 2 步校验不通过）
	s.GoToStep(3)
	assert.Equal(t, 2, s.Current())

	// 跳回已完成的第 1 步允许
	s.GoToStep(1)
	assert.Equal(t, 1, s.Current())
}

// TestPublish_NextStepValidation 第 2 步校验描述/作者/VM 数量
func TestPublish_NextStepValidation(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Close()

	s, _ := m.Create(KindPublish)
	s.SetFields(map[string]interface{}{"template": "web-range"})
	assert.NoError(t, s.GoToNextStep())

	// 描述为空
	err := s.GoToNextStep()
	assert.Error(t, err)

	// VM 数量超出发布上限 10
	s.SetFields(map[string]interface{}{
		"description": "三层 Web 靶场",
		"authors":     "ops",
		"vm_count":    float64(11),
	})
	err = s.GoToNextStep()
	assert.Error(t, err)

	s.SetFields(map[string]interface{}{"vm_count": float64(5)})
	assert.NoError(t, s.GoToNextStep())
	assert.Equal(t, 3, s.Current())
}

// TestSession_PreviousUncompletesAhead 后退时取消前方步骤的完成标记
func TestSession_PreviousUncompletesAhead(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Close()

	s, _ := m.Create(KindPublish)
	s.SetFields(map[string]interface{}{
		"template":    "web-range",
		"description": "desc",
		"authors":     "ops",
		"vm_count":    float64(3),
	})
	assert.NoError(t, s.GoToNextStep())
	assert.NoError(t, s.GoToNextStep())
	assert.Equal(t, 3, s.Current())

	s.GoToPreviousStep()
	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Step)
	// 第 2 步及之后不再是已完成状态
	assert.Equal(t, []int{1}, snap.Completed)
}

// TestSession_ResetRestoresInitial 重置恢复初始值并回到第 1 步
func TestSession_ResetRestoresInitial(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Close()

	s, _ := m.Create(KindCreate)
	s.SetFields(map[string]interface{}{"pool": "range-pool", "name": "tpl"})
	assert.NoError(t, s.GoToNextStep())
	assert.True(t, s.Dirty())

	s.Reset()
	assert.Equal(t, 1, s.Current())
	assert.False(t, s.Dirty())
	assert.Equal(t, "", s.Field("pool"))
}

// TestSession_SuccessClearsDirty 成功终态后不再提示未保存数据
func TestSession_SuccessClearsDirty(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Close()

	s, _ := m.Create(KindDeploy)
	s.SetFields(map[string]interface{}{"template": "web-range", "pod_name": "team1"})
	assert.True(t, s.Dirty())

	s.MarkSuccess()
	assert.False(t, s.Dirty())
	assert.True(t, s.Snapshot().Success)
}

// TestManager_GetUnknownSession 未知会话返回错误
func TestManager_GetUnknownSession(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Close()

	_, err := m.Get("does-not-exist")
	assert.Error(t, err)
}

// TestManager_DeleteSession 删除后无法再获取
func TestManager_DeleteSession(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Close()

	s, _ := m.Create(KindDeploy)
	m.Delete(s.ID)
	_, err := m.Get(s.ID)
	assert.Error(t, err)
}
