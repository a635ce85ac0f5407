// Package wizard 实现模板发布/创建和 Pod 部署的分步向导状态机。
// 步骤线性编号从 1 开始，每步有独立校验；
// 会话由 Manager 按 UUID 管理，字段在各步之间累积，最终一次性提交。
package wizard

import (
	"fmt"
	"sync"
	"time"
)

// Step 向导步骤
type Step struct {
	Name string
	// Validate 当前步骤的校验，nil 表示无条件通过
	Validate func(fields map[string]interface{}) error
}

// Session 向导会话
type Session struct {
	ID   string
	Kind string // publish, create, deploy

	mu        sync.Mutex
	steps     []Step
	current   int // 1-based
	completed map[int]bool
	fields    map[string]interface{}
	initial   map[string]interface{}
	success   bool
	updatedAt time.Time
}

// State 会话状态快照（对外 JSON 表示）
type State struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"kind"`
	Step      int                    `json:"step"`
	StepCount int                    `json:"step_count"`
	StepName  string                 `json:"step_name"`
	Completed []int                  `json:"completed"`
	Fields    map[string]interface{} `json:"fields"`
	Success   bool                   `json:"success"`
	Dirty     bool                   `json:"dirty"`
}

func newSession(id, kind string, steps []Step, initial map[string]interface{}) *Session {
	if initial == nil {
		initial = map[string]interface{}{}
	}
	fields := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		fields[k] = v
	}
	return &Session{
		ID:        id,
		Kind:      kind,
		steps:     steps,
		current:   1,
		completed: make(map[int]bool),
		fields:    fields,
		initial:   initial,
		updatedAt: time.Now(),
	}
}

// Current 当前步骤编号
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetFields 写入字段值（进入下一步前由当前步骤提交）
func (s *Session) SetFields(values map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.fields[k] = v
	}
	s.updatedAt = time.Now()
}

// Field 读取字段值
func (s *Session) Field(key string) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields[key]
}

// Fields 返回字段副本（提交时聚合为一个载荷）
func (s *Session) Fields() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]interface{}, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// GoToNextStep 前进一步
// 当前步骤校验不通过时保持原地并返回错误
func (s *Session) GoToNextStep() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateCurrent(); err != nil {
		return err
	}
	if s.current >= len(s.steps) {
		return fmt.Errorf("已经是最后一步")
	}
	s.completed[s.current] = true
	s.current++
	s.updatedAt = time.Now()
	return nil
}

// GoToPreviousStep 后退一步，并取消前方步骤的完成标记
// 避免重新进入时后续步骤被误标为已完成
func (s *Session) GoToPreviousStep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current <= 1 {
		return
	}
	s.current--
	for step := range s.completed {
		if step >= s.current {
			delete(s.completed, step)
		}
	}
	s.updatedAt = time.Now()
}

// GoToStep 通过步骤条直接跳转
// 只允许跳到已完成的步骤或紧邻的下一步（后者等同于点击下一步，须通过校验）；
// 其余跳转直接忽略
func (s *Session) GoToStep(target int) {
	s.mu.Lock()

	if target < 1 || target > len(s.steps) || target == s.current {
		s.mu.Unlock()
		return
	}

	if s.completed[target] {
		s.current = target
		// 回跳后取消前方步骤的完成标记
		for step := range s.completed {
			if step >= target {
				delete(s.completed, step)
			}
		}
		s.updatedAt = time.Now()
		s.mu.Unlock()
		return
	}

	if target == s.current+1 {
		s.mu.Unlock()
		_ = s.GoToNextStep()
		return
	}

	s.mu.Unlock()
}

// MarkSuccess 进入终态，步骤条被成功面板替换
func (s *Session) MarkSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.success = true
	s.updatedAt = time.Now()
}

// Reset 恢复所有字段初始值并回到第 1 步
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fields = make(map[string]interface{}, len(s.initial))
	for k, v := range s.initial {
		s.fields[k] = v
	}
	s.current = 1
	s.completed = make(map[int]bool)
	s.success = false
	s.updatedAt = time.Now()
}

// Dirty 是否存在未保存数据（任一字段偏离初始值且未到达成功终态）
// 驱动浏览器端的离开确认提示
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Session) dirtyLocked() bool {
	if s.success {
		return false
	}
	if len(s.fields) != len(s.initial) {
		return true
	}
	for k, v := range s.fields {
		if s.initial[k] != v {
			return true
		}
	}
	return false
}

// Snapshot 导出状态快照
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := make([]int, 0, len(s.completed))
	for step := 1; step <= len(s.steps); step++ {
		if s.completed[step] {
			completed = append(completed, step)
		}
	}
	fields := make(map[string]interface{}, len(s.fields))
	for k, v := range s.fields {
		fields[k] = v
	}
	return State{
		ID:        s.ID,
		Kind:      s.Kind,
		Step:      s.current,
		StepCount: len(s.steps),
		StepName:  s.steps[s.current-1].Name,
		Completed: completed,
		Fields:    fields,
		Success:   s.success,
		Dirty:     s.dirtyLocked(),
	}
}

// ValidateAll 提交前校验全部步骤
func (s *Session) ValidateAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, step := range s.steps {
		if step.Validate == nil {
			continue
		}
		if err := step.Validate(s.fields); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) validateCurrent() error {
	step := s.steps[s.current-1]
	if step.Validate == nil {
		return nil
	}
	return step.Validate(s.fields)
}
