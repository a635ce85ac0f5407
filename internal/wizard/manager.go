package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// Manager 向导会话管理器
// 会话只存在内存中，超过 TTL 未活动的会话被定期清理
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager 创建会话管理器并启动后台清理
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Create 创建指定类型的向导会话
func (m *Manager) Create(kind string) (*Session, error) {
	steps, err := stepsForKind(kind)
	if err != nil {
		return nil, err
	}

	session := newSession(uuid.NewString(), kind, steps, initialFieldsForKind(kind))

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	logger.Info("创建向导会话: kind=%s id=%s", kind, session.ID)
	return session, nil
}

// Get 按 ID 获取会话
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("向导会话不存在或已过期: %s", id)
	}
	return session, nil
}

// Delete 删除会话（提交成功或用户放弃后调用）
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Close 停止后台清理
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

// sweepLoop 定期清理过期会话
func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, session := range m.sessions {
		session.mu.Lock()
		expired := session.updatedAt.Before(cutoff)
		session.mu.Unlock()
		if expired {
			delete(m.sessions, id)
			logger.Info("清理过期向导会话: %s", id)
		}
	}
}
