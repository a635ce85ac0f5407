package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kamino-labs/kamino-portal/pkg/logger"
)

// ToastEvent 推送给前端的操作通知
// 写操作完成后广播，前端据此弹出 toast 并触发列表刷新
type ToastEvent struct {
	Level    string    `json:"level"` // success, error
	Message  string    `json:"message"`
	Resource string    `json:"resource"` // user, group, pod, vm, template
	Time     time.Time `json:"time"`
}

// EventHub WebSocket 事件中心
type EventHub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// NewEventHub 创建事件中心
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 门户与前端同源部署，跨域控制交给 CORS 中间件
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleEvents 处理 WebSocket 连接
func (h *EventHub) HandleEvents(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket 升级失败: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	logger.Info("事件订阅连接建立: %s", c.ClientIP())

	// 读循环只用于感知连接关闭
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish 向所有订阅者广播事件
func (h *EventHub) Publish(level, resource, message string) {
	event := ToastEvent{
		Level:    level,
		Message:  message,
		Resource: resource,
		Time:     time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			logger.Warn("事件推送失败，移除连接: %v", err)
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *EventHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
