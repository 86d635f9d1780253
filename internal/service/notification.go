package service

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	cmmsredis "cmms-ng/pkg/redis"
)

// WebSocketClient 表示一个 WebSocket 客户端连接
type WebSocketClient struct {
	Conn     *websocket.Conn
	WriteMux sync.Mutex
}

// NewWebSocketClient 创建新的 WebSocket 客户端
func NewWebSocketClient(conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		Conn: conn,
	}
}

// SafeWrite 安全地写入消息
func (c *WebSocketClient) SafeWrite(v interface{}) error {
	c.WriteMux.Lock()
	defer c.WriteMux.Unlock()
	return c.Conn.WriteJSON(v)
}

// WebSocketManager WebSocket 连接管理器
type WebSocketManager struct {
	Clients   map[*WebSocketClient]bool
	ClientMux sync.Mutex
}

// NewWebSocketManager 创建新的 WebSocket 管理器
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		Clients: make(map[*WebSocketClient]bool),
	}
}

// AddClient 添加客户端
func (m *WebSocketManager) AddClient(client *WebSocketClient) {
	m.ClientMux.Lock()
	defer m.ClientMux.Unlock()
	m.Clients[client] = true
}

// RemoveClient 移除客户端
func (m *WebSocketManager) RemoveClient(client *WebSocketClient) {
	m.ClientMux.Lock()
	defer m.ClientMux.Unlock()
	delete(m.Clients, client)
	_ = client.Conn.Close()
}

// Broadcast 向所有客户端广播消息，写失败的连接直接移除
func (m *WebSocketManager) Broadcast(v interface{}) {
	m.ClientMux.Lock()
	clients := make([]*WebSocketClient, 0, len(m.Clients))
	for client := range m.Clients {
		clients = append(clients, client)
	}
	m.ClientMux.Unlock()

	for _, client := range clients {
		if err := client.SafeWrite(v); err != nil {
			m.RemoveClient(client)
		}
	}
}

// NotificationMessage 推送给前端的通知消息
type NotificationMessage struct {
	Type    string `json:"type"`    // 消息类型
	Payload string `json:"payload"` // JSON 负载
}

// PMNotificationRelay 订阅PM通知通道并推送给所有 WebSocket 客户端。
// 通道关闭后返回，调用方通常在独立 goroutine 中运行。
func PMNotificationRelay(redisHandler *cmmsredis.Handler, manager *WebSocketManager, logger *zap.Logger) {
	sub := redisHandler.Subscribe(cmmsredis.PMNotificationsChannel)
	defer sub.Close()

	logger.Info("PM notification relay started",
		zap.String("channel", cmmsredis.PMNotificationsChannel))

	for msg := range sub.Channel() {
		manager.Broadcast(NotificationMessage{
			Type:    "pm_run_summary",
			Payload: msg.Payload,
		})
	}

	logger.Info("PM notification relay stopped")
}
