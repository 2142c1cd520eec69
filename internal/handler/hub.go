package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"planbench/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Hub 把执行过程中的事件广播给所有 WebSocket 订阅者
type Hub struct {
	register   chan *wsClient
	unregister chan *wsClient
	clients    map[*wsClient]bool
	broadcast  chan []byte
	done       chan struct{}
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run 在独立 goroutine 中运行，ctx 结束时关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 慢消费者直接断开
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish 供执行控制器调用；队列满时丢弃事件，不阻塞实验
func (h *Hub) Publish(ev service.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WS] 序列化事件失败: %v", err)
		return
	}
	select {
	case h.broadcast <- b:
	default:
		log.Printf("[WS] 事件队列已满，丢弃 %s", ev.Type)
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ServeWS GET /api/ws
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade: %v", err)
		return
	}
	client := &wsClient{hub: h, conn: conn, send: make(chan []byte, 256)}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *wsClient) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump 只用来感知断开
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
