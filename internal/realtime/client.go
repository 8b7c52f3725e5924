// Package realtime 管理 WebSocket 連線、在線狀態與房間廣播群組。
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"social_board/pkg/config"
)

// Options 連線的讀寫限制與心跳設定
type Options struct {
	ReadLimit  int64
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
	SendBuffer int
}

func OptionsFrom(cfg config.WebSocketConfig) Options {
	return Options{
		ReadLimit:  cfg.ReadLimit,
		WriteWait:  cfg.WriteWait,
		PongWait:   cfg.PongWait,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
	}
}

// Client 代表一個已驗證的 WebSocket 連線
type Client struct {
	ID     string
	UserID uint

	conn *websocket.Conn
	opts Options
	send chan []byte // 消息發送通道，由 writePump 消費

	once sync.Once
	done chan struct{}
}

func NewClient(conn *websocket.Conn, userID uint, opts Options) *Client {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = 10 * time.Second
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = opts.PongWait * 9 / 10
	}
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
		opts:   opts,
		send:   make(chan []byte, opts.SendBuffer),
		done:   make(chan struct{}),
	}
}

// Send 非阻塞地把訊息放入發送隊列。隊列已滿時關閉連線，回傳 false。
func (c *Client) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		slog.Warn("websocket send buffer full, closing", "client_id", c.ID, "user_id", c.UserID)
		c.Close()
		return false
	}
}

// Close 可重複呼叫；實際的關閉訊框由 writePump 送出
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// Done 連線關閉後會被關閉
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Run 啟動讀寫循環並阻塞到連線結束。handle 在讀取 goroutine 中依序處理每個訊框。
func (c *Client) Run(handle func(frame []byte)) {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	c.readPump(handle)
	c.Close()
	<-writerDone
}

// readPump 持續監聽並處理從客戶端接收的消息
func (c *Client) readPump(handle func(frame []byte)) {
	c.conn.SetReadLimit(c.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Info("websocket unexpected close", "client_id", c.ID, "user_id", c.UserID, "error", err)
			}
			return
		}
		handle(message)
	}
}

// writePump 處理向客戶端發送消息與心跳
func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			// 發送心跳包
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
