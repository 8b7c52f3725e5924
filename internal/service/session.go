package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"

	"social_board/internal/realtime"
)

// SessionOptions 每條連線的協定設定
type SessionOptions struct {
	Client       realtime.Options
	EventTimeout time.Duration
	// VerifyJoin 加入房間時檢查成員資格。關閉時房間 ID 本身即為憑證，
	// 只能透過有成員檢查的 REST API 取得。
	VerifyJoin bool
}

// SessionManager 處理已驗證連線的聊天協定
type SessionManager struct {
	chat     *ChatService
	hub      *realtime.Hub
	presence *realtime.Presence
	opts     SessionOptions
}

func NewSessionManager(chat *ChatService, hub *realtime.Hub, presence *realtime.Presence, opts SessionOptions) *SessionManager {
	return &SessionManager{chat: chat, hub: hub, presence: presence, opts: opts}
}

// Serve 登記在線狀態並處理連線直到斷線。呼叫前必須已完成身分驗證。
func (m *SessionManager) Serve(conn *websocket.Conn, userID uint) {
	client := realtime.NewClient(conn, userID, m.opts.Client)
	m.hub.Attach(client)
	if prev := m.presence.Register(userID, client); prev != nil {
		slog.Debug("presence superseded", "user_id", userID, "previous_client", prev.ID)
	}
	slog.Info("websocket connected", "user_id", userID, "client_id", client.ID)

	defer func() {
		m.presence.Unregister(userID, client)
		m.hub.Detach(client)
		slog.Info("websocket disconnected", "user_id", userID, "client_id", client.ID)
	}()

	client.Run(func(frame []byte) {
		m.Dispatch(client, frame)
	})
}

// Dispatch 處理單一訊框。任何錯誤 (包括 panic) 都轉成 error 事件回給這條連線。
func (m *SessionManager) Dispatch(c *realtime.Client, frame []byte) {
	var env Envelope
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling event", "event", env.Event, "user_id", c.UserID, "panic", r, "stack", string(debug.Stack()))
			m.replyError(c, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := json.Unmarshal(frame, &env); err != nil {
		m.replyError(c, invalid("malformed frame"))
		return
	}

	ctx, cancel := eventContext(context.Background(), m.opts.EventTimeout)
	defer cancel()

	if err := m.handle(ctx, c, env); err != nil {
		if ErrorCode(err) == "internal_error" {
			slog.Error("event failed", "event", env.Event, "user_id", c.UserID, "error", err)
		}
		m.replyError(c, err)
	}
}

func (m *SessionManager) handle(ctx context.Context, c *realtime.Client, env Envelope) error {
	switch env.Event {
	case EventJoinRoom:
		var p RoomPayload
		if err := decodePayload(env.Data, &p); err != nil {
			return err
		}
		if m.opts.VerifyJoin {
			if err := m.chat.CanJoin(ctx, c.UserID, p.RoomID); err != nil {
				return err
			}
		}
		m.hub.Join(p.RoomID, c)
		return nil

	case EventLeaveRoom:
		var p RoomPayload
		if err := decodePayload(env.Data, &p); err != nil {
			return err
		}
		m.hub.Leave(p.RoomID, c)
		return nil

	case EventSendMessage:
		var p SendMessagePayload
		if err := decodePayload(env.Data, &p); err != nil {
			return err
		}
		_, err := m.chat.SendMessage(ctx, c.UserID, p)
		return err

	case EventMarkAsRead:
		var p MarkReadPayload
		if err := decodePayload(env.Data, &p); err != nil {
			return err
		}
		return m.chat.MarkRead(ctx, c.UserID, p.RoomID, p.MessageID)

	case EventTyping, EventStopTyping:
		var p RoomPayload
		if err := decodePayload(env.Data, &p); err != nil {
			return err
		}
		m.chat.Typing(c, c.UserID, p.RoomID, env.Event == EventTyping)
		return nil

	default:
		return invalid("unknown event %q", env.Event)
	}
}

func (m *SessionManager) replyError(c *realtime.Client, err error) {
	c.Send(encodeEvent(EventError, ErrorPayload{Message: PublicMessage(err), Code: ErrorCode(err)}))
}

// Shutdown 關閉所有連線
func (m *SessionManager) Shutdown() {
	m.hub.CloseAll()
}

// Online 目前在線的用戶數
func (m *SessionManager) Online() int {
	return m.presence.Len()
}

// Connections 目前的 WebSocket 連線數，同一用戶被取代的舊連線在關閉前也算在內
func (m *SessionManager) Connections() int {
	return m.hub.Connections()
}
