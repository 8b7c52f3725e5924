package service

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

// 客戶端送來的事件
const (
	EventJoinRoom    = "joinRoom"
	EventLeaveRoom   = "leaveRoom"
	EventSendMessage = "sendMessage"
	EventMarkAsRead  = "markAsRead"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
)

// 伺服器送出的事件
const (
	EventNewMessage          = "newMessage"
	EventMessageNotification = "messageNotification"
	EventMessagesRead        = "messagesRead"
	EventUserTyping          = "userTyping"
	EventError               = "error"
)

const maxContentLength = 4000

// Envelope 所有訊框的外層格式
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type RoomPayload struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
}

type SendMessagePayload struct {
	RoomID     string `json:"roomId" validate:"required,max=64"`
	ReceiverID uint   `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required,max=4000"`
}

type MarkReadPayload struct {
	RoomID    string `json:"roomId" validate:"required,max=64"`
	MessageID *uint  `json:"messageId,omitempty" validate:"omitempty,gt=0"`
}

type MessageNotification struct {
	RoomID    string    `json:"roomId"`
	MessageID uint      `json:"messageId"`
	SenderID  uint      `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReadConfirmation struct {
	RoomID    string `json:"roomId"`
	UserID    uint   `json:"userId"`
	MessageID *uint  `json:"messageId,omitempty"`
}

type TypingStatus struct {
	RoomID   string `json:"roomId"`
	UserID   uint   `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

var validate = validator.New()

// decodePayload 解析並驗證事件資料
func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return invalid("missing data")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return invalid("malformed data: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// encodeEvent 編碼失敗只可能是程式錯誤，直接 panic 交給上層 recover
func encodeEvent(event string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		panic(err)
	}
	return frame
}
