package models

import (
	"time"
)

// Message 聊天訊息，一律寫入資料庫；唯一的變更是 is_read 由 false 變為 true
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomID     string    `gorm:"type:varchar(36);not null;index:idx_messages_room_created,priority:1" json:"roomId"`
	SenderID   uint      `gorm:"not null;index" json:"senderId"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_receiver_unread,priority:1" json:"receiverId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsRead     bool      `gorm:"not null;default:false;index:idx_messages_receiver_unread,priority:2" json:"isRead"`
	CreatedAt  time.Time `gorm:"index:idx_messages_room_created,priority:2" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
