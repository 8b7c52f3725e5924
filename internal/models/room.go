package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room 表示兩位用戶之間的聊天室。
// 參與者以 UserAID < UserBID 的順序存放，(user_a_id, user_b_id) 唯一。
type Room struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserAID   uint      `gorm:"not null;uniqueIndex:idx_room_pair,priority:1" json:"userAId"`
	UserBID   uint      `gorm:"not null;uniqueIndex:idx_room_pair,priority:2;index" json:"userBId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate 房間 ID 為不可猜測的 UUID
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// HasMember 判斷用戶是否為房間參與者
func (r *Room) HasMember(userID uint) bool {
	return r.UserAID == userID || r.UserBID == userID
}

// Other 回傳另一位參與者；userID 不是參與者時回傳 0
func (r *Room) Other(userID uint) uint {
	switch userID {
	case r.UserAID:
		return r.UserBID
	case r.UserBID:
		return r.UserAID
	}
	return 0
}

// OrderPair 將無序的參與者組合轉成存放順序
func OrderPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
