package models

import "time"

// Block 封鎖關係 (blocker 封鎖 blocked)
type Block struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;uniqueIndex:idx_block_pair,priority:1" json:"blockerId"`
	BlockedID uint      `gorm:"not null;uniqueIndex:idx_block_pair,priority:2;index" json:"blockedId"`
	CreatedAt time.Time `json:"createdAt"`
}

// All 需要遷移的模型
func All() []interface{} {
	return []interface{}{&User{}, &Room{}, &Message{}, &Block{}}
}
