package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"social_board/internal/models"
	"social_board/internal/storage"
	"social_board/internal/visibility"
)

type RoomRepository interface {
	// FindOrCreate 依無序參與者組合取得房間，不存在時建立；併發呼叫回傳同一間
	FindOrCreate(ctx context.Context, userA, userB uint) (*models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	IsMember(ctx context.Context, roomID string, userID uint) (bool, error)
	// ListForUser 列出 userID 參與的房間，略過另一位參與者被排除的房間
	ListForUser(ctx context.Context, userID uint, ex visibility.Excluded) ([]models.Room, error)
	Touch(ctx context.Context, roomID string) error
}

type roomRepository struct {
	baseRepository
}

func NewRoomRepository(db *storage.DB) RoomRepository {
	return &roomRepository{baseRepository{db: db}}
}

func (r *roomRepository) FindOrCreate(ctx context.Context, userA, userB uint) (*models.Room, error) {
	lo, hi := models.OrderPair(userA, userB)

	candidate := models.Room{UserAID: lo, UserBID: hi}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
		DoNothing: true,
	}).Create(&candidate).Error
	if err != nil {
		return nil, translate(err)
	}

	// 衝突時 candidate 沒有寫入，重新以組合查詢
	var room models.Room
	if err := r.conn(ctx).Where("user_a_id = ? AND user_b_id = ?", lo, hi).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *roomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.conn(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *roomRepository) IsMember(ctx context.Context, roomID string, userID uint) (bool, error) {
	var n int64
	err := r.conn(ctx).Model(&models.Room{}).
		Where("id = ? AND (user_a_id = ? OR user_b_id = ?)", roomID, userID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *roomRepository) ListForUser(ctx context.Context, userID uint, ex visibility.Excluded) ([]models.Room, error) {
	var rooms []models.Room
	err := r.conn(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return visibility.Filter(rooms, ex, func(room models.Room) uint { return room.Other(userID) }), nil
}

// Touch 選取房間時更新 updated_at
func (r *roomRepository) Touch(ctx context.Context, roomID string) error {
	return r.conn(ctx).Model(&models.Room{}).Where("id = ?", roomID).
		UpdateColumn("updated_at", time.Now()).Error
}
