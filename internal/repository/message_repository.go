package repository

import (
	"context"

	"gorm.io/gorm"

	"social_board/internal/models"
	"social_board/internal/storage"
	"social_board/internal/visibility"
)

type MessageRepository interface {
	Append(ctx context.Context, msg *models.Message) error
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	// FindPage 由新到舊分頁，page 從 1 開始，回傳符合條件的總數
	FindPage(ctx context.Context, roomID string, ex visibility.Excluded, page, size int) ([]models.Message, int64, error)
	// LastInRoom 房間中最新一則可見訊息，沒有時回傳 nil
	LastInRoom(ctx context.Context, roomID string, ex visibility.Excluded) (*models.Message, error)
	// MarkOne 將訊息標示為已讀，回傳是否實際變更
	MarkOne(ctx context.Context, id uint) (bool, error)
	MarkAllInRoom(ctx context.Context, roomID string, receiverID uint, ex visibility.Excluded) (int64, error)
	CountUnread(ctx context.Context, receiverID uint, ex visibility.Excluded) (int64, error)
	CountUnreadByRoom(ctx context.Context, receiverID uint, ex visibility.Excluded) (map[string]int64, error)
}

type messageRepository struct {
	baseRepository
}

func NewMessageRepository(db *storage.DB) MessageRepository {
	return &messageRepository{baseRepository{db: db}}
}

func (r *messageRepository) Append(ctx context.Context, msg *models.Message) error {
	return translate(r.conn(ctx).Create(msg).Error)
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.conn(ctx).First(&msg, id).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (r *messageRepository) FindPage(ctx context.Context, roomID string, ex visibility.Excluded, page, size int) ([]models.Message, int64, error) {
	query := func() *gorm.DB {
		return r.conn(ctx).Model(&models.Message{}).
			Where("room_id = ?", roomID).
			Scopes(visibility.ExcludeAuthors("sender_id", ex))
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Message
	err := query().Order("created_at DESC").Order("id DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *messageRepository) LastInRoom(ctx context.Context, roomID string, ex visibility.Excluded) (*models.Message, error) {
	var items []models.Message
	err := r.conn(ctx).
		Where("room_id = ?", roomID).
		Scopes(visibility.ExcludeAuthors("sender_id", ex)).
		Order("created_at DESC").Order("id DESC").
		Limit(1).Find(&items).Error
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

func (r *messageRepository) MarkOne(ctx context.Context, id uint) (bool, error) {
	res := r.conn(ctx).Model(&models.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true)
	return res.RowsAffected > 0, res.Error
}

func (r *messageRepository) MarkAllInRoom(ctx context.Context, roomID string, receiverID uint, ex visibility.Excluded) (int64, error) {
	res := r.conn(ctx).Model(&models.Message{}).
		Where("room_id = ? AND receiver_id = ? AND is_read = ?", roomID, receiverID, false).
		Scopes(visibility.ExcludeAuthors("sender_id", ex)).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID uint, ex visibility.Excluded) (int64, error) {
	var n int64
	err := r.conn(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Scopes(visibility.ExcludeAuthors("sender_id", ex)).
		Count(&n).Error
	return n, err
}

func (r *messageRepository) CountUnreadByRoom(ctx context.Context, receiverID uint, ex visibility.Excluded) (map[string]int64, error) {
	var rows []struct {
		RoomID string
		N      int64
	}
	err := r.conn(ctx).Model(&models.Message{}).
		Select("room_id, COUNT(*) AS n").
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Scopes(visibility.ExcludeAuthors("sender_id", ex)).
		Group("room_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.RoomID] = row.N
	}
	return out, nil
}
