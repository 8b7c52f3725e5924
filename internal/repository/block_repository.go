package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"social_board/internal/models"
	"social_board/internal/storage"
)

type BlockRepository interface {
	// Block 重複封鎖不會報錯
	Block(ctx context.Context, blockerID, blockedID uint) error
	Unblock(ctx context.Context, blockerID, blockedID uint) error
	BlockedBy(ctx context.Context, userID uint) ([]uint, error)
	BlockersOf(ctx context.Context, userID uint) ([]uint, error)
	List(ctx context.Context, blockerID uint) ([]models.Block, error)
}

type blockRepository struct {
	baseRepository
}

func NewBlockRepository(db *storage.DB) BlockRepository {
	return &blockRepository{baseRepository{db: db}}
}

func (r *blockRepository) Block(ctx context.Context, blockerID, blockedID uint) error {
	block := models.Block{BlockerID: blockerID, BlockedID: blockedID}
	return r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
		DoNothing: true,
	}).Create(&block).Error
}

func (r *blockRepository) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	return r.conn(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

func (r *blockRepository) BlockedBy(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.conn(ctx).Model(&models.Block{}).Where("blocker_id = ?", userID).Pluck("blocked_id", &ids).Error
	return ids, err
}

func (r *blockRepository) BlockersOf(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.conn(ctx).Model(&models.Block{}).Where("blocked_id = ?", userID).Pluck("blocker_id", &ids).Error
	return ids, err
}

func (r *blockRepository) List(ctx context.Context, blockerID uint) ([]models.Block, error) {
	var blocks []models.Block
	err := r.conn(ctx).Where("blocker_id = ?", blockerID).Order("created_at DESC").Find(&blocks).Error
	return blocks, err
}
