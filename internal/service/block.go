package service

import (
	"context"
	"log/slog"

	"social_board/internal/models"
	"social_board/internal/repository"
	"social_board/internal/visibility"
)

// blockInvalidator 封鎖關係變更時需要清除的快取
type blockInvalidator interface {
	Invalidate(ctx context.Context, blockerID, blockedID uint) error
}

// BlockService 管理封鎖關係並計算可見性排除集合
type BlockService struct {
	blockRepo   repository.BlockRepository
	users       *UserService
	registry    visibility.Registry
	invalidator blockInvalidator
}

// NewBlockService registry 為 nil 時直接讀資料庫
func NewBlockService(blockRepo repository.BlockRepository, users *UserService, registry visibility.Registry) *BlockService {
	s := &BlockService{blockRepo: blockRepo, users: users, registry: registry}
	if s.registry == nil {
		s.registry = blockRepo
	}
	if inv, ok := registry.(blockInvalidator); ok {
		s.invalidator = inv
	}
	return s
}

func (s *BlockService) Block(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return invalid("cannot block yourself")
	}
	exists, err := s.users.Exists(ctx, blockedID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if err := s.blockRepo.Block(ctx, blockerID, blockedID); err != nil {
		return storageErr(err)
	}
	s.invalidate(ctx, blockerID, blockedID)
	return nil
}

// Unblock 解除不存在的封鎖不會報錯
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	if err := s.blockRepo.Unblock(ctx, blockerID, blockedID); err != nil {
		return storageErr(err)
	}
	s.invalidate(ctx, blockerID, blockedID)
	return nil
}

func (s *BlockService) List(ctx context.Context, blockerID uint) ([]models.Block, error) {
	blocks, err := s.blockRepo.List(ctx, blockerID)
	return blocks, storageErr(err)
}

// Excluded 計算 viewer 看不到的用戶
func (s *BlockService) Excluded(ctx context.Context, viewer uint) (visibility.Excluded, error) {
	ex, err := visibility.Resolve(ctx, s.registry, viewer)
	return ex, storageErr(err)
}

func (s *BlockService) invalidate(ctx context.Context, blockerID, blockedID uint) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, blockerID, blockedID); err != nil {
		slog.Warn("block cache invalidation failed", "blocker_id", blockerID, "blocked_id", blockedID, "error", err)
	}
}
