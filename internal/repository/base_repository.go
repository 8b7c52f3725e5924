package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"social_board/internal/storage"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// baseRepository 各 repository 共用的連線與錯誤轉換
type baseRepository struct {
	db *storage.DB
}

func (r baseRepository) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// translate 把 gorm 的錯誤轉成本套件的錯誤，其他錯誤原樣回傳
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
