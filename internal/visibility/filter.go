// Package visibility 根據封鎖關係決定內容是否對檢視者可見。
//
// 被檢視者封鎖、或封鎖了檢視者的作者，其內容都不可見；資料本身不會被刪除，
// 解除封鎖後即恢復可見。
package visibility

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// Registry 提供封鎖關係的兩個方向
type Registry interface {
	// BlockedBy 回傳 userID 封鎖的用戶
	BlockedBy(ctx context.Context, userID uint) ([]uint, error)
	// BlockersOf 回傳封鎖 userID 的用戶
	BlockersOf(ctx context.Context, userID uint) ([]uint, error)
}

// Excluded 對某位檢視者不可見的作者集合。零值代表沒有排除任何人。
type Excluded map[uint]struct{}

func NewExcluded(sets ...[]uint) Excluded {
	ex := make(Excluded)
	for _, set := range sets {
		for _, id := range set {
			ex[id] = struct{}{}
		}
	}
	return ex
}

// Visible 作者不在排除集合中即可見
func (e Excluded) Visible(author uint) bool {
	_, hidden := e[author]
	return !hidden
}

// IDs 排序後的作者 ID
func (e Excluded) IDs() []uint {
	ids := make([]uint, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Resolve 計算 viewer 的排除集合: 自己封鎖的人與封鎖自己的人
func Resolve(ctx context.Context, r Registry, viewer uint) (Excluded, error) {
	blocked, err := r.BlockedBy(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("load blocked users: %w", err)
	}
	blockers, err := r.BlockersOf(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("load blockers: %w", err)
	}
	return NewExcluded(blocked, blockers), nil
}

// ExcludeAuthors 把排除條件下推到查詢。集合為空時不加條件，
// 否則 gorm 會產生 NOT IN (NULL)，使查詢永遠沒有結果。
func ExcludeAuthors(column string, ex Excluded) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(ex) == 0 {
			return db
		}
		return db.Where(column+" NOT IN ?", ex.IDs())
	}
}

// Filter 用於無法下推到查詢的來源，保留原本順序
func Filter[T any](items []T, ex Excluded, author func(T) uint) []T {
	if len(ex) == 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if ex.Visible(author(it)) {
			out = append(out, it)
		}
	}
	return out
}
