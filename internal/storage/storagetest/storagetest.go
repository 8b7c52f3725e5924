// Package storagetest 提供測試用的記憶體資料庫
package storagetest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"social_board/internal/models"
	"social_board/internal/storage"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// New 為每個測試開一個獨立的 sqlite 記憶體資料庫並完成遷移，測試結束時關閉
func New(t testing.TB) *storage.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", nameReplacer.Replace(t.Name()), uuid.NewString()[:8])
	db, err := storage.NewSQLiteDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
