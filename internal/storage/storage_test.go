package storage

import (
	"testing"

	"social_board/pkg/config"
)

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := Open(config.DBConfig{Driver: "sqlite", Path: "file:storage_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	type probe struct {
		ID   uint
		Name string
	}
	if err := db.AutoMigrate(&probe{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&probe{Name: "x"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	var n int64
	if err := db.Model(&probe{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("count = %d, err = %v", n, err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.DBConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
