package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "board.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "db:\n  driver: sqlite\n  path: " + dbPath + "\nauth:\n  jwt_secret: test\nlog:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "--config", cfgPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("db:\n  driver: sqlite\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "--config", cfgPath})
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err == nil {
		t.Fatal("missing jwt secret should fail")
	}
}
