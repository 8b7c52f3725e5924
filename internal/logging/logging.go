// Package logging 設定全域的 slog 與標準 log 輸出。
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"social_board/pkg/config"
)

// Setup 依照設定建立 slog 預設 logger，標準 log 也會寫到同一個 handler。
// format: console | json；level: debug | info | warn | error。
// cfg.File 不為空時寫入可輪替的檔案。
func Setup(cfg config.LogConfig) *slog.Logger {
	var w io.Writer = os.Stderr
	if strings.TrimSpace(cfg.File) != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}

	logger := New(w, cfg.Level, cfg.Format)
	// 之後標準 log 的輸出也會經由這個 handler
	slog.SetDefault(logger)
	return logger
}

// New 建立寫入 w 的 logger，不修改全域設定
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel 未知的等級一律視為 info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
