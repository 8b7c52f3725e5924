// Package api 設定 HTTP 與 WebSocket 路由。
//
// REST 介面負責房間、訊息紀錄、未讀數與封鎖管理；/ws/chat 在驗證 token 後升級為聊天連線。
package api
