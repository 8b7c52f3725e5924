package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"social_board/internal/middleware"
	"social_board/internal/service"
)

// WebSocketHandler 處理聊天 WebSocket 連接
type WebSocketHandler struct {
	sessions *service.SessionManager
	verifier middleware.TokenVerifier
	upgrader websocket.Upgrader
}

// NewWebSocketHandler allowedOrigins 為空時只接受同源請求
func NewWebSocketHandler(sessions *service.SessionManager, verifier middleware.TokenVerifier, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{sessions: sessions, verifier: verifier}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// HandleWebSocket 先驗證 token 再升級連線；驗證失敗直接回 401，不建立 WebSocket
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	token := middleware.BearerToken(c)
	userID, err := h.verifier.Verify(token)
	if token == "" || err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已經回應錯誤
		return
	}
	h.sessions.Serve(conn, userID)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil // gorilla 預設: 同源或沒有 Origin 頭
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}
