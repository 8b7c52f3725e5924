package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserID gin context 中存放已驗證用戶 ID 的 key
const ContextUserID = "userID"

// TokenVerifier 驗證 token 並回傳用戶 ID
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// BearerToken 從 Authorization 頭取得 token，沒有時改用 token 查詢參數 (瀏覽器的 WebSocket 無法自訂 header)
func BearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// AuthMiddleware 是一個 Gin 中間件，用於驗證請求的 JWT token
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 將用戶信息設置到上下文中
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID 取得 AuthMiddleware 設定的用戶 ID
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}
