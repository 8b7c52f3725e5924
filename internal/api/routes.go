package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social_board/internal/api/handlers"
	"social_board/internal/middleware"
	"social_board/internal/service"
	"social_board/internal/utils"
)

func SetupRoutes(r *gin.Engine, services *service.Services, tokens *utils.TokenManager, allowedOrigins []string) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User, tokens)
	chatHandler := handlers.NewChatHandler(services.Chat)
	blockHandler := handlers.NewBlockHandler(services.Block)
	wsHandler := handlers.NewWebSocketHandler(services.Sessions, tokens, allowedOrigins)

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// WebSocket 連接點，token 在升級前驗證
	r.GET("/ws/chat", wsHandler.HandleWebSocket)

	// API 路由群組
	api := r.Group("/api")

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":      "ok",
				"online":      services.Sessions.Online(),
				"connections": services.Sessions.Connections(),
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(tokens))
	{
		chat := authorized.Group("/chat")
		{
			chat.POST("/rooms", chatHandler.OpenRoom)            // 取得或建立房間
			chat.GET("/rooms", chatHandler.ListRooms)            // 可見的房間列表
			chat.GET("/rooms/:id/messages", chatHandler.History) // 訊息紀錄
			chat.POST("/rooms/:id/read", chatHandler.MarkRead)   // 標示已讀
			chat.GET("/unread", chatHandler.Unread)              // 未讀數
		}

		blocks := authorized.Group("/blocks")
		{
			blocks.GET("", blockHandler.List)
			blocks.POST("/:userId", blockHandler.Block)
			blocks.DELETE("/:userId", blockHandler.Unblock)
		}
	}
}
