package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social_board/internal/middleware"
	"social_board/internal/service"
)

// ChatHandler 聊天室的 REST 介面
type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// OpenRoom 取得或建立與指定用戶的房間
func (h *ChatHandler) OpenRoom(c *gin.Context) {
	var input struct {
		UserID uint `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.chat.OpenRoom(c.Request.Context(), middleware.UserID(c), input.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	rooms, err := h.chat.ListRooms(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

type historyQuery struct {
	Page int `form:"page" binding:"omitempty,min=1,max=10000"`
	Size int `form:"size" binding:"omitempty,min=1"`
}

// History 分頁參數 page 從 1 開始，size 預設 20，上限 100
func (h *ChatHandler) History(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.chat.History(c.Request.Context(), middleware.UserID(c), c.Param("id"), q.Page, q.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MarkRead 與 WebSocket 的 markAsRead 相同，只有接收者可以標示
func (h *ChatHandler) MarkRead(c *gin.Context) {
	var input struct {
		MessageID *uint `json:"messageId"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.chat.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("id"), input.MessageID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) Unread(c *gin.Context) {
	summary, err := h.chat.UnreadCounts(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
