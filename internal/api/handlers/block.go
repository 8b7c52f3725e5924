package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social_board/internal/middleware"
	"social_board/internal/service"
)

// BlockHandler 封鎖管理
type BlockHandler struct {
	blocks *service.BlockService
}

func NewBlockHandler(blocks *service.BlockService) *BlockHandler {
	return &BlockHandler{blocks: blocks}
}

func (h *BlockHandler) Block(c *gin.Context) {
	target, ok := targetUser(c)
	if !ok {
		return
	}
	if err := h.blocks.Block(c.Request.Context(), middleware.UserID(c), target); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BlockHandler) Unblock(c *gin.Context) {
	target, ok := targetUser(c)
	if !ok {
		return
	}
	if err := h.blocks.Unblock(c.Request.Context(), middleware.UserID(c), target); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BlockHandler) List(c *gin.Context) {
	blocks, err := h.blocks.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

func targetUser(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "錯誤的用戶ID"})
		return 0, false
	}
	return uint(id), true
}
