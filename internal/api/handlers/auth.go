package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social_board/internal/service"
)

// TokenIssuer 為登入成功的用戶簽發 token
type TokenIssuer interface {
	GenerateToken(userID uint) (string, error)
}

// AuthHandler 處理與認證相關的請求
type AuthHandler struct {
	userService *service.UserService
	tokens      TokenIssuer
}

// NewAuthHandler 創建一個新的 AuthHandler 實例
func NewAuthHandler(userService *service.UserService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens}
}

// credentials 註冊與登入共用的請求結構
type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 處理用戶註冊
func (h *AuthHandler) Register(c *gin.Context) {
	var input credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.issue(c, http.StatusCreated, user.ID)
}

// Login 處理用戶登入
func (h *AuthHandler) Login(c *gin.Context) {
	var input credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.issue(c, http.StatusOK, user.ID)
}

func (h *AuthHandler) issue(c *gin.Context, status int, userID uint) {
	token, err := h.tokens.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "獲取token失敗"})
		return
	}
	c.JSON(status, gin.H{"token": token, "userId": userID})
}
