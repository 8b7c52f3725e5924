package service

import (
	"social_board/internal/realtime"
	"social_board/internal/repository"
	"social_board/internal/visibility"
)

type Services struct {
	User     *UserService
	Block    *BlockService
	Chat     *ChatService
	Sessions *SessionManager
}

// NewServices blockRegistry 為 nil 時封鎖名單直接讀資料庫
func NewServices(repos *repository.Repositories, blockRegistry visibility.Registry, opts SessionOptions) *Services {
	hub := realtime.NewHub()
	presence := realtime.NewPresence()

	userService := NewUserService(repos.User)
	blockService := NewBlockService(repos.Block, userService, blockRegistry)
	chatService := NewChatService(repos, userService, blockService, hub, presence)
	return &Services{
		User:     userService,
		Block:    blockService,
		Chat:     chatService,
		Sessions: NewSessionManager(chatService, hub, presence, opts),
	}
}
