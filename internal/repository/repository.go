package repository

import "social_board/internal/storage"

type Repositories struct {
	User    UserRepository
	Room    RoomRepository
	Message MessageRepository
	Block   BlockRepository
}

func NewRepositories(db *storage.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Room:    NewRoomRepository(db),
		Message: NewMessageRepository(db),
		Block:   NewBlockRepository(db),
	}
}
