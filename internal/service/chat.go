package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"social_board/internal/models"
	"social_board/internal/realtime"
	"social_board/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 10000
)

// RoomSummary 房間列表的一筆資料
type RoomSummary struct {
	Room        models.Room     `json:"room"`
	OtherUserID uint            `json:"otherUserId"`
	LastMessage *models.Message `json:"lastMessage,omitempty"`
	UnreadCount int64           `json:"unreadCount"`
}

type MessagePage struct {
	Items []models.Message `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

type UnreadSummary struct {
	Total int64            `json:"total"`
	Rooms map[string]int64 `json:"rooms"`
}

// ChatService 房間、訊息與已讀狀態。寫入後透過 Hub 與 Presence 推送事件。
//
// 封鎖關係不影響寫入與推送，只在房間列表、訊息紀錄與未讀數等讀取路徑過濾，
// 因此被封鎖的一方無法從送出結果察覺封鎖。
type ChatService struct {
	rooms    repository.RoomRepository
	messages repository.MessageRepository
	users    *UserService
	blocks   *BlockService
	hub      *realtime.Hub
	presence *realtime.Presence
}

func NewChatService(repos *repository.Repositories, users *UserService, blocks *BlockService, hub *realtime.Hub, presence *realtime.Presence) *ChatService {
	return &ChatService{
		rooms:    repos.Room,
		messages: repos.Message,
		users:    users,
		blocks:   blocks,
		hub:      hub,
		presence: presence,
	}
}

// OpenRoom 取得或建立與 otherID 的房間，並更新房間的 updated_at
func (s *ChatService) OpenRoom(ctx context.Context, userID, otherID uint) (*models.Room, error) {
	if otherID == 0 || otherID == userID {
		return nil, invalid("cannot open a room with yourself")
	}
	exists, err := s.users.Exists(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	room, err := s.rooms.FindOrCreate(ctx, userID, otherID)
	if err != nil {
		return nil, storageErr(err)
	}
	if err := s.rooms.Touch(ctx, room.ID); err != nil {
		return nil, storageErr(err)
	}
	return room, nil
}

// ListRooms 列出可見的房間，附上最後一則可見訊息與未讀數
func (s *ChatService) ListRooms(ctx context.Context, userID uint) ([]RoomSummary, error) {
	ex, err := s.blocks.Excluded(ctx, userID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListForUser(ctx, userID, ex)
	if err != nil {
		return nil, storageErr(err)
	}
	unread, err := s.messages.CountUnreadByRoom(ctx, userID, ex)
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		last, err := s.messages.LastInRoom(ctx, room.ID, ex)
		if err != nil {
			return nil, storageErr(err)
		}
		out = append(out, RoomSummary{
			Room:        room,
			OtherUserID: room.Other(userID),
			LastMessage: last,
			UnreadCount: unread[room.ID],
		})
	}
	return out, nil
}

// History 由新到舊分頁讀取訊息，略過被排除的發送者
func (s *ChatService) History(ctx context.Context, userID uint, roomID string, page, size int) (*MessagePage, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		return nil, invalid("page must not exceed %d", maxPage)
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	if _, err := s.memberRoom(ctx, roomID, userID); err != nil {
		return nil, err
	}
	ex, err := s.blocks.Excluded(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, total, err := s.messages.FindPage(ctx, roomID, ex, page, size)
	if err != nil {
		return nil, storageErr(err)
	}
	return &MessagePage{Items: items, Total: total, Page: page, Size: size}, nil
}

// UnreadCounts 總未讀數等於各房間未讀數的總和
func (s *ChatService) UnreadCounts(ctx context.Context, userID uint) (*UnreadSummary, error) {
	ex, err := s.blocks.Excluded(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.messages.CountUnread(ctx, userID, ex)
	if err != nil {
		return nil, storageErr(err)
	}
	rooms, err := s.messages.CountUnreadByRoom(ctx, userID, ex)
	if err != nil {
		return nil, storageErr(err)
	}
	return &UnreadSummary{Total: total, Rooms: rooms}, nil
}

// CanJoin 用於啟用 verify_join 時的加入檢查。不存在的房間同樣回傳 ErrForbidden。
func (s *ChatService) CanJoin(ctx context.Context, userID uint, roomID string) error {
	ok, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return storageErr(err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// SendMessage 寫入訊息後廣播到房間內的所有連線 (包括發送者)，並通知接收者的在線連線。
// 不檢查封鎖關係，可見性只在讀取時過濾。
func (s *ChatService) SendMessage(ctx context.Context, senderID uint, in SendMessagePayload) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, invalid("content is empty")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return nil, invalid("content exceeds %d characters", maxContentLength)
	}

	room, err := s.memberRoom(ctx, in.RoomID, senderID)
	if err != nil {
		return nil, err
	}
	if in.ReceiverID != room.Other(senderID) {
		return nil, invalid("receiver is not the other participant of the room")
	}

	msg := &models.Message{
		RoomID:     room.ID,
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		Content:    content,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, storageErr(err)
	}

	s.hub.Broadcast(room.ID, encodeEvent(EventNewMessage, msg), nil)

	if c := s.presence.Lookup(msg.ReceiverID); c != nil {
		c.Send(encodeEvent(EventMessageNotification, MessageNotification{
			RoomID:    msg.RoomID,
			MessageID: msg.ID,
			SenderID:  msg.SenderID,
			CreatedAt: msg.CreatedAt,
		}))
	}
	return msg, nil
}

// MarkRead 只有訊息的接收者可以標示已讀。
// messageID 為 nil 時標示房間內所有寄給 userID 且發送者可見的未讀訊息。
func (s *ChatService) MarkRead(ctx context.Context, userID uint, roomID string, messageID *uint) error {
	if _, err := s.memberRoom(ctx, roomID, userID); err != nil {
		return err
	}
	ex, err := s.blocks.Excluded(ctx, userID)
	if err != nil {
		return err
	}

	if messageID != nil {
		msg, err := s.messages.FindByID(ctx, *messageID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && msg.RoomID != roomID) {
			return ErrNotFound
		}
		if err != nil {
			return storageErr(err)
		}
		if msg.ReceiverID != userID {
			return ErrForbidden
		}
		if _, err := s.messages.MarkOne(ctx, msg.ID); err != nil {
			return storageErr(err)
		}
	} else {
		if _, err := s.messages.MarkAllInRoom(ctx, roomID, userID, ex); err != nil {
			return storageErr(err)
		}
	}

	s.hub.Broadcast(roomID, encodeEvent(EventMessagesRead, ReadConfirmation{
		RoomID:    roomID,
		UserID:    userID,
		MessageID: messageID,
	}), nil)
	return nil
}

// Typing 推送輸入狀態給房間內的其他連線，不寫入資料庫
func (s *ChatService) Typing(origin *realtime.Client, userID uint, roomID string, isTyping bool) {
	s.hub.Broadcast(roomID, encodeEvent(EventUserTyping, TypingStatus{
		RoomID:   roomID,
		UserID:   userID,
		IsTyping: isTyping,
	}), func(c *realtime.Client) bool { return c == origin })
}

func (s *ChatService) memberRoom(ctx context.Context, roomID string, userID uint) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, storageErr(err)
	}
	if !room.HasMember(userID) {
		return nil, ErrForbidden
	}
	return room, nil
}

// eventContext 每個事件的處理時限
func eventContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
