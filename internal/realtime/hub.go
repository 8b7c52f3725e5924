package realtime

import "sync"

// Hub 管理所有連線與房間廣播群組。
// 同一房間的廣播在群組鎖內完成，每個訂閱者看到的事件順序一致。
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*group
	joined map[*Client]map[string]struct{} // 連線 -> 已加入的房間
}

type group struct {
	mu      sync.Mutex
	members map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]*group),
		joined: make(map[*Client]map[string]struct{}),
	}
}

// Attach 登記新連線
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.joined[c]; !ok {
		h.joined[c] = make(map[string]struct{})
	}
}

// Detach 連線結束時離開所有房間
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID := range h.joined[c] {
		h.removeLocked(roomID, c)
	}
	delete(h.joined, c)
}

func (h *Hub) Join(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g, ok := h.rooms[roomID]
	if !ok {
		g = &group{members: make(map[*Client]struct{})}
		h.rooms[roomID] = g
	}
	g.mu.Lock()
	g.members[c] = struct{}{}
	g.mu.Unlock()

	rooms, ok := h.joined[c]
	if !ok {
		rooms = make(map[string]struct{})
		h.joined[c] = rooms
	}
	rooms[roomID] = struct{}{}
}

// Leave 未加入的房間直接略過
func (h *Hub) Leave(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(roomID, c)
	if rooms, ok := h.joined[c]; ok {
		delete(rooms, roomID)
	}
}

func (h *Hub) removeLocked(roomID string, c *Client) {
	g, ok := h.rooms[roomID]
	if !ok {
		return
	}
	g.mu.Lock()
	delete(g.members, c)
	empty := len(g.members) == 0
	g.mu.Unlock()
	// 房間空了就刪除
	if empty {
		delete(h.rooms, roomID)
	}
}

// Broadcast 送給房間內的所有連線，skip 回傳 true 的連線會被略過。回傳成功排入隊列的數量。
func (h *Hub) Broadcast(roomID string, frame []byte, skip func(*Client) bool) int {
	h.mu.RLock()
	g, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	sent := 0
	for c := range g.members {
		if skip != nil && skip(c) {
			continue
		}
		if c.Send(frame) {
			sent++
		}
	}
	return sent
}

// Connections 已登記的連線數
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.joined)
}

// CloseAll 關閉所有連線，用於伺服器關閉
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.joined))
	for c := range h.joined {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Close()
	}
}
