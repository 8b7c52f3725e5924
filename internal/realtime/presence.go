package realtime

import "sync"

const presenceShards = 32

// Presence 用戶 ID 到目前連線的對應。每個分片各自加鎖，不同用戶的操作互不阻塞。
type Presence struct {
	shards [presenceShards]presenceShard
}

type presenceShard struct {
	mu      sync.Mutex
	clients map[uint]*Client
}

func NewPresence() *Presence {
	p := &Presence{}
	for i := range p.shards {
		p.shards[i].clients = make(map[uint]*Client)
	}
	return p
}

func (p *Presence) shard(userID uint) *presenceShard {
	return &p.shards[userID%presenceShards]
}

// Register 以新連線覆蓋舊的登記，回傳被取代的連線 (不會關閉它)
func (p *Presence) Register(userID uint, c *Client) *Client {
	s := p.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.clients[userID]
	s.clients[userID] = c
	return prev
}

func (p *Presence) Lookup(userID uint) *Client {
	s := p.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients[userID]
}

// Unregister 只有登記仍指向 c 時才移除，已被新連線取代時不做任何事
func (p *Presence) Unregister(userID uint, c *Client) bool {
	s := p.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[userID] != c {
		return false
	}
	delete(s.clients, userID)
	return true
}

// Len 在線用戶數
func (p *Presence) Len() int {
	n := 0
	for i := range p.shards {
		s := &p.shards[i]
		s.mu.Lock()
		n += len(s.clients)
		s.mu.Unlock()
	}
	return n
}
