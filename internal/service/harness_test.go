package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"social_board/internal/models"
	"social_board/internal/realtime"
	"social_board/internal/repository"
	"social_board/internal/storage/storagetest"
)

type harness struct {
	t     *testing.T
	repos *repository.Repositories
	svc   *Services
	srv   *httptest.Server
}

func newHarness(t *testing.T, verifyJoin bool) *harness {
	t.Helper()
	repos := repository.NewRepositories(storagetest.New(t))
	svc := NewServices(repos, nil, SessionOptions{
		Client: realtime.Options{
			ReadLimit:  4096,
			WriteWait:  time.Second,
			PongWait:   10 * time.Second,
			PingPeriod: 5 * time.Second,
			SendBuffer: 64,
		},
		EventTimeout: 2 * time.Second,
		VerifyJoin:   verifyJoin,
	})

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := strconv.ParseUint(r.URL.Query().Get("uid"), 10, 64)
		if err != nil {
			http.Error(w, "uid", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		svc.Sessions.Serve(conn, uint(uid))
	}))
	t.Cleanup(func() {
		svc.Sessions.Shutdown()
		srv.Close()
	})
	return &harness{t: t, repos: repos, svc: svc, srv: srv}
}

func (h *harness) user(name string) uint {
	h.t.Helper()
	u := models.User{Username: name, Password: "x"}
	if err := h.repos.User.Create(context.Background(), &u); err != nil {
		h.t.Fatalf("create user %s: %v", name, err)
	}
	return u.ID
}

func (h *harness) room(a, b uint) *models.Room {
	h.t.Helper()
	room, err := h.svc.Chat.OpenRoom(context.Background(), a, b)
	if err != nil {
		h.t.Fatalf("open room: %v", err)
	}
	return room
}

type wsPeer struct {
	t    *testing.T
	conn *websocket.Conn
}

func (h *harness) dial(userID uint) *wsPeer {
	h.t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "?uid=" + fmt.Sprint(userID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		h.t.Fatalf("dial: %v", err)
	}
	h.t.Cleanup(func() { conn.Close() })
	p := &wsPeer{t: h.t, conn: conn}
	p.sync()
	return p
}

func (p *wsPeer) send(event string, data any) {
	p.t.Helper()
	raw, _ := json.Marshal(data)
	if err := p.conn.WriteJSON(Envelope{Event: event, Data: raw}); err != nil {
		p.t.Fatalf("write %s: %v", event, err)
	}
}

func (p *wsPeer) next() Envelope {
	p.t.Helper()
	_ = p.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var env Envelope
	if err := p.conn.ReadJSON(&env); err != nil {
		p.t.Fatalf("read: %v", err)
	}
	return env
}

func (p *wsPeer) expect(event string, dst any) {
	p.t.Helper()
	env := p.next()
	if env.Event != event {
		p.t.Fatalf("got event %s (%s), want %s", env.Event, env.Data, event)
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			p.t.Fatalf("decode %s: %v", event, err)
		}
	}
}

func (p *wsPeer) expectError(code string) {
	p.t.Helper()
	var e ErrorPayload
	p.expect(EventError, &e)
	if e.Code != code {
		p.t.Fatalf("error code = %s (%s), want %s", e.Code, e.Message, code)
	}
}

// sync 事件依序處理，收到這個未知事件的錯誤回應代表先前送出的事件都已處理完畢。
// 若在此之前還有其他事件，會導致測試失敗。
func (p *wsPeer) sync() {
	p.t.Helper()
	p.send("sync", struct{}{})
	env := p.next()
	if env.Event != EventError {
		p.t.Fatalf("unexpected pending event %s: %s", env.Event, env.Data)
	}
}
