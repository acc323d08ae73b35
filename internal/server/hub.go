package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	subscriberSend = 8
)

// hub fans session views out to the websocket connections of that session.
type hub struct {
	mu     sync.Mutex
	logger *slog.Logger
	subs   map[string]map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan View
	done chan struct{}
	once sync.Once
}

func newHub(logger *slog.Logger) *hub {
	return &hub{logger: logger, subs: make(map[string]map[*subscriber]struct{})}
}

func (h *hub) subscribe(sessionID string, conn *websocket.Conn) *subscriber {
	sub := &subscriber{
		conn: conn,
		send: make(chan View, subscriberSend),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	go sub.writeLoop(h.logger)
	return sub
}

func (h *hub) unsubscribe(sessionID string, sub *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[sessionID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sessionID)
		}
	}
	h.mu.Unlock()
	sub.close()
}

// publish queues view for every subscriber of sessionID. Slow readers miss updates.
func (h *hub) publish(sessionID string, view View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[sessionID] {
		select {
		case sub.send <- view:
		default:
			h.logger.Debug("websocket update dropped", "session", sessionID)
		}
	}
}

func (h *hub) drop(sessionID string) {
	h.mu.Lock()
	set := h.subs[sessionID]
	delete(h.subs, sessionID)
	h.mu.Unlock()

	for sub := range set {
		sub.close()
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	all := h.subs
	h.subs = make(map[string]map[*subscriber]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for sub := range set {
			sub.close()
		}
	}
}

func (s *subscriber) writeLoop(logger *slog.Logger) {
	for {
		select {
		case <-s.done:
			return
		case view := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(view); err != nil {
				logger.Debug("websocket write failed", "session", view.SessionID, "error", err.Error())
				s.close()
				return
			}
		}
	}
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
