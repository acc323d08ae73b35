package server

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// handleWebsocket subscribes the caller to its session's view updates. The
// current view is sent once on connect.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	e, cookie, err := s.resolveSession(r)
	if err != nil {
		writeError(w, statusFor(err), err, "")
		return
	}

	header := http.Header{}
	if cookie != nil {
		header.Add("Set-Cookie", cookie.String())
	}
	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err.Error())
		return
	}

	e.mu.Lock()
	view := newView(e.state, "")
	sub := s.hub.subscribe(view.SessionID, conn)
	sub.send <- view
	e.mu.Unlock()
	defer s.hub.unsubscribe(view.SessionID, sub)

	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// checkOrigin accepts same-host pages and the configured CORS origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.cfg.AllowedOrigins, origin) || slices.Contains(s.cfg.AllowedOrigins, "*") {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
