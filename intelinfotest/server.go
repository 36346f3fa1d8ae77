// Package intelinfotest provides an in-process fake of the Intelinfo
// backend for tests: the REST endpoints, the admin token flow and the live
// push channel, with hooks to broadcast arbitrary frames.
package intelinfotest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	intelinfo "github.com/intelinfo/intelinfo-go"
)

// Server is a fake backend bound to an httptest listener. The zero value is
// not usable; construct with NewServer and release with Close.
type Server struct {
	Username   string
	Password   string
	ChatAnswer string

	mu            sync.Mutex
	hs            *httptest.Server
	upgrader      websocket.Upgrader
	conns         map[*websocket.Conn]struct{}
	announcements []intelinfo.Announcement
	messages      []intelinfo.Message
	nextID        int64
	token         string
	lastGroqKey   string
}

// NewServer starts a fake backend with default admin credentials.
func NewServer() *Server {
	s := &Server{
		Username:   "ADMIN",
		Password:   "secret",
		ChatAnswer: "The symposium runs both days.",
		conns:      map[*websocket.Conn]struct{}{},
		nextID:     1,
		token:      "test-token",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "pong")
	})
	for _, probe := range []string{"/health", "/ready", "/startup", "/test", "/debug"} {
		mux.HandleFunc(probe, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{"status": "ok"})
		})
	}
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/announcements", s.handleAnnouncements)
	mux.HandleFunc("/announcements/", s.handleAnnouncementDelete)
	mux.HandleFunc("/messages", s.handleMessages)
	mux.HandleFunc("/messages.csv", s.handleMessagesCSV)
	mux.HandleFunc("/rag/ingest", s.handleIngest)
	mux.HandleFunc("/rag/chat", s.handleChat)
	mux.HandleFunc("/ws", s.handleWS)

	s.hs = httptest.NewServer(mux)
	return s
}

// URL returns the backend origin, suitable for intelinfo.Options.BaseURL.
func (s *Server) URL() string {
	return s.hs.URL
}

// Token returns the session token the fake issues on login.
func (s *Server) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Close shuts the listener down and drops every live connection.
func (s *Server) Close() {
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.conns = map[*websocket.Conn]struct{}{}
	s.mu.Unlock()
	s.hs.Close()
}

// SeedAnnouncements installs board entries without broadcasting.
func (s *Server) SeedAnnouncements(items ...intelinfo.Announcement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append(s.announcements, items...)
	for _, a := range items {
		if a.ID >= s.nextID {
			s.nextID = a.ID + 1
		}
	}
}

// Announcements returns a copy of the current board.
func (s *Server) Announcements() []intelinfo.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]intelinfo.Announcement(nil), s.announcements...)
}

// Messages returns a copy of the inbox.
func (s *Server) Messages() []intelinfo.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]intelinfo.Message(nil), s.messages...)
}

// LastGroqKey returns the X-Groq-Key header of the most recent chat call.
func (s *Server) LastGroqKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastGroqKey
}

// Broadcast sends a push event to every live connection.
func (s *Server) Broadcast(event intelinfo.PushEvent) {
	data, _ := json.Marshal(event)
	s.BroadcastRaw(data)
}

// BroadcastRaw sends an arbitrary text frame to every live connection,
// including deliberately malformed ones.
func (s *Server) BroadcastRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(s.conns, conn)
		}
	}
}

// WaitForClients blocks until n live connections are registered or the
// timeout expires. Tests call this between dialing and broadcasting, since
// the dial handshake completes slightly before registration.
func (s *Server) WaitForClients(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		count := len(s.conns)
		s.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "expected multipart form", http.StatusBadRequest)
		return
	}
	if r.FormValue("username") != s.Username || r.FormValue("password") != s.Password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, intelinfo.LoginResponse{Token: s.Token()})
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.Announcements())
	case http.MethodPost:
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "expected multipart form", http.StatusBadRequest)
			return
		}
		if !s.authorized(r.FormValue("token")) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		content := r.FormValue("content")
		if f, header, err := r.FormFile("file"); err == nil {
			f.Close()
			content = "/media/" + header.Filename
		}

		s.mu.Lock()
		a := intelinfo.Announcement{
			ID:        s.nextID,
			Kind:      intelinfo.AnnouncementKind(r.FormValue("kind")),
			Title:     r.FormValue("title"),
			Content:   content,
			CreatedAt: time.Now().Unix(),
		}
		s.nextID++
		s.announcements = append([]intelinfo.Announcement{a}, s.announcements...)
		s.mu.Unlock()

		s.Broadcast(intelinfo.NewAnnouncementEvent(a))
		writeJSON(w, a)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAnnouncementDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r.URL.Query().Get("token")) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/announcements/"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	kept := s.announcements[:0]
	for _, a := range s.announcements {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.announcements = kept
	s.mu.Unlock()

	s.Broadcast(intelinfo.DeleteAnnouncementEvent(id))
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var input intelinfo.MessageInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		m := intelinfo.Message{
			ID:           s.nextID,
			ContactName:  input.ContactName,
			ContactEmail: input.ContactEmail,
			Subject:      input.Subject,
			Message:      input.Message,
			CreatedAt:    time.Now().Unix(),
		}
		s.nextID++
		s.messages = append(s.messages, m)
		s.mu.Unlock()
		writeJSON(w, m)
	case http.MethodGet:
		if !s.authorized(r.URL.Query().Get("token")) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		writeJSON(w, s.Messages())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMessagesCSV(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r.URL.Query().Get("token")) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "contact_name", "contact_email", "subject", "message", "created_at"})
	for _, m := range s.Messages() {
		cw.Write([]string{
			strconv.FormatInt(m.ID, 10),
			m.ContactName,
			m.ContactEmail,
			m.Subject,
			m.Message,
			strconv.FormatInt(m.CreatedAt, 10),
		})
	}
	cw.Flush()
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var input intelinfo.IngestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.lastGroqKey = r.Header.Get("X-Groq-Key")
	answer := s.ChatAnswer
	s.mu.Unlock()
	writeJSON(w, intelinfo.ChatResponse{Answer: answer})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	// Drain client frames until the connection dies, then unregister.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()
}

func (s *Server) authorized(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.token
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
