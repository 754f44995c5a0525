package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Session message types
const (
	MsgAnswerScored       MessageType = "answer_scored"
	MsgNextQuestion       MessageType = "next_question"
	MsgInterviewCompleted MessageType = "interview_completed"
	MsgSessionDeleted     MessageType = "session_deleted"
	MsgError              MessageType = "error"
)

const sendBuffer = 64

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection is one listener attached to a session
type Connection struct {
	SessionID string
	UserID    string
	Send      chan []byte
}

// NewConnection creates a connection with a buffered outbox
func NewConnection(sessionID, userID string) *Connection {
	return &Connection{
		SessionID: sessionID,
		UserID:    userID,
		Send:      make(chan []byte, sendBuffer),
	}
}

type broadcastMessage struct {
	sessionID string
	data      []byte
	close     bool
}

// Hub fans session events out to every connection listening on that session
type Hub struct {
	sessions map[string]map[*Connection]bool
	mu       sync.RWMutex

	broadcast chan *broadcastMessage
	done      chan struct{}
	stopOnce  sync.Once

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		sessions:  make(map[string]map[*Connection]bool),
		broadcast: make(chan *broadcastMessage, 256),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id := range h.sessions {
				h.dropSession(id)
			}
			h.mu.Unlock()
			return

		case msg := <-h.broadcast:
			if msg.close {
				h.mu.Lock()
				h.dropSession(msg.sessionID)
				h.mu.Unlock()
				continue
			}
			h.mu.RLock()
			for conn := range h.sessions[msg.sessionID] {
				select {
				case conn.Send <- msg.data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// dropSession closes every connection of a session; callers hold h.mu
func (h *Hub) dropSession(id string) {
	for conn := range h.sessions[id] {
		close(conn.Send)
	}
	delete(h.sessions, id)
}

// Register adds a connection. After Stop the connection is closed at once.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		close(conn.Send)
		return
	default:
	}

	if h.sessions[conn.SessionID] == nil {
		h.sessions[conn.SessionID] = make(map[*Connection]bool)
	}
	h.sessions[conn.SessionID][conn] = true
	h.logger.Debug("listener attached", zap.String("session_id", conn.SessionID), zap.String("user_id", conn.UserID))
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.sessions[conn.SessionID]; ok && conns[conn] {
		delete(conns, conn)
		close(conn.Send)
		if len(conns) == 0 {
			delete(h.sessions, conn.SessionID)
		}
	}
}

// Listeners returns the number of connections attached to a session
func (h *Hub) Listeners(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Publish sends an event to the session's listeners (implements service.Broadcaster).
// Events are dropped rather than blocking the caller when the hub is saturated.
func (h *Hub) Publish(sessionID string, msgType string, payload interface{}) {
	data, err := Encode(MessageType(msgType), payload)
	if err != nil {
		h.logger.Warn("failed to encode event", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &broadcastMessage{sessionID: sessionID, data: data}:
	case <-h.done:
	default:
		h.logger.Warn("event dropped", zap.String("session_id", sessionID), zap.String("type", msgType))
	}
}

// CloseSession disconnects every listener of a session after the events
// already published for it (implements service.Broadcaster)
func (h *Hub) CloseSession(sessionID string) {
	select {
	case h.broadcast <- &broadcastMessage{sessionID: sessionID, close: true}:
	case <-h.done:
	}
}

// Stop disconnects everybody and stops the hub loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Encode wraps a payload into a Message envelope
func Encode(msgType MessageType, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: raw})
}
