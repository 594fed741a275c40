package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsClient is one spectator connection. Writes go through a buffered channel
// so a slow client drops frames instead of blocking a move handler.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *wsClient) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// handleWatch upgrades the connection and streams the game state after every
// change until the client goes away.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sess, ok := s.games[chi.URLParam(r, "gameID")]
	s.mu.Unlock()
	if !ok {
		writeJSON(s.log, w, http.StatusNotFound, errorResponse{Error: "game not found"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("game", sess.id).Msg("websocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, 8)}
	go client.writePump()

	s.mu.Lock()
	sess.clients[client] = struct{}{}
	if data, err := marshalState(s.statePayload(sess)); err == nil {
		client.enqueue(data)
	}
	s.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	if _, ok := sess.clients[client]; ok {
		delete(sess.clients, client)
		close(client.send)
	}
	s.mu.Unlock()
}

// broadcastLocked pushes the current state to every spectator of sess. The
// caller holds the server mutex.
func (s *Server) broadcastLocked(sess *session) {
	if len(sess.clients) == 0 {
		return
	}
	data, err := marshalState(s.statePayload(sess))
	if err != nil {
		s.log.Error().Err(err).Str("game", sess.id).Msg("failed to encode state broadcast")
		return
	}
	for client := range sess.clients {
		client.enqueue(data)
	}
}

func marshalState(payload statePayload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wsMessage{Type: "state", Payload: raw})
}
