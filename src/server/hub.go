package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"sp500-dashboard/src/dashboard"
	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Message types sent to sessions.
const (
	MessageWelcome = "WELCOME"
	MessageResult  = "RESULT"
	MessageNoData  = "NO_DATA"
	MessageError   = "ERROR"
)

// sessionMessage is the envelope of every server to client message.
type sessionMessage struct {
	Type    string          `json:"type"`
	Session string          `json:"session"`
	Query   *queryView      `json:"query,omitempty"`
	Result  *seriesResponse `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// -----------------------------------------------------------------------------
// Session registry
// -----------------------------------------------------------------------------

func (s *DashboardServer) register(c *Client) {
	s.sessionsMu.Lock()
	s.sessions[c] = struct{}{}
	s.sessionsMu.Unlock()
}

func (s *DashboardServer) unregister(c *Client) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if _, ok := s.sessions[c]; ok {
		delete(s.sessions, c)
		close(c.send)
	}
}

// SessionCount is the number of open WebSocket sessions.
func (s *DashboardServer) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

func (s *DashboardServer) closeSessions() {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	for c := range s.sessions {
		delete(s.sessions, c)
		close(c.send)
	}
}

// deliver queues a message without blocking; a session that cannot keep up is dropped.
func (s *DashboardServer) deliver(c *Client, msg *sessionMessage) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if _, ok := s.sessions[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		s.Logger.Warning("Session %s too slow, closing", c.ID)
		delete(s.sessions, c)
		close(c.send)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(s.Config.AllowedOrigins) == 0 {
				return true
			}
			for _, o := range s.Config.AllowedOrigins {
				if o == origin {
					return true
				}
			}
			return false
		},
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn)
	s.register(client)
	s.Logger.Debug("Session %s opened from %s", client.ID, c.ClientIP())

	s.deliver(client, &sessionMessage{Type: MessageWelcome, Session: client.ID})

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage runs one {"command":"query"} request for the session.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MQueryCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.deliver(client, &sessionMessage{Type: MessageError, Session: client.ID, Error: helpers.UserMessage(helpers.NewValidationError("malformed command: %v", err))})
		return
	}
	if cmd.Command != "query" {
		s.deliver(client, &sessionMessage{Type: MessageError, Session: client.ID, Error: helpers.UserMessage(helpers.NewValidationError("unknown command %q", cmd.Command))})
		return
	}

	query, err := dashboard.ParseQuery(cmd.Symbol, cmd.Period, cmd.Interval)
	if err != nil {
		s.deliver(client, &sessionMessage{Type: MessageError, Session: client.ID, Error: helpers.UserMessage(err)})
		return
	}
	view := newQueryView(query)

	timeout := time.Duration(s.Config.Network.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := s.Service.Query(ctx, query)
	switch {
	case err == nil:
		resp := newSeriesResponse(res)
		s.deliver(client, &sessionMessage{Type: MessageResult, Session: client.ID, Query: &view, Result: &resp})
	case helpers.Classify(err) == helpers.KindEmpty:
		s.deliver(client, &sessionMessage{Type: MessageNoData, Session: client.ID, Query: &view, Error: helpers.UserMessage(err)})
	default:
		s.deliver(client, &sessionMessage{Type: MessageError, Session: client.ID, Query: &view, Error: helpers.UserMessage(err)})
	}
}
