package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/teamboard/teamboard/internal/auth"
	"github.com/teamboard/teamboard/internal/board"
	"github.com/teamboard/teamboard/internal/team"
)

// Close codes for connect-time failures, distinct from normal closure.
const (
	CloseAuthFailed   = 4001
	CloseAccessDenied = 4003
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server authenticates WebSocket connections and runs their message loops.
type Server struct {
	hub         *Hub
	dispatcher  *Dispatcher
	authService *auth.Service
	boards      board.Repository
	teams       team.Repository
}

// NewServer creates a WebSocket Server.
func NewServer(hub *Hub, dispatcher *Dispatcher, authService *auth.Service, boards board.Repository, teams team.Repository) *Server {
	return &Server{
		hub:         hub,
		dispatcher:  dispatcher,
		authService: authService,
		boards:      boards,
		teams:       teams,
	}
}

// ServeHTTP handles GET /ws/boards/{board_id}/. The token comes from the
// "token" query parameter, falling back to the Authorization header. Any
// authentication or authorization failure closes the connection before the
// board group is joined; no envelope is ever sent to a rejected client.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	boardID, err := strconv.ParseInt(chi.URLParam(r, "board_id"), 10, 64)
	if err != nil || boardID <= 0 {
		http.Error(w, "board_id must be a positive integer", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	token := connectToken(r)
	if token == "" {
		closeWith(conn, CloseAuthFailed, "authentication required")
		return
	}

	identity, err := s.authService.Authenticate(r.Context(), token)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) {
			slog.Error("websocket authentication failed", "error", err)
		}
		closeWith(conn, CloseAuthFailed, "invalid token")
		return
	}

	allowed, err := s.authorizeBoard(r, boardID, identity.UserID)
	if err != nil {
		if errors.Is(err, board.ErrBoardNotFound) {
			closeWith(conn, CloseAccessDenied, "board not found")
			return
		}
		slog.Error("websocket board authorization failed", "error", err, "boardId", boardID)
		closeWith(conn, CloseAccessDenied, "access check failed")
		return
	}
	if !allowed {
		closeWith(conn, CloseAccessDenied, "not a member of the board's team")
		return
	}

	c := newClient(conn, boardID, *identity)
	s.hub.Join(c)
	defer s.hub.Leave(c)

	go c.writePump()

	c.sendEnvelope(OutEnvelope{
		Type: EventConnected,
		Payload: struct {
			UserID   int64  `json:"user_id"`
			Username string `json:"username"`
			BoardID  int64  `json:"board_id"`
		}{identity.UserID, identity.Username, boardID},
	})

	slog.Info("websocket client joined", "boardId", boardID, "userId", identity.UserID)
	s.readLoop(r.Context(), c)
	slog.Info("websocket client left", "boardId", boardID, "userId", identity.UserID)
}

// readLoop processes inbound frames strictly sequentially for one client:
// the next frame is not read until the current one is fully handled. Blocks
// until the connection closes.
func (s *Server) readLoop(ctx context.Context, c *Client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := s.dispatcher.Dispatch(ctx, c.identity, c.boardID, frame)
		if err != nil {
			var ce *clientError
			if errors.As(err, &ce) {
				c.sendEnvelope(ErrorEnvelope(ce.msg))
			} else {
				slog.Error("websocket handler failed", "error", err, "boardId", c.boardID, "userId", c.identity.UserID)
				c.sendEnvelope(ErrorEnvelope("An unexpected error occurred"))
			}
			continue
		}

		s.hub.Broadcast(c.boardID, *env)
	}
}

func connectToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// authorizeBoard checks membership in the team owning the board's project.
func (s *Server) authorizeBoard(r *http.Request, boardID, userID int64) (bool, error) {
	teamID, err := s.boards.OwnerTeamID(r.Context(), boardID)
	if err != nil {
		return false, err
	}
	return s.teams.IsMember(r.Context(), teamID, userID)
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	conn.WriteMessage(websocket.CloseMessage, msg) //nolint:errcheck
	conn.Close()
}
