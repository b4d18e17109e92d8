package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mazerooms/game/room"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browsers load the game from any host during development
		return true
	},
}

// Hub upgrades connections, matches them into rooms and runs the
// per-connection protocol.
type Hub struct {
	directory *room.Directory
	logger    *zap.SugaredLogger

	// Registered clients, owned by Run
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	connected atomic.Int64
}

// NewHub creates a new WebSocket hub backed by directory
func NewHub(directory *room.Directory, logger *zap.SugaredLogger) *Hub {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Hub{
		directory:  directory,
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run tracks live clients until ctx is done, then closes every remaining
// connection with a going-away status.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.connected.Store(int64(len(h.clients)))

		case client := <-h.unregister:
			delete(h.clients, client)
			h.connected.Store(int64(len(h.clients)))

		case <-ctx.Done():
			for client := range h.clients {
				client.shutdown(websocket.CloseGoingAway)
			}
			h.logger.Infow("websocket hub stopped", "clients", len(h.clients))
			return
		}
	}
}

// ClientCount returns the number of registered connections
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

// ServeWS upgrades the request and joins the connection to a room
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(h, conn)

	select {
	case h.register <- client:
	case <-h.done:
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, closeText(websocket.CloseGoingAway)))
		conn.Close()
		return
	}

	go client.writePump()
	h.onConnect(client)
	go client.readPump()
}

// onConnect assigns the client to a room and announces it to every member.
func (h *Hub) onConnect(c *Client) {
	if !c.state.CompareAndSwap(stateConnecting, stateJoined) {
		return
	}

	r := h.directory.Assign(c)
	payload, err := encodeJoin(r.ID(), c.ID(), r.ParticipantCount(), r.Maze().Obstacles())
	if err != nil {
		h.logger.Errorw("failed to encode join", "room_id", r.ID(), "error", err)
		return
	}
	r.Broadcast(payload)

	h.logger.Infow("player joined",
		"room_id", r.ID(),
		"player_id", c.ID(),
		"players", r.ParticipantCount(),
	)
}

// onMessage handles one inbound frame. Bad frames are dropped and the
// connection stays open.
func (h *Hub) onMessage(c *Client, data []byte) {
	if c.state.Load() != stateJoined {
		return
	}

	msg, err := DecodeInbound(data)
	switch {
	case errors.Is(err, ErrUnknownMessage):
		h.logger.Debugw("ignoring message", "player_id", c.ID(), "error", err)
		return
	case err != nil:
		h.logger.Warnw("dropping malformed message", "player_id", c.ID(), "error", err)
		return
	}

	switch m := msg.(type) {
	case *MoveCommand:
		r, ok := h.directory.RoomOf(c.ID())
		if !ok {
			return
		}
		pos, accepted, err := r.MoveAndBroadcast(m.Direction(), encodePositionUpdate)
		if err != nil {
			h.logger.Errorw("failed to broadcast position", "room_id", r.ID(), "error", err)
			return
		}
		h.logger.Debugw("move",
			"room_id", r.ID(),
			"player_id", c.ID(),
			"dx", m.Position.X,
			"dy", m.Position.Y,
			"x", pos.X,
			"y", pos.Y,
			"accepted", accepted,
		)
	}
}

// onClose handles an orderly close from the peer.
func (h *Hub) onClose(c *Client) {
	h.leave(c, websocket.CloseNormalClosure)
}

// onOversized drops a client that sent a frame over maxMessageSize. The
// connection cannot be read past the limit, so it is closed with 1009.
func (h *Hub) onOversized(c *Client) {
	h.logger.Debugw("frame too large", "player_id", c.ID(), "limit", maxMessageSize)
	h.leave(c, websocket.CloseMessageTooBig)
}

// onTransportError tears the client down and closes with a server error status.
func (h *Hub) onTransportError(c *Client, err error) {
	h.logger.Warnw("websocket transport error", "player_id", c.ID(), "error", err)
	h.leave(c, websocket.CloseInternalServerErr)
}

// leave announces the departure with the count it will leave behind, then
// drops the membership. Runs once per client.
func (h *Hub) leave(c *Client, code int) {
	wasJoined := c.state.Swap(stateClosed) == stateJoined
	c.shutdown(code)
	select {
	case h.unregister <- c:
	case <-h.done:
	}

	if !wasJoined {
		return
	}

	r, ok := h.directory.RoomOf(c.ID())
	if !ok {
		return
	}

	count := r.ParticipantCount() - 1
	payload, err := encodeLeave(r.ID(), c.ID(), count)
	if err != nil {
		h.logger.Errorw("failed to encode leave", "room_id", r.ID(), "error", err)
	} else {
		r.Broadcast(payload)
	}

	h.directory.RemoveParticipant(c.ID())

	h.logger.Infow("player left",
		"room_id", r.ID(),
		"player_id", c.ID(),
		"players", count,
	)
}
