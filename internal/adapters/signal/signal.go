package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/app"
	"github.com/convene/convene/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// MeetingWSController is the transport adapter: it owns the WebSocket
// resources and translates wire events into coordinator/relay calls.
type MeetingWSController struct {
	Coord     *app.Coordinator
	Relay     *app.Relay
	Limiter   *MessageRateLimiter
	ReadLimit int64
}

func NewMeetingWSController(coord *app.Coordinator, relay *app.Relay, limiter *MessageRateLimiter, readLimit int64) *MeetingWSController {
	return &MeetingWSController{
		Coord:     coord,
		Relay:     relay,
		Limiter:   limiter,
		ReadLimit: readLimit,
	}
}

type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the connection and starts the pumps. The session
// ID is the client token issued by the HTTP middleware.
func (ctl *MeetingWSController) HandleWS(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &wsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Coord.Registry.Bind(sid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
