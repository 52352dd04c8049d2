package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
)

func (ctl *MeetingWSController) writePump(ctx context.Context, c *wsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump drives the dispatch loop. When it exits for any reason the
// coordinator observes an abrupt disconnect; an explicit leave that
// preceded it has already detached the binding.
func (ctl *MeetingWSController) readPump(ctx context.Context, sid core.SessionID, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		c.Close()
		ctl.Coord.OnDisconnect(sid, c)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(sid, c, data)
		}
	}
}

func (ctl *MeetingWSController) handleEvent(sid core.SessionID, c *wsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	ctl.Coord.Registry.Touch(sid)

	switch env.Type {
	case "join-meeting":
		ctl.handleJoin(sid, c, data)
	case "leave-meeting":
		ctl.handleLeave(sid, c, data)
	case "signal":
		ctl.handleSignal(sid, c, data)
	case "send-message":
		ctl.handleSendMessage(sid, c, data)
	case "control-call":
		ctl.handleControl(sid, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
		ctl.sendError(c, "unknown_event")
	}
}

func (ctl *MeetingWSController) sendJSON(c *wsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *MeetingWSController) sendError(c *wsSignalConn, code string) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": code,
	})
}

func (ctl *MeetingWSController) handlePing(c *wsSignalConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(c, resp)
}
