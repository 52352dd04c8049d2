package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

// handleSignal forwards an opaque negotiation payload to one named
// participant. Bytes in, bytes out: the payload is never parsed here.
func (ctl *MeetingWSController) handleSignal(
	sid core.SessionID,
	conn *wsSignalConn,
	data []byte,
) {
	type signalPayload struct {
		Type   string          `json:"type"`
		To     string          `json:"to"`
		Kind   string          `json:"kind"`
		Signal json.RawMessage `json:"signal"`
	}
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.To == "" || p.Kind == "" {
		ctl.sendError(conn, "bad_payload")
		return
	}

	ctl.Relay.Forward(sid, domain.UserID(p.To), p.Kind, p.Signal)
}
