package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

// Relay forwards point-to-point negotiation payloads keyed by
// participant identifier. Stateless: no buffering, no retry, no
// payload inspection. Retry and timeout belong to the peer library on
// the clients.
type Relay struct {
	Registry *Registry
}

func NewRelay(reg *Registry) *Relay {
	return &Relay{Registry: reg}
}

// Forward delivers {from, signal} under the payload-kind tag to the
// destination's live connection. A destination that is not currently
// connected is a silent no-op by design.
func (r *Relay) Forward(fromSID core.SessionID, to domain.UserID, kind string, payload json.RawMessage) {
	_, fromUser, _, ok := r.Registry.Binding(fromSID)
	if !ok {
		return
	}
	conn, ok := r.Registry.ConnOfUser(to)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("to", string(to)).Str("kind", kind).Msg("destination not connected, dropped")
		return
	}
	frame, ok := encode(SignalEvent{Type: kind, From: fromUser, Signal: payload})
	if !ok {
		return
	}
	_ = conn.TrySend(frame)
}
