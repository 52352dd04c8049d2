package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

// Outbound transport events. Each is a fixed-schema tagged variant;
// the Type field carries the tag on the wire.

type UserJoinedEvent struct {
	Type         string        `json:"type"`
	UserID       domain.UserID `json:"userId"`
	UserName     string        `json:"userName"`
	Participants int           `json:"participants"`
}

type HostJoinedEvent struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"userId"`
	UserName string        `json:"userName"`
}

type UserLeftEvent struct {
	Type         string        `json:"type"`
	UserID       domain.UserID `json:"userId"`
	Participants int           `json:"participants"`
}

type UserDisconnectedEvent struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type NewMessageEvent struct {
	Type     string `json:"type"`
	UserName string `json:"userName"`
	Message  string `json:"message"`
	Time     string `json:"time"`
}

type CallControlEvent struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
	Action string        `json:"action"`
	Value  any           `json:"value"`
}

// SignalEvent forwards an opaque negotiation payload. The tag carries
// the payload kind (offer/answer/candidate), never inspected here.
type SignalEvent struct {
	Type   string          `json:"type"`
	From   domain.UserID   `json:"from"`
	Signal json.RawMessage `json:"signal"`
}

func encode(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("event marshal")
		return nil, false
	}
	return b, true
}
