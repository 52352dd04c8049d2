package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

func (ctl *MeetingWSController) handleSendMessage(
	sid core.SessionID,
	conn *wsSignalConn,
	data []byte,
) {
	type messagePayload struct {
		Type      string `json:"type"`
		MeetingID string `json:"meetingId,omitempty"`
		Message   string `json:"message"`
		UserName  string `json:"userName,omitempty"`
	}
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad message payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.Message == "" {
		ctl.sendError(conn, "empty_message")
		return
	}

	meetingID, userID, _, ok := ctl.Coord.Registry.Binding(sid)
	if !ok || (p.MeetingID != "" && meetingID != domain.MeetingID(p.MeetingID)) {
		ctl.sendError(conn, "not_in_meeting")
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(userID) {
		ctl.sendError(conn, "rate_limited")
		return
	}

	if _, err := ctl.Coord.RelayMessage(sid, p.Message); err != nil {
		ctl.sendError(conn, "not_in_meeting")
		return
	}
}

func (ctl *MeetingWSController) handleControl(
	sid core.SessionID,
	conn *wsSignalConn,
	data []byte,
) {
	type controlPayload struct {
		Type      string `json:"type"`
		MeetingID string `json:"meetingId,omitempty"`
		Action    string `json:"action"`
		Value     any    `json:"value"`
	}
	var p controlPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad control payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.Action == "" {
		ctl.sendError(conn, "empty_action")
		return
	}

	if meetingID, _, _, ok := ctl.Coord.Registry.Binding(sid); !ok || (p.MeetingID != "" && meetingID != domain.MeetingID(p.MeetingID)) {
		ctl.sendError(conn, "not_in_meeting")
		return
	}

	if err := ctl.Coord.RelayControl(sid, p.Action, p.Value); err != nil {
		ctl.sendError(conn, "control_rejected")
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("action", p.Action).Msg("control rejected")
	}
}
