package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

func (ctl *MeetingWSController) handleJoin(
	sid core.SessionID,
	conn *wsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type      string `json:"type"`
		MeetingID string `json:"meetingId"`
		UserID    string `json:"userId,omitempty"`
		UserName  string `json:"userName"`
		IsHost    bool   `json:"isHost,omitempty"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := domain.ValidateDisplayName(p.UserName); err != nil {
		ctl.sendError(conn, "invalid_name")
		return
	}

	meetingID := domain.MeetingID(p.MeetingID)
	userID, err := ctl.Coord.Join(sid, meetingID, domain.UserID(p.UserID), p.UserName, p.IsHost)
	if err != nil {
		// Capacity and not-found must be distinguishable to the
		// requester so the client can tell the user why.
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded):
			ctl.sendError(conn, "meeting_full")
		case errors.Is(err, domain.ErrMeetingEnded):
			ctl.sendError(conn, "meeting_ended")
		case errors.Is(err, domain.ErrInvalidMeetingCode):
			ctl.sendError(conn, "invalid_code")
		case errors.Is(err, domain.ErrMeetingNotFound):
			ctl.sendError(conn, "meeting_not_found")
		default:
			ctl.sendError(conn, "join_failed")
		}
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("meeting", p.MeetingID).Msg("join rejected")
		return
	}

	resp := struct {
		Type    string            `json:"type"`
		UserID  domain.UserID     `json:"userId"`
		Meeting *core.MeetingView `json:"meeting"`
	}{
		Type:    "meeting-state",
		UserID:  userID,
		Meeting: ctl.Coord.Store.Sanitize(meetingID, userID),
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *MeetingWSController) handleLeave(
	sid core.SessionID,
	conn *wsSignalConn,
	data []byte,
) {
	type leavePayload struct {
		Type      string `json:"type"`
		MeetingID string `json:"meetingId"`
		UserID    string `json:"userId,omitempty"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	if meetingID, _, _, ok := ctl.Coord.Registry.Binding(sid); ok && p.MeetingID != "" && meetingID != domain.MeetingID(p.MeetingID) {
		ctl.sendError(conn, "not_in_meeting")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	if !ctl.Coord.Leave(sid) {
		ctl.sendError(conn, "not_in_meeting")
		return
	}
	ctl.sendJSON(conn, map[string]any{
		"type": "left",
	})
}
