package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

// Coordinator drives the per-connection join/leave/disconnect state
// machine. It is the only writer of the store besides the reaper;
// every notification goes out strictly after the store mutation that
// caused it.
type Coordinator struct {
	Store    *core.MeetingStore
	Registry *Registry

	// Grace is how long an abrupt disconnect may stay unresolved
	// before it converts into a regular leave. Zero converts
	// immediately.
	Grace time.Duration

	// mu serializes the compound transitions (join, leave, grace
	// expiry): the store's mutex only guards individual map accesses,
	// so a grace timer must not interleave with a rejoin's
	// add-then-attach sequence.
	mu      sync.Mutex
	pending map[domain.UserID]*time.Timer
}

func NewCoordinator(store *core.MeetingStore, reg *Registry, grace time.Duration) *Coordinator {
	return &Coordinator{
		Store:    store,
		Registry: reg,
		Grace:    grace,
		pending:  make(map[domain.UserID]*time.Timer),
	}
}

// Join validates the meeting and capacity, attaches the session and
// notifies the other members. Capacity and not-found failures are
// returned so the adapter can tell the requester apart from a silent
// drop.
func (c *Coordinator) Join(sid core.SessionID, meetingID domain.MeetingID, userID domain.UserID, name string, isHost bool) (domain.UserID, error) {
	if !domain.ValidateMeetingCode(string(meetingID)) {
		return "", domain.ErrInvalidMeetingCode
	}
	if userID == "" {
		userID = domain.UserID(domain.NewID(domain.KindUser))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.pending[userID]; ok {
		t.Stop()
		delete(c.pending, userID)
	}
	if prev, _, _, attached := c.Registry.Binding(sid); attached && prev != meetingID {
		c.leaveLocked(sid)
	}

	if _, err := c.Store.AddParticipant(meetingID, userID, name, isHost); err != nil {
		return "", err
	}
	c.Registry.Attach(sid, meetingID, userID, name, isHost)

	count := c.Store.ParticipantCount(meetingID)
	c.broadcast(meetingID, sid, UserJoinedEvent{
		Type: "user-joined", UserID: userID, UserName: name, Participants: count,
	})
	if isHost {
		c.broadcast(meetingID, sid, HostJoinedEvent{
			Type: "host-joined", UserID: userID, UserName: name,
		})
	}
	log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Str("meeting", string(meetingID)).Str("user", string(userID)).Int("participants", count).Msg("joined")
	return userID, nil
}

// Leave is the graceful departure: remove from the store, notify the
// remaining members, detach the broadcast binding.
func (c *Coordinator) Leave(sid core.SessionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leaveLocked(sid)
}

func (c *Coordinator) leaveLocked(sid core.SessionID) bool {
	meetingID, userID, _, ok := c.Registry.Binding(sid)
	if !ok {
		return false
	}
	if !c.Store.RemoveParticipant(meetingID, userID) {
		c.Registry.Detach(sid)
		return false
	}
	c.Registry.Detach(sid)
	c.broadcast(meetingID, sid, UserLeftEvent{
		Type: "user-left", UserID: userID, Participants: c.Store.ParticipantCount(meetingID),
	})
	log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Str("meeting", string(meetingID)).Str("user", string(userID)).Msg("left")
	return true
}

// OnDisconnect handles an abrupt transport drop. The participant is
// not removed immediately: members see a distinct user-disconnected
// event and the departure converts into a leave only after the grace
// window passes without a rejoin. conn must be the connection whose
// pump observed the drop; a pump superseded by a newer connection on
// the same token is a no-op here.
func (c *Coordinator) OnDisconnect(sid core.SessionID, conn core.SignalConnection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	meetingID, userID, _, attached := c.Registry.Binding(sid)
	if !c.Registry.UnbindOwned(sid, conn) {
		return
	}
	if !attached {
		return
	}

	c.broadcast(meetingID, sid, UserDisconnectedEvent{Type: "user-disconnected", UserID: userID})
	log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Str("user", string(userID)).Dur("grace", c.Grace).Msg("abrupt disconnect")

	if c.Grace <= 0 {
		c.finishDisconnectLocked(meetingID, userID)
		return
	}
	if t, ok := c.pending[userID]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(c.Grace, func() {
		c.expireDisconnect(t, meetingID, userID)
	})
	c.pending[userID] = t
}

// expireDisconnect runs when the grace timer fires. A rejoin or a
// newer disconnect that beat it to the lock has removed or replaced
// the pending entry; only the timer still on record may convert.
func (c *Coordinator) expireDisconnect(t *time.Timer, meetingID domain.MeetingID, userID domain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[userID] != t {
		return
	}
	delete(c.pending, userID)
	c.finishDisconnectLocked(meetingID, userID)
}

func (c *Coordinator) finishDisconnectLocked(meetingID domain.MeetingID, userID domain.UserID) {
	if c.Registry.HasUser(userID) {
		// Rejoined on a new connection during the grace window.
		return
	}
	if !c.Store.RemoveParticipant(meetingID, userID) {
		return
	}
	c.broadcast(meetingID, "", UserLeftEvent{
		Type: "user-left", UserID: userID, Participants: c.Store.ParticipantCount(meetingID),
	})
	log.Info().Str("module", "app.coordinator").Str("meeting", string(meetingID)).Str("user", string(userID)).Msg("disconnect converted to leave")
}

// RelayMessage appends the chat message and fans it out to the other
// members; the sender renders its own echo locally.
func (c *Coordinator) RelayMessage(sid core.SessionID, content string) (*core.MessageView, error) {
	meetingID, userID, name, ok := c.Registry.Binding(sid)
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	view := c.Store.AddMessage(meetingID, userID, content)
	if view == nil {
		return nil, domain.ErrParticipantNotFound
	}
	c.broadcast(meetingID, sid, NewMessageEvent{
		Type: "new-message", UserName: name, Message: content,
		Time: view.SentAt.Format(time.RFC3339),
	})
	return view, nil
}

// RelayControl fans a control action out to the other members. Device
// actions update the self-reported flags; the reporting participant is
// trusted for those. Recording is the one privileged action and goes
// through CheckPermission.
func (c *Coordinator) RelayControl(sid core.SessionID, action string, value any) error {
	meetingID, userID, _, ok := c.Registry.Binding(sid)
	if !ok {
		return domain.ErrParticipantNotFound
	}

	if device := domain.Device(action); device.Valid() {
		enabled, _ := value.(bool)
		if !c.Store.UpdateDeviceStatus(meetingID, userID, device, enabled) {
			return domain.ErrInvalidDevice
		}
	} else if action == string(domain.PermRecording) {
		if !c.Store.CheckPermission(meetingID, userID, domain.PermRecording) {
			return domain.ErrPermissionDenied
		}
	}

	c.broadcast(meetingID, sid, CallControlEvent{
		Type: "call-control", UserID: userID, Action: action, Value: value,
	})
	return nil
}

// broadcast fans an event out to every member of the meeting except
// the originating session. Slow consumers are dropped silently; the
// send channel backpressure already bounded them.
func (c *Coordinator) broadcast(meetingID domain.MeetingID, except core.SessionID, v any) {
	frame, ok := encode(v)
	if !ok {
		return
	}
	sent, dropped := 0, 0
	for _, m := range c.Registry.MembersOfMeeting(meetingID) {
		if m.SID == except {
			continue
		}
		if err := m.Conn.TrySend(frame); err != nil {
			dropped++
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.coordinator").Str("meeting", string(meetingID)).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}
