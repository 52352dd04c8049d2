package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

type sessionEntry struct {
	Conn      core.SignalConnection
	MeetingID domain.MeetingID
	UserID    domain.UserID
	Name      string
	IsHost    bool
	LastSeen  time.Time
	Cancel    context.CancelFunc
}

// Registry maps live transport sessions to their meeting/user
// affiliation. It knows nothing about meeting state; that is the
// store's job.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	byUser   map[domain.UserID]core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		byUser:   make(map[domain.UserID]core.SessionID),
	}
}

// Bind registers a freshly upgraded connection with no meeting
// affiliation yet. A second connection carrying the same client token
// supersedes the first: the old entry's pumps are cancelled and its
// connection closed before the token is rebound.
func (r *Registry) Bind(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.sessions[sid]; ok {
		if old.UserID != "" && r.byUser[old.UserID] == sid {
			delete(r.byUser, old.UserID)
		}
		if old.Cancel != nil {
			old.Cancel()
		}
		if old.Conn != nil {
			old.Conn.Close()
		}
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("superseded previous session binding")
	}
	r.sessions[sid] = &sessionEntry{Conn: conn, LastSeen: time.Now(), Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

// Attach records the session's meeting/user affiliation after a
// successful join.
func (r *Registry) Attach(sid core.SessionID, meetingID domain.MeetingID, userID domain.UserID, name string, isHost bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.MeetingID = meetingID
	e.UserID = userID
	e.Name = name
	e.IsHost = isHost
	e.LastSeen = time.Now()
	r.byUser[userID] = sid
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("meeting", string(meetingID)).Str("user", string(userID)).Msg("attached to meeting")
	return true
}

// Detach clears the meeting affiliation but keeps the connection bound.
func (r *Registry) Detach(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		if e.UserID != "" && r.byUser[e.UserID] == sid {
			delete(r.byUser, e.UserID)
		}
		e.MeetingID = ""
		e.UserID = ""
		e.IsHost = false
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("detached from meeting")
}

// UnbindOwned drops the session and cancels its connection context,
// which stops the adapter pumps — but only while conn is still the
// bound connection. A stale pump whose token was rebound by a newer
// connection gets false and must leave the live session alone.
func (r *Registry) UnbindOwned(sid core.SessionID, conn core.SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.Conn != conn {
		return false
	}
	if e.UserID != "" && r.byUser[e.UserID] == sid {
		delete(r.byUser, e.UserID)
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound session")
	return true
}

// Binding reports the session's current affiliation.
func (r *Registry) Binding(sid core.SessionID) (meetingID domain.MeetingID, userID domain.UserID, name string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, found := r.sessions[sid]
	if !found || e.MeetingID == "" {
		return "", "", "", false
	}
	return e.MeetingID, e.UserID, e.Name, true
}

// ConnOfUser finds the live connection of a participant, for
// point-to-point signaling.
func (r *Registry) ConnOfUser(userID domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byUser[userID]
	if !ok {
		return nil, false
	}
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

func (r *Registry) HasUser(userID domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[userID]
	return ok
}

type memberSnap struct {
	SID    core.SessionID
	UserID domain.UserID
	Conn   core.SignalConnection
}

// MembersOfMeeting snapshots the live connections attached to one
// meeting, for fan-out.
func (r *Registry) MembersOfMeeting(meetingID domain.MeetingID) []memberSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]memberSnap, 0, len(r.sessions))
	for sid, e := range r.sessions {
		if e.MeetingID == meetingID {
			out = append(out, memberSnap{SID: sid, UserID: e.UserID, Conn: e.Conn})
		}
	}
	return out
}

func (r *Registry) Touch(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.LastSeen = time.Now()
	}
}
