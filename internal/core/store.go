package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/domain"
)

// MeetingStore is the authoritative in-memory registry of meetings,
// participants, messages and files. It is a pure state container: no
// I/O, no transport knowledge. The mutex makes the single-writer
// guarantee explicit; handlers mutate one meeting at a time and
// notifications go out only after the mutation commits.
type MeetingStore struct {
	mu       sync.RWMutex
	meetings map[domain.MeetingID]*domain.Meeting
	users    map[domain.UserID]domain.MeetingID

	baseURL  string
	defaults domain.Settings
}

func NewMeetingStore(baseURL string, defaults domain.Settings) *MeetingStore {
	return &MeetingStore{
		meetings: make(map[domain.MeetingID]*domain.Meeting),
		users:    make(map[domain.UserID]domain.MeetingID),
		baseURL:  baseURL,
		defaults: defaults,
	}
}

type CreateResult struct {
	MeetingID domain.MeetingID `json:"meetingId"`
	HostID    domain.UserID    `json:"hostId"`
	HostLink  string           `json:"hostLink"`
	GuestLink string           `json:"guestLink"`
}

// CreateMeeting allocates a meeting with a fresh shareable code and
// immediately adds the host as its first participant, which stamps
// StartedAt.
func (s *MeetingStore) CreateMeeting(hostName string, overrides domain.SettingsOverrides) (*CreateResult, error) {
	if err := domain.ValidateDisplayName(hostName); err != nil {
		return nil, err
	}

	id := domain.NewMeetingCode()
	hostID := domain.UserID(domain.NewID(domain.KindUser))
	m := domain.NewMeeting(id, hostID, hostName, s.defaults.Apply(overrides))

	s.mu.Lock()
	s.meetings[id] = m
	s.mu.Unlock()

	if _, err := s.AddParticipant(id, hostID, hostName, true); err != nil {
		return nil, err
	}

	guestLink := s.baseURL + "/meet/" + string(id)
	log.Info().Str("module", "core.store").Str("meeting", string(id)).Str("host", string(hostID)).Msg("meeting created")
	return &CreateResult{
		MeetingID: id,
		HostID:    hostID,
		HostLink:  guestLink + "?host=" + string(hostID),
		GuestLink: guestLink,
	}, nil
}

// AddParticipant inserts a participant with default device flags.
// Re-adding a user who is already an active participant is treated as
// a rebind (disconnect-grace rejoin) and neither bumps stats nor
// counts against capacity.
func (s *MeetingStore) AddParticipant(meetingID domain.MeetingID, userID domain.UserID, name string, isHost bool) (*ParticipantView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	if m.Status == domain.MeetingEnded {
		return nil, domain.ErrMeetingEnded
	}
	if existing, ok := m.Participants[userID]; ok {
		existing.LastSeen = time.Now()
		v := participantView(existing)
		return &v, nil
	}
	if len(m.Participants) >= m.Settings.MaxParticipants {
		return nil, domain.ErrCapacityExceeded
	}

	p, err := domain.NewParticipant(userID, name, isHost)
	if err != nil {
		return nil, err
	}
	m.Participants[userID] = p
	s.users[userID] = meetingID
	m.Stats.TotalParticipants++
	if m.StartedAt.IsZero() {
		m.StartedAt = time.Now()
	}

	log.Info().Str("module", "core.store").Str("meeting", string(meetingID)).Str("user", string(userID)).Bool("host", isHost).Msg("participant added")
	v := participantView(p)
	return &v, nil
}

// RemoveParticipant marks the participant left and drops it from the
// active mapping. When the mapping empties the meeting ends: EndedAt,
// status and duration are stamped once and never reset.
func (s *MeetingStore) RemoveParticipant(meetingID domain.MeetingID, userID domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return false
	}
	p, ok := m.Participants[userID]
	if !ok {
		return false
	}

	p.Status = domain.ParticipantLeft
	p.LeftAt = time.Now()
	delete(m.Participants, userID)
	delete(s.users, userID)

	if len(m.Participants) == 0 && m.Status == domain.MeetingActive {
		m.Status = domain.MeetingEnded
		m.EndedAt = time.Now()
		m.Stats.Duration = m.EndedAt.Sub(m.StartedAt)
		log.Info().Str("module", "core.store").Str("meeting", string(meetingID)).Dur("duration", m.Stats.Duration).Msg("meeting ended")
	}

	log.Info().Str("module", "core.store").Str("meeting", string(meetingID)).Str("user", string(userID)).Msg("participant removed")
	return true
}

func (s *MeetingStore) ParticipantCount(meetingID domain.MeetingID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.meetings[meetingID]; ok {
		return len(m.Participants)
	}
	return 0
}

// MeetingOf reports which meeting a user is currently active in.
func (s *MeetingStore) MeetingOf(userID domain.UserID) (domain.MeetingID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.users[userID]
	return id, ok
}

func (s *MeetingStore) IsParticipant(meetingID domain.MeetingID, userID domain.UserID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[meetingID]
	if !ok {
		return false
	}
	_, ok = m.Participants[userID]
	return ok
}

// UpdateDeviceStatus records a self-reported device flag change.
// Unknown device kinds are rejected at the boundary.
func (s *MeetingStore) UpdateDeviceStatus(meetingID domain.MeetingID, userID domain.UserID, device domain.Device, enabled bool) bool {
	if !device.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return false
	}
	p, ok := m.Participants[userID]
	if !ok {
		return false
	}
	switch device {
	case domain.DeviceAudio:
		p.Audio = enabled
	case domain.DeviceVideo:
		p.Video = enabled
	case domain.DeviceScreenShare:
		p.ScreenShare = enabled
	}
	p.LastSeen = time.Now()
	return true
}

// CheckPermission is a pure predicate over current settings and the
// participant's host flag. Unknown permission kinds default to allowed;
// callers only probe known kinds.
func (s *MeetingStore) CheckPermission(meetingID domain.MeetingID, userID domain.UserID, perm domain.Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return false
	}
	p, ok := m.Participants[userID]
	if !ok {
		return false
	}
	switch perm {
	case domain.PermAudio:
		return m.Settings.AllowAudio
	case domain.PermVideo:
		return m.Settings.AllowVideo
	case domain.PermScreenShare:
		return m.Settings.AllowScreenShare
	case domain.PermRecording:
		return m.Settings.AllowRecording && p.IsHost
	}
	return true
}

// PurgeEndedBefore removes every ended meeting whose EndedAt is older
// than the cutoff, cascading deletion to its messages, files and user
// index entries. Active meetings are never purged regardless of age.
func (s *MeetingStore) PurgeEndedBefore(cutoff time.Time) []domain.MeetingID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged []domain.MeetingID
	for id, m := range s.meetings {
		if m.Status != domain.MeetingEnded || m.EndedAt.After(cutoff) {
			continue
		}
		for uid := range m.Participants {
			delete(s.users, uid)
		}
		m.Messages = nil
		m.Files = nil
		delete(s.meetings, id)
		purged = append(purged, id)
	}
	return purged
}

func (s *MeetingStore) MeetingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meetings)
}
