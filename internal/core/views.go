package core

import (
	"sort"
	"strings"
	"time"

	"github.com/convene/convene/internal/domain"
)

// Views are read-only projections for APIs and fan-out. Raw internal
// records never leave the store.

type ParticipantView struct {
	ID          domain.UserID `json:"id"`
	Name        string        `json:"name"`
	IsHost      bool          `json:"isHost"`
	Audio       bool          `json:"audio"`
	Video       bool          `json:"video"`
	ScreenShare bool          `json:"screenShare"`
	JoinedAt    time.Time     `json:"joinedAt"`
}

type MessageView struct {
	ID         domain.MessageID   `json:"id"`
	SenderID   domain.UserID      `json:"senderId"`
	SenderName string             `json:"senderName"`
	Type       domain.MessageType `json:"type"`
	Content    string             `json:"content"`
	SentAt     time.Time          `json:"time"`
	ReadBy     []domain.UserID    `json:"readBy"`
}

type FileView struct {
	ID           domain.FileID `json:"id"`
	UploaderID   domain.UserID `json:"uploaderId"`
	UploaderName string        `json:"uploaderName"`
	Name         string        `json:"name"`
	MimeType     string        `json:"mimeType"`
	Size         int64         `json:"size"`
	UploadedAt   time.Time     `json:"uploadedAt"`
	Downloads    int           `json:"downloads"`
}

// MeetingView is the external-facing projection. Message and file
// bodies are always absent; settings and stats only appear for a
// requester who is currently an active participant.
type MeetingView struct {
	ID               domain.MeetingID     `json:"id"`
	HostID           domain.UserID        `json:"hostId"`
	HostName         string               `json:"hostName"`
	Status           domain.MeetingStatus `json:"status"`
	CreatedAt        time.Time            `json:"createdAt"`
	StartedAt        *time.Time           `json:"startedAt,omitempty"`
	EndedAt          *time.Time           `json:"endedAt,omitempty"`
	ParticipantCount int                  `json:"participantCount"`
	Participants     []ParticipantView    `json:"participants"`
	Settings         *domain.Settings     `json:"settings,omitempty"`
	Stats            *domain.Stats        `json:"stats,omitempty"`
}

type MeetingSummary struct {
	ID               domain.MeetingID     `json:"id"`
	HostName         string               `json:"hostName"`
	Status           domain.MeetingStatus `json:"status"`
	CreatedAt        time.Time            `json:"createdAt"`
	ParticipantCount int                  `json:"participantCount"`
}

type SearchFilters struct {
	Status domain.MeetingStatus
	From   time.Time
	To     time.Time
}

func participantView(p *domain.Participant) ParticipantView {
	return ParticipantView{
		ID:          p.ID,
		Name:        p.Name,
		IsHost:      p.IsHost,
		Audio:       p.Audio,
		Video:       p.Video,
		ScreenShare: p.ScreenShare,
		JoinedAt:    p.JoinedAt,
	}
}

func messageView(m *domain.Message) MessageView {
	readBy := make([]domain.UserID, 0, len(m.ReadBy))
	for uid := range m.ReadBy {
		readBy = append(readBy, uid)
	}
	sort.Slice(readBy, func(i, j int) bool { return readBy[i] < readBy[j] })
	return MessageView{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Type:       m.Type,
		Content:    m.Content,
		SentAt:     m.SentAt,
		ReadBy:     readBy,
	}
}

func fileView(f *domain.FileRecord) FileView {
	return FileView{
		ID:           f.ID,
		UploaderID:   f.UploaderID,
		UploaderName: f.UploaderName,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		UploadedAt:   f.UploadedAt,
		Downloads:    f.Downloads,
	}
}

// Sanitize builds the projection for one requester. A nil/unknown
// requester gets the public shape without settings or stats.
func (s *MeetingStore) Sanitize(meetingID domain.MeetingID, requestingUserID domain.UserID) *MeetingView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return nil
	}

	v := &MeetingView{
		ID:               m.ID,
		HostID:           m.HostID,
		HostName:         m.HostName,
		Status:           m.Status,
		CreatedAt:        m.CreatedAt,
		ParticipantCount: len(m.Participants),
		Participants:     make([]ParticipantView, 0, len(m.Participants)),
	}
	if !m.StartedAt.IsZero() {
		t := m.StartedAt
		v.StartedAt = &t
	}
	if !m.EndedAt.IsZero() {
		t := m.EndedAt
		v.EndedAt = &t
	}
	for _, p := range m.Participants {
		v.Participants = append(v.Participants, participantView(p))
	}
	sort.Slice(v.Participants, func(i, j int) bool {
		return v.Participants[i].JoinedAt.Before(v.Participants[j].JoinedAt)
	})

	if _, active := m.Participants[requestingUserID]; active {
		settings := m.Settings
		stats := m.Stats
		v.Settings = &settings
		v.Stats = &stats
	}
	return v
}

// Search is a linear scan: case-insensitive substring match on the
// meeting identifier plus status and creation-date range filters.
func (s *MeetingStore) Search(query string, f SearchFilters) []MeetingSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	out := make([]MeetingSummary, 0)
	for _, m := range s.meetings {
		if q != "" && !strings.Contains(strings.ToLower(string(m.ID)), q) {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && m.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && m.CreatedAt.After(f.To) {
			continue
		}
		out = append(out, MeetingSummary{
			ID:               m.ID,
			HostName:         m.HostName,
			Status:           m.Status,
			CreatedAt:        m.CreatedAt,
			ParticipantCount: len(m.Participants),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type MeetingStatusInfo struct {
	Exists           bool                 `json:"exists"`
	Status           domain.MeetingStatus `json:"status,omitempty"`
	ParticipantCount int                  `json:"participantCount"`
}

func (s *MeetingStore) StatusOf(meetingID domain.MeetingID) MeetingStatusInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return MeetingStatusInfo{}
	}
	return MeetingStatusInfo{
		Exists:           true,
		Status:           m.Status,
		ParticipantCount: len(m.Participants),
	}
}
