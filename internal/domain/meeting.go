// Package domain contains the meeting entities. Meta-data and
// invariant-free helpers only; mutation rules live in core.
package domain

import (
	"errors"
	"time"
)

type (
	MeetingID string
	MessageID string
	FileID    string
)

type MeetingStatus string

const (
	MeetingActive MeetingStatus = "active"
	MeetingEnded  MeetingStatus = "ended"
)

var (
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrCapacityExceeded    = errors.New("meeting is full")
	ErrMeetingEnded        = errors.New("meeting has ended")
	ErrInvalidMeetingCode  = errors.New("invalid meeting code")
)

const DefaultMaxParticipants = 50

// Settings are per-meeting capability flags, fixed at creation.
type Settings struct {
	MaxParticipants  int  `json:"maxParticipants"`
	AllowVideo       bool `json:"allowVideo"`
	AllowAudio       bool `json:"allowAudio"`
	AllowScreenShare bool `json:"allowScreenShare"`
	AllowRecording   bool `json:"allowRecording"`
	WaitingRoom      bool `json:"waitingRoom"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxParticipants:  DefaultMaxParticipants,
		AllowVideo:       true,
		AllowAudio:       true,
		AllowScreenShare: true,
		AllowRecording:   false,
		WaitingRoom:      false,
	}
}

// Stats are meeting-level aggregates. They survive participant removal;
// nothing else about a departed participant does.
type Stats struct {
	TotalParticipants int           `json:"totalParticipants"`
	MessageCount      int           `json:"messageCount"`
	FileCount         int           `json:"fileCount"`
	Duration          time.Duration `json:"duration"`
}

type Meeting struct {
	ID        MeetingID
	HostID    UserID
	HostName  string
	Status    MeetingStatus
	Settings  Settings
	CreatedAt time.Time
	// StartedAt is stamped once, on the zero-to-one participant
	// transition. EndedAt is stamped once, when the last participant
	// leaves; neither is ever reset.
	StartedAt time.Time
	EndedAt   time.Time

	Participants map[UserID]*Participant
	Messages     []*Message
	Files        []*FileRecord
	Stats        Stats
}

func NewMeeting(id MeetingID, hostID UserID, hostName string, settings Settings) *Meeting {
	return &Meeting{
		ID:           id,
		HostID:       hostID,
		HostName:     hostName,
		Status:       MeetingActive,
		Settings:     settings,
		CreatedAt:    time.Now(),
		Participants: make(map[UserID]*Participant),
	}
}
