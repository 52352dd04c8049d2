package domain

import (
	"errors"
	"time"
)

const MaxDisplayNameLen = 64

var (
	ErrNameEmpty         = errors.New("display name empty")
	ErrNameTooLong       = errors.New("display name too long")
	ErrInvalidDevice     = errors.New("unknown device kind")
	ErrInvalidPermission = errors.New("unknown permission kind")
	ErrPermissionDenied  = errors.New("permission denied")
)

type UserID string

type ParticipantStatus string

const (
	ParticipantJoined ParticipantStatus = "joined"
	ParticipantLeft   ParticipantStatus = "left"
)

// Device is a self-reported media device kind.
type Device string

const (
	DeviceAudio       Device = "audio"
	DeviceVideo       Device = "video"
	DeviceScreenShare Device = "screenshare"
)

func (d Device) Valid() bool {
	switch d {
	case DeviceAudio, DeviceVideo, DeviceScreenShare:
		return true
	}
	return false
}

type Permission string

const (
	PermAudio       Permission = "audio"
	PermVideo       Permission = "video"
	PermScreenShare Permission = "screenshare"
	PermRecording   Permission = "recording"
)

type Participant struct {
	ID       UserID
	Name     string
	IsHost   bool
	Status   ParticipantStatus
	JoinedAt time.Time
	LeftAt   time.Time

	// Self-reported device flags; the coordinator trusts the
	// reporting participant for these.
	Audio       bool
	Video       bool
	ScreenShare bool

	LastSeen time.Time
}

func NewParticipant(id UserID, name string, isHost bool) (*Participant, error) {
	if err := ValidateDisplayName(name); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Participant{
		ID:       id,
		Name:     name,
		IsHost:   isHost,
		Status:   ParticipantJoined,
		JoinedAt: now,
		Audio:    true,
		Video:    true,
		LastSeen: now,
	}, nil
}

func ValidateDisplayName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	return nil
}
