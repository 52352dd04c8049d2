package core

import (
	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/domain"
)

// AddMessage appends a chat message, denormalizing the sender name at
// creation time. Returns nil when the meeting or sender is absent;
// absence is never fatal here.
func (s *MeetingStore) AddMessage(meetingID domain.MeetingID, senderID domain.UserID, content string) *MessageView {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return nil
	}
	p, ok := m.Participants[senderID]
	if !ok {
		return nil
	}

	msg := domain.NewMessage(
		domain.MessageID(domain.NewID(domain.KindMessage)),
		meetingID, senderID, p.Name, content,
	)
	m.Messages = append(m.Messages, msg)
	m.Stats.MessageCount++

	log.Debug().Str("module", "core.store").Str("meeting", string(meetingID)).Str("sender", string(senderID)).Msg("message appended")
	v := messageView(msg)
	return &v
}

func (s *MeetingStore) MarkMessageRead(meetingID domain.MeetingID, messageID domain.MessageID, userID domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return false
	}
	if _, ok := m.Participants[userID]; !ok {
		return false
	}
	for _, msg := range m.Messages {
		if msg.ID == messageID && !msg.Deleted {
			msg.MarkRead(userID)
			return true
		}
	}
	return false
}

// DeleteMessage soft-deletes; only the sender or the host may delete.
func (s *MeetingStore) DeleteMessage(meetingID domain.MeetingID, messageID domain.MessageID, byUserID domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return false
	}
	p, ok := m.Participants[byUserID]
	if !ok {
		return false
	}
	for _, msg := range m.Messages {
		if msg.ID == messageID && !msg.Deleted {
			if msg.SenderID != byUserID && !p.IsHost {
				return false
			}
			msg.Deleted = true
			return true
		}
	}
	return false
}

// AddFile records upload metadata. Same nil-on-absence policy as
// AddMessage.
func (s *MeetingStore) AddFile(meetingID domain.MeetingID, uploaderID domain.UserID, name, storedName, mimeType string, size int64) *FileView {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return nil
	}
	p, ok := m.Participants[uploaderID]
	if !ok {
		return nil
	}

	f := domain.NewFileRecord(
		domain.FileID(domain.NewID(domain.KindFile)),
		meetingID, uploaderID, p.Name, name, storedName, mimeType, size,
	)
	m.Files = append(m.Files, f)
	m.Stats.FileCount++

	log.Debug().Str("module", "core.store").Str("meeting", string(meetingID)).Str("uploader", string(uploaderID)).Str("file", name).Msg("file recorded")
	v := fileView(f)
	return &v
}

func (s *MeetingStore) IncrementDownload(meetingID domain.MeetingID, fileID domain.FileID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return false
	}
	for _, f := range m.Files {
		if f.ID == fileID && !f.Deleted {
			f.Downloads++
			return true
		}
	}
	return false
}

// MessagesOf returns projections of the non-deleted messages, in
// append order.
func (s *MeetingStore) MessagesOf(meetingID domain.MeetingID) []MessageView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return nil
	}
	out := make([]MessageView, 0, len(m.Messages))
	for _, msg := range m.Messages {
		if msg.Deleted {
			continue
		}
		out = append(out, messageView(msg))
	}
	return out
}

func (s *MeetingStore) FilesOf(meetingID domain.MeetingID) []FileView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meetings[meetingID]
	if !ok {
		return nil
	}
	out := make([]FileView, 0, len(m.Files))
	for _, f := range m.Files {
		if f.Deleted {
			continue
		}
		out = append(out, fileView(f))
	}
	return out
}
