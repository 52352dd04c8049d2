package domain

import "time"

type MessageType string

const MessageText MessageType = "text"

// Message is immutable after creation except for the read-set and the
// delete flag. Sender name is denormalized so removing the participant
// later does not corrupt history.
type Message struct {
	ID         MessageID
	MeetingID  MeetingID
	SenderID   UserID
	SenderName string
	Type       MessageType
	Content    string
	SentAt     time.Time
	ReadBy     map[UserID]struct{}
	Deleted    bool
}

func NewMessage(id MessageID, meetingID MeetingID, senderID UserID, senderName, content string) *Message {
	return &Message{
		ID:         id,
		MeetingID:  meetingID,
		SenderID:   senderID,
		SenderName: senderName,
		Type:       MessageText,
		Content:    content,
		SentAt:     time.Now(),
		ReadBy:     map[UserID]struct{}{senderID: {}},
	}
}

func (m *Message) MarkRead(uid UserID) {
	m.ReadBy[uid] = struct{}{}
}
