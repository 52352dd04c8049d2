package domain

import "time"

// FileRecord is metadata only; the service never stores file bytes.
// Immutable after creation except for the download counter and the
// delete flag.
type FileRecord struct {
	ID           FileID
	MeetingID    MeetingID
	UploaderID   UserID
	UploaderName string
	Name         string
	StoredName   string
	MimeType     string
	Size         int64
	UploadedAt   time.Time
	Downloads    int
	Deleted      bool
}

func NewFileRecord(id FileID, meetingID MeetingID, uploaderID UserID, uploaderName, name, storedName, mimeType string, size int64) *FileRecord {
	return &FileRecord{
		ID:           id,
		MeetingID:    meetingID,
		UploaderID:   uploaderID,
		UploaderName: uploaderName,
		Name:         name,
		StoredName:   storedName,
		MimeType:     mimeType,
		Size:         size,
		UploadedAt:   time.Now(),
	}
}
