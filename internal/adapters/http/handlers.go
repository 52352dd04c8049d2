package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

// AdminController is the administrative surface: meeting creation,
// status probes and read-only projections.
type AdminController struct {
	Store *core.MeetingStore
}

type createMeetingRequest struct {
	HostName string                   `json:"hostName"`
	Settings domain.SettingsOverrides `json:"settings"`
}

func (a *AdminController) CreateMeeting(c *gin.Context) {
	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.HostName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid hostName"})
		return
	}

	res, err := a.Store.CreateMeeting(req.HostName, req.Settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Info().Str("module", "adapters.http").Str("meeting", string(res.MeetingID)).Msg("meeting created via API")
	c.JSON(http.StatusCreated, res)
}

func (a *AdminController) MeetingStatus(c *gin.Context) {
	id := c.Param("id")
	if !domain.ValidateMeetingCode(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting code"})
		return
	}
	info := a.Store.StatusOf(domain.MeetingID(id))
	if !info.Exists {
		c.JSON(http.StatusNotFound, info)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (a *AdminController) SearchMeetings(c *gin.Context) {
	var f core.SearchFilters
	if s := c.Query("status"); s != "" {
		switch domain.MeetingStatus(s) {
		case domain.MeetingActive, domain.MeetingEnded:
			f.Status = domain.MeetingStatus(s)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad from timestamp"})
			return
		}
		f.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad to timestamp"})
			return
		}
		f.To = t
	}

	c.JSON(http.StatusOK, gin.H{"meetings": a.Store.Search(c.Query("q"), f)})
}

func (a *AdminController) MeetingMessages(c *gin.Context) {
	id := domain.MeetingID(c.Param("id"))
	if !a.Store.StatusOf(id).Exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": a.Store.MessagesOf(id)})
}

func (a *AdminController) MeetingFiles(c *gin.Context) {
	id := domain.MeetingID(c.Param("id"))
	if !a.Store.StatusOf(id).Exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": a.Store.FilesOf(id)})
}

type registerFileRequest struct {
	UploaderID string `json:"uploaderId"`
	Name       string `json:"name"`
	StoredName string `json:"storedName"`
	MimeType   string `json:"mimeType"`
	Size       int64  `json:"size"`
}

// RegisterFile records upload metadata after the (external) file
// server has stored the bytes.
func (a *AdminController) RegisterFile(c *gin.Context) {
	id := domain.MeetingID(c.Param("id"))
	var req registerFileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UploaderID == "" || req.Name == "" || req.Size < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid file metadata"})
		return
	}

	view := a.Store.AddFile(id, domain.UserID(req.UploaderID), req.Name, req.StoredName, req.MimeType, req.Size)
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting or uploader not found"})
		return
	}
	c.JSON(http.StatusCreated, view)
}

// FileDownloaded bumps the download counter for one file.
func (a *AdminController) FileDownloaded(c *gin.Context) {
	id := domain.MeetingID(c.Param("id"))
	fileID := domain.FileID(c.Param("fileId"))
	if !a.Store.IncrementDownload(id, fileID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *AdminController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"meetings": a.Store.MeetingCount(),
	})
}
