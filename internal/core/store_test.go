package core

import (
	"errors"
	"testing"
	"time"

	"github.com/convene/convene/internal/domain"
)

func newTestStore() *MeetingStore {
	return NewMeetingStore("http://test.local", domain.DefaultSettings())
}

func createTestMeeting(t *testing.T, s *MeetingStore, overrides domain.SettingsOverrides) *CreateResult {
	t.Helper()
	res, err := s.CreateMeeting("Host", overrides)
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}
	return res
}

func intPtr(n int) *int { return &n }

func TestCreateMeetingAddsHost(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{})

	if !domain.ValidateMeetingCode(string(res.MeetingID)) {
		t.Fatalf("meeting id %q is not a valid code", res.MeetingID)
	}
	if s.ParticipantCount(res.MeetingID) != 1 {
		t.Fatalf("expected host to be the first participant, count=%d", s.ParticipantCount(res.MeetingID))
	}
	if res.HostLink == res.GuestLink {
		t.Fatal("host link must embed the host identifier")
	}

	v := s.Sanitize(res.MeetingID, res.HostID)
	if v.StartedAt == nil {
		t.Fatal("first join must stamp StartedAt")
	}
	if v.Status != domain.MeetingActive {
		t.Fatalf("expected active status, got %s", v.Status)
	}
}

func TestCapacityExceeded(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{MaxParticipants: intPtr(2)})

	if _, err := s.AddParticipant(res.MeetingID, "u2", "Guest Two", false); err != nil {
		t.Fatalf("second join should succeed: %v", err)
	}
	_, err := s.AddParticipant(res.MeetingID, "u3", "Guest Three", false)
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if got := s.ParticipantCount(res.MeetingID); got != 2 {
		t.Fatalf("participant count changed on rejected join: %d", got)
	}
}

func TestAddParticipantUnknownMeeting(t *testing.T) {
	s := newTestStore()
	_, err := s.AddParticipant("abc-def-ghij", "u1", "Ghost", false)
	if !errors.Is(err, domain.ErrMeetingNotFound) {
		t.Fatalf("expected ErrMeetingNotFound, got %v", err)
	}
}

func TestStartedAtSetOnce(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{})

	first := s.Sanitize(res.MeetingID, res.HostID).StartedAt
	if first == nil {
		t.Fatal("StartedAt not set on first join")
	}

	time.Sleep(2 * time.Millisecond)
	if _, err := s.AddParticipant(res.MeetingID, "u2", "Guest", false); err != nil {
		t.Fatalf("AddParticipant: %v", err)
	}
	second := s.Sanitize(res.MeetingID, res.HostID).StartedAt
	if !first.Equal(*second) {
		t.Fatalf("StartedAt changed on subsequent join: %v != %v", first, second)
	}
}

func TestLastLeaveEndsMeeting(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{})
	if _, err := s.AddParticipant(res.MeetingID, "u2", "Guest", false); err != nil {
		t.Fatalf("AddParticipant: %v", err)
	}

	time.Sleep(2 * time.Millisecond)
	if !s.RemoveParticipant(res.MeetingID, "u2") {
		t.Fatal("remove guest failed")
	}
	if info := s.StatusOf(res.MeetingID); info.Status != domain.MeetingActive {
		t.Fatalf("meeting ended while a participant remains: %s", info.Status)
	}

	if !s.RemoveParticipant(res.MeetingID, res.HostID) {
		t.Fatal("remove host failed")
	}
	v := s.Sanitize(res.MeetingID, res.HostID)
	if v.Status != domain.MeetingEnded {
		t.Fatalf("expected ended status, got %s", v.Status)
	}
	if v.EndedAt == nil {
		t.Fatal("EndedAt not stamped")
	}
	if !v.EndedAt.After(*v.StartedAt) {
		t.Fatal("EndedAt must be after StartedAt")
	}
}

func TestRejoinAfterEndRejected(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{})
	s.RemoveParticipant(res.MeetingID, res.HostID)

	_, err := s.AddParticipant(res.MeetingID, res.HostID, "Host", true)
	if !errors.Is(err, domain.ErrMeetingEnded) {
		t.Fatalf("expected ErrMeetingEnded on rejoin after full departure, got %v", err)
	}
}

func TestRebindActiveParticipantDoesNotBumpStats(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{})

	before := *s.Sanitize(res.MeetingID, res.HostID).Stats
	if _, err := s.AddParticipant(res.MeetingID, res.HostID, "Host", true); err != nil {
		t.Fatalf("rebind of active participant must succeed: %v", err)
	}
	after := *s.Sanitize(res.MeetingID, res.HostID).Stats
	if before.TotalParticipants != after.TotalParticipants {
		t.Fatalf("rebind bumped TotalParticipants: %d -> %d", before.TotalParticipants, after.TotalParticipants)
	}
}

func TestTotalParticipantsMonotonic(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{})

	last := 1
	users := []domain.UserID{"u2", "u3", "u4"}
	for _, uid := range users {
		if _, err := s.AddParticipant(res.MeetingID, uid, "Guest "+string(uid), false); err != nil {
			t.Fatalf("AddParticipant(%s): %v", uid, err)
		}
		got := s.Sanitize(res.MeetingID, res.HostID).Stats.TotalParticipants
		if got < last {
			t.Fatalf("TotalParticipants decreased: %d -> %d", last, got)
		}
		last = got
		s.RemoveParticipant(res.MeetingID, uid)
	}
	if last != 4 {
		t.Fatalf("expected 4 total participants ever, got %d", last)
	}
}

func TestUpdateDeviceStatus(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{})

	if !s.UpdateDeviceStatus(res.MeetingID, res.HostID, domain.DeviceVideo, false) {
		t.Fatal("valid device update rejected")
	}
	v := s.Sanitize(res.MeetingID, res.HostID)
	if v.Participants[0].Video {
		t.Fatal("video flag not updated")
	}

	if s.UpdateDeviceStatus(res.MeetingID, res.HostID, "hologram", true) {
		t.Fatal("unknown device kind accepted")
	}
	if s.UpdateDeviceStatus(res.MeetingID, "nobody", domain.DeviceAudio, true) {
		t.Fatal("device update for absent participant accepted")
	}
}

func TestCheckPermission(t *testing.T) {
	s := newTestStore()
	allowRec := true
	res := createTestMeeting(t, s, domain.SettingsOverrides{AllowRecording: &allowRec})
	if _, err := s.AddParticipant(res.MeetingID, "u2", "Guest", false); err != nil {
		t.Fatalf("AddParticipant: %v", err)
	}

	if !s.CheckPermission(res.MeetingID, res.HostID, domain.PermRecording) {
		t.Fatal("host should be allowed to record when enabled")
	}
	if s.CheckPermission(res.MeetingID, "u2", domain.PermRecording) {
		t.Fatal("guest should not be allowed to record")
	}
	if !s.CheckPermission(res.MeetingID, "u2", domain.PermAudio) {
		t.Fatal("audio should be allowed by default")
	}
	// Unknown kinds default to allowed by policy.
	if !s.CheckPermission(res.MeetingID, "u2", "teleport") {
		t.Fatal("unknown permission kind should default to allowed")
	}
	if s.CheckPermission(res.MeetingID, "nobody", domain.PermAudio) {
		t.Fatal("absent participant should have no permissions")
	}
}

func TestPurgeEndedBefore(t *testing.T) {
	s := newTestStore()
	ended := createTestMeeting(t, s, domain.SettingsOverrides{})
	s.RemoveParticipant(ended.MeetingID, ended.HostID)
	active := createTestMeeting(t, s, domain.SettingsOverrides{})

	purged := s.PurgeEndedBefore(time.Now().Add(time.Second))
	if len(purged) != 1 || purged[0] != ended.MeetingID {
		t.Fatalf("expected exactly the ended meeting purged, got %v", purged)
	}
	if s.Sanitize(ended.MeetingID, "") != nil {
		t.Fatal("purged meeting still present")
	}
	if s.Sanitize(active.MeetingID, "") == nil {
		t.Fatal("active meeting purged")
	}
	if _, ok := s.MeetingOf(ended.HostID); ok {
		t.Fatal("user index entry survived the purge")
	}
}
