package core

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/convene/convene/internal/domain"
)

func TestSanitizeHidesInternalsFromOutsiders(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{})
	s.AddMessage(res.MeetingID, res.HostID, "secret")

	asParticipant := s.Sanitize(res.MeetingID, res.HostID)
	if asParticipant.Settings == nil || asParticipant.Stats == nil {
		t.Fatal("active participant should see settings and stats")
	}

	asOutsider := s.Sanitize(res.MeetingID, "stranger")
	if asOutsider.Settings != nil || asOutsider.Stats != nil {
		t.Fatal("outsider should not see settings or stats")
	}
	asNobody := s.Sanitize(res.MeetingID, "")
	if asNobody.Settings != nil || asNobody.Stats != nil {
		t.Fatal("empty requester should not see settings or stats")
	}

	// Message and file bodies must be absent from the projection in
	// both cases; callers use the dedicated accessors.
	for _, v := range []*MeetingView{asParticipant, asOutsider} {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal view: %v", err)
		}
		if strings.Contains(string(b), "secret") {
			t.Fatal("message body leaked through the sanitized view")
		}
	}
}

func TestSanitizeUnknownMeeting(t *testing.T) {
	s := newTestStore()
	if s.Sanitize("abc-def-ghij", "u1") != nil {
		t.Fatal("expected nil view for unknown meeting")
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore()
	a := createTestMeeting(t, s, domain.SettingsOverrides{})
	b := createTestMeeting(t, s, domain.SettingsOverrides{})
	s.RemoveParticipant(b.MeetingID, b.HostID)

	all := s.Search("", SearchFilters{})
	if len(all) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(all))
	}

	active := s.Search("", SearchFilters{Status: domain.MeetingActive})
	if len(active) != 1 || active[0].ID != a.MeetingID {
		t.Fatalf("status filter broken: %+v", active)
	}

	// Case-insensitive substring match on the identifier.
	q := strings.ToUpper(string(a.MeetingID)[:3])
	found := false
	for _, m := range s.Search(q, SearchFilters{}) {
		if m.ID == a.MeetingID {
			found = true
		}
	}
	if !found {
		t.Fatalf("substring search for %q missed %s", q, a.MeetingID)
	}

	if got := s.Search("zzzz-not-there", SearchFilters{}); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestStatusOf(t *testing.T) {
	s := newTestStore()
	res := createTestMeeting(t, s, domain.SettingsOverrides{})

	info := s.StatusOf(res.MeetingID)
	if !info.Exists || info.Status != domain.MeetingActive || info.ParticipantCount != 1 {
		t.Fatalf("unexpected status info: %+v", info)
	}
	if s.StatusOf("abc-def-ghij").Exists {
		t.Fatal("unknown meeting reported as existing")
	}
}
