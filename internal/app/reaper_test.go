package app

import (
	"context"
	"testing"
	"time"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

func TestReaperPurgesOnlyRetiredMeetings(t *testing.T) {
	store := core.NewMeetingStore("http://test.local", domain.DefaultSettings())

	retired, err := store.CreateMeeting("Host", domain.SettingsOverrides{})
	if err != nil {
		t.Fatal(err)
	}
	store.RemoveParticipant(retired.MeetingID, retired.HostID)

	active, err := store.CreateMeeting("Other Host", domain.SettingsOverrides{})
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)
	reaper := NewReaper(store, time.Millisecond, time.Hour)

	purged := reaper.Cleanup()
	if len(purged) != 1 || purged[0] != retired.MeetingID {
		t.Fatalf("expected only the retired meeting purged, got %v", purged)
	}
	if !store.StatusOf(active.MeetingID).Exists {
		t.Fatal("active meeting was purged")
	}
}

func TestReaperIdempotent(t *testing.T) {
	store := core.NewMeetingStore("http://test.local", domain.DefaultSettings())
	res, err := store.CreateMeeting("Host", domain.SettingsOverrides{})
	if err != nil {
		t.Fatal(err)
	}
	store.RemoveParticipant(res.MeetingID, res.HostID)

	time.Sleep(5 * time.Millisecond)
	reaper := NewReaper(store, time.Millisecond, time.Hour)

	if first := reaper.Cleanup(); len(first) != 1 {
		t.Fatalf("first pass should purge one meeting, got %v", first)
	}
	if second := reaper.Cleanup(); len(second) != 0 {
		t.Fatalf("second pass must purge nothing, got %v", second)
	}
}

func TestReaperSkipsFreshEndedMeetings(t *testing.T) {
	store := core.NewMeetingStore("http://test.local", domain.DefaultSettings())
	res, err := store.CreateMeeting("Host", domain.SettingsOverrides{})
	if err != nil {
		t.Fatal(err)
	}
	store.RemoveParticipant(res.MeetingID, res.HostID)

	reaper := NewReaper(store, time.Hour, time.Hour)
	if purged := reaper.Cleanup(); len(purged) != 0 {
		t.Fatalf("meeting inside the retention window was purged: %v", purged)
	}
}

func TestReaperRunStopsOnCancel(t *testing.T) {
	store := core.NewMeetingStore("http://test.local", domain.DefaultSettings())
	reaper := NewReaper(store, time.Hour, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on context cancel")
	}
}
