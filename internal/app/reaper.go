package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/convene/convene/internal/core"
	"github.com/convene/convene/internal/domain"
)

// Reaper periodically purges ended meetings past the retention window,
// cascading to their messages, files and user index entries.
type Reaper struct {
	Store     *core.MeetingStore
	Retention time.Duration
	Interval  time.Duration
}

func NewReaper(store *core.MeetingStore, retention, interval time.Duration) *Reaper {
	return &Reaper{Store: store, Retention: retention, Interval: interval}
}

// Cleanup runs one pass and returns the purged meeting identifiers.
// Idempotent: a second pass with no intervening state change purges
// nothing.
func (r *Reaper) Cleanup() []domain.MeetingID {
	purged := r.Store.PurgeEndedBefore(time.Now().Add(-r.Retention))
	if len(purged) > 0 {
		ids := make([]string, len(purged))
		for i, id := range purged {
			ids[i] = string(id)
		}
		log.Info().Str("module", "app.reaper").Strs("meetings", ids).Msg("purged ended meetings")
	}
	return purged
}

func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	log.Info().Str("module", "app.reaper").Dur("interval", r.Interval).Dur("retention", r.Retention).Msg("reaper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.reaper").Msg("reaper stopped")
			return
		case <-ticker.C:
			r.Cleanup()
		}
	}
}
