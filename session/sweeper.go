package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the expiry sweep hourly.
const DefaultSweepSchedule = "@hourly"

// Sweeper deletes expired sessions on a schedule, keeping the destructive
// bulk delete off the request path.
type Sweeper struct {
	cron  *cron.Cron
	store *Store
}

func NewSweeper(store *Store, schedule string) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	c := cron.New()
	sw := &Sweeper{cron: c, store: store}
	if _, err := c.AddFunc(schedule, sw.run); err != nil {
		return nil, fmt.Errorf("sweeper schedule %q: %w", schedule, err)
	}
	return sw, nil
}

func (sw *Sweeper) run() {
	removed, err := sw.store.Sweep(context.Background())
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("session sweep removed expired sessions", "count", removed)
	}
}

func (sw *Sweeper) Start() { sw.cron.Start() }

func (sw *Sweeper) Stop() { sw.cron.Stop() }
