package sync

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pro-prioritet/tracker/internal/logx"
)

const refreshTimeout = 30 * time.Second

// Refresher re-runs Load on a cron schedule so long-running consumers
// (watch mode, kiosk dashboards) converge with the remote store without
// user interaction. A failed refresh just leaves the synchronizer in its
// degraded state until the next tick.
type Refresher struct {
	c   *cron.Cron
	log *logx.Logger
}

// NewRefresher schedules spec (e.g. "@every 5m") against the syncer.
func NewRefresher(s *Syncer, spec string) (*Refresher, error) {
	c := cron.New()
	log := logx.New("refresher")

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		s.Load(ctx)
		log.Infof("tick", "mode=%s projects=%d", s.Mode(), len(s.Projects()))
	})
	if err != nil {
		return nil, err
	}
	return &Refresher{c: c, log: log}, nil
}

func (r *Refresher) Start() {
	r.log.Infof("start", "background refresh enabled")
	r.c.Start()
}

// Stop halts scheduling; a refresh already in flight runs to completion.
func (r *Refresher) Stop() {
	r.c.Stop()
}
