package console

import (
	"context"
	"time"

	"github.com/soyeahso/agentdeck/internal/logging"
)

// Poller calls a fetch function once on start and then on every interval
// until its context is cancelled. Fetches run sequentially; an in-flight
// fetch is never cancelled by the poller itself.
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context) error
	log      *logging.Logger
}

// NewPoller creates a poller. A non-positive interval fetches once only.
func NewPoller(interval time.Duration, fetch func(ctx context.Context) error, log *logging.Logger) *Poller {
	if log == nil {
		log = logging.Discard()
	}
	return &Poller{interval: interval, fetch: fetch, log: log.Sub("poller")}
}

// Interval returns the polling period.
func (p *Poller) Interval() time.Duration { return p.interval }

// Run blocks until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.tick(ctx)
	if p.interval <= 0 {
		return
	}

	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.fetch(ctx); err != nil && ctx.Err() == nil {
		p.log.Warn().Err(err).Msg("poll failed")
	}
}
