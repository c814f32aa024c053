package metro

import (
	"context"
	"log"
	"time"
)

// Poller refreshes a System's live positions on a fixed interval and retries
// any static component that failed to load.
type Poller struct {
	system   *System
	interval time.Duration
}

// NewPoller creates a poller for system
func NewPoller(system *System, interval time.Duration) *Poller {
	return &Poller{system: system, interval: interval}
}

// Run polls immediately and then on every tick until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.pollOnce(ctx)
		case <-ctx.Done():
			log.Println("Metro: polling loop stopped")
			return
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	if !p.system.Ready() {
		if err := p.system.Populate(ctx); err != nil {
			log.Printf("Metro: static data still incomplete: %v", err)
		}
	}

	snap, err := p.system.Refresh(ctx)
	if err != nil {
		log.Printf("Metro: refresh failed, keeping previous snapshot: %v", err)
		return
	}
	log.Printf("Metro: stored %s", snap)
}
