package renderer

import (
	"log/slog"
	"sync"
)

// progressTracker is the only cross-tile synchronisation during rendering:
// a mutex-protected counter whose reporting is advisory.
type progressTracker struct {
	mu       sync.Mutex
	done     int
	total    int
	lastPct  int
	renderID string
}

func newProgressTracker(total int, renderID string) *progressTracker {
	return &progressTracker{total: total, renderID: renderID}
}

// Inc records one finished tile and logs at 25% increments
func (p *progressTracker) Inc() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	pct := p.done * 100 / p.total
	if pct/25 > p.lastPct/25 || p.done == p.total {
		p.lastPct = pct
		slog.Info("render progress", "render", p.renderID, "tiles", p.done, "total", p.total, "pct", pct)
	}
}
