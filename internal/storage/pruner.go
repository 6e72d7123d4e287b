package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pruner periodically deletes events older than the retention period. Events
// past the longest quota window can never change an admission decision, so
// they only cost query time and disk.
type Pruner struct {
	store     EventStore
	retention time.Duration
	interval  time.Duration

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewPruner creates a pruner that removes events older than retention on
// every interval tick. Start must be called to begin pruning.
func NewPruner(store EventStore, retention, interval time.Duration) *Pruner {
	return &Pruner{
		store:     store,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start launches the background pruning loop.
func (p *Pruner) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop terminates the pruning loop and waits for it to exit.
func (p *Pruner) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

func (p *Pruner) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.prune()
		}
	}
}

func (p *Pruner) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-p.retention)
	pruned, err := p.store.PruneBefore(ctx, cutoff)
	if err != nil {
		slog.Error("Event log pruning failed", "error", err)
		return
	}
	if pruned > 0 {
		slog.Debug("Pruned expired admission events", "count", pruned, "cutoff", cutoff)
	}
}
