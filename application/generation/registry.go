package generation

import (
	"sync"
	"time"

	"github.com/zach-sndr/twitcanva/domain/core/entities"
	"github.com/zach-sndr/twitcanva/domain/core/valueobjects"
)

// StatusRecord is the queryable state of one generation task.
type StatusRecord struct {
	NodeID    valueobjects.NodeID
	Status    entities.GenerationStatus
	ResultURL string
	Error     string
	UpdatedAt time.Time
}

// StatusRegistry tracks per-node generation status with a bounded
// lifetime. It is an explicit service object with its own lifecycle:
// created at startup, injected into consumers, stopped on shutdown.
// Terminal records are evicted after the configured TTL.
type StatusRegistry struct {
	mu      sync.RWMutex
	records map[valueobjects.NodeID]StatusRecord

	ttl   time.Duration
	sweep time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewStatusRegistry creates a registry and starts its eviction loop.
// A zero ttl disables eviction.
func NewStatusRegistry(ttl, sweepInterval time.Duration) *StatusRegistry {
	r := &StatusRegistry{
		records: make(map[valueobjects.NodeID]StatusRecord),
		ttl:     ttl,
		sweep:   sweepInterval,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if sweepInterval <= 0 {
		r.sweep = 30 * time.Second
	}
	go r.run()
	return r
}

// Set records the status for a node
func (r *StatusRegistry) Set(id valueobjects.NodeID, status entities.GenerationStatus, resultURL, errMessage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[id] = StatusRecord{
		NodeID:    id,
		Status:    status,
		ResultURL: resultURL,
		Error:     errMessage,
		UpdatedAt: time.Now(),
	}
}

// Get returns the record for a node, if one is live
func (r *StatusRegistry) Get(id valueobjects.NodeID) (StatusRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	return rec, ok
}

// Delete removes a node's record, used when the node itself is deleted
func (r *StatusRegistry) Delete(id valueobjects.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
}

// Loading returns the ids of all nodes currently generating
func (r *StatusRegistry) Loading() []valueobjects.NodeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []valueobjects.NodeID
	for id, rec := range r.records {
		if rec.Status == entities.StatusLoading {
			out = append(out, id)
		}
	}
	return out
}

// Stop shuts the eviction loop down and waits for it to exit
func (r *StatusRegistry) Stop() {
	close(r.stop)
	<-r.done
}

func (r *StatusRegistry) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.evictExpired()
		}
	}
}

// evictExpired drops terminal records older than the TTL. Loading
// records are never evicted; this layer defines no generation timeout.
func (r *StatusRegistry) evictExpired() {
	if r.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.records {
		if rec.Status == entities.StatusLoading {
			continue
		}
		if rec.UpdatedAt.Before(cutoff) {
			delete(r.records, id)
		}
	}
}
