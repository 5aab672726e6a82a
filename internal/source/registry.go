// Package source holds the catalog of external feeds and their runtime state.
package source

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"news_aggregator/internal/domain"
)

const MaxRetries = 5

var (
	ErrDuplicateID     = errors.New("duplicate source id")
	ErrUnknownProtocol = errors.New("unknown protocol")
	ErrInvalidSource   = errors.New("invalid source")
)

// Registry holds immutable source descriptors plus the mutable per-source
// scheduling state. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]domain.SourceDescriptor
	states  map[string]*domain.SourceState
	now     func() time.Time
}

// NewRegistry validates descriptors and builds the registry.
func NewRegistry(descs []domain.SourceDescriptor) (*Registry, error) {
	r := &Registry{
		sources: make(map[string]domain.SourceDescriptor, len(descs)),
		states:  make(map[string]*domain.SourceState, len(descs)),
		now:     time.Now,
	}

	for _, d := range descs {
		if err := validate(d); err != nil {
			return nil, err
		}
		if _, ok := r.sources[d.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
		}
		if d.Retries > MaxRetries {
			d.Retries = MaxRetries
		}
		if d.Category == "" {
			d.Category = domain.CategoryGeneral
		}
		r.sources[d.ID] = d
		r.states[d.ID] = &domain.SourceState{SourceID: d.ID}
		r.order = append(r.order, d.ID)
	}

	return r, nil
}

func validate(d domain.SourceDescriptor) error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSource)
	}
	switch d.Protocol {
	case domain.ProtocolRSS, domain.ProtocolHeadlineAPI, domain.ProtocolStructuredAPI:
		if d.URL == "" {
			return fmt.Errorf("%w: %s has no url", ErrInvalidSource, d.ID)
		}
	case domain.ProtocolAggregatorRSS:
	default:
		return fmt.Errorf("%w: %s uses %q", ErrUnknownProtocol, d.ID, d.Protocol)
	}
	return nil
}

// All returns every descriptor in registration order.
func (r *Registry) All() []domain.SourceDescriptor {
	return r.filter(func(domain.SourceDescriptor) bool { return true })
}

// Active returns the descriptors enabled for fetching.
func (r *Registry) Active() []domain.SourceDescriptor {
	return r.filter(func(d domain.SourceDescriptor) bool { return d.Active })
}

// Seeds returns the active curated bootstrap set.
func (r *Registry) Seeds() []domain.SourceDescriptor {
	return r.filter(func(d domain.SourceDescriptor) bool { return d.Active && d.Seed })
}

func (r *Registry) filter(keep func(domain.SourceDescriptor) bool) []domain.SourceDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SourceDescriptor, 0, len(r.order))
	for _, id := range r.order {
		if d := r.sources[id]; keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// RecordSuccess adds fetched articles to the cumulative counter and clears
// the last error.
func (r *Registry) RecordSuccess(sourceID string, fetched int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.states[sourceID]
	if !ok {
		return
	}
	st.ArticlesFetched += int64(fetched)
	st.LastError = ""
}

// RecordFailure appends a reason to the source's bounded error ring.
func (r *Registry) RecordFailure(sourceID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.states[sourceID]
	if !ok {
		return
	}
	st.LastError = reason
	st.Errors = append(st.Errors, domain.SourceError{At: r.now(), Reason: reason})
	if n := len(st.Errors); n > domain.MaxSourceErrors {
		st.Errors = append([]domain.SourceError(nil), st.Errors[n-domain.MaxSourceErrors:]...)
	}
}

// MarkRun stamps LastRun and NextRun on every active source.
func (r *Registry) MarkRun(lastRun, nextRun time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, d := range r.sources {
		if !d.Active {
			continue
		}
		st := r.states[id]
		st.LastRun = lastRun
		st.NextRun = nextRun
	}
}

// SetNextRun updates NextRun on every active source.
func (r *Registry) SetNextRun(nextRun time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, d := range r.sources {
		if d.Active {
			r.states[id].NextRun = nextRun
		}
	}
}

// State returns a copy of one source's state.
func (r *Registry) State(sourceID string) (domain.SourceState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.states[sourceID]
	if !ok {
		return domain.SourceState{}, false
	}
	return copyState(st), true
}

// States returns copies of all states in registration order.
func (r *Registry) States() []domain.SourceState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SourceState, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, copyState(r.states[id]))
	}
	return out
}

// Restore loads previously persisted states for known sources.
func (r *Registry) Restore(states []domain.SourceState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, st := range states {
		if _, ok := r.states[st.SourceID]; !ok {
			continue
		}
		c := copyState(&st)
		r.states[st.SourceID] = &c
	}
}

func copyState(st *domain.SourceState) domain.SourceState {
	c := *st
	c.Errors = append([]domain.SourceError(nil), st.Errors...)
	return c
}

// ByPriority sorts descriptors by priority desc, then id asc.
func ByPriority(descs []domain.SourceDescriptor) {
	sort.SliceStable(descs, func(i, j int) bool {
		if descs[i].Priority != descs[j].Priority {
			return descs[i].Priority > descs[j].Priority
		}
		return descs[i].ID < descs[j].ID
	})
}
