package domain

import "time"

type Protocol string

const (
	ProtocolRSS           Protocol = "rss"
	ProtocolHeadlineAPI   Protocol = "headline_api"
	ProtocolStructuredAPI Protocol = "structured_api"
	ProtocolAggregatorRSS Protocol = "aggregator_rss"
)

// SourceDescriptor configures one external feed. It is immutable at
// runtime; mutable scheduling data lives in SourceState.
type SourceDescriptor struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Protocol      Protocol          `json:"protocol"`
	URL           string            `json:"url"`
	Params        map[string]string `json:"params,omitempty"`
	APIKey        string            `json:"-"`
	Category      Category          `json:"category"`
	Active        bool              `json:"active"`
	Priority      int               `json:"priority"`
	Retries       int               `json:"retries"`
	Timeout       time.Duration     `json:"timeout"`
	Seed          bool              `json:"seed"`
	ProxyFallback bool              `json:"proxyFallback"`
}

// Param returns a descriptor parameter or def when unset.
func (d SourceDescriptor) Param(key, def string) string {
	if v, ok := d.Params[key]; ok && v != "" {
		return v
	}
	return def
}

// SourceError is one recorded fetch failure.
type SourceError struct {
	At     time.Time `json:"at" db:"at"`
	Reason string    `json:"reason" db:"reason"`
}

// SourceState is the scheduling metadata owned by the registry.
type SourceState struct {
	SourceID        string        `json:"sourceId" db:"source_id"`
	LastRun         time.Time     `json:"lastRun" db:"last_run"`
	NextRun         time.Time     `json:"nextRun" db:"next_run"`
	ArticlesFetched int64         `json:"articlesFetched" db:"articles_fetched"`
	LastError       string        `json:"lastError,omitempty" db:"last_error"`
	Errors          []SourceError `json:"errors" db:"-"`
}

// MaxSourceErrors bounds the per-source error ring.
const MaxSourceErrors = 10
