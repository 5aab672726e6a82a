package fetch

//go:generate mockgen -source=resilient.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/metrics"
)

const (
	DefaultTimeout   = 12 * time.Second
	DefaultRetries   = 2
	DefaultBaseDelay = time.Second
	DefaultMaxDelay  = 30 * time.Second
	MaxRetries       = 5
)

// Adapter turns one source descriptor into canonical articles over a transport.
type Adapter interface {
	Fetch(ctx context.Context, src domain.SourceDescriptor, t Transport) ([]domain.Article, error)
}

// Recorder receives per-source outcomes.
type Recorder interface {
	RecordSuccess(sourceID string, fetched int)
	RecordFailure(sourceID string, reason string)
}

// Result is the outcome of one wrapped fetch. Failed results carry no
// articles and the reason that was recorded for the source.
type Result struct {
	Articles []domain.Article
	Failed   bool
	Reason   string
}

type Options struct {
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	DefaultTimeout time.Duration
	DefaultRetries int
}

func (o *Options) setDefaults() {
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = DefaultTimeout
	}
	if o.DefaultRetries < 0 {
		o.DefaultRetries = 0
	}
	if o.DefaultRetries > MaxRetries {
		o.DefaultRetries = MaxRetries
	}
}

// Resilient wraps every adapter call with timeouts, retries and the proxy
// fallback. Fetch never returns an error: failures become an empty result
// with the reason recorded on the source.
type Resilient struct {
	adapters map[domain.Protocol]Adapter
	direct   Transport
	proxy    Transport
	recorder Recorder
	opts     Options
	logger   *slog.Logger
}

// NewResilient builds the wrapper. proxy and recorder may be nil.
func NewResilient(
	adapters map[domain.Protocol]Adapter,
	direct Transport,
	proxy Transport,
	recorder Recorder,
	opts Options,
	logger *slog.Logger,
) *Resilient {
	opts.setDefaults()
	return &Resilient{
		adapters: adapters,
		direct:   direct,
		proxy:    proxy,
		recorder: recorder,
		opts:     opts,
		logger:   logger.With("component", "fetch"),
	}
}

// Fetch runs the wrapped fetch for one source.
func (r *Resilient) Fetch(ctx context.Context, src domain.SourceDescriptor) Result {
	start := time.Now()
	log := r.logger.With("source", src.ID, "protocol", src.Protocol)

	adapter, ok := r.adapters[src.Protocol]
	if !ok {
		return r.fail(src.ID, fmt.Errorf("%w: %s", ErrNoAdapter, src.Protocol), metrics.ResultFailed, start, log)
	}

	retries := r.retries(src)
	proxyTried := false
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := r.backoff(attempt - 1)
			log.Debug("retrying source", "attempt", attempt, "delay", delay, "error", lastErr)
			if err := sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}

		articles, err := r.attempt(ctx, adapter, src, r.direct)
		if err == nil {
			return r.succeed(src.ID, articles, metrics.ResultSuccess, start)
		}
		lastErr = err

		if IsRateLimited(err) {
			log.Warn("source rate limited, not retrying", "error", err)
			return r.fail(src.ID, err, metrics.ResultRateLimited, start, nil)
		}
		if ctx.Err() != nil {
			break
		}

		if !proxyTried && r.proxy != nil && src.ProxyFallback && IsNetworkFailure(err) {
			proxyTried = true
			log.Info("direct fetch failed, trying proxy", "error", err)
			articles, perr := r.attempt(ctx, adapter, src, r.proxy)
			if perr == nil {
				return r.succeed(src.ID, articles, metrics.ResultProxy, start)
			}
			log.Warn("proxy fetch failed", "error", perr)
			if IsRateLimited(perr) {
				return r.fail(src.ID, perr, metrics.ResultRateLimited, start, nil)
			}
		}

		if !IsTransient(err) {
			break
		}
	}

	return r.fail(src.ID, lastErr, metrics.ResultFailed, start, log)
}

func (r *Resilient) attempt(
	ctx context.Context,
	adapter Adapter,
	src domain.SourceDescriptor,
	t Transport,
) (articles []domain.Article, err error) {
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = r.opts.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("adapter panic: %v", rec)
		}
	}()

	metrics.RecordAttempt(src.ID, t.Name())
	return adapter.Fetch(ctx, src, t)
}

func (r *Resilient) retries(src domain.SourceDescriptor) int {
	n := src.Retries
	if n < 0 {
		n = r.opts.DefaultRetries
	}
	if n > MaxRetries {
		n = MaxRetries
	}
	return n
}

// backoff returns 2^n × BaseDelay capped at MaxDelay.
func (r *Resilient) backoff(n int) time.Duration {
	delay := r.opts.BaseDelay
	for i := 0; i < n; i++ {
		delay *= 2
		if delay >= r.opts.MaxDelay {
			return r.opts.MaxDelay
		}
	}
	if delay > r.opts.MaxDelay {
		return r.opts.MaxDelay
	}
	return delay
}

func (r *Resilient) succeed(sourceID string, articles []domain.Article, result string, start time.Time) Result {
	if len(articles) == 0 {
		result = metrics.ResultEmpty
	}
	metrics.RecordFetch(sourceID, result, time.Since(start).Seconds())
	if r.recorder != nil {
		r.recorder.RecordSuccess(sourceID, len(articles))
	}
	return Result{Articles: articles}
}

func (r *Resilient) fail(sourceID string, err error, result string, start time.Time, log *slog.Logger) Result {
	if err == nil {
		err = context.Canceled
	}
	if log != nil {
		log.Warn("source fetch exhausted", "error", err, "duration", time.Since(start))
	}
	metrics.RecordFetch(sourceID, result, time.Since(start).Seconds())
	if r.recorder != nil {
		r.recorder.RecordFailure(sourceID, err.Error())
	}
	return Result{Failed: true, Reason: err.Error()}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
