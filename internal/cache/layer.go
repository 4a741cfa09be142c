// Package cache provides the fingerprint-keyed result cache layered
// over a TTL key-value store.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jarvish/compliance-engine/internal/domain"
	"go.uber.org/zap"
)

// ComputeFunc produces a fresh ComplianceResult for a fingerprint.
type ComputeFunc func(ctx context.Context, fingerprint string) (*domain.ComplianceResult, error)

// Options controls one GetOrCompute call.
type Options struct {
	// SkipCache bypasses the lookup but still writes the fresh result,
	// supporting "force recheck" while keeping the cache warm.
	SkipCache bool

	// TTL overrides the layer's default cache lifetime when positive.
	TTL time.Duration
}

// Layer is the get-or-compute front of the pipeline. Results are
// keyed by fingerprint, so contention partitions naturally: callers
// on different fingerprints never block each other, and concurrent
// callers on the same fingerprint collapse into a single computation.
//
// A store outage degrades to direct computation; it never blocks an
// evaluation.
type Layer struct {
	store      Store
	defaultTTL time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done   chan struct{}
	result *domain.ComplianceResult
	err    error
}

// NewLayer creates a cache layer over the given store.
func NewLayer(store Store, defaultTTL time.Duration, logger *zap.Logger) *Layer {
	return &Layer{
		store:      store,
		defaultTTL: defaultTTL,
		logger:     logger.Named("cache"),
		inflight:   make(map[string]*inflightCall),
	}
}

// GetOrCompute returns the cached result for fingerprint or invokes
// compute, stores its result, and returns it. The returned value is
// always a copy the caller owns; cached entries are never handed out
// by reference.
func (l *Layer) GetOrCompute(ctx context.Context, fingerprint string, opts Options, compute ComputeFunc) (*domain.ComplianceResult, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = l.defaultTTL
	}

	if !opts.SkipCache {
		if result, ok := l.lookup(ctx, fingerprint); ok {
			return result, nil
		}
	}

	// Collapse concurrent callers on the same fingerprint into one
	// computation. The first caller computes; the rest wait on it.
	l.mu.Lock()
	if call, ok := l.inflight[fingerprint]; ok {
		l.mu.Unlock()
		select {
		case <-call.done:
			if call.err != nil {
				return nil, call.err
			}
			return call.result.Clone(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &inflightCall{done: make(chan struct{})}
	l.inflight[fingerprint] = call
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.inflight, fingerprint)
		l.mu.Unlock()
		close(call.done)
	}()

	result, err := compute(ctx, fingerprint)
	if err != nil {
		call.err = err
		return nil, err
	}

	result.TTLSeconds = int(ttl.Seconds())
	l.write(ctx, fingerprint, result, ttl)
	call.result = result

	return result.Clone(), nil
}

// lookup reads the store. Store failures are logged and treated as
// misses so a cache outage only makes evaluation slower, never
// impossible.
func (l *Layer) lookup(ctx context.Context, fingerprint string) (*domain.ComplianceResult, bool) {
	data, err := l.store.Get(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			l.logger.Warn("cache store read failed, computing directly",
				zap.Error(err),
				zap.String("fingerprint", shortKey(fingerprint)),
			)
		}
		return nil, false
	}

	result, err := decodeResult(data)
	if err != nil {
		l.logger.Warn("corrupt cache entry, recomputing",
			zap.Error(err),
			zap.String("fingerprint", shortKey(fingerprint)),
		)
		return nil, false
	}

	result.Cached = true
	result.ElapsedMs = 0
	return result, true
}

// write stores a fresh result. The write uses a context detached from
// the caller's cancellation: a vanished caller should not prevent the
// next identical request from hitting the cache.
func (l *Layer) write(ctx context.Context, fingerprint string, result *domain.ComplianceResult, ttl time.Duration) {
	data, err := encodeResult(result)
	if err != nil {
		l.logger.Error("failed to encode result for cache", zap.Error(err))
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := l.store.Set(writeCtx, fingerprint, data, ttl); err != nil {
		l.logger.Warn("cache store write failed",
			zap.Error(err),
			zap.String("fingerprint", shortKey(fingerprint)),
		)
	}
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
