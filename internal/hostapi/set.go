package hostapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Set holds the API instances and live iterators of one guest
type Set interface {
	Get(name string) (API, bool)

	// Execute routes a request to the named API
	Execute(ctx context.Context, apiName, method string, parameters json.RawMessage) (json.RawMessage, error)

	// NextIterator advances an iterator. Exhausted iterators are closed and forgotten.
	NextIterator(ctx context.Context, iteratorID string) (json.RawMessage, bool, error)

	// CloseIterator releases an iterator; unknown IDs are ignored
	CloseIterator(ctx context.Context, iteratorID string) error

	// CleanupStaleIterators closes iterators idle for longer than the timeout
	CleanupStaleIterators() int

	Config() Config

	// Close releases every iterator and API. Safe to call more than once.
	Close() error
}

// defaultSet guards its iterator table because host-side Go code may touch
// it concurrently even though a guest is single threaded
type defaultSet struct {
	apis      map[string]API
	iterators map[string]*iteratorInfo
	config    Config
	closed    bool
	mu        sync.RWMutex
}

var (
	_ Set      = (*defaultSet)(nil)
	_ Registry = (*defaultRegistry)(nil)
)

func newSet(apis map[string]API, config Config) *defaultSet {
	return &defaultSet{
		apis:      apis,
		iterators: make(map[string]*iteratorInfo),
		config:    config.withDefaults(),
	}
}

func (s *defaultSet) Get(name string) (API, bool) {
	api, ok := s.apis[name]
	return api, ok
}

func (s *defaultSet) Execute(ctx context.Context, apiName, method string, parameters json.RawMessage) (json.RawMessage, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, &Error{
			Code:    ErrorCodeSetClosed,
			Message: "host API set has been closed",
			Details: "Execute called after Close()",
		}
	}

	api, ok := s.apis[apiName]
	if !ok {
		return nil, &Error{
			Code:    ErrorCodeAPINotFound,
			Message: fmt.Sprintf("host API %s not found", apiName),
		}
	}

	ctx, span := s.config.Tracer.Start(ctx, fmt.Sprintf("host.%s.%s", apiName, method))
	defer span.End()

	start := time.Now()
	var result json.RawMessage
	var err error

	if streaming, ok := api.(StreamingAPI); ok {
		var iter Iterator
		result, iter, err = streaming.ExecuteStreaming(ctx, method, parameters)
		if err == nil && iter != nil {
			err = s.track(ctx, apiName, method, result, iter)
			if err != nil {
				result = nil
			}
		}
	} else {
		result, err = api.Execute(ctx, method, parameters)
	}
	duration := time.Since(start)

	attrs := []attribute.KeyValue{
		attribute.String("api", apiName),
		attribute.String("method", method),
		attribute.Bool("success", err == nil),
	}

	callCounter, _ := s.config.Meter.Int64Counter("host_api_calls")
	callCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	durationHistogram, _ := s.config.Meter.Float64Histogram("host_api_duration_ms")
	durationHistogram.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs[:2]...))

	if err != nil {
		span.RecordError(err)
		s.config.Logger.Error().
			Err(err).
			Str("api", apiName).
			Str("method", method).
			Dur("duration", duration).
			Msg("host API call failed")
		return nil, err
	}

	return result, nil
}

// track registers a freshly created iterator under the ID in the response
func (s *defaultSet) track(ctx context.Context, apiName, method string, result json.RawMessage, iter Iterator) error {
	var resp StreamingResponse
	if err := json.Unmarshal(result, &resp); err != nil || resp.IteratorID == "" {
		_ = iter.Close()
		return &Error{
			Code:    ErrorCodeInternalError,
			Message: fmt.Sprintf("streaming method %s.%s returned no iterator ID", apiName, method),
		}
	}

	// An empty stream is never advanced, so it is not worth a slot
	if !resp.HasData {
		return iter.Close()
	}

	owner, _ := serviceInfoFrom(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.iterators) >= s.config.MaxIterators {
		_ = iter.Close()
		return &Error{
			Code:    ErrorCodeIteratorLimitExceeded,
			Message: fmt.Sprintf("maximum concurrent iterators (%d) exceeded", s.config.MaxIterators),
		}
	}

	now := time.Now()
	s.iterators[resp.IteratorID] = &iteratorInfo{
		iterator:  iter,
		apiName:   apiName,
		method:    method,
		owner:     owner.Name,
		createdAt: now,
		lastUsed:  now,
	}
	return nil
}

func (s *defaultSet) NextIterator(ctx context.Context, iteratorID string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false, &Error{
			Code:    ErrorCodeSetClosed,
			Message: "host API set has been closed",
		}
	}
	info, ok := s.iterators[iteratorID]

	// Iterators of another service are reported as missing
	if ok {
		if caller, hasCaller := serviceInfoFrom(ctx); hasCaller && info.owner != "" && caller.Name != info.owner {
			ok = false
		}
	}
	if !ok {
		s.mu.Unlock()
		return nil, false, &Error{
			Code:    ErrorCodeIteratorNotFound,
			Message: fmt.Sprintf("iterator %s not found", iteratorID),
		}
	}

	// The sweep skips busy iterators, so Next never races with Close
	info.busy = true
	info.lastUsed = time.Now()
	s.mu.Unlock()

	ctx, span := s.config.Tracer.Start(ctx, fmt.Sprintf("host.%s.%s.next", info.apiName, info.method))
	defer span.End()

	start := time.Now()
	data, hasMore, err := info.iterator.Next(ctx)
	duration := time.Since(start)

	attrs := []attribute.KeyValue{
		attribute.String("api", info.apiName),
		attribute.String("method", info.method),
		attribute.Bool("success", err == nil),
		attribute.Bool("has_more", hasMore),
	}

	iteratorCounter, _ := s.config.Meter.Int64Counter("host_api_iterator_calls")
	iteratorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	iteratorDuration, _ := s.config.Meter.Float64Histogram("host_api_iterator_duration_ms")
	iteratorDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs[:2]...))

	s.mu.Lock()
	info.busy = false
	info.lastUsed = time.Now()
	if err == nil && !hasMore && s.iterators[iteratorID] == info {
		delete(s.iterators, iteratorID)
	}
	s.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}

	if !hasMore {
		_ = info.iterator.Close()
	}

	return data, hasMore, nil
}

func (s *defaultSet) CloseIterator(ctx context.Context, iteratorID string) error {
	s.mu.Lock()
	info, ok := s.iterators[iteratorID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.iterators, iteratorID)
	s.mu.Unlock()

	// Close outside the lock; Close may call back into the set
	err := info.iterator.Close()

	s.config.Logger.Debug().
		Str("iterator_id", iteratorID).
		Str("api", info.apiName).
		Str("method", info.method).
		Dur("age", time.Since(info.createdAt)).
		Msg("iterator closed")

	return err
}

func (s *defaultSet) CleanupStaleIterators() int {
	now := time.Now()

	s.mu.Lock()
	stale := make(map[string]*iteratorInfo)
	for id, info := range s.iterators {
		if !info.busy && now.Sub(info.lastUsed) > s.config.IteratorTimeout {
			stale[id] = info
			delete(s.iterators, id)
		}
	}
	s.mu.Unlock()

	for id, info := range stale {
		if err := info.iterator.Close(); err != nil {
			s.config.Logger.Error().
				Err(err).
				Str("iterator_id", id).
				Str("api", info.apiName).
				Dur("idle", now.Sub(info.lastUsed)).
				Msg("failed to close stale iterator")
		}
	}

	return len(stale)
}

func (s *defaultSet) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	iterators := s.iterators
	s.iterators = nil
	s.mu.Unlock()

	var errs []error
	for id, info := range iterators {
		if err := info.iterator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close iterator %s: %w", id, err))
		}
	}

	for name, api := range s.apis {
		if closer, ok := api.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %s: %w", name, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing host APIs: %w", errors.Join(errs...))
	}
	return nil
}

func (s *defaultSet) Config() Config {
	return s.config
}

// Context keys
type (
	setKey         struct{}
	serviceInfoKey struct{}
)

func generateIteratorID() string {
	return uuid.New().String()
}
