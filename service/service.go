// Package service runs editor operations against a chatflow.Store. Each
// mutation loads the stored flow, applies one Editor operation and saves
// the result, holding a per-flow lock for the whole round trip.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/meikuraledutech/chatflow"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrFlowExists      = errors.New("chatflow: flow already exists")
	ErrExampleNotFound = errors.New("chatflow: example not found")
	ErrNodeNotFound    = errors.New("chatflow: node not found")
)

// DefaultLockTTL bounds how long a distributed flow lock outlives a
// crashed holder.
const DefaultLockTTL = 10 * time.Second

var tracer = otel.Tracer("chatflow")

// Recorder receives operation metrics. internal/metrics.Recorder
// implements it.
type Recorder interface {
	Operation(name string, took time.Duration, err error)
	Validation(valid bool, issues int)
	Export(ok bool)
}

type nopRecorder struct{}

func (nopRecorder) Operation(string, time.Duration, error) {}
func (nopRecorder) Validation(bool, int)                   {}
func (nopRecorder) Export(bool)                            {}

// lockEntry is a reference-counted per-flow mutex.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Service serializes edits per flow id.
type Service struct {
	store chatflow.Store

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  chatflow.Locker
	lockTTL time.Duration
	logger  *zap.Logger
	metrics Recorder
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLocker adds a distributed lock taken after the in-process one, for
// deployments where several servers share a store.
func WithLocker(locker chatflow.Locker, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = locker
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics configures a metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// WithClock replaces time.Now, used to stamp exports.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service over store.
func New(store chatflow.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  zap.NewNop(),
		metrics: nopRecorder{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() chatflow.Store {
	return s.store
}

func (s *Service) acquire(id string) *lockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.locks[id]
	if !ok {
		entry = &lockEntry{}
		s.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(s.locks, id)
	}
}

// WithLock runs fn while holding the lock for flow id.
func (s *Service) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := s.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		s.release(id)
	}()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, id, s.lockTTL)
		if err != nil {
			return fmt.Errorf("chatflow: acquire flow lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				s.logger.Warn("failed to release flow lock, it will expire",
					zap.String("flow_id", id),
					zap.Error(err),
				)
			}
		}()
	}

	return fn(ctx)
}

// observe starts a span for op and returns the function that ends it,
// recording metrics and logging failures.
func (s *Service) observe(ctx context.Context, op, flowID string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "chatflow."+op,
		trace.WithAttributes(attribute.String("flow.id", flowID)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return ctx, func(err error) {
		took := time.Since(start)
		s.metrics.Operation(op, took, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Debug("flow operation failed",
				zap.String("op", op),
				zap.String("flow_id", flowID),
				zap.Error(err),
			)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// mutate loads flow id, applies fn to an editor over it and saves the
// result. When fn fails nothing is saved.
func (s *Service) mutate(ctx context.Context, op, id string, fn func(*chatflow.Editor) error) (*chatflow.Flow, error) {
	ctx, done := s.observe(ctx, op, id)

	var out *chatflow.Flow
	err := s.WithLock(ctx, id, func(ctx context.Context) error {
		f, err := s.store.GetFlow(ctx, id)
		if err != nil {
			return err
		}
		ed := chatflow.NewEditorFrom(*f)
		if err := fn(ed); err != nil {
			return err
		}
		snap := ed.Snapshot()
		if err := s.store.SaveFlow(ctx, &snap); err != nil {
			return err
		}
		out = &snap
		return nil
	})
	done(err)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("flow updated", zap.String("op", op), zap.String("flow_id", id))
	return out, nil
}
