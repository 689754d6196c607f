// Package service provides the process-lifetime service object behind the
// HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/freshpoint/internal/domain/text"
	"github.com/okian/freshpoint/internal/domain/types"
	"github.com/okian/freshpoint/pkg/logger"
	"github.com/okian/freshpoint/pkg/metrics"
)

// Sentinel errors returned by Service.
var (
	ErrRecordNotFound = errors.New("freshpoint record not found")
	ErrNegativeIndex  = errors.New("freshpoint index must not be negative")
	ErrNoSource       = errors.New("no record source configured")
)

// RecordSource fetches the upstream collection. *opendata.Client satisfies it.
type RecordSource interface {
	Records(ctx context.Context) ([]types.Record, error)
}

// Service implements the dependencies required by the HTTP API.
type Service struct {
	mu sync.RWMutex

	source      RecordSource
	strictIndex bool

	started   bool
	startedAt time.Time

	upstreamFetches  atomic.Int64
	upstreamFailures atomic.Int64
	notFound         atomic.Int64
	comments         atomic.Int64
	joins            atomic.Int64
	joinFailures     atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRecordSource sets the upstream record source.
func WithRecordSource(src RecordSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithStrictIndex controls out-of-range handling in FreshPoint. When false an
// out-of-range index yields an empty envelope instead of ErrRecordNotFound.
func WithStrictIndex(strict bool) Option {
	return func(s *Service) {
		s.strictIndex = strict
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Call Start before serving traffic.
func New(opts ...Option) *Service {
	s := &Service{
		strictIndex: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start marks the service as running.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.source == nil {
		return ErrNoSource
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "freshpoint service started", logger.Bool("strictIndex", s.strictIndex))
	return nil
}

// Stop marks the service as stopped. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "freshpoint service stopped",
		logger.Duration("uptime", time.Since(s.startedAt)))
}

// FreshPoint fetches the upstream collection and returns the record at
// index wrapped in an envelope. Each call performs a fresh fetch.
func (s *Service) FreshPoint(ctx context.Context, index int) (types.Envelope, error) {
	if index < 0 {
		return types.Envelope{}, fmt.Errorf("%w: %d", ErrNegativeIndex, index)
	}
	if s.source == nil {
		return types.Envelope{}, ErrNoSource
	}

	s.upstreamFetches.Add(1)
	records, err := s.source.Records(ctx)
	if err != nil {
		s.upstreamFailures.Add(1)
		return types.Envelope{}, err
	}

	if index >= len(records) {
		s.notFound.Add(1)
		if s.strictIndex {
			return types.Envelope{}, fmt.Errorf("%w: index %d, %d records available", ErrRecordNotFound, index, len(records))
		}
		return types.Envelope{}, nil
	}
	return types.Envelope{Data: records[index]}, nil
}

// Join validates and joins a and b.
func (s *Service) Join(_ context.Context, a, b any) (string, error) {
	s.joins.Add(1)
	out, err := text.Join(a, b)
	metrics.RecordJoin(err == nil)
	if err != nil {
		s.joinFailures.Add(1)
		return "", err
	}
	return out, nil
}

// Comment returns message unchanged.
func (s *Service) Comment(_ context.Context, message string) string {
	s.comments.Add(1)
	metrics.RecordComment()
	return message
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"strictIndex":      s.strictIndex,
		"upstreamFetches":  s.upstreamFetches.Load(),
		"upstreamFailures": s.upstreamFailures.Load(),
		"notFound":         s.notFound.Load(),
		"comments":         s.comments.Load(),
		"joins":            s.joins.Load(),
		"joinFailures":     s.joinFailures.Load(),
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	return stats
}
