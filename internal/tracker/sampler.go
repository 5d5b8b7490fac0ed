// Package tracker records activity samples on a fixed interval and fires
// mood reminders on a weekly schedule.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/runnerr0/moodlens/internal/storage"
)

// ActivityAppender is the part of storage.Store the sampler writes to.
type ActivityAppender interface {
	AppendActivity(ctx context.Context, e storage.ActivityEvent) error
}

// Recorder receives sampler and reminder events, typically for metrics.
type Recorder interface {
	Sampled(tag string)
	SampleFailed()
	ReminderFired()
}

type nopRecorder struct{}

func (nopRecorder) Sampled(string) {}
func (nopRecorder) SampleFailed()  {}
func (nopRecorder) ReminderFired() {}

// Stats is a snapshot of a sampler's progress.
type Stats struct {
	Running    bool      `json:"running"`
	StartedAt  time.Time `json:"started_at"`
	Samples    int64     `json:"samples"`
	Errors     int64     `json:"errors"`
	LastTag    string    `json:"last_tag,omitempty"`
	LastSample time.Time `json:"last_sample"`
}

// Sampler probes activity every interval and appends the result.
type Sampler struct {
	store    ActivityAppender
	probe    Probe
	clock    clockwork.Clock
	interval time.Duration
	log      *zap.Logger
	rec      Recorder

	mu    sync.Mutex
	stats Stats
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithClock replaces the real clock.
func WithClock(c clockwork.Clock) SamplerOption {
	return func(s *Sampler) { s.clock = c }
}

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) SamplerOption {
	return func(s *Sampler) { s.rec = r }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) SamplerOption {
	return func(s *Sampler) { s.log = l }
}

// NewSampler creates a Sampler. interval must be positive.
func NewSampler(store ActivityAppender, probe Probe, interval time.Duration, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		store:    store,
		probe:    probe,
		clock:    clockwork.NewRealClock(),
		interval: interval,
		log:      zap.NewNop(),
		rec:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("sampler")
	return s
}

// Run samples immediately and then on every tick until ctx is done. It
// returns nil on cancellation and an error wrapping storage.ErrStorage if a
// sample cannot be written. Probe failures skip the tick.
func (s *Sampler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("sampler interval must be positive, got %v", s.interval)
	}

	s.mu.Lock()
	s.stats.Running = true
	s.stats.StartedAt = s.clock.Now()
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.stats.Running = false
		s.mu.Unlock()
	}()

	s.log.Info("sampler started", zap.Duration("interval", s.interval))

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.tick(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			s.log.Info("sampler stopped")
			return nil
		case <-ticker.Chan():
			if err := s.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *Sampler) tick(ctx context.Context) error {
	tag, err := s.probe.Sample(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		s.log.Warn("activity probe failed, skipping sample", zap.Error(err))
		s.rec.SampleFailed()
		s.mu.Lock()
		s.stats.Errors++
		s.mu.Unlock()
		return nil
	}

	now := s.clock.Now()
	if err := s.store.AppendActivity(ctx, storage.ActivityEvent{Timestamp: now, Info: tag}); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.rec.SampleFailed()
		return fmt.Errorf("record sample: %w", err)
	}

	s.rec.Sampled(tag)
	s.mu.Lock()
	s.stats.Samples++
	s.stats.LastTag = tag
	s.stats.LastSample = now
	s.mu.Unlock()
	s.log.Debug("sampled", zap.String("tag", tag))
	return nil
}

// Stats returns a snapshot of the sampler's counters.
func (s *Sampler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
