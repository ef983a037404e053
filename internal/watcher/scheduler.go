// Package watcher polls an API description source, detects content changes
// by hash and triggers regeneration of the generated client surface, on a
// strict non-overlapping cadence with durable state across restarts.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/moamenhredeen/oasgen/internal/specsource"
)

// State is the scheduler's current phase.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateComparing
	StateRegenerating
	StateWaiting
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateComparing:
		return "comparing"
	case StateRegenerating:
		return "regenerating"
	case StateWaiting:
		return "waiting"
	case StateShuttingDown:
		return "shutting down"
	}
	return "unknown"
}

// EventType identifies a scheduler event.
type EventType int

const (
	// EventCycleStarted fires when a poll cycle begins fetching.
	EventCycleStarted EventType = iota
	// EventFetchFailed fires when the source could not be fetched; the
	// cycle proceeds fail-open.
	EventFetchFailed
	// EventUnchanged fires when the fetched hash matches the cached one.
	EventUnchanged
	// EventChanged fires when a new hash was observed and persisted.
	EventChanged
	// EventRegenerated fires when a regeneration run completed.
	EventRegenerated
	// EventRegenerationFailed fires when a regeneration run failed; the
	// loop continues to the next cycle.
	EventRegenerationFailed
	// EventCycleCompleted fires when a cycle finishes, before waiting.
	EventCycleCompleted
)

// Event reports scheduler progress to an observer.
type Event struct {
	Type  EventType
	Cycle int
	Hash  string
	Err   error
	Time  time.Time
}

// OnEvent is a callback for scheduler events. It is invoked from the
// scheduler's own goroutine.
type OnEvent func(Event)

// Config assembles a scheduler from its collaborators.
type Config struct {
	// Source retrieves the spec bytes and their digest.
	Source specsource.Source

	// Regenerator runs the extraction and generation pipeline.
	Regenerator Regenerator

	// Cache persists the change-detection record.
	Cache *CacheStore

	// Interval is the delay between cycles. Defaults to 30s.
	Interval time.Duration

	// SpecPath, when set, is where freshly fetched bytes are written before
	// regeneration runs, so an external regenerator reads current content.
	SpecPath string

	// GracePeriod bounds how long shutdown waits after a graceful cancel
	// before cancelling forcefully. Defaults to 5s.
	GracePeriod time.Duration

	// Logger receives cycle diagnostics. Defaults to slog.Default.
	Logger *slog.Logger

	// OnEvent, when set, observes cycle progress.
	OnEvent OnEvent
}

// Scheduler drives the fetch, compare, regenerate, wait loop. One goroutine
// owns all of its state; phases never run concurrently with each other, so
// the next fetch only starts after the previous cycle fully completed.
type Scheduler struct {
	source   specsource.Source
	regen    Regenerator
	cache    *CacheStore
	interval time.Duration
	specPath string
	grace    time.Duration
	logger   *slog.Logger
	onEvent  OnEvent

	state State
	cycle int
}

// New creates a scheduler from cfg, applying defaults for interval, grace
// period and logger.
func New(cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Scheduler{
		source:   cfg.Source,
		regen:    cfg.Regenerator,
		cache:    cfg.Cache,
		interval: cfg.Interval,
		specPath: cfg.SpecPath,
		grace:    cfg.GracePeriod,
		logger:   cfg.Logger,
		onEvent:  cfg.OnEvent,
	}
}

func (s *Scheduler) emit(t EventType, hash string, err error) {
	if s.onEvent != nil {
		s.onEvent(Event{Type: t, Cycle: s.cycle, Hash: hash, Err: err, Time: time.Now()})
	}
}

// Run executes the polling loop until ctx is cancelled. Cancellation is
// checked at every phase boundary; the cache record is never deleted on the
// way out. The returned error is always the context's.
func (s *Scheduler) Run(ctx context.Context) error {
	defer func() { s.state = StateShuttingDown }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.cycle++
		s.emit(EventCycleStarted, "", nil)

		s.state = StateFetching
		result, err := s.source.Fetch(ctx)

		changed := false
		hash := ""
		if err != nil {
			// Fail-open: a redundant regeneration beats serving stale
			// bindings indefinitely. Regeneration then runs against
			// whatever spec already exists at the output path.
			s.logger.Error("spec fetch failed, regenerating fail-open", "error", err)
			s.emit(EventFetchFailed, "", err)
			changed = true
		} else {
			if err := ctx.Err(); err != nil {
				return err
			}

			s.state = StateComparing
			hash = result.Hash

			record, err := s.cache.Load()
			if err != nil {
				s.logger.Warn("failed to load cache record, treating as absent", "error", err)
			}

			if record == nil || record.Hash != hash {
				changed = true
				// Bookkeeping happens before regeneration: the record
				// tracks observed content, not regeneration success.
				if err := s.cache.Store(hash); err != nil {
					s.logger.Error("failed to persist cache record", "error", err)
				}
				s.emit(EventChanged, hash, nil)
			} else {
				s.emit(EventUnchanged, hash, nil)
			}
		}

		if changed {
			if err := ctx.Err(); err != nil {
				return err
			}

			s.state = StateRegenerating
			if result != nil && s.specPath != "" {
				if err := os.WriteFile(s.specPath, result.Bytes, 0o644); err != nil {
					s.logger.Error("failed to write fetched spec", "path", s.specPath, "error", err)
				}
			}

			if err := s.regenerate(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Error("regeneration failed, continuing to next cycle", "error", err)
				s.emit(EventRegenerationFailed, hash, err)
			} else {
				s.emit(EventRegenerated, hash, nil)
			}
		}

		s.emit(EventCycleCompleted, hash, nil)

		if err := ctx.Err(); err != nil {
			return err
		}

		s.state = StateWaiting
		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// regenerate runs the regenerator, tracking the active run so a shutdown
// request can terminate it: graceful first, forceful after the grace period.
func (s *Scheduler) regenerate(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- s.regen.Run(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.state = StateShuttingDown
		if err := s.regen.Cancel(true); err != nil {
			s.logger.Warn("graceful cancel failed", "error", err)
		}

		timer := time.NewTimer(s.grace)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			if err := s.regen.Cancel(false); err != nil {
				s.logger.Warn("forceful cancel failed", "error", err)
			}
			<-done
		}
		return ctx.Err()
	}
}
