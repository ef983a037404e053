package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moamenhredeen/oasgen/internal/specsource"
)

// scriptedSource serves a fixed sequence of fetch outcomes, repeating the
// last one, and records when each fetch started.
type scriptedSource struct {
	mu         sync.Mutex
	steps      []sourceStep
	index      int
	fetchTimes []time.Time
}

type sourceStep struct {
	bytes []byte
	err   error
}

func (s *scriptedSource) Fetch(ctx context.Context) (*specsource.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetchTimes = append(s.fetchTimes, time.Now())

	step := s.steps[s.index]
	if s.index < len(s.steps)-1 {
		s.index++
	}

	if step.err != nil {
		return nil, step.err
	}
	return &specsource.Result{Bytes: step.bytes, Hash: specsource.HashBytes(step.bytes)}, nil
}

// fakeRegenerator counts runs, optionally delays, and records cancellations.
type fakeRegenerator struct {
	mu      sync.Mutex
	delay   time.Duration
	err     error
	onRun   func()
	runs    int
	starts  []time.Time
	ends    []time.Time
	cancels []bool
}

func (r *fakeRegenerator) Run(ctx context.Context) error {
	r.mu.Lock()
	r.runs++
	r.starts = append(r.starts, time.Now())
	onRun := r.onRun
	delay := r.delay
	r.mu.Unlock()

	if onRun != nil {
		onRun()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}

	r.mu.Lock()
	r.ends = append(r.ends, time.Now())
	err := r.err
	r.mu.Unlock()
	return err
}

func (r *fakeRegenerator) Cancel(graceful bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels = append(r.cancels, graceful)
	return nil
}

func (r *fakeRegenerator) runCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

// runCycles runs the scheduler until n cycles completed, collecting events.
func runCycles(t *testing.T, cfg Config, n int) []Event {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events []Event
	cfg.OnEvent = func(e Event) {
		events = append(events, e)
		if e.Type == EventCycleCompleted && e.Cycle >= n {
			cancel()
		}
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Millisecond
	}

	err := New(cfg).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	return events
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func TestFirstCycleRegeneratesOnceAndPersists(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	source := &scriptedSource{steps: []sourceStep{{bytes: []byte("spec v1")}}}
	regen := &fakeRegenerator{}

	events := runCycles(t, Config{
		Source:      source,
		Regenerator: regen,
		Cache:       NewCacheStore(cachePath),
	}, 1)

	assert.Equal(t, 1, regen.runCount())
	assert.Equal(t,
		[]EventType{EventCycleStarted, EventChanged, EventRegenerated, EventCycleCompleted},
		eventTypes(events))

	record, err := NewCacheStore(cachePath).Load()
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, specsource.HashBytes([]byte("spec v1")), record.Hash)
}

func TestUnchangedContentSkipsRegeneration(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	source := &scriptedSource{steps: []sourceStep{{bytes: []byte("spec v1")}}}
	regen := &fakeRegenerator{}

	events := runCycles(t, Config{
		Source:      source,
		Regenerator: regen,
		Cache:       NewCacheStore(cachePath),
	}, 2)

	// First cycle regenerates (no prior record), second skips (hash match).
	assert.Equal(t, 1, regen.runCount())
	assert.Equal(t,
		[]EventType{
			EventCycleStarted, EventChanged, EventRegenerated, EventCycleCompleted,
			EventCycleStarted, EventUnchanged, EventCycleCompleted,
		},
		eventTypes(events))
}

func TestChangedContentRegenerates(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	cache := NewCacheStore(cachePath)
	// Spec v1 already cached; source serves v2 twice.
	require.NoError(t, cache.Store(specsource.HashBytes([]byte("spec v1"))))

	source := &scriptedSource{steps: []sourceStep{{bytes: []byte("spec v2")}}}
	regen := &fakeRegenerator{}

	runCycles(t, Config{Source: source, Regenerator: regen, Cache: cache}, 2)

	// v2 differs from the cached v1 hash: regenerated once, then skipped.
	assert.Equal(t, 1, regen.runCount())

	record, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, specsource.HashBytes([]byte("spec v2")), record.Hash)
}

func TestCachePersistedBeforeRegeneration(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	cache := NewCacheStore(cachePath)
	source := &scriptedSource{steps: []sourceStep{{bytes: []byte("spec v1")}}}

	regen := &fakeRegenerator{err: errors.New("boom")}
	regen.onRun = func() {
		// The record is bookkeeping for observed content, written before
		// regeneration runs and regardless of its outcome.
		record, err := cache.Load()
		assert.NoError(t, err)
		assert.NotNil(t, record)
	}

	events := runCycles(t, Config{Source: source, Regenerator: regen, Cache: cache}, 1)

	assert.Equal(t,
		[]EventType{EventCycleStarted, EventChanged, EventRegenerationFailed, EventCycleCompleted},
		eventTypes(events))

	// Regeneration failure does not corrupt the record.
	record, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, specsource.HashBytes([]byte("spec v1")), record.Hash)
}

func TestFetchFailureFailsOpen(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	source := &scriptedSource{steps: []sourceStep{{err: errors.New("connection refused")}}}
	regen := &fakeRegenerator{}

	events := runCycles(t, Config{
		Source:      source,
		Regenerator: regen,
		Cache:       NewCacheStore(cachePath),
	}, 1)

	// Regeneration still attempted, against whatever spec already exists.
	assert.Equal(t, 1, regen.runCount())
	assert.Equal(t,
		[]EventType{EventCycleStarted, EventFetchFailed, EventRegenerated, EventCycleCompleted},
		eventTypes(events))

	// No fresh bytes were observed, so no record is persisted.
	record, err := NewCacheStore(cachePath).Load()
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestWritesFetchedSpecBeforeRegeneration(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "spec.json")
	source := &scriptedSource{steps: []sourceStep{{bytes: []byte("spec v1")}}}

	regen := &fakeRegenerator{}
	regen.onRun = func() {
		content, err := os.ReadFile(specPath)
		assert.NoError(t, err)
		assert.Equal(t, "spec v1", string(content))
	}

	runCycles(t, Config{
		Source:      source,
		Regenerator: regen,
		Cache:       NewCacheStore(filepath.Join(dir, "cache.json")),
		SpecPath:    specPath,
	}, 1)

	assert.Equal(t, 1, regen.runCount())
}

func TestNoOverlappingCycles(t *testing.T) {
	dir := t.TempDir()
	// Source changes every fetch, so every cycle regenerates; regeneration
	// takes far longer than the poll interval.
	source := &scriptedSource{steps: []sourceStep{
		{bytes: []byte("spec v1")},
		{bytes: []byte("spec v2")},
		{bytes: []byte("spec v3")},
	}}
	regen := &fakeRegenerator{delay: 60 * time.Millisecond}

	runCycles(t, Config{
		Source:      source,
		Regenerator: regen,
		Cache:       NewCacheStore(filepath.Join(dir, "cache.json")),
		Interval:    time.Millisecond,
	}, 2)

	require.GreaterOrEqual(t, len(source.fetchTimes), 2)
	require.GreaterOrEqual(t, len(regen.ends), 1)

	// The second fetch must not start until the first regeneration fully
	// completed, poll interval notwithstanding.
	assert.False(t, source.fetchTimes[1].Before(regen.ends[0]),
		"second fetch started before the first regeneration completed")
}

func TestShutdownDuringRegeneration(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")
	source := &scriptedSource{steps: []sourceStep{{bytes: []byte("spec v1")}}}

	started := make(chan struct{})
	release := make(chan struct{})
	regen := NewFuncRegenerator(func(ctx context.Context) error {
		close(started)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-release:
			return nil
		}
	})
	defer close(release)

	scheduler := New(Config{
		Source:      source,
		Regenerator: regen,
		Cache:       NewCacheStore(cachePath),
		Interval:    time.Minute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	err := scheduler.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The cache record survives shutdown.
	record, lerr := NewCacheStore(cachePath).Load()
	require.NoError(t, lerr)
	assert.NotNil(t, record)
}

func TestShutdownEscalatesToForcefulCancel(t *testing.T) {
	dir := t.TempDir()
	source := &scriptedSource{steps: []sourceStep{{bytes: []byte("spec v1")}}}

	// Ignores graceful cancellation: only a forceful cancel releases it.
	started := make(chan struct{})
	forced := make(chan struct{})
	regen := &stubbornRegenerator{started: started, forced: forced}

	scheduler := New(Config{
		Source:      source,
		Regenerator: regen,
		Cache:       NewCacheStore(filepath.Join(dir, "cache.json")),
		Interval:    time.Minute,
		GracePeriod: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	err := scheduler.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []bool{true, false}, regen.cancels)
}

type stubbornRegenerator struct {
	mu      sync.Mutex
	started chan struct{}
	forced  chan struct{}
	cancels []bool
}

func (r *stubbornRegenerator) Run(ctx context.Context) error {
	close(r.started)
	<-r.forced
	return errors.New("killed")
}

func (r *stubbornRegenerator) Cancel(graceful bool) error {
	r.mu.Lock()
	r.cancels = append(r.cancels, graceful)
	r.mu.Unlock()

	if !graceful {
		close(r.forced)
	}
	return nil
}
