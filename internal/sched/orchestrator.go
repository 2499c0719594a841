// Package sched drives the pipeline on cron cadences and tracks per-job
// state. Jobs never crash the process; failures land in the state table and
// the log.
package sched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Canonical job names, in pipeline order.
const (
	JobCollectFeeds    = "collect-feeds"
	JobCollectChannels = "collect-channels"
	JobEnrich          = "enrich"
	JobAssemble        = "assemble"
	JobDeliver         = "deliver"
)

// ErrUnknownJob is returned when a job name was never registered.
var ErrUnknownJob = errors.New("sched: unknown job")

// JobFunc is one schedulable unit of work.
type JobFunc func(ctx context.Context) error

type jobState struct {
	run     JobFunc
	running bool
	lastRun time.Time
	lastErr error
}

// Status is a read-only snapshot of one job's state.
type Status struct {
	Name    string
	Running bool
	LastRun time.Time
	LastErr error
}

// Orchestrator registers jobs with a cron runner and serializes each job
// against itself: a tick that fires while the previous run is still going
// is skipped, not queued.
type Orchestrator struct {
	cron    *cron.Cron
	baseCtx context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	jobs    map[string]*jobState
	order   []string
}

func New() *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cron:    cron.New(),
		baseCtx: ctx,
		cancel:  cancel,
		jobs:    map[string]*jobState{},
	}
}

// Register adds a job under name with a cron expression. An empty spec
// registers the job for manual runs only.
func (o *Orchestrator) Register(name, spec string, fn JobFunc) error {
	o.mu.Lock()
	if _, dup := o.jobs[name]; dup {
		o.mu.Unlock()
		return fmt.Errorf("sched: job %q already registered", name)
	}
	o.jobs[name] = &jobState{run: fn}
	o.order = append(o.order, name)
	o.mu.Unlock()

	if spec == "" {
		return nil
	}
	_, err := o.cron.AddFunc(spec, func() { o.runScheduled(name) })
	if err != nil {
		return fmt.Errorf("sched: register %q: %w", name, err)
	}
	return nil
}

// errSkipped marks an invocation dropped by overlap prevention.
var errSkipped = errors.New("sched: previous run still in flight")

// runScheduled is the cron entry point. Scheduled runs share a context that
// Stop cancels, so a long job can wind down between work units.
func (o *Orchestrator) runScheduled(name string) {
	if err := o.invoke(o.baseCtx, name); err != nil && !errors.Is(err, errSkipped) {
		slog.Error("sched: job failed", "job", name, "error", err)
	}
}

// invoke runs one job, guarding against overlap and panics, and records the
// outcome.
func (o *Orchestrator) invoke(ctx context.Context, name string) error {
	o.mu.Lock()
	st, ok := o.jobs[name]
	if !ok {
		o.mu.Unlock()
		return ErrUnknownJob
	}
	if st.running {
		o.mu.Unlock()
		slog.Warn("sched: skipping overlapping run", "job", name)
		return errSkipped
	}
	st.running = true
	o.mu.Unlock()

	start := time.Now().UTC()
	slog.Info("sched: job starting", "job", name)

	err := runSafely(ctx, st.run)

	o.mu.Lock()
	st.running = false
	st.lastRun = start
	st.lastErr = err
	o.mu.Unlock()

	if err != nil {
		return err
	}
	slog.Info("sched: job finished", "job", name, "took", time.Since(start))
	return nil
}

// runSafely converts a panic inside a job into an error.
func runSafely(ctx context.Context, fn JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sched: job panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// RunNow triggers one job by name and waits for it.
func (o *Orchestrator) RunNow(ctx context.Context, name string) error {
	o.mu.Lock()
	_, ok := o.jobs[name]
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return o.invoke(ctx, name)
}

// RunAll runs every registered job once in registration order. A failing
// stage logs and does not stop later stages; the joined errors come back to
// the caller.
func (o *Orchestrator) RunAll(ctx context.Context) error {
	o.mu.Lock()
	names := append([]string(nil), o.order...)
	o.mu.Unlock()

	var errs []error
	for _, name := range names {
		select {
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			return errors.Join(errs...)
		default:
		}
		if err := o.invoke(ctx, name); err != nil && !errors.Is(err, errSkipped) {
			slog.Error("sched: pipeline stage failed", "job", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Statuses snapshots every job's state in registration order.
func (o *Orchestrator) Statuses() []Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Status, 0, len(o.order))
	for _, name := range o.order {
		st := o.jobs[name]
		out = append(out, Status{Name: name, Running: st.running, LastRun: st.lastRun, LastErr: st.lastErr})
	}
	return out
}

// Start begins cron scheduling.
func (o *Orchestrator) Start() {
	o.cron.Start()
	slog.Info("sched: started", "jobs", len(o.jobs))
}

// Stop halts scheduling, cancels the context scheduled runs see, and waits
// for in-flight jobs started by cron.
func (o *Orchestrator) Stop() {
	o.cancel()
	ctx := o.cron.Stop()
	<-ctx.Done()
	slog.Info("sched: stopped")
}
