package sched

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRunNowUnknownJob(t *testing.T) {
	o := New()
	if err := o.RunNow(context.Background(), "nope"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("expected ErrUnknownJob, got %v", err)
	}
}

func TestOverlappingRunSkipped(t *testing.T) {
	o := New()
	release := make(chan struct{})
	started := make(chan struct{})
	var runs int
	var mu sync.Mutex

	err := o.Register("slow", "", func(ctx context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		close(started)
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- o.invoke(context.Background(), "slow") }()
	<-started

	// A second invocation while the first is in flight is dropped.
	if err := o.invoke(context.Background(), "slow"); !errors.Is(err, errSkipped) {
		t.Fatalf("expected skip, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Fatalf("expected 1 run, got %d", runs)
	}
}

func TestRunAllContinuesPastFailure(t *testing.T) {
	o := New()
	var order []string
	record := func(name string, err error) JobFunc {
		return func(ctx context.Context) error {
			order = append(order, name)
			return err
		}
	}

	boom := errors.New("boom")
	if err := o.Register("a", "", record("a", nil)); err != nil {
		t.Fatal(err)
	}
	if err := o.Register("b", "", record("b", boom)); err != nil {
		t.Fatal(err)
	}
	if err := o.Register("c", "", record("c", nil)); err != nil {
		t.Fatal(err)
	}

	err := o.RunAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined failure, got %v", err)
	}
	if len(order) != 3 || order[2] != "c" {
		t.Fatalf("later stages must still run, got %v", order)
	}

	statuses := o.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[1].LastErr == nil {
		t.Fatal("failing job's error not recorded")
	}
	if statuses[0].LastErr != nil {
		t.Fatalf("healthy job has error: %v", statuses[0].LastErr)
	}
}

func TestJobPanicRecovered(t *testing.T) {
	o := New()
	if err := o.Register("panicky", "", func(ctx context.Context) error {
		panic("oh no")
	}); err != nil {
		t.Fatal(err)
	}

	err := o.RunNow(context.Background(), "panicky")
	if err == nil {
		t.Fatal("expected error from panicking job")
	}

	st := o.Statuses()[0]
	if st.Running {
		t.Fatal("job left marked running after panic")
	}
	if st.LastErr == nil {
		t.Fatal("panic not recorded as error")
	}
}

func TestDuplicateRegistration(t *testing.T) {
	o := New()
	noop := func(ctx context.Context) error { return nil }
	if err := o.Register("j", "", noop); err != nil {
		t.Fatal(err)
	}
	if err := o.Register("j", "", noop); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestRegisterBadCronSpec(t *testing.T) {
	o := New()
	err := o.Register("bad", "not a cron spec", func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestStopCancelsScheduledRuns(t *testing.T) {
	o := New()
	started := make(chan struct{})
	err := o.Register("blocker", "", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	done := make(chan struct{})
	go func() {
		o.runScheduled("blocker")
		close(done)
	}()
	<-started

	o.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled run kept going after Stop")
	}

	st := o.Statuses()[0]
	if !errors.Is(st.LastErr, context.Canceled) {
		t.Fatalf("expected cancellation to reach the job, got %v", st.LastErr)
	}
}

func TestLastRunRecorded(t *testing.T) {
	o := New()
	if err := o.Register("j", "", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	before := time.Now().UTC()
	if err := o.RunNow(context.Background(), "j"); err != nil {
		t.Fatal(err)
	}
	st := o.Statuses()[0]
	if st.LastRun.Before(before.Add(-time.Second)) {
		t.Fatalf("last run not recorded: %v", st.LastRun)
	}
}
