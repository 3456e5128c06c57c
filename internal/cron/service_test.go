package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/efarmaplus/storefront/pkg/logger"
)

type fakeLock struct {
	held bool
	err  error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.held = false; return nil }

type testJob struct {
	name string
	err  error

	mu   sync.Mutex
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.mu.Lock()
	t.runs++
	t.mu.Unlock()
	return t.err
}

func (t *testJob) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

type recordingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]string
}

func (r *recordingRecorder) JobRun(job, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string]string{}
	}
	r.outcomes[job] = outcome
}

func newTestService(t *testing.T, lock Lock, rec Recorder, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: registry,
		Lock:     lock,
		Recorder: rec,
		Interval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	rec := &recordingRecorder{}
	lock := &fakeLock{}
	service := newTestService(t, lock, rec, success, failure)

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if success.count() != 1 || failure.count() != 1 {
		t.Fatalf("expected each job to run once, got %d and %d", success.count(), failure.count())
	}
	if rec.outcomes["success"] != "ok" || rec.outcomes["fail"] != "failed" {
		t.Fatalf("unexpected outcomes %v", rec.outcomes)
	}
	if lock.held {
		t.Fatalf("lock should be released after the cycle")
	}
}

type panickingJob struct{}

func (panickingJob) Name() string              { return "panicky" }
func (panickingJob) Run(context.Context) error { panic("nil map") }

func TestRunOnceSurvivesPanickingJob(t *testing.T) {
	after := &testJob{name: "after"}
	rec := &recordingRecorder{}
	service := newTestService(t, &fakeLock{}, rec, panickingJob{}, after)

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if after.count() != 1 {
		t.Fatalf("expected job after the panic to run")
	}
	if rec.outcomes["panicky"] != "failed" {
		t.Fatalf("expected panic recorded as failure, got %v", rec.outcomes)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	service := newTestService(t, &fakeLock{held: true}, nil, job)

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.count() != 0 {
		t.Fatalf("job must not run without the lock")
	}
}

func TestRunOnceReturnsLockErrors(t *testing.T) {
	service := newTestService(t, &fakeLock{err: errors.New("redis down")}, nil, &testJob{name: "job"})
	if err := service.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected lock error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "job"}
	service := newTestService(t, nil, nil, job)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for job.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated runs, got %d", job.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}

func TestNewServiceRequiresLoggerAndRegistry(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatalf("expected logger error")
	}
	if _, err := NewService(ServiceParams{Logger: logger.Nop()}); err == nil {
		t.Fatalf("expected registry error")
	}
}
