package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestRunOnStartAndRepeat(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var calls int32
	job := &Job{
		Name:       "broadcast",
		Schedule:   Every(30 * time.Millisecond),
		RunOnStart: true,
		Handler: func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	}
	if err := s.Register(job); err != nil {
		t.Fatalf("Register: %v", err)
	}

	s.Start()
	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&calls) >= 2 })
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	st := s.Jobs()[0]
	if st.Runs < 2 || st.LastRun.IsZero() || st.LastErr != nil {
		t.Fatalf("status = %+v", st)
	}
}

func TestFirstRunWaitsForInterval(t *testing.T) {
	s, _ := New()

	var calls int32
	s.Register(&Job{
		Name:     "slow",
		Schedule: Every(time.Hour),
		Handler: func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	})
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("job ran before its first interval")
	}
}

func TestJobErrorIsRecorded(t *testing.T) {
	s, _ := New()
	boom := errors.New("boom")
	job := &Job{
		Name:       "failing",
		Schedule:   Every(time.Hour),
		RunOnStart: true,
		Handler:    func(context.Context) error { return boom },
	}
	s.Register(job)
	s.Start()
	waitFor(t, 2*time.Second, func() bool { return job.Status().Runs == 1 })
	s.Stop()

	if !errors.Is(job.Status().LastErr, boom) {
		t.Fatalf("last error = %v", job.Status().LastErr)
	}
}

func TestRegisterValidation(t *testing.T) {
	s, _ := New()
	if err := s.Register(&Job{Name: "nohandler", Schedule: Every(time.Second)}); err == nil {
		t.Fatalf("expected error without handler")
	}
	if err := s.Register(&Job{Name: "zero", Handler: func(context.Context) error { return nil }}); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if len(s.Jobs()) != 0 {
		t.Fatalf("invalid jobs must not be registered")
	}
}

func TestLongRunIsNotCutShort(t *testing.T) {
	s, _ := New()

	var done int32
	var deadlineSet int32
	job := &Job{
		Name:       "long",
		Schedule:   Every(time.Hour),
		RunOnStart: true,
		Handler: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); ok {
				atomic.StoreInt32(&deadlineSet, 1)
			}
			time.Sleep(100 * time.Millisecond)
			if err := ctx.Err(); err != nil {
				return err
			}
			atomic.StoreInt32(&done, 1)
			return nil
		},
	}
	s.Register(job)
	s.Start()
	waitFor(t, 2*time.Second, func() bool { return job.Status().Runs == 1 })
	s.Stop()

	if atomic.LoadInt32(&deadlineSet) != 0 {
		t.Fatalf("job context must not carry a deadline")
	}
	if atomic.LoadInt32(&done) != 1 || job.Status().LastErr != nil {
		t.Fatalf("status = %+v", job.Status())
	}
}

func TestStopCancelsRunningJob(t *testing.T) {
	s, _ := New()

	started := make(chan struct{})
	var cancelled int32
	s.Register(&Job{
		Name:       "blocking",
		Schedule:   Every(time.Hour),
		RunOnStart: true,
		Handler: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			atomic.StoreInt32(&cancelled, 1)
			return ctx.Err()
		},
	})
	s.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not start")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if atomic.LoadInt32(&cancelled) != 1 {
		t.Fatalf("Stop must cancel the running job")
	}
}
