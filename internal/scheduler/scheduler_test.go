package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(func() {})
	if err := s.Register("not a cron spec"); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	if err := s.Register("0 0 9 * * *"); err != nil {
		t.Fatalf("valid six-field spec rejected: %v", err)
	}
}

func TestRunNow(t *testing.T) {
	var runs atomic.Int32
	s := New(func() { runs.Add(1) })
	s.RunNow()
	s.RunNow()
	if got := runs.Load(); got != 2 {
		t.Errorf("job ran %d times, want 2", got)
	}
}

func TestScheduledExecution(t *testing.T) {
	done := make(chan struct{})
	var closed atomic.Bool
	s := New(func() {
		if closed.CompareAndSwap(false, true) {
			close(done)
		}
	})
	// Every-second spec so the test observes a tick quickly.
	if err := s.Register("* * * * * *"); err != nil {
		t.Fatal(err)
	}
	s.Start()
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job never ran")
	}
}
