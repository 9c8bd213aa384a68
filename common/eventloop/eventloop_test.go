package eventloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRunExecutesTasksInOrder(t *testing.T) {
	l := New()
	var got []int
	for i := 0; i < 3; i++ {
		i := i
		l.Post(func(ctx context.Context) error {
			got = append(got, i)
			return nil
		})
	}
	l.Post(func(ctx context.Context) error {
		l.Stop()
		return nil
	})
	if err := l.Run(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("Run() = %v, want ErrStopped", err)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskErrorStopsLoop(t *testing.T) {
	l := New()
	wantErr := errors.New("trap")
	ran := false
	l.Post(func(ctx context.Context) error { return wantErr })
	l.Post(func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err := l.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Run() = %v, want %v", err, wantErr)
	}
	if ran {
		t.Errorf("task after failing task ran")
	}
	if l.Post(func(ctx context.Context) error { return nil }) {
		t.Errorf("Post() after failure = true, want false")
	}
}

func TestPostFromOtherGoroutine(t *testing.T) {
	l := New()
	done := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Post(func(ctx context.Context) error {
			close(done)
			l.Stop()
			return nil
		})
	}()
	if err := l.Run(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("Run() = %v, want ErrStopped", err)
	}
	select {
	case <-done:
	default:
		t.Errorf("posted task did not run")
	}
}

func TestPostFromInsideTask(t *testing.T) {
	l := New()
	var got []string
	l.Post(func(ctx context.Context) error {
		got = append(got, "outer")
		l.Post(func(ctx context.Context) error {
			got = append(got, "inner")
			l.Stop()
			return nil
		})
		return nil
	})
	l.Run(context.Background())
	if diff := cmp.Diff([]string{"outer", "inner"}, got); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestRunReturnsOnContextDone(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
