package txqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/nodekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wait(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("completion was not delivered")
		return nil
	}
}

func TestSubmit_RunsInOrderAndCompletesOnce(t *testing.T) {
	q := New(logging.Discard(), 16)
	defer q.Close()

	var (
		mu    sync.Mutex
		order []int
	)
	var calls atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		q.Submit(context.Background(), "job", func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}, func(err error) {
			assert.NoError(t, err)
			calls.Add(1)
			wg.Done()
		})
	}
	wg.Wait()

	assert.Equal(t, int32(10), calls.Load())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestSubmit_DeliversJobError(t *testing.T) {
	q := New(logging.Discard(), 1)
	defer q.Close()

	boom := errors.New("boom")
	ch := make(chan error, 1)
	q.Submit(context.Background(), "fail", func(ctx context.Context) error { return boom }, func(err error) { ch <- err })

	require.ErrorIs(t, wait(t, ch), boom)
}

func TestSubmit_PanicBecomesError(t *testing.T) {
	q := New(logging.Discard(), 1)
	defer q.Close()

	ch := make(chan error, 1)
	q.Submit(context.Background(), "panic", func(ctx context.Context) error { panic("kaput") }, func(err error) { ch <- err })
	require.ErrorIs(t, wait(t, ch), ErrPanicked)

	// the worker survives
	ch2 := make(chan error, 1)
	q.Submit(context.Background(), "after", func(ctx context.Context) error { return nil }, func(err error) { ch2 <- err })
	require.NoError(t, wait(t, ch2))
}

func TestSubmit_CanceledContextSkipsJob(t *testing.T) {
	q := New(logging.Discard(), 1)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	ch := make(chan error, 1)
	q.Submit(ctx, "canceled", func(ctx context.Context) error { ran = true; return nil }, func(err error) { ch <- err })

	require.ErrorIs(t, wait(t, ch), context.Canceled)
	assert.False(t, ran)
}

func TestSubmit_FromCompletionDoesNotBlockWorker(t *testing.T) {
	q := New(logging.Discard(), 1)
	defer q.Close()

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) Job {
		return func(ctx context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	release := make(chan struct{})
	first := func(ctx context.Context) error {
		<-release
		return record("first")(ctx)
	}

	ch := make(chan error, 1)
	q.Submit(context.Background(), "first", first, func(err error) {
		assert.NoError(t, err)
		// the queue already holds more than the preallocated room
		for i := 0; i < 4; i++ {
			q.Submit(context.Background(), "followup", record("followup"), nil)
		}
		q.Submit(context.Background(), "last", record("last"), func(err error) { ch <- err })
	})
	for i := 0; i < 3; i++ {
		q.Submit(context.Background(), "queued", record("queued"), nil)
	}
	close(release)

	require.NoError(t, wait(t, ch))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "queued", "queued", "queued", "followup", "followup", "followup", "followup", "last"}, order)
}

func TestClose_DrainsPendingThenRejects(t *testing.T) {
	q := New(logging.Discard(), 4)

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		q.Submit(context.Background(), "pending", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}, nil)
	}
	q.Close()
	assert.Equal(t, int32(3), ran.Load())

	ch := make(chan error, 1)
	q.Submit(context.Background(), "late", func(ctx context.Context) error {
		t.Fatalf("job must not run after Close")
		return nil
	}, func(err error) { ch <- err })
	require.ErrorIs(t, wait(t, ch), ErrClosed)

	// closing twice is harmless
	q.Close()
}
