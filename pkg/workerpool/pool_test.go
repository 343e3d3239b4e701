package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/projectdiscovery/reconpool/pkg/taskqueue"
	"github.com/stretchr/testify/require"
)

func TestNewInvalid(t *testing.T) {
	q := taskqueue.New[int]()
	noop := func(context.Context, int) {}

	tests := []struct {
		name    string
		size    int
		queue   *taskqueue.Queue[int]
		handler Handler[int]
	}{
		{name: "zero size", size: 0, queue: q, handler: noop},
		{name: "negative size", size: -3, queue: q, handler: noop},
		{name: "nil queue", size: 1, queue: nil, handler: noop},
		{name: "nil handler", size: 1, queue: q, handler: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.queue, tt.handler)
			require.Error(t, err)
		})
	}
}

func TestPoolProcessesEveryTaskOnce(t *testing.T) {
	const tasks = 2000

	q := taskqueue.New[int]()
	counts := make([]atomic.Int32, tasks)
	var calls atomic.Int64

	pool, err := New(DefaultSize, q, func(_ context.Context, task int) {
		counts[task].Add(1)
		calls.Add(1)
	})
	require.NoError(t, err)
	require.Equal(t, DefaultSize, pool.Size())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < tasks; i++ {
		require.NoError(t, q.Put(i))
	}
	require.NoError(t, q.Join(ctx))

	require.Equal(t, int64(tasks), calls.Load())
	for i := range counts {
		require.Equal(t, int32(1), counts[i].Load(), "task %d", i)
	}
	pool.Stop()
}

func TestPoolConcurrencyBounded(t *testing.T) {
	const size = 4

	q := taskqueue.New[int]()
	var inFlight, maxInFlight atomic.Int32

	pool, err := New(size, q, func(_ context.Context, _ int) {
		n := inFlight.Add(1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
	})
	require.NoError(t, err)

	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	for i := 0; i < 40; i++ {
		require.NoError(t, q.Put(i))
	}
	require.NoError(t, q.Join(ctx))
	require.LessOrEqual(t, maxInFlight.Load(), int32(size))
	require.Greater(t, maxInFlight.Load(), int32(1), "workers should overlap on blocking tasks")
}

func TestPoolSurvivesPanickingHandler(t *testing.T) {
	q := taskqueue.New[int]()
	var handled atomic.Int64

	pool, err := New(3, q, func(_ context.Context, task int) {
		handled.Add(1)
		if task%2 == 0 {
			panic("probe blew up")
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Put(i))
	}
	require.NoError(t, q.Join(ctx), "a panicking handler must not stall Join")
	require.Equal(t, int64(10), handled.Load())
}

func TestPoolStop(t *testing.T) {
	q := taskqueue.New[int]()
	pool, err := New(8, q, func(context.Context, int) {})
	require.NoError(t, err)

	pool.Start(context.Background())

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestPoolRateLimit(t *testing.T) {
	q := taskqueue.New[int]()
	var mu sync.Mutex
	var starts []time.Time

	pool, err := New(4, q, func(context.Context, int) {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
	}, WithRateLimit(50))
	require.NoError(t, err)

	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	begin := time.Now()
	for i := 0; i < 11; i++ {
		require.NoError(t, q.Put(i))
	}
	require.NoError(t, q.Join(ctx))

	// 11 tasks at 50/s need at least 10 intervals of 20ms
	require.GreaterOrEqual(t, time.Since(begin), 150*time.Millisecond)
	require.Len(t, starts, 11)
}
