// Package workerpool runs a fixed number of workers that drain a taskqueue.
//
// Each worker loops forever: it takes a task from the queue, runs the handler
// and marks the task done. The task is marked done from a deferred call, so a
// handler that panics still releases the queue's Join.
package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/reconpool/pkg/taskqueue"
	syncutil "github.com/projectdiscovery/utils/sync"
	"go.uber.org/ratelimit"
)

// DefaultSize is the pool size used by both scans
const DefaultSize = 100

// Handler processes a single task. It runs on the worker's goroutine.
type Handler[T any] func(ctx context.Context, task T)

// Option configures a Pool
type Option func(*config)

type config struct {
	rate int
}

// WithRateLimit caps the number of tasks started per second across the pool.
// A value <= 0 disables the limit.
func WithRateLimit(perSecond int) Option {
	return func(c *config) {
		c.rate = perSecond
	}
}

// Pool is a fixed-size set of workers bound to one queue
type Pool[T any] struct {
	size    int
	queue   *taskqueue.Queue[T]
	handler Handler[T]
	limiter ratelimit.Limiter
	awg     *syncutil.AdaptiveWaitGroup
	cancel  context.CancelFunc
}

// New creates a pool of size workers for queue. Workers are not started
// until Start is called.
func New[T any](size int, queue *taskqueue.Queue[T], handler Handler[T], opts ...Option) (*Pool[T], error) {
	if size < 1 {
		return nil, fmt.Errorf("invalid pool size %d: must be at least 1", size)
	}
	if queue == nil {
		return nil, fmt.Errorf("pool requires a queue")
	}
	if handler == nil {
		return nil, fmt.Errorf("pool requires a handler")
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	awg, err := syncutil.New(syncutil.WithSize(size))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker waitgroup: %w", err)
	}

	limiter := ratelimit.NewUnlimited()
	if cfg.rate > 0 {
		limiter = ratelimit.New(cfg.rate, ratelimit.WithoutSlack)
	}

	return &Pool[T]{
		size:    size,
		queue:   queue,
		handler: handler,
		limiter: limiter,
		awg:     awg,
	}, nil
}

// Size returns the number of workers
func (p *Pool[T]) Size() int {
	return p.size
}

// Start launches the workers. They run until ctx is cancelled or Stop is called.
func (p *Pool[T]) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.size; i++ {
		p.awg.Add()
		go p.worker(ctx, i)
	}
}

// Stop closes the queue, cancels in-flight gets and waits for every worker to return
func (p *Pool[T]) Stop() {
	p.queue.Close()
	if p.cancel != nil {
		p.cancel()
	}
	p.awg.Wait()
}

func (p *Pool[T]) worker(ctx context.Context, id int) {
	defer p.awg.Done()

	for {
		task, err := p.queue.Get(ctx)
		if err != nil {
			gologger.Debug().Msgf("worker %d exiting: %v", id, err)
			return
		}
		p.run(ctx, id, task)
	}
}

func (p *Pool[T]) run(ctx context.Context, id int, task T) {
	defer p.queue.Done()
	defer func() {
		if r := recover(); r != nil {
			gologger.Error().Msgf("worker %d recovered from panic on task %v: %v\n%s", id, task, r, debug.Stack())
		}
	}()

	p.limiter.Take()
	p.handler(ctx, task)
}
