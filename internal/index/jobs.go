package index

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// JobPool runs background work (extraction, reindexing) on a bounded set of
// workers. Jobs are keyed by document key: submitting a new job for a key
// cancels the previous one, and deleting a document cancels its pending job
// so stale results never land in the index.
type JobPool struct {
	queue  chan *job
	logger *zap.Logger

	mu     sync.Mutex
	seq    uint64
	active map[string]*jobHandle

	wg      sync.WaitGroup
	closing sync.Once
}

type jobHandle struct {
	id     uint64
	cancel context.CancelFunc
}

type job struct {
	key string
	id  uint64
	ctx context.Context
	fn  func(ctx context.Context)
}

// NewJobPool starts workers goroutines consuming submitted jobs.
func NewJobPool(workers int, logger *zap.Logger) *JobPool {
	if workers <= 0 {
		workers = 1
	}
	p := &JobPool{
		queue:  make(chan *job, workers*8),
		logger: logger,
		active: make(map[string]*jobHandle),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *JobPool) worker() {
	defer p.wg.Done()
	for j := range p.queue {
		if j.ctx.Err() == nil {
			j.fn(j.ctx)
		}
		p.finish(j)
	}
}

func (p *JobPool) finish(j *job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.active[j.key]; ok && h.id == j.id {
		h.cancel()
		delete(p.active, j.key)
	}
}

// Submit queues fn to run under a cancellable context. A job already pending
// or running for the same key is cancelled first: only the latest submission
// for a key may take effect.
func (p *JobPool) Submit(key string, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	if prev, ok := p.active[key]; ok {
		prev.cancel()
	}
	p.seq++
	id := p.seq
	p.active[key] = &jobHandle{id: id, cancel: cancel}
	p.mu.Unlock()

	p.queue <- &job{key: key, id: id, ctx: ctx, fn: fn}
}

// Cancel aborts the pending or running job for key, if any.
func (p *JobPool) Cancel(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.active[key]; ok {
		h.cancel()
		delete(p.active, key)
		p.logger.Debug("background job cancelled", zap.String("key", key))
	}
}

// Pending returns the number of keys with outstanding jobs.
func (p *JobPool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Close stops accepting jobs and waits for workers to drain the queue.
func (p *JobPool) Close() {
	p.closing.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}
