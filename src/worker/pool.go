package worker

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"kairo/src/llm"
)

// ResultCallback is invoked on completion (from a worker goroutine).
// Callers that own UI state must hop back to their own goroutine.
type ResultCallback func(text string, err error)

// Completer answers one completion request.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Pool is a fixed-size completion worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	mu   sync.Mutex // serialises Submit
	jobs chan job
	wg   sync.WaitGroup
	c    Completer
	log  zerolog.Logger
}

type job struct {
	ctx context.Context
	req llm.Request
	cb  ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int, c Completer, logger zerolog.Logger) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		jobs: make(chan job, 1),
		c:    c,
		log:  logger.With().Str("cmp", "worker").Logger(),
	}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				p.run(j)
			}
		}()
	}
}

func (p *Pool) run(j job) {
	if err := j.ctx.Err(); err != nil {
		j.cb("", err)
		return
	}
	p.log.Debug().Int("history", len(j.req.History)).Bool("image", j.req.Image != nil).Msg("starting completion")
	text, err := p.c.Complete(j.ctx, j.req)
	p.log.Debug().Int("len", len(text)).Err(err).Msg("completion finished")
	j.cb(text, err)
}

// Submit enqueues a completion if the single-slot queue is free, or holds
// a job whose context is already done. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, req llm.Request, cb ResultCallback) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	j := job{ctx: ctx, req: req, cb: cb}
	select {
	case p.jobs <- j:
		return true
	default:
	}

	select {
	case queued := <-p.jobs:
		if err := queued.ctx.Err(); err != nil {
			p.log.Debug().Msg("replacing abandoned queued job")
			go queued.cb("", err)
			p.jobs <- j
			return true
		}
		// Workers only receive, so the slot is still free.
		p.jobs <- queued
		return false
	default:
		// A worker took the queued job meanwhile.
		select {
		case p.jobs <- j:
			return true
		default:
			return false
		}
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	p.mu.Lock()
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
