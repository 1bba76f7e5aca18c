// Package worker provides the bounded pool that reconciles the products of
// one batch concurrently. Pool size stays small so the shared call quota is
// not overwhelmed by parallel workers.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shopsync/pkg/logger"
	"shopsync/pkg/models"
)

// Job is a single product to reconcile
type Job struct {
	Brand   string
	Product *models.LocalProduct
}

// Result pairs a job with its reconciliation outcome
type Result struct {
	Job      Job
	Sync     models.SyncResult
	Duration time.Duration
}

// ProcessFunc reconciles one job into a SyncResult
type ProcessFunc func(ctx context.Context, job Job) models.SyncResult

// Pool manages concurrent reconcile workers
type Pool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	process     ProcessFunc
	logger      logger.Logger
}

// NewPool creates a reconcile worker pool
func NewPool(ctx context.Context, numWorkers int, process ProcessFunc, log logger.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}

	poolCtx, cancel := context.WithCancel(ctx)

	return &Pool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		ctx:         poolCtx,
		cancel:      cancel,
		process:     process,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (p *Pool) Start() {
	p.logger.DebugWithFields("starting worker pool", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop closes the job queue, waits for remaining jobs, and closes the
// result queue
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()
}

// Submit adds a job to the queue
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the channel of reconciliation results
func (p *Pool) Results() <-chan Result {
	return p.resultQueue
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		start := time.Now()
		sync := p.process(p.ctx, job)

		p.logger.DebugWithFields("worker finished product", map[string]interface{}{
			"worker_id": id,
			"brand":     job.Brand,
			"title":     job.Product.Title,
			"outcome":   string(sync.Outcome),
			"duration":  time.Since(start),
		})

		select {
		case p.resultQueue <- Result{Job: job, Sync: sync, Duration: time.Since(start)}:
		case <-p.ctx.Done():
			return
		}
	}
}
