package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/traingrc/textweaver/internal/models"
	"github.com/traingrc/textweaver/internal/parsing"
)

// ErrQueueFull is returned when the ingestion queue cannot accept more work.
var ErrQueueFull = errors.New("ingestion queue is full")

// Job is one accepted upload awaiting extraction and ingestion.
type Job struct {
	Namespace string
	DocID     string
	FileKey   string
	FileType  models.FileType
	Data      []byte
}

// Result reports the outcome of one job. Results are drained internally so
// background failures are always observed and logged.
type Result struct {
	Job Job
	Err error
}

// Pool runs ingestion jobs on a fixed set of workers. Upload handlers
// enqueue and return immediately; extraction and embedding happen here.
type Pool struct {
	pipeline   *Pipeline
	extractors *parsing.Registry
	workers    int
	jobTimeout time.Duration

	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
	drained chan struct{}
}

// NewPool creates a pool with the given concurrency and queue depth.
func NewPool(workers, queueSize int, p *Pipeline, extractors *parsing.Registry) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		pipeline:   p,
		extractors: extractors,
		workers:    workers,
		jobTimeout: 15 * time.Minute,
		jobs:       make(chan Job, queueSize),
		results:    make(chan Result, queueSize),
		drained:    make(chan struct{}),
	}
}

// Start launches the workers and the result drainer.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.drain()
}

// Enqueue hands a job to the pool without blocking the caller.
func (p *Pool) Enqueue(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop waits for queued jobs to finish and for all results to be drained.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
	<-p.drained
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.results <- Result{Job: job, Err: p.run(job)}
	}
}

func (p *Pool) run(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()

	extractor, err := p.extractors.ForType(job.FileType)
	if err != nil {
		return err
	}

	body, err := extractor.Extract(ctx, job.Data, job.FileKey)
	if err != nil {
		return err
	}

	return p.pipeline.Process(ctx, job.Namespace, job.DocID, job.FileKey, job.FileType, body)
}

// drain logs every outcome. There is currently no client-visible status API
// for background failures; the failure log and server log are the record.
func (p *Pool) drain() {
	defer close(p.drained)
	for res := range p.results {
		if res.Err != nil {
			log.Printf("Ingestion failed for %s (doc %s): %v", res.Job.FileKey, res.Job.DocID, res.Err)
			continue
		}
		log.Printf("Ingestion finished for %s (doc %s)", res.Job.FileKey, res.Job.DocID)
	}
}
