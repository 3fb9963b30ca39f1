package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/metrics"
	"github.com/rpattn/standards/internal/repository"
)

var (
	ErrQueueClosed = errors.New("enrichment queue is closed")
	ErrQueueFull   = errors.New("enrichment queue is full")

	errJobNotRunnable = errors.New("enrichment job is no longer runnable")
)

const maxErrorMessageLength = 1024

type queuedJob struct {
	id    uuid.UUID
	input Input
}

// Queue persists summary jobs and runs them on a fixed pool of workers.
type Queue struct {
	jobs       repository.EnrichmentJobRepository
	summarizer Summarizer
	listener   Listener
	log        *logger.Logger

	workers    int
	jobTimeout time.Duration

	pending chan queuedJob
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
}

type QueueOption func(*Queue)

func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithJobTimeout(timeout time.Duration) QueueOption {
	return func(q *Queue) {
		if timeout > 0 {
			q.jobTimeout = timeout
		}
	}
}

// WithBuffer sets how many jobs may wait for a worker before Submit fails.
func WithBuffer(size int) QueueOption {
	return func(q *Queue) {
		if size > 0 {
			q.pending = make(chan queuedJob, size)
		}
	}
}

func WithQueueLogger(log *logger.Logger) QueueOption {
	return func(q *Queue) {
		if log != nil {
			q.log = log.With("component", "EnrichmentQueue")
		}
	}
}

func NewQueue(jobs repository.EnrichmentJobRepository, summarizer Summarizer, listener Listener, opts ...QueueOption) *Queue {
	q := &Queue{
		jobs:       jobs,
		summarizer: summarizer,
		listener:   listener,
		log:        logger.Nop(),
		workers:    2,
		jobTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.pending == nil {
		q.pending = make(chan queuedJob, 64)
	}
	return q
}

// Submit records a QUEUED job and hands it to the workers. It never blocks on
// a full buffer: the job is marked failed and ErrQueueFull is returned.
func (q *Queue) Submit(ctx context.Context, input Input) (uuid.UUID, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return uuid.Nil, ErrQueueClosed
	}

	job, err := q.jobs.Create(ctx, domain.EnrichmentJob{
		OrganizationID:    input.OrganizationID,
		UserID:            input.UserID,
		StandardID:        input.StandardVersion.StandardID,
		StandardVersionID: input.StandardVersion.ID,
		Status:            domain.EnrichmentJobStatusQueued,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create enrichment job: %w", err)
	}
	metrics.EnrichmentJobs.WithLabelValues(string(domain.EnrichmentJobStatusQueued)).Inc()

	select {
	case q.pending <- queuedJob{id: job.ID, input: input}:
		q.log.Debug("enrichment job queued", "job_id", job.ID, "standard_version_id", input.StandardVersion.ID)
		return job.ID, nil
	default:
		q.fail(context.Background(), job.ID, input, ErrQueueFull)
		return job.ID, ErrQueueFull
	}
}

// Start launches the workers. They exit when ctx is cancelled or the queue is
// shut down and drained.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func(worker int) {
			defer q.wg.Done()
			q.log.Debug("enrichment worker started", "worker", worker)
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-q.pending:
					if !ok {
						return
					}
					q.process(ctx, job)
				}
			}
		}(i)
	}
}

// Shutdown stops accepting jobs and waits for the workers to drain the buffer.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.pending)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) process(parent context.Context, job queuedJob) {
	ctx, cancel := context.WithTimeout(parent, q.jobTimeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			q.log.Error("panic while processing enrichment job", "job_id", job.id, "panic", rec)
			q.fail(context.Background(), job.id, job.input, fmt.Errorf("panic: %v", rec))
		}
	}()

	summary, err := q.run(ctx, job)
	switch {
	case errors.Is(err, errJobNotRunnable):
		q.log.Info("enrichment job not runnable, skipping", "job_id", job.id)
	case err != nil:
		q.fail(ctx, job.id, job.input, err)
	default:
		q.complete(ctx, job.id, job.input, summary)
	}
}

func (q *Queue) run(ctx context.Context, job queuedJob) (string, error) {
	if err := q.jobs.MarkRunning(ctx, job.id); err != nil {
		if errors.Is(err, repository.ErrEnrichmentJobStatusConflict) {
			return "", errJobNotRunnable
		}
		return "", fmt.Errorf("mark enrichment job running: %w", err)
	}
	metrics.EnrichmentJobs.WithLabelValues(string(domain.EnrichmentJobStatusRunning)).Inc()

	started := time.Now()
	summary, err := q.summarizer.Summarize(ctx, job.input.StandardVersion, job.input.Rules)
	metrics.EnrichmentDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return "", fmt.Errorf("summarize version %s: %w", job.input.StandardVersion.ID, err)
	}
	return summary, nil
}

func (q *Queue) complete(ctx context.Context, jobID uuid.UUID, input Input, summary string) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := q.jobs.MarkCompleted(ctx, jobID, summary); err != nil {
		q.log.Error("failed to mark enrichment job completed", "job_id", jobID, "error", err)
	}
	metrics.EnrichmentJobs.WithLabelValues(string(domain.EnrichmentJobStatusCompleted)).Inc()
	q.notify(func() { q.listener.OnCompleted(ctx, Completed{JobID: jobID, Input: input, Summary: summary}) })
}

func (q *Queue) fail(ctx context.Context, jobID uuid.UUID, input Input, cause error) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := q.jobs.MarkFailed(ctx, jobID, truncateError(cause)); err != nil {
		q.log.Error("failed to mark enrichment job failed", "job_id", jobID, "error", err, "cause", cause)
	}
	metrics.EnrichmentJobs.WithLabelValues(string(domain.EnrichmentJobStatusFailed)).Inc()
	q.notify(func() { q.listener.OnFailed(ctx, Failed{JobID: jobID, Input: input, Err: cause}) })
}

func (q *Queue) notify(fn func()) {
	if q.listener == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			q.log.Error("enrichment listener panicked", "panic", rec)
		}
	}()
	fn()
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorMessageLength {
		return msg[:maxErrorMessageLength]
	}
	return msg
}
