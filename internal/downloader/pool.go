package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"webdl/pkg/logger"
	"webdl/pkg/ratelimit"
	"webdl/pkg/web"
)

// DownloadJob represents a single element download task
type DownloadJob struct {
	ID  uuid.UUID
	URL string
}

// NewJob creates a job for an element URL with a fresh correlation ID.
func NewJob(elementURL string) DownloadJob {
	return DownloadJob{ID: uuid.New(), URL: elementURL}
}

// DownloadResult represents the outcome of a download job. Skipped is
// set when the element fetch failed or returned a non-200 status; a
// skipped job produces no file and is not an error for the run.
type DownloadResult struct {
	Job      DownloadJob
	Filename string
	Size     int
	Skipped  bool
	Err      error
	Duration time.Duration
}

// ElementFetcher fetches a single element URL
type ElementFetcher interface {
	Get(ctx context.Context, url string) (*web.Response, error)
}

// ElementStore persists element bytes under a collision-free name
type ElementStore interface {
	Save(candidate string, data []byte) (string, error)
}

// WorkerPool manages concurrent download workers sharing one rate limiter
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan DownloadJob
	resultQueue chan DownloadResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	fetcher     ElementFetcher
	store       ElementStore
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
}

// NewWorkerPool creates a new download worker pool. The rate limiter is
// shared by reference across all workers; it is the only throttle, the
// worker count is not correctness relevant.
func NewWorkerPool(
	numWorkers int,
	fetcher ElementFetcher,
	store ElementStore,
	rateLimiter ratelimit.Limiter,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan DownloadJob, numWorkers*2),
		resultQueue: make(chan DownloadResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		fetcher:     fetcher,
		store:       store,
		rateLimiter: rateLimiter,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the job queue, waits for all in-flight jobs to finish and
// closes the result queue.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Debug("worker pool stopped")
}

// Submit adds a new download job to the queue
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("job submitted to queue", map[string]interface{}{
			"job_id": job.ID.String(),
			"url":    job.URL,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel for consuming download results
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob handles a single download job: wait out the shared rate
// limit, fetch the element, and persist the body when the status is 200.
// Fetch failures and non-200 responses skip the job without retrying.
func (wp *WorkerPool) processJob(job DownloadJob, workerID int) DownloadResult {
	start := time.Now()
	result := DownloadResult{Job: job}

	wp.rateLimiter.Wait()

	resp, err := wp.fetcher.Get(wp.ctx, job.URL)
	if err != nil {
		result.Skipped = true
		result.Err = err
		result.Duration = time.Since(start)

		wp.logger.DebugWithFields("element fetch failed, job skipped", map[string]interface{}{
			"worker_id": workerID,
			"job_id":    job.ID.String(),
			"url":       job.URL,
			"error":     err.Error(),
		})
		return result
	}

	if resp.StatusCode != http.StatusOK {
		result.Skipped = true
		result.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		result.Duration = time.Since(start)

		wp.logger.DebugWithFields("element returned non-200 status, job skipped", map[string]interface{}{
			"worker_id": workerID,
			"job_id":    job.ID.String(),
			"url":       job.URL,
			"status":    resp.StatusCode,
		})
		return result
	}

	name, err := wp.store.Save(BaseName(job.URL), resp.Body)
	if err != nil {
		result.Skipped = true
		result.Err = err
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("failed to save element", map[string]interface{}{
			"worker_id": workerID,
			"job_id":    job.ID.String(),
			"url":       job.URL,
			"error":     err.Error(),
		})
		return result
	}

	result.Filename = name
	result.Size = len(resp.Body)
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("worker completed job", map[string]interface{}{
		"worker_id": workerID,
		"job_id":    job.ID.String(),
		"filename":  name,
		"size":      result.Size,
		"duration":  result.Duration,
	})

	return result
}

// BaseName derives the candidate file name from the last segment of the
// URL's path component. URLs without a usable path segment fall back to
// a generic name so the storage layer can still suffix them apart.
func BaseName(elementURL string) string {
	u, err := url.Parse(elementURL)
	if err != nil {
		return "element"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "element"
	}
	return name
}
