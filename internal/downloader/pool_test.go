package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"webdl/pkg/ratelimit"
	"webdl/pkg/web"
)

// MockFetcher is a mock element fetcher
type MockFetcher struct {
	fetchDelay   time.Duration
	fetchError   error
	statusCode   int
	fetchCounter int32
}

func (m *MockFetcher) Get(ctx context.Context, url string) (*web.Response, error) {
	atomic.AddInt32(&m.fetchCounter, 1)
	if m.fetchDelay > 0 {
		time.Sleep(m.fetchDelay)
	}
	if m.fetchError != nil {
		return nil, m.fetchError
	}
	status := m.statusCode
	if status == 0 {
		status = http.StatusOK
	}
	return &web.Response{StatusCode: status, Body: []byte("mock element data")}, nil
}

func (m *MockFetcher) FetchCount() int {
	return int(atomic.LoadInt32(&m.fetchCounter))
}

// MockStore records saved files in memory
type MockStore struct {
	saved     map[string]int
	saveError error
	mu        sync.Mutex
}

func NewMockStore() *MockStore {
	return &MockStore{saved: make(map[string]int)}
}

func (m *MockStore) Save(candidate string, data []byte) (string, error) {
	if m.saveError != nil {
		return "", m.saveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[candidate]++
	if n := m.saved[candidate]; n > 1 {
		return fmt.Sprintf("%s_(%d)", candidate, n-1), nil
	}
	return candidate, nil
}

func (m *MockStore) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.saved {
		total += n
	}
	return total
}

func collectResults(pool *WorkerPool) (<-chan []DownloadResult, func()) {
	out := make(chan []DownloadResult, 1)
	go func() {
		var results []DownloadResult
		for result := range pool.Results() {
			results = append(results, result)
		}
		out <- results
	}()
	return out, pool.Stop
}

func TestWorkerPoolBasicFunctionality(t *testing.T) {
	fetcher := &MockFetcher{fetchDelay: 5 * time.Millisecond}
	store := NewMockStore()
	limiter := ratelimit.NewInterval(100000)

	pool := NewWorkerPool(3, fetcher, store, limiter, nil)
	pool.Start()
	resultsCh, stop := collectResults(pool)

	numJobs := 10
	for i := 0; i < numJobs; i++ {
		if err := pool.Submit(NewJob(fmt.Sprintf("https://example.com/photo%d.jpg", i))); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	stop()
	results := <-resultsCh

	if len(results) != numJobs {
		t.Fatalf("Expected %d results, got %d", numJobs, len(results))
	}
	for _, result := range results {
		if result.Skipped {
			t.Errorf("Unexpected skip for %s: %v", result.Job.URL, result.Err)
		}
		if result.Filename == "" {
			t.Errorf("Expected a filename for %s", result.Job.URL)
		}
	}
	if store.SavedCount() != numJobs {
		t.Errorf("Expected %d saved files, got %d", numJobs, store.SavedCount())
	}
}

func TestWorkerPoolSkipsFetchErrors(t *testing.T) {
	fetcher := &MockFetcher{fetchError: errors.New("connection refused")}
	store := NewMockStore()
	limiter := ratelimit.NewInterval(100000)

	pool := NewWorkerPool(2, fetcher, store, limiter, nil)
	pool.Start()
	resultsCh, stop := collectResults(pool)

	for i := 0; i < 3; i++ {
		pool.Submit(NewJob(fmt.Sprintf("https://example.com/%d.png", i)))
	}
	stop()
	results := <-resultsCh

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for _, result := range results {
		if !result.Skipped {
			t.Errorf("Expected job %s to be skipped", result.Job.URL)
		}
	}
	if store.SavedCount() != 0 {
		t.Errorf("Expected no files saved, got %d", store.SavedCount())
	}
}

func TestWorkerPoolSkipsNon200(t *testing.T) {
	fetcher := &MockFetcher{statusCode: http.StatusInternalServerError}
	store := NewMockStore()
	limiter := ratelimit.NewInterval(100000)

	pool := NewWorkerPool(2, fetcher, store, limiter, nil)
	pool.Start()
	resultsCh, stop := collectResults(pool)

	pool.Submit(NewJob("https://example.com/broken.png"))
	stop()
	results := <-resultsCh

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if !results[0].Skipped {
		t.Error("Expected non-200 job to be skipped")
	}
	if store.SavedCount() != 0 {
		t.Error("Expected no file for a non-200 response")
	}
}

func TestWorkerPoolHonorsSharedRateLimit(t *testing.T) {
	fetcher := &MockFetcher{}
	store := NewMockStore()
	// 1200 rpm = one fetch every 50ms
	limiter := ratelimit.NewInterval(1200)

	pool := NewWorkerPool(4, fetcher, store, limiter, nil)
	pool.Start()
	resultsCh, stop := collectResults(pool)

	const numJobs = 4
	start := time.Now()
	for i := 0; i < numJobs; i++ {
		pool.Submit(NewJob(fmt.Sprintf("https://example.com/%d.jpg", i)))
	}
	stop()
	<-resultsCh
	elapsed := time.Since(start)

	// 4 grants spaced 50ms apart need at least 3 intervals, even with
	// 4 workers running in parallel.
	if elapsed < 140*time.Millisecond {
		t.Errorf("4 downloads finished in %v, rate limit not shared across workers", elapsed)
	}
	if fetcher.FetchCount() != numJobs {
		t.Errorf("Expected %d fetches, got %d", numJobs, fetcher.FetchCount())
	}
}

func TestBaseName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/images/photo.png", "photo.png"},
		{"https://example.com/photo.png?size=large", "photo.png"},
		{"https://example.com/README", "README"},
		{"https://example.com/", "element"},
		{"https://example.com", "element"},
	}

	for _, tc := range cases {
		if got := BaseName(tc.url); got != tc.want {
			t.Errorf("BaseName(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
