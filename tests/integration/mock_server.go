package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockSite serves a gallery page and the media files it references,
// recording the start time of every media request.
type MockSite struct {
	server     *httptest.Server
	mu         sync.Mutex
	mediaHits  []time.Time
	brokenPath string
}

// NewMockSite starts a test server with numImages image elements on the
// index page. Image paths are /media/img<N>.png.
func NewMockSite(numImages int) *MockSite {
	site := &MockSite{}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		page := "<html><body>\n"
		for i := 0; i < numImages; i++ {
			// Mix of absolute and relative references
			if i%2 == 0 {
				page += fmt.Sprintf("<img src=\"%s/media/img%d.png\">\n", site.server.URL, i)
			} else {
				page += fmt.Sprintf("<img src=\"/media/img%d.png\">\n", i)
			}
		}
		page += "</body></html>"
		w.Write([]byte(page))
	})
	mux.HandleFunc("/media/", func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.mediaHits = append(site.mediaHits, time.Now())
		broken := site.brokenPath != "" && r.URL.Path == site.brokenPath
		site.mu.Unlock()

		if broken {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("media bytes for " + r.URL.Path))
	})

	site.server = httptest.NewServer(mux)
	return site
}

// URL returns the base URL of the mock site
func (s *MockSite) URL() string {
	return s.server.URL
}

// BreakPath makes one media path return HTTP 500
func (s *MockSite) BreakPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brokenPath = path
}

// MediaHits returns the recorded media request start times
func (s *MockSite) MediaHits() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	hits := make([]time.Time, len(s.mediaHits))
	copy(hits, s.mediaHits)
	return hits
}

// Close shuts the test server down
func (s *MockSite) Close() {
	s.server.Close()
}
