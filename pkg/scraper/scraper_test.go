package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webdl/pkg/config"
	"webdl/pkg/errors"
	"webdl/pkg/logger"
	"webdl/pkg/ratelimit"
	"webdl/pkg/web"
)

func testConfig(t *testing.T, pageURL string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Target.URL = pageURL
	cfg.Output.Directory = filepath.Join(t.TempDir(), "out")
	cfg.RateLimit.RequestsPerMinute = 100000
	cfg.Download.ConcurrentDownloads = 3
	cfg.Download.RequestTimeout = 2 * time.Second
	cfg.Logging.Level = "error"
	return cfg
}

func newTestScraper(t *testing.T, cfg *config.Config) *Scraper {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestRunDownloadsExtractedElements(t *testing.T) {
	var elementFetches int32
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	// Two absolute references and one relative one
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		page := fmt.Sprintf(`<html><body>
			<img src="%s/img/first.png">
			<img src="%s/img/second.png">
			<img src="img/third.png">
		</body></html>`, server.URL, server.URL)
		w.Write([]byte(page))
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&elementFetches, 1)
		w.Write([]byte("bytes of " + r.URL.Path))
	})

	cfg := testConfig(t, server.URL)
	s := newTestScraper(t, cfg)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.ElementsFound)
	assert.Equal(t, 3, summary.Downloaded)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, int32(3), atomic.LoadInt32(&elementFetches))

	for _, name := range []string{"first.png", "second.png", "third.png"} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Directory, name)); err != nil {
			t.Errorf("Expected %s on disk: %v", name, err)
		}
	}
}

func TestRunPageFetch404IsFatal(t *testing.T) {
	var elementFetches int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&elementFetches, 1)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	s := newTestScraper(t, cfg)

	_, err := s.Run(context.Background())
	require.Error(t, err)

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ErrorTypePageFetch, typed.Type)
	assert.Equal(t, http.StatusNotFound, typed.Code)

	assert.Equal(t, int32(0), atomic.LoadInt32(&elementFetches),
		"no element fetches after a fatal page fetch")
}

func TestRunPartialFailureIsolation(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<img src="/good/a.png">
			<img src="/bad/b.png">
			<img src="/good/c.png">
		</body></html>`))
	})
	mux.HandleFunc("/good/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/bad/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	cfg := testConfig(t, server.URL)
	s := newTestScraper(t, cfg)

	summary, err := s.Run(context.Background())
	require.NoError(t, err, "element failures must not fail the run")

	assert.Equal(t, 3, summary.ElementsFound)
	assert.Equal(t, 2, summary.Downloaded)
	assert.Equal(t, 1, summary.Skipped)

	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "a.png"))
	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "c.png"))
	assert.NoFileExists(t, filepath.Join(cfg.Output.Directory, "b.png"))
}

func TestRunNoMatchingElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>no media here</p></body></html>`))
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	s := newTestScraper(t, cfg)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ElementsFound)
	assert.Equal(t, 0, summary.Downloaded)
}

func TestRunInvalidPageURL(t *testing.T) {
	cfg := testConfig(t, "://broken")
	s := &Scraper{
		client:      web.NewClient("test-agent", time.Second, nil),
		rateLimiter: ratelimit.NewInterval(100000),
		config:      cfg,
		logger:      logger.GetLogger(),
	}

	_, err := s.Run(context.Background())
	assert.Error(t, err)
}

func TestRunCollidingNamesAreSuffixed(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<img src="/one/pic.png">
			<img src="/two/pic.png">
		</body></html>`))
	})
	mux.HandleFunc("/one/", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("one")) })
	mux.HandleFunc("/two/", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("two")) })

	cfg := testConfig(t, server.URL)
	s := newTestScraper(t, cfg)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Downloaded)

	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "pic.png"))
	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "pic_(1).png"))
}
