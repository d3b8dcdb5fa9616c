package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"webdl/internal/downloader"
	"webdl/pkg/config"
	"webdl/pkg/errors"
	"webdl/pkg/extract"
	"webdl/pkg/logger"
	"webdl/pkg/ratelimit"
	"webdl/pkg/storage"
	"webdl/pkg/ui"
	"webdl/pkg/web"
)

// Summary reports what a completed run did
type Summary struct {
	ElementsFound int
	Downloaded    int
	Skipped       int
}

// Scraper orchestrates the page fetch, element extraction and the
// concurrent rate-limited downloads.
type Scraper struct {
	client      PageFetcher
	rateLimiter ratelimit.Limiter
	config      *config.Config
	logger      logger.Logger
}

// New creates a new Scraper instance from the effective configuration
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	rateLimiter, err := ratelimit.New(
		ratelimit.Strategy(cfg.RateLimit.Strategy),
		cfg.RateLimit.RequestsPerMinute,
	)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeInvalidInput, err.Error())
	}

	client := web.NewClient(cfg.Target.UserAgent, cfg.Download.RequestTimeout, log)

	return &Scraper{
		client:      client,
		rateLimiter: rateLimiter,
		config:      cfg,
		logger:      log,
	}, nil
}

// Run fetches the configured page, extracts the element URLs of the
// configured kind and downloads each one through the worker pool. The
// run fails only on a page fetch failure, a directory failure or an
// unparsable page; individual element failures are skipped and counted.
func (s *Scraper) Run(ctx context.Context) (*Summary, error) {
	pageURL, err := url.ParseRequestURI(s.config.Target.URL)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeInvalidInput,
			fmt.Sprintf("invalid page URL %q: %v", s.config.Target.URL, err))
	}

	s.logger.InfoWithFields("fetching page", map[string]interface{}{
		"url":          pageURL.String(),
		"element_kind": s.config.Target.ElementKind,
	})

	resp, err := s.client.Get(ctx, pageURL.String())
	if err != nil {
		return nil, errors.New(errors.ErrorTypePageFetch,
			fmt.Sprintf("failed to fetch page %q: %v", pageURL, err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewWithCode(errors.ErrorTypePageFetch, resp.StatusCode,
			fmt.Sprintf("page %q returned status %d", pageURL, resp.StatusCode))
	}

	elementURLs, err := extract.URLs(resp.Body, pageURL, s.config.Target.ElementKind)
	if err != nil {
		return nil, err
	}

	summary := &Summary{ElementsFound: len(elementURLs)}
	s.logger.InfoWithFields("extracted element URLs", map[string]interface{}{
		"count":        len(elementURLs),
		"element_kind": s.config.Target.ElementKind,
	})

	if len(elementURLs) == 0 {
		ui.PrintWarning("No matching elements found on the page.")
		return summary, nil
	}

	store, err := storage.NewManager(s.config.Output.Directory)
	if err != nil {
		return nil, err
	}

	ui.PrintInfo("Downloading "+s.config.Target.ElementKind+"s from", pageURL.String())

	pool := downloader.NewWorkerPool(
		s.config.Download.ConcurrentDownloads,
		s.client,
		store,
		s.rateLimiter,
		s.logger,
	)
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range pool.Results() {
			if result.Skipped {
				summary.Skipped++
				s.logger.WarnWithFields("element skipped", map[string]interface{}{
					"url":   result.Job.URL,
					"error": result.Err.Error(),
				})
				continue
			}
			summary.Downloaded++
			ui.PrintDownloaded(result.Filename)
		}
	}()

	for _, elementURL := range elementURLs {
		if err := pool.Submit(downloader.NewJob(elementURL)); err != nil {
			s.logger.WithError(err).WithField("url", elementURL).Error("failed to submit download job")
		}
	}

	pool.Stop()
	wg.Wait()

	s.logger.InfoWithFields("run completed", map[string]interface{}{
		"elements_found": summary.ElementsFound,
		"downloaded":     summary.Downloaded,
		"skipped":        summary.Skipped,
	})
	ui.PrintSuccess("All downloads completed.")

	return summary, nil
}
