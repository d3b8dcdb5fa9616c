// Package scraper provides the core functionality for downloading page
// elements.
//
// The Scraper struct ties the pieces together:
//   - fetches the configured page over HTTP
//   - extracts element URLs of the configured kind from the markup
//   - dispatches one download job per URL to a concurrent worker pool
//   - shares a single rate limiter across all workers
//   - reports per-file confirmations and a final summary
//
// A page fetch failure or an unusable output directory aborts the run
// before any element download; individual element failures only skip
// that element.
//
// Usage:
//
//	cfg, err := config.Load("", flags)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := s.Run(context.Background())
package scraper
