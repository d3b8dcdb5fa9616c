package scraper

import (
	"context"

	"webdl/pkg/web"
)

// PageFetcher defines the HTTP operations the scraper needs. The web
// client satisfies it; tests substitute their own.
type PageFetcher interface {
	Get(ctx context.Context, url string) (*web.Response, error)
}
