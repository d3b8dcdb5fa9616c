package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"webdl/pkg/config"
	"webdl/pkg/logger"
	"webdl/pkg/scraper"
	"webdl/pkg/ui"
)

var (
	// Fetch command flags
	outputDir      string
	elementKind    string
	rateLimit      int
	rateStrategy   string
	concurrent     int
	requestTimeout time.Duration
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download all elements of a kind referenced by a web page",
	Long: `Fetch a web page, extract the URLs of every element of the chosen kind
(image, audio or video; any other value is used as a tag name directly),
and download each one into the output directory.

Requests are spaced out globally: with --rate-limit N, successive request
starts are at least 60/N seconds apart no matter how many workers run.
Files whose names collide get numeric suffixes (picture_(1).png) instead
of overwriting each other.`,
	Example: `  # Download all images from a page
  webdl fetch https://example.com/gallery

  # Audio files, 30 requests per minute, into ./sounds
  webdl fetch https://example.com/podcast -e audio -r 30 -o ./sounds

  # Custom tag name and more workers
  webdl fetch https://example.com/ -e source --concurrent 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads (default: ./downloads)")
	fetchCmd.Flags().StringVarP(&elementKind, "element", "e", "", "element kind to download: image, audio, video, or a tag name (default: image)")
	fetchCmd.Flags().IntVarP(&rateLimit, "rate-limit", "r", 0, "requests per minute (default: 10)")
	fetchCmd.Flags().StringVar(&rateStrategy, "rate-strategy", "", "rate limiting strategy: interval, burst or window (default: interval)")
	fetchCmd.Flags().IntVar(&concurrent, "concurrent", 0, "number of concurrent download workers (default: number of CPUs)")
	fetchCmd.Flags().DurationVar(&requestTimeout, "timeout", 0, "per-request timeout (default: 10s)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	// cobra prints usage on returned errors; runtime failures are
	// reported directly instead.
	cmd.SilenceUsage = true

	flags := map[string]interface{}{
		"url": args[0],
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if elementKind != "" {
		flags["element"] = elementKind
	}
	if rateLimit > 0 {
		flags["requests-per-minute"] = rateLimit
	}
	if rateStrategy != "" {
		flags["rate-strategy"] = rateStrategy
	}
	if concurrent > 0 {
		flags["concurrent-downloads"] = concurrent
	}
	if requestTimeout > 0 {
		flags["request-timeout"] = requestTimeout
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	s, err := scraper.New(cfg)
	if err != nil {
		return err
	}

	summary, err := s.Run(context.Background())
	if err != nil {
		ui.PrintError("Download failed", err.Error())
		return err
	}

	ui.PrintInfo("Summary", fmt.Sprintf("%d found, %d downloaded, %d skipped",
		summary.ElementsFound, summary.Downloaded, summary.Skipped))
	return nil
}
