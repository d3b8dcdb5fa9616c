// Package ratelimit provides rate limiting for outbound download requests.
//
// The limiting resource is the remote server's tolerance, not local
// capacity, so a single limiter instance is shared by reference across
// every download worker.
//
// Available Implementations:
//
// Interval:
//   - Enforces a minimum wall-clock gap between successive request starts
//   - Gap is 60s divided by the configured requests-per-minute budget
//   - Default implementation used by the downloader
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for burst traffic followed by quiet periods
//
// Sliding Window:
//   - Tracks requests within a moving time window
//   - Better for consistent request patterns
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Interval: one request every six seconds
//	limiter := ratelimit.NewInterval(10)
//
//	// Block until this worker's turn, then fetch
//	limiter.Wait()
//	// Proceed with request
package ratelimit
