// Package caption turns movie frames into short visual descriptions using an
// OpenRouter-compatible vision chat completion API.
//
// The client retries transient failures (rate limits, server errors,
// timeouts) with exponential backoff and honors Retry-After headers. Retry
// behavior and sleeping are injectable for tests.
package caption
