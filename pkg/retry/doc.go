// Package retry provides the backoff strategies used by the request
// executor when a call to the remote catalog API fails transiently.
//
// Features:
//   - Exponential, linear and constant backoff
//   - Optional jitter to avoid thundering herd problems
//   - Context-aware waiting for cancellation
//
// Basic usage:
//
//	backoff := retry.DefaultExponentialBackoff()
//	for attempt := 1; attempt <= maxAttempts; attempt++ {
//		if err := op(); err == nil {
//			break
//		}
//		if err := retry.Wait(ctx, backoff.NextDelay(attempt)); err != nil {
//			return err // cancelled
//		}
//	}
package retry
