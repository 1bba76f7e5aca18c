// Package ratelimit enforces the global call quota against the remote
// catalog API.
//
// Every outbound request, regardless of which worker issues it, passes
// through a single shared limiter so the per-second quota holds across the
// whole run.
//
// Implementation:
//
// Interval:
//   - Guarantees a minimum interval of 1/N seconds between grants,
//     where N is the configured calls-per-second quota
//   - One caller passes per interval; concurrent callers queue on the
//     limiter's mutex in arrival order
//
// Usage:
//
//	limiter := ratelimit.NewInterval(2) // 2 calls per second
//
//	limiter.Acquire()
//	// issue the request
package ratelimit
