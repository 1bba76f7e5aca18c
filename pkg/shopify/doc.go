// Package shopify talks to the remote admin catalog API.
//
// It contains the request executor (rate-limited, retrying, Retry-After
// aware), the paginated product fetcher and the TTL-bounded product cache.
// Every outbound call in the program goes through Client.Do, so the retry
// policy and the call quota live in exactly one place.
package shopify
