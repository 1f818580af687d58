// Package resolve evaluates parsed template expressions against a profile,
// a collection's chain table, and a resolver-owned payload cache.
//
// The resolver performs no network I/O of its own: response-backed chains
// are fetched through the Fetcher capability the host supplies, and wall
// clock reads for TTL comparison go through the Clock capability, so the
// whole package is testable with a fake clock and a fake fetcher.
//
// Concurrency: resolutions of the same chain under a cache miss coalesce
// into a single outstanding fetch. The cache's lock covers only the
// lookup-or-register step, never the fetch itself, and a caller cancelled
// mid-fetch does not disturb other waiters on the same fetch.
package resolve
