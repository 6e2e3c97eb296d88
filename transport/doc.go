// Package transport executes authenticated JSON requests against the PayzCore
// API. Each logical request runs an explicit attempt loop: 2xx responses are
// returned, 4xx and 429 responses fail immediately, and 5xx responses or
// network failures are retried with 200ms*2^(n-1) backoff.
package transport
