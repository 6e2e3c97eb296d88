// Package webhooks verifies and parses PayzCore webhook deliveries.
//
// Signatures are hex HMAC-SHA256 over "<timestamp>.<body>" and are rejected
// outside the replay window. Delivery processing is driven by a claim
// lifecycle: pending/retry_ready -> processing -> processed|dead.
package webhooks
