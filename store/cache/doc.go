// Package cachestore caches payment reads with go-repository-cache and
// evicts them when webhooks report a change.
package cachestore
