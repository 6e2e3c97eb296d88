// Package core contains the PayzCore client contracts: configuration, the
// error taxonomy, domain types, and logging/metrics plumbing. Transport,
// webhook and storage packages depend on core; core depends on none of them.
package core
