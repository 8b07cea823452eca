// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): persistence, indexes, inference backends,
// and external tools.
package driven
