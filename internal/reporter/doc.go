// Package reporter periodically logs the counters of a running sync.
package reporter
