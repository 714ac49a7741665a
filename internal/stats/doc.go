// Package stats counts completed transactions by kind and outcome.
//
// Memory keeps process-local counters that back the /stats endpoint.
// Redis mirrors the same counters into shared hashes, with per-minute
// buckets that expire.
package stats
