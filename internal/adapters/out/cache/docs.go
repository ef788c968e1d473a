// Package cache implements ports.Cache on Redis and in process memory.
//
// Both implementations are best effort. Backend failures are logged, counted
// and reported to the caller as a miss, never as an error, so a cache outage
// degrades latency but not correctness.
package cache

// Recorder receives cache lookups and backend failures. *metrics.Metrics implements it.
type Recorder interface {
	RecordCacheLookup(hit bool)
	RecordCacheError(op string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheLookup(bool)  {}
func (nopRecorder) RecordCacheError(string) {}
