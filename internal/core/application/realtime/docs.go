// Package realtime fans lifecycle events out to live connections.
//
// Registry is the bidirectional index of tracking number to connections and
// connection to tracking numbers. Broadcaster looks subscribers up in the
// Registry and gives every connection its own FIFO mailbox drained by one
// writer goroutine, so a slow or broken connection never stalls the others
// and a single tracking number's events reach each subscriber in order.
package realtime
