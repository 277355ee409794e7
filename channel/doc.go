// Package channel carries telemetry frames from one producer to any number
// of consumers over TCP.
//
// The producer side Listens and Serves, registering a Session per accepted
// connection. Broadcast never touches the network: each session owns a
// bounded outbox drained by its own writer goroutine, and when the outbox is
// full the oldest frame is dropped. A session whose write fails is marked
// dead and removed; the producer never sees the error.
//
// The consumer side Dials a Session and runs its ReceiveLoop, which
// reframes the byte stream and hands every decoded record to a callback in
// arrival order.
package channel
