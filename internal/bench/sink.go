package bench

// Sink is any consumer that redraws from the full current measurement mapping, such as a table or
// a chart. Publish always receives the complete mapping, never a delta.
type Sink interface {
	Publish(snapshot Snapshot) error
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(snapshot Snapshot) error

// Publish calls f(snapshot).
func (f SinkFunc) Publish(snapshot Snapshot) error {
	return f(snapshot)
}

// NoopSink implements the Sink interface but discards every snapshot.
type NoopSink struct{}

// Publish noops.
func (NoopSink) Publish(Snapshot) error {
	return nil
}
