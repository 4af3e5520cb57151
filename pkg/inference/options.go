package inference

import "time"

type Option func(*Adapter) error

// WithSink adds an EventSink. Records are published to all sinks in the order they were added.
func WithSink(sink EventSink) Option {
	return func(a *Adapter) error {
		a.sinks = append(a.sinks, sink)
		return nil
	}
}

func WithTokenCounter(counter TokenCounter) Option {
	return func(a *Adapter) error {
		a.tokens = counter
		return nil
	}
}

func WithClock(clock func() time.Time) Option {
	return func(a *Adapter) error {
		a.now = clock
		return nil
	}
}
