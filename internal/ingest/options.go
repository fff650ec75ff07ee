package ingest

import (
	"time"

	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

type options struct {
	logger   *zap.Logger
	debounce time.Duration
}

// Option configures an Importer or a Watcher.
type Option func(*options)

// WithLogger sets a logger for import and watch events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDebounce sets how long the watcher waits for writes to a file to settle.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{debounce: defaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
