package bench

import "go.uber.org/zap"

// options defines all configuration options for the runner.
type options struct {
	repetitions int // independent trials per operation
	innerLoops  int // invocations averaged within one trial
	logger      *zap.Logger
}

// Option is a function that configures the runner options.
type Option func(*options)

// WithRepetitions sets the number of independent trials per operation.
func WithRepetitions(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.repetitions = n
		}
	}
}

// WithInnerLoops sets how many consecutive invocations each trial averages.
func WithInnerLoops(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.innerLoops = n
		}
	}
}

// WithLogger sets the logger used for per-trial diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		repetitions: 3,
		innerLoops:  3,
		logger:      zap.NewNop(),
	}
}
