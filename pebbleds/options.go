package pebbleds

// options defines the configuration of a pebble-backed dataset.
type options struct {
	batchSize    int
	cacheSize    int64
	maxOpenFiles int
}

// Option is a function that configures the dataset options.
type Option func(*options)

// WithBatchSize sets how many records are written per pebble batch.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithCacheSize sets the pebble block cache size in bytes. Zero leaves the
// pebble default.
func WithCacheSize(bytes int64) Option {
	return func(o *options) {
		o.cacheSize = bytes
	}
}

// WithMaxOpenFiles caps the number of files pebble keeps open.
func WithMaxOpenFiles(n int) Option {
	return func(o *options) {
		o.maxOpenFiles = n
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		batchSize:    1000,
		maxOpenFiles: 500,
	}
}
