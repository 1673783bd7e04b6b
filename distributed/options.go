package distributed

import (
	"go.uber.org/zap"

	"github.com/thunder-project/thunder/codec"
	"github.com/thunder-project/thunder/distributed/shuffle"
	"github.com/thunder-project/thunder/distributed/shuffle/inmemory"
)

// options defines the configuration of a partitioned dataset. Derived
// datasets inherit the options of their source.
type options[K comparable, V any] struct {
	partitions int
	keyBytes   func(K) []byte
	store      shuffle.Factory[K, V]
	logger     *zap.Logger
}

// Option is a function that configures the dataset options.
type Option[K comparable, V any] func(*options[K, V])

// WithPartitions sets the number of partitions records are scattered over.
func WithPartitions[K comparable, V any](n int) Option[K, V] {
	return func(o *options[K, V]) {
		o.partitions = n
	}
}

// WithKeyBytes sets the byte representation used to hash keys into
// partitions. Equal keys must map to equal bytes.
func WithKeyBytes[K comparable, V any](fn func(K) []byte) Option[K, V] {
	return func(o *options[K, V]) {
		o.keyBytes = fn
	}
}

// WithStore sets the shuffle store factory used by GroupByKey.
func WithStore[K comparable, V any](factory shuffle.Factory[K, V]) Option[K, V] {
	return func(o *options[K, V]) {
		o.store = factory
	}
}

// WithLogger sets the logger used for per-operation diagnostics.
func WithLogger[K comparable, V any](logger *zap.Logger) Option[K, V] {
	return func(o *options[K, V]) {
		o.logger = logger
	}
}

// defaultOptions returns the default configuration.
func defaultOptions[K comparable, V any]() options[K, V] {
	return options[K, V]{
		partitions: 4,
		keyBytes:   codec.KeyBytes[K],
		store:      inmemory.Factory[K, V](),
		logger:     zap.NewNop(),
	}
}
