// Package codec provides generic value serialization for the storage-backed
// dataset variants.
package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Codec serializes and deserializes values of a single type.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// Gob returns a Codec backed by encoding/gob.
func Gob[T any]() Codec[T] {
	return gobCodec[T]{}
}

type gobCodec[T any] struct{}

func (gobCodec[T]) Encode(value T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec[T]) Decode(data []byte) (T, error) {
	var value T
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&value); err != nil {
		return value, fmt.Errorf("codec: decode: %w", err)
	}
	return value, nil
}

// KeyBytes returns a stable byte representation of a key, used for hash
// partitioning. Two equal keys always produce equal bytes.
func KeyBytes[K comparable](key K) []byte {
	return fmt.Appendf(nil, "%v", key)
}
