// Package bolt implements a shuffle store backed by a bbolt database file,
// keeping intermediate groups off the heap. Stores are temporary: Close
// removes the backing file.
package bolt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"github.com/thunder-project/thunder/codec"
	"github.com/thunder-project/thunder/distributed/shuffle"
)

var bucketName = []byte("groups")

// Store appends each value under a composite key of encoded group key plus
// append sequence, so a cursor scan yields same-key values adjacently and in
// append order.
type Store[K comparable, V any] struct {
	db   *bbolt.DB
	keys codec.Codec[K]
	vals codec.Codec[V]
	seq  uint64
}

func New[K comparable, V any](path string, keys codec.Codec[K], vals codec.Codec[V]) (*Store[K, V], error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open shuffle store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}

	return &Store[K, V]{db: db, keys: keys, vals: vals}, nil
}

var storeSeq atomic.Uint64

// Factory returns a shuffle.Factory creating one store file per call under
// dir.
func Factory[K comparable, V any](dir string, keys codec.Codec[K], vals codec.Codec[V]) shuffle.Factory[K, V] {
	return func() (shuffle.Store[K, V], error) {
		path := filepath.Join(dir, fmt.Sprintf("shuffle-%d.db", storeSeq.Add(1)))
		return New(path, keys, vals)
	}
}

func (s *Store[K, V]) Append(key K, value V) error {
	keyBytes, err := s.keys.Encode(key)
	if err != nil {
		return fmt.Errorf("bolt: encode key: %w", err)
	}
	valBytes, err := s.vals.Encode(value)
	if err != nil {
		return fmt.Errorf("bolt: encode value: %w", err)
	}

	entry := compositeKey(keyBytes, s.seq)
	s.seq++

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(entry, valBytes)
	})
	if err != nil {
		return fmt.Errorf("bolt: append: %w", err)
	}
	return nil
}

func (s *Store[K, V]) Groups(fn func(key K, values []V) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		var (
			groupKey []byte
			values   []V
		)

		flush := func() error {
			if groupKey == nil {
				return nil
			}
			key, err := s.keys.Decode(groupKey)
			if err != nil {
				return fmt.Errorf("bolt: decode key: %w", err)
			}
			return fn(key, values)
		}

		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			keyBytes := splitCompositeKey(k)
			if !bytes.Equal(keyBytes, groupKey) {
				if err := flush(); err != nil {
					return err
				}
				groupKey = append([]byte(nil), keyBytes...)
				values = nil
			}

			value, err := s.vals.Decode(v)
			if err != nil {
				return fmt.Errorf("bolt: decode value: %w", err)
			}
			values = append(values, value)
		}
		return flush()
	})
}

// Close closes the database and removes its file.
func (s *Store[K, V]) Close() error {
	path := s.db.Path()
	if err := s.db.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// compositeKey lays out the entry as
// [keyLen uint32][keyBytes][seq uint64], all big-endian, so bucket order
// groups equal keys together with their values in append order.
func compositeKey(keyBytes []byte, seq uint64) []byte {
	entry := make([]byte, 4+len(keyBytes)+8)
	binary.BigEndian.PutUint32(entry, uint32(len(keyBytes)))
	copy(entry[4:], keyBytes)
	binary.BigEndian.PutUint64(entry[4+len(keyBytes):], seq)
	return entry
}

func splitCompositeKey(entry []byte) []byte {
	n := binary.BigEndian.Uint32(entry)
	return entry[4 : 4+n]
}
