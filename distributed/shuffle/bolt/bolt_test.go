package bolt_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunder-project/thunder/codec"
	"github.com/thunder-project/thunder/distributed/shuffle/bolt"
)

func newStore(t *testing.T) *bolt.Store[string, int] {
	t.Helper()
	s, err := bolt.New(
		filepath.Join(t.TempDir(), "shuffle.db"),
		codec.Gob[string](),
		codec.Gob[int](),
	)
	require.NoError(t, err)
	return s
}

func TestStore(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Append("alpha", 1))
	require.NoError(t, s.Append("beta", 10))
	require.NoError(t, s.Append("alpha", 2))
	require.NoError(t, s.Append("alpha", 3))

	groups := map[string][]int{}
	err := s.Groups(func(key string, values []int) error {
		groups[key] = append([]int(nil), values...)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, map[string][]int{
		"alpha": {1, 2, 3},
		"beta":  {10},
	}, groups)
	assert.NoError(t, s.Close())
}

func TestStore_valueOrderWithinGroup(t *testing.T) {
	s := newStore(t)
	defer s.Close()

	// Append order must survive the composite-key encoding.
	want := []int{5, 4, 3, 2, 1}
	for _, v := range want {
		require.NoError(t, s.Append("k", v))
	}

	var got []int
	err := s.Groups(func(_ string, values []int) error {
		got = append(got, values...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_keysOfDifferentLengths(t *testing.T) {
	s := newStore(t)
	defer s.Close()

	require.NoError(t, s.Append("a", 1))
	require.NoError(t, s.Append("aa", 2))
	require.NoError(t, s.Append("a", 3))

	groups := map[string][]int{}
	err := s.Groups(func(key string, values []int) error {
		groups[key] = append([]int(nil), values...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string][]int{"a": {1, 3}, "aa": {2}}, groups)
}

func TestStore_closeRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shuffle.db")
	s, err := bolt.New(path, codec.Gob[string](), codec.Gob[int]())
	require.NoError(t, err)

	require.NoError(t, s.Append("a", 1))
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFactory(t *testing.T) {
	dir := t.TempDir()
	factory := bolt.Factory(dir, codec.Gob[string](), codec.Gob[int]())

	s1, err := factory()
	require.NoError(t, err)
	s2, err := factory()
	require.NoError(t, err)

	// Distinct stores must not share state.
	require.NoError(t, s1.Append("a", 1))
	err = s2.Groups(func(string, []int) error {
		t.Fatal("no groups expected in second store")
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, s1.Close())
	assert.NoError(t, s2.Close())
}
