package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centreon/go-broker/internal/core/storage/engine"
	"github.com/centreon/go-broker/internal/core/storage/engine/badger"
)

func testStore(t *testing.T, prefix string) *Store {
	t.Helper()

	eng, err := badger.New(engine.DefaultConfig(filepath.Join(t.TempDir(), "kv.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	return New(eng, []byte(prefix))
}

func TestStore_PrefixIsolation(t *testing.T) {
	cache := testStore(t, "c/")
	spool := New(cache.Engine(), []byte("q/"))

	require.NoError(t, cache.Put([]byte("k"), []byte("cache")))
	require.NoError(t, spool.Put([]byte("k"), []byte("spool")))

	v, err := cache.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("cache"), v)

	raw, err := cache.Engine().Get([]byte("q/k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("spool"), raw)
}

func TestStore_Uint64(t *testing.T) {
	s := testStore(t, "m/")

	_, err := s.GetUint64([]byte("tail"))
	assert.True(t, engine.IsNotFound(err))

	n, err := s.IncrUint64([]byte("tail"), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	require.NoError(t, s.PutUint64([]byte("head"), 1))
	head, err := s.GetUint64([]byte("head"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), head)

	require.NoError(t, s.Put([]byte("bad"), []byte{1, 2}))
	_, err = s.GetUint64([]byte("bad"))
	assert.True(t, engine.IsCorrupted(err))
}

func TestStore_SequenceKeysScanInOrder(t *testing.T) {
	s := testStore(t, "c/")
	for _, seq := range []uint64{256, 1, 65536, 2} {
		require.NoError(t, s.Put(append([]byte("e/"), EncodeUint64(seq)...), nil))
	}

	var got []uint64
	require.NoError(t, s.PrefixScan([]byte("e/"), func(key, _ []byte) bool {
		seq, err := DecodeUint64(key[2:])
		require.NoError(t, err)
		got = append(got, seq)
		return true
	}))
	assert.Equal(t, []uint64{1, 2, 256, 65536}, got)

	count, err := s.Count([]byte("e/"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestStore_DeletePrefix(t *testing.T) {
	s := testStore(t, "q/")
	rrd := s.SubStore([]byte("rrd/"))
	sql := s.SubStore([]byte("sql/"))

	require.NoError(t, rrd.Put([]byte("a"), nil))
	require.NoError(t, rrd.Put([]byte("b"), nil))
	require.NoError(t, sql.Put([]byte("a"), nil))

	require.NoError(t, rrd.DeletePrefix(nil))
	require.NoError(t, rrd.DeletePrefix(nil), "empty prefix delete is a no-op")

	keys, err := rrd.Keys(nil)
	require.NoError(t, err)
	assert.Empty(t, keys)

	ok, err := sql.Has([]byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("q/sql/"), sql.Prefix())
}

func TestStore_BatchAndTransaction(t *testing.T) {
	s := testStore(t, "c/")

	b := s.NewBatch()
	b.Put([]byte("e/1"), []byte("x"))
	b.PutUint64([]byte("m/tail"), 1)
	assert.Equal(t, 2, b.Size())
	require.NoError(t, b.Write())

	txn := s.NewTransaction(true)
	defer txn.Discard()
	v, err := txn.Get([]byte("e/1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), v)
	require.NoError(t, txn.Delete([]byte("e/1")))
	require.NoError(t, txn.Set([]byte("m/head"), EncodeUint64(1)))
	require.NoError(t, txn.Commit())

	_, err = s.Get([]byte("e/1"))
	assert.True(t, engine.IsNotFound(err))
	head, err := s.GetUint64([]byte("m/head"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), head)
}
