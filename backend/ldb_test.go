package backend

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func TestToDBKey_LayoutIsPrefixThenIdThenRest(t *testing.T) {
	id := []byte{0x01, 0x02}
	key := ToDBKey(BlockMetaKey, id)
	require.Equal(t, []byte{'B', 0x01, 0x02}, key)

	key = ToDBKey(TrieEntryKey, id, []byte("some/key"))
	require.Equal(t, append([]byte{'E', 0x01, 0x02}, "some/key"...), key)

	key = ToDBKey(TrieEntryKey, id, []byte("a"), []byte("b"))
	require.Equal(t, append([]byte{'E', 0x01, 0x02}, "ab"...), key)
}

func TestToDBKey_TableSpacesDoNotCollide(t *testing.T) {
	id := []byte{0x01}
	require.False(t, bytes.Equal(ToDBKey(BlockMetaKey, id), ToDBKey(TrieEntryKey, id)))
}

func TestOpenLevelDb_RoundTripAndPrefixScan(t *testing.T) {
	db, err := OpenLevelDb(t.TempDir(), nil)
	require.NoError(t, err)
	defer db.Close()

	id := []byte{0x07}
	other := []byte{0x08}
	require.NoError(t, db.Put(ToDBKey(TrieEntryKey, id, []byte("k1")), []byte("v1"), nil))
	require.NoError(t, db.Put(ToDBKey(TrieEntryKey, id, []byte("k2")), []byte("v2"), nil))
	require.NoError(t, db.Put(ToDBKey(TrieEntryKey, other, []byte("k3")), []byte("v3"), nil))

	value, err := db.Get(ToDBKey(TrieEntryKey, id, []byte("k1")), nil)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), value)

	// a prefix scan over one block's entries must not leak into another's
	prefix := ToDBKey(TrieEntryKey, id)
	iter := db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()[len(prefix):]))
	}
	require.NoError(t, iter.Error())
	require.Equal(t, []string{"k1", "k2"}, keys)
}
