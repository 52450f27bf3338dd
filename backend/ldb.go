package backend

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// TableSpace divides a key-value storage into spaces by adding a prefix to the key.
type TableSpace byte

const (
	// BlockMetaKey is a tablespace for per-block metadata records
	BlockMetaKey TableSpace = 'B'
	// TrieEntryKey is a tablespace for key-to-value-hash entries staged by a block
	TrieEntryKey TableSpace = 'E'
)

// ToDBKey assembles a database key from the table space prefix, the block
// identifier and an optional trailing part. Unlike fixed-size key schemes,
// trailing parts may be of arbitrary length since logical keys are
// caller-defined strings.
func ToDBKey(t TableSpace, id []byte, rest ...[]byte) []byte {
	size := 1 + len(id)
	for _, r := range rest {
		size += len(r)
	}
	key := make([]byte, 0, size)
	key = append(key, byte(t))
	key = append(key, id...)
	for _, r := range rest {
		key = append(key, r...)
	}
	return key
}

// LevelDB is an interface missing in original LevelDB design.
// It contains methods common for the LevelDB instance and its Transactions.
// It allows for easy switching between transactional and non-transactional accesses.
type LevelDB interface {

	// Get gets the value for the given key. It returns ErrNotFound if the
	// DB does not contain the key.
	//
	// The returned slice is its own copy, it is safe to modify the contents
	// of the returned slice.
	// It is safe to modify the contents of the argument after Get returns.
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)

	// Has returns true if the DB does contain the given key.
	//
	// It is safe to modify the contents of the argument after Has returns.
	Has(key []byte, ro *opt.ReadOptions) (bool, error)

	// NewIterator returns an iterator for the latest snapshot of the
	// underlying DB.
	// The returned iterator is not safe for concurrent use, but it is safe to use
	// multiple iterators concurrently, with each in a dedicated goroutine.
	//
	// Slice allows slicing the iterator to only contain keys in the given
	// range. A nil Range.Start is treated as a key before all keys in the
	// DB. And a nil Range.Limit is treated as a key after all keys in
	// the DB.
	//
	// The iterator must be released after use, by calling Release method.
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator

	// Put sets the value for the given key. It overwrites any previous value
	// for that key; a DB is not a multi-map.
	//
	// It is safe to modify the contents of the arguments after Put returns.
	Put(key, value []byte, wo *opt.WriteOptions) error

	// Delete deletes the value for the given key.
	//
	// It is safe to modify the contents of the arguments after Delete returns.
	Delete(key []byte, wo *opt.WriteOptions) error

	// Write applies the given batch to the DB. The batch records will be applied
	// sequentially.
	//
	// It is safe to modify the contents of the arguments after Write returns but
	// not before. Write will not modify content of the batch.
	Write(batch *leveldb.Batch, wo *opt.WriteOptions) error
}

// OpenLevelDb opens the LevelDB instance in the given directory.
func OpenLevelDb(path string, options *opt.Options) (*leveldb.DB, error) {
	return leveldb.OpenFile(path, options)
}
