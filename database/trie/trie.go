package trie

import (
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/sable-db/sable/go/backend"
	"github.com/sable-db/sable/go/common"
)

const (
	// ErrNotFound is produced when a key has no binding reachable from the
	// queried chain tip.
	ErrNotFound = common.ConstError("not found")
	// ErrUnknownBlock is produced when a block id is not part of the trie's
	// committed history.
	ErrUnknownBlock = common.ConstError("unknown block")
	// ErrNonMatchingForks is produced when two block ids exist but do not
	// share an ancestor-descendant relation.
	ErrNonMatchingForks = common.ConstError("non-matching forks")
	// ErrBlockExists is produced when a transaction attempts to create a
	// block under an identifier that is already committed.
	ErrBlockExists = common.ConstError("block already exists")
	// ErrTransactionOpen is produced when a second transaction is begun
	// while another one is still in progress.
	ErrTransactionOpen = common.ConstError("another transaction is already open")
)

// Trie is a versioned, Merkle-authenticated key router. Every committed
// block holds the set of key-to-value-hash entries staged by that block plus
// a parent link, so a lookup at a chain tip resolves the newest binding
// along the tip's ancestor chain. Each block records the root hash
// authenticating its fully materialized key space, from which membership
// proofs are produced.
//
// The trie stores value hashes only, never raw values; resolving a hash to
// its bytes is the side store's concern.
type Trie struct {
	db     backend.LevelDB
	closer func() error
	txOpen atomic.Bool
}

// blockMeta is the per-block record persisted in the block tablespace.
type blockMeta struct {
	Parent      common.BlockID
	Height      uint32
	Root        common.Hash
	Unconfirmed bool
}

// OpenTrie opens the trie persisted in the given directory, creating an
// empty one if the directory holds no data yet.
func OpenTrie(directory string) (*Trie, error) {
	db, err := backend.OpenLevelDb(directory, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open trie index at %s; %s", directory, err)
	}
	return &Trie{db: db, closer: db.Close}, nil
}

func (t *Trie) Close() error {
	if t.txOpen.Load() {
		return fmt.Errorf("cannot close trie with an open transaction")
	}
	if t.closer != nil {
		return t.closer()
	}
	return nil
}

// HasBlock tests whether the given block id is part of the committed
// history. The genesis sentinel is always considered present.
func (t *Trie) HasBlock(id common.BlockID) (bool, error) {
	if id.IsGenesis() {
		return true, nil
	}
	_, found, err := t.getBlockMeta(id)
	return found, err
}

// Get resolves the newest binding of the given key along the ancestor chain
// of the given tip. It yields ErrNotFound if no block on the chain staged
// the key, and ErrUnknownBlock if the tip itself is not committed.
func (t *Trie) Get(tip common.BlockID, key string) (common.Hash, error) {
	current := tip
	for !current.IsGenesis() {
		data, err := t.db.Get(backend.ToDBKey(backend.TrieEntryKey, current[:], []byte(key)), nil)
		if err == nil {
			var hash common.Hash
			if len(data) != len(hash) {
				return hash, fmt.Errorf("corrupted entry for key %q in block %s", key, current)
			}
			copy(hash[:], data)
			return hash, nil
		}
		if err != leveldb.ErrNotFound {
			return common.Hash{}, err
		}
		meta, found, err := t.getBlockMeta(current)
		if err != nil {
			return common.Hash{}, err
		}
		if !found {
			return common.Hash{}, ErrUnknownBlock
		}
		current = meta.Parent
	}
	return common.Hash{}, ErrNotFound
}

// GetWithProof resolves the key like Get and additionally produces a
// membership proof against the root hash of the given tip.
func (t *Trie) GetWithProof(tip common.BlockID, key string) (common.Hash, *Proof, error) {
	entries, err := t.materialize(tip)
	if err != nil {
		return common.Hash{}, nil, err
	}
	proof, found := merkleProofOf(entries, key)
	if !found {
		return common.Hash{}, nil, ErrNotFound
	}
	return proof.ValueHash, proof, nil
}

// GetRootHashAt returns the root hash authenticating the state at the given
// tip. The genesis sentinel is authenticated by the zero hash.
func (t *Trie) GetRootHashAt(tip common.BlockID) (common.Hash, error) {
	if tip.IsGenesis() {
		return common.Hash{}, nil
	}
	meta, found, err := t.getBlockMeta(tip)
	if err != nil {
		return common.Hash{}, err
	}
	if !found {
		return common.Hash{}, ErrUnknownBlock
	}
	return meta.Root, nil
}

// GetBlockHeightOf returns the height of ref on the ancestor chain of tip.
// The second result reports whether ref was found on the chain at all;
// the genesis sentinel is found at height 0 on every chain.
func (t *Trie) GetBlockHeightOf(tip, ref common.BlockID) (uint32, bool, error) {
	if ref.IsGenesis() {
		return 0, true, nil
	}
	current := tip
	for !current.IsGenesis() {
		meta, found, err := t.getBlockMeta(current)
		if err != nil {
			return 0, false, err
		}
		if !found {
			return 0, false, ErrUnknownBlock
		}
		if current == ref {
			return meta.Height, true, nil
		}
		current = meta.Parent
	}
	return 0, false, nil
}

// GetBlockAtHeight returns the ancestor of tip at the given height, or
// false if the height exceeds the chain length. Height 0 yields the genesis
// sentinel.
func (t *Trie) GetBlockAtHeight(tip common.BlockID, height uint32) (common.BlockID, bool, error) {
	if height == 0 {
		return common.SentinelBlockID(), true, nil
	}
	if tip.IsGenesis() {
		return common.BlockID{}, false, nil
	}
	current := tip
	for {
		meta, found, err := t.getBlockMeta(current)
		if err != nil {
			return common.BlockID{}, false, err
		}
		if !found {
			return common.BlockID{}, false, ErrUnknownBlock
		}
		if meta.Height < height {
			return common.BlockID{}, false, nil
		}
		if meta.Height == height {
			return current, true, nil
		}
		current = meta.Parent
		if current.IsGenesis() {
			return common.BlockID{}, false, nil
		}
	}
}

// CheckAncestorBlockHash verifies that the candidate block shares a fork
// with the given tip, i.e. one of the two is an ancestor-or-self of the
// other. It yields ErrUnknownBlock for candidates outside the committed
// history and ErrNonMatchingForks for unrelated committed blocks.
func (t *Trie) CheckAncestorBlockHash(tip, candidate common.BlockID) error {
	if candidate.IsGenesis() {
		return nil
	}
	candidateMeta, found, err := t.getBlockMeta(candidate)
	if err != nil {
		return err
	}
	if !found {
		return ErrUnknownBlock
	}
	if tip.IsGenesis() {
		// every committed block descends from the sentinel
		return nil
	}
	tipMeta, found, err := t.getBlockMeta(tip)
	if err != nil {
		return err
	}
	if !found {
		return ErrUnknownBlock
	}

	// Walk the higher block down to the height of the lower one; the two
	// share a fork exactly if the walk ends at the lower block.
	upper, lower := tip, candidate
	upperMeta, lowerMeta := tipMeta, candidateMeta
	if upperMeta.Height < lowerMeta.Height {
		upper, lower = lower, upper
		upperMeta, lowerMeta = lowerMeta, upperMeta
	}
	current, currentMeta := upper, upperMeta
	for currentMeta.Height > lowerMeta.Height {
		parent := currentMeta.Parent
		if parent.IsGenesis() {
			return ErrNonMatchingForks
		}
		meta, found, err := t.getBlockMeta(parent)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("missing ancestor %s of block %s", parent, upper)
		}
		current, currentMeta = parent, meta
	}
	if current != lower {
		return ErrNonMatchingForks
	}
	return nil
}

// BeginTransaction opens a new transaction against this trie. At most one
// transaction may be in progress at a time; the transaction must be closed
// by one of its terminal operations before another one can be begun.
func (t *Trie) BeginTransaction() (*Transaction, error) {
	if !t.txOpen.CompareAndSwap(false, true) {
		return nil, ErrTransactionOpen
	}
	return &Transaction{trie: t, staged: map[string]common.Hash{}}, nil
}

func (t *Trie) getBlockMeta(id common.BlockID) (blockMeta, bool, error) {
	data, err := t.db.Get(backend.ToDBKey(backend.BlockMetaKey, id[:]), nil)
	if err == leveldb.ErrNotFound {
		return blockMeta{}, false, nil
	}
	if err != nil {
		return blockMeta{}, false, err
	}
	var meta blockMeta
	if err := rlp.DecodeBytes(data, &meta); err != nil {
		return blockMeta{}, false, fmt.Errorf("corrupted metadata of block %s; %s", id, err)
	}
	return meta, true, nil
}

// materialize collects the full key-to-value-hash map visible at the given
// tip by walking its ancestor chain, newest binding first.
func (t *Trie) materialize(tip common.BlockID) (map[string]common.Hash, error) {
	entries := map[string]common.Hash{}
	current := tip
	for !current.IsGenesis() {
		meta, found, err := t.getBlockMeta(current)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrUnknownBlock
		}
		if err := t.collectEntries(current, entries); err != nil {
			return nil, err
		}
		current = meta.Parent
	}
	return entries, nil
}

// collectEntries adds the entries staged by the given block to the map,
// skipping keys already bound by a younger block.
func (t *Trie) collectEntries(id common.BlockID, entries map[string]common.Hash) error {
	prefix := backend.ToDBKey(backend.TrieEntryKey, id[:])
	iter := t.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		key := string(iter.Key()[len(prefix):])
		if _, exists := entries[key]; exists {
			continue
		}
		var hash common.Hash
		if len(iter.Value()) != len(hash) {
			return fmt.Errorf("corrupted entry for key %q in block %s", key, id)
		}
		copy(hash[:], iter.Value())
		entries[key] = hash
	}
	return iter.Error()
}

// blockHeight resolves the committed height of the given block; the genesis
// sentinel has height 0.
func (t *Trie) blockHeight(id common.BlockID) (uint32, error) {
	if id.IsGenesis() {
		return 0, nil
	}
	meta, found, err := t.getBlockMeta(id)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrUnknownBlock
	}
	return meta.Height, nil
}
