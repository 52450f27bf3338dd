package trie

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/sable-db/sable/go/backend"
	"github.com/sable-db/sable/go/common"
)

// Transaction stages the entries of a single block under construction.
// Writes are collected in memory and hit the trie only when one of the
// terminal operations persists them in a single atomic batch. Every
// transaction ends in exactly one terminal operation - CommitTo, Commit,
// CommitMined, DropCurrent or DropUnconfirmed - after which the transaction
// is closed and the trie accepts a new one.
type Transaction struct {
	trie        *Trie
	base        common.BlockID
	next        common.BlockID
	unconfirmed bool
	staged      map[string]common.Hash
	order       []string
	begun       bool
	closed      bool
}

// unconfirmedBlockID derives the deterministic identifier of the
// unconfirmed-state region rooted at the given block, so that a later
// transaction can re-attach to previously committed unconfirmed state.
func unconfirmedBlockID(current common.BlockID) common.BlockID {
	data := make([]byte, 0, len(current)+12)
	data = append(data, current[:]...)
	data = append(data, ":unconfirmed"...)
	return common.BlockID(common.Keccak256(data))
}

// Begin roots this transaction at the committed block current and stages
// writes under the provisional identifier next. The provisional identifier
// must not collide with committed history.
func (tx *Transaction) Begin(current, next common.BlockID) error {
	if err := tx.checkFresh(); err != nil {
		return err
	}
	has, err := tx.trie.HasBlock(current)
	if err != nil {
		return err
	}
	if !has {
		return ErrUnknownBlock
	}
	nextExists, err := tx.trie.HasBlock(next)
	if err != nil {
		return err
	}
	if nextExists {
		return ErrBlockExists
	}
	tx.base = current
	tx.next = next
	tx.begun = true
	return nil
}

// BeginUnconfirmed roots this transaction at the committed block current
// and stages writes into the unconfirmed-state region derived from it.
// If the region was committed before, the transaction attaches to it.
func (tx *Transaction) BeginUnconfirmed(current common.BlockID) error {
	if err := tx.checkFresh(); err != nil {
		return err
	}
	has, err := tx.trie.HasBlock(current)
	if err != nil {
		return err
	}
	if !has {
		return ErrUnknownBlock
	}
	tx.base = current
	tx.next = unconfirmedBlockID(current)
	tx.unconfirmed = true
	tx.begun = true
	return nil
}

func (tx *Transaction) checkFresh() error {
	if tx.closed {
		return fmt.Errorf("transaction already closed")
	}
	if tx.begun {
		return fmt.Errorf("transaction already begun")
	}
	return nil
}

func (tx *Transaction) checkOpen() error {
	if tx.closed {
		return fmt.Errorf("transaction already closed")
	}
	if !tx.begun {
		return fmt.Errorf("transaction not begun")
	}
	return nil
}

// InsertBatch stages the given key-to-value-hash bindings as one unit, in
// input order. Staging the same key again replaces its pending binding.
func (tx *Transaction) InsertBatch(keys []string, hashes []common.Hash) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	if len(keys) != len(hashes) {
		return fmt.Errorf("mismatched batch: %d keys, %d hashes", len(keys), len(hashes))
	}
	for i, key := range keys {
		if _, exists := tx.staged[key]; !exists {
			tx.order = append(tx.order, key)
		}
		tx.staged[key] = hashes[i]
	}
	return nil
}

// GetOpenChainTip returns the provisional identifier of the block being
// built by this transaction.
func (tx *Transaction) GetOpenChainTip() (common.BlockID, error) {
	if err := tx.checkOpen(); err != nil {
		return common.BlockID{}, err
	}
	return tx.next, nil
}

// GetOpenChainTipHeight returns the height the open block will have once
// committed.
func (tx *Transaction) GetOpenChainTipHeight() (uint32, error) {
	if err := tx.checkOpen(); err != nil {
		return 0, err
	}
	baseHeight, err := tx.trie.blockHeight(tx.base)
	if err != nil {
		return 0, err
	}
	return baseHeight + 1, nil
}

// Get resolves a key at the given tip. Lookups at the open provisional tip
// observe staged writes first and fall through to the chain the transaction
// is rooted at; lookups at any other tip read committed history only.
func (tx *Transaction) Get(tip common.BlockID, key string) (common.Hash, error) {
	if err := tx.checkOpen(); err != nil {
		return common.Hash{}, err
	}
	if tip != tx.next {
		return tx.trie.Get(tip, key)
	}
	if hash, exists := tx.staged[key]; exists {
		return hash, nil
	}
	start, err := tx.readBase()
	if err != nil {
		return common.Hash{}, err
	}
	if start.IsGenesis() {
		return common.Hash{}, ErrNotFound
	}
	return tx.trie.Get(start, key)
}

// GetWithProof resolves a key at the given tip like Get, with a membership
// proof against the root hash the tip currently authenticates. For the open
// provisional tip the proof is built over the staged state.
func (tx *Transaction) GetWithProof(tip common.BlockID, key string) (common.Hash, *Proof, error) {
	if err := tx.checkOpen(); err != nil {
		return common.Hash{}, nil, err
	}
	if tip != tx.next {
		return tx.trie.GetWithProof(tip, key)
	}
	entries, err := tx.materialize()
	if err != nil {
		return common.Hash{}, nil, err
	}
	proof, found := merkleProofOf(entries, key)
	if !found {
		return common.Hash{}, nil, ErrNotFound
	}
	return proof.ValueHash, proof, nil
}

// GetRootHashAt returns the root hash at the given tip; for the open
// provisional tip, the root covering the staged state.
func (tx *Transaction) GetRootHashAt(tip common.BlockID) (common.Hash, error) {
	if err := tx.checkOpen(); err != nil {
		return common.Hash{}, err
	}
	if tip != tx.next {
		return tx.trie.GetRootHashAt(tip)
	}
	entries, err := tx.materialize()
	if err != nil {
		return common.Hash{}, err
	}
	return merkleRootOf(entries), nil
}

// GetBlockHeightOf mirrors Trie.GetBlockHeightOf with the open provisional
// tip resolving to the height it will be committed at.
func (tx *Transaction) GetBlockHeightOf(tip, ref common.BlockID) (uint32, bool, error) {
	if err := tx.checkOpen(); err != nil {
		return 0, false, err
	}
	if ref == tx.next && tip == tx.next {
		height, err := tx.GetOpenChainTipHeight()
		return height, err == nil, err
	}
	if tip == tx.next {
		tip = tx.base
	}
	return tx.trie.GetBlockHeightOf(tip, ref)
}

// GetBlockAtHeight mirrors Trie.GetBlockAtHeight relative to the open tip.
func (tx *Transaction) GetBlockAtHeight(tip common.BlockID, height uint32) (common.BlockID, bool, error) {
	if err := tx.checkOpen(); err != nil {
		return common.BlockID{}, false, err
	}
	if tip == tx.next {
		openHeight, err := tx.GetOpenChainTipHeight()
		if err != nil {
			return common.BlockID{}, false, err
		}
		if height == openHeight {
			return tx.next, true, nil
		}
		if height > openHeight {
			return common.BlockID{}, false, nil
		}
		tip = tx.base
	}
	return tx.trie.GetBlockAtHeight(tip, height)
}

// CheckAncestorBlockHash verifies the candidate is the open tip itself or
// shares a fork with the block the transaction is rooted at.
func (tx *Transaction) CheckAncestorBlockHash(candidate common.BlockID) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	if candidate == tx.next {
		return nil
	}
	return tx.trie.CheckAncestorBlockHash(tx.base, candidate)
}

// CommitTo persists the staged block under its final identifier, which may
// differ from the provisional one the transaction was begun with. The block
// metadata and all staged entries are written in one atomic batch.
func (tx *Transaction) CommitTo(final common.BlockID) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	if tx.unconfirmed {
		return fmt.Errorf("unconfirmed transaction must be committed via Commit")
	}
	finalExists, err := tx.trie.HasBlock(final)
	if err != nil {
		return err
	}
	if finalExists {
		return ErrBlockExists
	}
	return tx.commitAs(final)
}

// CommitMined persists a speculatively built block under its final
// identifier. The trie-side effect is identical to CommitTo; dropping the
// side-store bookkeeping of the speculative tip is the caller's concern.
func (tx *Transaction) CommitMined(final common.BlockID) error {
	return tx.CommitTo(final)
}

// Commit persists the unconfirmed-state region under its derived
// identifier. Unlike CommitTo there is no rename: the identifier of the
// unconfirmed region is stable across commits, and re-committing replaces
// the region's root while keeping previously committed entries visible.
func (tx *Transaction) Commit() error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	if !tx.unconfirmed {
		return fmt.Errorf("confirmed transaction must be committed via CommitTo")
	}
	return tx.commitAs(tx.next)
}

func (tx *Transaction) commitAs(id common.BlockID) error {
	entries, err := tx.materialize()
	if err != nil {
		return err
	}
	baseHeight, err := tx.trie.blockHeight(tx.base)
	if err != nil {
		return err
	}
	meta, err := rlp.EncodeToBytes(blockMeta{
		Parent:      tx.base,
		Height:      baseHeight + 1,
		Root:        merkleRootOf(entries),
		Unconfirmed: tx.unconfirmed,
	})
	if err != nil {
		return fmt.Errorf("failed to encode metadata of block %s; %s", id, err)
	}

	batch := new(leveldb.Batch)
	batch.Put(backend.ToDBKey(backend.BlockMetaKey, id[:]), meta)
	for _, key := range tx.order {
		hash := tx.staged[key]
		batch.Put(backend.ToDBKey(backend.TrieEntryKey, id[:], []byte(key)), hash.ToBytes())
	}
	if err := tx.trie.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to commit block %s; %s", id, err)
	}
	tx.close()
	return nil
}

// DropCurrent discards the in-progress block entirely. Nothing was
// persisted before commit, so the staged state is simply abandoned.
func (tx *Transaction) DropCurrent() error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	tx.close()
	return nil
}

// DropUnconfirmed discards the in-progress staged state and removes any
// previously committed content of the unconfirmed-state region.
func (tx *Transaction) DropUnconfirmed() error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	if !tx.unconfirmed {
		return fmt.Errorf("cannot drop unconfirmed state of a confirmed transaction")
	}
	batch := new(leveldb.Batch)
	batch.Delete(backend.ToDBKey(backend.BlockMetaKey, tx.next[:]))
	prefix := backend.ToDBKey(backend.TrieEntryKey, tx.next[:])
	iter := tx.trie.db.NewIterator(util.BytesPrefix(prefix), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}
	if err := tx.trie.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to drop unconfirmed state of %s; %s", tx.base, err)
	}
	tx.close()
	return nil
}

// readBase determines where committed-history reads of the open tip start:
// at the unconfirmed region itself if it was committed before, otherwise at
// the block the transaction is rooted at.
func (tx *Transaction) readBase() (common.BlockID, error) {
	if tx.unconfirmed {
		_, found, err := tx.trie.getBlockMeta(tx.next)
		if err != nil {
			return common.BlockID{}, err
		}
		if found {
			return tx.next, nil
		}
	}
	return tx.base, nil
}

// materialize combines the staged state with the committed history below it
// into the full key-to-value-hash map of the open tip.
func (tx *Transaction) materialize() (map[string]common.Hash, error) {
	start, err := tx.readBase()
	if err != nil {
		return nil, err
	}
	var entries map[string]common.Hash
	if start.IsGenesis() {
		entries = map[string]common.Hash{}
	} else {
		entries, err = tx.trie.materialize(start)
		if err != nil {
			return nil, err
		}
	}
	for key, hash := range tx.staged {
		entries[key] = hash
	}
	return entries, nil
}

func (tx *Transaction) close() {
	tx.closed = true
	tx.trie.txOpen.Store(false)
}
