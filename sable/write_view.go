package sable

import (
	"errors"
	"fmt"

	"github.com/sable-db/sable/go/common"
	"github.com/sable-db/sable/go/database/trie"
)

// WriteView is a fork-scoped, mutable projection of the store staging one
// block under construction. Writes are batched into the trie transaction
// and their raw bytes persisted in the side store keyed by content hash.
//
// Every WriteView ends in exactly one terminal operation - CommitTo,
// CommitUnconfirmed, CommitMinedBlock, RollbackBlock or
// RollbackUnconfirmed - which finalizes or discards the trie transaction
// and the side-store bookkeeping together and hands the store back. The
// view is consumed by the terminal operation; any later use aborts the
// process. Abandoning a view without a terminal operation is a caller bug
// and leaves the store checked out; callers must treat rollback as the
// explicit form of dropping a view.
type WriteView struct {
	store    *Store
	tx       *trie.Transaction
	side     SideStore
	chainTip common.BlockID
	consumed bool
}

var _ KVStore = (*WriteView)(nil)

func (v *WriteView) ensureOpen() {
	if v.consumed {
		panic(fmt.Errorf("use of write view after commit or rollback"))
	}
}

func (v *WriteView) consume() {
	v.ensureOpen()
	v.consumed = true
}

func (v *WriteView) Get(key string) (string, bool) {
	v.ensureOpen()
	hash, err := v.tx.Get(v.chainTip, key)
	if errors.Is(err, trie.ErrNotFound) {
		return "", false
	}
	if err != nil {
		panic(fmt.Errorf("unexpected trie failure on get; %s", err))
	}
	return resolveValue(v.side, hash), true
}

func (v *WriteView) GetWithProof(key string) (string, *trie.Proof, bool) {
	v.ensureOpen()
	hash, proof, err := v.tx.GetWithProof(v.chainTip, key)
	if errors.Is(err, trie.ErrNotFound) {
		return "", nil, false
	}
	if err != nil {
		panic(fmt.Errorf("unexpected trie failure on get; %s", err))
	}
	return resolveValue(v.side, hash), proof, true
}

// PutAll persists every value in the side store under its content hash and
// stages the key-to-hash bindings into the trie transaction as one batch,
// in input order. Re-writing an already present content hash replaces the
// row with identical bytes and does not disturb concurrent readers of
// earlier blocks.
func (v *WriteView) PutAll(items []KVPair) {
	v.ensureOpen()
	keys := make([]string, len(items))
	hashes := make([]common.Hash, len(items))
	for i, item := range items {
		hash := common.Keccak256([]byte(item.Value))
		if err := v.side.Put(hash.String(), []byte(item.Value)); err != nil {
			panic(fmt.Errorf("failed to write value to side storage; %s", err))
		}
		keys[i] = item.Key
		hashes[i] = hash
	}
	if err := v.tx.InsertBatch(keys, hashes); err != nil {
		panic(fmt.Errorf("unexpected trie failure on insert; %s", err))
	}
}

func (v *WriteView) SetBlockHash(id common.BlockID) (common.BlockID, error) {
	v.ensureOpen()
	if err := v.tx.CheckAncestorBlockHash(id); err != nil {
		if errors.Is(err, ErrUnknownBlock) || errors.Is(err, ErrNonMatchingForks) {
			return common.BlockID{}, err
		}
		panic(fmt.Errorf("unexpected trie failure on fork switch; %s", err))
	}
	previous := v.chainTip
	v.chainTip = id
	return previous, nil
}

func (v *WriteView) GetCurrentBlockHeight() uint32 {
	v.ensureOpen()
	height, found, err := v.tx.GetBlockHeightOf(v.chainTip, v.chainTip)
	if err != nil {
		panic(fmt.Errorf("failed to get current block height of %s; %s", v.chainTip, err))
	}
	if !found {
		if v.chainTip.IsGenesis() {
			return 0
		}
		panic(fmt.Errorf("failed to obtain current block height of %s", v.chainTip))
	}
	return height
}

func (v *WriteView) GetBlockAtHeight(height uint32) (common.BlockID, bool) {
	v.ensureOpen()
	id, found, err := v.tx.GetBlockAtHeight(v.chainTip, height)
	if err != nil {
		panic(fmt.Errorf("failed to get block at height %d off of %s; %s", height, v.chainTip, err))
	}
	return id, found
}

func (v *WriteView) GetOpenChainTip() common.BlockID {
	v.ensureOpen()
	tip, err := v.tx.GetOpenChainTip()
	if err != nil {
		panic(fmt.Errorf("attempted to get the open chain tip from an unopened context; %s", err))
	}
	return tip
}

func (v *WriteView) GetOpenChainTipHeight() uint32 {
	v.ensureOpen()
	height, err := v.tx.GetOpenChainTipHeight()
	if err != nil {
		panic(fmt.Errorf("attempted to get the open chain tip from an unopened context; %s", err))
	}
	return height
}

// GetRootHash returns the root hash of the in-progress state at the view's
// current chain tip, including staged writes.
func (v *WriteView) GetRootHash() common.Hash {
	v.ensureOpen()
	hash, err := v.tx.GetRootHashAt(v.chainTip)
	if err != nil {
		panic(fmt.Errorf("failed to read trie root hash at %s; %s", v.chainTip, err))
	}
	return hash
}

// GetMetadata returns the lifecycle metadata row bound to the view's
// current chain tip.
func (v *WriteView) GetMetadata(key string) (string, bool) {
	v.ensureOpen()
	value, found, err := v.side.GetMetadata(v.chainTip, key)
	if err != nil {
		panic(fmt.Errorf("failed to read side-store metadata; %s", err))
	}
	return value, found
}

// PutMetadata binds a lifecycle metadata row to the block under
// construction. The row follows the block through the rename on CommitTo
// and is dropped by CommitMinedBlock and RollbackUnconfirmed.
func (v *WriteView) PutMetadata(key, value string) {
	v.ensureOpen()
	if err := v.side.PutMetadata(v.chainTip, key, value); err != nil {
		panic(fmt.Errorf("failed to write side-store metadata; %s", err))
	}
}

// CommitTo commits the block under construction under its final canonical
// identifier. The side-store metadata rows are renamed from the provisional
// tip to the final one before the trie transaction is finalized; a crash in
// between leaves an orphaned metadata row that is detected and dropped the
// next time the store is opened.
func (v *WriteView) CommitTo(final common.BlockID) {
	v.consume()
	defer v.store.checkIn()
	if err := v.side.RenameMetadata(v.chainTip, final); err != nil {
		panic(fmt.Errorf("failed to rename side-store metadata to %s; %s", final, err))
	}
	if err := v.tx.CommitTo(final); err != nil {
		panic(fmt.Errorf("failed to commit trie block %s; %s", final, err))
	}
}

// CommitUnconfirmed commits the unconfirmed-state region. The identifier
// does not change across the commit, so no metadata rename is needed.
func (v *WriteView) CommitUnconfirmed() {
	v.consume()
	defer v.store.checkIn()
	if err := v.tx.Commit(); err != nil {
		panic(fmt.Errorf("failed to commit unconfirmed trie block; %s", err))
	}
}

// CommitMinedBlock commits a speculatively mined block into the trie's
// history while dropping its side-store bookkeeping row: the speculative
// chain state may never become canonical, so no metadata is carried over
// to the final identifier.
func (v *WriteView) CommitMinedBlock(final common.BlockID) {
	v.consume()
	defer v.store.checkIn()
	if err := v.side.DropMetadata(v.chainTip); err != nil {
		panic(fmt.Errorf("failed to drop side-store metadata of %s; %s", v.chainTip, err))
	}
	if err := v.tx.CommitMined(final); err != nil {
		panic(fmt.Errorf("failed to commit mined trie block %s; %s", final, err))
	}
}

// RollbackBlock discards the entire in-progress block. Value rows already
// written to the side store are content-addressed and unreachable without
// the trie bindings, so they are intentionally left in place.
func (v *WriteView) RollbackBlock() {
	v.consume()
	defer v.store.checkIn()
	if err := v.tx.DropCurrent(); err != nil {
		panic(fmt.Errorf("failed to roll back trie block; %s", err))
	}
}

// RollbackUnconfirmed discards the unconfirmed-state region, including its
// side-store metadata row.
func (v *WriteView) RollbackUnconfirmed() {
	v.consume()
	defer v.store.checkIn()
	if err := v.side.DropMetadata(v.chainTip); err != nil {
		panic(fmt.Errorf("failed to drop side-store metadata of %s; %s", v.chainTip, err))
	}
	if err := v.tx.DropUnconfirmed(); err != nil {
		panic(fmt.Errorf("failed to drop unconfirmed trie block; %s", err))
	}
}
