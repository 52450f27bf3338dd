package sable

import (
	"errors"
	"fmt"

	"github.com/sable-db/sable/go/common"
	"github.com/sable-db/sable/go/database/trie"
)

// ReadView is a fork-scoped, read-only projection of the store. It resolves
// keys at its current chain tip, produces membership proofs, and answers
// height and ancestry queries. All mutation attempts abort the process.
//
// A ReadView borrows the store exclusively and must be handed back via
// Release before another view can be begun.
type ReadView struct {
	store    *Store
	trie     *trie.Trie
	side     SideStore
	chainTip common.BlockID
	released bool
}

var _ KVStore = (*ReadView)(nil)

func (v *ReadView) ensureLive() {
	if v.released {
		panic(fmt.Errorf("use of released read-only view"))
	}
}

// Release hands the store back without any further effect. The view is
// invalid afterwards.
func (v *ReadView) Release() {
	v.ensureLive()
	v.released = true
	v.store.checkIn()
}

func (v *ReadView) Get(key string) (string, bool) {
	v.ensureLive()
	hash, err := v.trie.Get(v.chainTip, key)
	if errors.Is(err, trie.ErrNotFound) {
		return "", false
	}
	if err != nil {
		panic(fmt.Errorf("unexpected trie failure on get; %s", err))
	}
	return resolveValue(v.side, hash), true
}

func (v *ReadView) GetWithProof(key string) (string, *trie.Proof, bool) {
	v.ensureLive()
	hash, proof, err := v.trie.GetWithProof(v.chainTip, key)
	if errors.Is(err, trie.ErrNotFound) {
		return "", nil, false
	}
	if err != nil {
		panic(fmt.Errorf("unexpected trie failure on get; %s", err))
	}
	return resolveValue(v.side, hash), proof, true
}

// PutAll on a read-only view is a wiring bug of the caller and aborts.
func (v *ReadView) PutAll(items []KVPair) {
	panic(fmt.Errorf("BUG: attempted to commit changes to a read-only view"))
}

func (v *ReadView) SetBlockHash(id common.BlockID) (common.BlockID, error) {
	v.ensureLive()
	if err := v.trie.CheckAncestorBlockHash(v.chainTip, id); err != nil {
		if errors.Is(err, ErrUnknownBlock) || errors.Is(err, ErrNonMatchingForks) {
			return common.BlockID{}, err
		}
		panic(fmt.Errorf("unexpected trie failure on fork switch; %s", err))
	}
	previous := v.chainTip
	v.chainTip = id
	return previous, nil
}

func (v *ReadView) GetCurrentBlockHeight() uint32 {
	v.ensureLive()
	height, found, err := v.trie.GetBlockHeightOf(v.chainTip, v.chainTip)
	if err != nil {
		panic(fmt.Errorf("failed to get current block height of %s; %s", v.chainTip, err))
	}
	if !found {
		// only the pre-first-block state may lack a height
		if v.chainTip.IsGenesis() {
			return 0
		}
		panic(fmt.Errorf("failed to obtain current block height of %s", v.chainTip))
	}
	return height
}

func (v *ReadView) GetBlockAtHeight(height uint32) (common.BlockID, bool) {
	v.ensureLive()
	id, found, err := v.trie.GetBlockAtHeight(v.chainTip, height)
	if err != nil {
		panic(fmt.Errorf("failed to get block at height %d off of %s; %s", height, v.chainTip, err))
	}
	return id, found
}

// GetOpenChainTip aborts: a read-only view never holds an open transaction
// scope, so asking for one is a caller error.
func (v *ReadView) GetOpenChainTip() common.BlockID {
	panic(fmt.Errorf("attempted to get the open chain tip from an unopened context"))
}

func (v *ReadView) GetOpenChainTipHeight() uint32 {
	panic(fmt.Errorf("attempted to get the open chain tip from an unopened context"))
}

// TrieExistsForBlock tests whether the given block is part of the committed
// history. This is a plain membership probe for validation gating, not an
// authenticated read.
func (v *ReadView) TrieExistsForBlock(id common.BlockID) (bool, error) {
	v.ensureLive()
	return v.trie.HasBlock(id)
}

// GetMetadata returns the lifecycle metadata row bound to the view's
// current chain tip.
func (v *ReadView) GetMetadata(key string) (string, bool) {
	v.ensureLive()
	value, found, err := v.side.GetMetadata(v.chainTip, key)
	if err != nil {
		panic(fmt.Errorf("failed to read side-store metadata; %s", err))
	}
	return value, found
}
