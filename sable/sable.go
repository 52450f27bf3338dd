package sable

import (
	"fmt"

	"github.com/sable-db/sable/go/common"
	"github.com/sable-db/sable/go/database/trie"
)

//go:generate mockgen -source sable.go -destination sable_mocks.go -package sable

const (
	// ErrUnknownBlock is returned when a referenced block is not part of
	// the store's committed history.
	ErrUnknownBlock = trie.ErrUnknownBlock
	// ErrNonMatchingForks is returned when a referenced block exists but
	// does not share a fork with the view's current chain tip.
	ErrNonMatchingForks = trie.ErrNonMatchingForks
)

// KVPair is a single key-value binding handed to PutAll.
type KVPair struct {
	Key   string
	Value string
}

// KVStore is the block-scoped key-value contract consumed by the contract
// execution engine. It is implemented identically by read-only and writable
// views; which one a call site holds is decided when the view is begun, not
// by runtime inspection.
//
// Absent keys are reported via the boolean result. Fork-switch failures are
// reported as ErrUnknownBlock or ErrNonMatchingForks so callers can reject
// a block reference. All other failure modes of these operations are
// integrity or contract violations and abort the process: a value hash held
// by the trie but missing from the side store must never be silently
// reported as an absent key.
type KVStore interface {

	// Get returns the value bound to the key at the view's current chain
	// tip, or false if the trie holds no binding for it.
	Get(key string) (string, bool)

	// GetWithProof additionally returns a membership proof verifiable
	// against the root hash of the current chain tip.
	GetWithProof(key string) (string, *trie.Proof, bool)

	// PutAll stages the given bindings, in input order, into the block
	// under construction. Read-only views abort the process on this call.
	PutAll(items []KVPair)

	// SetBlockHash switches the view to the given fork context after
	// validating it against the committed history, returning the previous
	// chain tip.
	SetBlockHash(id common.BlockID) (common.BlockID, error)

	// GetCurrentBlockHeight returns the height of the current chain tip;
	// height 0 denotes the genesis sentinel.
	GetCurrentBlockHeight() uint32

	// GetBlockAtHeight returns the ancestor of the current chain tip at
	// the given height, or false if the height exceeds the chain length.
	GetBlockAtHeight(height uint32) (common.BlockID, bool)

	// GetOpenChainTip returns the provisional identifier of the currently
	// open block. Calling it on a view without an open transaction scope
	// aborts the process.
	GetOpenChainTip() common.BlockID

	// GetOpenChainTipHeight returns the height the currently open block
	// will be committed at.
	GetOpenChainTipHeight() uint32
}

// SideStore is the content-addressed relational store holding the raw bytes
// of values referenced by the trie, plus per-tip lifecycle metadata rows.
type SideStore interface {
	Get(hashHex string) ([]byte, bool, error)
	Put(hashHex string, value []byte) error
	GetMetadata(tip common.BlockID, key string) (string, bool, error)
	PutMetadata(tip common.BlockID, key, value string) error
	DropMetadata(tip common.BlockID) error
	RenameMetadata(from, to common.BlockID) error
	ListMetadataTips() ([]common.BlockID, error)
	Close() error
}

// resolveValue loads the raw bytes of a value hash from the side store.
// A hash routed by the trie but absent from the side store is a fatal
// integrity violation: the side store holds every hash reachable from
// committed history, so continuing would risk silent corruption of
// authenticated state.
func resolveValue(side SideStore, hash common.Hash) string {
	data, found, err := side.Get(hash.String())
	if err != nil {
		panic(fmt.Errorf("failed to read side storage for %s; %s", hash, err))
	}
	if !found {
		panic(fmt.Errorf("trie contained value hash not found in side storage: %s", hash))
	}
	return string(data)
}
