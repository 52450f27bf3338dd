package sable

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/sable-db/sable/go/backend/sidestore"
	"github.com/sable-db/sable/go/common"
	"github.com/sable-db/sable/go/database/trie"
)

const (
	lockFileName  = "~lock"
	trieDirName   = "trie"
	sideStoreName = "side.sqlite"
)

var _ SideStore = (*sidestore.Store)(nil)

// Store owns the versioned trie index and the content-addressed side store
// persisted in one directory, and acts as the factory for read-only and
// writable views. It keeps a chain-tip bookmark denoting the version context
// views are begun at when no explicit block is requested.
//
// At most one view may be alive per store at any time. Views borrow the
// store exclusively and hand it back through their terminal operation
// (commit or rollback for writable views, Release for read-only ones);
// beginning a second view before that aborts the process.
type Store struct {
	trie        *trie.Trie
	side        SideStore
	lock        common.LockFile
	chainTip    common.BlockID
	unconfirmed bool
	viewInUse   atomic.Bool
}

// Open opens or initializes the store in the given directory. The directory
// is created if absent; failing to create it, to lock it, or to initialize
// the side-store schema is reported as an error and leaves no partly
// initialized state behind. If initialTip is nil, the chain-tip bookmark
// starts at the genesis sentinel.
func Open(directory string, initialTip *common.BlockID) (*Store, error) {
	return openStore(directory, initialTip, false)
}

// OpenUnconfirmed opens the store for work against the unconfirmed-state
// region, used for speculative state that is not part of canonical history.
// A store opened this way only supports unconfirmed writable views.
func OpenUnconfirmed(directory string, initialTip *common.BlockID) (*Store, error) {
	return openStore(directory, initialTip, true)
}

func openStore(directory string, initialTip *common.BlockID, unconfirmed bool) (*Store, error) {
	if err := os.MkdirAll(directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s; %s", directory, err)
	}
	lock, err := common.CreateLockFile(filepath.Join(directory, lockFileName))
	if err != nil {
		return nil, fmt.Errorf("unable to gain exclusive access to %s: %w", directory, err)
	}

	index, err := trie.OpenTrie(filepath.Join(directory, trieDirName))
	if err != nil {
		return nil, errors.Join(err, lock.Release())
	}
	side, err := sidestore.Open(filepath.Join(directory, sideStoreName))
	if err != nil {
		return nil, errors.Join(err, index.Close(), lock.Release())
	}

	store := &Store{
		trie:        index,
		side:        side,
		lock:        lock,
		chainTip:    common.SentinelBlockID(),
		unconfirmed: unconfirmed,
	}
	if initialTip != nil {
		store.chainTip = *initialTip
	}
	if err := store.recoverOrphanedMetadata(); err != nil {
		return nil, errors.Join(err, store.Close())
	}
	return store, nil
}

// recoverOrphanedMetadata drops side-store metadata rows bound to a tip the
// trie does not know. Such rows are left behind when the process crashed
// between the metadata rename of a commit and the trie finalization, or
// when a provisional block was rolled back; in both cases the rows belong
// to a block that never became part of committed history.
func (s *Store) recoverOrphanedMetadata() error {
	tips, err := s.side.ListMetadataTips()
	if err != nil {
		return fmt.Errorf("failed to list side-store metadata; %s", err)
	}
	for _, tip := range tips {
		has, err := s.trie.HasBlock(tip)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		log.Printf("dropping orphaned side-store metadata of block %s", tip)
		if err := s.side.DropMetadata(tip); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the store and its underlying resources. It fails while a
// view is still alive.
func (s *Store) Close() error {
	if s.viewInUse.Load() {
		return fmt.Errorf("cannot close store while a view is open")
	}
	return errors.Join(
		s.trie.Close(),
		s.side.Close(),
		s.lock.Release(),
	)
}

// GetChainTip returns the store's chain-tip bookmark.
func (s *Store) GetChainTip() common.BlockID {
	return s.chainTip
}

// SetChainTip moves the store's chain-tip bookmark. It does not affect
// views that are already begun.
func (s *Store) SetChainTip(tip common.BlockID) {
	s.chainTip = tip
}

// GetRootHash returns the authenticated root hash of the trie at the
// store's current chain tip.
func (s *Store) GetRootHash() common.Hash {
	hash, err := s.trie.GetRootHashAt(s.chainTip)
	if err != nil {
		panic(fmt.Errorf("failed to read trie root hash at %s; %s", s.chainTip, err))
	}
	return hash
}

// BeginReadOnly begins a read-only view at the given block, or at the
// store's chain-tip bookmark if atBlock is nil. Requesting a block that is
// not part of the committed history is a caller error and aborts the
// process; callers that have not validated the block beforehand must use
// BeginReadOnlyChecked.
func (s *Store) BeginReadOnly(atBlock *common.BlockID) *ReadView {
	view, err := s.BeginReadOnlyChecked(atBlock)
	if err != nil {
		panic(fmt.Errorf("failed to open read-only view; %s", err))
	}
	return view
}

// BeginReadOnlyChecked is BeginReadOnly surfacing an unknown block as a
// structured error instead of aborting.
func (s *Store) BeginReadOnlyChecked(atBlock *common.BlockID) (*ReadView, error) {
	tip := s.chainTip
	if atBlock != nil {
		has, err := s.trie.HasBlock(*atBlock)
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, ErrUnknownBlock
		}
		tip = *atBlock
	}
	s.checkOut()
	return &ReadView{store: s, trie: s.trie, side: s.side, chainTip: tip}, nil
}

// Begin begins a writable view staging a new block rooted at current under
// the provisional identifier next. Failing to open the underlying trie
// transaction means the index is corrupted or its single-transaction
// invariant was violated; both abort the process.
func (s *Store) Begin(current, next common.BlockID) *WriteView {
	if s.unconfirmed {
		panic(fmt.Errorf("store opened for unconfirmed state cannot begin confirmed blocks"))
	}
	s.checkOut()
	tx, err := s.trie.BeginTransaction()
	if err != nil {
		s.checkIn()
		panic(fmt.Errorf("failed to begin new trie block %s - %s; %s", current, next, err))
	}
	if err := tx.Begin(current, next); err != nil {
		s.checkIn()
		panic(fmt.Errorf("failed to begin new trie block %s - %s; %s", current, next, err))
	}
	return s.makeWriteView(tx)
}

// BeginUnconfirmed begins a writable view against the unconfirmed-state
// region rooted at current.
func (s *Store) BeginUnconfirmed(current common.BlockID) *WriteView {
	if !s.unconfirmed {
		panic(fmt.Errorf("store not opened for unconfirmed state"))
	}
	s.checkOut()
	tx, err := s.trie.BeginTransaction()
	if err != nil {
		s.checkIn()
		panic(fmt.Errorf("failed to begin unconfirmed trie block for %s; %s", current, err))
	}
	if err := tx.BeginUnconfirmed(current); err != nil {
		s.checkIn()
		panic(fmt.Errorf("failed to begin unconfirmed trie block for %s; %s", current, err))
	}
	return s.makeWriteView(tx)
}

func (s *Store) makeWriteView(tx *trie.Transaction) *WriteView {
	tip, err := tx.GetOpenChainTip()
	if err != nil {
		s.checkIn()
		panic(fmt.Errorf("failed to get open chain tip; %s", err))
	}
	return &WriteView{store: s, tx: tx, side: s.side, chainTip: tip}
}

func (s *Store) checkOut() {
	if !s.viewInUse.CompareAndSwap(false, true) {
		panic(fmt.Errorf("concurrent view already open"))
	}
}

func (s *Store) checkIn() {
	s.viewInUse.Store(false)
}
