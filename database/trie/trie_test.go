package trie

import (
	"errors"
	"sort"
	"testing"

	"github.com/sable-db/sable/go/common"
)

func blockID(b byte) common.BlockID {
	var id common.BlockID
	id[0] = b
	return id
}

func hashOf(value string) common.Hash {
	return common.Keccak256([]byte(value))
}

func openTestTrie(t *testing.T) *Trie {
	t.Helper()
	tr, err := OpenTrie(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open trie; %s", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

// commitBlock commits a block with the given entries on top of parent.
func commitBlock(t *testing.T, tr *Trie, parent, id common.BlockID, entries map[string]common.Hash) {
	t.Helper()
	tx, err := tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	if err := tx.Begin(parent, id); err != nil {
		t.Fatalf("failed to begin block %s; %s", id, err)
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	hashes := make([]common.Hash, len(keys))
	for i, key := range keys {
		hashes[i] = entries[key]
	}
	if err := tx.InsertBatch(keys, hashes); err != nil {
		t.Fatalf("failed to stage entries; %s", err)
	}
	if err := tx.CommitTo(id); err != nil {
		t.Fatalf("failed to commit block %s; %s", id, err)
	}
}

func TestTrie_CommitAndGet(t *testing.T) {
	tr := openTestTrie(t)
	b1 := blockID(1)
	commitBlock(t, tr, common.SentinelBlockID(), b1, map[string]common.Hash{
		"foo": hashOf("bar"),
	})

	hash, err := tr.Get(b1, "foo")
	if err != nil {
		t.Fatalf("failed to get committed key; %s", err)
	}
	if hash != hashOf("bar") {
		t.Errorf("unexpected value hash, got %s, wanted %s", hash, hashOf("bar"))
	}

	if _, err := tr.Get(b1, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key should yield ErrNotFound, got %v", err)
	}
	if _, err := tr.Get(blockID(9), "foo"); !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("unknown tip should yield ErrUnknownBlock, got %v", err)
	}
	if _, err := tr.Get(common.SentinelBlockID(), "foo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("genesis tip should yield ErrNotFound, got %v", err)
	}
}

func TestTrie_NewerBlockShadowsOlderBinding(t *testing.T) {
	tr := openTestTrie(t)
	b1, b2 := blockID(1), blockID(2)
	commitBlock(t, tr, common.SentinelBlockID(), b1, map[string]common.Hash{
		"foo": hashOf("old"),
		"bar": hashOf("kept"),
	})
	commitBlock(t, tr, b1, b2, map[string]common.Hash{
		"foo": hashOf("new"),
	})

	hash, err := tr.Get(b2, "foo")
	if err != nil {
		t.Fatalf("failed to get key; %s", err)
	}
	if hash != hashOf("new") {
		t.Errorf("lookup at the child must observe the newest binding")
	}
	hash, err = tr.Get(b2, "bar")
	if err != nil {
		t.Fatalf("failed to get inherited key; %s", err)
	}
	if hash != hashOf("kept") {
		t.Errorf("lookup at the child must fall through to the parent's binding")
	}
	hash, err = tr.Get(b1, "foo")
	if err != nil {
		t.Fatalf("failed to get key; %s", err)
	}
	if hash != hashOf("old") {
		t.Errorf("lookup at the parent must be unaffected by the child's update")
	}
}

func TestTrie_ForksAreIsolated(t *testing.T) {
	tr := openTestTrie(t)
	b1, b2a, b2b := blockID(1), blockID(2), blockID(3)
	commitBlock(t, tr, common.SentinelBlockID(), b1, map[string]common.Hash{
		"shared": hashOf("base"),
	})
	commitBlock(t, tr, b1, b2a, map[string]common.Hash{
		"shared": hashOf("fork-a"),
	})
	commitBlock(t, tr, b1, b2b, map[string]common.Hash{
		"shared": hashOf("fork-b"),
	})

	for _, test := range []struct {
		tip  common.BlockID
		want common.Hash
	}{
		{b1, hashOf("base")},
		{b2a, hashOf("fork-a")},
		{b2b, hashOf("fork-b")},
	} {
		hash, err := tr.Get(test.tip, "shared")
		if err != nil {
			t.Fatalf("failed to get key at %s; %s", test.tip, err)
		}
		if hash != test.want {
			t.Errorf("lookup at %s observed a sibling fork's binding", test.tip)
		}
	}
}

func TestTrie_RootHashAndProofAgree(t *testing.T) {
	tr := openTestTrie(t)
	b1 := blockID(1)
	commitBlock(t, tr, common.SentinelBlockID(), b1, map[string]common.Hash{
		"alpha": hashOf("value-a"),
		"beta":  hashOf("value-b"),
	})

	root, err := tr.GetRootHashAt(b1)
	if err != nil {
		t.Fatalf("failed to get root hash; %s", err)
	}
	if root == (common.Hash{}) {
		t.Fatalf("committed block must carry a non-zero root hash")
	}

	hash, proof, err := tr.GetWithProof(b1, "alpha")
	if err != nil {
		t.Fatalf("failed to get key with proof; %s", err)
	}
	if hash != hashOf("value-a") {
		t.Errorf("unexpected value hash, got %s", hash)
	}
	if !proof.Verify(root, "alpha") {
		t.Errorf("proof does not verify against the committed root")
	}

	b2 := blockID(2)
	commitBlock(t, tr, b1, b2, map[string]common.Hash{
		"gamma": hashOf("value-c"),
	})
	root2, err := tr.GetRootHashAt(b2)
	if err != nil {
		t.Fatalf("failed to get root hash; %s", err)
	}
	if root2 == root {
		t.Errorf("adding an entry must change the root hash")
	}
	_, proof, err = tr.GetWithProof(b2, "alpha")
	if err != nil {
		t.Fatalf("failed to get inherited key with proof; %s", err)
	}
	if !proof.Verify(root2, "alpha") {
		t.Errorf("proof of an inherited key does not verify against the child root")
	}
}

func TestTrie_GenesisRootIsZero(t *testing.T) {
	tr := openTestTrie(t)
	root, err := tr.GetRootHashAt(common.SentinelBlockID())
	if err != nil {
		t.Fatalf("failed to get genesis root; %s", err)
	}
	if root != (common.Hash{}) {
		t.Errorf("genesis must be authenticated by the zero hash, got %s", root)
	}
	if _, err := tr.GetRootHashAt(blockID(9)); !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("unknown tip should yield ErrUnknownBlock, got %v", err)
	}
}

func TestTrie_HeightsFollowTheChain(t *testing.T) {
	tr := openTestTrie(t)
	b1, b2, b3 := blockID(1), blockID(2), blockID(3)
	commitBlock(t, tr, common.SentinelBlockID(), b1, nil)
	commitBlock(t, tr, b1, b2, nil)
	commitBlock(t, tr, b2, b3, nil)

	for i, id := range []common.BlockID{b1, b2, b3} {
		height, found, err := tr.GetBlockHeightOf(b3, id)
		if err != nil || !found {
			t.Fatalf("failed to resolve height of %s; found %t, err %v", id, found, err)
		}
		if height != uint32(i+1) {
			t.Errorf("block %s has height %d, wanted %d", id, height, i+1)
		}
	}

	height, found, err := tr.GetBlockHeightOf(b3, common.SentinelBlockID())
	if err != nil || !found || height != 0 {
		t.Errorf("genesis must resolve to height 0 on every chain, got %d, %t, %v", height, found, err)
	}

	if _, found, err := tr.GetBlockHeightOf(b1, b3); err != nil || found {
		t.Errorf("a descendant must not be found on its ancestor's chain, got %t, %v", found, err)
	}
}

func TestTrie_GetBlockAtHeight(t *testing.T) {
	tr := openTestTrie(t)
	b1, b2 := blockID(1), blockID(2)
	commitBlock(t, tr, common.SentinelBlockID(), b1, nil)
	commitBlock(t, tr, b1, b2, nil)

	id, found, err := tr.GetBlockAtHeight(b2, 0)
	if err != nil || !found || id != common.SentinelBlockID() {
		t.Errorf("height 0 must resolve to the genesis sentinel, got %s, %t, %v", id, found, err)
	}
	id, found, err = tr.GetBlockAtHeight(b2, 1)
	if err != nil || !found || id != b1 {
		t.Errorf("height 1 must resolve to the first block, got %s, %t, %v", id, found, err)
	}
	id, found, err = tr.GetBlockAtHeight(b2, 2)
	if err != nil || !found || id != b2 {
		t.Errorf("height 2 must resolve to the tip, got %s, %t, %v", id, found, err)
	}
	if _, found, err := tr.GetBlockAtHeight(b2, 3); err != nil || found {
		t.Errorf("a height beyond the chain must not resolve, got %t, %v", found, err)
	}
	if _, found, err := tr.GetBlockAtHeight(common.SentinelBlockID(), 1); err != nil || found {
		t.Errorf("the empty chain has no block at height 1, got %t, %v", found, err)
	}
}

func TestTrie_CheckAncestorBlockHash(t *testing.T) {
	tr := openTestTrie(t)
	b1, b2a, b2b, b3a := blockID(1), blockID(2), blockID(3), blockID(4)
	commitBlock(t, tr, common.SentinelBlockID(), b1, nil)
	commitBlock(t, tr, b1, b2a, nil)
	commitBlock(t, tr, b1, b2b, nil)
	commitBlock(t, tr, b2a, b3a, nil)

	// ancestor-or-self relations in either direction are accepted
	for _, test := range [][2]common.BlockID{
		{b3a, b1}, {b1, b3a}, {b3a, b3a}, {b3a, common.SentinelBlockID()},
	} {
		if err := tr.CheckAncestorBlockHash(test[0], test[1]); err != nil {
			t.Errorf("blocks %s and %s share a fork, got %v", test[0], test[1], err)
		}
	}

	if err := tr.CheckAncestorBlockHash(b3a, b2b); !errors.Is(err, ErrNonMatchingForks) {
		t.Errorf("sibling forks must be rejected, got %v", err)
	}
	if err := tr.CheckAncestorBlockHash(b2b, b3a); !errors.Is(err, ErrNonMatchingForks) {
		t.Errorf("sibling forks must be rejected, got %v", err)
	}
	if err := tr.CheckAncestorBlockHash(b3a, blockID(9)); !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("uncommitted candidates must be rejected, got %v", err)
	}
	if err := tr.CheckAncestorBlockHash(common.SentinelBlockID(), b2b); err != nil {
		t.Errorf("every committed block descends from the sentinel, got %v", err)
	}
}

func TestTrie_SingleTransactionAtATime(t *testing.T) {
	tr := openTestTrie(t)
	tx, err := tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	if _, err := tr.BeginTransaction(); !errors.Is(err, ErrTransactionOpen) {
		t.Errorf("second transaction must be rejected, got %v", err)
	}
	if err := tx.Begin(common.SentinelBlockID(), blockID(1)); err != nil {
		t.Fatalf("failed to begin block; %s", err)
	}
	if err := tx.DropCurrent(); err != nil {
		t.Fatalf("failed to drop block; %s", err)
	}
	if _, err := tr.BeginTransaction(); err != nil {
		t.Errorf("a dropped transaction must free the trie, got %v", err)
	}
}

func TestTrie_BeginRejectsCollisions(t *testing.T) {
	tr := openTestTrie(t)
	b1 := blockID(1)
	commitBlock(t, tr, common.SentinelBlockID(), b1, nil)

	tx, err := tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	if err := tx.Begin(common.SentinelBlockID(), b1); !errors.Is(err, ErrBlockExists) {
		t.Fatalf("a committed identifier must be rejected as provisional tip, got %v", err)
	}
	if err := tx.Begin(blockID(9), blockID(2)); !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("an uncommitted base must be rejected, got %v", err)
	}
	if err := tx.Begin(b1, blockID(2)); err != nil {
		t.Fatalf("failed to begin block; %s", err)
	}
	if err := tx.CommitTo(b1); !errors.Is(err, ErrBlockExists) {
		t.Fatalf("a committed identifier must be rejected as final, got %v", err)
	}
	if err := tx.CommitTo(blockID(2)); err != nil {
		t.Fatalf("failed to commit block; %s", err)
	}
}

func TestTransaction_StagedWritesAreVisibleAtTheOpenTip(t *testing.T) {
	tr := openTestTrie(t)
	b1 := blockID(1)
	commitBlock(t, tr, common.SentinelBlockID(), b1, map[string]common.Hash{
		"foo": hashOf("committed"),
		"bar": hashOf("inherited"),
	})

	tx, err := tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	prov := blockID(0xaa)
	if err := tx.Begin(b1, prov); err != nil {
		t.Fatalf("failed to begin block; %s", err)
	}
	if err := tx.InsertBatch([]string{"foo"}, []common.Hash{hashOf("staged")}); err != nil {
		t.Fatalf("failed to stage entry; %s", err)
	}

	hash, err := tx.Get(prov, "foo")
	if err != nil {
		t.Fatalf("failed to get staged key; %s", err)
	}
	if hash != hashOf("staged") {
		t.Errorf("the open tip must observe the staged binding")
	}
	hash, err = tx.Get(prov, "bar")
	if err != nil {
		t.Fatalf("failed to get inherited key; %s", err)
	}
	if hash != hashOf("inherited") {
		t.Errorf("the open tip must fall through to the base chain")
	}
	hash, err = tx.Get(b1, "foo")
	if err != nil {
		t.Fatalf("failed to get committed key; %s", err)
	}
	if hash != hashOf("committed") {
		t.Errorf("lookups at committed tips must not observe staged writes")
	}

	root, err := tx.GetRootHashAt(prov)
	if err != nil {
		t.Fatalf("failed to get open-tip root; %s", err)
	}
	_, proof, err := tx.GetWithProof(prov, "foo")
	if err != nil {
		t.Fatalf("failed to get staged key with proof; %s", err)
	}
	if !proof.Verify(root, "foo") {
		t.Errorf("open-tip proof does not verify against the open-tip root")
	}

	if err := tx.DropCurrent(); err != nil {
		t.Fatalf("failed to drop block; %s", err)
	}
	if _, err := tr.Get(b1, "foo"); err != nil {
		t.Fatalf("dropping the block must not disturb committed state; %s", err)
	}
}

func TestTransaction_RestagingAKeyReplacesItsBinding(t *testing.T) {
	tr := openTestTrie(t)
	tx, err := tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	prov := blockID(0xaa)
	if err := tx.Begin(common.SentinelBlockID(), prov); err != nil {
		t.Fatalf("failed to begin block; %s", err)
	}
	if err := tx.InsertBatch([]string{"foo"}, []common.Hash{hashOf("first")}); err != nil {
		t.Fatalf("failed to stage entry; %s", err)
	}
	if err := tx.InsertBatch([]string{"foo"}, []common.Hash{hashOf("second")}); err != nil {
		t.Fatalf("failed to re-stage entry; %s", err)
	}
	if err := tx.InsertBatch([]string{"a"}, []common.Hash{hashOf("x"), hashOf("y")}); err == nil {
		t.Errorf("mismatched batch lengths must be rejected")
	}
	hash, err := tx.Get(prov, "foo")
	if err != nil {
		t.Fatalf("failed to get staged key; %s", err)
	}
	if hash != hashOf("second") {
		t.Errorf("re-staging must replace the pending binding")
	}
	if err := tx.CommitTo(blockID(1)); err != nil {
		t.Fatalf("failed to commit block; %s", err)
	}
	hash, err = tr.Get(blockID(1), "foo")
	if err != nil {
		t.Fatalf("failed to get committed key; %s", err)
	}
	if hash != hashOf("second") {
		t.Errorf("the replaced binding must be the committed one")
	}
}

func TestTransaction_OpenTipIdentityAndHeight(t *testing.T) {
	tr := openTestTrie(t)
	b1 := blockID(1)
	commitBlock(t, tr, common.SentinelBlockID(), b1, nil)

	tx, err := tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	prov := blockID(0xaa)
	if err := tx.Begin(b1, prov); err != nil {
		t.Fatalf("failed to begin block; %s", err)
	}
	tip, err := tx.GetOpenChainTip()
	if err != nil || tip != prov {
		t.Errorf("open tip must be the provisional identifier, got %s, %v", tip, err)
	}
	height, err := tx.GetOpenChainTipHeight()
	if err != nil || height != 2 {
		t.Errorf("open tip height must extend the base chain, got %d, %v", height, err)
	}
	id, found, err := tx.GetBlockAtHeight(prov, 2)
	if err != nil || !found || id != prov {
		t.Errorf("the open tip must resolve at its own height, got %s, %t, %v", id, found, err)
	}
	id, found, err = tx.GetBlockAtHeight(prov, 1)
	if err != nil || !found || id != b1 {
		t.Errorf("heights below the open tip resolve on the base chain, got %s, %t, %v", id, found, err)
	}
	if err := tx.CheckAncestorBlockHash(prov); err != nil {
		t.Errorf("the open tip itself must be accepted, got %v", err)
	}
	if err := tx.CheckAncestorBlockHash(b1); err != nil {
		t.Errorf("the base block must be accepted, got %v", err)
	}
	if err := tx.DropCurrent(); err != nil {
		t.Fatalf("failed to drop block; %s", err)
	}
}

func TestTransaction_UnconfirmedStateSurvivesReattachment(t *testing.T) {
	tr := openTestTrie(t)
	b1 := blockID(1)
	commitBlock(t, tr, common.SentinelBlockID(), b1, nil)

	tx, err := tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	if err := tx.BeginUnconfirmed(b1); err != nil {
		t.Fatalf("failed to begin unconfirmed block; %s", err)
	}
	if err := tx.InsertBatch([]string{"pending"}, []common.Hash{hashOf("v1")}); err != nil {
		t.Fatalf("failed to stage entry; %s", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit unconfirmed state; %s", err)
	}

	// a later transaction attaches to the committed unconfirmed region
	tx, err = tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	if err := tx.BeginUnconfirmed(b1); err != nil {
		t.Fatalf("failed to reattach to unconfirmed block; %s", err)
	}
	tip, err := tx.GetOpenChainTip()
	if err != nil {
		t.Fatalf("failed to get open tip; %s", err)
	}
	if tip != unconfirmedBlockID(b1) {
		t.Errorf("unconfirmed region identifier must be stable across attachments")
	}
	hash, err := tx.Get(tip, "pending")
	if err != nil {
		t.Fatalf("failed to get previously committed unconfirmed entry; %s", err)
	}
	if hash != hashOf("v1") {
		t.Errorf("reattachment must observe previously committed unconfirmed state")
	}

	if err := tx.DropUnconfirmed(); err != nil {
		t.Fatalf("failed to drop unconfirmed state; %s", err)
	}

	// after the drop, nothing of the region remains
	tx, err = tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	if err := tx.BeginUnconfirmed(b1); err != nil {
		t.Fatalf("failed to begin unconfirmed block; %s", err)
	}
	if _, err := tx.Get(unconfirmedBlockID(b1), "pending"); !errors.Is(err, ErrNotFound) {
		t.Errorf("dropped unconfirmed state must not resurface, got %v", err)
	}
	if err := tx.DropCurrent(); err != nil {
		t.Fatalf("failed to drop block; %s", err)
	}
}

func TestTransaction_TerminalModesAreExclusive(t *testing.T) {
	tr := openTestTrie(t)
	tx, err := tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	if err := tx.BeginUnconfirmed(common.SentinelBlockID()); err != nil {
		t.Fatalf("failed to begin unconfirmed block; %s", err)
	}
	if err := tx.CommitTo(blockID(1)); err == nil {
		t.Errorf("unconfirmed transactions must not commit under a final identifier")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit unconfirmed state; %s", err)
	}

	tx, err = tr.BeginTransaction()
	if err != nil {
		t.Fatalf("failed to begin transaction; %s", err)
	}
	if err := tx.Begin(common.SentinelBlockID(), blockID(0xaa)); err != nil {
		t.Fatalf("failed to begin block; %s", err)
	}
	if err := tx.Commit(); err == nil {
		t.Errorf("confirmed transactions must not commit as unconfirmed state")
	}
	if err := tx.DropUnconfirmed(); err == nil {
		t.Errorf("confirmed transactions must not drop unconfirmed state")
	}
	if err := tx.CommitTo(blockID(1)); err != nil {
		t.Fatalf("failed to commit block; %s", err)
	}
	if err := tx.DropCurrent(); err == nil {
		t.Errorf("a closed transaction must reject further operations")
	}
}
