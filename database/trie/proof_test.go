package trie

import (
	"testing"

	"github.com/sable-db/sable/go/common"
)

func TestProof_VerifiesEachEntryAgainstRoot(t *testing.T) {
	entries := map[string]common.Hash{
		"alpha": common.Keccak256([]byte("value-a")),
		"beta":  common.Keccak256([]byte("value-b")),
		"gamma": common.Keccak256([]byte("value-c")),
	}
	root := merkleRootOf(entries)
	for key := range entries {
		proof, found := merkleProofOf(entries, key)
		if !found {
			t.Fatalf("failed to produce proof for key %q", key)
		}
		if proof.ValueHash != entries[key] {
			t.Errorf("proof of %q carries wrong value hash", key)
		}
		if !proof.Verify(root, key) {
			t.Errorf("proof of %q does not verify against the root", key)
		}
	}
}

func TestProof_SingleEntryHasEmptyPath(t *testing.T) {
	entries := map[string]common.Hash{
		"only": common.Keccak256([]byte("value")),
	}
	proof, found := merkleProofOf(entries, "only")
	if !found {
		t.Fatalf("failed to produce proof")
	}
	if len(proof.Path) != 0 {
		t.Errorf("single-entry tree should need no audit path, got %d elements", len(proof.Path))
	}
	if !proof.Verify(merkleRootOf(entries), "only") {
		t.Errorf("proof does not verify against the root")
	}
}

func TestProof_RejectsTamperedWitness(t *testing.T) {
	entries := map[string]common.Hash{
		"alpha": common.Keccak256([]byte("value-a")),
		"beta":  common.Keccak256([]byte("value-b")),
		"gamma": common.Keccak256([]byte("value-c")),
	}
	root := merkleRootOf(entries)
	proof, found := merkleProofOf(entries, "beta")
	if !found {
		t.Fatalf("failed to produce proof")
	}

	tampered := *proof
	tampered.ValueHash = common.Keccak256([]byte("forged"))
	if tampered.Verify(root, "beta") {
		t.Errorf("proof with forged value hash must not verify")
	}

	tampered = *proof
	tampered.Index++
	if tampered.Verify(root, "beta") {
		t.Errorf("proof with shifted leaf index must not verify")
	}

	tampered = *proof
	tampered.Path = append([]common.Hash{}, proof.Path...)
	tampered.Path[0][0] ^= 0x01
	if tampered.Verify(root, "beta") {
		t.Errorf("proof with corrupted audit path must not verify")
	}

	if proof.Verify(root, "alpha") {
		t.Errorf("proof bound to one key must not verify for another")
	}
	if proof.Verify(common.Keccak256([]byte("other root")), "beta") {
		t.Errorf("proof must not verify against a foreign root")
	}
}

func TestProof_MissingKeyYieldsNoProof(t *testing.T) {
	entries := map[string]common.Hash{
		"alpha": common.Keccak256([]byte("value-a")),
	}
	if _, found := merkleProofOf(entries, "missing"); found {
		t.Errorf("absent key must not produce a proof")
	}
	if _, found := merkleProofOf(map[string]common.Hash{}, "alpha"); found {
		t.Errorf("empty entry set must not produce a proof")
	}
}

func TestProof_RootIsIndependentOfInsertionHistory(t *testing.T) {
	a := map[string]common.Hash{
		"k1": common.Keccak256([]byte("v1")),
		"k2": common.Keccak256([]byte("v2")),
		"k3": common.Keccak256([]byte("v3")),
	}
	b := map[string]common.Hash{
		"k3": common.Keccak256([]byte("v3")),
		"k1": common.Keccak256([]byte("v1")),
		"k2": common.Keccak256([]byte("v2")),
	}
	if merkleRootOf(a) != merkleRootOf(b) {
		t.Errorf("root hash must be a function of the entry set only")
	}
	if merkleRootOf(map[string]common.Hash{}) != (common.Hash{}) {
		t.Errorf("empty entry set must be authenticated by the zero hash")
	}
}

func TestProof_EncodingRoundTrip(t *testing.T) {
	entries := map[string]common.Hash{
		"alpha": common.Keccak256([]byte("value-a")),
		"beta":  common.Keccak256([]byte("value-b")),
	}
	root := merkleRootOf(entries)
	proof, found := merkleProofOf(entries, "alpha")
	if !found {
		t.Fatalf("failed to produce proof")
	}
	data, err := proof.ToBytes()
	if err != nil {
		t.Fatalf("failed to encode proof; %s", err)
	}
	restored, err := ProofFromBytes(data)
	if err != nil {
		t.Fatalf("failed to decode proof; %s", err)
	}
	if !restored.Verify(root, "alpha") {
		t.Errorf("restored proof does not verify against the root")
	}
}
